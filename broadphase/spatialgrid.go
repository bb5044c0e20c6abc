// Package broadphase finds candidate colliding pairs via a uniform spatial
// hash grid. It sits upstream of the narrow phase and the impact handler,
// which only ever see its output, a stream of candidate Pairs, and are
// agnostic to how the candidates were found.
package broadphase

import (
	"math"
	"sort"
	"sync"

	"github.com/axiom-physics/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey identifies a cell in the 3D grid.
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of bodies currently occupying it.
type Cell struct {
	bodyIndices []int
}

// Pair is a candidate colliding pair surfaced by the broad phase.
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// Grid is a uniform spatial hash used to cull the O(n^2) pair count down to
// AABB-overlapping candidates before the narrow phase runs.
type Grid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	// margin pads every body's AABB before insertion and cell-range lookup.
	// A fast-moving body can leave its cell range between one broadphase
	// pass and the next before the narrow phase (or impact resolution) has
	// a chance to see the pair coming; a speculative margin keeps the pair
	// live a little past the point the resting AABBs actually touch. This
	// is a tolerance, not a compiled constant — SetMargin lets the caller
	// scale it to the scene's fastest body and its own step dt.
	margin float64
}

// NewGrid creates a spatial hash grid with cellSize-sized cells backed by a
// power-of-two-sized hash table of at least numCells buckets.
func NewGrid(cellSize float64, numCells int) *Grid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &Grid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// SetMargin sets the speculative AABB padding Insert and the pair searches
// apply before converting a body's bounds into a cell range. margin must be
// non-negative; 0 (the default) reproduces exact-AABB broadphase.
func (sg *Grid) SetMargin(margin float64) {
	sg.margin = margin
}

// nextPowerOfTwo rounds up to the next power of two.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds body to every cell its AABB overlaps. A plane, whose AABB is
// unbounded, is not added to any cell.
func (sg *Grid) Insert(bodyIndex int, body *actor.RigidBody) {
	if _, isPlane := body.Shape.(*actor.Plane); isPlane {
		return
	}
	aabb := body.Shape.GetAABB().Expand(sg.margin)
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellKey := CellKey{x, y, z}
				cellIdx := sg.hashCell(cellKey)

				sg.cells[cellIdx].bodyIndices = append(
					sg.cells[cellIdx].bodyIndices,
					bodyIndex,
				)
			}
		}
	}
}

func (sg *Grid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

func (sg *Grid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs is the sequential candidate-pair search.
func (sg *Grid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))

	for bodyIdx := 0; bodyIdx < len(bodies); bodyIdx++ {
		bodyA := bodies[bodyIdx]
		for i := range seen {
			seen[i] = false
		}

		boundsA := bodyA.Shape.GetAABB().Expand(sg.margin)
		minCell := sg.worldToCell(boundsA.Min)
		maxCell := sg.worldToCell(boundsA.Max)

		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					cellKey := CellKey{x, y, z}
					cellIdx := sg.hashCell(cellKey)

					for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
						if otherIdx <= bodyIdx || seen[otherIdx] {
							continue // avoids (A,B) and (B,A) duplicates, and repeats across shared cells
						}
						seen[otherIdx] = true

						bodyB := bodies[otherIdx]

						// Checks
						if bodyA.BodyType == actor.BodyTypeStatic && bodyB.BodyType == actor.BodyTypeStatic {
							continue
						}
						if bodyA.IsSleeping && bodyB.IsSleeping {
							continue
						}

						_, aIsPlane := bodyA.Shape.(*actor.Plane)
						_, bIsPlane := bodyB.Shape.(*actor.Plane)
						if aIsPlane || bIsPlane {
							pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
							continue
						}
						if boundsA.Overlaps(bodyB.Shape.GetAABB().Expand(sg.margin)) {
							pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
						}
					}
				}
			}
		}
	}

	return pairs
}

// FindPairsParallel is the worker-sharded candidate-pair search; results
// stream on the returned channel as workers find them.
func (sg *Grid) FindPairsParallel(bodies []*actor.RigidBody, numWorkers int) <-chan Pair {
	var wg sync.WaitGroup
	pairsChan := make(chan Pair, numWorkers*10)

	bodiesPerWorker := len(bodies) / numWorkers
	if bodiesPerWorker == 0 {
		bodiesPerWorker = 1
	}

	clearSeen := make([]bool, len(bodies))
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)

		startIdx := w * bodiesPerWorker
		endIdx := startIdx + bodiesPerWorker
		if w == numWorkers-1 {
			endIdx = len(bodies)
		}

		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(bodies))
			for bodyIdx := start; bodyIdx < end; bodyIdx++ {
				copy(seen, clearSeen)

				bodyA := bodies[bodyIdx]

				boundsA := bodyA.Shape.GetAABB().Expand(sg.margin)
				minCell := sg.worldToCell(boundsA.Min)
				maxCell := sg.worldToCell(boundsA.Max)

				for x := minCell.X; x <= maxCell.X; x++ {
					for y := minCell.Y; y <= maxCell.Y; y++ {
						for z := minCell.Z; z <= maxCell.Z; z++ {
							cellKey := CellKey{x, y, z}
							cellIdx := sg.hashCell(cellKey)

							for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
								// Avoid duplicates
								if otherIdx <= bodyIdx || seen[otherIdx] {
									continue
								}
								seen[otherIdx] = true

								bodyB := bodies[otherIdx]
								if bodyA.BodyType == actor.BodyTypeStatic && bodyB.BodyType == actor.BodyTypeStatic {
									continue
								}
								if bodyA.IsSleeping && bodyB.IsSleeping {
									continue
								}

								_, aIsPlane := bodyA.Shape.(*actor.Plane)
								_, bIsPlane := bodyB.Shape.(*actor.Plane)
								if aIsPlane || bIsPlane {
									pairsChan <- Pair{BodyA: bodyA, BodyB: bodyB}
									continue
								}

								if boundsA.Overlaps(bodyB.Shape.GetAABB().Expand(sg.margin)) {
									pairsChan <- Pair{BodyA: bodyA, BodyB: bodyB}
								}
							}
						}
					}
				}
			}
		}(startIdx, endIdx)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

// worldToCell converts a world position into grid-cell coordinates.
func (sg *Grid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell hashes a cell key into a bucket index.
func (sg *Grid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
