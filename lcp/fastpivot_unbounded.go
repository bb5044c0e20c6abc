package lcp

import (
	"slices"

	"github.com/axiom-physics/impulse/internal/linalg"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// FastPivotUnbounded solves the ordinary (unbounded) LCP find z >= 0, w =
// M*z+q >= 0, z'w = 0 via the same basic/nonbasic pivoting FastPivot uses
// for the bounded case, specialized to the common z >= 0 form. It is a
// cheap first attempt impact.Handler reaches for before falling back to
// the fully regularized Lemke path, gated on a seeded RNG being present
// for the same determinism reason FastPivot's bounded cheap path is.
func FastPivotUnbounded(M *mat.Dense, q []float64, rng *rand.Rand, zeroTol float64) (Result, error) {
	n, _ := M.Dims()
	if n == 0 {
		return Result{}, nil
	}
	if zeroTol <= 0 {
		zeroTol = float64(n) * normInf(M) * epsMachine
	}

	if minSlice(q) > -zeroTol {
		return Result{Z: make([]float64, n)}, nil
	}

	minw := argmin(q)
	nonbas := []int{minw}
	var bas []int
	for i := 0; i < n; i++ {
		if i != minw {
			bas = append(bas, i)
		}
	}

	maxPiv := 2 * n
	pivots := 0
	for ; pivots < maxPiv; pivots++ {
		m := len(nonbas)
		sub := mat.NewDense(m, m, nil)
		rhs := make([]float64, m)
		for i, ni := range nonbas {
			rhs[i] = -q[ni]
			for j, nj := range nonbas {
				sub.Set(i, j, M.At(ni, nj))
			}
		}
		zSub, err := linalg.SolveFast(sub, rhs)
		if err != nil {
			return Result{}, ErrSingularBasis
		}

		w := make([]float64, len(bas))
		for bi, b := range bas {
			sum := q[b]
			for i, ni := range nonbas {
				sum += M.At(b, ni) * zSub[i]
			}
			w[bi] = sum
		}

		minwIdx, minwVal := argminTied(w, zeroTol, rng)

		if minwIdx == -1 || minwVal > -zeroTol {
			minzIdx, minzVal := argminTied(zSub, zeroTol, rng)
			if minzIdx != -1 && minzVal < -zeroTol {
				idx := nonbas[minzIdx]
				nonbas = slices.Delete(nonbas, minzIdx, minzIdx+1)
				bas = sortedInsert(bas, idx)
				continue
			}

			z := make([]float64, n)
			for i, ni := range nonbas {
				z[ni] = zSub[i]
			}
			return Result{Z: z, Pivots: pivots}, nil
		}

		widx := bas[minwIdx]
		minzIdx, minzVal := argminTied(zSub, zeroTol, rng)
		if minzIdx != -1 && minzVal < -zeroTol {
			zidx := nonbas[minzIdx]
			nonbas = slices.Delete(nonbas, minzIdx, minzIdx+1)
			nonbas = sortedInsert(nonbas, widx)
			bas = slices.Delete(bas, minwIdx, minwIdx+1)
			bas = sortedInsert(bas, zidx)
		} else {
			bas = slices.Delete(bas, minwIdx, minwIdx+1)
			nonbas = sortedInsert(nonbas, widx)
		}
	}

	return Result{Z: nil, Pivots: pivots}, ErrMaxPivotsExceeded
}

// argminTied returns the index of v's minimum element, breaking ties
// (within zeroTol of the minimum) at random via rng, mirroring rand_min.
func argminTied(v []float64, zeroTol float64, rng *rand.Rand) (int, float64) {
	if len(v) == 0 {
		return -1, 0
	}
	minIdx := argmin(v)
	minVal := v[minIdx]
	var tied []int
	for i, x := range v {
		if i == minIdx || x < minVal+zeroTol {
			tied = append(tied, i)
		}
	}
	idx := tied[rng.Intn(len(tied))]
	return idx, v[idx]
}
