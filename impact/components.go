package impact

import (
	"github.com/axiom-physics/impulse/actor"
	"github.com/axiom-physics/impulse/constraint"
)

// ConnectedComponents partitions constraints into the disjoint groups of
// spec.md §4.6 step 1: build an undirected graph with an edge between any
// two constraints that share a body, then return its connected
// components. A nil second body (a constraint with only one endpoint, not
// currently produced by this package but allowed by the Constraint
// interface) simply contributes no edge.
func ConnectedComponents(constraints []constraint.Constraint) [][]constraint.Constraint {
	if len(constraints) == 0 {
		return nil
	}

	uf := newUnionFind()
	for _, c := range constraints {
		a, b := c.Bodies()
		if a != nil {
			uf.add(a)
		}
		if b != nil {
			uf.add(b)
		}
		if a != nil && b != nil {
			uf.union(a, b)
		}
	}

	order := map[*actor.RigidBody]int{}
	var groupKeys []*actor.RigidBody
	groupOf := func(c constraint.Constraint) int {
		a, b := c.Bodies()
		var root *actor.RigidBody
		switch {
		case a != nil:
			root = uf.find(a)
		case b != nil:
			root = uf.find(b)
		default:
			return -1
		}
		idx, ok := order[root]
		if !ok {
			idx = len(groupKeys)
			order[root] = idx
			groupKeys = append(groupKeys, root)
		}
		return idx
	}

	indexOf := make([]int, len(constraints))
	for i, c := range constraints {
		indexOf[i] = groupOf(c)
	}

	components := make([][]constraint.Constraint, len(groupKeys))
	for i, c := range constraints {
		components[indexOf[i]] = append(components[indexOf[i]], c)
	}
	return components
}

// unionFind is a standard disjoint-set structure keyed by *actor.RigidBody
// pointer identity, which already is the stable identifier spec.md §9
// asks for within the scope of a single ProcessConstraints call.
type unionFind struct {
	parent map[*actor.RigidBody]*actor.RigidBody
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[*actor.RigidBody]*actor.RigidBody{}}
}

func (uf *unionFind) add(b *actor.RigidBody) {
	if _, ok := uf.parent[b]; !ok {
		uf.parent[b] = b
	}
}

func (uf *unionFind) find(b *actor.RigidBody) *actor.RigidBody {
	root := b
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[b] != root {
		next := uf.parent[b]
		uf.parent[b] = root
		b = next
	}
	return root
}

func (uf *unionFind) union(a, b *actor.RigidBody) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}
