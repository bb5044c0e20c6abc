package lcp

import "github.com/axiom-physics/impulse/jacobian"

// LemkeSparse solves the same problem as Lemke but takes M in block-sparse
// form. The pivoting itself still runs dense: contact groups are small
// enough (one connected component of touching bodies) that densifying M
// once up front is cheaper than threading sparsity through every pivot
// step, unlike the scene-wide systems a general-purpose sparse LCP solver
// would target.
func LemkeSparse(M *jacobian.SparseJacobian, q []float64, z0 []float64, pivTol, zeroTol float64) (Result, error) {
	if M.Rows == 0 {
		return Result{Z: nil}, nil
	}
	return Lemke(M.ToDense(), q, z0, pivTol, zeroTol)
}
