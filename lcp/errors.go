package lcp

import "errors"

// Sentinel errors returned by the pivoting solvers. Callers distinguish
// between them with errors.Is; impact.Handler wraps whichever one surfaces
// into ErrImpactSolveFailed before it ever reaches a caller outside this
// module.
var (
	// ErrRayTermination means a pivot step found no entering column that
	// could improve feasibility; the problem's feasible ray escaped to
	// infinity without ever reaching a complementary basis.
	ErrRayTermination = errors.New("lcp: ray termination")

	// ErrMaxPivotsExceeded means the solver ran out of pivot steps before
	// finding a complementary basis.
	ErrMaxPivotsExceeded = errors.New("lcp: max pivots exceeded")

	// ErrSingularBasis means a basis matrix built during pivoting could
	// not be factored; the pivot before it chose a bad basis.
	ErrSingularBasis = errors.New("lcp: singular basis")

	// ErrVerificationFailed means a solver reported success but the
	// computed z, w pair failed a post-hoc complementarity check, most
	// often because the zero tolerance given was too tight for the
	// problem's conditioning.
	ErrVerificationFailed = errors.New("lcp: verification failed")
)

// Result carries a pivoting solver's solution vector and the number of
// pivot steps it took to reach it. Pivots is meaningful even on failure:
// it is how many steps were spent before giving up.
type Result struct {
	Z      []float64
	Pivots int
}
