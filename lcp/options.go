package lcp

import (
	"errors"

	"github.com/axiom-physics/impulse/internal/linalg"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// RestartPolicy controls what Lemke does when its initial basis turns out
// to be singular.
type RestartPolicy int

const (
	// NoRestart gives up immediately on a singular initial basis, the
	// original algorithm's behavior: its own restart-with-random-basis
	// path exists in source but is never reached.
	NoRestart RestartPolicy = iota

	// RestartRandomBasis retries once with a randomized 0/1 initial
	// basis before giving up, the behavior that dead code gestured at
	// without ever wiring it up.
	RestartRandomBasis
)

// LemkeOptions configures LemkeWithOptions' behavior on a singular basis.
type LemkeOptions struct {
	Restart              RestartPolicy
	LeastSquaresFallback bool
}

// LemkeWithOptions runs Lemke, and on ErrSingularBasis either gives up
// (NoRestart) or retries once from a randomized basis (RestartRandomBasis)
// before giving up for good. If every pivoting attempt still fails and
// opts.LeastSquaresFallback is set, it falls back to an unconstrained
// least-squares solve of M*z=q: the result satisfies neither
// complementarity nor the z >= 0, w >= 0 sign constraints, so callers that
// set this flag must be willing to accept an approximate, non-complementary
// answer rather than a solver failure (spec.md §9's first Open Question).
func LemkeWithOptions(M *mat.Dense, q []float64, rng *rand.Rand, opts LemkeOptions, pivTol, zeroTol float64) (Result, error) {
	result, err := Lemke(M, q, nil, pivTol, zeroTol)
	if err == nil || !errors.Is(err, ErrSingularBasis) {
		return result, err
	}

	if opts.Restart == RestartRandomBasis {
		n, _ := M.Dims()
		z0 := make([]float64, n)
		for i := range z0 {
			if rng.Intn(2) == 1 {
				z0[i] = 1
			}
		}
		result, err = Lemke(M, q, z0, pivTol, zeroTol)
		if err == nil || !errors.Is(err, ErrSingularBasis) {
			return result, err
		}
	}

	if !opts.LeastSquaresFallback {
		return result, err
	}

	z, lsErr := linalg.SolveLeastSquares(M, q)
	if lsErr != nil {
		return result, err
	}
	return Result{Z: z, Pivots: result.Pivots}, nil
}
