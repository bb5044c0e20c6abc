package lcp

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// regularize retries solve against M with a growing diagonal shift added
// whenever the unregularized or previously-shifted system fails a
// post-hoc verification, trying lambda = 10^k for k in [minExp, maxExp]
// stepping by stepExp. Every candidate, shifted or not, is verified
// against the unshifted M. LemkeRegularized, KellerRegularized and
// FastPivotRegularized each run their own solver through this loop.
func regularize(
	M *mat.Dense,
	minExp int, stepExp, maxExp int,
	solve func(Mr *mat.Dense) (Result, error),
	verify func(Mr *mat.Dense, z []float64) bool,
) (Result, error) {
	n, _ := M.Dims()
	totalPivots := 0

	result, err := solve(M)
	totalPivots += result.Pivots
	if err == nil && verify(M, result.Z) {
		return Result{Z: result.Z, Pivots: totalPivots}, nil
	}

	shifted := mat.NewDense(n, n, nil)
	for rf := minExp; rf <= maxExp; rf += stepExp {
		lambda := math.Pow(10, float64(rf))
		shifted.Copy(M)
		for i := 0; i < n; i++ {
			shifted.Set(i, i, shifted.At(i, i)+lambda)
		}

		result, err = solve(shifted)
		totalPivots += result.Pivots
		if err == nil && verify(M, result.Z) {
			return Result{Z: result.Z, Pivots: totalPivots}, nil
		}
	}

	return Result{Z: nil, Pivots: totalPivots}, ErrVerificationFailed
}

func verifyLemke(M *mat.Dense, q, z []float64, zeroTol float64) bool {
	if z == nil {
		return false
	}
	w := matVecPlus(M, z, q)
	for i := range z {
		if z[i] < -zeroTol || w[i] < -zeroTol {
			return false
		}
		if math.Abs(z[i]*w[i]) > zeroTol {
			return false
		}
	}
	return true
}

func verifyBounded(M *mat.Dense, q, l, u, z []float64, zeroTol float64) bool {
	if z == nil {
		return false
	}
	w := matVecPlus(M, z, q)
	for i := range z {
		switch {
		case z[i] < l[i]+zeroTol:
			if z[i]+zeroTol < l[i] || w[i] < -zeroTol {
				return false
			}
		case z[i] > u[i]-zeroTol:
			if z[i]-zeroTol > u[i] || w[i] > zeroTol {
				return false
			}
		default:
			if math.Abs(w[i]) > zeroTol {
				return false
			}
		}
	}
	return true
}

// LemkeRegularized retries Lemke with an increasingly regularized M (M +
// 10^k * I) whenever a solve fails verification, the standard fallback
// for systems Lemke's algorithm finds numerically unstable at face value.
func LemkeRegularized(M *mat.Dense, q []float64, minExp, stepExp, maxExp int, pivTol, zeroTol float64) (Result, error) {
	n, _ := M.Dims()
	if n == 0 {
		return Result{}, nil
	}
	zt := zeroTol
	if zt <= 0 {
		zt = float64(n) * normInf(M) * epsMachine
	}
	return regularize(M, minExp, stepExp, maxExp,
		func(Mr *mat.Dense) (Result, error) { return Lemke(Mr, q, nil, pivTol, zeroTol) },
		func(Mr *mat.Dense, z []float64) bool { return verifyLemke(Mr, q, z, zt) },
	)
}

// KellerRegularized retries Keller with an increasingly regularized M.
func KellerRegularized(M *mat.Dense, q, l, u []float64, minExp, stepExp, maxExp int, pivTol, zeroTol float64) (Result, error) {
	n, _ := M.Dims()
	if n == 0 {
		return Result{}, nil
	}
	zt := zeroTol
	if zt <= 0 {
		zt = float64(n) * normInf(M) * epsMachine
	}
	return regularize(M, minExp, stepExp, maxExp,
		func(Mr *mat.Dense) (Result, error) { return Keller(Mr, q, l, u, nil, zeroTol) },
		func(Mr *mat.Dense, z []float64) bool { return verifyBounded(Mr, q, l, u, z, zt) },
	)
}

// FastPivotRegularized retries FastPivot with an increasingly regularized M.
func FastPivotRegularized(M *mat.Dense, q, l, u []float64, rng *rand.Rand, minExp, stepExp, maxExp int, pivTol, zeroTol float64) (Result, error) {
	n, _ := M.Dims()
	if n == 0 {
		return Result{}, nil
	}
	zt := zeroTol
	if zt <= 0 {
		zt = float64(n) * normInf(M) * epsMachine
	}
	return regularize(M, minExp, stepExp, maxExp,
		func(Mr *mat.Dense) (Result, error) { return FastPivot(Mr, q, l, u, rng, zeroTol) },
		func(Mr *mat.Dense, z []float64) bool { return verifyBounded(Mr, q, l, u, z, zt) },
	)
}
