package lcp

import (
	"math"

	"github.com/axiom-physics/impulse/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// Lemke solves the linear complementarity problem find z >= 0, w = M*z+q
// >= 0, z'w = 0 via Lemke's complementary pivoting algorithm with a
// covering vector. z0, if non-nil and of length n, seeds the initial
// basis; pass nil for a cold start. pivTol and zeroTol at or below zero
// mean "derive from M and n".
//
// LemkeWithOptions, LemkeSparse and LemkeRegularized build on it, and
// impact.Handler solves problems without finite bounds through
// LemkeRegularized.
func Lemke(M *mat.Dense, q []float64, z0 []float64, pivTol, zeroTol float64) (Result, error) {
	n, _ := M.Dims()
	if n == 0 {
		return Result{Z: nil}, nil
	}

	if zeroTol <= 0 {
		zeroTol = float64(n) * normInf(M) * epsMachine
	}
	if pivTol <= 0 {
		pivTol = epsMachine * float64(n) * math.Max(1.0, normInf(M))
	}

	if minSlice(q) > -zeroTol {
		return Result{Z: make([]float64, n)}, nil
	}

	const maxIter = 1000
	maxiter := n * 50
	if maxiter > maxIter {
		maxiter = maxIter
	}

	// bas[i] names the basic variable occupying tableau row i: indices
	// [0,n) are z variables, [n,2n) are w variables, 2n is the artificial
	// covering variable t.
	t := 2 * n
	bas := make([]int, n)

	// Bl is the current basis matrix; x holds the current basic values,
	// aligned with bas by index.
	Bl := mat.NewDense(n, n, nil)
	x := make([]float64, n)

	if len(z0) == n && hasPositive(z0) {
		// Warm start: basic z-indices keep their columns of M, nonbasic
		// ones contribute a column of -I.
		basZ := []int{}
		nonbasZ := []int{}
		for i := 0; i < n; i++ {
			if z0[i] > 0 {
				basZ = append(basZ, i)
			} else {
				nonbasZ = append(nonbasZ, i)
			}
		}
		col := 0
		for _, zi := range basZ {
			setColumn(Bl, col, matColumn(M, zi))
			bas[col] = zi
			col++
		}
		for _, zi := range nonbasZ {
			e := make([]float64, n)
			e[zi] = -1
			setColumn(Bl, col, e)
			bas[col] = n + zi
			col++
		}
		copy(x, q)
		if sol, err := linalg.SolveFast(Bl, x); err == nil {
			x = sol
		} else {
			Bl, bas, x = coldBasis(n, q)
		}
	} else {
		Bl, bas, x = coldBasis(n, q)
	}

	// If the cold/warm basis already gives a nonnegative x, z is already
	// a solution: no covering variable needed at all.
	if minSlice(x) >= 0 {
		z := make([]float64, n)
		for i, b := range bas {
			if b < n {
				z[b] = x[i]
			}
		}
		return Result{Z: z}, nil
	}

	// Pivot in the artificial covering variable at the most negative x.
	lvindex := argmin(x)
	tval := -x[lvindex]
	u := make([]float64, n)
	for i := 0; i < n; i++ {
		if x[i] < 0 {
			u[i] = 1
		}
	}
	Be := matVec(Bl, u)
	negate(Be)
	for i := range x {
		x[i] += u[i] * tval
	}
	x[lvindex] = tval
	setColumn(Bl, lvindex, Be)
	leaving := bas[lvindex]
	bas[lvindex] = t
	entering := t

	pivots := 0
	for ; pivots < maxiter; pivots++ {
		if leaving == t {
			z := make([]float64, n)
			for i, b := range bas {
				if b < n {
					z[b] = x[i]
				}
			}
			return Result{Z: z, Pivots: pivots}, nil
		}

		var Be []float64
		if leaving < n {
			entering = n + leaving
			Be = make([]float64, n)
			Be[leaving] = -1
		} else {
			entering = leaving - n
			Be = matColumn(M, entering)
		}

		dl, err := linalg.SolveFast(Bl, Be)
		if err != nil {
			return Result{Z: nil, Pivots: pivots}, ErrSingularBasis
		}

		var j []int
		for i, v := range dl {
			if v > pivTol {
				j = append(j, i)
			}
		}
		if len(j) == 0 {
			return Result{Z: nil, Pivots: pivots}, ErrRayTermination
		}

		theta := math.Inf(1)
		for _, idx := range j {
			ratio := (x[idx] + zeroTol) / dl[idx]
			if ratio < theta {
				theta = ratio
			}
		}

		var candidates []int
		for _, idx := range j {
			if x[idx]/dl[idx] <= theta {
				candidates = append(candidates, idx)
			}
		}
		if len(candidates) == 0 {
			return Result{Z: nil, Pivots: pivots}, ErrVerificationFailed
		}

		lvindex = candidates[0]
		for _, idx := range candidates {
			if bas[idx] == t {
				lvindex = idx
				break
			}
		}

		leaving = bas[lvindex]
		ratio := x[lvindex] / dl[lvindex]
		for i := range dl {
			dl[i] *= ratio
		}
		for i := range x {
			x[i] -= dl[i]
		}
		x[lvindex] = ratio
		setColumn(Bl, lvindex, Be)
		bas[lvindex] = entering
	}

	return Result{Z: nil, Pivots: pivots}, ErrMaxPivotsExceeded
}

func coldBasis(n int, q []float64) (*mat.Dense, []int, []float64) {
	Bl := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		Bl.Set(i, i, -1)
	}
	bas := make([]int, n)
	for i := range bas {
		bas[i] = n + i
	}
	x := make([]float64, n)
	copy(x, q)
	return Bl, bas, x
}

func hasPositive(v []float64) bool {
	for _, x := range v {
		if x > 0 {
			return true
		}
	}
	return false
}

func minSlice(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		if x < m {
			m = x
		}
	}
	return m
}

func argmin(v []float64) int {
	idx := 0
	m := v[0]
	for i, x := range v {
		if x < m {
			m = x
			idx = i
		}
	}
	return idx
}

func negate(v []float64) {
	for i := range v {
		v[i] = -v[i]
	}
}

func matColumn(M *mat.Dense, col int) []float64 {
	rows, _ := M.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = M.At(i, col)
	}
	return out
}

func setColumn(M *mat.Dense, col int, v []float64) {
	for i, x := range v {
		M.Set(i, col, x)
	}
}

func matVec(M *mat.Dense, v []float64) []float64 {
	n, _ := M.Dims()
	out := make([]float64, n)
	vec := mat.NewVecDense(len(v), v)
	var res mat.VecDense
	res.MulVec(M, vec)
	for i := 0; i < n; i++ {
		out[i] = res.AtVec(i)
	}
	return out
}

func normInf(M *mat.Dense) float64 {
	rows, cols := M.Dims()
	max := 0.0
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += math.Abs(M.At(i, j))
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

var epsMachine = math.Nextafter(1, 2) - 1
