// Package linalg is a thin wrapper over gonum's dense linear-algebra
// routines: LU factor/solve for the basis systems the pivoting solvers
// produce at every step, an SVD-based least-squares fallback for systems an
// LU factorization rejects as singular, and a rank-revealing QR used to
// drop linearly dependent constraint rows before they reach a solver.
//
// This package exists because the pivoting algorithms in lcp never need to
// know how a basis system got solved — only that it did. It is the
// concrete stand-in for the external linear-algebra service the rest of
// this module treats as a black box.
package linalg

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned by SolveFast when M has no LU factorization
// (exactly singular to working precision).
var ErrSingular = errors.New("linalg: matrix is singular")

// SolveFast factors M via LU and solves M*x = q, mirroring the
// factor_LU/solve_fast pairing: a basis matrix is refactored from scratch
// on every pivot rather than updated incrementally, trading some
// performance for the simplicity of never tracking incremental updates
// across a pivot.
func SolveFast(M *mat.Dense, q []float64) ([]float64, error) {
	n, c := M.Dims()
	if n != c {
		return nil, errors.New("linalg: SolveFast requires a square matrix")
	}

	var lu mat.LU
	lu.Factorize(M)

	qVec := mat.NewVecDense(n, q)
	var xVec mat.VecDense
	if err := lu.SolveVecTo(&xVec, false, qVec); err != nil {
		return nil, ErrSingular
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = xVec.AtVec(i)
	}
	return x, nil
}

// SolveLeastSquares solves M*x ~= q in the least-squares sense via SVD,
// the fallback the original solver reaches for (solve_LS_fast with
// eSVD1/eSVD2) when the basis matrix handed to SolveFast turns out to be
// singular or so ill-conditioned that LU refuses it.
func SolveLeastSquares(M *mat.Dense, q []float64) ([]float64, error) {
	var svd mat.SVD
	ok := svd.Factorize(M, mat.SVDThin)
	if !ok {
		return nil, errors.New("linalg: SVD factorization failed")
	}

	n, c := M.Dims()
	qVec := mat.NewVecDense(n, q)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	// x = V * Sigma^+ * U^T * q
	var utq mat.VecDense
	utq.MulVec(u.T(), qVec)

	const svdZeroTol = 1e-12
	sInvUtq := mat.NewVecDense(len(values), nil)
	for i, s := range values {
		if s > svdZeroTol {
			sInvUtq.SetVec(i, utq.AtVec(i)/s)
		}
	}

	var xVec mat.VecDense
	xVec.MulVec(&v, sInvUtq)

	x := make([]float64, c)
	for i := 0; i < c; i++ {
		x[i] = xVec.AtVec(i)
	}
	return x, nil
}

// RankRevealingQR factors M via QR and returns which of its leading
// columns form a full-rank subset, using epsRank relative to the largest
// diagonal R entry as the rank cutoff. It is the rank-correction step a
// constraint assembler runs before handing an implicit-joint Jacobian to a
// solver that otherwise assumes full row rank.
func RankRevealingQR(M *mat.Dense, epsRank float64) (active []bool, rank int) {
	rows, cols := M.Dims()
	active = make([]bool, cols)
	if rows == 0 || cols == 0 {
		return active, 0
	}

	var qr mat.QR
	qr.Factorize(M)

	var r mat.Dense
	qr.RTo(&r)

	maxDiag := 0.0
	limit := rows
	if cols < limit {
		limit = cols
	}
	for i := 0; i < limit; i++ {
		d := abs(r.At(i, i))
		if d > maxDiag {
			maxDiag = d
		}
	}

	tol := epsRank
	if tol <= 0 {
		tol = 1e-12
	}
	threshold := tol * maxDiag

	for i := 0; i < limit; i++ {
		if abs(r.At(i, i)) > threshold {
			active[i] = true
			rank++
		}
	}
	return active, rank
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
