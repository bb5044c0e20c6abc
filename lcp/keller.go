package lcp

import (
	"math"
	"slices"

	"github.com/axiom-physics/impulse/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// Keller solves the bounded LCP find l <= z <= u, w = M*z+q, with
// complementary slackness between w and whichever bound z sits at, using
// Keller's principal-pivoting method. Unbounded components (l=-Inf,
// u=+Inf) are free: they are solved directly with w = 0. M must be positive
// semi-definite; Keller's method doesn't certify indefinite problems the
// way Lemke's does, but it converges in far fewer pivots when M is PSD,
// which every mass-matrix-derived contact system is.
func Keller(M *mat.Dense, q, l, u []float64, z0 []float64, zeroTol float64) (Result, error) {
	n, _ := M.Dims()
	if n == 0 {
		return Result{}, nil
	}
	if zeroTol <= 0 {
		zeroTol = float64(n) * normInf(M) * epsMachine
	}

	inf := math.Inf(1)

	// alpha: free (unbounded) indices, solved directly each pivot.
	// betal/betau: bounded indices currently pinned at their lower/upper
	// bound; beta is their sorted union.
	var alpha, betal, betau, beta []int
	for i := 0; i < n; i++ {
		switch {
		case l[i] == -inf && u[i] == inf:
			alpha = append(alpha, i)
		case l[i] == -inf:
			betau = append(betau, i)
			beta = append(beta, i)
		default:
			betal = append(betal, i)
			beta = append(beta, i)
		}
	}
	slices.Sort(beta)

	z := make([]float64, n)
	zalpha, err := solveAlpha(M, q, alpha)
	if err != nil {
		return Result{}, ErrSingularBasis
	}
	w := computeZW(M, q, zalpha, l, u, alpha, betal, betau, z)

	const maxPivMultiplier = 2
	maxPiv := maxPivMultiplier * n
	pivots := 0

	for ; pivots < maxPiv; pivots++ {
		sl, wplusMin := -1, inf
		for _, i := range betal {
			if w[i] < wplusMin {
				sl, wplusMin = i, w[i]
			}
		}
		su, wminusMax := -1, -inf
		for _, i := range betau {
			if w[i] > wminusMax {
				su, wminusMax = i, w[i]
			}
		}

		var s int
		switch {
		case sl == -1:
			s = su
		case su == -1 || w[sl] < -w[su]:
			s = sl
		default:
			s = su
		}

		if wminusMax < zeroTol && wplusMin > -zeroTol {
			return Result{Z: z, Pivots: pivots}, nil
		}

		p := -sgn(w[s], zeroTol)

		for {
			valpha, rhoS, err := kellerColumn(M, alpha, s)
			if err != nil {
				return Result{}, ErrSingularBasis
			}

			theta0, theta1, theta2, theta3 := infFor(p, inf), infFor(p, inf), infFor(p, inf), infFor(p, inf)
			haveTheta0 := false
			if rhoS > nearZero {
				theta0 = -w[s] / rhoS
				haveTheta0 = true
			}
			if p > 0 {
				theta1 = u[s] - z[s]
			} else {
				theta1 = l[s] - z[s]
			}

			r2, r3 := -1, -1
			for i, a := range alpha {
				vi := valpha[i]
				switch {
				case p*vi < -zeroTol:
					cand := p * (l[a] - zalpha[i]) / vi
					if r2 == -1 || cand < theta2 {
						r2, theta2 = a, cand
					}
				case p*vi > zeroTol:
					cand := p * (u[a] - zalpha[i]) / vi
					if r3 == -1 || cand < theta3 {
						r3, theta3 = a, cand
					}
				}
			}

			thetas := [4]float64{p * theta0, p * theta1, p * theta2, p * theta3}
			theta := p * minOf4(thetas)

			if math.IsInf(theta, 0) {
				return Result{Z: nil, Pivots: pivots}, ErrRayTermination
			}

			for i := range valpha {
				valpha[i] *= theta
				zalpha[i] += valpha[i]
			}
			w[s] += theta * rhoS
			updateBetaW(M, w, beta, alpha, s, theta, valpha)

			for i, a := range alpha {
				z[a] = zalpha[i]
			}

			switch {
			case haveTheta0 && theta == theta0:
				w[s] = 0
				alpha = sortedInsert(alpha, s)
				beta = sortedRemove(beta, s)
				betal = sortedRemove(betal, s)
				betau = sortedRemove(betau, s)
			case theta == theta1:
				alpha = sortedRemove(alpha, s)
				beta = sortedInsert(beta, s)
				if p > 0 {
					z[s] = u[s]
					betal = sortedRemove(betal, s)
					betau = sortedInsert(betau, s)
				} else {
					z[s] = l[s]
					betau = sortedRemove(betau, s)
					betal = sortedInsert(betal, s)
				}
			case r2 != -1 && theta == theta2:
				z[r2] = l[r2]
				alpha = sortedRemove(alpha, r2)
				betal = sortedInsert(betal, r2)
				beta = sortedInsert(beta, r2)
			case r3 != -1 && theta == theta3:
				z[r3] = u[r3]
				alpha = sortedRemove(alpha, r3)
				betau = sortedInsert(betau, r3)
				beta = sortedInsert(beta, r3)
			default:
				return Result{}, ErrVerificationFailed
			}

			zalpha, err = solveAlpha(M, q, alpha)
			if err != nil {
				return Result{}, ErrSingularBasis
			}
			w = computeZW(M, q, zalpha, l, u, alpha, betal, betau, z)

			if (haveTheta0 && theta == theta0) || theta == theta1 {
				break
			}
		}
	}

	return Result{Z: nil, Pivots: pivots}, ErrMaxPivotsExceeded
}

const nearZero = 1e-12

// sgn mirrors Keller's three-valued sign test: values within tol of zero
// are treated as exactly zero rather than picking a side by rounding error.
func sgn(x, tol float64) float64 {
	switch {
	case x > tol:
		return 1
	case x < -tol:
		return -1
	default:
		return 0
	}
}

func infFor(p, inf float64) float64 {
	if p < 0 {
		return -inf
	}
	return inf
}

func minOf4(v [4]float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func sortedInsert(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}

func sortedRemove(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return s
	}
	return slices.Delete(s, i, i+1)
}

// solveAlpha solves M[alpha,alpha] * zalpha = -q[alpha].
func solveAlpha(M *mat.Dense, q []float64, alpha []int) ([]float64, error) {
	m := len(alpha)
	if m == 0 {
		return nil, nil
	}
	sub := mat.NewDense(m, m, nil)
	rhs := make([]float64, m)
	for i, ai := range alpha {
		rhs[i] = -q[ai]
		for j, aj := range alpha {
			sub.Set(i, j, M.At(ai, aj))
		}
	}
	return linalg.SolveFast(sub, rhs)
}

// kellerColumn computes v_alpha = -M[alpha,alpha]^-1 * M[alpha,s] and
// rho_s = M[s,s] + M[s,alpha].v_alpha, the column pivot data Keller's
// method needs before deciding a step length.
func kellerColumn(M *mat.Dense, alpha []int, s int) ([]float64, float64, error) {
	m := len(alpha)
	if m == 0 {
		return nil, M.At(s, s), nil
	}
	sub := mat.NewDense(m, m, nil)
	rhs := make([]float64, m)
	for i, ai := range alpha {
		rhs[i] = -M.At(ai, s)
		for j, aj := range alpha {
			sub.Set(i, j, M.At(ai, aj))
		}
	}
	v, err := linalg.SolveFast(sub, rhs)
	if err != nil {
		return nil, 0, err
	}
	rowDotV := 0.0
	for i, ai := range alpha {
		rowDotV += M.At(s, ai) * v[i]
	}
	return v, M.At(s, s) + rowDotV, nil
}

// updateBetaW applies w_beta += theta*M[beta,s] + M[beta,alpha]*valpha.
func updateBetaW(M *mat.Dense, w []float64, beta, alpha []int, s int, theta float64, valpha []float64) {
	for _, b := range beta {
		delta := theta * M.At(b, s)
		for i, a := range alpha {
			delta += M.At(b, a) * valpha[i]
		}
		w[b] += delta
	}
}

// computeZW fills in the basic components of z (at their bound) and
// nonbasic components (from zalpha), then returns w = M*z+q.
func computeZW(M *mat.Dense, q, zalpha, l, u []float64, alpha, betal, betau []int, z []float64) []float64 {
	for i, a := range alpha {
		z[a] = zalpha[i]
	}
	for _, b := range betal {
		z[b] = l[b]
	}
	for _, b := range betau {
		z[b] = u[b]
	}
	return matVecPlus(M, z, q)
}

func matVecPlus(M *mat.Dense, z, q []float64) []float64 {
	w := matVec(M, z)
	for i := range w {
		w[i] += q[i]
	}
	return w
}
