package lcp

import (
	"math"
	"slices"

	"github.com/axiom-physics/impulse/internal/linalg"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// FastPivot solves the bounded LCP l <= z <= u, w = M*z+q via a principal
// pivoting scheme that breaks ties between equally-violated indices at
// random, using rng. It trades Keller's tight convergence guarantee for an
// algorithm that degrades gracefully: whichever index is most violated
// moves basic/nonbasic each step, regardless of whether M is exactly PSD.
// impact.Handler reaches for it first on bounded problems when an RNG is
// set, before escalating to Keller.
func FastPivot(M *mat.Dense, q, l, u []float64, rng *rand.Rand, zeroTol float64) (Result, error) {
	n, _ := M.Dims()
	if n == 0 {
		return Result{}, nil
	}
	if zeroTol <= 0 {
		zeroTol = float64(n) * normInf(M) * epsMachine
	}
	inf := math.Inf(1)

	var nonbas, bas, basl, basu []int
	for i := 0; i < n; i++ {
		switch {
		case l[i] == -inf && u[i] == inf:
			nonbas = append(nonbas, i)
		case l[i] == -inf:
			basu = append(basu, i)
			bas = append(bas, i)
		default:
			basl = append(basl, i)
			bas = append(bas, i)
		}
	}
	slices.Sort(bas)
	slices.Sort(basl)
	slices.Sort(basu)
	slices.Sort(nonbas)

	maxPiv := n * n
	if maxPiv < 1000 {
		maxPiv = 1000
	}

	z := make([]float64, n)
	pivots := 0
	for ; pivots < maxPiv; pivots++ {
		zNonbas, w, err := solveFastPivotStep(M, q, l, u, nonbas, bas, basl, basu)
		if err != nil {
			return Result{}, ErrSingularBasis
		}

		for i, b := range bas {
			z[b] = w.zbas[i]
		}
		for i, nb := range nonbas {
			z[nb] = zNonbas[i]
		}

		// Find the largest bound violation among basic w components:
		// w must be >= 0 where z sits at its lower bound, <= 0 at upper.
		toNonbasic, maxWvio := -1, -1.0
		for _, b := range bas {
			var viol float64
			if slices.Contains(basl, b) {
				viol = -w.full[b]
			} else {
				viol = w.full[b]
			}
			if viol > maxWvio {
				maxWvio, toNonbasic = viol, b
			}
		}

		if maxWvio < zeroTol {
			toBasic, maxZvio := mostViolatedNonbasic(z, l, u, nonbas)
			if toBasic == -1 {
				return Result{Z: z, Pivots: pivots}, nil
			}
			moveToBasic(z, l, u, pickTiedViolator(z, l, u, nonbas, toBasic, maxZvio, rng), &nonbas, &bas, &basl, &basu)
			continue
		}

		moveToNonbasic(toNonbasic, &nonbas, &bas, &basl, &basu)

		if toBasic, maxZvio := mostViolatedNonbasic(z, l, u, nonbas); toBasic != -1 && maxZvio > 0 {
			moveToBasic(z, l, u, pickTiedViolator(z, l, u, nonbas, toBasic, maxZvio, rng), &nonbas, &bas, &basl, &basu)
		}
	}

	return Result{Z: nil, Pivots: pivots}, ErrMaxPivotsExceeded
}

type fastPivotW struct {
	zbas []float64
	full []float64
}

// solveFastPivotStep solves for the nonbasic z values given the current
// basic/nonbasic partition, then computes w over the full index range.
func solveFastPivotStep(M *mat.Dense, q, l, u []float64, nonbas, bas, basl, basu []int) ([]float64, fastPivotW, error) {
	n, _ := M.Dims()
	zbas := make([]float64, len(bas))
	for i, b := range bas {
		if slices.Contains(basl, b) {
			zbas[i] = l[b]
		} else {
			zbas[i] = u[b]
		}
	}

	m := len(nonbas)
	var zNonbas []float64
	if m > 0 {
		sub := mat.NewDense(m, m, nil)
		rhs := make([]float64, m)
		for i, ni := range nonbas {
			rhs[i] = -q[ni]
			for j, nj := range nonbas {
				sub.Set(i, j, M.At(ni, nj))
			}
		}
		var err error
		zNonbas, err = linalg.SolveFast(sub, rhs)
		if err != nil {
			return nil, fastPivotW{}, err
		}
	}

	full := make([]float64, n)
	for i, ni := range nonbas {
		full[ni] = zNonbas[i]
	}
	for i, b := range bas {
		full[b] = zbas[i]
	}
	w := matVecPlus(M, full, q)

	return zNonbas, fastPivotW{zbas: zbas, full: w}, nil
}

// mostViolatedNonbasic finds the nonbasic index whose current value most
// exceeds its bound, and by how much.
func mostViolatedNonbasic(z, l, u []float64, nonbas []int) (int, float64) {
	best, bestViol := -1, -1.0
	for _, i := range nonbas {
		var viol float64
		switch {
		case z[i] < l[i]:
			viol = l[i] - z[i]
		case z[i] > u[i]:
			viol = z[i] - u[i]
		default:
			continue
		}
		if viol > bestViol {
			best, bestViol = i, viol
		}
	}
	return best, bestViol
}

// pickTiedViolator collects every nonbasic index tied with the worst
// violation (within nearZero) and returns one chosen uniformly at random.
func pickTiedViolator(z, l, u []float64, nonbas []int, best int, bestViol float64, rng *rand.Rand) int {
	var tied []int
	for _, i := range nonbas {
		switch {
		case i == best:
			tied = append(tied, i)
		case l[i]-z[i]+nearZero > bestViol:
			tied = append(tied, i)
		case z[i]-u[i]+nearZero > bestViol:
			tied = append(tied, i)
		}
	}
	if len(tied) == 0 {
		return best
	}
	return tied[rng.Intn(len(tied))]
}

func moveToBasic(z, l, u []float64, idx int, nonbas, bas, basl, basu *[]int) {
	*nonbas = sortedRemove(*nonbas, idx)
	*bas = sortedInsert(*bas, idx)
	if l[idx]-z[idx] > z[idx]-u[idx] {
		*basl = sortedInsert(*basl, idx)
	} else {
		*basu = sortedInsert(*basu, idx)
	}
}

func moveToNonbasic(idx int, nonbas, bas, basl, basu *[]int) {
	*bas = sortedRemove(*bas, idx)
	*nonbas = sortedInsert(*nonbas, idx)
	*basl = sortedRemove(*basl, idx)
	*basu = sortedRemove(*basu, idx)
}
