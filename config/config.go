// Package config holds the numerical tolerances the solver pipeline needs
// wired through from the top: how close to a bound counts as "at" it, how
// close to zero counts as zero, and the pivot tolerance a basis change must
// clear to be trusted. It deliberately stays a plain struct; there is no
// file format or flag-parsing concern here; the bench driver in
// cmd/impactbench sets them in code.
package config

import "math"

// Tolerances bundles the numerical slack the lcp and constraint packages
// need. Zero values mean "derive a sensible default from the problem size"
// wherever a solver function accepts one directly.
type Tolerances struct {
	// EpsNear is the slab/plane proximity tolerance the ccd and obb
	// packages use to decide whether two surfaces are "touching".
	EpsNear float64

	// ZeroTol is the complementarity tolerance: |z_i * w_i| below this is
	// treated as exactly zero.
	ZeroTol float64

	// PivTol is the pivot-acceptance tolerance: a pivot column entry below
	// this magnitude is treated as numerically zero and skipped.
	PivTol float64
}

// DefaultTolerances derives tolerances the way the original solver does,
// scaling machine epsilon by the problem size n and the infinity norm of
// the system matrix.
func DefaultTolerances(n int, normInf float64) Tolerances {
	eps := math.Nextafter(1, 2) - 1
	scale := math.Max(1.0, normInf)
	return Tolerances{
		EpsNear: 1e-8,
		ZeroTol: float64(n) * normInf * eps,
		PivTol:  eps * float64(n) * scale,
	}
}
