// Package narrowphase is the dispatcher spec.md §4.1 describes as a single
// entry point: given two bodies a broadphase pass already flagged as an AABB
// pair, decide which of ccd's closed-form paths, or gjk+epa's general convex
// path, actually produces the contact manifold.
package narrowphase

import (
	"github.com/axiom-physics/impulse/actor"
	"github.com/axiom-physics/impulse/ccd"
	"github.com/axiom-physics/impulse/constraint"
	"github.com/axiom-physics/impulse/epa"
	"github.com/axiom-physics/impulse/gjk"
)

// GenerateContacts returns zero or more contacts between a and b, with
// bodies no further apart than epsNear. Sphere/sphere, box/sphere, and any
// pair with a finite vertex set route through ccd's closed-form or
// vertex-pass paths first, since those are exact for those primitives and
// cheaper than a GJK run. Anything that pass reports as separated but whose
// primitive kind isn't one of ccd's specialized ones (a curved shape with
// no closed-form query, a cylinder or cone support function, etc.) falls
// through to GJK+EPA, which can detect and resolve deep overlap that a
// vertex-only query would miss.
func GenerateContacts(a, b *actor.RigidBody, epsNear float64) []constraint.Contact {
	geomA, geomB := ccd.Wrap(a), ccd.Wrap(b)

	if records := ccd.FindContacts(geomA, geomB, epsNear); len(records) > 0 {
		return toContacts(a, b, records)
	}

	if geomA.PrimitiveType() == ccd.PrimitiveGeneric || geomB.PrimitiveType() == ccd.PrimitiveGeneric {
		return epaContacts(a, b, epsNear)
	}
	return nil
}

// epaContacts runs GJK to test for overlap and, if the shapes do overlap,
// EPA to build the manifold. A GJK miss or an EPA convergence failure both
// just mean "no contact this step" here; the caller's next broadphase pass
// will try again. epsNear also governs GJK's own near-zero thresholds, so a
// caller who loosens epsNear for a whole pipeline run (e.g. to settle a
// stack at rest) gets a GJK that's equally forgiving about coincident
// positions and origin-touching simplices, not just ccd's closed-form path.
func epaContacts(a, b *actor.RigidBody, epsNear float64) []constraint.Contact {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.GJKTol(a, b, simplex, epsNear) {
		return nil
	}

	contacts, err := epa.EPA(a, b, simplex)
	if err != nil {
		return nil
	}
	// EPA's normal points from a toward b; contacts carry it from b into a,
	// the same orientation as ccd's records.
	for i := range contacts {
		contacts[i].Normal = contacts[i].Normal.Mul(-1)
	}
	return contacts
}

// toContacts turns ccd's geometry-level records into solver-level contacts,
// filling in the material terms ccd's records don't carry.
func toContacts(a, b *actor.RigidBody, records []ccd.ContactRecord) []constraint.Contact {
	mu := constraint.ComputeDynamicFriction(a.Material, b.Material)
	restitution := constraint.ComputeRestitution(a.Material, b.Material)

	contacts := make([]constraint.Contact, len(records))
	for i, r := range records {
		contacts[i] = constraint.Contact{
			GeomA: r.GeomA, GeomB: r.GeomB,
			BodyA: a, BodyB: b,
			Point:       r.Point,
			Normal:      r.Normal,
			Mu:          mu,
			Restitution: restitution,
			TangentDirs: epa.DefaultTangentDirs,
		}
	}
	return contacts
}
