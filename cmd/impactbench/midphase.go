package main

import (
	"github.com/axiom-physics/impulse/actor"
	"github.com/axiom-physics/impulse/obb"
)

// bodyOBB builds the tightest OBB this bench can cheaply derive for a
// body: its actual oriented box for an *actor.Box, and an axis-aligned box
// over its world AABB for everything else (spheres gain nothing from an
// oriented box, and a generic vertex-sampled shape's local axes aren't
// worth computing here).
func bodyOBB(b *actor.RigidBody) obb.OBB {
	if box, ok := b.Shape.(*actor.Box); ok {
		return obb.New(b.Transform.Position, box.HalfExtents, b.Transform.Rotation.Mat4().Mat3())
	}
	aabb := b.Shape.GetAABB()
	return obb.FromAABBCorners(aabb.Min, aabb.Max)
}

// sweptOBB expands b's OBB to cover its motion over dt, the conservative
// bounding volume spec.md §4.8's CCD candidate filter is built on.
func sweptOBB(b *actor.RigidBody, dt float64) obb.OBB {
	return obb.ExpandVelocity(bodyOBB(b), b.Velocity, b.AngularVelocity, dt)
}

// refinePairs drops broadphase candidates whose swept OBBs don't actually
// overlap, a tighter mid-phase test than the AABB grid's own overlap check
// (broadphase.Grid's candidates pass only a margin-padded AABB overlap test
// on the bodies' current poses).
func refinePairs(pairs []pairCandidate, dt float64) []pairCandidate {
	kept := make([]pairCandidate, 0, len(pairs))
	for _, p := range pairs {
		if obb.Intersects(sweptOBB(p.A, dt), sweptOBB(p.B, dt)) {
			kept = append(kept, p)
		}
	}
	return kept
}

type pairCandidate struct {
	A, B *actor.RigidBody
}
