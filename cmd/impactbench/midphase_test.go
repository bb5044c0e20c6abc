package main

import (
	"testing"

	"github.com/axiom-physics/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func sphereAt(pos mgl64.Vec3, radius float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.Transform{Position: pos, Rotation: mgl64.QuatIdent()},
		&actor.Sphere{Radius: radius},
		actor.BodyTypeDynamic, 1.0,
	)
}

func TestBodyOBB_BoxUsesActualHalfExtents(t *testing.T) {
	box := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()},
		&actor.Box{HalfExtents: mgl64.Vec3{2, 3, 4}},
		actor.BodyTypeDynamic, 1.0,
	)

	o := bodyOBB(box)
	if o.HalfExtents != (mgl64.Vec3{2, 3, 4}) {
		t.Errorf("HalfExtents = %v, want {2 3 4}", o.HalfExtents)
	}
	if o.Center != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Center = %v, want {1 2 3}", o.Center)
	}
}

func TestRefinePairs_OverlappingPairSurvives(t *testing.T) {
	a := sphereAt(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereAt(mgl64.Vec3{0.5, 0, 0}, 1)

	kept := refinePairs([]pairCandidate{{A: a, B: b}}, 1.0/60.0)
	if len(kept) != 1 {
		t.Fatalf("kept = %d pairs, want 1", len(kept))
	}
}

func TestRefinePairs_FarApartPairDropped(t *testing.T) {
	a := sphereAt(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereAt(mgl64.Vec3{100, 0, 0}, 1)

	kept := refinePairs([]pairCandidate{{A: a, B: b}}, 1.0/60.0)
	if len(kept) != 0 {
		t.Errorf("kept = %d pairs, want 0", len(kept))
	}
}

func TestRefinePairs_FastApproachIsKeptBySweep(t *testing.T) {
	// Two spheres 3 units apart, closing at 200 units/s: their AABBs don't
	// overlap at rest, but the swept OBB over one frame must catch the
	// incoming approach, which is the whole point of sweptOBB over bodyOBB.
	a := sphereAt(mgl64.Vec3{0, 0, 0}, 0.5)
	a.Velocity = mgl64.Vec3{100, 0, 0}
	b := sphereAt(mgl64.Vec3{3, 0, 0}, 0.5)
	b.Velocity = mgl64.Vec3{-100, 0, 0}

	kept := refinePairs([]pairCandidate{{A: a, B: b}}, 1.0/60.0)
	if len(kept) != 1 {
		t.Errorf("kept = %d pairs, want 1 (fast-approaching pair should survive the sweep)", len(kept))
	}
}
