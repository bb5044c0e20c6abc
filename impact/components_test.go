package impact

import (
	"testing"

	"github.com/axiom-physics/impulse/actor"
	"github.com/axiom-physics/impulse/ccd"
	"github.com/axiom-physics/impulse/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

func testBody(x float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{x, 0, 0}, Rotation: mgl64.QuatIdent()},
		&actor.Sphere{Radius: 0.5},
		actor.BodyTypeDynamic, 1.0,
	)
}

func contactBetween(a, b *actor.RigidBody) *constraint.Contact {
	return &constraint.Contact{
		GeomA: ccd.Wrap(a), GeomB: ccd.Wrap(b),
		BodyA: a, BodyB: b,
		Point:       mgl64.Vec3{0, 0, 0},
		Normal:      mgl64.Vec3{1, 0, 0},
		TangentDirs: 2,
	}
}

func TestConnectedComponents_Empty(t *testing.T) {
	if got := ConnectedComponents(nil); got != nil {
		t.Errorf("ConnectedComponents(nil) = %v, want nil", got)
	}
}

func TestConnectedComponents_DisjointPairsStaySeparate(t *testing.T) {
	a, b := testBody(0), testBody(1)
	c, d := testBody(10), testBody(11)

	cab := contactBetween(a, b)
	ccontact := contactBetween(c, d)

	components := ConnectedComponents([]constraint.Constraint{cab, ccontact})
	if len(components) != 2 {
		t.Fatalf("len(components) = %d, want 2", len(components))
	}
	for _, comp := range components {
		if len(comp) != 1 {
			t.Errorf("component size = %d, want 1", len(comp))
		}
	}
}

func TestConnectedComponents_SharedBodyMerges(t *testing.T) {
	a, b, c := testBody(0), testBody(1), testBody(2)

	cab := contactBetween(a, b)
	cbc := contactBetween(b, c)

	components := ConnectedComponents([]constraint.Constraint{cab, cbc})
	if len(components) != 1 {
		t.Fatalf("len(components) = %d, want 1 (a-b-c share body b)", len(components))
	}
	if len(components[0]) != 2 {
		t.Errorf("len(components[0]) = %d, want 2", len(components[0]))
	}
}

func TestConnectedComponents_CoversEveryConstraintExactlyOnce(t *testing.T) {
	bodies := make([]*actor.RigidBody, 6)
	for i := range bodies {
		bodies[i] = testBody(float64(i))
	}

	var constraints []constraint.Constraint
	constraints = append(constraints,
		contactBetween(bodies[0], bodies[1]),
		contactBetween(bodies[1], bodies[2]),
		contactBetween(bodies[3], bodies[4]),
	)

	components := ConnectedComponents(constraints)

	total := 0
	for _, comp := range components {
		total += len(comp)
	}
	if total != len(constraints) {
		t.Errorf("total constraints across components = %d, want %d", total, len(constraints))
	}
	if len(components) != 2 {
		t.Fatalf("len(components) = %d, want 2 ({0,1,2}, {3,4})", len(components))
	}
}
