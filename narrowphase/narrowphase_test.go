package narrowphase

import (
	"testing"

	"github.com/axiom-physics/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func sphereBody(center mgl64.Vec3, radius float64) *actor.RigidBody {
	transform := actor.NewTransform()
	transform.Position = center
	return actor.NewRigidBody(transform, &actor.Sphere{Radius: radius}, actor.BodyTypeDynamic, 1.0)
}

func cylinderBody(center mgl64.Vec3, radius, halfHeight float64) *actor.RigidBody {
	transform := actor.NewTransform()
	transform.Position = center
	return actor.NewRigidBody(transform, &actor.Cylinder{Radius: radius, HalfHeight: halfHeight}, actor.BodyTypeDynamic, 1.0)
}

func TestGenerateContacts_SphereSpherePenetrating_UsesClosedForm(t *testing.T) {
	a := sphereBody(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereBody(mgl64.Vec3{0, 1.5, 0}, 1)

	contacts := GenerateContacts(a, b, 1e-8)
	require.Len(t, contacts, 1)
	require.InDelta(t, 1.0, contacts[0].Normal.Len(), 1e-9)
	require.Equal(t, a, contacts[0].BodyA)
	require.Equal(t, b, contacts[0].BodyB)
}

func TestGenerateContacts_SphereSphereSeparated_NoContact(t *testing.T) {
	a := sphereBody(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereBody(mgl64.Vec3{0, 10, 0}, 1)

	require.Empty(t, GenerateContacts(a, b, 1e-8))
}

func TestGenerateContacts_FillsMaterialTerms(t *testing.T) {
	a := sphereBody(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereBody(mgl64.Vec3{0, 1.9, 0}, 1)
	a.Material.DynamicFriction, b.Material.DynamicFriction = 0.4, 0.6
	a.Material.Restitution, b.Material.Restitution = 0.2, 0.8

	contacts := GenerateContacts(a, b, 1e-8)
	require.Len(t, contacts, 1)
	require.Greater(t, contacts[0].Mu, 0.0)
	require.Greater(t, contacts[0].Restitution, 0.0)
	require.Equal(t, 2, contacts[0].TangentDirs)
}

func TestGenerateContacts_GenericOverlap_FallsThroughToGJKEPA(t *testing.T) {
	a := cylinderBody(mgl64.Vec3{0, 0, 0}, 1, 1)
	b := cylinderBody(mgl64.Vec3{0, 1.5, 0}, 1, 1)

	contacts := GenerateContacts(a, b, 1e-8)
	require.NotEmpty(t, contacts, "overlapping cylinders have no sphere/box closed-form path but must still resolve via the vertex pass or GJK+EPA")
	for _, c := range contacts {
		require.InDelta(t, 1.0, c.Normal.Len(), 1e-6)
	}
}

func TestGenerateContacts_GenericSeparated_NoContact(t *testing.T) {
	a := cylinderBody(mgl64.Vec3{0, 0, 0}, 1, 1)
	b := cylinderBody(mgl64.Vec3{0, 20, 0}, 1, 1)

	require.Empty(t, GenerateContacts(a, b, 1e-8))
}
