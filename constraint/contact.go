package constraint

import (
	"math"

	"github.com/axiom-physics/impulse/actor"
	"github.com/axiom-physics/impulse/ccd"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactPoint is a single point of a narrow-phase manifold: where the
// two bodies touch and how deeply they interpenetrate there. The
// penetration depth is informational only; the velocity-level MLCP this
// package assembles does not do position correction.
type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// Contact is the tuple (gA, gB, p, n̂, μ, ε, k_tangent_dirs) from the data
// model: one unilateral row plus its friction cone. A manifold with
// several touching points becomes one Contact per point.
type Contact struct {
	GeomA, GeomB ccd.CollisionGeometry
	BodyA, BodyB *actor.RigidBody
	Point        mgl64.Vec3
	Normal       mgl64.Vec3
	Mu           float64
	Restitution  float64
	TangentDirs  int
}

func (c *Contact) Bodies() (*actor.RigidBody, *actor.RigidBody) { return c.BodyA, c.BodyB }

// tangentBasis returns the contact's discretized friction directions: two
// orthonormal tangents when TangentDirs == 2, or k evenly spaced
// directions in the tangent plane otherwise.
func (c *Contact) tangentBasis() []mgl64.Vec3 {
	n := c.Normal
	seed := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		seed = mgl64.Vec3{0, 1, 0}
	}
	t := seed.Sub(n.Mul(seed.Dot(n))).Normalize()
	s := n.Cross(t).Normalize()

	k := c.TangentDirs
	if k <= 0 {
		k = 2
	}
	if k == 2 {
		return []mgl64.Vec3{t, s}
	}

	dirs := make([]mgl64.Vec3, k)
	for i := 0; i < k; i++ {
		theta := 2 * math.Pi * float64(i) / float64(k)
		dirs[i] = t.Mul(math.Cos(theta)).Add(s.Mul(math.Sin(theta)))
	}
	return dirs
}
