// Package ccd implements the narrow-phase contact generator: given two
// collision geometries known to be touching or interpenetrating, it
// produces the minimal set of contact points and normals the constraint
// assembler needs.
package ccd

import (
	"math"

	"github.com/axiom-physics/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// PrimitiveKind discriminates the closed-form dispatch paths from the
// generic vertex-pass fallback.
type PrimitiveKind int

const (
	PrimitiveGeneric PrimitiveKind = iota
	PrimitiveSphere
	PrimitiveBox
)

// CollisionGeometry is the boundary the narrow-phase consumes. A body
// exposes its boundary vertices for the generic path, a signed-distance
// and normal query for any world point, its pose, and a primitive
// discriminator that routes the specialized closed-form paths.
type CollisionGeometry interface {
	GetVertices() []mgl64.Vec3
	CalcDistAndNormal(point mgl64.Vec3) (dist float64, n mgl64.Vec3)
	GetPose() actor.Transform
	PrimitiveType() PrimitiveKind
}

// ContactRecord is a single narrow-phase contact: a world point, its
// normal (pointing from GeomB into GeomA), and the geometries involved.
type ContactRecord struct {
	Point        mgl64.Vec3
	Normal       mgl64.Vec3
	GeomA, GeomB CollisionGeometry
}

// RigidBodyGeometry adapts a plain actor.RigidBody to CollisionGeometry,
// the one indirection between the dynamics side of the module and the
// narrow-phase.
type RigidBodyGeometry struct {
	Body *actor.RigidBody
}

// Wrap returns body as a CollisionGeometry.
func Wrap(body *actor.RigidBody) *RigidBodyGeometry {
	return &RigidBodyGeometry{Body: body}
}

func (g *RigidBodyGeometry) GetVertices() []mgl64.Vec3 {
	local := g.Body.Shape.GetVertices()
	if local == nil {
		return nil
	}
	world := make([]mgl64.Vec3, len(local))
	for i, v := range local {
		world[i] = g.Body.Transform.ToWorld(v)
	}
	return world
}

func (g *RigidBodyGeometry) GetPose() actor.Transform { return g.Body.Transform }

func (g *RigidBodyGeometry) PrimitiveType() PrimitiveKind {
	switch g.Body.Shape.(type) {
	case *actor.Sphere:
		return PrimitiveSphere
	case *actor.Box:
		return PrimitiveBox
	default:
		return PrimitiveGeneric
	}
}

// CalcDistAndNormal returns the signed distance from point to the
// surface of g (negative when point is inside) and the outward unit
// normal at the closest surface point.
func (g *RigidBodyGeometry) CalcDistAndNormal(point mgl64.Vec3) (float64, mgl64.Vec3) {
	switch shape := g.Body.Shape.(type) {
	case *actor.Sphere:
		return sphereDistAndNormal(g.Body.Transform.Position, shape.Radius, point)
	case *actor.Box:
		return boxDistAndNormal(g.Body.Transform, shape.HalfExtents, point)
	default:
		return genericDistAndNormal(g, point)
	}
}

// SphereRadius exposes the wrapped sphere's radius for the specialized
// sphere/sphere and box/sphere dispatch paths.
func (g *RigidBodyGeometry) SphereRadius() float64 {
	return g.Body.Shape.(*actor.Sphere).Radius
}

// BoxHalfExtents exposes the wrapped box's half-extents for the box/sphere
// dispatch path.
func (g *RigidBodyGeometry) BoxHalfExtents() mgl64.Vec3 {
	return g.Body.Shape.(*actor.Box).HalfExtents
}

func sphereDistAndNormal(center mgl64.Vec3, radius float64, point mgl64.Vec3) (float64, mgl64.Vec3) {
	diff := point.Sub(center)
	dist := diff.Len()
	if dist < 1e-12 {
		return -radius, mgl64.Vec3{0, 1, 0}
	}
	return dist - radius, diff.Mul(1.0 / dist)
}

func boxDistAndNormal(transform actor.Transform, halfExtents mgl64.Vec3, point mgl64.Vec3) (float64, mgl64.Vec3) {
	local := transform.ToLocal(point)

	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	clamped := mgl64.Vec3{
		clamp(local.X(), -hx, hx),
		clamp(local.Y(), -hy, hy),
		clamp(local.Z(), -hz, hz),
	}

	inside := local == clamped
	if !inside {
		diff := local.Sub(clamped)
		dist := diff.Len()
		worldDiff := transform.ToWorldDirection(diff.Mul(1.0 / dist))
		return dist, worldDiff
	}

	// Point is inside the box: distance is negative, measured to the
	// nearest face.
	dx := hx - math.Abs(local.X())
	dy := hy - math.Abs(local.Y())
	dz := hz - math.Abs(local.Z())

	var localNormal mgl64.Vec3
	minPen := dx
	localNormal = mgl64.Vec3{math.Copysign(1, local.X()), 0, 0}
	if dy < minPen {
		minPen = dy
		localNormal = mgl64.Vec3{0, math.Copysign(1, local.Y()), 0}
	}
	if dz < minPen {
		minPen = dz
		localNormal = mgl64.Vec3{0, 0, math.Copysign(1, local.Z())}
	}

	return -minPen, transform.ToWorldDirection(localNormal)
}

// genericDistAndNormal falls back to the nearest of g's own vertices when
// the wrapped shape has no closed-form distance query (curved shapes with
// no finite vertex set go through the specialized paths instead).
func genericDistAndNormal(g *RigidBodyGeometry, point mgl64.Vec3) (float64, mgl64.Vec3) {
	verts := g.GetVertices()
	if len(verts) == 0 {
		return math.Inf(1), mgl64.Vec3{0, 1, 0}
	}
	best := verts[0]
	bestDist := point.Sub(best).Len()
	for _, v := range verts[1:] {
		if d := point.Sub(v).Len(); d < bestDist {
			bestDist, best = d, v
		}
	}
	diff := point.Sub(best)
	if bestDist < 1e-12 {
		return 0, mgl64.Vec3{0, 1, 0}
	}
	return bestDist, diff.Mul(1.0 / bestDist)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
