// Package obb implements oriented bounding boxes and the separating-axis
// overlap test used to cull candidate pairs before the narrow phase runs.
package obb

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// nearZero counteracts arithmetic error when two edges are parallel and
// their cross product is near zero, the same cushion the SAT test in
// Ericson's "Real-Time Collision Detection" applies to abs(Rab).
const nearZero = 1e-12

// OBB is an oriented bounding box: a center, a rotation whose columns are
// the box's principal axes expressed in world space, and half-extents
// along those axes.
type OBB struct {
	Center      mgl64.Vec3
	Rotation    mgl64.Mat3
	HalfExtents mgl64.Vec3
}

// New builds an OBB from a center, half-extents along its local axes, and
// the rotation carrying those axes into world space.
func New(center, halfExtents mgl64.Vec3, rotation mgl64.Mat3) OBB {
	return OBB{Center: center, Rotation: rotation, HalfExtents: halfExtents}
}

// FromAABBCorners builds an axis-aligned OBB (Rotation = identity) spanning
// min..max.
func FromAABBCorners(min, max mgl64.Vec3) OBB {
	center := min.Add(max).Mul(0.5)
	half := max.Sub(min).Mul(0.5)
	return OBB{Center: center, Rotation: mgl64.Ident3(), HalfExtents: half}
}

// Intersects determines whether two OBBs overlap using the 15-axis
// separating-axis test (3 face normals of each box, plus 9 edge-cross-edge
// axes), adapted from Ericson's formulation.
func Intersects(a, b OBB) bool {
	const x, y, z = 0, 1, 2

	// Rab expresses b's axes in a's coordinate frame.
	Rab := a.Rotation.Transpose().Mul3(b.Rotation)

	// Translation vector in a's coordinate frame.
	t := a.Rotation.Transpose().Mul3x1(b.Center.Sub(a.Center))

	var absRab mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			absRab[j*3+i] = math.Abs(Rab.At(i, j)) + nearZero
		}
	}

	al := a.HalfExtents
	bl := b.HalfExtents

	// Axes L = A0, A1, A2.
	for i := 0; i < 3; i++ {
		ra := al[i]
		rb := bl[x]*absRab.At(i, x) + bl[y]*absRab.At(i, y) + bl[z]*absRab.At(i, z)
		if math.Abs(t[i]) > ra+rb {
			return false
		}
	}

	// Axes L = B0, B1, B2.
	for i := 0; i < 3; i++ {
		ra := al[x]*absRab.At(x, i) + al[y]*absRab.At(y, i) + al[z]*absRab.At(z, i)
		rb := bl[i]
		col := Rab.Col(i)
		if math.Abs(t.Dot(col)) > ra+rb {
			return false
		}
	}

	// Axis L = A0 x B0.
	ra := al[y]*absRab.At(z, x) + al[z]*absRab.At(y, x)
	rb := bl[y]*absRab.At(x, z) + bl[z]*absRab.At(x, y)
	if math.Abs(t[z]*Rab.At(y, x)-t[y]*Rab.At(z, x)) > ra+rb {
		return false
	}

	// Axis L = A0 x B1.
	ra = al[y]*absRab.At(z, y) + al[z]*absRab.At(y, y)
	rb = bl[x]*absRab.At(x, z) + bl[z]*absRab.At(x, x)
	if math.Abs(t[z]*Rab.At(y, y)-t[y]*Rab.At(z, y)) > ra+rb {
		return false
	}

	// Axis L = A0 x B2.
	ra = al[y]*absRab.At(z, z) + al[z]*absRab.At(y, z)
	rb = bl[x]*absRab.At(x, y) + bl[y]*absRab.At(x, x)
	if math.Abs(t[z]*Rab.At(y, z)-t[y]*Rab.At(z, z)) > ra+rb {
		return false
	}

	// Axis L = A1 x B0.
	ra = al[x]*absRab.At(z, x) + al[z]*absRab.At(x, x)
	rb = bl[y]*absRab.At(y, z) + bl[z]*absRab.At(y, y)
	if math.Abs(t[x]*Rab.At(z, x)-t[z]*Rab.At(x, x)) > ra+rb {
		return false
	}

	// Axis L = A1 x B1.
	ra = al[x]*absRab.At(z, y) + al[z]*absRab.At(x, y)
	rb = bl[x]*absRab.At(y, z) + bl[z]*absRab.At(y, x)
	if math.Abs(t[x]*Rab.At(z, y)-t[z]*Rab.At(x, y)) > ra+rb {
		return false
	}

	// Axis L = A1 x B2.
	ra = al[x]*absRab.At(z, z) + al[z]*absRab.At(x, z)
	rb = bl[x]*absRab.At(y, y) + bl[y]*absRab.At(y, x)
	if math.Abs(t[x]*Rab.At(z, z)-t[z]*Rab.At(x, z)) > ra+rb {
		return false
	}

	// Axis L = A2 x B0.
	ra = al[x]*absRab.At(y, x) + al[y]*absRab.At(x, x)
	rb = bl[y]*absRab.At(z, z) + bl[z]*absRab.At(z, y)
	if math.Abs(t[y]*Rab.At(x, x)-t[x]*Rab.At(y, x)) > ra+rb {
		return false
	}

	// Axis L = A2 x B1.
	ra = al[x]*absRab.At(y, y) + al[y]*absRab.At(x, y)
	rb = bl[x]*absRab.At(z, z) + bl[z]*absRab.At(z, x)
	if math.Abs(t[y]*Rab.At(x, y)-t[x]*Rab.At(y, y)) > ra+rb {
		return false
	}

	// Axis L = A2 x B2.
	ra = al[x]*absRab.At(y, z) + al[y]*absRab.At(x, z)
	rb = bl[x]*absRab.At(z, y) + bl[y]*absRab.At(z, x)
	if math.Abs(t[y]*Rab.At(x, z)-t[x]*Rab.At(y, z)) > ra+rb {
		return false
	}

	return true
}

// IntersectsTransformed tests a against b after carrying b's center and
// rotation through the given world transform (rot applied first, then
// trans) — useful when b's pose is only known relative to a's frame.
func IntersectsTransformed(a, b OBB, rot mgl64.Mat3, trans mgl64.Vec3) bool {
	moved := OBB{
		Center:      rot.Mul3x1(b.Center).Add(trans),
		Rotation:    rot.Mul3(b.Rotation),
		HalfExtents: b.HalfExtents,
	}
	return Intersects(a, moved)
}

// IntersectsSegment runs a slab test for the segment p0->p1 against o. It
// returns whether the segment hits, the entry parameter tMin along the
// segment (clamped to [0,1], meaningful only if hit is true), and the
// world-space hit point. epsNear guards the parallel-axis special case.
func (o OBB) IntersectsSegment(p0, p1 mgl64.Vec3, epsNear float64) (hit bool, tMin float64, hitPoint mgl64.Vec3) {
	d := p1.Sub(p0)
	localOrigin := o.Rotation.Transpose().Mul3x1(p0.Sub(o.Center))
	localDir := o.Rotation.Transpose().Mul3x1(d)

	tmin, tmax := 0.0, 1.0
	for axis := 0; axis < 3; axis++ {
		if math.Abs(localDir[axis]) < epsNear {
			if math.Abs(localOrigin[axis]) > o.HalfExtents[axis] {
				return false, 0, mgl64.Vec3{}
			}
			continue
		}

		invD := 1.0 / localDir[axis]
		t1 := (-o.HalfExtents[axis] - localOrigin[axis]) * invD
		t2 := (o.HalfExtents[axis] - localOrigin[axis]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false, 0, mgl64.Vec3{}
		}
	}

	return true, tmin, p0.Add(d.Mul(tmin))
}

// ExpandLinear grows o into a swept bounding volume covering its motion
// along vLin over dt: the center advances to the sweep's midpoint and each
// axis's half-extent grows by half the sweep's projection onto that axis.
func ExpandLinear(o OBB, vLin mgl64.Vec3, dt float64) OBB {
	displacement := vLin.Mul(dt)
	halfDisplacement := displacement.Mul(0.5)

	expanded := o
	expanded.Center = o.Center.Add(halfDisplacement)

	for axis := 0; axis < 3; axis++ {
		localAxis := o.Rotation.Col(axis)
		proj := math.Abs(halfDisplacement.Dot(localAxis))
		expanded.HalfExtents[axis] = o.HalfExtents[axis] + proj
	}

	return expanded
}

// ExpandAngular grows o's half-extents to cover the rotational sweep
// implied by omega over dt. It bounds the sweep by inflating every axis by
// r*sin(theta), where r is the box's circumradius and theta is the
// rotation angle: exact for a point at the circumradius and conservative
// for everything inside it.
func ExpandAngular(o OBB, omega mgl64.Vec3, dt float64) OBB {
	theta := omega.Len() * dt
	if theta < nearZero {
		return o
	}

	circumradius := o.HalfExtents.Len()
	sweep := circumradius * math.Sin(math.Min(theta, math.Pi/2))

	expanded := o
	expanded.HalfExtents = o.HalfExtents.Add(mgl64.Vec3{sweep, sweep, sweep})
	return expanded
}

// ExpandVelocity composes the linear and angular sweep expansions, giving a
// single conservative bounding volume for a body translating at vLin and
// rotating at omega over dt.
func ExpandVelocity(o OBB, vLin, omega mgl64.Vec3, dt float64) OBB {
	return ExpandAngular(ExpandLinear(o, vLin, dt), omega, dt)
}
