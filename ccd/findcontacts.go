package ccd

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type radiusGeometry interface {
	SphereRadius() float64
}

type halfExtentGeometry interface {
	BoxHalfExtents() mgl64.Vec3
}

// FindContacts produces at least one contact when gA and gB are touching
// (signed distance within epsNear) or interpenetrating, and an empty slice
// otherwise. Sphere/sphere and box/sphere pairs route through closed-form
// paths; everything else falls through to the generic vertex pass.
func FindContacts(gA, gB CollisionGeometry, epsNear float64) []ContactRecord {
	ka, kb := gA.PrimitiveType(), gB.PrimitiveType()

	switch {
	case ka == PrimitiveSphere && kb == PrimitiveSphere:
		if rec, ok := sphereSphere(gA, gB, epsNear); ok {
			return []ContactRecord{rec}
		}
		return nil
	case ka == PrimitiveBox && kb == PrimitiveSphere:
		rec, ok := boxSphere(gA, gB, epsNear)
		if !ok {
			return nil
		}
		rec.Normal = rec.Normal.Mul(-1)
		return []ContactRecord{rec}
	case ka == PrimitiveSphere && kb == PrimitiveBox:
		rec, ok := boxSphere(gB, gA, epsNear)
		if !ok {
			return nil
		}
		rec.GeomA, rec.GeomB = rec.GeomB, rec.GeomA
		return []ContactRecord{rec}
	default:
		return genericVertexPass(gA, gB, epsNear)
	}
}

// sphereSphere implements spec.md §4.1's sphere/sphere path: centers cA,
// cB in world frame, normal = (cA-cB)/|cA-cB|, contact point at the
// midpoint of the two surface points along the normal. Produces a contact
// whether the spheres are touching or overlapping, except when the centers
// coincide and no normal is defined.
func sphereSphere(gA, gB CollisionGeometry, epsNear float64) (ContactRecord, bool) {
	cA, cB := gA.GetPose().Position, gB.GetPose().Position
	rA, rB := gA.(radiusGeometry).SphereRadius(), gB.(radiusGeometry).SphereRadius()

	delta := cA.Sub(cB)
	dist := delta.Len()
	if dist < 1e-12 {
		return ContactRecord{}, false
	}
	normal := delta.Mul(1.0 / dist)

	if dist-rA-rB > epsNear {
		return ContactRecord{}, false
	}

	surfaceA := cA.Sub(normal.Mul(rA))
	surfaceB := cB.Add(normal.Mul(rB))
	point := surfaceA.Add(surfaceB).Mul(0.5)

	return ContactRecord{Point: point, Normal: normal, GeomA: gA, GeomB: gB}, true
}

// boxSphere implements spec.md §4.1's box/sphere path: gA must be the
// box, gB the sphere. Transforms the sphere center into box-local space,
// finds the closest point on the box, and derives the contact point and
// normal from the box-center-to-sphere-center direction (the closest-face
// normal when the two centers coincide). The returned normal points from
// the box toward the sphere; FindContacts orients it from GeomB into GeomA.
func boxSphere(gA, gB CollisionGeometry, epsNear float64) (ContactRecord, bool) {
	boxPose := gA.GetPose()
	halfExtents := gA.(halfExtentGeometry).BoxHalfExtents()
	sphereCenter := gB.GetPose().Position
	radius := gB.(radiusGeometry).SphereRadius()

	dist, closestNormal := boxDistAndNormal(boxPose, halfExtents, sphereCenter)
	signedDist := dist - radius
	if signedDist > epsNear {
		return ContactRecord{}, false
	}

	normal := closestNormal
	if toSphere := sphereCenter.Sub(boxPose.Position); toSphere.Len() > 1e-12 {
		normal = toSphere.Normalize()
	}
	pSphere := sphereCenter.Sub(normal.Mul(radius))
	var point mgl64.Vec3
	if dist > 0 {
		pBox := sphereCenter.Sub(closestNormal.Mul(dist))
		point = pSphere.Add(pBox).Mul(0.5)
	} else {
		point = pSphere
	}

	return ContactRecord{Point: point, Normal: normal, GeomA: gA, GeomB: gB}, true
}

// genericVertexPass implements spec.md §4.1's generic path: for each
// vertex of gA, query its distance/normal against gB, keeping the set of
// candidates tied for the current minimum distance; then a symmetric pass
// over gB's vertices with the normal negated. The accumulate-and-discard
// rule mirrors the manifold clipping in epa.GenerateManifold, adapted to
// operate on raw distance queries instead of polytope faces. Vertices
// farther than epsNear from the other geometry are skipped, so separated
// geometries yield no records.
func genericVertexPass(gA, gB CollisionGeometry, epsNear float64) []ContactRecord {
	var records []ContactRecord
	minDist := math.Inf(1)

	for _, v := range gA.GetVertices() {
		d, n := gB.CalcDistAndNormal(v)
		if d > epsNear || d-epsNear > minDist {
			continue
		}
		if d-epsNear < minDist && minDist > 0 {
			records = records[:0]
		}
		minDist = min(minDist, max(0, d))
		records = append(records, ContactRecord{Point: v, Normal: n, GeomA: gA, GeomB: gB})
	}

	for _, v := range gB.GetVertices() {
		d, n := gA.CalcDistAndNormal(v)
		if d > epsNear || d-epsNear > minDist {
			continue
		}
		if d-epsNear < minDist && minDist > 0 {
			records = records[:0]
		}
		minDist = min(minDist, max(0, d))
		records = append(records, ContactRecord{Point: v, Normal: n.Mul(-1), GeomA: gA, GeomB: gB})
	}

	return records
}
