package epa

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangular facet of the polytope PolytopeBuilder expands toward
// the origin. Once EPA converges, the closest face's normal becomes the
// contact normal and its vertices seed the friction tangent basis that
// constraint.Contact.tangentBasis also computes independently for the
// solved manifold — TangentBasis lets callers derive the same basis
// straight from the geometry kernel's winner face, before a Contact even
// exists.
type Face struct {
	Points   [3]mgl64.Vec3 // the triangle's 3 vertices
	Normal   mgl64.Vec3    // outward-facing normal
	Distance float64       // distance from the origin to the face plane
}

// TangentBasis returns two orthonormal directions spanning f's face plane,
// picking the world axis least aligned with the normal as the seed so the
// basis stays stable as the normal sweeps past the poles.
func (f *Face) TangentBasis() (mgl64.Vec3, mgl64.Vec3) {
	return tangentBasisFromNormal(f.Normal)
}

// Edge is an undirected boundary edge between two adjacent polytope faces.
type Edge struct {
	A, B mgl64.Vec3
}

// Length is the Euclidean distance between e's endpoints. PolytopeBuilder
// uses this to flag silhouette edges too short to support a stable
// contact-patch boundary once EPA hands the closest face's rim to the
// manifold builder.
func (e Edge) Length() float64 {
	return e.A.Sub(e.B).Len()
}

// normalizeEdge returns edge in a canonical orientation (A <= B
// lexicographically) so the same physical edge hashes identically
// regardless of which face visited it first.
func normalizeEdge(edge Edge) Edge {
	if compareVec3(edge.A, edge.B) > 0 {
		return Edge{edge.B, edge.A}
	}
	return edge
}

// compareVec3 orders vectors lexicographically (x, then y, then z).
func compareVec3(a, b mgl64.Vec3) int {
	if a[0] != b[0] {
		if a[0] < b[0] {
			return -1
		}
		return 1
	}
	if a[1] != b[1] {
		if a[1] < b[1] {
			return -1
		}
		return 1
	}
	if a[2] != b[2] {
		if a[2] < b[2] {
			return -1
		}
		return 1
	}
	return 0
}
