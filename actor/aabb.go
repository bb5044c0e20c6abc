package actor

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// FromPoint returns the degenerate AABB (zero volume) enclosing a single
// point, the usual seed for growing a box's bounds corner-by-corner.
func FromPoint(p mgl64.Vec3) AABB {
	return AABB{Min: p, Max: p}
}

// EnclosePoint grows a to also contain p, component-wise.
func (a AABB) EnclosePoint(p mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{minf(a.Min.X(), p.X()), minf(a.Min.Y(), p.Y()), minf(a.Min.Z(), p.Z())},
		Max: mgl64.Vec3{maxf(a.Max.X(), p.X()), maxf(a.Max.Y(), p.Y()), maxf(a.Max.Z(), p.Z())},
	}
}

// Union returns the smallest AABB enclosing both a and other.
func (a AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{minf(a.Min.X(), other.Min.X()), minf(a.Min.Y(), other.Min.Y()), minf(a.Min.Z(), other.Min.Z())},
		Max: mgl64.Vec3{maxf(a.Max.X(), other.Max.X()), maxf(a.Max.Y(), other.Max.Y()), maxf(a.Max.Z(), other.Max.Z())},
	}
}

// Expand grows a by margin on every face in every direction. broadphase.Grid
// uses this to pad each body's AABB by its speculative margin before the
// cell-range lookup and the pair overlap test.
func (a AABB) Expand(margin float64) AABB {
	pad := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(pad), Max: a.Max.Add(pad)}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}
