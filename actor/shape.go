package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypePlane
	ShapeTypeCylinder
	ShapeTypeCone
)

// ShapeInterface is the interface that all collision shapes must implement
type ShapeInterface interface {
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates mass data for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	Support(direction mgl64.Vec3) mgl64.Vec3
	GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3
	// GetVertices returns the shape's vertices in local space, for use by
	// the generic vertex-enumeration contact path. Curved shapes with no
	// finite vertex set (Sphere, Plane) return nil; callers that need a
	// contact against them go through a closed-form path instead.
	GetVertices() []mgl64.Vec3
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	aabb        AABB
}

func (b *Box) ComputeAABB(transform Transform) {
	// The box's 8 corners in local space.
	corners := b.GetVertices()

	// Seed the box from the first corner, then grow it to enclose the rest.
	box := FromPoint(transform.ToWorld(corners[0]))
	for i := 1; i < 8; i++ {
		box = box.EnclosePoint(transform.ToWorld(corners[i]))
	}

	b.aabb = box
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	// Full dimensions.
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// Box formula: I = (m/12) * (dimension1^2 + dimension2^2)
	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// GetVertices returns the box's 8 corners in local space.
func (b *Box) GetVertices() []mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	return []mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

func (b *Box) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := direction.Normalize()

	// Find the face most parallel to the direction (the one whose normal
	// points the most in that direction).
	bestDot := -math.MaxFloat64
	var bestFace []mgl64.Vec3

	hx := b.HalfExtents.X()
	hy := b.HalfExtents.Y()
	hz := b.HalfExtents.Z()

	// The 6 faces with their vertices (CCW order seen from outside).
	faces := []struct {
		normal   mgl64.Vec3
		vertices []mgl64.Vec3
	}{
		// +X face
		{
			normal: mgl64.Vec3{1, 0, 0},
			vertices: []mgl64.Vec3{
				{hx, -hy, -hz},
				{hx, -hy, hz},
				{hx, hy, hz},
				{hx, hy, -hz},
			},
		},
		// -X face
		{
			normal: mgl64.Vec3{-1, 0, 0},
			vertices: []mgl64.Vec3{
				{-hx, -hy, hz},
				{-hx, -hy, -hz},
				{-hx, hy, -hz},
				{-hx, hy, hz},
			},
		},
		// +Y face
		{
			normal: mgl64.Vec3{0, 1, 0},
			vertices: []mgl64.Vec3{
				{-hx, hy, -hz},
				{-hx, hy, hz},
				{hx, hy, hz},
				{hx, hy, -hz},
			},
		},
		// -Y face
		{
			normal: mgl64.Vec3{0, -1, 0},
			vertices: []mgl64.Vec3{
				{-hx, -hy, hz},
				{hx, -hy, hz},
				{hx, -hy, -hz},
				{-hx, -hy, -hz},
			},
		},
		// +Z face
		{
			normal: mgl64.Vec3{0, 0, 1},
			vertices: []mgl64.Vec3{
				{-hx, -hy, hz},
				{-hx, hy, hz},
				{hx, hy, hz},
				{hx, -hy, hz},
			},
		},
		// -Z face
		{
			normal: mgl64.Vec3{0, 0, -1},
			vertices: []mgl64.Vec3{
				{hx, -hy, -hz},
				{hx, hy, -hz},
				{-hx, hy, -hz},
				{-hx, -hy, -hz},
			},
		},
	}

	// Find the best-matching face.
	for _, face := range faces {
		dot := dir.Dot(face.normal)
		if dot > bestDot {
			bestDot = dot
			bestFace = face.vertices
		}
	}

	return bestFace
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * pi * r^3
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// For a sphere: I = (2/5) * m * r^2
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	// A sphere has the same inertia about all three axes.
	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(direction)}
}

// GetVertices returns nil: a sphere has no finite vertex set. Callers go
// through the dedicated sphere closed-form contact path instead.
func (s *Sphere) GetVertices() []mgl64.Vec3 {
	return nil
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal . p + Distance = 0
// where Normal is the plane's normal vector (must be normalized)
// and Distance is the signed distance from the origin along the normal
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
	aabb     AABB
}

func (p *Plane) ComputeAABB(transform Transform) {
	const thickness = 1.0 // detection thickness along the normal
	const infinity = 1e10 // stand-in for the plane's infinite extent

	// Point on the plane closest to the origin
	// Assumes p.Normal is normalized
	planePoint := p.Normal.Mul(-p.Distance)

	// Create base bounds with thickness along the normal
	min := planePoint.Sub(p.Normal.Mul(thickness)).Add(transform.Position)
	max := planePoint.Add(transform.Position)

	// Extend the AABB to infinity in directions perpendicular to the normal
	absNormal := mgl64.Vec3{
		math.Abs(p.Normal.X()),
		math.Abs(p.Normal.Y()),
		math.Abs(p.Normal.Z()),
	}

	// Find the dominant axis (the one aligned with the normal)
	threshold := 1.0 // threshold to consider an axis as dominant

	// For NON-dominant axes, extend to infinity
	if absNormal.X() < threshold {
		min[0] = -infinity
		max[0] = infinity
	}
	if absNormal.Y() < threshold {
		min[1] = -infinity
		max[1] = infinity
	}
	if absNormal.Z() < threshold {
		min[2] = -infinity
		max[2] = infinity
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

// ComputeMass calculates mass data for the plane
// Planes are always static with infinite mass
func (p *Plane) ComputeMass(density float64) float64 {
	// Static planes have infinite mass
	// (they cannot be moved by collisions)
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// For simplicity, we use a 2000×2000 box (half-width 1000) extending 0.5 below the plane. Can obviously break for bigger planes
func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	boxHalfWidth := 1000.0
	boxHalfHeight := 0.5
	boxHalfDepth := 1000.0

	return mgl64.Vec3{
		func() float64 {
			if direction.X() < 0 {
				return -boxHalfWidth
			}
			return boxHalfWidth
		}(),
		func() float64 {
			if direction.Y() > 0 {
				return 0.0
			}
			return -boxHalfHeight
		}(),
		func() float64 {
			if direction.Z() < 0 {
				return -boxHalfDepth
			}
			return boxHalfDepth
		}(),
	}
}

func (p *Plane) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	// For a plane, return 4 points forming a large square
	// IN LOCAL SPACE (centered on the plane origin)

	// Find two tangent vectors to the plane
	tangent1, tangent2 := getTangentBasis(p.Normal)

	// Large size to cover contacts
	size := 1000.0

	// Points in local plane space (not transformed)
	return []mgl64.Vec3{
		tangent1.Mul(-size).Add(tangent2.Mul(-size)),
		tangent1.Mul(-size).Add(tangent2.Mul(size)),
		tangent1.Mul(size).Add(tangent2.Mul(size)),
		tangent1.Mul(size).Add(tangent2.Mul(-size)),
	}
}

// GetVertices returns nil: a plane has no finite vertex set.
func (p *Plane) GetVertices() []mgl64.Vec3 {
	return nil
}

// Cylinder represents a capped-cylinder collision shape aligned with the
// local Y axis. Its vertex set is approximated by sampling both rim circles,
// which is sufficient for the generic vertex-enumeration contact path.
// Support uses the exact closed form; GetContactFeature returns the single
// Support point when |direction.Y| > 0.7 and the sampled rim vertices
// otherwise.
type Cylinder struct {
	Radius     float64
	HalfHeight float64
	aabb       AABB

	// rimSamples controls the vertex approximation's resolution. Zero
	// selects the default of 8 samples per rim.
	rimSamples int
}

func (c *Cylinder) samples() int {
	if c.rimSamples > 0 {
		return c.rimSamples
	}
	return 8
}

func (c *Cylinder) ComputeAABB(transform Transform) {
	corners := c.GetVertices()
	box := FromPoint(transform.ToWorld(corners[0]))
	for _, corner := range corners[1:] {
		box = box.EnclosePoint(transform.ToWorld(corner))
	}

	c.aabb = box
}

func (c *Cylinder) GetAABB() AABB {
	return c.aabb
}

func (c *Cylinder) ComputeMass(density float64) float64 {
	volume := math.Pi * c.Radius * c.Radius * (2 * c.HalfHeight)
	return density * volume
}

func (c *Cylinder) ComputeInertia(mass float64) mgl64.Mat3 {
	h := 2 * c.HalfHeight
	iY := 0.5 * mass * c.Radius * c.Radius
	iXZ := (1.0 / 12.0) * mass * (3*c.Radius*c.Radius + h*h)

	return mgl64.Mat3{
		iXZ, 0, 0,
		0, iY, 0,
		0, 0, iXZ,
	}
}

func (c *Cylinder) Support(direction mgl64.Vec3) mgl64.Vec3 {
	radial := mgl64.Vec3{direction.X(), 0, direction.Z()}
	radialLen := radial.Len()

	var radialSupport mgl64.Vec3
	if radialLen > 1e-12 {
		radialSupport = radial.Mul(c.Radius / radialLen)
	}

	y := c.HalfHeight
	if direction.Y() < 0 {
		y = -y
	}

	return mgl64.Vec3{radialSupport.X(), y, radialSupport.Z()}
}

func (c *Cylinder) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	if math.Abs(direction.Y()) > 0.7 {
		return []mgl64.Vec3{c.Support(direction)}
	}
	return c.GetVertices()
}

// GetVertices samples both rim circles of the cylinder.
func (c *Cylinder) GetVertices() []mgl64.Vec3 {
	n := c.samples()
	verts := make([]mgl64.Vec3, 0, 2*n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		x := c.Radius * math.Cos(theta)
		z := c.Radius * math.Sin(theta)
		verts = append(verts, mgl64.Vec3{x, c.HalfHeight, z})
		verts = append(verts, mgl64.Vec3{x, -c.HalfHeight, z})
	}
	return verts
}

// Cone represents a cone collision shape with its apex at +HalfHeight and
// base circle at -HalfHeight, aligned with the local Y axis.
type Cone struct {
	Radius     float64
	HalfHeight float64
	aabb       AABB

	rimSamples int
}

func (c *Cone) samples() int {
	if c.rimSamples > 0 {
		return c.rimSamples
	}
	return 8
}

func (c *Cone) ComputeAABB(transform Transform) {
	corners := c.GetVertices()
	box := FromPoint(transform.ToWorld(corners[0]))
	for _, corner := range corners[1:] {
		box = box.EnclosePoint(transform.ToWorld(corner))
	}

	c.aabb = box
}

func (c *Cone) GetAABB() AABB {
	return c.aabb
}

func (c *Cone) ComputeMass(density float64) float64 {
	volume := (1.0 / 3.0) * math.Pi * c.Radius * c.Radius * (2 * c.HalfHeight)
	return density * volume
}

func (c *Cone) ComputeInertia(mass float64) mgl64.Mat3 {
	h := 2 * c.HalfHeight
	iY := 0.3 * mass * c.Radius * c.Radius
	iXZ := mass * (3.0/20.0*c.Radius*c.Radius + 3.0/80.0*h*h)

	return mgl64.Mat3{
		iXZ, 0, 0,
		0, iY, 0,
		0, 0, iXZ,
	}
}

func (c *Cone) Support(direction mgl64.Vec3) mgl64.Vec3 {
	apex := mgl64.Vec3{0, c.HalfHeight, 0}

	radial := mgl64.Vec3{direction.X(), 0, direction.Z()}
	radialLen := radial.Len()
	var baseSupport mgl64.Vec3
	if radialLen > 1e-12 {
		baseSupport = radial.Mul(c.Radius / radialLen)
	}
	baseSupport[1] = -c.HalfHeight

	if apex.Dot(direction) > baseSupport.Dot(direction) {
		return apex
	}
	return baseSupport
}

func (c *Cone) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	if direction.Y() > 0.7 {
		return []mgl64.Vec3{{0, c.HalfHeight, 0}}
	}
	if direction.Y() < -0.7 {
		return c.GetVertices()[1:]
	}
	return []mgl64.Vec3{c.Support(direction)}
}

// GetVertices returns the apex plus samples of the base rim.
func (c *Cone) GetVertices() []mgl64.Vec3 {
	n := c.samples()
	verts := make([]mgl64.Vec3, 0, n+1)
	verts = append(verts, mgl64.Vec3{0, c.HalfHeight, 0})
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		x := c.Radius * math.Cos(theta)
		z := c.Radius * math.Sin(theta)
		verts = append(verts, mgl64.Vec3{x, -c.HalfHeight, z})
	}
	return verts
}

// Helper to generate the tangent basis
func getTangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
