package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid body's pose: position plus orientation. InverseRotation
// caches Rotation's conjugate so hot paths like SupportWorld don't recompute
// a quaternion inverse every narrow-phase query; SyncInverseRotation keeps it
// current whenever Rotation changes.
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// SyncInverseRotation recomputes InverseRotation from the current Rotation.
// Call this any time Rotation is assigned directly rather than through a
// helper that keeps the two in sync.
func (t *Transform) SyncInverseRotation() {
	t.InverseRotation = t.Rotation.Inverse()
}

// ToWorld carries a point from t's local frame into world space.
func (t Transform) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}

// ToWorldDirection carries a direction (no translation) from t's local
// frame into world space.
func (t Transform) ToWorldDirection(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local)
}

// ToLocal carries a world-space point into t's local frame, the inverse of
// ToWorld.
func (t Transform) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world.Sub(t.Position))
}

// ToLocalDirection carries a world-space direction (no translation) into
// t's local frame, the inverse of ToWorldDirection.
func (t Transform) ToLocalDirection(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world)
}
