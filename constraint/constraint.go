// Package constraint builds the MLCP matrices consumed by the lcp solvers
// from a connected group of contact and joint-limit constraints, and
// propagates the resulting impulses back into body velocities.
package constraint

import (
	"math"

	"github.com/axiom-physics/impulse/actor"
)

// Constraint is anything the impact handler can group into a connected
// component: a contact, a joint limit, or (in principle) a future
// constraint kind, identified only by the bodies it touches.
type Constraint interface {
	Bodies() (bodyA, bodyB *actor.RigidBody)
}

// Joint is the seam to an external articulated-body kinematics service:
// the assembler only needs a joint's bilateral velocity-Jacobian rows to
// build Jx and project impulses onto the joint's constraint manifold. A
// concrete Joint implementation (hinge, slider, ball) is out of scope
// here and owned by whatever kinematics layer the caller supplies.
type Joint interface {
	Bodies() (bodyA, bodyB *actor.RigidBody)
	DOFCount() int
	// BilateralRow returns the generalized-velocity coefficients for row i
	// of this joint's implicit bilateral constraint, one 6-vector
	// (linear xyz, angular xyz) per body.
	BilateralRow(i int) (rowA, rowB [6]float64)
	BilateralRowCount() int
	// LimitRow returns the single-DOF velocity row used by a JointLimit
	// on this joint.
	LimitRow(dofIndex int) (rowA, rowB [6]float64)
}

// LimitSide is which side of a joint-limit DOF's range a JointLimit
// constrains.
type LimitSide int

const (
	Lower LimitSide = iota
	Upper
)

// JointLimit is the tuple (joint, dof_index, side) from the data model:
// a single scalar unilateral row.
type JointLimit struct {
	Joint    Joint
	DOFIndex int
	Side     LimitSide
}

func (jl *JointLimit) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return jl.Joint.Bodies()
}

// FrictionModel selects which of the four callable friction variants the
// assembler builds the problem data for.
type FrictionModel int

const (
	Frictionless FrictionModel = iota
	Viscous
	AnitescuPotra
	NoSlip
)

// ComputeRestitution combines two bodies' restitution coefficients for a
// contact between them.
func ComputeRestitution(matA, matB actor.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

// ComputeStaticFriction combines two bodies' static friction coefficients
// via their geometric mean, the standard combination rule.
func ComputeStaticFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.StaticFriction * matB.StaticFriction)
}

// ComputeDynamicFriction combines two bodies' dynamic (Coulomb) friction
// coefficients via their geometric mean.
func ComputeDynamicFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.DynamicFriction * matB.DynamicFriction)
}
