package main

import (
	"github.com/axiom-physics/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// sceneConfig bundles the synthetic-scene knobs exposed as bench flags.
type sceneConfig struct {
	spheres      int
	sphereRadius float64
	gridSpacing  float64
	dropHeight   float64
	restitution  float64
	friction     float64
	gravity      float64
	dt           float64
	steps        int
}

// buildScene drops cfg.spheres spheres in a grid above a static ground
// box, the same "falling shapes onto a plane" setup the teacher's own
// example/simpleScene uses, generalized to an arbitrary count.
func buildScene(cfg sceneConfig) []*actor.RigidBody {
	ground := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{0, -1, 0}, Rotation: mgl64.QuatIdent()},
		&actor.Box{HalfExtents: mgl64.Vec3{50, 1, 50}},
		actor.BodyTypeStatic, 0,
	)
	ground.Material.Restitution = cfg.restitution
	ground.Material.DynamicFriction = cfg.friction
	ground.Material.StaticFriction = cfg.friction

	bodies := []*actor.RigidBody{ground}

	perRow := 1
	for perRow*perRow < cfg.spheres {
		perRow++
	}

	for i := 0; i < cfg.spheres; i++ {
		row, col := i/perRow, i%perRow
		x := (float64(col) - float64(perRow)/2) * cfg.gridSpacing
		z := (float64(row) - float64(perRow)/2) * cfg.gridSpacing

		sphere := actor.NewRigidBody(
			actor.Transform{Position: mgl64.Vec3{x, cfg.dropHeight, z}, Rotation: mgl64.QuatIdent()},
			&actor.Sphere{Radius: cfg.sphereRadius},
			actor.BodyTypeDynamic, 1.0,
		)
		sphere.Material.Restitution = cfg.restitution
		sphere.Material.DynamicFriction = cfg.friction
		sphere.Material.StaticFriction = cfg.friction
		bodies = append(bodies, sphere)
	}

	return bodies
}
