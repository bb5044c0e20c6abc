package main

import (
	"fmt"

	"github.com/axiom-physics/impulse/actor"
	"github.com/axiom-physics/impulse/broadphase"
	"github.com/axiom-physics/impulse/config"
	"github.com/axiom-physics/impulse/constraint"
	"github.com/axiom-physics/impulse/impact"
	"github.com/axiom-physics/impulse/narrowphase"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// runBench steps cfg.steps frames of a synthetic drop scene through the
// full pipeline this module implements: broadphase candidate search, OBB
// mid-phase refinement, narrow-phase contact generation, and the impact
// handler's MLCP solve, logging a per-step summary through logger.
func runBench(cfg sceneConfig, logger zerolog.Logger) error {
	bodies := buildScene(cfg)

	handler := impact.NewHandler(config.Tolerances{EpsNear: 1e-6})
	handler.Logger = logger
	handler.RNG = rand.New(rand.NewSource(1))

	grid := broadphase.NewGrid(cfg.sphereRadius*4, 1024)
	gravity := mgl64.Vec3{0, -cfg.gravity, 0}

	for step := 0; step < cfg.steps; step++ {
		for _, b := range bodies {
			b.Integrate(cfg.dt, gravity)
		}

		grid.Clear()
		for i, b := range bodies {
			grid.Insert(i, b)
		}
		grid.SortCells()

		broadPairs := grid.FindPairs(bodies)
		candidates := make([]pairCandidate, len(broadPairs))
		for i, p := range broadPairs {
			candidates[i] = pairCandidate{A: p.BodyA, B: p.BodyB}
		}
		candidates = refinePairs(candidates, cfg.dt)

		var constraints []constraint.Constraint
		for _, c := range candidates {
			contacts := narrowphase.GenerateContacts(c.A, c.B, handler.Tolerances.EpsNear)
			for i := range contacts {
				constraints = append(constraints, &contacts[i])
			}
		}

		if err := handler.ProcessConstraints(constraints); err != nil {
			logger.Warn().Int("step", step).Err(err).Msg("impactbench: step had unresolved components")
		}

		logger.Info().
			Int("step", step).
			Int("broad_pairs", len(broadPairs)).
			Int("refined_pairs", len(candidates)).
			Int("contacts", len(constraints)).
			Msg("impactbench: step complete")
	}

	printSummary(bodies)
	return nil
}

func printSummary(bodies []*actor.RigidBody) {
	for i, b := range bodies {
		if b.BodyType == actor.BodyTypeStatic {
			continue
		}
		fmt.Printf("body %d: pos=%v vel=%v\n", i, b.Transform.Position, b.Velocity)
	}
}
