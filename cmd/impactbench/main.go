// Command impactbench drives the impact-handling pipeline (broadphase,
// narrow-phase contact generation, MLCP solve) over a synthetic drop scene,
// so the solver stack has a runnable entry point beyond its test suites.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := sceneConfig{
		spheres:      16,
		sphereRadius: 0.5,
		gridSpacing:  1.5,
		dropHeight:   5.0,
		restitution:  0.3,
		friction:     0.4,
		gravity:      9.81,
		dt:           1.0 / 60.0,
		steps:        120,
	}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "impactbench",
		Short: "Run the impact-handling pipeline over a synthetic sphere-drop scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if !verbose {
				level = zerolog.WarnLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
				Level(level).
				With().Timestamp().Logger()
			return runBench(cfg, logger)
		},
	}

	cmd.Flags().IntVar(&cfg.spheres, "spheres", cfg.spheres, "number of dynamic spheres to drop")
	cmd.Flags().Float64Var(&cfg.sphereRadius, "radius", cfg.sphereRadius, "sphere radius")
	cmd.Flags().Float64Var(&cfg.gridSpacing, "spacing", cfg.gridSpacing, "grid spacing between spheres")
	cmd.Flags().Float64Var(&cfg.dropHeight, "drop-height", cfg.dropHeight, "initial sphere height")
	cmd.Flags().Float64Var(&cfg.restitution, "restitution", cfg.restitution, "material restitution coefficient")
	cmd.Flags().Float64Var(&cfg.friction, "friction", cfg.friction, "material dynamic/static friction coefficient")
	cmd.Flags().Float64Var(&cfg.gravity, "gravity", cfg.gravity, "gravity magnitude (m/s^2, downward)")
	cmd.Flags().Float64Var(&cfg.dt, "dt", cfg.dt, "simulation step size in seconds")
	cmd.Flags().IntVar(&cfg.steps, "steps", cfg.steps, "number of steps to simulate")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", verbose, "log every step instead of only warnings")

	return cmd
}
