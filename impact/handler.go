// Package impact is the orchestrator that turns a batch of contact and
// joint-limit constraints into applied body-velocity impulses: partition
// into connected components, assemble each component's problem data, pick
// a friction model and solver path, solve with regularization, run the
// restitution loop, and commit the result.
package impact

import (
	"errors"
	"fmt"

	"github.com/axiom-physics/impulse/config"
	"github.com/axiom-physics/impulse/constraint"
	"github.com/axiom-physics/impulse/lcp"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// ErrImpactSolveFailed is returned by ProcessConstraints when every
// regularization level for a component's solve was exhausted. The bodies
// in that component keep their pre-call velocities; other components in
// the same call still commit (spec.md §4.6: components are decoupled).
var ErrImpactSolveFailed = errors.New("impact: solve failed after exhausting regularization")

// PreSolveCallback runs before a batch is partitioned and solved. It may
// return a shrunk constraint slice (e.g. dropping a constraint the caller
// decided is no longer relevant); the handler does not try to repair
// whatever feasibility loss that causes.
type PreSolveCallback func(constraints []constraint.Constraint, userData any) []constraint.Constraint

// PostSolveCallback runs once, after every component's impulses have been
// applied (successful or not).
type PostSolveCallback func(constraints []constraint.Constraint, userData any)

// FrictionPreference steers BuildLCP's friction-model choice per spec.md
// §4.6 step 2, for components where a plain frictionless/viscous/no-slip
// classification doesn't already decide it.
type FrictionPreference int

const (
	// PreferAnitescuPotra is the default fallback: the full polyhedral
	// friction-cone LCP.
	PreferAnitescuPotra FrictionPreference = iota
	// PreferViscous forces the viscous model on every component that
	// isn't already frictionless.
	PreferViscous
	// PreferNoSlip forces the no-slip model ("no-slip requested" in
	// spec.md §4.6 step 2) on every component that isn't frictionless.
	PreferNoSlip
)

// RegularizationRange bounds the lambda = 10^k ladder the *Regularized
// wrappers climb (spec.md §4.2). Handler's zero value uses DefaultRegularizationRange.
type RegularizationRange struct {
	MinExp, StepExp, MaxExp int
}

// DefaultRegularizationRange matches the original solver's own retry
// ladder: lambda from 1e-8 to 1e8, two orders of magnitude per step.
var DefaultRegularizationRange = RegularizationRange{MinExp: -8, StepExp: 2, MaxExp: 8}

// Handler is the impact orchestrator of spec.md §4.6. Its fields are all
// plain configuration; it owns no long-lived state between calls to
// ProcessConstraints.
type Handler struct {
	Tolerances    config.Tolerances
	Regularize    RegularizationRange
	Friction      FrictionPreference
	UseQPHeuristic bool

	PreSolve  PreSolveCallback
	PostSolve PostSolveCallback
	UserData  any

	// Workers bounds how many connected components solve concurrently
	// (spec.md §5: "can be solved in parallel worker threads provided
	// the body velocity updates are serialized at the end"). Zero means
	// four workers (see task() in pipeline.go); one or a negative value
	// solves every component inline on the calling goroutine.
	Workers int

	// RNG seeds FastPivot's rand_min tie-break. A nil RNG makes the
	// handler skip the FastPivot cheap path entirely and go straight to
	// Lemke (unbounded problems) or Keller (bounded ones), since an
	// unseeded fast pivoter would be nondeterministic
	// (spec.md §5 Determinism).
	RNG *rand.Rand

	Logger zerolog.Logger

	EpsRank float64

	// FailLog, when set, receives a binary M/q dump for every component
	// whose solve exhausts every regularization level, the same failure
	// artifact the original solver's log_failure wrote to disk.
	FailLog *lcp.FailureLogger
}

// NewHandler returns a Handler configured with tol and sensible defaults
// for every other field.
func NewHandler(tol config.Tolerances) *Handler {
	return &Handler{
		Tolerances: tol,
		Regularize: DefaultRegularizationRange,
		Logger:     zerolog.Nop(),
	}
}

// componentResult is what solveComponent hands back to the sequential
// commit pass: either a solved (pd, z) pair ready for ApplyImpulses, or an
// error that leaves this component's bodies untouched.
type componentResult struct {
	asm *constraint.Assembler
	pd  *constraint.ProblemData
	z   []float64
	err error
}

// ProcessConstraints implements spec.md §4.6's Contract. It partitions
// constraints into connected components, solves each independently
// (concurrently, bounded by h.Workers), and commits impulses to bodies in
// one deterministic pass in component order. If every regularization
// level failed for one or more components, it returns ErrImpactSolveFailed
// wrapping the first such failure after every solvable component has
// still been committed.
func (h *Handler) ProcessConstraints(constraints []constraint.Constraint) error {
	if h.PreSolve != nil {
		constraints = h.PreSolve(constraints, h.UserData)
	}
	if len(constraints) == 0 {
		return nil
	}

	components := ConnectedComponents(constraints)
	results := make([]componentResult, len(components))

	task(h.workers(), len(components), func(i int) {
		results[i] = h.solveComponent(components[i])
	})

	var firstErr error
	for i, res := range results {
		if res.err != nil {
			h.Logger.Warn().
				Int("component", i).
				Int("n_contacts", len(components[i])).
				Err(res.err).
				Msg("impact: component solve failed after regularization")
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		res.asm.ApplyImpulses(res.pd, res.z)
		res.asm.Restitute(res.pd, res.z, h.zeroTol(len(res.z)))
	}

	if h.PostSolve != nil {
		h.PostSolve(constraints, h.UserData)
	}

	if firstErr != nil {
		return fmt.Errorf("%w: %v", ErrImpactSolveFailed, firstErr)
	}
	return nil
}

// solveComponent assembles and solves one connected component. It never
// mutates body state: ProcessConstraints' commit pass does that once every
// component has a result, so that a later component's failure can never
// leave an earlier one half-applied.
func (h *Handler) solveComponent(component []constraint.Constraint) componentResult {
	model := h.selectModel(component)
	asm := constraint.NewAssembler(h.epsRank())

	pd, err := asm.Assemble(component, model)
	if err != nil {
		return componentResult{err: err}
	}

	M, q, l, u := asm.BuildLCP(pd)
	n, _ := M.Dims()
	if n == 0 {
		return componentResult{asm: asm, pd: pd, z: nil}
	}

	zeroTol := h.zeroTol(n)
	pivTol := h.pivTol(n, M)

	z, err := h.solveLCP(model, M, q, l, u, pivTol, zeroTol)
	if err != nil {
		return componentResult{err: err}
	}
	return componentResult{asm: asm, pd: pd, z: z}
}

// selectModel implements spec.md §4.6 step 2's friction-model decision: a
// component with every contact's friction coefficient at zero needs no
// friction terms at all, regardless of h.Friction; otherwise h.Friction
// picks between the two fixed-form models and the default Anitescu-Potra
// polyhedral cone.
func (h *Handler) selectModel(component []constraint.Constraint) constraint.FrictionModel {
	frictionless := true
	for _, c := range component {
		if ct, ok := c.(*constraint.Contact); ok && ct.Mu > 0 {
			frictionless = false
			break
		}
	}
	if frictionless {
		return constraint.Frictionless
	}
	switch h.Friction {
	case PreferViscous:
		return constraint.Viscous
	case PreferNoSlip:
		return constraint.NoSlip
	default:
		return constraint.AnitescuPotra
	}
}

// solveLCP dispatches to the bounded or unbounded solver family depending
// on whether l/u actually bound anything, applying h.UseQPHeuristic's
// documented no-op per spec.md §4.6 ("use_qp_solver heuristic... default
// LCP") — this assembler never emits a non-convex term in the
// Anitescu-Potra layout, so the QP branch has nothing to switch to; see
// DESIGN.md.
func (h *Handler) solveLCP(model constraint.FrictionModel, M *mat.Dense, q, l, u []float64, pivTol, zeroTol float64) ([]float64, error) {
	if h.UseQPHeuristic {
		h.Logger.Warn().Msg("impact: UseQPHeuristic set but no QP solver is wired; falling back to LCP")
	}

	if !hasFiniteBounds(l, u) {
		if h.RNG != nil {
			result, err := lcp.FastPivotUnbounded(M, q, h.RNG, zeroTol)
			if err == nil {
				return result.Z, nil
			}
			h.Logger.Warn().Err(err).Msg("impact: FastPivotUnbounded cheap path failed, falling back to Lemke")
		}

		result, err := lcp.LemkeRegularized(M, q, h.Regularize.MinExp, h.Regularize.StepExp, h.Regularize.MaxExp, pivTol, zeroTol)
		if err != nil {
			h.dumpFailure(M, q)
			return nil, err
		}
		return result.Z, nil
	}

	if h.RNG != nil {
		result, err := lcp.FastPivotRegularized(M, q, l, u, h.RNG, h.Regularize.MinExp, h.Regularize.StepExp, h.Regularize.MaxExp, pivTol, zeroTol)
		if err == nil {
			return result.Z, nil
		}
		h.Logger.Warn().Err(err).Msg("impact: FastPivot cheap path failed, falling back to Keller")
	}

	result, err := lcp.KellerRegularized(M, q, l, u, h.Regularize.MinExp, h.Regularize.StepExp, h.Regularize.MaxExp, pivTol, zeroTol)
	if err != nil {
		h.dumpFailure(M, q)
		return nil, err
	}
	return result.Z, nil
}

// dumpFailure writes M, q to h.FailLog if the caller configured one. A dump
// write error only gets a log line: losing the diagnostic dump must never
// mask the original solver failure it was trying to capture.
func (h *Handler) dumpFailure(M *mat.Dense, q []float64) {
	if h.FailLog == nil {
		return
	}
	if err := h.FailLog.Dump(M, q); err != nil {
		h.Logger.Warn().Err(err).Msg("impact: failed to write solver failure dump")
	}
}

func hasFiniteBounds(l, u []float64) bool {
	for i := range l {
		if l[i] != -constraint.Unbounded || u[i] != constraint.Unbounded {
			return true
		}
	}
	return false
}

func (h *Handler) workers() int {
	if h.Workers != 0 {
		return h.Workers
	}
	return 4
}

func (h *Handler) epsRank() float64 {
	if h.EpsRank > 0 {
		return h.EpsRank
	}
	return 1e-12
}

func (h *Handler) zeroTol(n int) float64 {
	if h.Tolerances.ZeroTol > 0 {
		return h.Tolerances.ZeroTol
	}
	return config.DefaultTolerances(n, 1).ZeroTol
}

func (h *Handler) pivTol(n int, M *mat.Dense) float64 {
	if h.Tolerances.PivTol > 0 {
		return h.Tolerances.PivTol
	}
	return config.DefaultTolerances(n, normInf(M)).PivTol
}

func normInf(M *mat.Dense) float64 {
	rows, cols := M.Dims()
	max := 0.0
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			v := M.At(i, j)
			if v < 0 {
				v = -v
			}
			sum += v
		}
		if sum > max {
			max = sum
		}
	}
	return max
}
