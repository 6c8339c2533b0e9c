package evidence

import (
	"fmt"

	"github.com/dshills/evidencegraph-go/evidence/emit"
)

// Option is a functional option for configuring a simulation.
//
// Options are chainable and optional; defaults match the engine's
// documented behavior (5 relaxation passes, 0.01 convergence epsilon,
// no event emission, no metrics).
//
// Example:
//
//	result, err := evidence.SimulateScenario(
//	    baseline,
//	    scenario,
//	    evidence.WithEmitter(emit.NewLogEmitter(os.Stdout, false)),
//	    evidence.WithMetrics(metrics),
//	)
type Option func(*simConfig) error

// simConfig collects options before a simulation runs.
type simConfig struct {
	maxPasses int
	epsilon   float64
	emitter   emit.Emitter
	metrics   *PrometheusMetrics
}

const (
	// defaultMaxPasses bounds the relaxation loop. Four effective
	// propagation hops means five passes always suffice.
	defaultMaxPasses = 5

	// defaultEpsilon is the largest per-pass confidence delta treated
	// as converged.
	defaultEpsilon = 0.01
)

func defaultSimConfig() simConfig {
	return simConfig{
		maxPasses: defaultMaxPasses,
		epsilon:   defaultEpsilon,
	}
}

// WithMaxPasses overrides the relaxation pass bound.
//
// Default: 5. The bound guarantees termination even on graphs that
// violate the forward-edge assumption, so lowering it trades accuracy
// for latency and raising it is rarely useful.
func WithMaxPasses(n int) Option {
	return func(cfg *simConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: max passes must be at least 1, got %d", ErrInvalidOption, n)
		}
		cfg.maxPasses = n
		return nil
	}
}

// WithConvergenceEpsilon overrides the fixed-point convergence threshold.
//
// Default: 0.01. A relaxation pass whose largest confidence delta falls
// below the epsilon ends the simulation early.
func WithConvergenceEpsilon(eps float64) Option {
	return func(cfg *simConfig) error {
		if eps <= 0 {
			return fmt.Errorf("%w: convergence epsilon must be positive, got %v", ErrInvalidOption, eps)
		}
		cfg.epsilon = eps
		return nil
	}
}

// WithEmitter attaches an observability emitter to the simulation.
//
// The engine emits scenario_start, patch_applied/patch_skipped,
// pass_complete (with the pass's max confidence delta), and
// simulation_complete events. A nil emitter disables emission.
func WithEmitter(e emit.Emitter) Option {
	return func(cfg *simConfig) error {
		cfg.emitter = e
		return nil
	}
}

// WithMetrics enables Prometheus metrics collection for the simulation.
//
// See NewPrometheusMetrics for the metrics exposed.
func WithMetrics(m *PrometheusMetrics) Option {
	return func(cfg *simConfig) error {
		cfg.metrics = m
		return nil
	}
}

// emit sends an event when an emitter is configured.
func (cfg *simConfig) emit(event emit.Event) {
	if cfg.emitter != nil {
		cfg.emitter.Emit(event)
	}
}
