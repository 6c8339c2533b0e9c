package evidence

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics for
// propagation and simulation monitoring in production environments.
//
// Metrics exposed (all namespaced with "evidencegraph_"):
//
//  1. propagations_total (counter): Full-graph propagation runs.
//
//  2. nodes_recomputed_total (counter): Node recomputations during
//     simulation relaxation. Labels: node_type.
//
//  3. relaxation_passes (histogram): Passes per simulation, buckets
//     [1..5] matching the pass bound.
//
//  4. simulations_total (counter): Completed simulations.
//     Labels: converged (true/false).
//
//  5. changed_decisions (histogram): Decisions changed per simulation.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := evidence.NewPrometheusMetrics(registry)
//	result, err := evidence.SimulateScenario(baseline, scenario,
//	    evidence.WithMetrics(metrics),
//	)
//
//	// Expose via HTTP for Prometheus scraping:
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// Thread-safe: the engine is synchronous but one metrics collector may
// back simulations running on multiple goroutines.
type PrometheusMetrics struct {
	propagations    prometheus.Counter
	nodesRecomputed *prometheus.CounterVec
	passes          prometheus.Histogram
	simulations     *prometheus.CounterVec
	changedCount    prometheus.Histogram

	registry prometheus.Registerer

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers the engine metrics with
// the provided Prometheus registry.
//
// Pass prometheus.DefaultRegisterer for the global registry, or a
// dedicated prometheus.NewRegistry() for isolation (recommended when
// embedding the engine in a larger service).
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		registry: registry,
		enabled:  true,
	}

	pm.propagations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "evidencegraph",
		Name:      "propagations_total",
		Help:      "Full-graph confidence propagation runs",
	})

	pm.nodesRecomputed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evidencegraph",
		Name:      "nodes_recomputed_total",
		Help:      "Node confidence recomputations during simulation relaxation",
	}, []string{"node_type"})

	pm.passes = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "evidencegraph",
		Name:      "relaxation_passes",
		Help:      "Relaxation passes run per simulation before convergence or the pass bound",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})

	pm.simulations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evidencegraph",
		Name:      "simulations_total",
		Help:      "Completed scenario simulations",
	}, []string{"converged"})

	pm.changedCount = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "evidencegraph",
		Name:      "changed_decisions",
		Help:      "Decisions changed per simulation diff",
		Buckets:   []float64{0, 1, 2, 5, 10, 25},
	})

	return pm
}

// RecordPropagation counts one full-graph propagation run.
//
// The engine's propagation entry point is a pure function, so embedding
// applications record this alongside their ComputeConfidenceGraph calls.
func (pm *PrometheusMetrics) RecordPropagation() {
	if !pm.isEnabled() {
		return
	}
	pm.propagations.Inc()
}

// RecordNodeRecompute counts one node recomputation during relaxation.
// Called by the simulation engine when metrics are configured.
func (pm *PrometheusMetrics) RecordNodeRecompute(nodeType string) {
	if !pm.isEnabled() {
		return
	}
	pm.nodesRecomputed.WithLabelValues(nodeType).Inc()
}

// RecordSimulation records the outcome of one simulation: passes run,
// whether relaxation converged, and how many decisions changed.
// Called by the simulation engine when metrics are configured.
func (pm *PrometheusMetrics) RecordSimulation(passes int, converged bool, changedDecisions int) {
	if !pm.isEnabled() {
		return
	}
	pm.passes.Observe(float64(passes))
	pm.simulations.WithLabelValues(strconv.FormatBool(converged)).Inc()
	pm.changedCount.Observe(float64(changedDecisions))
}

// Disable temporarily disables metric recording (useful for testing).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable().
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}
