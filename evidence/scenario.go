package evidence

import (
	"math"

	"github.com/dshills/evidencegraph-go/evidence/emit"
)

// PatchMode selects how a scenario patch changes its target node.
type PatchMode string

const (
	// PatchOverrideEvidence pins the node as if a human had verified it:
	// confidence is forced to 0.98, the source is tagged "user", and the
	// node is locked out of recomputation.
	PatchOverrideEvidence PatchMode = "overrideEvidence"

	// PatchAdjust applies the supplied value/confidence directly. A
	// numeric confidence also locks the node.
	PatchAdjust PatchMode = "adjust"
)

// overrideConfidence is the pinned confidence of an evidence override.
const overrideConfidence = 0.98

// ScenarioPatch is one hypothetical change to a node.
type ScenarioPatch struct {
	// NodeID is the patch target. A patch referencing an unknown node
	// is silently ignored.
	NodeID string `json:"nodeId"`

	// Mode selects override vs. adjust semantics.
	Mode PatchMode `json:"mode"`

	// Value, when set, replaces the node's asserted value.
	Value any `json:"value,omitempty"`

	// Confidence, when set in adjust mode, replaces the node's
	// confidence and locks the node.
	Confidence *float64 `json:"confidence,omitempty"`

	// ConfidenceSource tags who supplied the adjusted confidence.
	// Defaults to "user".
	ConfidenceSource ConfidenceSource `json:"confidenceSource,omitempty"`
}

// Scenario is a named, ordered list of hypothetical patches.
type Scenario struct {
	// ID identifies the scenario, e.g. for archival and replay.
	ID string `json:"id"`

	// Name is an optional display name.
	Name string `json:"name,omitempty"`

	// Patches are applied in order before recomputation.
	Patches []ScenarioPatch `json:"patches"`
}

// SimulationResult is the outcome of one what-if simulation.
type SimulationResult struct {
	// Overlay is the patched, re-propagated copy of the baseline.
	Overlay *EvidenceGraph `json:"graphOverlay"`

	// Diff summarizes what changed relative to the baseline.
	Diff SimulationDiff `json:"diff"`
}

// SimulateScenario applies a scenario's patches to a copy of the
// baseline graph, re-propagates confidence over the nodes reachable
// from the patches, and reports how node confidence, decision scores,
// and decision rankings changed.
//
// The baseline is never mutated: the engine deep-copies it twice, once
// as the immutable comparison base and once as the working overlay.
// Patched nodes are locked (excluded from recomputation); everything
// forward-reachable from them is relaxed for up to five passes or until
// the largest per-pass confidence delta falls below the convergence
// epsilon. The pass bound makes the simulation terminate even on graphs
// that violate the forward-edge assumption.
//
// An error is returned only for invalid options; graph and scenario
// content never fails. Patches targeting unknown nodes are no-ops.
func SimulateScenario(baseline *EvidenceGraph, scenario Scenario, opts ...Option) (*SimulationResult, error) {
	cfg := defaultSimConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	base := baseline.Clone()
	overlay := baseline.Clone()

	cfg.emit(emit.Event{
		ScenarioID: scenario.ID,
		Msg:        "scenario_start",
		Meta:       map[string]interface{}{"patches": len(scenario.Patches)},
	})

	locked := make(map[string]bool)
	patched := applyPatches(overlay, scenario, locked, &cfg)

	impacted := impactedNodes(overlay, patched)
	passes, converged := relax(overlay, impacted, locked, scenario.ID, &cfg)

	baseScores := ComputeDecisionScores(base)
	overlayScores := ComputeDecisionScores(overlay)

	diff := buildDiff(base, overlay, patched, baseScores, overlayScores)
	diff.Passes = passes
	diff.Converged = converged

	if cfg.metrics != nil {
		cfg.metrics.RecordSimulation(passes, converged, len(diff.ChangedDecisions))
	}
	cfg.emit(emit.Event{
		ScenarioID: scenario.ID,
		Pass:       passes,
		Msg:        "simulation_complete",
		Meta: map[string]interface{}{
			"converged":         converged,
			"changed_nodes":     len(diff.ChangedNodes),
			"changed_decisions": len(diff.ChangedDecisions),
		},
	})

	return &SimulationResult{Overlay: overlay, Diff: diff}, nil
}

// applyPatches writes each patch into the overlay and returns the IDs
// of the nodes actually patched, in patch order without duplicates.
func applyPatches(overlay *EvidenceGraph, scenario Scenario, locked map[string]bool, cfg *simConfig) []string {
	idx := overlay.nodeIndex()
	var patched []string
	seen := make(map[string]bool)

	for _, p := range scenario.Patches {
		i, ok := idx[p.NodeID]
		if !ok {
			cfg.emit(emit.Event{
				ScenarioID: scenario.ID,
				NodeID:     p.NodeID,
				Msg:        "patch_skipped",
				Meta:       map[string]interface{}{"reason": "unknown node"},
			})
			continue
		}
		node := &overlay.Nodes[i]

		if p.Value != nil {
			node.Value = p.Value
		}
		switch p.Mode {
		case PatchOverrideEvidence:
			node.Confidence = Float(overrideConfidence)
			node.ConfidenceSource = ConfidenceSourceUser
			node.ConfidenceBreakdown = &ConfidenceBreakdown{
				Formula: FormulaUserOverride,
				Notes:   "user override",
			}
			locked[node.ID] = true
		case PatchAdjust:
			if p.Confidence != nil {
				node.Confidence = Float(clamp01(*p.Confidence))
				src := p.ConfidenceSource
				if src == "" {
					src = ConfidenceSourceUser
				}
				node.ConfidenceSource = src
				locked[node.ID] = true
			}
		}

		if !seen[node.ID] {
			seen[node.ID] = true
			patched = append(patched, node.ID)
		}
		cfg.emit(emit.Event{
			ScenarioID: scenario.ID,
			NodeID:     node.ID,
			Msg:        "patch_applied",
			Meta:       map[string]interface{}{"mode": string(p.Mode)},
		})
	}
	return patched
}

// impactedNodes collects every node forward-reachable from the patched
// nodes, patched nodes included. Only this set is recomputed during
// relaxation.
func impactedNodes(g *EvidenceGraph, patched []string) map[string]bool {
	outgoing := g.outgoing()
	impacted := make(map[string]bool, len(patched))

	queue := make([]string, 0, len(patched))
	for _, id := range patched {
		if !impacted[id] {
			impacted[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range outgoing[id] {
			if impacted[e.To] {
				continue
			}
			impacted[e.To] = true
			queue = append(queue, e.To)
		}
	}
	return impacted
}

// relax recomputes impacted, unlocked nodes in fixed type order against
// the overlay's own current state until the largest per-pass confidence
// delta drops below the epsilon or the pass bound is reached. Returns
// the number of passes run and whether a fixed point was reached.
func relax(overlay *EvidenceGraph, impacted, locked map[string]bool, scenarioID string, cfg *simConfig) (passes int, converged bool) {
	incoming := overlay.incoming()
	resolve := overlay.resolver()

	for pass := 1; pass <= cfg.maxPasses; pass++ {
		passes = pass
		maxDelta := 0.0

		for _, t := range propagationOrder {
			for i := range overlay.Nodes {
				node := overlay.Nodes[i]
				if node.Type != t || !impacted[node.ID] || locked[node.ID] {
					continue
				}
				updated := ComputeConfidenceForNode(node.Clone(), incoming[node.ID], resolve)
				if d := confidenceDelta(node.Confidence, updated.Confidence); d > maxDelta {
					maxDelta = d
				}
				overlay.Nodes[i] = updated
				if cfg.metrics != nil {
					cfg.metrics.RecordNodeRecompute(string(t))
				}
			}
		}

		cfg.emit(emit.Event{
			ScenarioID: scenarioID,
			Pass:       pass,
			Msg:        "pass_complete",
			Meta:       map[string]interface{}{"max_delta": maxDelta},
		})
		if maxDelta < cfg.epsilon {
			converged = true
			break
		}
	}
	return passes, converged
}

// confidenceDelta is the absolute difference between two optional
// confidences, treating unset as zero.
func confidenceDelta(before, after *float64) float64 {
	b, a := 0.0, 0.0
	if before != nil {
		b = *before
	}
	if after != nil {
		a = *after
	}
	return math.Abs(a - b)
}
