package evidence

import (
	"math"
	"sort"
)

// diffEpsilon is the smallest confidence or score movement reported as
// a change.
const diffEpsilon = 0.001

// topMoverLimit caps the top-movers list in a simulation diff.
const topMoverLimit = 5

// Driver is one of the strongest contributions to a decision's score.
type Driver struct {
	// Label is the upstream node's display label (its ID when the
	// reference is dangling).
	Label string `json:"label"`

	// Impact is the signed effective impact of the driving edge.
	Impact float64 `json:"impact"`
}

// DecisionScore is the normalized score of one decision node.
type DecisionScore struct {
	// NodeID identifies the decision.
	NodeID string `json:"nodeId"`

	// Label is the decision's display label.
	Label string `json:"label"`

	// Score is 100 × Σimpact / Σ|weight| over influence-style edges,
	// or the metadata score hint (else 0) when the decision has none.
	Score float64 `json:"score"`

	// Confidence is the decision's computed confidence, if any.
	Confidence *float64 `json:"confidence,omitempty"`

	// Drivers are the top-2 incoming edges by absolute impact.
	Drivers []Driver `json:"drivers,omitempty"`
}

// RankedDecision is a decision's 1-based position after sorting.
type RankedDecision struct {
	// NodeID identifies the decision.
	NodeID string `json:"nodeId"`

	// Score is the decision's normalized score.
	Score float64 `json:"score"`

	// Rank is the 1-based position: highest score first, ties broken by
	// ascending node ID.
	Rank int `json:"rank"`
}

// ComputeDecisionScores computes a normalized score for every decision
// node in the graph, in node order.
//
// For each decision, the incoming influences/filters/scores edges are
// converted to signed effective impacts using the resolved confidence
// of their upstream nodes in this same graph (dangling references
// resolve to the 0.6 default). With at least one such edge the score is
// 100 × Σimpact / Σ|weight|; with none, the metadata score hint (else
// 0) is used. The two edges with the largest absolute impact are
// recorded as drivers, labeled by their upstream node.
func ComputeDecisionScores(g *EvidenceGraph) []DecisionScore {
	if g == nil {
		return nil
	}
	incoming := g.incoming()
	resolve := g.resolver()
	idx := g.nodeIndex()

	var scores []DecisionScore
	for i := range g.Nodes {
		node := g.Nodes[i]
		if node.Type != NodeTypeDecision {
			continue
		}

		var drivers []Driver
		sumImpact := 0.0
		sumAbsWeight := 0.0
		hasImpact := false
		for _, e := range incoming[node.ID] {
			if !isImpactEdge(e.Type) {
				continue
			}
			hasImpact = true
			impact := EffectiveImpact(e, resolveOr(resolve, e.From))
			sumImpact += impact
			sumAbsWeight += math.Abs(e.weightOr(defaultImpactWeight))
			drivers = append(drivers, Driver{Label: upstreamLabel(g, idx, e.From), Impact: impact})
		}

		score := 0.0
		switch {
		case hasImpact && sumAbsWeight > 0:
			score = 100 * sumImpact / sumAbsWeight
		case node.Metadata != nil && node.Metadata.Score != nil:
			score = *node.Metadata.Score
		}

		sort.SliceStable(drivers, func(a, b int) bool {
			return math.Abs(drivers[a].Impact) > math.Abs(drivers[b].Impact)
		})
		if len(drivers) > 2 {
			drivers = drivers[:2]
		}

		scores = append(scores, DecisionScore{
			NodeID:     node.ID,
			Label:      node.Label,
			Score:      score,
			Confidence: copyFloat(node.Confidence),
			Drivers:    drivers,
		})
	}
	return scores
}

// BuildRanking orders decision scores descending and assigns 1-based
// ranks. Equal scores rank by ascending node ID.
func BuildRanking(scores []DecisionScore) []RankedDecision {
	ranked := make([]RankedDecision, len(scores))
	for i, s := range scores {
		ranked[i] = RankedDecision{NodeID: s.NodeID, Score: s.Score}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		return ranked[a].NodeID < ranked[b].NodeID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// NodeDelta reports one node whose confidence moved between the
// baseline and the overlay.
type NodeDelta struct {
	// NodeID identifies the node.
	NodeID string `json:"nodeId"`

	// Label is the node's display label.
	Label string `json:"label"`

	// Before is the baseline confidence (0 when unset).
	Before float64 `json:"before"`

	// After is the overlay confidence (0 when unset).
	After float64 `json:"after"`
}

// DecisionDelta reports one decision whose rank, score, or confidence
// moved between the baseline and the overlay.
type DecisionDelta struct {
	// NodeID identifies the decision.
	NodeID string `json:"nodeId"`

	// Label is the decision's display label.
	Label string `json:"label"`

	// PrevScore and NextScore are the baseline and overlay scores.
	PrevScore float64 `json:"prevScore"`
	NextScore float64 `json:"nextScore"`

	// PrevRank and NextRank are the baseline and overlay 1-based ranks.
	PrevRank int `json:"prevRank"`
	NextRank int `json:"nextRank"`

	// PrevConfidence and NextConfidence are the decision confidences
	// (0 when unset).
	PrevConfidence float64 `json:"prevConfidence"`
	NextConfidence float64 `json:"nextConfidence"`

	// Drivers are the overlay's top contributions to the decision.
	Drivers []Driver `json:"drivers,omitempty"`
}

// EvidenceTension reports a patched node whose upstream evidence is in
// conflict with it.
type EvidenceTension struct {
	// NodeID identifies the patched node.
	NodeID string `json:"nodeId"`

	// Label is the patched node's display label.
	Label string `json:"label"`

	// ConflictingSources lists the labels of source-type nodes connected
	// to the patched node by conflicts_with edges.
	ConflictingSources []string `json:"conflictingSources"`
}

// TopMover reports one of the decisions whose ranking moved the most.
type TopMover struct {
	// NodeID identifies the decision.
	NodeID string `json:"nodeId"`

	// Label is the decision's display label.
	Label string `json:"label"`

	// RankDelta is next rank minus previous rank (negative = climbed).
	RankDelta int `json:"rankDelta"`

	// ConfidenceDelta is next confidence minus previous confidence.
	ConfidenceDelta float64 `json:"confidenceDelta"`

	// ScoreDelta is next score minus previous score.
	ScoreDelta float64 `json:"scoreDelta"`

	// Drivers are the overlay's top contributions to the decision.
	Drivers []Driver `json:"drivers,omitempty"`
}

// SimulationDiff summarizes how a scenario changed the graph.
type SimulationDiff struct {
	// ChangedNodes lists nodes whose confidence moved by more than 0.001.
	ChangedNodes []NodeDelta `json:"changedNodes"`

	// ChangedDecisions lists decisions whose rank changed or whose
	// score/confidence moved by more than 0.001.
	ChangedDecisions []DecisionDelta `json:"changedDecisions"`

	// EvidenceTensions lists patched nodes with conflicting source
	// evidence upstream.
	EvidenceTensions []EvidenceTension `json:"evidenceTensions"`

	// TopMovers lists up to 5 changed decisions with the largest
	// absolute rank delta.
	TopMovers []TopMover `json:"topMovers"`

	// Passes is the number of relaxation passes run.
	Passes int `json:"passes"`

	// Converged reports whether the relaxation reached a fixed point
	// within the pass bound.
	Converged bool `json:"converged"`
}

// buildDiff compares the baseline against the overlay and assembles the
// simulation diff.
func buildDiff(base, overlay *EvidenceGraph, patched []string, baseScores, overlayScores []DecisionScore) SimulationDiff {
	diff := SimulationDiff{
		ChangedNodes:     changedNodes(base, overlay),
		ChangedDecisions: changedDecisions(baseScores, overlayScores),
		EvidenceTensions: evidenceTensions(overlay, patched),
	}
	diff.TopMovers = topMovers(diff.ChangedDecisions)
	return diff
}

func changedNodes(base, overlay *EvidenceGraph) []NodeDelta {
	baseIdx := base.nodeIndex()
	var deltas []NodeDelta
	for i := range overlay.Nodes {
		after := overlay.Nodes[i]
		j, ok := baseIdx[after.ID]
		if !ok {
			continue
		}
		before := base.Nodes[j]
		if !confidenceChanged(before.Confidence, after.Confidence) {
			continue
		}
		deltas = append(deltas, NodeDelta{
			NodeID: after.ID,
			Label:  after.Label,
			Before: floatOrZero(before.Confidence),
			After:  floatOrZero(after.Confidence),
		})
	}
	return deltas
}

func changedDecisions(baseScores, overlayScores []DecisionScore) []DecisionDelta {
	prevByID := make(map[string]DecisionScore, len(baseScores))
	for _, s := range baseScores {
		prevByID[s.NodeID] = s
	}
	prevRank := rankByID(BuildRanking(baseScores))
	nextRank := rankByID(BuildRanking(overlayScores))

	var deltas []DecisionDelta
	for _, next := range overlayScores {
		prev, ok := prevByID[next.NodeID]
		if !ok {
			continue
		}
		rankChanged := prevRank[next.NodeID] != nextRank[next.NodeID]
		scoreMoved := math.Abs(next.Score-prev.Score) > diffEpsilon
		confMoved := confidenceChanged(prev.Confidence, next.Confidence)
		if !rankChanged && !scoreMoved && !confMoved {
			continue
		}
		deltas = append(deltas, DecisionDelta{
			NodeID:         next.NodeID,
			Label:          next.Label,
			PrevScore:      prev.Score,
			NextScore:      next.Score,
			PrevRank:       prevRank[next.NodeID],
			NextRank:       nextRank[next.NodeID],
			PrevConfidence: floatOrZero(prev.Confidence),
			NextConfidence: floatOrZero(next.Confidence),
			Drivers:        next.Drivers,
		})
	}
	return deltas
}

// evidenceTensions lists, per patched node, the source-type nodes that
// conflict with it. Patched nodes with no conflicts are omitted.
func evidenceTensions(g *EvidenceGraph, patched []string) []EvidenceTension {
	idx := g.nodeIndex()
	incoming := g.incoming()

	var tensions []EvidenceTension
	for _, id := range patched {
		i, ok := idx[id]
		if !ok {
			continue
		}
		var sources []string
		for _, e := range incoming[id] {
			if e.Type != EdgeConflictsWith {
				continue
			}
			j, ok := idx[e.From]
			if !ok || g.Nodes[j].Type != NodeTypeSource {
				continue
			}
			sources = append(sources, g.Nodes[j].Label)
		}
		if len(sources) == 0 {
			continue
		}
		tensions = append(tensions, EvidenceTension{
			NodeID:             id,
			Label:              g.Nodes[i].Label,
			ConflictingSources: sources,
		})
	}
	return tensions
}

// topMovers picks the changed decisions with the largest absolute rank
// delta. Ties order by absolute score delta, then ascending node ID,
// to keep the list deterministic.
func topMovers(changed []DecisionDelta) []TopMover {
	ordered := make([]DecisionDelta, len(changed))
	copy(ordered, changed)
	sort.SliceStable(ordered, func(a, b int) bool {
		ra := abs(ordered[a].NextRank - ordered[a].PrevRank)
		rb := abs(ordered[b].NextRank - ordered[b].PrevRank)
		if ra != rb {
			return ra > rb
		}
		sa := math.Abs(ordered[a].NextScore - ordered[a].PrevScore)
		sb := math.Abs(ordered[b].NextScore - ordered[b].PrevScore)
		if sa != sb {
			return sa > sb
		}
		return ordered[a].NodeID < ordered[b].NodeID
	})
	if len(ordered) > topMoverLimit {
		ordered = ordered[:topMoverLimit]
	}

	movers := make([]TopMover, len(ordered))
	for i, d := range ordered {
		movers[i] = TopMover{
			NodeID:          d.NodeID,
			Label:           d.Label,
			RankDelta:       d.NextRank - d.PrevRank,
			ConfidenceDelta: d.NextConfidence - d.PrevConfidence,
			ScoreDelta:      d.NextScore - d.PrevScore,
			Drivers:         d.Drivers,
		}
	}
	return movers
}

// rankByID flattens a ranking into an ID → rank lookup.
func rankByID(ranked []RankedDecision) map[string]int {
	out := make(map[string]int, len(ranked))
	for _, r := range ranked {
		out[r.NodeID] = r.Rank
	}
	return out
}

// confidenceChanged reports whether two optional confidences differ by
// more than the diff epsilon, counting set/unset transitions as change.
func confidenceChanged(before, after *float64) bool {
	if (before == nil) != (after == nil) {
		return true
	}
	if before == nil {
		return false
	}
	return math.Abs(*after-*before) > diffEpsilon
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// upstreamLabel resolves a node's display label, degrading to the ID
// for dangling references.
func upstreamLabel(g *EvidenceGraph, idx map[string]int, id string) string {
	if i, ok := idx[id]; ok && g.Nodes[i].Label != "" {
		return g.Nodes[i].Label
	}
	return id
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
