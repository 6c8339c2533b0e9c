package evidence

import (
	"math"
	"testing"
)

func TestComputeDecisionScores(t *testing.T) {
	t.Run("normalized by summed absolute weight", func(t *testing.T) {
		g := &EvidenceGraph{
			Nodes: []EvidenceNode{
				{ID: "k1", Type: NodeTypeConstraint, Label: "Constraint", Confidence: Float(0.8)},
				{ID: "d1", Type: NodeTypeDecision, Label: "Decision"},
			},
			Edges: []EvidenceEdge{
				{From: "k1", To: "d1", Type: EdgeInfluences},
			},
		}
		scores := ComputeDecisionScores(g)
		if len(scores) != 1 {
			t.Fatalf("expected 1 score, got %d", len(scores))
		}
		// 100 × (0.5×0.8×0.85×0.9) / 0.5
		wantClose(t, scores[0].Score, 100*0.8*0.85*0.9)
	})

	t.Run("negative edges pull the score down", func(t *testing.T) {
		g := &EvidenceGraph{
			Nodes: []EvidenceNode{
				{ID: "k1", Type: NodeTypeConstraint, Confidence: Float(0.8)},
				{ID: "d1", Type: NodeTypeDecision},
			},
			Edges: []EvidenceEdge{
				{From: "k1", To: "d1", Type: EdgeInfluences, Weight: Float(0.5)},
				{From: "k1", To: "d1", Type: EdgeInfluences, Weight: Float(0.5), Polarity: PolarityNegative},
			},
		}
		scores := ComputeDecisionScores(g)
		// Equal positive and negative impacts cancel out.
		wantClose(t, scores[0].Score, 0)
	})

	t.Run("metadata score hint used without impact edges", func(t *testing.T) {
		g := &EvidenceGraph{
			Nodes: []EvidenceNode{
				{ID: "d1", Type: NodeTypeDecision, Metadata: &NodeMetadata{Score: Float(42)}},
			},
		}
		scores := ComputeDecisionScores(g)
		wantClose(t, scores[0].Score, 42)
	})

	t.Run("no edges and no hint scores zero", func(t *testing.T) {
		g := &EvidenceGraph{
			Nodes: []EvidenceNode{{ID: "d1", Type: NodeTypeDecision}},
		}
		scores := ComputeDecisionScores(g)
		wantClose(t, scores[0].Score, 0)
	})

	t.Run("drivers keep the top two by absolute impact", func(t *testing.T) {
		g := &EvidenceGraph{
			Nodes: []EvidenceNode{
				{ID: "k1", Type: NodeTypeConstraint, Label: "Weak", Confidence: Float(0.2)},
				{ID: "k2", Type: NodeTypeConstraint, Label: "Strong", Confidence: Float(0.9)},
				{ID: "k3", Type: NodeTypeConstraint, Label: "Against", Confidence: Float(0.8)},
				{ID: "d1", Type: NodeTypeDecision},
			},
			Edges: []EvidenceEdge{
				{From: "k1", To: "d1", Type: EdgeInfluences},
				{From: "k2", To: "d1", Type: EdgeInfluences},
				{From: "k3", To: "d1", Type: EdgeInfluences, Polarity: PolarityNegative},
			},
		}
		scores := ComputeDecisionScores(g)
		drivers := scores[0].Drivers
		if len(drivers) != 2 {
			t.Fatalf("expected 2 drivers, got %d", len(drivers))
		}
		if drivers[0].Label != "Strong" {
			t.Errorf("expected strongest driver 'Strong', got %q", drivers[0].Label)
		}
		// Negative impact ranks by magnitude, so it beats the weak positive.
		if drivers[1].Label != "Against" {
			t.Errorf("expected second driver 'Against', got %q", drivers[1].Label)
		}
		if drivers[1].Impact >= 0 {
			t.Errorf("expected a negative impact, got %v", drivers[1].Impact)
		}
	})

	t.Run("dangling upstream labeled by ID and resolved to 0.6", func(t *testing.T) {
		g := &EvidenceGraph{
			Nodes: []EvidenceNode{{ID: "d1", Type: NodeTypeDecision}},
			Edges: []EvidenceEdge{
				{From: "ghost", To: "d1", Type: EdgeInfluences},
			},
		}
		scores := ComputeDecisionScores(g)
		if len(scores[0].Drivers) != 1 || scores[0].Drivers[0].Label != "ghost" {
			t.Fatalf("expected driver labeled 'ghost', got %+v", scores[0].Drivers)
		}
		wantClose(t, scores[0].Score, 100*0.6*0.85*0.9)
	})

	t.Run("nil graph", func(t *testing.T) {
		if scores := ComputeDecisionScores(nil); scores != nil {
			t.Errorf("expected nil scores, got %+v", scores)
		}
	})
}

func TestBuildRanking(t *testing.T) {
	scores := []DecisionScore{
		{NodeID: "d-c", Score: 40},
		{NodeID: "d-a", Score: 80},
		{NodeID: "d-b", Score: 40},
	}
	ranked := BuildRanking(scores)

	wantOrder := []string{"d-a", "d-b", "d-c"}
	for i, want := range wantOrder {
		if ranked[i].NodeID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, ranked[i].NodeID)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, ranked[i].Rank)
		}
	}
}

func TestTopMovers(t *testing.T) {
	changed := []DecisionDelta{
		{NodeID: "d1", PrevRank: 1, NextRank: 2},
		{NodeID: "d2", PrevRank: 5, NextRank: 1},
		{NodeID: "d3", PrevRank: 2, NextRank: 2, PrevScore: 10, NextScore: 30},
		{NodeID: "d4", PrevRank: 3, NextRank: 6},
		{NodeID: "d5", PrevRank: 6, NextRank: 4},
		{NodeID: "d6", PrevRank: 4, NextRank: 3},
		{NodeID: "d7", PrevRank: 7, NextRank: 7},
	}
	movers := topMovers(changed)

	if len(movers) != topMoverLimit {
		t.Fatalf("expected %d movers, got %d", topMoverLimit, len(movers))
	}
	if movers[0].NodeID != "d2" {
		t.Errorf("expected biggest mover 'd2', got %q", movers[0].NodeID)
	}
	if movers[0].RankDelta != -4 {
		t.Errorf("expected rank delta -4, got %d", movers[0].RankDelta)
	}
	// Equal rank deltas tie-break by score delta, then ID.
	wantOrder := []string{"d2", "d4", "d5", "d1", "d6"}
	for i, want := range wantOrder {
		if movers[i].NodeID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, movers[i].NodeID)
		}
	}
}

func TestConfidenceChanged(t *testing.T) {
	tests := []struct {
		name   string
		before *float64
		after  *float64
		want   bool
	}{
		{"both unset", nil, nil, false},
		{"set to unset", Float(0.5), nil, true},
		{"unset to set", nil, Float(0.5), true},
		{"below epsilon", Float(0.5), Float(0.5005), false},
		{"above epsilon", Float(0.5), Float(0.6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidenceChanged(tt.before, tt.after); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRankByID(t *testing.T) {
	ranked := BuildRanking([]DecisionScore{
		{NodeID: "d1", Score: 10},
		{NodeID: "d2", Score: 90},
	})
	byID := rankByID(ranked)
	if byID["d2"] != 1 || byID["d1"] != 2 {
		t.Errorf("unexpected rank map: %v", byID)
	}
}

func TestUpstreamLabel(t *testing.T) {
	g := &EvidenceGraph{
		Nodes: []EvidenceNode{
			{ID: "k1", Label: "Named"},
			{ID: "k2"},
		},
	}
	idx := g.nodeIndex()
	if got := upstreamLabel(g, idx, "k1"); got != "Named" {
		t.Errorf("expected 'Named', got %q", got)
	}
	if got := upstreamLabel(g, idx, "k2"); got != "k2" {
		t.Errorf("expected ID fallback 'k2', got %q", got)
	}
	if got := upstreamLabel(g, idx, "ghost"); got != "ghost" {
		t.Errorf("expected ID fallback 'ghost', got %q", got)
	}
}

func TestFloatHelpers(t *testing.T) {
	if floatOrZero(nil) != 0 {
		t.Error("expected 0 for nil")
	}
	if floatOrZero(Float(0.3)) != 0.3 {
		t.Error("expected 0.3")
	}
	if math.Abs(EffectiveImpact(EvidenceEdge{Type: EdgeInfluences}, 0)) != 0 {
		t.Error("zero upstream confidence should produce zero impact")
	}
}
