package evidence

import (
	"reflect"
	"testing"
)

// chainFixture is a minimal source → claim → constraint → decision graph.
func chainFixture() *EvidenceGraph {
	return &EvidenceGraph{
		Nodes: []EvidenceNode{
			{ID: "s1", Type: NodeTypeSource, Label: "Report", ConfidenceBase: Float(0.9)},
			{ID: "c1", Type: NodeTypeClaim, Label: "Claim"},
			{ID: "k1", Type: NodeTypeConstraint, Label: "Constraint"},
			{ID: "d1", Type: NodeTypeDecision, Label: "Decision"},
		},
		Edges: []EvidenceEdge{
			{From: "s1", To: "c1", Type: EdgeSupports},
			{From: "c1", To: "k1", Type: EdgeDerivedFrom},
			{From: "k1", To: "d1", Type: EdgeInfluences, Weight: Float(1), Confidence: Float(1), Attenuation: Float(1)},
		},
	}
}

func TestComputeConfidenceGraph_Chain(t *testing.T) {
	out := ComputeConfidenceGraph(chainFixture())

	wantSource := 0.9
	wantClaim := 1 - (1 - 0.9*0.8)
	wantConstraint := wantClaim * 0.85 * 0.92
	wantDecision := wantConstraint // weight, confidence, attenuation all 1

	wants := map[string]float64{
		"s1": wantSource,
		"c1": wantClaim,
		"k1": wantConstraint,
		"d1": wantDecision,
	}
	for _, n := range out.Nodes {
		wantClose(t, confOf(t, n), wants[n.ID])
	}
}

func TestComputeConfidenceGraph_DoesNotMutateInput(t *testing.T) {
	in := chainFixture()
	_ = ComputeConfidenceGraph(in)

	for _, n := range in.Nodes {
		if n.Confidence != nil {
			t.Errorf("input node %q gained a confidence", n.ID)
		}
		if n.ConfidenceBreakdown != nil {
			t.Errorf("input node %q gained a breakdown", n.ID)
		}
	}
}

func TestComputeConfidenceGraph_Deterministic(t *testing.T) {
	a := ComputeConfidenceGraph(chainFixture())
	b := ComputeConfidenceGraph(chainFixture())
	if !reflect.DeepEqual(a, b) {
		t.Error("two propagations of the same graph diverged")
	}
}

func TestComputeConfidenceGraph_Idempotent(t *testing.T) {
	once := ComputeConfidenceGraph(chainFixture())
	twice := ComputeConfidenceGraph(once)
	for i := range once.Nodes {
		wantClose(t, confOf(t, twice.Nodes[i]), confOf(t, once.Nodes[i]))
	}
}

func TestComputeConfidenceGraph_PassThroughContributes(t *testing.T) {
	g := &EvidenceGraph{
		Nodes: []EvidenceNode{
			{ID: "ev1", Type: NodeTypeEvidence, Confidence: Float(0.42)},
			{ID: "c1", Type: NodeTypeClaim},
		},
		Edges: []EvidenceEdge{
			{From: "ev1", To: "c1", Type: EdgeSupports},
		},
	}
	out := ComputeConfidenceGraph(g)

	ev, _ := out.Node("ev1")
	wantClose(t, confOf(t, ev), 0.42)
	if ev.ConfidenceBreakdown != nil {
		t.Error("pass-through node should not gain a breakdown")
	}

	c, _ := out.Node("c1")
	wantClose(t, confOf(t, c), 0.42*0.8)
}

func TestComputeConfidenceGraph_PreservesOrder(t *testing.T) {
	in := chainFixture()
	out := ComputeConfidenceGraph(in)

	if len(out.Nodes) != len(in.Nodes) || len(out.Edges) != len(in.Edges) {
		t.Fatalf("expected %d nodes and %d edges, got %d and %d",
			len(in.Nodes), len(in.Edges), len(out.Nodes), len(out.Edges))
	}
	for i := range in.Nodes {
		if out.Nodes[i].ID != in.Nodes[i].ID {
			t.Errorf("node %d: expected ID %q, got %q", i, in.Nodes[i].ID, out.Nodes[i].ID)
		}
	}
}

func TestComputeConfidenceGraph_NilGraph(t *testing.T) {
	out := ComputeConfidenceGraph(nil)
	if out == nil {
		t.Fatal("expected an empty graph, got nil")
	}
	if len(out.Nodes) != 0 || len(out.Edges) != 0 {
		t.Errorf("expected empty graph, got %d nodes and %d edges", len(out.Nodes), len(out.Edges))
	}
}
