package evidence

// propagationOrder is the fixed type order of a full propagation pass.
//
// The engine assumes edges flow forward along this order (source →
// claim → constraint → decision), which is why no general topological
// sort is needed. Within one type, node order does not matter. A graph
// with a backward edge (e.g. a decision feeding a source) is not
// supported: the upstream read degrades to the 0.6 default instead of
// failing.
var propagationOrder = []NodeType{
	NodeTypeSource,
	NodeTypeClaim,
	NodeTypeConstraint,
	NodeTypeDecision,
}

// ComputeConfidenceGraph recomputes the confidence of every node in the
// graph and returns a new graph; the input is never mutated.
//
// Nodes are visited by type in propagationOrder so that a node's inputs
// are already resolved when it is processed. The resolver prefers nodes
// recomputed in this pass and falls back to the input graph, so
// pass-through nodes (evidence, group) still contribute whatever
// confidence they carried in. Pass-through nodes themselves are copied
// unchanged.
//
// The computation is deterministic: the same input graph always yields
// the same output graph.
func ComputeConfidenceGraph(g *EvidenceGraph) *EvidenceGraph {
	if g == nil {
		return &EvidenceGraph{}
	}

	incoming := g.incoming()
	original := g.resolver()
	recomputed := make(map[string]EvidenceNode, len(g.Nodes))

	resolve := func(id string) (float64, bool) {
		if n, ok := recomputed[id]; ok {
			if n.Confidence != nil {
				return *n.Confidence, true
			}
			return 0, false
		}
		return original(id)
	}

	for _, t := range propagationOrder {
		for i := range g.Nodes {
			if g.Nodes[i].Type != t {
				continue
			}
			node := g.Nodes[i].Clone()
			recomputed[node.ID] = ComputeConfidenceForNode(node, incoming[node.ID], resolve)
		}
	}

	out := &EvidenceGraph{
		Nodes: make([]EvidenceNode, len(g.Nodes)),
		Edges: make([]EvidenceEdge, len(g.Edges)),
	}
	for i := range g.Nodes {
		if n, ok := recomputed[g.Nodes[i].ID]; ok {
			out.Nodes[i] = n
			continue
		}
		out.Nodes[i] = g.Nodes[i].Clone()
	}
	for i := range g.Edges {
		out.Edges[i] = g.Edges[i].Clone()
	}
	return out
}
