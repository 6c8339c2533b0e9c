package evidence

// EvidenceGraph is an ordered set of nodes and directed edges.
//
// Node IDs are unique within a graph. Edges should reference existing
// node IDs, but violations are tolerated: a lookup failure degrades to
// the 0.6 default confidence instead of failing (see
// ComputeConfidenceForNode).
//
// The engine treats graphs handed to it as immutable: every operation
// returns a new graph (or overlay) and never writes into its input.
// Because of that, one baseline graph can safely back any number of
// concurrently running scenarios.
type EvidenceGraph struct {
	// Nodes in producer order. Order is preserved by every operation.
	Nodes []EvidenceNode `json:"nodes"`

	// Edges in producer order.
	Edges []EvidenceEdge `json:"edges"`
}

// Clone returns a deep copy of the graph.
//
// Nodes, edges, metadata, and breakdowns are all structurally copied;
// the clone shares nothing with the original. This is what makes
// base/overlay snapshots during simulation safe to mutate independently.
func (g *EvidenceGraph) Clone() *EvidenceGraph {
	if g == nil {
		return &EvidenceGraph{}
	}
	out := &EvidenceGraph{
		Nodes: make([]EvidenceNode, len(g.Nodes)),
		Edges: make([]EvidenceEdge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range g.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}

// Node returns a copy of the node with the given ID.
//
// The second return value reports whether the node exists.
func (g *EvidenceGraph) Node(id string) (EvidenceNode, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return g.Nodes[i], true
		}
	}
	return EvidenceNode{}, false
}

// nodeIndex maps node ID to position in Nodes.
func (g *EvidenceGraph) nodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i := range g.Nodes {
		idx[g.Nodes[i].ID] = i
	}
	return idx
}

// incoming maps node ID to the edges pointing at it, in edge order.
func (g *EvidenceGraph) incoming() map[string][]EvidenceEdge {
	idx := make(map[string][]EvidenceEdge, len(g.Nodes))
	for _, e := range g.Edges {
		idx[e.To] = append(idx[e.To], e)
	}
	return idx
}

// outgoing maps node ID to the edges leaving it, in edge order.
func (g *EvidenceGraph) outgoing() map[string][]EvidenceEdge {
	idx := make(map[string][]EvidenceEdge, len(g.Nodes))
	for _, e := range g.Edges {
		idx[e.From] = append(idx[e.From], e)
	}
	return idx
}

// resolver returns a Resolver over this graph's current node state.
//
// It reports (confidence, true) for nodes that exist and carry a numeric
// confidence, and (0, false) otherwise.
func (g *EvidenceGraph) resolver() Resolver {
	idx := g.nodeIndex()
	return func(id string) (float64, bool) {
		i, ok := idx[id]
		if !ok {
			return 0, false
		}
		if c := g.Nodes[i].Confidence; c != nil {
			return *c, true
		}
		return 0, false
	}
}
