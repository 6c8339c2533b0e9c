// Package evidence provides the confidence-propagation and scenario-simulation
// engine for decision-support evidence graphs.
package evidence

// NodeType classifies a vertex in an evidence graph.
//
// Four types participate in confidence propagation (source, claim,
// constraint, decision). The remaining types are carried through the
// engine unchanged: their confidence is whatever the producer assigned.
type NodeType string

const (
	// NodeTypeSource is raw evidentiary material (a document, a report,
	// a measurement). Sources are terminal: their confidence comes from
	// their own prior, never from upstream nodes.
	NodeTypeSource NodeType = "source"

	// NodeTypeClaim is an assertion extracted from one or more sources.
	NodeTypeClaim NodeType = "claim"

	// NodeTypeConstraint is a requirement or condition derived from claims.
	NodeTypeConstraint NodeType = "constraint"

	// NodeTypeDecision is an option under consideration, influenced by
	// constraints.
	NodeTypeDecision NodeType = "decision"

	// NodeTypeEvidence is a pass-through grouping of raw evidence.
	// The engine never recomputes its confidence.
	NodeTypeEvidence NodeType = "evidence"

	// NodeTypeGroup is a pass-through organizational node.
	// The engine never recomputes its confidence.
	NodeTypeGroup NodeType = "group"
)

// ConfidenceSource records whether a node's confidence was pinned by a
// human or produced by the engine/model.
type ConfidenceSource string

const (
	// ConfidenceSourceUser marks confidence set by a human (e.g. a
	// scenario override). User-pinned nodes are excluded from
	// recomputation during simulation.
	ConfidenceSourceUser ConfidenceSource = "user"

	// ConfidenceSourceModel marks confidence produced by upstream
	// extraction or by this engine.
	ConfidenceSourceModel ConfidenceSource = "model"
)

// Formula identifies which combination rule produced a node's confidence.
//
// The set is closed so that renderers can switch over it exhaustively.
type Formula string

const (
	// FormulaBaseline means the node's prior (or the 0.6 default) was
	// used because no relevant incoming edges existed.
	FormulaBaseline Formula = "baseline"

	// FormulaNoisyOR is the claim rule: 1 − Π(1 − p_i) over supporting
	// inputs, optionally discounted by a capped conflict penalty.
	FormulaNoisyOR Formula = "noisy-or"

	// FormulaWeightedMean is the constraint rule: Σ(w·q) / Σw over
	// derived-from inputs.
	FormulaWeightedMean Formula = "weighted-mean"

	// FormulaNoisyORCoverage is the decision rule: noisy-OR over
	// effective impacts, discounted by required-constraint coverage.
	FormulaNoisyORCoverage Formula = "noisy-or-coverage"

	// FormulaUserOverride means a scenario patch pinned the value.
	FormulaUserOverride Formula = "user-override"
)

// BreakdownInput is one contributing value in a confidence breakdown.
type BreakdownInput struct {
	// Label names the contribution, typically the upstream node ID.
	Label string `json:"label"`

	// Value is the contribution after edge confidence and attenuation.
	Value float64 `json:"value"`

	// Weight is the edge weight applied to this contribution.
	Weight float64 `json:"weight,omitempty"`
}

// BreakdownPenalty is one multiplicative discount in a confidence breakdown.
type BreakdownPenalty struct {
	// Label names the penalty ("conflicts", "coverage").
	Label string `json:"label"`

	// Value is the multiplier applied to the combined inputs.
	Value float64 `json:"value"`
}

// ConfidenceBreakdown explains how a node's confidence was computed.
//
// It is a side artifact for rendering tooltips and audit views. The
// engine writes it on every recomputation and never reads it back.
type ConfidenceBreakdown struct {
	// Formula is the combination rule that produced the confidence.
	Formula Formula `json:"formula"`

	// Inputs lists the contributing values, one per relevant edge.
	Inputs []BreakdownInput `json:"inputs,omitempty"`

	// Penalties lists multiplicative discounts applied after combining.
	Penalties []BreakdownPenalty `json:"penalties,omitempty"`

	// Notes carries free-text context, e.g. why a fallback was used.
	Notes string `json:"notes,omitempty"`
}

// Clone returns a deep copy of the breakdown.
func (b *ConfidenceBreakdown) Clone() *ConfidenceBreakdown {
	if b == nil {
		return nil
	}
	out := &ConfidenceBreakdown{Formula: b.Formula, Notes: b.Notes}
	if b.Inputs != nil {
		out.Inputs = make([]BreakdownInput, len(b.Inputs))
		copy(out.Inputs, b.Inputs)
	}
	if b.Penalties != nil {
		out.Penalties = make([]BreakdownPenalty, len(b.Penalties))
		copy(out.Penalties, b.Penalties)
	}
	return out
}

// NodeMetadata carries optional, producer-supplied hints about a node.
type NodeMetadata struct {
	// RequiredConstraintIDs lists constraint node IDs a decision depends
	// on. Coverage of this list discounts the decision's confidence.
	RequiredConstraintIDs []string `json:"requiredConstraintIds,omitempty"`

	// Score is a producer-supplied decision score hint, used only when a
	// decision has no incoming influence edges.
	Score *float64 `json:"score,omitempty"`

	// Options enumerates candidate values for the node's Value field.
	Options []string `json:"options,omitempty"`
}

// Clone returns a deep copy of the metadata.
func (m *NodeMetadata) Clone() *NodeMetadata {
	if m == nil {
		return nil
	}
	out := &NodeMetadata{Score: copyFloat(m.Score)}
	if m.RequiredConstraintIDs != nil {
		out.RequiredConstraintIDs = make([]string, len(m.RequiredConstraintIDs))
		copy(out.RequiredConstraintIDs, m.RequiredConstraintIDs)
	}
	if m.Options != nil {
		out.Options = make([]string, len(m.Options))
		copy(out.Options, m.Options)
	}
	return out
}

// EvidenceNode is a vertex in an evidence graph.
//
// Optional numeric fields are pointers so that "unset" is
// distinguishable from zero; this matters for the decision coverage
// rule, which counts required constraints that actually carry a
// numeric confidence.
type EvidenceNode struct {
	// ID uniquely identifies the node within its graph.
	ID string `json:"id"`

	// Type selects the confidence combination rule (or pass-through).
	Type NodeType `json:"type"`

	// Label is the human-readable display name.
	Label string `json:"label"`

	// Metadata carries optional producer-supplied hints.
	Metadata *NodeMetadata `json:"metadata,omitempty"`

	// Value is the thing being asserted (an enum value, a boolean, ...).
	// The engine treats it as opaque; scenario patches may replace it.
	Value any `json:"value,omitempty"`

	// ConfidenceBase is the node's prior, used when it has no relevant
	// incoming edges. Defaults to 0.6 when unset.
	ConfidenceBase *float64 `json:"confidenceBase,omitempty"`

	// Confidence is the computed confidence in [0,1].
	Confidence *float64 `json:"confidence,omitempty"`

	// ConfidenceSource records whether a human pinned the confidence.
	ConfidenceSource ConfidenceSource `json:"confidenceSource,omitempty"`

	// ConfidenceBreakdown explains the last computation. Output only.
	ConfidenceBreakdown *ConfidenceBreakdown `json:"confidenceBreakdown,omitempty"`
}

// Clone returns a deep copy of the node.
//
// Metadata and breakdown are structurally copied so that a cloned graph
// never aliases its origin. Value is copied by assignment; producers
// are expected to use scalar values.
func (n EvidenceNode) Clone() EvidenceNode {
	out := n
	out.Metadata = n.Metadata.Clone()
	out.ConfidenceBase = copyFloat(n.ConfidenceBase)
	out.Confidence = copyFloat(n.Confidence)
	out.ConfidenceBreakdown = n.ConfidenceBreakdown.Clone()
	return out
}

// Float returns a pointer to v.
//
// Convenience for populating the optional numeric fields:
//
//	node := evidence.EvidenceNode{
//	    ID:             "claim-1",
//	    Type:           evidence.NodeTypeClaim,
//	    ConfidenceBase: evidence.Float(0.7),
//	}
func Float(v float64) *float64 {
	return &v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
