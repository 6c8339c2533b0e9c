package evidence

// EdgeType classifies a directed relation between two evidence nodes.
//
// Confidence flows strictly along edge direction: an edge of any type
// contributes only to the confidence of its To node.
type EdgeType string

const (
	// EdgeSupports connects a source to a claim it backs.
	EdgeSupports EdgeType = "supports"

	// EdgeConflictsWith connects evidence that contradicts its target.
	EdgeConflictsWith EdgeType = "conflicts_with"

	// EdgeDerivedFrom connects a claim to a constraint inferred from it.
	EdgeDerivedFrom EdgeType = "derived_from"

	// EdgeInfluences connects a constraint to a decision it affects.
	EdgeInfluences EdgeType = "influences"

	// EdgeFilters connects a constraint that rules options in or out.
	EdgeFilters EdgeType = "filters"

	// EdgeScores connects a constraint that contributes to an option's score.
	EdgeScores EdgeType = "scores"

	// EdgeProducedBy records provenance; it never carries confidence.
	EdgeProducedBy EdgeType = "produced_by"
)

// Polarity marks whether an edge pushes its target's score up or down.
type Polarity string

const (
	// PolarityPositive is the default: the edge contributes positively.
	PolarityPositive Polarity = "positive"

	// PolarityNegative flips the sign of the edge's effective impact.
	PolarityNegative Polarity = "negative"
)

// EvidenceEdge is a directed, typed relation between two nodes.
//
// The optional numeric fields default per call site (the combination
// rules in this package document their defaults), so they are pointers
// rather than zero-valued floats.
type EvidenceEdge struct {
	// From is the source node ID.
	From string `json:"from"`

	// To is the destination node ID.
	To string `json:"to"`

	// Type selects how the edge participates in confidence combination.
	Type EdgeType `json:"type"`

	// Weight is the edge's importance or magnitude. Defaults vary by
	// rule: 0.15 for conflict penalties, 1 for derivations, 0.5 for
	// decision impacts.
	Weight *float64 `json:"weight,omitempty"`

	// Confidence is the reliability of the edge's own provenance.
	// Defaults: 0.8 for supports, 0.85 elsewhere.
	Confidence *float64 `json:"confidence,omitempty"`

	// Attenuation is the signal decay across the edge. Defaults: 0.92
	// for derivations, 0.9/0.88/0.92 for influences/filters/scores.
	Attenuation *float64 `json:"attenuation,omitempty"`

	// Polarity is positive unless explicitly negative.
	Polarity Polarity `json:"polarity,omitempty"`
}

// Clone returns a deep copy of the edge.
func (e EvidenceEdge) Clone() EvidenceEdge {
	out := e
	out.Weight = copyFloat(e.Weight)
	out.Confidence = copyFloat(e.Confidence)
	out.Attenuation = copyFloat(e.Attenuation)
	return out
}

// weightOr returns the edge weight, or def when unset.
func (e EvidenceEdge) weightOr(def float64) float64 {
	if e.Weight != nil {
		return *e.Weight
	}
	return def
}

// confidenceOr returns the edge confidence, or def when unset.
func (e EvidenceEdge) confidenceOr(def float64) float64 {
	if e.Confidence != nil {
		return *e.Confidence
	}
	return def
}

// attenuationOr returns the edge attenuation, or def when unset.
func (e EvidenceEdge) attenuationOr(def float64) float64 {
	if e.Attenuation != nil {
		return *e.Attenuation
	}
	return def
}

// negative reports whether the edge carries negative polarity.
func (e EvidenceEdge) negative() bool {
	return e.Polarity == PolarityNegative
}
