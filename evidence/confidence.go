package evidence

import "math"

// Default parameters of the combination rules. Callers override them
// per edge; these apply whenever the corresponding field is unset.
const (
	// DefaultConfidence is used when a node has no prior and no relevant
	// incoming edges, and when an edge references an unknown node.
	DefaultConfidence = 0.6

	// defaultSupportEdgeConfidence backs supports edges into claims.
	defaultSupportEdgeConfidence = 0.8

	// defaultConflictWeight is the penalty weight of one conflict edge.
	defaultConflictWeight = 0.15

	// maxConflictPenalty caps the summed conflict weights on a claim.
	maxConflictPenalty = 0.35

	// defaultDerivedEdgeConfidence backs derived_from edges into constraints.
	defaultDerivedEdgeConfidence = 0.85

	// defaultDerivedAttenuation is the decay across a derived_from edge.
	defaultDerivedAttenuation = 0.92

	// defaultDerivedWeight weights a derived_from edge in the mean.
	defaultDerivedWeight = 1.0

	// defaultImpactWeight is the magnitude of an influence-style edge.
	defaultImpactWeight = 0.5

	// defaultImpactEdgeConfidence backs influence-style edges.
	defaultImpactEdgeConfidence = 0.85

	// minCoverageFactor is the multiplier at zero required-constraint
	// coverage; full coverage scales it back up to 1.
	minCoverageFactor = 0.6
)

// Resolver looks up the already-computed confidence of an upstream node.
//
// It reports (confidence, true) when the node exists and carries a
// numeric confidence, and (0, false) otherwise. The propagation order
// guarantees a node's inputs are resolved before the node itself is
// computed; the Calculator does not enforce that itself.
type Resolver func(id string) (float64, bool)

// ComputeConfidenceForNode computes the confidence and breakdown for a
// single node from its type and its incoming edges.
//
// Per-type rules:
//   - source: the node's own confidence, else its prior, else 0.6.
//   - claim: noisy-OR over supports edges, discounted by a conflict
//     penalty capped at 0.35.
//   - constraint: weighted mean over derived_from edges.
//   - decision: noisy-OR over non-negative effective impacts of
//     influences/filters/scores edges, discounted by required-constraint
//     coverage.
//   - anything else: returned unchanged (pass-through).
//
// The function is total: unknown upstream references resolve to the 0.6
// default, and a node with no relevant incoming edges falls back to its
// baseline with an explanatory note. The input node is not mutated; a
// new value is returned.
func ComputeConfidenceForNode(node EvidenceNode, incoming []EvidenceEdge, resolve Resolver) EvidenceNode {
	switch node.Type {
	case NodeTypeSource:
		return sourceConfidence(node)
	case NodeTypeClaim:
		return claimConfidence(node, incoming, resolve)
	case NodeTypeConstraint:
		return constraintConfidence(node, incoming, resolve)
	case NodeTypeDecision:
		return decisionConfidence(node, incoming, resolve)
	default:
		// Pass-through types keep whatever confidence they carry.
		return node
	}
}

// EffectiveImpact computes the signed contribution of one
// influence-style edge to a decision, given the resolved confidence of
// the upstream node.
//
// impact = weight(0.5) × upstream × confidence(0.85) × attenuation,
// where attenuation defaults to 0.9 for influences, 0.88 for filters,
// and 0.92 otherwise. Negative polarity returns −|impact|; positive
// polarity returns the product unmodified.
func EffectiveImpact(edge EvidenceEdge, upstreamConfidence float64) float64 {
	impact := edge.weightOr(defaultImpactWeight)
	cred := edge.confidenceOr(defaultImpactEdgeConfidence) * edge.attenuationOr(defaultImpactAttenuation(edge.Type))
	base := impact * upstreamConfidence * cred
	if edge.negative() {
		return -math.Abs(base)
	}
	return base
}

// defaultImpactAttenuation is the per-edge-type decay of influence-style
// edges.
func defaultImpactAttenuation(t EdgeType) float64 {
	switch t {
	case EdgeInfluences:
		return 0.9
	case EdgeFilters:
		return 0.88
	default:
		return 0.92
	}
}

func sourceConfidence(node EvidenceNode) EvidenceNode {
	value := baselineOf(node)
	out := node
	out.Confidence = Float(clamp01(value))
	out.ConfidenceBreakdown = &ConfidenceBreakdown{
		Formula: FormulaBaseline,
		Inputs:  []BreakdownInput{{Label: "baseline", Value: value}},
	}
	return out
}

func claimConfidence(node EvidenceNode, incoming []EvidenceEdge, resolve Resolver) EvidenceNode {
	var inputs []BreakdownInput
	survival := 1.0
	hasSupport := false
	for _, e := range incoming {
		if e.Type != EdgeSupports {
			continue
		}
		hasSupport = true
		p := resolveOr(resolve, e.From) * e.confidenceOr(defaultSupportEdgeConfidence)
		survival *= 1 - p
		inputs = append(inputs, BreakdownInput{Label: e.From, Value: p})
	}
	if !hasSupport {
		// Conflicts alone never move a claim; without supports the
		// claim keeps its baseline.
		return baselineFallback(node, "no supports")
	}
	support := 1 - survival

	conflictSum := 0.0
	hasConflict := false
	for _, e := range incoming {
		if e.Type != EdgeConflictsWith {
			continue
		}
		hasConflict = true
		conflictSum += e.weightOr(defaultConflictWeight)
	}
	penalty := 1 - math.Min(maxConflictPenalty, conflictSum)

	out := node
	out.Confidence = Float(clamp01(support * penalty))
	breakdown := &ConfidenceBreakdown{Formula: FormulaNoisyOR, Inputs: inputs}
	if hasConflict {
		breakdown.Penalties = []BreakdownPenalty{{Label: "conflicts", Value: penalty}}
	}
	out.ConfidenceBreakdown = breakdown
	return out
}

func constraintConfidence(node EvidenceNode, incoming []EvidenceEdge, resolve Resolver) EvidenceNode {
	var inputs []BreakdownInput
	weightedSum := 0.0
	weightSum := 0.0
	for _, e := range incoming {
		if e.Type != EdgeDerivedFrom {
			continue
		}
		q := resolveOr(resolve, e.From) *
			e.confidenceOr(defaultDerivedEdgeConfidence) *
			e.attenuationOr(defaultDerivedAttenuation)
		w := e.weightOr(defaultDerivedWeight)
		weightedSum += w * q
		weightSum += w
		inputs = append(inputs, BreakdownInput{Label: e.From, Value: q, Weight: w})
	}
	if len(inputs) == 0 || weightSum == 0 {
		return baselineFallback(node, "no derived claims")
	}

	out := node
	out.Confidence = Float(clamp01(weightedSum / weightSum))
	out.ConfidenceBreakdown = &ConfidenceBreakdown{Formula: FormulaWeightedMean, Inputs: inputs}
	return out
}

func decisionConfidence(node EvidenceNode, incoming []EvidenceEdge, resolve Resolver) EvidenceNode {
	var inputs []BreakdownInput
	survival := 1.0
	hasImpact := false
	for _, e := range incoming {
		if !isImpactEdge(e.Type) {
			continue
		}
		hasImpact = true
		impact := EffectiveImpact(e, resolveOr(resolve, e.From))
		if impact < 0 {
			impact = 0
		}
		survival *= 1 - impact
		inputs = append(inputs, BreakdownInput{Label: e.From, Value: impact, Weight: e.weightOr(defaultImpactWeight)})
	}
	if !hasImpact {
		return baselineFallback(node, "no incoming influences")
	}
	impactValue := 1 - survival

	coverage := requiredCoverage(node, resolve)
	factor := minCoverageFactor + (1-minCoverageFactor)*coverage

	out := node
	out.Confidence = Float(clamp01(impactValue * factor))
	breakdown := &ConfidenceBreakdown{Formula: FormulaNoisyORCoverage, Inputs: inputs}
	if factor < 1 {
		breakdown.Penalties = []BreakdownPenalty{{Label: "coverage", Value: factor}}
	}
	out.ConfidenceBreakdown = breakdown
	return out
}

// requiredCoverage is the fraction of a decision's required constraints
// that resolve to a numeric confidence. No required list means full
// coverage.
func requiredCoverage(node EvidenceNode, resolve Resolver) float64 {
	if node.Metadata == nil || len(node.Metadata.RequiredConstraintIDs) == 0 {
		return 1
	}
	required := node.Metadata.RequiredConstraintIDs
	resolved := 0
	for _, id := range required {
		if _, ok := resolve(id); ok {
			resolved++
		}
	}
	return float64(resolved) / float64(len(required))
}

// isImpactEdge reports whether the edge type feeds decision scoring.
func isImpactEdge(t EdgeType) bool {
	return t == EdgeInfluences || t == EdgeFilters || t == EdgeScores
}

// baselineFallback keeps the node's existing confidence (else prior,
// else default) and records why no combination rule applied.
func baselineFallback(node EvidenceNode, note string) EvidenceNode {
	value := baselineOf(node)
	out := node
	out.Confidence = Float(clamp01(value))
	out.ConfidenceBreakdown = &ConfidenceBreakdown{
		Formula: FormulaBaseline,
		Inputs:  []BreakdownInput{{Label: "baseline", Value: value}},
		Notes:   note,
	}
	return out
}

// baselineOf picks a node's existing confidence, else its prior, else
// the package default.
func baselineOf(node EvidenceNode) float64 {
	if node.Confidence != nil {
		return *node.Confidence
	}
	if node.ConfidenceBase != nil {
		return *node.ConfidenceBase
	}
	return DefaultConfidence
}

// resolveOr resolves an upstream confidence, degrading to the package
// default when the node is unknown or carries no numeric confidence.
func resolveOr(resolve Resolver, id string) float64 {
	if resolve != nil {
		if v, ok := resolve(id); ok {
			return v
		}
	}
	return DefaultConfidence
}

// clamp01 bounds v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
