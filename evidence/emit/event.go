// Package emit provides pluggable observability for the evidence engine.
package emit

// Event represents an observability event emitted during confidence
// propagation or scenario simulation.
//
// Events provide insight into engine behavior:
//   - Scenario start/complete
//   - Patch application (or skipping of invalid patches)
//   - Relaxation pass completion with the pass's max confidence delta
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr or files
//   - Send to OpenTelemetry
//   - Buffer in memory for tests and dashboards
type Event struct {
	// ScenarioID identifies the simulation that emitted this event.
	// Empty for propagation-level events.
	ScenarioID string

	// Pass is the relaxation pass number (1-indexed).
	// Zero for events outside the relaxation loop.
	Pass int

	// NodeID identifies the node this event concerns.
	// Empty for scenario-level events.
	NodeID string

	// Msg is a short machine-matchable event name, e.g. "pass_complete".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "max_delta": largest confidence delta in a relaxation pass
	//   - "patches": number of patches in the scenario
	//   - "reason": why a patch was skipped
	//   - "converged": whether relaxation reached a fixed point
	Meta map[string]interface{}
}
