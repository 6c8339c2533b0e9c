package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// It captures all events and provides query capabilities for post-hoc
// analysis. Events are organized by scenario ID for efficient retrieval
// and filtering.
//
// Use cases:
//   - Tests that assert on the event sequence of a simulation
//   - What-if dashboards showing relaxation progress
//   - Debugging patch application
//
// Warning: all events are held in memory. For long-lived processes
// running many simulations, clear old scenarios periodically.
//
// Example:
//
//	emitter := emit.NewBufferedEmitter()
//	result, _ := evidence.SimulateScenario(baseline, scenario,
//	    evidence.WithEmitter(emitter),
//	)
//	passEvents := emitter.HistoryWithFilter(scenario.ID, emit.HistoryFilter{Msg: "pass_complete"})
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // scenarioID -> events in emission order
}

// HistoryFilter narrows a history query. Zero-valued fields match
// everything.
type HistoryFilter struct {
	// NodeID matches events concerning a specific node.
	NodeID string

	// Msg matches events with a specific message.
	Msg string

	// MinPass and MaxPass bound the pass number (inclusive); zero
	// disables the bound.
	MinPass int
	MaxPass int
}

// NewBufferedEmitter creates a new BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores the event, keyed by its scenario ID.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.ScenarioID] = append(b.events[event.ScenarioID], event)
}

// History returns all captured events for a scenario, in emission order.
// The returned slice is a copy and safe to retain.
func (b *BufferedEmitter) History(scenarioID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[scenarioID]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// HistoryWithFilter returns the scenario's events matching the filter,
// in emission order.
func (b *BufferedEmitter) HistoryWithFilter(scenarioID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, e := range b.events[scenarioID] {
		if filter.NodeID != "" && e.NodeID != filter.NodeID {
			continue
		}
		if filter.Msg != "" && e.Msg != filter.Msg {
			continue
		}
		if filter.MinPass > 0 && e.Pass < filter.MinPass {
			continue
		}
		if filter.MaxPass > 0 && e.Pass > filter.MaxPass {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Clear discards all captured events for one scenario.
func (b *BufferedEmitter) Clear(scenarioID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, scenarioID)
}

// ClearAll discards every captured event.
func (b *BufferedEmitter) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = make(map[string][]Event)
}

// Len reports the total number of captured events across scenarios.
func (b *BufferedEmitter) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, events := range b.events {
		total += len(events)
	}
	return total
}
