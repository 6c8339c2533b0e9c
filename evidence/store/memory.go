package store

import (
	"context"
	"sort"
	"sync"
)

// MemArchive is an in-memory implementation of Archive[S, D].
//
// Designed for:
//   - Testing and development
//   - Single-process tools where persistence isn't required
//
// MemArchive is thread-safe and supports concurrent access.
//
// Limitations:
//   - Data is lost when the process terminates
//   - Memory usage grows with run history
//
// For persistence use SQLiteArchive or MySQLArchive.
type MemArchive[S, D any] struct {
	mu        sync.RWMutex
	scenarios map[string]S
	runs      map[string][]RunRecord[D] // scenarioID -> runs in save order
}

// NewMemArchive creates a new in-memory archive.
//
// Example:
//
//	archive := store.NewMemArchive[evidence.Scenario, evidence.SimulationDiff]()
func NewMemArchive[S, D any]() *MemArchive[S, D] {
	return &MemArchive[S, D]{
		scenarios: make(map[string]S),
		runs:      make(map[string][]RunRecord[D]),
	}
}

// SaveScenario persists a scenario, overwriting any existing one with
// the same ID.
func (m *MemArchive[S, D]) SaveScenario(_ context.Context, id string, scenario S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[id] = scenario
	return nil
}

// LoadScenario retrieves a scenario by ID.
func (m *MemArchive[S, D]) LoadScenario(_ context.Context, id string) (S, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scenario, exists := m.scenarios[id]
	if !exists {
		var zero S
		return zero, ErrNotFound
	}
	return scenario, nil
}

// ListScenarioIDs returns archived scenario IDs in ascending order.
func (m *MemArchive[S, D]) ListScenarioIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.scenarios))
	for id := range m.scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveRun records one simulation run.
func (m *MemArchive[S, D]) SaveRun(_ context.Context, run RunRecord[D]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ScenarioID] = append(m.runs[run.ScenarioID], run)
	return nil
}

// LoadLatestRun retrieves the most recently saved run of a scenario.
func (m *MemArchive[S, D]) LoadLatestRun(_ context.Context, scenarioID string) (RunRecord[D], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := m.runs[scenarioID]
	if len(runs) == 0 {
		var zero RunRecord[D]
		return zero, ErrNotFound
	}
	return runs[len(runs)-1], nil
}

// ListRuns returns all recorded runs of a scenario, oldest first.
// The returned slice is a copy and safe to retain.
func (m *MemArchive[S, D]) ListRuns(_ context.Context, scenarioID string) ([]RunRecord[D], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := m.runs[scenarioID]
	out := make([]RunRecord[D], len(runs))
	copy(out, runs)
	return out, nil
}
