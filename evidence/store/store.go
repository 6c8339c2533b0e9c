// Package store provides persistence for named scenarios and their
// simulation runs.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested scenario or run does not exist.
var ErrNotFound = errors.New("not found")

// RunRecord is one recorded simulation of an archived scenario.
type RunRecord[D any] struct {
	// RunID uniquely identifies this run.
	RunID string `json:"runId"`

	// ScenarioID names the scenario that was simulated.
	ScenarioID string `json:"scenarioId"`

	// CreatedAt is when the run completed (UTC).
	CreatedAt time.Time `json:"createdAt"`

	// Diff is the simulation's diff payload.
	Diff D `json:"diff"`
}

// Archive persists named scenarios and the diffs of their simulation
// runs.
//
// It enables:
//   - Saving what-if scenarios for later replay
//   - Recording each run's diff for audit and comparison
//   - Re-running archived scenarios against a refreshed baseline
//
// Implementations can use:
//   - In-memory storage (for testing, see memory.go)
//   - SQLite (single-file local persistence, see sqlite.go)
//   - MySQL/MariaDB (shared production persistence, see mysql.go)
//
// Note: the archive stores scenarios and run records, never evidence
// graphs themselves; graphs remain the caller's input.
//
// Type parameters: S is the scenario type, D is the diff type. Both
// must be JSON-serializable.
type Archive[S, D any] interface {
	// SaveScenario persists a scenario under the given ID, overwriting
	// any existing scenario with that ID.
	SaveScenario(ctx context.Context, id string, scenario S) error

	// LoadScenario retrieves a scenario by ID.
	// Returns ErrNotFound if the ID doesn't exist.
	LoadScenario(ctx context.Context, id string) (S, error)

	// ListScenarioIDs returns the IDs of all archived scenarios in
	// ascending order.
	ListScenarioIDs(ctx context.Context) ([]string, error)

	// SaveRun records one simulation run of an archived scenario.
	SaveRun(ctx context.Context, run RunRecord[D]) error

	// LoadLatestRun retrieves the most recent run of a scenario.
	// Returns ErrNotFound if the scenario has no recorded runs.
	LoadLatestRun(ctx context.Context, scenarioID string) (RunRecord[D], error)

	// ListRuns returns all recorded runs of a scenario, oldest first.
	// An empty list is not an error.
	ListRuns(ctx context.Context, scenarioID string) ([]RunRecord[D], error)
}
