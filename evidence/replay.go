package evidence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/evidencegraph-go/evidence/store"
)

// ScenarioArchive is the archive instantiation used by this engine:
// scenarios in, simulation diffs out.
type ScenarioArchive = store.Archive[Scenario, SimulationDiff]

// ArchiveScenario saves a scenario under its own ID for later replay.
func ArchiveScenario(ctx context.Context, archive ScenarioArchive, scenario Scenario) error {
	return archive.SaveScenario(ctx, scenario.ID, scenario)
}

// ReplayScenario loads an archived scenario, simulates it against the
// supplied baseline graph, and records the run's diff in the archive.
//
// Replaying against a refreshed baseline shows how a previously explored
// what-if holds up as the underlying evidence evolves; comparing the
// recorded diffs of successive runs shows the drift.
//
// Returns store.ErrNotFound (wrapped) when the scenario is not archived.
func ReplayScenario(ctx context.Context, archive ScenarioArchive, baseline *EvidenceGraph, scenarioID string, opts ...Option) (*SimulationResult, error) {
	scenario, err := archive.LoadScenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	result, err := SimulateScenario(baseline, scenario, opts...)
	if err != nil {
		return nil, err
	}

	run := store.RunRecord[SimulationDiff]{
		RunID:      uuid.NewString(),
		ScenarioID: scenarioID,
		CreatedAt:  time.Now().UTC(),
		Diff:       result.Diff,
	}
	if err := archive.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	return result, nil
}
