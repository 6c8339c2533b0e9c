package evidence

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/evidencegraph-go/evidence/store"
)

func TestArchiveAndReplayScenario(t *testing.T) {
	ctx := context.Background()
	archive := store.NewMemArchive[Scenario, SimulationDiff]()
	baseline := simulationFixture()

	scenario := Scenario{
		ID:   "archived-1",
		Name: "Constraint verified",
		Patches: []ScenarioPatch{
			{NodeID: "constraint-x", Mode: PatchOverrideEvidence},
		},
	}
	if err := ArchiveScenario(ctx, archive, scenario); err != nil {
		t.Fatalf("ArchiveScenario failed: %v", err)
	}

	result, err := ReplayScenario(ctx, archive, baseline, "archived-1")
	if err != nil {
		t.Fatalf("ReplayScenario failed: %v", err)
	}
	node, _ := result.Overlay.Node("constraint-x")
	wantClose(t, confOf(t, node), 0.98)

	run, err := archive.LoadLatestRun(ctx, "archived-1")
	if err != nil {
		t.Fatalf("LoadLatestRun failed: %v", err)
	}
	if run.RunID == "" {
		t.Error("expected a generated run ID")
	}
	if run.ScenarioID != "archived-1" {
		t.Errorf("expected scenario ID 'archived-1', got %q", run.ScenarioID)
	}
	if run.Diff.Passes != result.Diff.Passes {
		t.Errorf("recorded diff diverges: %d vs %d passes", run.Diff.Passes, result.Diff.Passes)
	}

	// Each replay appends a run.
	if _, err := ReplayScenario(ctx, archive, baseline, "archived-1"); err != nil {
		t.Fatalf("second replay failed: %v", err)
	}
	runs, err := archive.ListRuns(ctx, "archived-1")
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 recorded runs, got %d", len(runs))
	}
}

func TestReplayScenario_NotFound(t *testing.T) {
	archive := store.NewMemArchive[Scenario, SimulationDiff]()
	_, err := ReplayScenario(context.Background(), archive, simulationFixture(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
}

func TestReplayScenario_InvalidOption(t *testing.T) {
	ctx := context.Background()
	archive := store.NewMemArchive[Scenario, SimulationDiff]()
	scenario := Scenario{ID: "opt-check"}
	if err := ArchiveScenario(ctx, archive, scenario); err != nil {
		t.Fatalf("ArchiveScenario failed: %v", err)
	}

	_, err := ReplayScenario(ctx, archive, simulationFixture(), "opt-check", WithMaxPasses(0))
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}

	// A failed replay must not record a run.
	runs, err := archive.ListRuns(ctx, "opt-check")
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no recorded runs, got %d", len(runs))
	}
}
