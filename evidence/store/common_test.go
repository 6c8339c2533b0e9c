package store

import (
	"context"
	"testing"
	"time"
)

// testScenario and testDiff stand in for the engine's scenario and diff
// types; the archive only requires JSON-serializable payloads.
type testScenario struct {
	ID      string `json:"id"`
	Note    string `json:"note"`
	Patches int    `json:"patches"`
}

type testDiff struct {
	ChangedNodes int  `json:"changedNodes"`
	Passes       int  `json:"passes"`
	Converged    bool `json:"converged"`
}

// runArchiveContractTests exercises the Archive behavior every backend
// must share.
func runArchiveContractTests(t *testing.T, archive Archive[testScenario, testDiff]) {
	ctx := context.Background()

	t.Run("save and load scenario", func(t *testing.T) {
		want := testScenario{ID: "s1", Note: "first", Patches: 2}
		if err := archive.SaveScenario(ctx, "s1", want); err != nil {
			t.Fatalf("SaveScenario failed: %v", err)
		}
		got, err := archive.LoadScenario(ctx, "s1")
		if err != nil {
			t.Fatalf("LoadScenario failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("save overwrites", func(t *testing.T) {
		_ = archive.SaveScenario(ctx, "s1", testScenario{ID: "s1", Note: "first"})
		if err := archive.SaveScenario(ctx, "s1", testScenario{ID: "s1", Note: "second"}); err != nil {
			t.Fatalf("SaveScenario failed: %v", err)
		}
		got, err := archive.LoadScenario(ctx, "s1")
		if err != nil {
			t.Fatalf("LoadScenario failed: %v", err)
		}
		if got.Note != "second" {
			t.Errorf("expected overwritten note 'second', got %q", got.Note)
		}
	})

	t.Run("load missing scenario", func(t *testing.T) {
		_, err := archive.LoadScenario(ctx, "does-not-exist")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list scenario IDs sorted", func(t *testing.T) {
		_ = archive.SaveScenario(ctx, "s3", testScenario{ID: "s3"})
		_ = archive.SaveScenario(ctx, "s2", testScenario{ID: "s2"})

		ids, err := archive.ListScenarioIDs(ctx)
		if err != nil {
			t.Fatalf("ListScenarioIDs failed: %v", err)
		}
		for i := 1; i < len(ids); i++ {
			if ids[i-1] >= ids[i] {
				t.Errorf("IDs not in ascending order: %v", ids)
			}
		}
	})

	t.Run("runs round trip", func(t *testing.T) {
		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		runs := []RunRecord[testDiff]{
			{RunID: "r1", ScenarioID: "s1", CreatedAt: base, Diff: testDiff{ChangedNodes: 1, Passes: 2, Converged: true}},
			{RunID: "r2", ScenarioID: "s1", CreatedAt: base.Add(time.Minute), Diff: testDiff{ChangedNodes: 4, Passes: 5}},
		}
		for _, run := range runs {
			if err := archive.SaveRun(ctx, run); err != nil {
				t.Fatalf("SaveRun failed: %v", err)
			}
		}

		latest, err := archive.LoadLatestRun(ctx, "s1")
		if err != nil {
			t.Fatalf("LoadLatestRun failed: %v", err)
		}
		if latest.RunID != "r2" {
			t.Errorf("expected latest run 'r2', got %q", latest.RunID)
		}
		if latest.Diff.ChangedNodes != 4 {
			t.Errorf("expected 4 changed nodes, got %d", latest.Diff.ChangedNodes)
		}

		listed, err := archive.ListRuns(ctx, "s1")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(listed) != 2 || listed[0].RunID != "r1" || listed[1].RunID != "r2" {
			t.Errorf("expected runs [r1 r2], got %+v", listed)
		}
	})

	t.Run("latest run of unknown scenario", func(t *testing.T) {
		_, err := archive.LoadLatestRun(ctx, "never-ran")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list runs of unknown scenario", func(t *testing.T) {
		runs, err := archive.ListRuns(ctx, "never-ran")
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}
