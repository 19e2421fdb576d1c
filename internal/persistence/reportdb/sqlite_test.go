package reportdb_test

import (
	"path/filepath"
	"strings"
	"testing"

	"voxelpilot.ai/internal/persistence/reportdb"
	"voxelpilot.ai/internal/pilot"
)

func openTemp(t *testing.T) *reportdb.DB {
	t.Helper()
	db, err := reportdb.Open(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTemp(t)

	id := db.StartRun("navtest")
	if id == "" {
		t.Fatalf("empty run id")
	}
	db.FinishRun(id, map[string]any{"arrived": 3, "legs": 4})
	db.Flush()

	summary, err := db.RunSummary(id)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(summary, `"arrived":3`) {
		t.Fatalf("summary = %q", summary)
	}
}

func TestPlacementCounts(t *testing.T) {
	db := openTemp(t)
	id := db.StartRun("builder-wall")

	outcomes := []pilot.Outcome{
		pilot.OutcomeSuccess, pilot.OutcomeSuccess, pilot.OutcomeSuccess,
		pilot.OutcomeWrongFace,
		pilot.OutcomeTimeout,
	}
	for i, o := range outcomes {
		db.AddPlacement(id, pilot.Placement{
			Outcome: o,
			Target:  [3]int{10, 65, i},
			Aim:     pilot.Result{Converged: true, Attempts: 1, Residual: 0.2},
		})
	}
	db.Flush()

	counts, err := db.CountPlacements(id)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["success"] != 3 || counts["wrong-face"] != 1 || counts["timeout"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestNavLegsUpsert(t *testing.T) {
	db := openTemp(t)
	id := db.StartRun("navtest")

	db.AddNavLeg(id, 0, 10, 0, pilot.NavResult{Arrived: false, FinalError: 4.2})
	// Re-recording the same leg replaces it.
	db.AddNavLeg(id, 0, 10, 0, pilot.NavResult{Arrived: true, FinalError: 0.4, Corrections: 3, PathLength: 10.2, Efficiency: 0.98})
	db.Flush()

	// Reopening sees the persisted row.
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestWritesAfterCloseAreDropped(t *testing.T) {
	db := openTemp(t)
	id := db.StartRun("aimtest")
	db.Flush()
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Must not panic on the closed channel.
	db.AddPlacement(id, pilot.Placement{Outcome: pilot.OutcomeSuccess})
	db.FinishRun(id, nil)
	db.Flush()
}
