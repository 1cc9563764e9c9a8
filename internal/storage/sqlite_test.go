package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	run := Run{
		Rule:      "preset:sandpile",
		Mode:      "sync",
		Seed:      7,
		Width:     3,
		Height:    2,
		Steps:     4,
		Stable:    true,
		FinalGrid: "1 2 1\n2 3 2\n",
	}
	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	got, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	run.ID = id
	run.CreatedAt = got.CreatedAt
	if *got != run {
		t.Errorf("RunByID() = %+v, expected %+v", *got, run)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}
}

func TestRunByIDMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.RunByID(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("RunByID(missing) error = %v, expected ErrNotFound", err)
	}
}

func TestRecentRunsAndRule(t *testing.T) {
	store := openTestStore(t)

	rules := []string{"life", "sandpile", "life", "life"}
	for i, rule := range rules {
		if _, err := store.SaveRun(Run{Rule: rule, Mode: "sync", Width: 1, Height: 1, Steps: i, FinalGrid: "0\n"}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	recent, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Steps != 3 || recent[1].Steps != 2 {
		t.Errorf("RecentRuns(2) = %+v, expected the two newest", recent)
	}

	life, err := store.RunsForRule("life", 0)
	if err != nil {
		t.Fatalf("RunsForRule() failed: %v", err)
	}
	if len(life) != 3 {
		t.Errorf("RunsForRule(life) returned %d runs, expected 3", len(life))
	}

	if err := store.DeleteRuns("life"); err != nil {
		t.Fatalf("DeleteRuns() failed: %v", err)
	}
	life, _ = store.RunsForRule("life", 0)
	if len(life) != 0 {
		t.Errorf("runs left after DeleteRuns(): %d", len(life))
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)

	runs := []Run{
		{Rule: "b", Steps: 2, Stable: true},
		{Rule: "a", Steps: 4, Stable: false},
		{Rule: "a", Steps: 6, Stable: true},
	}
	for _, r := range runs {
		r.Mode, r.FinalGrid = "sync", ""
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if len(stats) != 2 || stats[0].Rule != "a" {
		t.Fatalf("Stats() = %+v", stats)
	}
	a := stats[0]
	if a.Runs != 2 || a.Stable != 1 || a.AvgSteps != 5 || a.MaxSteps != 6 {
		t.Errorf("stats for a = %+v", a)
	}
}
