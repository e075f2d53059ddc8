package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.BeginRun(ctx, Run{
		ShowID:       1,
		EpisodeID:    2,
		SequenceID:   3,
		Revision:     4,
		SequenceName: "ep01_seq10",
	})
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if id == "" {
		t.Fatal("BeginRun() returned empty id")
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() = %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != id || got.Status != RunStatusRunning || got.HasFinished {
		t.Fatalf("run = %+v, want running run %s", got, id)
	}
	if got.SequenceName != "ep01_seq10" || got.Revision != 4 {
		t.Fatalf("run fields = %+v", got)
	}

	if err := store.FinishRun(ctx, id, RunStatusCompleted); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}
	runs, err = store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if runs[0].Status != RunStatusCompleted || !runs[0].HasFinished {
		t.Fatalf("run after finish = %+v, want completed", runs[0])
	}
}

func TestStore_RecordShotUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.BeginRun(ctx, Run{ShowID: 1, SequenceID: 2, Revision: 1})
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}

	if err := store.RecordShot(ctx, id, ShotResult{Name: "sh010", PanelCount: 3, Status: "rendering"}); err != nil {
		t.Fatalf("RecordShot() error = %v", err)
	}
	if err := store.RecordShot(ctx, id, ShotResult{
		Name: "sh010", PanelCount: 3, ChainID: 42, MediaObjectID: 9001, Status: "completed",
	}); err != nil {
		t.Fatalf("RecordShot() upsert error = %v", err)
	}
	if err := store.RecordShot(ctx, id, ShotResult{Name: "sh020", Status: "failed", Error: "chain errored"}); err != nil {
		t.Fatalf("RecordShot() error = %v", err)
	}

	shots, err := store.RunShots(ctx, id)
	if err != nil {
		t.Fatalf("RunShots() error = %v", err)
	}
	if len(shots) != 2 {
		t.Fatalf("RunShots() = %d shots, want 2", len(shots))
	}
	if shots[0].Name != "sh010" || shots[0].ChainID != 42 || shots[0].MediaObjectID != 9001 || shots[0].Status != "completed" {
		t.Fatalf("sh010 = %+v, want upserted completed row", shots[0])
	}
	if shots[1].Name != "sh020" || shots[1].Error != "chain errored" {
		t.Fatalf("sh020 = %+v", shots[1])
	}
}

func TestStore_ListRunsOrderAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var last string
	for i := 0; i < 3; i++ {
		id, err := store.BeginRun(ctx, Run{ShowID: int64(i + 1), SequenceID: 1, Revision: 1})
		if err != nil {
			t.Fatalf("BeginRun() error = %v", err)
		}
		last = id
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) = %d runs, want 2", len(runs))
	}
	if runs[0].ID != last {
		t.Fatalf("newest run = %s, want %s", runs[0].ID, last)
	}
}

func TestStore_FinishUnknownRun(t *testing.T) {
	store := openTestStore(t)

	err := store.FinishRun(context.Background(), "no-such-run", RunStatusFailed)
	if err == nil {
		t.Fatal("FinishRun() error = nil, want error for unknown run")
	}
}

func TestStore_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = Open(path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("Open() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	id, err := store.BeginRun(context.Background(), Run{ShowID: 1, SequenceID: 1, Revision: 1})
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Fatalf("runs after reopen = %+v, want run %s", runs, id)
	}
}
