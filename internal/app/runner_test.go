package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nemroff/flix-scripts/internal/flix"
	"github.com/nemroff/flix-scripts/internal/history"
	"github.com/nemroff/flix-scripts/internal/state"
)

type fakeBackend struct {
	revision *flix.SequenceRevision
	panels   []flix.Panel

	revisionErr error
	submitErr   error

	// statuses per chain id, consumed in order; last value repeats.
	statuses map[int64][]string
	asset    *flix.Asset

	nextChainID int64
	submitted   [][]flix.RevisionedPanel
}

func (f *fakeBackend) SequenceRevision(ctx context.Context, showID, sequenceID int64, revision int) (*flix.SequenceRevision, error) {
	if f.revisionErr != nil {
		return nil, f.revisionErr
	}
	return f.revision, nil
}

func (f *fakeBackend) Panels(ctx context.Context, showID, sequenceID int64, revision int) ([]flix.Panel, error) {
	return f.panels, nil
}

func (f *fakeBackend) StartQuicktimeExport(ctx context.Context, scope flix.ExportScope, panels []flix.RevisionedPanel, includeDialogue bool) (int64, error) {
	if f.submitErr != nil {
		return 0, f.submitErr
	}
	f.nextChainID++
	f.submitted = append(f.submitted, panels)
	return f.nextChainID, nil
}

func (f *fakeBackend) Chain(ctx context.Context, chainID int64) (*flix.Chain, error) {
	statuses := f.statuses[chainID]
	if len(statuses) == 0 {
		return &flix.Chain{ID: chainID, Status: flix.ChainCompleted, Results: flix.ChainResults{AssetID: 100 + chainID}}, nil
	}
	status := statuses[0]
	if len(statuses) > 1 {
		f.statuses[chainID] = statuses[1:]
	}
	return &flix.Chain{ID: chainID, Status: status, Results: flix.ChainResults{AssetID: 100 + chainID}}, nil
}

func (f *fakeBackend) Asset(ctx context.Context, assetID int64) (*flix.Asset, error) {
	if f.asset != nil {
		return f.asset, nil
	}
	return &flix.Asset{
		AssetID: assetID,
		MediaObjects: map[string][]flix.MediaObject{
			"artwork": {{ID: 9000 + assetID, Name: "shot.mov"}},
		},
	}, nil
}

type fakeRecorder struct {
	runID    string
	began    []history.Run
	shots    []history.ShotResult
	finished []string
}

func (f *fakeRecorder) BeginRun(ctx context.Context, run history.Run) (string, error) {
	f.began = append(f.began, run)
	f.runID = "run-1"
	return f.runID, nil
}

func (f *fakeRecorder) RecordShot(ctx context.Context, runID string, shot history.ShotResult) error {
	f.shots = append(f.shots, shot)
	return nil
}

func (f *fakeRecorder) FinishRun(ctx context.Context, runID, status string) error {
	f.finished = append(f.finished, status)
	return nil
}

func markedRevision(markers ...flix.Marker) *flix.SequenceRevision {
	return &flix.SequenceRevision{
		Revision: 4,
		MetaData: flix.RevisionMetadata{
			Annotations:  []json.RawMessage{},
			AudioTimings: []json.RawMessage{},
			Highlights:   []json.RawMessage{},
			Markers:      markers,
		},
	}
}

func unitPanels(n int) []flix.Panel {
	panels := make([]flix.Panel, n)
	for i := range panels {
		panels[i] = flix.Panel{PanelID: int64(i + 1), RevisionNumber: 1, Duration: 1}
	}
	return panels
}

func testRequest() RunRequest {
	return RunRequest{
		Scope:        flix.ExportScope{ShowID: 1, SequenceID: 3, Revision: 4},
		SequenceName: "ep01_seq10",
	}
}

func TestRunner_ExportsEachShot(t *testing.T) {
	backend := &fakeBackend{
		revision: markedRevision(flix.Marker{Start: 0, Name: "sh010"}, flix.Marker{Start: 3, Name: "sh020"}),
		panels:   unitPanels(5),
		statuses: map[int64][]string{
			1: {flix.ChainInProgress, flix.ChainCompleted},
			2: {flix.ChainCompleted},
		},
	}
	recorder := &fakeRecorder{}
	store := &state.Store{}
	runner := NewRunner(backend, store,
		WithRecorder(recorder),
		WithPollInterval(time.Millisecond),
	)

	report, err := runner.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.RunID != "run-1" {
		t.Fatalf("RunID = %q, want run-1", report.RunID)
	}
	if len(report.Shots) != 2 {
		t.Fatalf("shots = %d, want 2", len(report.Shots))
	}
	first, second := report.Shots[0], report.Shots[1]
	if first.Name != "sh010" || first.PanelCount != 3 || first.ChainID != 1 || first.MediaObjectID != 9101 {
		t.Fatalf("first shot = %+v", first)
	}
	if second.Name != "sh020" || second.PanelCount != 2 || second.ChainID != 2 || second.MediaObjectID != 9102 {
		t.Fatalf("second shot = %+v", second)
	}

	if len(backend.submitted) != 2 || len(backend.submitted[0]) != 3 || len(backend.submitted[1]) != 2 {
		t.Fatalf("submitted panel sets = %v", backend.submitted)
	}
	// Pos reflects the full timeline, not shot-local indices.
	if got := backend.submitted[1][0].Pos; got != 3 {
		t.Fatalf("second shot first panel pos = %d, want 3", got)
	}

	snap := store.Snapshot()
	if !snap.Done || snap.Completed() != 2 || snap.Failed() != 0 {
		t.Fatalf("snapshot = %+v, want done with 2 completed", snap)
	}
	if snap.Shots[0].Phase != state.PhaseCompleted || snap.Shots[0].Retries != 1 {
		t.Fatalf("first shot state = %+v, want completed after 1 retry", snap.Shots[0])
	}

	if len(recorder.finished) != 1 || recorder.finished[0] != history.RunStatusCompleted {
		t.Fatalf("finished = %v, want [completed]", recorder.finished)
	}
	if len(recorder.shots) != 2 || recorder.shots[0].Status != "completed" {
		t.Fatalf("recorded shots = %+v", recorder.shots)
	}
}

func TestRunner_ShotFailureContinuesRun(t *testing.T) {
	backend := &fakeBackend{
		revision: markedRevision(flix.Marker{Start: 0, Name: "sh010"}, flix.Marker{Start: 2, Name: "sh020"}),
		panels:   unitPanels(4),
		statuses: map[int64][]string{
			1: {flix.ChainErrored},
			2: {flix.ChainCompleted},
		},
	}
	recorder := &fakeRecorder{}
	store := &state.Store{}
	runner := NewRunner(backend, store, WithRecorder(recorder), WithPollInterval(time.Millisecond))

	report, err := runner.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Failed() != 1 {
		t.Fatalf("Failed() = %d, want 1", report.Failed())
	}
	if report.Shots[0].Err == nil || report.Shots[1].Err != nil {
		t.Fatalf("shots = %+v, want first failed second ok", report.Shots)
	}

	snap := store.Snapshot()
	if snap.Shots[0].Phase != state.PhaseFailed || snap.Shots[1].Phase != state.PhaseCompleted {
		t.Fatalf("phases = %v/%v", snap.Shots[0].Phase, snap.Shots[1].Phase)
	}
	if recorder.finished[0] != history.RunStatusFailed {
		t.Fatalf("run status = %q, want failed", recorder.finished[0])
	}
	if recorder.shots[0].Error == "" {
		t.Fatal("failed shot should record its error text")
	}
}

func TestRunner_NoMarkersExportsWholeSequence(t *testing.T) {
	backend := &fakeBackend{
		revision: markedRevision(),
		panels:   unitPanels(3),
	}
	store := &state.Store{}
	runner := NewRunner(backend, store, WithPollInterval(time.Millisecond))

	report, err := runner.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Shots) != 1 {
		t.Fatalf("shots = %d, want 1", len(report.Shots))
	}
	if report.Shots[0].Name != "ep01_seq10" || report.Shots[0].PanelCount != 3 {
		t.Fatalf("shot = %+v", report.Shots[0])
	}
}

func TestRunner_RevisionFetchFailureAbortsRun(t *testing.T) {
	backend := &fakeBackend{revisionErr: errors.New("boom")}
	store := &state.Store{}
	runner := NewRunner(backend, store, WithPollInterval(time.Millisecond))

	_, err := runner.Run(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Run() error = nil, want fetch failure")
	}
	if store.Snapshot().LastError == nil {
		t.Fatal("store should carry the run-level error")
	}
}

func TestRunner_NoPanelsIsAnError(t *testing.T) {
	backend := &fakeBackend{revision: markedRevision()}
	runner := NewRunner(backend, &state.Store{})

	_, err := runner.Run(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Run() error = nil, want no-panels failure")
	}
}

func TestRunner_ContextCancellationStopsRemainingShots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	backend := &fakeBackend{
		revision: markedRevision(flix.Marker{Start: 0, Name: "sh010"}, flix.Marker{Start: 1, Name: "sh020"}),
		panels:   unitPanels(2),
		statuses: map[int64][]string{
			1: {flix.ChainInProgress}, // repeats until cancelled
		},
	}
	recorder := &fakeRecorder{}
	store := &state.Store{}
	runner := NewRunner(backend, store, WithRecorder(recorder), WithPollInterval(time.Millisecond))

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	report, err := runner.Run(ctx, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(report.Shots) != 1 {
		t.Fatalf("shots attempted = %d, want 1", len(report.Shots))
	}
	if recorder.finished[0] != history.RunStatusFailed {
		t.Fatalf("run status = %q, want failed", recorder.finished[0])
	}
}

func TestRunReport_Failed(t *testing.T) {
	report := RunReport{Shots: []ShotOutcome{
		{Name: "a"},
		{Name: "b", Err: fmt.Errorf("x")},
		{Name: "c", Err: fmt.Errorf("y")},
	}}
	if got := report.Failed(); got != 2 {
		t.Fatalf("Failed() = %d, want 2", got)
	}
}
