package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nemroff/flix-scripts/internal/export"
	"github.com/nemroff/flix-scripts/internal/flix"
	"github.com/nemroff/flix-scripts/internal/history"
	"github.com/nemroff/flix-scripts/internal/state"
	"github.com/nemroff/flix-scripts/internal/timeline"
)

// Backend is the slice of the Flix client the runner drives.
// Implemented by *flix.Client; tests substitute fakes.
type Backend interface {
	SequenceRevision(ctx context.Context, showID, sequenceID int64, revision int) (*flix.SequenceRevision, error)
	Panels(ctx context.Context, showID, sequenceID int64, revision int) ([]flix.Panel, error)
	StartQuicktimeExport(ctx context.Context, scope flix.ExportScope, panels []flix.RevisionedPanel, includeDialogue bool) (int64, error)
	Chain(ctx context.Context, chainID int64) (*flix.Chain, error)
	Asset(ctx context.Context, assetID int64) (*flix.Asset, error)
}

var _ Backend = (*flix.Client)(nil)

// Recorder persists run history. Implemented by *history.Store.
type Recorder interface {
	BeginRun(ctx context.Context, run history.Run) (string, error)
	RecordShot(ctx context.Context, runID string, shot history.ShotResult) error
	FinishRun(ctx context.Context, runID, status string) error
}

var _ Recorder = (*history.Store)(nil)

// RunRequest describes one export run over a sequence revision.
type RunRequest struct {
	Scope           flix.ExportScope
	SequenceName    string
	IncludeDialogue bool
}

// ShotOutcome is the result of one shot export within a run.
type ShotOutcome struct {
	Name          string
	PanelCount    int
	ChainID       int64
	MediaObjectID int64
	Err           error
}

// RunReport summarizes a finished run.
type RunReport struct {
	RunID string
	Shots []ShotOutcome
}

// Failed reports how many shots ended in failure.
func (r RunReport) Failed() int {
	n := 0
	for _, shot := range r.Shots {
		if shot.Err != nil {
			n++
		}
	}
	return n
}

// Runner executes export runs: it splits a sequence revision into shots by
// its markers and drives one quicktime export per shot, sequentially.
type Runner struct {
	backend  Backend
	orch     *export.Orchestrator
	store    *state.Store
	recorder Recorder
	logger   *slog.Logger
}

// RunnerOption tweaks runner construction.
type RunnerOption func(*Runner)

// WithRecorder attaches a history recorder. Recording failures are logged,
// never fatal to the run.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPollInterval overrides the chain poll cadence.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.orch = export.New(r.backend, export.WithPollInterval(d))
		}
	}
}

// NewRunner builds a Runner over the given backend, publishing progress to
// the given store.
func NewRunner(backend Backend, store *state.Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		backend: backend,
		orch:    export.New(backend),
		store:   store,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches the revision timeline, groups panels into shots, and exports
// each shot in order. Per-shot failures are recorded and the run continues;
// only timeline fetch failures and context cancellation abort the run.
func (r *Runner) Run(ctx context.Context, req RunRequest) (RunReport, error) {
	groups, err := r.shotGroups(ctx, req)
	if err != nil {
		r.store.Fail(err)
		return RunReport{}, err
	}
	if len(groups) == 0 {
		err := fmt.Errorf("revision %d of sequence %d has no panels to export", req.Scope.Revision, req.Scope.SequenceID)
		r.store.Fail(err)
		return RunReport{}, err
	}

	shots := make([]state.ShotStatus, len(groups))
	for i, g := range groups {
		shots[i] = state.ShotStatus{Name: g.Name, PanelCount: g.PanelCount(), Phase: state.PhasePending}
	}
	r.store.Begin(req.SequenceName, int64(req.Scope.Revision), shots)

	report := RunReport{RunID: r.beginHistory(ctx, req)}

	for i, g := range groups {
		outcome := r.exportShot(ctx, req, i, g)
		report.Shots = append(report.Shots, outcome)
		r.recordShot(context.WithoutCancel(ctx), report.RunID, g, outcome)

		if ctx.Err() != nil {
			r.store.Fail(ctx.Err())
			r.finishHistory(context.WithoutCancel(ctx), report.RunID, history.RunStatusFailed)
			return report, ctx.Err()
		}
	}

	r.store.Finish()
	status := history.RunStatusCompleted
	if report.Failed() > 0 {
		status = history.RunStatusFailed
	}
	r.finishHistory(ctx, report.RunID, status)
	return report, nil
}

// shotGroups loads the revision timeline and splits its panels by marker.
// A revision without markers exports as a single group covering the whole
// sequence.
func (r *Runner) shotGroups(ctx context.Context, req RunRequest) ([]timeline.ShotGroup, error) {
	rev, err := r.backend.SequenceRevision(ctx, req.Scope.ShowID, req.Scope.SequenceID, req.Scope.Revision)
	if err != nil {
		return nil, fmt.Errorf("fetch sequence revision: %w", err)
	}
	panels, err := r.backend.Panels(ctx, req.Scope.ShowID, req.Scope.SequenceID, req.Scope.Revision)
	if err != nil {
		return nil, fmt.Errorf("fetch panels: %w", err)
	}

	markers := timeline.MarkersFrom(rev)
	if len(markers) == 0 {
		if len(panels) == 0 {
			return nil, nil
		}
		name := req.SequenceName
		if name == "" {
			name = fmt.Sprintf("sequence %d", req.Scope.SequenceID)
		}
		group := timeline.ShotGroup{Name: name}
		for pos, p := range panels {
			group.Panels = append(group.Panels, timeline.FormatPanelForRevision(p, pos))
		}
		return []timeline.ShotGroup{group}, nil
	}
	return timeline.AssignPanelsToMarkers(markers, panels), nil
}

func (r *Runner) exportShot(ctx context.Context, req RunRequest, index int, g timeline.ShotGroup) ShotOutcome {
	outcome := ShotOutcome{Name: g.Name, PanelCount: g.PanelCount()}
	shot := state.ShotStatus{Name: g.Name, PanelCount: outcome.PanelCount, Phase: state.PhaseSubmitting}
	r.store.UpdateShot(index, shot)
	r.logger.Info("submitting shot export", slog.String("shot", g.Name), slog.Int("panels", outcome.PanelCount))

	chainID, err := r.orch.Submit(ctx, req.Scope, g.Panels, req.IncludeDialogue)
	if err != nil {
		return r.failShot(index, shot, outcome, err)
	}
	outcome.ChainID = chainID
	shot.ChainID = chainID
	shot.Phase = state.PhaseRendering
	r.store.UpdateShot(index, shot)

	mediaObjectID, err := r.orch.Watch(ctx, chainID, func(retry int) error {
		shot.Retries = retry + 1
		r.store.UpdateShot(index, shot)
		return nil
	})
	if err != nil {
		return r.failShot(index, shot, outcome, err)
	}

	outcome.MediaObjectID = mediaObjectID
	shot.MediaObjectID = mediaObjectID
	shot.Phase = state.PhaseCompleted
	r.store.UpdateShot(index, shot)
	r.logger.Info("shot export completed",
		slog.String("shot", g.Name),
		slog.Int64("chain_id", chainID),
		slog.Int64("media_object_id", mediaObjectID))
	return outcome
}

func (r *Runner) failShot(index int, shot state.ShotStatus, outcome ShotOutcome, err error) ShotOutcome {
	outcome.Err = err
	shot.Phase = state.PhaseFailed
	shot.Err = err
	r.store.UpdateShot(index, shot)
	r.logger.Error("shot export failed", slog.String("shot", shot.Name), slog.String("error", err.Error()))
	return outcome
}

func (r *Runner) beginHistory(ctx context.Context, req RunRequest) string {
	if r.recorder == nil {
		return ""
	}
	runID, err := r.recorder.BeginRun(ctx, history.Run{
		ShowID:       req.Scope.ShowID,
		EpisodeID:    req.Scope.EpisodeID,
		SequenceID:   req.Scope.SequenceID,
		Revision:     int64(req.Scope.Revision),
		SequenceName: req.SequenceName,
	})
	if err != nil {
		r.logger.Warn("history begin failed", slog.String("error", err.Error()))
		return ""
	}
	return runID
}

func (r *Runner) recordShot(ctx context.Context, runID string, g timeline.ShotGroup, outcome ShotOutcome) {
	if r.recorder == nil || runID == "" {
		return
	}
	result := history.ShotResult{
		Name:          g.Name,
		PanelCount:    outcome.PanelCount,
		ChainID:       outcome.ChainID,
		MediaObjectID: outcome.MediaObjectID,
		Status:        string(state.PhaseCompleted),
	}
	if outcome.Err != nil {
		result.Status = string(state.PhaseFailed)
		result.Error = outcome.Err.Error()
	}
	if err := r.recorder.RecordShot(ctx, runID, result); err != nil {
		r.logger.Warn("history record failed", slog.String("shot", g.Name), slog.String("error", err.Error()))
	}
}

func (r *Runner) finishHistory(ctx context.Context, runID, status string) {
	if r.recorder == nil || runID == "" {
		return
	}
	if err := r.recorder.FinishRun(ctx, runID, status); err != nil {
		r.logger.Warn("history finish failed", slog.String("error", err.Error()))
	}
}
