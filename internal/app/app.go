package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nemroff/flix-scripts/internal/config"
	"github.com/nemroff/flix-scripts/internal/flix"
	"github.com/nemroff/flix-scripts/internal/history"
	"github.com/nemroff/flix-scripts/internal/logging"
	"github.com/nemroff/flix-scripts/internal/prefs"
	"github.com/nemroff/flix-scripts/internal/state"
	"github.com/nemroff/flix-scripts/internal/ui"
)

// Options configure an export run boot.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/flix/prefs.toml

	ShowID     int64
	EpisodeID  int64
	SequenceID int64
	Revision   int // zero means latest

	IncludeDialogue bool
	Plain           bool // skip the TUI, run to completion and return
}

// Run boots an export run: config, login, history, runner, and either the
// TUI or a plain blocking run. It returns the finished run report.
func Run(ctx context.Context, opts Options) (RunReport, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return RunReport{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return RunReport{}, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return RunReport{}, err
	}

	logger, closeLog, err := logging.New(logging.Options{Level: "info", Path: cfg.LogPath()})
	if err != nil {
		return RunReport{}, err
	}
	defer func() { _ = closeLog() }()

	client, err := flix.NewClient(cfg.Hostname)
	if err != nil {
		return RunReport{}, fmt.Errorf("init flix client: %w", err)
	}
	if _, err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return RunReport{}, fmt.Errorf("login to %s: %w", cfg.Hostname, err)
	}
	defer client.Logout()

	seq, err := lookupSequence(ctx, client, opts.ShowID, opts.EpisodeID, opts.SequenceID)
	if err != nil {
		return RunReport{}, err
	}
	revision := opts.Revision
	if revision <= 0 {
		revision = seq.RevisionsCount
	}
	if revision <= 0 {
		return RunReport{}, fmt.Errorf("sequence %d has no revisions", opts.SequenceID)
	}

	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return RunReport{}, fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	runState := &state.Store{}
	runner := NewRunner(client, runState,
		WithRecorder(store),
		WithLogger(logger),
		WithPollInterval(time.Duration(cfg.PollSeconds)*time.Second),
	)

	req := RunRequest{
		Scope: flix.ExportScope{
			ShowID:     opts.ShowID,
			EpisodeID:  opts.EpisodeID,
			SequenceID: opts.SequenceID,
			Revision:   revision,
		},
		SequenceName:    seq.TrackingCode,
		IncludeDialogue: opts.IncludeDialogue,
	}
	logger.Info("export run starting",
		slog.Int64("show_id", req.Scope.ShowID),
		slog.Int64("sequence_id", req.Scope.SequenceID),
		slog.Int("revision", req.Scope.Revision))

	rememberTarget(opts.PrefsPath, opts.ShowID, opts.SequenceID)

	if opts.Plain {
		return runner.Run(ctx, req)
	}
	return runWithUI(ctx, runner, runState, req, prefs.Load(opts.PrefsPath).Theme, opts.PrefsPath, cfg.Hostname)
}

// runWithUI drives the runner in the background while the TUI owns the
// terminal. The UI exits when the user quits; a finished run keeps its
// summary on screen until then.
func runWithUI(ctx context.Context, runner *Runner, runState *state.Store, req RunRequest, theme, prefsPath, hostname string) (RunReport, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		report RunReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := runner.Run(runCtx, req)
		done <- result{report, err}
	}()

	uiErr := ui.Run(runCtx, ui.Options{
		Store:        runState,
		ThemeName:    theme,
		PrefsPath:    prefsPath,
		Hostname:     hostname,
		RefreshEvery: 500 * time.Millisecond,
	})
	cancel()

	res := <-done
	if res.err != nil && !isCanceled(res.err) {
		return res.report, res.err
	}
	return res.report, uiErr
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// lookupSequence finds the target sequence so the run can be labeled and
// the latest revision resolved.
func lookupSequence(ctx context.Context, client *flix.Client, showID, episodeID, sequenceID int64) (flix.Sequence, error) {
	sequences, err := client.Sequences(ctx, showID, episodeID)
	if err != nil {
		return flix.Sequence{}, fmt.Errorf("list sequences: %w", err)
	}
	for _, seq := range sequences {
		if seq.ID == sequenceID {
			return seq, nil
		}
	}
	return flix.Sequence{}, fmt.Errorf("sequence %d not found in show %d", sequenceID, showID)
}

// rememberTarget persists the last export target. Failures are ignored;
// preferences are a convenience.
func rememberTarget(prefsPath string, showID, sequenceID int64) {
	p := prefs.Load(prefsPath)
	p.LastShowID = showID
	p.LastSequenceID = sequenceID
	_ = prefs.Save(prefsPath, p)
}
