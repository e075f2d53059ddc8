package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nemroff/flix-scripts/internal/flix"
)

const defaultPollInterval = time.Second

// Typed failures of the export state machine.
var (
	// ErrSubmission indicates the export request itself was rejected.
	ErrSubmission = errors.New("export submission failed")

	// ErrPoll indicates a transport failure while polling a chain. The job
	// may still be running server-side; only the watch loop died.
	ErrPoll = errors.New("export poll failed")

	// ErrResultUnresolvable indicates a completed chain whose output asset
	// or artwork rendition could not be resolved.
	ErrResultUnresolvable = errors.New("export result unresolvable")
)

// JobFailedError reports a chain that reached a terminal failure status.
type JobFailedError struct {
	ChainID int64
	Status  string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("export chain %d failed with status %q", e.ChainID, e.Status)
}

// Service is the slice of the Flix client the orchestrator drives.
// Implemented by *flix.Client; tests substitute fakes.
type Service interface {
	StartQuicktimeExport(ctx context.Context, scope flix.ExportScope, panels []flix.RevisionedPanel, includeDialogue bool) (int64, error)
	Chain(ctx context.Context, chainID int64) (*flix.Chain, error)
	Asset(ctx context.Context, assetID int64) (*flix.Asset, error)
}

var _ Service = (*flix.Client)(nil)

// ProgressFunc is invoked once per still-running poll with the number of
// polls already waited through. Returning a non-nil error aborts the watch
// loop; this is the cancellation injection point for callers that cannot
// cancel the context.
type ProgressFunc func(retry int) error

// Orchestrator drives one quicktime export at a time: submit, poll to a
// terminal status, resolve the rendered output. Submission and polling are
// strictly sequential blocking calls; run independent Orchestrators for
// concurrent jobs.
type Orchestrator struct {
	service  Service
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithPollInterval overrides the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// New builds an Orchestrator over the given service.
func New(service Service, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		service:  service,
		interval: defaultPollInterval,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run submits an export for the given panels and watches its chain until it
// completes, returning the media object id of the rendered quicktime.
//
// The loop has no retry bound of its own: a job legitimately in progress is
// polled forever. Callers wanting a deadline wrap ctx; callers wanting
// cooperative abort return an error from onProgress.
func (o *Orchestrator) Run(ctx context.Context, scope flix.ExportScope, panels []flix.RevisionedPanel, includeDialogue bool, onProgress ProgressFunc) (int64, error) {
	chainID, err := o.Submit(ctx, scope, panels, includeDialogue)
	if err != nil {
		return 0, err
	}
	return o.Watch(ctx, chainID, onProgress)
}

// Submit starts an export without watching it and returns the chain id.
// Callers that need the chain id while the job renders use Submit plus
// Watch instead of Run.
func (o *Orchestrator) Submit(ctx context.Context, scope flix.ExportScope, panels []flix.RevisionedPanel, includeDialogue bool) (int64, error) {
	chainID, err := o.service.StartQuicktimeExport(ctx, scope, panels, includeDialogue)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	return chainID, nil
}

// Watch polls one chain to a terminal status and resolves its output.
func (o *Orchestrator) Watch(ctx context.Context, chainID int64, onProgress ProgressFunc) (int64, error) {
	retry := 0
	for {
		chain, err := o.service.Chain(ctx, chainID)
		if err != nil {
			return 0, fmt.Errorf("%w: chain %d: %w", ErrPoll, chainID, err)
		}

		if chain.Done() {
			if chain.Status == flix.ChainCompleted {
				return o.resolveResult(ctx, chainID, chain.Results.AssetID)
			}
			return 0, &JobFailedError{ChainID: chainID, Status: chain.Status}
		}

		// in progress, queued, or any status this client does not know:
		// the job is still running.
		if onProgress != nil {
			if err := onProgress(retry); err != nil {
				return 0, fmt.Errorf("export aborted: %w", err)
			}
		}
		retry++
		if err := o.sleep(ctx, o.interval); err != nil {
			return 0, err
		}
	}
}

func (o *Orchestrator) resolveResult(ctx context.Context, chainID, assetID int64) (int64, error) {
	asset, err := o.service.Asset(ctx, assetID)
	if err != nil {
		return 0, fmt.Errorf("%w: chain %d asset %d: %w", ErrResultUnresolvable, chainID, assetID, err)
	}
	artwork := asset.MediaObjects["artwork"]
	if len(artwork) == 0 {
		return 0, fmt.Errorf("%w: chain %d asset %d has no artwork rendition", ErrResultUnresolvable, chainID, assetID)
	}
	return artwork[0].ID, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
