package state

import (
	"fmt"
	"sync"
	"time"
)

// Phase describes where a shot export currently is in its lifecycle.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseSubmitting Phase = "submitting"
	PhaseRendering  Phase = "rendering"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// ShotStatus is the per-shot progress record shown by the UI.
type ShotStatus struct {
	Name          string
	PanelCount    int
	ChainID       int64
	Phase         Phase
	Retries       int
	MediaObjectID int64
	Err           error
}

// Snapshot represents the latest run data available to the UI.
type Snapshot struct {
	SequenceName string
	Revision     int64
	Shots        []ShotStatus
	LastUpdated  time.Time
	LastError    error
	Done         bool
}

// Completed reports how many shots finished, successfully or not.
func (s Snapshot) Completed() int {
	n := 0
	for _, shot := range s.Shots {
		if shot.Phase == PhaseCompleted || shot.Phase == PhaseFailed {
			n++
		}
	}
	return n
}

// Failed reports how many shots ended in failure.
func (s Snapshot) Failed() int {
	n := 0
	for _, shot := range s.Shots {
		if shot.Phase == PhaseFailed {
			n++
		}
	}
	return n
}

// Store coordinates concurrent updates to the snapshot. The export runner
// writes, the UI refresh loop reads.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin seeds the snapshot with the shots of a new run, all pending.
func (s *Store) Begin(sequenceName string, revision int64, shots []ShotStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = Snapshot{
		SequenceName: sequenceName,
		Revision:     revision,
		Shots:        cloneShots(shots),
		LastUpdated:  time.Now(),
	}
}

// UpdateShot replaces the status of a single shot by index. Out-of-range
// indexes are ignored.
func (s *Store) UpdateShot(index int, shot ShotStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.snapshot.Shots) {
		return
	}
	s.snapshot.Shots[index] = shot
	s.snapshot.LastUpdated = time.Now()
}

// Fail records a run-level error. Per-shot data is kept so the UI can still
// show how far the run got.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
}

// Finish marks the run as done.
func (s *Store) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Done = true
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Shots = cloneShots(s.snapshot.Shots)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneShots(shots []ShotStatus) []ShotStatus {
	if len(shots) == 0 {
		return nil
	}
	dup := make([]ShotStatus, len(shots))
	copy(dup, shots)
	return dup
}
