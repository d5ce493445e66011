// package progress implements the shared multi-stage loading state machine
// consumed by every screen that reports progress, and the visibility gate for
// the full-screen loading overlay.
package progress

import (
	"sync"
)

// Stage is a phase of the progressive-loading cycle.
type Stage int

const (
	StageIdle Stage = iota
	StageOAuth
	StageProfile
	StageLibrary
)

func (s Stage) String() string {
	switch s {
	case StageOAuth:
		return "oauth"
	case StageProfile:
		return "profile"
	case StageLibrary:
		return "library"
	default:
		return "idle"
	}
}

// Floor is the minimum percentage guaranteed upon entering the stage.
func (s Stage) Floor() int {
	switch s {
	case StageOAuth:
		return 10
	case StageProfile, StageLibrary:
		return 30
	default:
		return 0
	}
}

// Step maps a stage to its display step index (oauth→0, profile→1,
// library→2). Idle has no step and returns -1.
func (s Stage) Step() int {
	switch s {
	case StageOAuth:
		return 0
	case StageProfile:
		return 1
	case StageLibrary:
		return 2
	default:
		return -1
	}
}

// Snapshot is a consistent view of the tracker at one point in time.
type Snapshot struct {
	Stage Stage
	Pct   int
	Err   error
}

// Done reports whether the current cycle has completed. Reaching 100 is
// terminal for the cycle and implies "not loading".
func (s Snapshot) Done() bool { return s.Pct >= 100 }

// StepProgress computes per-step display progress: clamp(0,100, pct - step*25).
func (s Snapshot) StepProgress(step int) int {
	p := s.Pct - step*25
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Tracker is the loading-progress state machine. Created once per process;
// every consumer reads snapshots and the update channel.
//
// Mutations are serialized by the mutex, so no two stage/pct updates are ever
// applied out of order relative to each other.
type Tracker struct {
	mu      sync.Mutex
	stage   Stage
	pct     int
	err     error
	updates chan Snapshot
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{updates: make(chan Snapshot, 50)}
}

// Updates exposes change notifications. Sends never block: when the consumer
// lags, intermediate snapshots are dropped in favor of later ones.
func (t *Tracker) Updates() <-chan Snapshot {
	return t.updates
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{Stage: t.stage, Pct: t.pct, Err: t.err}
}

// SetStage transitions the cycle to stage and applies the floor rule.
//
// Entering a later (or the same) stage raises pct to at least the stage
// floor, never lowering an already-higher value. Entering an earlier stage is
// a cycle restart and adopts that stage's floor outright. Entering idle
// resets pct to 0.
func (t *Tracker) SetStage(stage Stage) {
	t.mu.Lock()

	switch {
	case stage == StageIdle:
		t.pct = 0
	case stage < t.stage && t.stage != StageIdle:
		t.pct = stage.Floor()
	case stage.Floor() > t.pct:
		t.pct = stage.Floor()
	}
	t.stage = stage

	snap := Snapshot{Stage: t.stage, Pct: t.pct, Err: t.err}
	t.mu.Unlock()
	t.notify(snap)
}

// Bump adds delta to pct, clamped to 100. Negative deltas are ignored: pct
// only decreases via an explicit idle reset.
func (t *Tracker) Bump(delta int) {
	if delta <= 0 {
		return
	}

	t.mu.Lock()
	t.pct += delta
	if t.pct > 100 {
		t.pct = 100
	}
	snap := Snapshot{Stage: t.stage, Pct: t.pct, Err: t.err}
	t.mu.Unlock()
	t.notify(snap)
}

// SetError records a loading-specific failure and clears the stage back to
// idle.
func (t *Tracker) SetError(err error) {
	t.mu.Lock()
	t.err = err
	t.stage = StageIdle
	snap := Snapshot{Stage: t.stage, Pct: t.pct, Err: t.err}
	t.mu.Unlock()
	t.notify(snap)
}

// Reset returns the tracker to idle with pct 0 and no error, beginning a
// fresh cycle.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.stage = StageIdle
	t.pct = 0
	t.err = nil
	snap := Snapshot{Stage: t.stage, Pct: t.pct}
	t.mu.Unlock()
	t.notify(snap)
}

// notify sends without blocking; a full channel drops the update.
func (t *Tracker) notify(snap Snapshot) {
	select {
	case t.updates <- snap:
	default:
	}
}
