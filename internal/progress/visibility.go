package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscope/internal/shared"
)

const (
	// DefaultShowTimeout force-hides a cycle that never completes.
	DefaultShowTimeout = 30 * time.Second
	// DefaultHideGrace delays the hide after completion to avoid a
	// final-frame flash.
	DefaultHideGrace = 500 * time.Millisecond
)

// Gate derives whether the full-screen loading overlay should be visible from
// combined tracker and session state, and enforces the show timeout.
//
// shouldShow = (0 < pct < 100) OR sessionIsLoading. The timeout timer is
// armed on every show transition and cancelled on hide; it is the only
// cancellation mechanism in this core, and individual Bump calls never reset
// it.
type Gate struct {
	tracker        *Tracker
	sessionLoading func() bool
	logger         *log.Logger

	// ShowTimeout and HideGrace are fields so tests can shrink them.
	ShowTimeout time.Duration
	HideGrace   time.Duration

	mu           sync.Mutex
	visible      bool
	timedOut     bool
	onChange     func(visible bool)
	timeoutTimer *time.Timer
	graceTimer   *time.Timer
}

// NewGate creates a gate over the tracker. sessionLoading reports the session
// manager's loading flag; nil means never loading.
func NewGate(tracker *Tracker, sessionLoading func() bool, logger *log.Logger) *Gate {
	if sessionLoading == nil {
		sessionLoading = func() bool { return false }
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Gate{
		tracker:        tracker,
		sessionLoading: sessionLoading,
		logger:         logger,
		ShowTimeout:    DefaultShowTimeout,
		HideGrace:      DefaultHideGrace,
	}
}

// SetOnChange registers the visibility-transition callback. Invoked without
// the gate lock held.
func (g *Gate) SetOnChange(fn func(visible bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = fn
}

// Visible reports the current overlay visibility.
func (g *Gate) Visible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible
}

// Evaluate recomputes visibility. Callers invoke it on every tracker or
// session state change; transitions arm/cancel the timeout and grace timers.
func (g *Gate) Evaluate() {
	snap := g.tracker.Snapshot()
	loading := g.sessionLoading()

	g.mu.Lock()

	// a fresh cycle lifts the timeout suppression
	if snap.Stage == StageIdle && snap.Pct == 0 {
		g.timedOut = false
	}

	want := (snap.Pct > 0 && snap.Pct < 100) || loading
	if g.timedOut {
		want = false
	}

	var emit func(bool)
	var emitVal bool

	switch {
	case want && !g.visible:
		g.visible = true
		g.cancelGraceLocked()
		g.armTimeoutLocked()
		emit, emitVal = g.onChange, true
	case !want && g.visible:
		if snap.Done() {
			g.scheduleGraceHideLocked()
		} else {
			g.hideLocked()
			emit, emitVal = g.onChange, false
		}
	}

	g.mu.Unlock()

	if emit != nil {
		emit(emitVal)
	}
}

// ForceHide hides the overlay immediately, without the grace delay. Used when
// a non-recoverable session error occurs outside the authenticated area.
func (g *Gate) ForceHide() {
	g.mu.Lock()
	wasVisible := g.visible
	g.hideLocked()
	fn := g.onChange
	g.mu.Unlock()

	if wasVisible && fn != nil {
		fn(false)
	}
}

// onTimeout fires when a visible cycle has not completed within ShowTimeout.
// The overlay is hidden exactly once and a loading-specific error is raised;
// later bumps do not retroactively re-show it.
func (g *Gate) onTimeout() {
	g.mu.Lock()
	if !g.visible || g.tracker.Snapshot().Done() {
		g.mu.Unlock()
		return
	}
	g.timedOut = true
	g.hideLocked()
	fn := g.onChange
	g.mu.Unlock()

	g.logger.Warn("loading cycle timed out", "timeout", g.ShowTimeout)
	g.tracker.SetError(fmt.Errorf("%w: taking longer than expected", shared.ErrLoadingTimeout))

	if fn != nil {
		fn(false)
	}
}

func (g *Gate) armTimeoutLocked() {
	if g.timeoutTimer != nil {
		g.timeoutTimer.Stop()
	}
	g.timeoutTimer = time.AfterFunc(g.ShowTimeout, g.onTimeout)
}

func (g *Gate) scheduleGraceHideLocked() {
	if g.graceTimer != nil {
		return
	}
	g.graceTimer = time.AfterFunc(g.HideGrace, func() {
		g.mu.Lock()
		g.graceTimer = nil
		wasVisible := g.visible
		g.hideLocked()
		fn := g.onChange
		g.mu.Unlock()

		if wasVisible && fn != nil {
			fn(false)
		}
	})
}

func (g *Gate) cancelGraceLocked() {
	if g.graceTimer != nil {
		g.graceTimer.Stop()
		g.graceTimer = nil
	}
}

// hideLocked clears visibility and cancels the timeout timer. Callers hold
// the lock and handle the onChange emission themselves.
func (g *Gate) hideLocked() {
	g.visible = false
	if g.timeoutTimer != nil {
		g.timeoutTimer.Stop()
		g.timeoutTimer = nil
	}
}
