package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/soundscope/internal/shared"
)

func newTestGate(tracker *Tracker, loading func() bool) *Gate {
	g := NewGate(tracker, loading, nil)
	g.ShowTimeout = 60 * time.Millisecond
	g.HideGrace = 20 * time.Millisecond
	return g
}

func TestGate(t *testing.T) {
	t.Run("hidden while idle", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		g.Evaluate()
		if g.Visible() {
			t.Error("expected hidden at idle")
		}
	})

	t.Run("shows for partial progress", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		tr.SetStage(StageOAuth)
		g.Evaluate()
		if !g.Visible() {
			t.Error("expected visible at pct 10")
		}
	})

	t.Run("shows while the session is loading at pct 0", func(t *testing.T) {
		tr := NewTracker()
		loading := true
		g := newTestGate(tr, func() bool { return loading })

		g.Evaluate()
		if !g.Visible() {
			t.Error("expected visible while session loads")
		}

		loading = false
		g.Evaluate()
		if g.Visible() {
			t.Error("expected hidden once loading ends at pct 0")
		}
	})

	t.Run("completion hides after the grace delay", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		tr.SetStage(StageLibrary)
		g.Evaluate()
		if !g.Visible() {
			t.Fatal("expected visible mid-cycle")
		}

		tr.Bump(100)
		g.Evaluate()
		if !g.Visible() {
			t.Error("expected still visible during the grace window")
		}

		time.Sleep(50 * time.Millisecond)
		if g.Visible() {
			t.Error("expected hidden after the grace delay")
		}
	})

	t.Run("incomplete hide skips the grace delay", func(t *testing.T) {
		tr := NewTracker()
		loading := true
		g := newTestGate(tr, func() bool { return loading })

		g.Evaluate()
		if !g.Visible() {
			t.Fatal("expected visible")
		}

		loading = false
		g.Evaluate()
		if g.Visible() {
			t.Error("expected immediate hide when the cycle is not done")
		}
	})

	t.Run("timeout hides once and raises a loading error", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		tr.SetStage(StageOAuth)
		g.Evaluate()
		if !g.Visible() {
			t.Fatal("expected visible")
		}

		time.Sleep(100 * time.Millisecond)
		if g.Visible() {
			t.Error("expected hidden after the show timeout")
		}
		if !errors.Is(tr.Snapshot().Err, shared.ErrLoadingTimeout) {
			t.Errorf("expected loading timeout error, got %v", tr.Snapshot().Err)
		}
	})

	t.Run("bumps after a timeout do not re-show", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		tr.SetStage(StageOAuth)
		g.Evaluate()

		time.Sleep(100 * time.Millisecond)

		// SetError moved the stage to idle but pct is still 10; a bump keeps
		// the tracker in the visible band yet the latch holds.
		tr.Bump(5)
		g.Evaluate()
		if g.Visible() {
			t.Error("expected timeout suppression to hold")
		}
	})

	t.Run("a fresh cycle lifts the timeout suppression", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		tr.SetStage(StageOAuth)
		g.Evaluate()
		time.Sleep(100 * time.Millisecond)

		tr.Reset()
		g.Evaluate()

		tr.SetStage(StageOAuth)
		g.Evaluate()
		if !g.Visible() {
			t.Error("expected visible again after a reset")
		}
	})

	t.Run("completion cancels the timeout", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		tr.SetStage(StageLibrary)
		g.Evaluate()
		tr.Bump(100)
		g.Evaluate()

		time.Sleep(100 * time.Millisecond)
		if err := tr.Snapshot().Err; err != nil {
			t.Errorf("expected no timeout error after completion, got %v", err)
		}
	})

	t.Run("ForceHide is immediate", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		tr.SetStage(StageProfile)
		g.Evaluate()
		if !g.Visible() {
			t.Fatal("expected visible")
		}

		g.ForceHide()
		if g.Visible() {
			t.Error("expected hidden immediately")
		}
	})

	t.Run("onChange observes transitions", func(t *testing.T) {
		tr := NewTracker()
		g := newTestGate(tr, nil)

		var transitions []bool
		g.SetOnChange(func(visible bool) {
			transitions = append(transitions, visible)
		})

		tr.SetStage(StageOAuth)
		g.Evaluate()
		g.Evaluate() // no transition, no callback
		g.ForceHide()

		if len(transitions) != 2 || !transitions[0] || transitions[1] {
			t.Errorf("unexpected transitions: %v", transitions)
		}
	})
}
