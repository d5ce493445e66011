package progress

import (
	"errors"
	"testing"
)

func TestTracker(t *testing.T) {
	t.Run("starts idle at zero", func(t *testing.T) {
		tr := NewTracker()
		snap := tr.Snapshot()
		if snap.Stage != StageIdle || snap.Pct != 0 || snap.Err != nil {
			t.Errorf("unexpected initial snapshot: %+v", snap)
		}
	})

	t.Run("stage floors", func(t *testing.T) {
		tests := []struct {
			stage Stage
			floor int
		}{
			{StageOAuth, 10},
			{StageProfile, 30},
			{StageLibrary, 30},
			{StageIdle, 0},
		}

		for _, tt := range tests {
			t.Run(tt.stage.String(), func(t *testing.T) {
				tr := NewTracker()
				tr.SetStage(tt.stage)
				if got := tr.Snapshot().Pct; got != tt.floor {
					t.Errorf("entering %v: pct = %d, want %d", tt.stage, got, tt.floor)
				}
			})
		}
	})

	t.Run("forward transition never lowers pct", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageOAuth)
		tr.Bump(85) // 95

		tr.SetStage(StageProfile)
		if got := tr.Snapshot().Pct; got != 95 {
			t.Errorf("pct = %d, want 95 after forward transition", got)
		}
	})

	t.Run("backward transition restarts at the floor", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageProfile)
		tr.Bump(40) // 70

		tr.SetStage(StageOAuth)
		snap := tr.Snapshot()
		if snap.Stage != StageOAuth {
			t.Errorf("stage = %v, want oauth", snap.Stage)
		}
		if snap.Pct != 10 {
			t.Errorf("pct = %d, want 10 after cycle restart", snap.Pct)
		}
	})

	t.Run("bump clamps at 100", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageOAuth)
		tr.Bump(95)
		if got := tr.Snapshot().Pct; got != 100 {
			t.Errorf("pct = %d, want 100", got)
		}
	})

	t.Run("negative and zero bumps are ignored", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageLibrary)
		tr.Bump(-50)
		tr.Bump(0)
		if got := tr.Snapshot().Pct; got != 30 {
			t.Errorf("pct = %d, want 30", got)
		}
	})

	t.Run("idle resets pct", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageLibrary)
		tr.Bump(50)

		tr.SetStage(StageIdle)
		snap := tr.Snapshot()
		if snap.Stage != StageIdle || snap.Pct != 0 {
			t.Errorf("unexpected snapshot after idle: %+v", snap)
		}
	})

	t.Run("SetError clears the stage", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageProfile)

		boom := errors.New("boom")
		tr.SetError(boom)

		snap := tr.Snapshot()
		if snap.Stage != StageIdle {
			t.Errorf("stage = %v, want idle", snap.Stage)
		}
		if !errors.Is(snap.Err, boom) {
			t.Errorf("err = %v, want boom", snap.Err)
		}
	})

	t.Run("Reset clears everything", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageLibrary)
		tr.Bump(20)
		tr.SetError(errors.New("boom"))

		tr.Reset()
		snap := tr.Snapshot()
		if snap.Stage != StageIdle || snap.Pct != 0 || snap.Err != nil {
			t.Errorf("unexpected snapshot after reset: %+v", snap)
		}
	})

	t.Run("updates channel receives snapshots", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageOAuth)

		select {
		case snap := <-tr.Updates():
			if snap.Stage != StageOAuth || snap.Pct != 10 {
				t.Errorf("unexpected update: %+v", snap)
			}
		default:
			t.Fatal("expected an update")
		}
	})

	t.Run("notify never blocks when the consumer lags", func(t *testing.T) {
		tr := NewTracker()
		tr.SetStage(StageLibrary)
		// more updates than the channel buffers
		for i := 0; i < 200; i++ {
			tr.Bump(1)
		}
		if got := tr.Snapshot().Pct; got != 100 {
			t.Errorf("pct = %d, want 100", got)
		}
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("Done", func(t *testing.T) {
		if (Snapshot{Pct: 99}).Done() {
			t.Error("99 should not be done")
		}
		if !(Snapshot{Pct: 100}).Done() {
			t.Error("100 should be done")
		}
	})

	t.Run("StepProgress", func(t *testing.T) {
		tests := []struct {
			pct  int
			step int
			want int
		}{
			{10, 0, 10},
			{10, 1, 0},
			{30, 1, 5},
			{60, 1, 35},
			{100, 2, 50},
			{100, 0, 100},
			{0, 2, 0},
		}

		for _, tt := range tests {
			snap := Snapshot{Pct: tt.pct}
			if got := snap.StepProgress(tt.step); got != tt.want {
				t.Errorf("StepProgress(pct=%d, step=%d) = %d, want %d", tt.pct, tt.step, got, tt.want)
			}
		}
	})
}
