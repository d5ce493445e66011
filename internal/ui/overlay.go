package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	prg "github.com/desertthunder/soundscope/internal/progress"
)

// stepLabels name the loading steps in display order (oauth, profile, library).
var stepLabels = [3]string{"Connecting account", "Loading profile", "Scanning library"}

// overlay renders the full-screen loading surface from tracker snapshots.
type overlay struct {
	bars [3]progress.Model
	snap prg.Snapshot
}

func newOverlay() *overlay {
	var bars [3]progress.Model
	for i := range bars {
		bars[i] = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	}
	return &overlay{bars: bars}
}

func (o *overlay) setSnapshot(snap prg.Snapshot) {
	o.snap = snap
}

func (o *overlay) setWidth(w int) {
	bw := w - 24
	if bw < 10 {
		bw = 10
	}
	for i := range o.bars {
		o.bars[i].Width = bw
	}
}

// View renders the stage steps with per-step progress.
func (o *overlay) View() string {
	var sb strings.Builder

	sb.WriteString(styles.title.Render("Loading your listening data"))
	sb.WriteString("\n\n")

	active := o.snap.Stage.Step()
	for step, label := range stepLabels {
		pct := o.snap.StepProgress(step)

		marker := "  "
		switch {
		case pct >= 100:
			marker = styles.ok.Render("✓ ")
		case step == active:
			marker = styles.warn.Render("▸ ")
		}

		sb.WriteString(fmt.Sprintf("%s%-20s %s\n", marker, label, o.bars[step].ViewAs(float64(pct)/100)))
	}

	sb.WriteString(fmt.Sprintf("\n%d%%\n", o.snap.Pct))

	if o.snap.Err != nil {
		sb.WriteString("\n")
		sb.WriteString(styles.err.Render(o.snap.Err.Error()))
		sb.WriteString("\n")
	}

	return sb.String()
}
