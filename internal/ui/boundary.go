package ui

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscope/internal/guard"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/store"
)

// rateLimitEstimateSeconds is the default wait shown on the rate-limit page
// when the upstream gives no Retry-After hint.
const rateLimitEstimateSeconds = 60

// Boundary is the last-resort safety net around screen rendering.
//
// Render-time panics from any screen are caught here and classified: messages
// carrying a rate-limit marker get the dedicated "temporarily unavailable"
// page, everything else the generic failure page. Retry simply resets the
// caught state and re-renders; the generic page additionally offers forced
// re-authentication (clear the primary credential key and navigate to root).
type Boundary struct {
	store  store.Store
	nav    guard.Navigator
	logger *log.Logger

	caught      bool
	rateLimited bool
	message     string
}

// NewBoundary creates a boundary over the given store and navigator.
func NewBoundary(st store.Store, nav guard.Navigator, logger *log.Logger) *Boundary {
	return &Boundary{store: st, nav: nav, logger: logger}
}

// Capture runs render, recovering any panic into the boundary's caught state.
// When a failure is already caught, the boundary's own page renders instead.
func (b *Boundary) Capture(render func() string) (out string) {
	if b.caught {
		return b.View()
	}

	defer func() {
		if r := recover(); r != nil {
			b.catch(fmt.Sprintf("%v", r))
			out = b.View()
		}
	}()

	return render()
}

func (b *Boundary) catch(msg string) {
	b.caught = true
	b.message = msg
	b.rateLimited = shared.ContainsRateLimitMarker(msg)
	b.logger.Error("render failure caught", "rate_limited", b.rateLimited, "message", msg)
}

// Caught reports whether the boundary currently holds a failure.
func (b *Boundary) Caught() bool { return b.caught }

// RateLimited reports whether the caught failure classified as a 429.
func (b *Boundary) RateLimited() bool { return b.rateLimited }

// Reset clears the caught state so children re-render.
func (b *Boundary) Reset() {
	b.caught = false
	b.rateLimited = false
	b.message = ""
}

// Reauthenticate clears the primary credential key and navigates to the
// public root.
func (b *Boundary) Reauthenticate() {
	if err := b.store.RemoveAll(store.KeyAccessToken); err != nil {
		b.logger.Warn("failed to clear access token", "error", err)
	}
	b.Reset()
	b.nav.NavigateTo(guard.RouteRoot, true)
}

// View renders the page for the caught failure.
func (b *Boundary) View() string {
	if !b.caught {
		return ""
	}

	if b.rateLimited {
		title := styles.warn.Render("Temporarily unavailable")
		body := fmt.Sprintf(
			"Spotify is throttling requests.\nEstimated wait: ~%d seconds.\n\n%s",
			rateLimitEstimateSeconds,
			styles.help.Render("r retry • q quit"),
		)
		return fmt.Sprintf("%s\n\n%s", title, body)
	}

	title := styles.err.Render("Something went wrong")
	return fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		title,
		b.message,
		styles.help.Render("r retry • a re-authenticate • q quit"),
	)
}
