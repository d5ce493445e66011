// package guard decides which top-level screen renders for a given path and
// session/loading state, and defines the navigation port the rest of the core
// drives instead of touching process-global state directly.
package guard

import "strings"

// Routes relevant to the core.
const (
	RouteRoot      = "/"
	RouteDashboard = "/dashboard"
	RouteCallback  = "/callback"
	RouteDemo      = "/demo"
)

// Screen is the top-level surface chosen by the guard.
type Screen int

const (
	// ScreenLanding is the public unauthenticated surface.
	ScreenLanding Screen = iota
	// ScreenDashboard is the protected authenticated surface.
	ScreenDashboard
	// ScreenBlank renders nothing, deferring to the global loading overlay so
	// an unauthenticated state never flashes on a protected path.
	ScreenBlank
)

func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "dashboard"
	case ScreenBlank:
		return "blank"
	default:
		return "landing"
	}
}

// Input is the combined session/loading state the guard evaluates.
type Input struct {
	Authenticated bool
	Err           error
	Loading       bool
}

// Decision is the guard's output for one evaluation.
//
// ErrorDialog is a dismissible dialog on the landing surface whose retry
// action reloads the process. It is never shown while loading or inside the
// protected area, which has its own error surfaces.
type Decision struct {
	Screen      Screen
	ErrorDialog bool
}

// Protected reports whether path is under the authenticated area.
func Protected(path string) bool {
	return path == RouteDashboard || strings.HasPrefix(path, RouteDashboard+"/")
}

// Decide evaluates the screen decision table in precedence order.
//
// Errors are suppressed once authenticated: a present user always wins over a
// stale error from an earlier flow.
func Decide(path string, in Input) Decision {
	if in.Authenticated {
		return Decision{Screen: ScreenDashboard}
	}

	if Protected(path) {
		return Decision{Screen: ScreenBlank}
	}

	return Decision{
		Screen:      ScreenLanding,
		ErrorDialog: in.Err != nil && !in.Loading,
	}
}

// Navigator is the process-control port. Implementations route without
// touching real browser/process globals so the core stays testable.
type Navigator interface {
	// NavigateTo switches the current path; replace avoids growing history.
	NavigateTo(path string, replace bool)
	// Reload restarts the process-level state from scratch, guaranteeing no
	// stale in-memory session survives.
	Reload()
}
