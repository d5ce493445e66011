package guard

import (
	"errors"
	"testing"
)

func TestDecide(t *testing.T) {
	someErr := errors.New("profile fetch failed")

	tests := []struct {
		name string
		path string
		in   Input
		want Decision
	}{
		{
			name: "authenticated on root goes to dashboard",
			path: RouteRoot,
			in:   Input{Authenticated: true},
			want: Decision{Screen: ScreenDashboard},
		},
		{
			name: "authenticated on dashboard stays",
			path: RouteDashboard,
			in:   Input{Authenticated: true},
			want: Decision{Screen: ScreenDashboard},
		},
		{
			name: "authenticated wins over a stale error",
			path: RouteRoot,
			in:   Input{Authenticated: true, Err: someErr},
			want: Decision{Screen: ScreenDashboard},
		},
		{
			name: "unauthenticated on protected path renders blank",
			path: RouteDashboard,
			in:   Input{},
			want: Decision{Screen: ScreenBlank},
		},
		{
			name: "unauthenticated on protected subpath renders blank",
			path: RouteDashboard + "/library",
			in:   Input{},
			want: Decision{Screen: ScreenBlank},
		},
		{
			name: "protected path with error still renders blank",
			path: RouteDashboard,
			in:   Input{Err: someErr},
			want: Decision{Screen: ScreenBlank},
		},
		{
			name: "unauthenticated on root lands",
			path: RouteRoot,
			in:   Input{},
			want: Decision{Screen: ScreenLanding},
		},
		{
			name: "error on landing shows the dialog",
			path: RouteRoot,
			in:   Input{Err: someErr},
			want: Decision{Screen: ScreenLanding, ErrorDialog: true},
		},
		{
			name: "error is suppressed while loading",
			path: RouteRoot,
			in:   Input{Err: someErr, Loading: true},
			want: Decision{Screen: ScreenLanding},
		},
		{
			name: "callback path lands while unauthenticated",
			path: RouteCallback,
			in:   Input{},
			want: Decision{Screen: ScreenLanding},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.path, tt.in); got != tt.want {
				t.Errorf("Decide(%q, %+v) = %+v, want %+v", tt.path, tt.in, got, tt.want)
			}
		})
	}
}

func TestProtected(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{RouteDashboard, true},
		{RouteDashboard + "/library", true},
		{RouteRoot, false},
		{RouteCallback, false},
		{RouteDemo, false},
		{"/dashboardish", false},
	}

	for _, tt := range tests {
		if got := Protected(tt.path); got != tt.want {
			t.Errorf("Protected(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
