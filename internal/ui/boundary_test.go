package ui

import (
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/soundscope/internal/guard"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/store"
)

type fakeNav struct {
	mu          sync.Mutex
	navigations []string
}

func (n *fakeNav) NavigateTo(path string, replace bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navigations = append(n.navigations, path)
}

func (n *fakeNav) Reload() {}

func newTestBoundary() (*Boundary, *store.Memory, *fakeNav) {
	st := store.NewMemory()
	nav := &fakeNav{}
	return NewBoundary(st, nav, shared.NewLogger(nil)), st, nav
}

func TestBoundary(t *testing.T) {
	t.Run("passes healthy renders through", func(t *testing.T) {
		b, _, _ := newTestBoundary()

		out := b.Capture(func() string { return "healthy screen" })
		if out != "healthy screen" {
			t.Errorf("unexpected output: %q", out)
		}
		if b.Caught() {
			t.Error("expected no caught failure")
		}
	})

	t.Run("catches a panic and renders the generic page", func(t *testing.T) {
		b, _, _ := newTestBoundary()

		out := b.Capture(func() string { panic("render exploded") })

		if !b.Caught() {
			t.Fatal("expected caught failure")
		}
		if b.RateLimited() {
			t.Error("expected generic classification")
		}
		if !strings.Contains(out, "Something went wrong") {
			t.Errorf("expected generic page, got %q", out)
		}
		if !strings.Contains(out, "re-authenticate") {
			t.Error("generic page must offer forced re-authentication")
		}
	})

	t.Run("rate limit markers route to the rate-limit page", func(t *testing.T) {
		tests := []string{
			"status 429 from upstream",
			"Rate Limit exceeded",
			"too many requests",
		}

		for _, msg := range tests {
			t.Run(msg, func(t *testing.T) {
				b, _, _ := newTestBoundary()

				out := b.Capture(func() string { panic(msg) })

				if !b.RateLimited() {
					t.Fatal("expected rate-limited classification")
				}
				if !strings.Contains(out, "Temporarily unavailable") {
					t.Errorf("expected rate-limit page, got %q", out)
				}
				if !strings.Contains(out, "60 seconds") {
					t.Error("expected the wait estimate on the page")
				}
				if strings.Contains(out, "re-authenticate") {
					t.Error("rate-limit page must not offer re-authentication")
				}
			})
		}
	})

	t.Run("caught state short-circuits later renders", func(t *testing.T) {
		b, _, _ := newTestBoundary()

		b.Capture(func() string { panic("boom") })

		calls := 0
		out := b.Capture(func() string {
			calls++
			return "should not render"
		})
		if calls != 0 {
			t.Error("expected children to be skipped while caught")
		}
		if !strings.Contains(out, "Something went wrong") {
			t.Errorf("expected the failure page, got %q", out)
		}
	})

	t.Run("reset retries the children", func(t *testing.T) {
		b, _, _ := newTestBoundary()

		b.Capture(func() string { panic("boom") })
		b.Reset()

		out := b.Capture(func() string { return "recovered" })
		if out != "recovered" {
			t.Errorf("expected recovered render, got %q", out)
		}
		if b.Caught() {
			t.Error("expected clean state after reset")
		}
	})

	t.Run("reauthenticate clears the token and navigates home", func(t *testing.T) {
		b, st, nav := newTestBoundary()
		st.Set(store.KeyAccessToken, "at")
		st.Set(store.KeyRefreshToken, "rt")

		b.Capture(func() string { panic("boom") })
		b.Reauthenticate()

		if _, ok, _ := st.Get(store.KeyAccessToken); ok {
			t.Error("expected access token cleared")
		}
		if _, ok, _ := st.Get(store.KeyRefreshToken); !ok {
			t.Error("only the access token is cleared on forced reauth")
		}
		if b.Caught() {
			t.Error("expected boundary reset")
		}

		nav.mu.Lock()
		defer nav.mu.Unlock()
		if len(nav.navigations) != 1 || nav.navigations[0] != guard.RouteRoot {
			t.Errorf("expected navigation to root, got %v", nav.navigations)
		}
	})
}
