package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscope/internal/guard"
	"github.com/desertthunder/soundscope/internal/progress"
	"github.com/desertthunder/soundscope/internal/session"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/store"
)

// CallbackResult is the outcome of one authorization redirect.
type CallbackResult struct {
	Kind    shared.Kind
	Message string
	err     error
}

func (r CallbackResult) Error() error { return r.err }

// CallbackHandler processes the identity-provider redirect: it validates the
// returned parameters, exchanges the code through the session manager,
// advances the loading stages, and navigates onward.
//
// On failure it stays put: the page shows the classified message and a manual
// start-over link back to the public root. No automatic retry is attempted.
type CallbackHandler struct {
	session  *session.Manager
	store    store.Store
	progress *progress.Tracker
	nav      guard.Navigator
	state    string
	logger   *log.Logger

	// Retry is the write-visibility poll policy for the token key; NavDelay
	// is the settle delay before navigating to the protected area.
	Retry    shared.Retry
	NavDelay time.Duration

	resultChan  chan CallbackResult
	once        sync.Once
	mu          sync.Mutex
	callbackHit bool
}

// NewCallbackHandler creates a handler bound to one authorization attempt.
// The state token must match the one carried into the redirect.
func NewCallbackHandler(sess *session.Manager, st store.Store, tracker *progress.Tracker, nav guard.Navigator, state string, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{
		session:    sess,
		store:      st,
		progress:   tracker,
		nav:        nav,
		state:      state,
		logger:     logger,
		Retry:      shared.StoreVisibilityRetry,
		NavDelay:   200 * time.Millisecond,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{guard.RouteCallback}
}

// ServeHTTP handles the redirect back from the identity provider.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		desc := query.Get("error_description")
		h.fail(w, fmt.Errorf("%w: provider returned %s - %s", shared.ErrAuthFailed, errParam, desc),
			"The provider declined the authorization request.")
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		h.fail(w, fmt.Errorf("%w: redirect missing code or state", shared.ErrAuthFailed),
			"The redirect was missing required parameters.")
		return
	}

	if state != h.state {
		h.fail(w, fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed),
			"The redirect state token didn't match this login attempt.")
		return
	}

	h.progress.SetStage(progress.StageOAuth)

	if err := h.session.Exchange(r.Context(), code); err != nil {
		h.fail(w, fmt.Errorf("token exchange failed: %w", err), "")
		return
	}

	// Some storage implementations exhibit write/read visibility lag; poll
	// before moving on. Exhausting the retries is only a warning: the profile
	// fetch re-reads storage directly and may land after the write settles.
	visible, err := h.Retry.Poll(r.Context(), func() (bool, error) {
		_, ok, err := h.store.Get(store.KeyAccessToken)
		if err != nil {
			h.logger.Warn("token visibility check failed", "error", err)
			return false, nil
		}
		return ok, nil
	})
	if err != nil {
		h.logger.Warn("token visibility poll interrupted", "error", err)
	} else if !visible {
		h.logger.Warn("token not yet readable after exchange, proceeding anyway")
	}

	h.progress.SetStage(progress.StageProfile)

	h.send(CallbackResult{Kind: shared.KindUnknown, Message: "authorization complete"})
	h.renderSuccess(w)

	time.AfterFunc(h.NavDelay, func() {
		h.nav.NavigateTo(guard.RouteDashboard, true)
	})
}

// send delivers the result through the channel (only once).
func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for the authorization attempt.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

func (h *CallbackHandler) fail(w http.ResponseWriter, err error, detail string) {
	kind := shared.Classify(err)
	if kind == shared.KindUnknown {
		kind = shared.KindAuthFailed
	}
	if detail == "" {
		detail = kind.Message()
	}

	h.logger.Error("authorization callback failed", "kind", kind, "error", err)
	h.send(CallbackResult{Kind: kind, Message: detail, err: err})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, callbackFailurePage, detail)
}

func (h *CallbackHandler) renderSuccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, callbackSuccessPage)
}

const callbackSuccessPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

const callbackFailurePage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Failed</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #E22134; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0 0 1rem 0; }
        a { color: #1DB954; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10007; Authorization Failed</h1>
        <p>%s</p>
        <p><a href="/">Start over</a></p>
    </div>
</body>
</html>
`
