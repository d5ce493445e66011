package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/soundscope/internal/progress"
	"github.com/desertthunder/soundscope/internal/server"
	"github.com/desertthunder/soundscope/internal/session"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/store"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens persisted in the store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized, run 'soundscope setup'", shared.ErrServiceUnavailable)
	}

	demo := cmd.Bool("demo") || r.config.App.Demo
	sess := r.newSession(demo, nil, r.logger)

	if demo {
		if _, _, err := sess.Login(ctx); err != nil {
			return err
		}
		return r.writePlain("✓ Demo session started\n")
	}

	if r.provider == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrInvalidConfig)
	}

	tracker := progress.NewTracker()
	result, err := r.doOAuth(ctx, sess, tracker, false)
	if err != nil {
		return err
	}

	r.logger.Info("authorization complete", "message", result.Message)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to the %s store\n\n", r.config.Store.Backend)
	r.writePlain("You can now use: soundscope dashboard\n")

	return nil
}

// AuthLogout clears the session credentials.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized", shared.ErrServiceUnavailable)
	}

	sess := r.newSession(r.config.App.Demo, nil, r.logger)
	sess.Logout()

	return r.writePlain("✓ Logged out, credentials cleared\n")
}

// AuthStatus reports the stored credential and cached-profile state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized", shared.ErrServiceUnavailable)
	}

	useJSON := cmd.Bool("json")

	token, hasToken, err := r.store.Get(store.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	status := struct {
		Authenticated bool   `json:"authenticated"`
		Demo          bool   `json:"demo"`
		Expired       bool   `json:"expired"`
		ExpiresAt     string `json:"expires_at,omitempty"`
		User          string `json:"user,omitempty"`
	}{}

	if hasToken && token != "" {
		status.Authenticated = true
		status.Demo = token == session.DemoToken
	}

	if raw, ok, _ := r.store.Get(store.KeyTokenExpiry); ok && !status.Demo {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			expiry := time.UnixMilli(ms)
			status.ExpiresAt = expiry.Format(time.RFC3339)
			status.Expired = !time.Now().Before(expiry)
		} else {
			status.Expired = true
		}
	}

	if raw, ok, _ := r.store.Get(store.KeyUserProfile); ok {
		if user, err := session.DecodeUser(raw); err == nil {
			status.User = user.DisplayName
		}
	}

	if useJSON {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !status.Authenticated {
		return r.writePlain("✗ Not authenticated\n")
	}

	if status.Demo {
		r.writePlain("✓ Authenticated (demo mode)\n")
	} else if status.Expired {
		r.writePlain("⚠ Authenticated, but the access token has expired\n")
		r.writePlain("Run 'soundscope auth refresh' to renew it\n")
	} else {
		r.writePlain("✓ Authenticated\n")
	}

	if status.ExpiresAt != "" {
		r.writePlain("Token expires: %s\n", status.ExpiresAt)
	}
	if status.User != "" {
		r.writePlain("User: %s\n", status.User)
	}

	return nil
}

// AuthRefresh exchanges the stored refresh token for a new access token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized", shared.ErrServiceUnavailable)
	}
	if r.provider == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrInvalidConfig)
	}

	sess := r.newSession(r.config.App.Demo, nil, r.logger)

	if err := sess.Refresh(ctx); err != nil {
		kind := shared.Classify(err)
		if kind == shared.KindSessionExpired {
			r.writePlain("✗ %s\n", kind.Message())
			r.writePlain("Run 'soundscope auth login' to re-authenticate\n")
		}
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return r.writePlain("✓ Access token refreshed\n")
}

// doOAuth runs the authorization-code flow end to end: local callback
// server, browser redirect, and token exchange via the session manager.
// When quiet, progress goes to the logger instead of the terminal so a
// running TUI keeps the screen.
func (r *Runner) doOAuth(ctx context.Context, sess *session.Manager, tracker *progress.Tracker, quiet bool) (server.CallbackResult, error) {
	authURL, state, err := sess.Login(ctx)
	if err != nil {
		return server.CallbackResult{}, fmt.Errorf("failed to start login: %w", err)
	}

	handler := server.NewCallbackHandler(sess, r.store, tracker, r.nav, state, r.logger)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting authorization callback server", "addr", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if quiet {
		r.logger.Info("opening browser for authorization", "url", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
	}
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		if !quiet {
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	if !quiet {
		r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")
	}

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return server.CallbackResult{}, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return server.CallbackResult{}, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return server.CallbackResult{}, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return result, fmt.Errorf("authorization failed: %w", result.Error())
	}

	return result, nil
}
