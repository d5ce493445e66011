// package session owns the authenticated-user state and the credential
// lifecycle: initialization from the store, login, logout, refresh, and
// failure classification.
package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscope/internal/guard"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/spotify"
	"github.com/desertthunder/soundscope/internal/store"
)

// Session is a read-only snapshot of the manager's state.
type Session struct {
	User    *User
	Err     error
	Loading bool
}

// Authenticated reports whether a user is present.
func (s Session) Authenticated() bool { return s.User != nil }

// Manager owns session state. Constructed once at process start and passed by
// reference to every consumer.
//
// Two async flows may race over this state (a refresh against a concurrent
// logout, say). The mutex keeps the snapshot consistent, but the flows are
// deliberately not serialized against each other: clearing credentials is
// idempotent, and a late result from a discarded flow is simply overwritten.
type Manager struct {
	store    store.Store
	provider spotify.Identity
	playback spotify.Playback
	nav      guard.Navigator
	logger   *log.Logger
	demo     bool

	mu    sync.Mutex
	state Session

	initOnce sync.Once
}

// Opts contains the manager's dependencies.
type Opts struct {
	Store     store.Store
	Provider  spotify.Identity
	Playback  spotify.Playback
	Navigator guard.Navigator
	Logger    *log.Logger
	Demo      bool
}

// NewManager creates a session manager. Store, Navigator, and Logger are
// required; Provider may be nil only in demo mode.
func NewManager(opts Opts) *Manager {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Manager{
		store:    opts.Store,
		provider: opts.Provider,
		playback: opts.Playback,
		nav:      opts.Navigator,
		logger:   opts.Logger,
		demo:     opts.Demo,
	}
}

// Demo reports whether the manager runs in sandbox mode.
func (m *Manager) Demo() bool { return m.demo }

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AccessToken reads the current access token from the store. Callers that
// fetch after the OAuth exchange re-read storage directly rather than holding
// a token in memory.
func (m *Manager) AccessToken() string {
	token, ok, err := m.store.Get(store.KeyAccessToken)
	if err != nil || !ok {
		return ""
	}
	return token
}

// Initialize restores the session from the store. Guarded by a one-shot
// latch: concurrent or repeated calls run the routine exactly once.
//
// A cached profile is trusted immediately to avoid a loading flash; in
// non-demo mode a background validation call follows, and its failure only
// clears the session when it is itself a 401-class failure.
func (m *Manager) Initialize(ctx context.Context) error {
	var err error
	m.initOnce.Do(func() {
		err = m.initialize(ctx)
	})
	return err
}

func (m *Manager) initialize(ctx context.Context) error {
	m.setLoading(true)
	defer m.setLoading(false)

	token, ok, err := m.store.Get(store.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	if !ok || token == "" {
		m.logger.Debug("no stored token, starting unauthenticated")
		return nil
	}

	if token != DemoToken && m.expired() {
		m.logger.Info("stored token expired, clearing credentials")
		m.clearCredentials()
		return nil
	}

	if token == DemoToken {
		m.setUser(DemoUser())
		return nil
	}

	if cached := m.cachedUser(); cached != nil {
		m.setUser(cached)
		if !m.demo {
			go m.validate(ctx, token)
		}
		return nil
	}

	return m.fetchUser(ctx, token)
}

// validate re-fetches the profile behind an already-trusted cache. Anything
// short of a 401 degrades to a warning and the cached user stays in effect.
func (m *Manager) validate(ctx context.Context, token string) {
	profile, err := m.provider.CurrentUser(ctx, token)
	if err != nil {
		if shared.Classify(err) == shared.KindSessionExpired {
			m.logger.Info("background validation got 401, clearing session")
			m.clearUser()
			m.clearCredentials()
			m.setErr(err)
			return
		}
		m.logger.Warn("background profile validation failed", "error", err)
		return
	}

	m.cacheProfile(profile)
	m.setUser(NewUser(profile))
}

// fetchUser performs the full profile fetch when no cache exists,
// synchronously relative to initialization.
func (m *Manager) fetchUser(ctx context.Context, token string) error {
	profile, err := m.provider.CurrentUser(ctx, token)
	if err != nil {
		if shared.Classify(err) == shared.KindSessionExpired {
			m.clearCredentials()
		}
		m.setErr(err)
		return err
	}

	m.cacheProfile(profile)
	m.setUser(NewUser(profile))
	return nil
}

// Login begins authentication. In demo mode it synthesizes the user from the
// sentinel token with no network round-trip and navigates to the dashboard;
// otherwise it returns the provider authorization URL and the state token the
// caller must carry through the redirect.
func (m *Manager) Login(ctx context.Context) (authURL, state string, err error) {
	if m.demo {
		if err := m.store.Set(store.KeyAccessToken, DemoToken); err != nil {
			return "", "", fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		m.setUser(DemoUser())
		m.nav.NavigateTo(guard.RouteDashboard, true)
		return "", "", nil
	}

	if m.provider == nil {
		return "", "", fmt.Errorf("%w: identity provider not configured", shared.ErrInvalidConfig)
	}

	state, err = shared.GenerateState()
	if err != nil {
		return "", "", err
	}

	return m.provider.AuthURL(state), state, nil
}

// Exchange trades the authorization code for tokens and persists them. The
// profile is not fetched here; later fetches re-read the store.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	token, err := m.provider.Exchange(ctx, code)
	if err != nil {
		m.setErr(err)
		return err
	}

	return m.persistToken(token)
}

// Refresh exchanges the stored refresh token for a new access token and
// persists it. An invalid_grant-class failure means the session is expired:
// the manager logs out unless running in demo mode.
func (m *Manager) Refresh(ctx context.Context) error {
	refreshToken, ok, err := m.store.Get(store.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	if !ok || refreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	if refreshToken == DemoToken || m.AccessToken() == DemoToken {
		return nil
	}

	token, err := m.provider.Refresh(ctx, refreshToken)
	if err != nil {
		m.setErr(err)
		if shared.Classify(err) == shared.KindSessionExpired && !m.demo {
			m.logger.Info("refresh rejected, logging out")
			m.Logout()
		}
		return err
	}

	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return m.persistToken(token)
}

// Logout clears user and error state, disconnects the live playback
// collaborator, clears all credential keys, and forces a reload so no stale
// in-memory state survives.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.state.User = nil
	m.state.Err = nil
	m.mu.Unlock()

	if m.playback != nil {
		if err := m.playback.Disconnect(); err != nil {
			m.logger.Warn("playback disconnect failed", "error", err)
		}
	}

	m.clearCredentials()
	m.nav.Reload()
}

func (m *Manager) persistToken(token *spotify.Token) error {
	if err := m.store.Set(store.KeyAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	if token.RefreshToken != "" {
		if err := m.store.Set(store.KeyRefreshToken, token.RefreshToken); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
	}
	expiry := strconv.FormatInt(token.Expiry.UnixMilli(), 10)
	if err := m.store.Set(store.KeyTokenExpiry, expiry); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return nil
}

// expired reports whether the stored expiry has passed. A missing or
// malformed expiry counts as expired.
func (m *Manager) expired() bool {
	raw, ok, err := m.store.Get(store.KeyTokenExpiry)
	if err != nil || !ok {
		return true
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return !time.Now().Before(time.UnixMilli(ms))
}

func (m *Manager) cachedUser() *User {
	raw, ok, err := m.store.Get(store.KeyUserProfile)
	if err != nil || !ok {
		return nil
	}
	user, err := DecodeUser(raw)
	if err != nil {
		m.logger.Warn("discarding unreadable cached profile", "error", err)
		return nil
	}
	return user
}

func (m *Manager) cacheProfile(profile *spotify.Profile) {
	user := NewUser(profile)
	encoded, err := user.Encode()
	if err != nil {
		m.logger.Warn("failed to encode profile for cache", "error", err)
		return
	}
	if err := m.store.Set(store.KeyUserProfile, encoded); err != nil {
		m.logger.Warn("failed to cache profile", "error", err)
	}
	if len(user.Images) > 0 {
		if err := m.store.Set(store.KeyUserImage, user.Images[0]); err != nil {
			m.logger.Warn("failed to cache profile image", "error", err)
		}
	}
}

func (m *Manager) clearCredentials() {
	if err := m.store.RemoveAll(store.CredentialKeys()...); err != nil {
		m.logger.Warn("failed to clear credential keys", "error", err)
	}
}

// setUser installs the user and suppresses any prior error; a present user
// and a present error must never drive the same screen decision.
func (m *Manager) setUser(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.User = u
	m.state.Err = nil
}

func (m *Manager) clearUser() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.User = nil
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Err = err
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Loading = v
}
