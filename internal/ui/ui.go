// package ui implements the terminal dashboard: the route-guard-driven
// screens, the loading overlay, and the render error boundary.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscope/internal/guard"
	"github.com/desertthunder/soundscope/internal/progress"
	"github.com/desertthunder/soundscope/internal/session"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/spotify"
	"github.com/desertthunder/soundscope/internal/store"
)

const playbackRefresh = 5 * time.Second

// ProgramNavigator routes by sending messages into a running bubbletea
// program. Messages sent before Attach are dropped.
type ProgramNavigator struct {
	mu      sync.Mutex
	program *tea.Program
}

var _ guard.Navigator = (*ProgramNavigator)(nil)

// Attach binds the navigator to a program. Call after [tea.NewProgram],
// before the first navigation.
func (n *ProgramNavigator) Attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

func (n *ProgramNavigator) send(msg tea.Msg) {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// NavigateTo switches the current route.
func (n *ProgramNavigator) NavigateTo(path string, replace bool) {
	n.send(navigateMsg{path: path, replace: replace})
}

// Reload ends the program so the process restarts with no in-memory state.
func (n *ProgramNavigator) Reload() {
	n.send(reloadMsg{})
}

type navigateMsg struct {
	path    string
	replace bool
}

type reloadMsg struct{}

type progressMsg progress.Snapshot

type visibilityMsg bool

type initDoneMsg struct {
	err error
}

type loginDoneMsg struct {
	err error
}

type libraryLoadedMsg struct {
	summary *spotify.LibrarySummary
	err     error
}

type playbackTickMsg time.Time

// Opts contains the model's dependencies. API and Playback may be nil in
// demo mode; LoginFlow runs the full authorization flow when the user logs
// in from the landing screen.
type Opts struct {
	Session   *session.Manager
	Tracker   *progress.Tracker
	Gate      *progress.Gate
	Store     store.Store
	API       *spotify.APIClient
	Playback  *spotify.Poller
	Navigator *ProgramNavigator
	LoginFlow func(ctx context.Context) error
	Logger    *log.Logger
}

// Model represents the dashboard application state.
type Model struct {
	ctx      context.Context
	session  *session.Manager
	tracker  *progress.Tracker
	gate     *progress.Gate
	api      *spotify.APIClient
	playback *spotify.Poller
	nav      *ProgramNavigator
	login    func(ctx context.Context) error
	boundary *Boundary
	logger   *log.Logger

	path           string
	width          int
	height         int
	overlay        *overlay
	overlayVisible bool
	errDismissed   bool
	library        *spotify.LibrarySummary
	libraryLoading bool
	libraryErr     error
	help           help.Model
	keys           keyMap
}

// NewModel creates the dashboard model and wires the gate's visibility
// transitions into the program's message loop.
func NewModel(ctx context.Context, opts Opts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	m := &Model{
		ctx:      ctx,
		session:  opts.Session,
		tracker:  opts.Tracker,
		gate:     opts.Gate,
		api:      opts.API,
		playback: opts.Playback,
		nav:      opts.Navigator,
		login:    opts.LoginFlow,
		boundary: NewBoundary(opts.Store, opts.Navigator, opts.Logger),
		logger:   opts.Logger,
		path:     guard.RouteRoot,
		overlay:  newOverlay(),
		help:     help.New(),
		keys:     newKeyMap(),
	}

	opts.Gate.SetOnChange(func(visible bool) {
		opts.Navigator.send(visibilityMsg(visible))
	})

	return m
}

// Init restores the session and starts consuming progress updates.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initSession(), m.waitForProgress()}
	if m.playback != nil {
		cmds = append(cmds, m.tickPlayback())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overlay.setWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case navigateMsg:
		m.path = msg.path
		m.errDismissed = false
		m.gate.Evaluate()
		return m, m.maybeLoadLibrary()

	case reloadMsg:
		return m, tea.Quit

	case progressMsg:
		m.overlay.setSnapshot(progress.Snapshot(msg))
		m.gate.Evaluate()
		return m, m.waitForProgress()

	case visibilityMsg:
		m.overlayVisible = bool(msg)
		return m, nil

	case initDoneMsg:
		if msg.err != nil {
			m.logger.Error("session restore failed", "error", msg.err)
			m.dismissFailedLoad(msg.err)
		}
		m.gate.Evaluate()
		return m, m.maybeLoadLibrary()

	case loginDoneMsg:
		if msg.err != nil {
			m.logger.Error("login flow failed", "error", msg.err)
			m.dismissFailedLoad(msg.err)
		}
		m.gate.Evaluate()
		return m, m.maybeLoadLibrary()

	case libraryLoadedMsg:
		m.libraryLoading = false
		if msg.err != nil {
			m.libraryErr = msg.err
			m.tracker.SetError(msg.err)
		} else {
			m.library = msg.summary
		}
		m.gate.Evaluate()
		return m, nil

	case playbackTickMsg:
		return m, m.tickPlayback()
	}

	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	if m.boundary.Caught() {
		switch msg.String() {
		case "r":
			m.boundary.Reset()
		case "a":
			if !m.boundary.RateLimited() {
				m.boundary.Reauthenticate()
			}
		}
		return m, nil
	}

	decision := m.decide()

	switch decision.Screen {
	case guard.ScreenLanding:
		switch msg.String() {
		case "l":
			return m, m.startLogin()
		case "d":
			return m, m.startDemoLogin()
		case "esc":
			m.errDismissed = true
		case "r":
			if decision.ErrorDialog && !m.errDismissed {
				return m, tea.Quit
			}
		}

	case guard.ScreenDashboard:
		switch msg.String() {
		case "x":
			return m, m.logout()
		case "r":
			if m.libraryErr != nil {
				m.libraryErr = nil
				return m, m.maybeLoadLibrary()
			}
		}
	}

	return m, nil
}

// View renders the screen chosen by the route guard, behind the error
// boundary and below the loading overlay.
func (m *Model) View() string {
	return m.boundary.Capture(func() string {
		if m.overlayVisible {
			return m.overlay.View()
		}

		decision := m.decide()
		switch decision.Screen {
		case guard.ScreenDashboard:
			return m.renderDashboard()
		case guard.ScreenBlank:
			return ""
		default:
			return m.renderLanding(decision)
		}
	})
}

func (m *Model) decide() guard.Decision {
	snap := m.session.Snapshot()
	return guard.Decide(m.path, guard.Input{
		Authenticated: snap.Authenticated(),
		Err:           snap.Err,
		Loading:       snap.Loading,
	})
}

func (m *Model) renderLanding(decision guard.Decision) string {
	var sb strings.Builder

	sb.WriteString(styles.title.Render("soundscope"))
	sb.WriteString("\n")
	sb.WriteString("Your listening habits, in one place.\n\n")

	if decision.ErrorDialog && !m.errDismissed {
		snap := m.session.Snapshot()
		kind := shared.Classify(snap.Err)
		sb.WriteString(styles.err.Render("✗ " + kind.Message()))
		sb.WriteString("\n")
		sb.WriteString(styles.help.Render("r retry • esc dismiss"))
		sb.WriteString("\n\n")
	}

	sb.WriteString(styles.help.Render("l log in with Spotify • d demo mode • q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m *Model) renderDashboard() string {
	snap := m.session.Snapshot()
	var sb strings.Builder

	sb.WriteString(styles.title.Render("Dashboard"))
	sb.WriteString("\n")

	if snap.User != nil {
		sb.WriteString(fmt.Sprintf("Signed in as %s", styles.ok.Render(snap.User.DisplayName)))
		if snap.User.Country != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", snap.User.Country))
		}
		sb.WriteString("\n\n")
	}

	if m.playback != nil {
		if now := m.playback.NowPlaying(); now != "" {
			sb.WriteString(fmt.Sprintf("♪ Now playing: %s\n\n", styles.ok.Render(now)))
		}
	}

	switch {
	case m.libraryErr != nil:
		kind := shared.Classify(m.libraryErr)
		sb.WriteString(styles.err.Render("✗ " + kind.Message()))
		sb.WriteString("\n")
		sb.WriteString(styles.help.Render("r retry"))
		sb.WriteString("\n\n")
	case m.libraryLoading:
		sb.WriteString(styles.warn.Render("Loading library…"))
		sb.WriteString("\n")
	case m.library != nil:
		sb.WriteString(fmt.Sprintf("Saved tracks: %d\n\n", m.library.SavedTrackTotal))

		if len(m.library.TopArtists) > 0 {
			sb.WriteString("Top artists\n")
			for i, artist := range m.library.TopArtists {
				if i >= 5 {
					break
				}
				sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, artist.Name))
			}
			sb.WriteString("\n")
		}

		if len(m.library.RecentTracks) > 0 {
			sb.WriteString("Recently saved\n")
			for i, saved := range m.library.RecentTracks {
				if i >= 5 {
					break
				}
				artist := ""
				if len(saved.Track.Artists) > 0 {
					artist = " — " + saved.Track.Artists[0].Name
				}
				sb.WriteString(fmt.Sprintf("  • %s%s\n", saved.Track.Name, artist))
			}
			sb.WriteString("\n")
		}
	}

	m.help.ShowAll = true
	sb.WriteString(m.help.View(m.keys))
	sb.WriteString("\n")
	return sb.String()
}

// dismissFailedLoad ends the loading cycle when retrying it in place cannot
// succeed. Outside the authenticated area the landing screen owns error
// presentation, so the tracker resets and the overlay hides with no grace.
func (m *Model) dismissFailedLoad(err error) {
	if shared.Classify(err).Recoverable() || guard.Protected(m.path) {
		return
	}
	m.tracker.Reset()
	m.gate.ForceHide()
}

func (m *Model) initSession() tea.Cmd {
	return func() tea.Msg {
		return initDoneMsg{err: m.session.Initialize(m.ctx)}
	}
}

// waitForProgress blocks on the tracker's update channel and re-arms itself
// after every message.
func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		return progressMsg(<-m.tracker.Updates())
	}
}

func (m *Model) tickPlayback() tea.Cmd {
	return tea.Tick(playbackRefresh, func(t time.Time) tea.Msg {
		return playbackTickMsg(t)
	})
}

func (m *Model) startLogin() tea.Cmd {
	if m.login == nil {
		return m.startDemoLogin()
	}
	m.errDismissed = false
	return func() tea.Msg {
		return loginDoneMsg{err: m.login(m.ctx)}
	}
}

func (m *Model) startDemoLogin() tea.Cmd {
	m.errDismissed = false
	return func() tea.Msg {
		_, _, err := m.session.Login(m.ctx)
		return loginDoneMsg{err: err}
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.session.Logout()
		return nil
	}
}

// maybeLoadLibrary starts the library stage once the dashboard is reachable
// and no load has run yet.
func (m *Model) maybeLoadLibrary() tea.Cmd {
	if m.library != nil || m.libraryLoading || m.libraryErr != nil {
		return nil
	}
	if m.decide().Screen != guard.ScreenDashboard {
		return nil
	}

	m.libraryLoading = true
	if m.session.Demo() || m.api == nil {
		return m.loadDemoLibrary()
	}
	return m.loadLibrary()
}

func (m *Model) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		m.tracker.SetStage(progress.StageLibrary)
		token := m.session.AccessToken()

		tracks, err := m.api.SavedTracks(m.ctx, token, 10, 0)
		if err != nil {
			return libraryLoadedMsg{err: err}
		}
		m.tracker.Bump(25)

		artists, err := m.api.TopArtists(m.ctx, token, 10)
		if err != nil {
			return libraryLoadedMsg{err: err}
		}
		m.tracker.Bump(25)

		summary := &spotify.LibrarySummary{
			SavedTrackTotal: tracks.Total,
			TopArtists:      artists.Items,
			RecentTracks:    tracks.Items,
		}
		m.tracker.Bump(100)
		return libraryLoadedMsg{summary: summary}
	}
}

// loadDemoLibrary fabricates a small library so the sandbox exercises the
// same loading cycle without network calls.
func (m *Model) loadDemoLibrary() tea.Cmd {
	return func() tea.Msg {
		m.tracker.SetStage(progress.StageLibrary)
		m.tracker.Bump(25)

		summary := &spotify.LibrarySummary{
			SavedTrackTotal: 42,
			TopArtists: []spotify.Artist{
				{ID: "demo-artist-1", Name: "Glass Harbor"},
				{ID: "demo-artist-2", Name: "The Midnight Sum"},
				{ID: "demo-artist-3", Name: "Parallel Drift"},
			},
			RecentTracks: []spotify.SavedTrack{
				{Track: spotify.Track{Name: "Neon Tide", Artists: []spotify.Artist{{Name: "Glass Harbor"}}}},
				{Track: spotify.Track{Name: "Afterglow", Artists: []spotify.Artist{{Name: "The Midnight Sum"}}}},
			},
		}
		m.tracker.Bump(100)
		return libraryLoadedMsg{summary: summary}
	}
}
