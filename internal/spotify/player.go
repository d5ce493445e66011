package spotify

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Playback is the real-time session collaborator contract. The session
// manager disconnects it during logout so no live connection is orphaned.
type Playback interface {
	Disconnect() error
}

// playbackState mirrors the subset of /me/player the poller reads.
type playbackState struct {
	IsPlaying bool  `json:"is_playing"`
	Item      Track `json:"item"`
}

// Poller tracks current playback by polling /me/player at a fixed interval.
//
// Disconnect is idempotent; poll failures are logged and swallowed because
// playback state is decorative, never load-bearing.
type Poller struct {
	api      *APIClient
	token    func() string
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	current *playbackState
	stop    chan struct{}
	once    sync.Once
}

var _ Playback = (*Poller)(nil)

// NewPoller creates a playback poller. token is read on every poll so the
// poller observes refreshed credentials without restarting.
func NewPoller(api *APIClient, token func() string, logger *log.Logger) *Poller {
	return &Poller{
		api:      api,
		token:    token,
		interval: 10 * time.Second,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start begins polling until Disconnect is called or ctx ends.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

func (p *Poller) poll(ctx context.Context) {
	var state playbackState
	if err := p.api.Get(ctx, "/me/player", p.token(), &state); err != nil {
		p.logger.Debug("playback poll failed", "error", err)
		return
	}

	p.mu.Lock()
	p.current = &state
	p.mu.Unlock()
}

// NowPlaying returns the last observed track name, or "" when nothing is
// playing or no poll has succeeded yet.
func (p *Poller) NowPlaying() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || !p.current.IsPlaying {
		return ""
	}
	return p.current.Item.Name
}

// Disconnect stops the poll loop.
func (p *Poller) Disconnect() error {
	p.once.Do(func() { close(p.stop) })
	return nil
}
