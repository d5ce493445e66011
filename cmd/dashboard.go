package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundscope/internal/progress"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/spotify"
	"github.com/desertthunder/soundscope/internal/store"
	"github.com/desertthunder/soundscope/internal/ui"
	"github.com/urfave/cli/v3"
)

// Dashboard launches the interactive terminal dashboard.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	demo := cmd.Bool("demo") || r.config.App.Demo

	if r.store == nil {
		return fmt.Errorf("%w: token store not initialized, run 'soundscope setup'", shared.ErrServiceUnavailable)
	}
	if !demo && r.provider == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml (or pass --demo)", shared.ErrInvalidConfig)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.App.LogPath
	if logPath == "" {
		logPath = "./tmp/soundscope.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	var playback *spotify.Poller
	var playbackPort spotify.Playback
	if !demo && r.api != nil {
		playback = spotify.NewPoller(r.api, func() string {
			token, _, _ := r.store.Get(store.KeyAccessToken)
			return token
		}, fileLogger)
		playback.Start(ctx)
		defer playback.Disconnect()
		playbackPort = playback
	}

	sess := r.newSession(demo, playbackPort, fileLogger)
	tracker := progress.NewTracker()
	gate := progress.NewGate(tracker, func() bool {
		return sess.Snapshot().Loading
	}, fileLogger)

	var loginFlow func(ctx context.Context) error
	if !demo {
		loginFlow = func(ctx context.Context) error {
			_, err := r.doOAuth(ctx, sess, tracker, true)
			return err
		}
	}

	model := ui.NewModel(ctx, ui.Opts{
		Session:   sess,
		Tracker:   tracker,
		Gate:      gate,
		Store:     r.store,
		API:       r.api,
		Playback:  playback,
		Navigator: r.nav,
		LoginFlow: loginFlow,
		Logger:    fileLogger,
	})

	p := tea.NewProgram(model)
	r.nav.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}
