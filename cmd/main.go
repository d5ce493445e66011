package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/spotify"
	"github.com/desertthunder/soundscope/internal/store"
	"github.com/desertthunder/soundscope/internal/ui"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("SOUNDSCOPE_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var tokenStore store.Store
	if st, err := store.Open(config.Store.Backend, config.Store.Path); err == nil {
		tokenStore = st
		defer st.Close()
	} else {
		logger.Debug("token store unavailable", "error", err)
	}

	api := spotify.NewAPIClient("", nil)

	var provider spotify.Identity
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if client, err := spotify.NewClient(config.Credentials.Spotify.Map(), api); err == nil {
			provider = client
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Store:     tokenStore,
		Provider:  provider,
		API:       api,
		Navigator: &ui.ProgramNavigator{},
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "soundscope",
		Usage:    "Explore your Spotify listening habits from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
