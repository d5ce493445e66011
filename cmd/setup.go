package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/soundscope/internal/shared"
	"github.com/desertthunder/soundscope/internal/store"
	"github.com/urfave/cli/v3"
)

// Setup creates the configuration file and initializes the token store.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("using existing config", "path", configPath)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing token store", "backend", config.Store.Backend, "path", config.Store.Path)

	st, err := store.Open(config.Store.Backend, config.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}
	defer st.Close()

	r.config = config

	r.writePlain("✓ Setup complete\n")
	r.writePlain("  Config: %s\n", configPath)
	r.writePlain("  Store: %s (%s)\n", config.Store.Backend, config.Store.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Add your Spotify client_id and client_secret to %s\n", configPath)
	r.writePlain("2. Run 'soundscope auth login' to authenticate\n")
	r.writePlain("3. Run 'soundscope dashboard' to explore your library\n")

	return nil
}
