// submodule cmd contains command definitions
package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the token store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles session lifecycle operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "demo",
						Usage: "Start a sandbox session without Spotify credentials",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear stored credentials and end the session",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show credential and profile state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Renew the access token using the stored refresh token",
				Action: r.AuthRefresh,
			},
		},
	}
}

func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"dash"},
		Usage:   "Launch the interactive listening dashboard",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "demo",
				Usage: "Run with fabricated data, no Spotify account required",
			},
		},
		Action: r.Dashboard,
	}
}

// demoCommand is shorthand for dashboard --demo
func demoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Launch the dashboard in sandbox mode",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.config.App.Demo = true
			return r.Dashboard(ctx, cmd)
		},
	}
}
