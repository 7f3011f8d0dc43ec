// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "debug",
		Usage: "Log at debug level",
	}
}

// setupCommand writes the config file, migrates the database and optionally writes a demo track.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "demo",
				Usage: "Write a generated WAV tone to this path for use as the default track",
			},
		},
		Action: r.Setup,
	}
}

// playCommand runs the terminal player.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Open the interactive terminal player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/edubrasil-tui.log",
			},
		},
		Before: r.loadConfig,
		Action: r.Play,
	}
}

// serveCommand exposes the player over HTTP.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the player API over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "mute",
				Usage: "Do not open the audio device",
			},
		},
		Before: r.loadConfig,
		Action: r.Serve,
	}
}

// trackCommand inspects and resets the persisted track choice.
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "track",
		Usage:  "Persisted track operations",
		Before: r.loadConfig,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the persisted track and recent uploads",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of uploads to list",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TrackShow,
			},
			{
				Name:  "reset",
				Usage: "Restore the default track through the admin gate",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "passphrase",
						Usage:    "Admin passphrase",
						Required: true,
					},
				},
				Action: r.TrackReset,
			},
		},
	}
}
