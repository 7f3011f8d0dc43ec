package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/edubrasil/internal/media"
	"github.com/desertthunder/edubrasil/internal/shared"
	"github.com/urfave/cli/v3"
)

// demoTone is the generated default track: thirty seconds of A4.
const (
	demoSeconds    = 30
	demoFrequency  = 440
	demoSampleRate = 44100
)

// Setup creates the config file when missing, initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
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
	r.config = config

	if config.Storage.Driver == shared.StorageSQLite {
		r.logger.Info("initializing database", "path", config.Database.Path)

		db, err := shared.OpenDatabase(ctx, config.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		version, err := shared.CurrentVersion(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		r.logger.Infof("setup complete for database: %v (schema %d)", config.Database.Path, version)
	} else {
		r.logger.Info("no database needed", "driver", config.Storage.Driver)
	}

	if demo := cmd.String("demo"); demo != "" {
		if err := media.WriteTone(demo, demoSeconds, demoFrequency, demoSampleRate); err != nil {
			return fmt.Errorf("failed to write demo track: %w", err)
		}
		r.logger.Info("demo track written", "path", demo)
		if demo != config.Player.DefaultTrack {
			r.writePlain("Set player.default_track = %q in %s to play the demo track\n", demo, configPath)
		}
	}

	return r.writePlain("✓ Setup complete\n")
}
