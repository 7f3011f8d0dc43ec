package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/edubrasil/internal/blobs"
	"github.com/desertthunder/edubrasil/internal/media"
	"github.com/desertthunder/edubrasil/internal/player"
	"github.com/desertthunder/edubrasil/internal/repositories"
	"github.com/desertthunder/edubrasil/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	audio  media.Output
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	// Audio is the device interactive commands play through. Defaults to the system speaker.
	Audio media.Output
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Audio == nil {
		opts.Audio = media.DeviceOutput{}
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		audio:  opts.Audio,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// app builds the root command. --config and --debug are accepted before any subcommand.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "edubrasil",
		Usage:    "Branded single-track music player",
		Version:  "0.1.0",
		Flags:    []cli.Flag{configFlag(), debugFlag()},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// loadConfig replaces the runner's config with the file named by --config.
//
// A missing file keeps the defaults unless --config was given explicitly.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		if cmd.IsSet("config") {
			return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		r.logger.Debug("no config file, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, fmt.Errorf("failed to load %s: %w", path, err)
	}
	r.config = config
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, playCommand, serveCommand, trackCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// session is one running player with the storage, blob store and audio output behind it.
type session struct {
	db      *sql.DB
	store   repositories.Store
	uploads *repositories.UploadRepository
	blobs   *blobs.Store
	widget  *player.Widget
}

type sessionOpts struct {
	Output   media.Output
	Notifier player.Notifier
}

// openSession wires the configured storage driver, the blob store and a speaker into a widget.
//
// The widget is not mounted.
func (r *Runner) openSession(ctx context.Context, opts sessionOpts) (*session, error) {
	s := &session{}
	fail := func(err error) (*session, error) {
		s.Close(ctx)
		return nil, err
	}

	var err error
	cfg := r.config
	if cfg.Storage.Driver == shared.StorageSQLite {
		if s.db, err = shared.OpenDatabase(ctx, cfg.Database); err != nil {
			return fail(fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err))
		}
		s.uploads = repositories.NewUploadRepository(s.db)
	}

	if s.store, err = repositories.OpenStore(ctx, cfg, s.db); err != nil {
		return fail(err)
	}

	blobOpts := blobs.StoreOpts{
		Dir:      cfg.Blobs.Dir,
		MaxBytes: cfg.Server.MaxUploadMB << 20,
		Logger:   shared.WithLogger(r.logger, "component", "blobs"),
	}
	if s.uploads != nil {
		blobOpts.Recorder = s.uploads
	}
	if s.blobs, err = blobs.NewStore(blobOpts); err != nil {
		return fail(fmt.Errorf("failed to create blob store: %w", err))
	}

	speaker := media.NewSpeaker(media.SpeakerOpts{
		Output:   opts.Output,
		Interval: cfg.Player.ProgressInterval.Duration,
		Logger:   shared.WithLogger(r.logger, "component", "speaker"),
	})

	s.widget, err = player.New(player.Options{
		Storage:           s.store,
		Media:             speaker,
		Blobs:             s.blobs,
		Inspector:         media.TagInspector{},
		Notifier:          opts.Notifier,
		Logger:            shared.WithLogger(r.logger, "component", "player"),
		DefaultTrack:      cfg.Player.DefaultTrack,
		StorageKey:        cfg.Player.StorageKey,
		Passphrase:        cfg.Admin.Passphrase,
		AttemptsPerMinute: cfg.Admin.AttemptsPerMinute,
	})
	if err != nil {
		speaker.Close()
		return fail(err)
	}
	return s, nil
}

// Close releases everything in reverse order of creation.
func (s *session) Close(ctx context.Context) error {
	var errs []error
	if s.widget != nil {
		errs = append(errs, s.widget.Close(ctx))
	}
	if s.blobs != nil {
		errs = append(errs, s.blobs.Close(ctx))
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
