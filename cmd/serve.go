package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/edubrasil/internal/media"
	"github.com/desertthunder/edubrasil/internal/player"
	"github.com/desertthunder/edubrasil/internal/server"
	"github.com/desertthunder/edubrasil/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve mounts the player and serves its API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if port := cmd.Int("port"); port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidArgument, port)
	} else if port > 0 {
		r.config.Server.Port = port
	}

	out := r.audio
	if cmd.Bool("mute") {
		out = media.NullOutput{}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := player.NotifierFunc(func(err error) {
		r.logger.Info("player notification", "message", err)
	})
	s, err := r.openSession(ctx, sessionOpts{Output: out, Notifier: notifier})
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	if err := s.widget.Dispatch(ctx, player.Mount{}); err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handle(http.MethodGet, "/healthz", server.Health(s.widget))
	router.Handler(server.NewAPI(server.APIOpts{
		Player:         s.widget,
		Tracks:         s.blobs,
		Brand:          r.config.Player.Brand,
		Subtitle:       r.config.Player.Subtitle,
		MaxUploadBytes: r.config.Server.MaxUploadMB << 20,
		Logger:         r.logger,
	}))

	return server.ListenAndServe(ctx, r.config.Server.Addr(), router, r.logger)
}
