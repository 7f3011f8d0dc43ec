package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/edubrasil/internal/media"
	"github.com/desertthunder/edubrasil/internal/player"
	"github.com/desertthunder/edubrasil/internal/shared"
	"github.com/urfave/cli/v3"
)

// uploadView is the JSON shape of an upload history row.
type uploadView struct {
	URI       string     `json:"uri"`
	Filename  string     `json:"filename"`
	MediaType string     `json:"media_type"`
	Size      int64      `json:"size"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

type trackView struct {
	Key          string       `json:"key"`
	Persisted    string       `json:"persisted,omitempty"`
	DefaultTrack string       `json:"default_track"`
	Uploads      []uploadView `json:"uploads,omitempty"`
}

// TrackShow prints the persisted track reference and, with the sqlite driver, recent uploads.
func (r *Runner) TrackShow(ctx context.Context, cmd *cli.Command) error {
	if limit := cmd.Int("limit"); limit < 1 {
		return fmt.Errorf("%w: --limit must be positive, got %d", shared.ErrInvalidArgument, limit)
	}

	s, err := r.openSession(ctx, sessionOpts{Output: media.NullOutput{}})
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	view := trackView{Key: r.config.Player.StorageKey, DefaultTrack: r.config.Player.DefaultTrack}
	if value, ok, err := s.store.Get(ctx, view.Key); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	} else if ok {
		view.Persisted = value
	}

	if s.uploads != nil {
		uploads, err := s.uploads.List(cmd.Int("limit"))
		if err != nil {
			return err
		}
		for _, u := range uploads {
			view.Uploads = append(view.Uploads, uploadView{
				URI:       u.URI(),
				Filename:  u.Filename(),
				MediaType: u.MediaType(),
				Size:      u.Size(),
				CreatedAt: u.CreatedAt(),
				RevokedAt: u.RevokedAt(),
			})
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}

	r.writePlainHeader("Track")
	r.writePlain("Key:       %s\n", view.Key)
	if view.Persisted != "" {
		r.writePlain("Persisted: %s\n", view.Persisted)
	} else {
		r.writePlain("Persisted: (none)\n")
	}
	r.writePlain("Default:   %s\n", view.DefaultTrack)

	if len(view.Uploads) > 0 {
		r.writePlain("\nRecent uploads:\n")
		for _, u := range view.Uploads {
			status := "live"
			if u.RevokedAt != nil {
				status = "revoked"
			}
			r.writePlain("  %s  %-24s %-12s %8d bytes  %s\n",
				u.CreatedAt.Local().Format(time.DateTime), u.Filename, u.MediaType, u.Size, status)
		}
	}
	return nil
}

// TrackReset performs the admin reset from the shell, going through the same gate as the player.
func (r *Runner) TrackReset(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, sessionOpts{Output: media.NullOutput{}})
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	for _, action := range []player.Action{
		player.Mount{},
		player.Authenticate{Value: cmd.String("passphrase")},
		player.Reset{},
	} {
		if err := s.widget.Dispatch(ctx, action); err != nil {
			return fmt.Errorf("%s: %w", action, err)
		}
	}

	return r.writePlain("✓ Persisted track cleared, default restored: %s\n", r.config.Player.DefaultTrack)
}
