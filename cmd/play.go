package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/edubrasil/internal/shared"
	"github.com/desertthunder/edubrasil/internal/ui"
	"github.com/urfave/cli/v3"
)

// Play launches the interactive terminal player.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	notices := ui.NewNotices(8)
	s, err := r.openSession(ctx, sessionOpts{Output: r.audio, Notifier: notices})
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	model := ui.NewModel(ctx, ui.Options{
		Player:   s.widget,
		Notices:  notices,
		Brand:    r.config.Player.Brand,
		Subtitle: r.config.Player.Subtitle,
		Refresh:  r.config.Player.ProgressInterval.Duration,
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
