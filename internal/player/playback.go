package player

// togglePlay flips between playing and paused.
//
// Toggling with no active source does nothing and returns [ErrNoSource]. Media errors are logged only.
func (w *Widget) togglePlay() error {
	if w.state.Source.Empty() {
		return ErrNoSource
	}

	if w.state.Playing {
		if err := w.media.Pause(); err != nil {
			w.logger.Warn("pause failed", "uri", w.state.Source.URI, "error", err)
		}
	} else {
		if err := w.media.Play(); err != nil {
			w.logger.Warn("play failed", "uri", w.state.Source.URI, "error", err)
		}
	}
	w.state.Playing = !w.state.Playing
	return nil
}

// seek moves playback to position and updates the timeline without waiting for the next progress report.
func (w *Widget) seek(position float64) error {
	if w.state.Source.Empty() {
		return ErrNoSource
	}

	if position < 0 || position != position {
		position = 0
	}
	if w.state.Duration > 0 && position > w.state.Duration {
		position = w.state.Duration
	}

	if err := w.media.Seek(position); err != nil {
		w.logger.Warn("seek failed", "position", position, "error", err)
	}
	w.state.Position = position
	return nil
}
