package player

import (
	"context"
	"fmt"

	"github.com/desertthunder/edubrasil/internal/models"
)

// mount restores the persisted source or falls back to the default asset.
func (w *Widget) mount(ctx context.Context) error {
	source := models.Source{Kind: models.SourceDefault, URI: w.defaultTrack}
	if w.defaultTrack == "" {
		source.Kind = models.SourceNone
	}

	saved, ok, err := w.storage.Get(ctx, w.storageKey)
	switch {
	case err != nil:
		w.logger.Warn("failed to read persisted track, using default", "key", w.storageKey, "error", err)
	case ok && saved != "":
		source = models.Source{Kind: models.SourcePersisted, URI: saved}
	}

	w.activate(source)
	return nil
}

// selectFile validates an uploaded file and makes it the active, persisted source.
func (w *Widget) selectFile(ctx context.Context, file models.File) error {
	if w.state.Locked {
		return ErrLocked
	}
	if !file.IsAudio() {
		return w.notify(ErrInvalidFile)
	}

	uri, err := w.blobs.Create(ctx, file.Name, file.MediaType, file.Content)
	if err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}

	w.releaseTransient(ctx, w.state.Source.URI)
	w.activate(models.Source{Kind: models.SourceUpload, URI: uri})

	if err := w.storage.Set(ctx, w.storageKey, uri); err != nil {
		w.logger.Warn("failed to persist track", "key", w.storageKey, "uri", uri, "error", err)
	}
	return nil
}

// reset restores the default asset, forgets the persisted track and reopens the gate.
func (w *Widget) reset(ctx context.Context) error {
	if !w.state.Access.PanelVisible {
		return ErrAdminRequired
	}

	w.releaseTransient(ctx, w.state.Source.URI)
	w.activate(models.Source{Kind: models.SourceDefault, URI: w.defaultTrack})

	if err := w.storage.Remove(ctx, w.storageKey); err != nil {
		w.logger.Warn("failed to remove persisted track", "key", w.storageKey, "error", err)
	}
	w.state.Access.Correct = true
	return nil
}

// activate switches the source, resets the timeline and loads the media primitive.
//
// Changing the source stops playback. Load failures are logged and leave the source active. Every call starts
// a new generation, so notifications still in flight for the previous track are ignored.
func (w *Widget) activate(source models.Source) {
	if source.URI == "" {
		source.Kind = models.SourceNone
	}
	w.generation++

	w.state.Source = source
	w.state.Info = models.TrackInfo{}
	w.state.Playing = false
	w.state.Position = 0
	w.state.Duration = 0

	if source.Empty() {
		return
	}

	location, err := w.locate(source.URI)
	if err != nil {
		w.logger.Warn("track source cannot be resolved", "uri", source.URI, "error", err)
		return
	}

	w.subscribe(w.generation)
	if err := w.media.Load(location); err != nil {
		w.logger.Warn("failed to load track", "uri", source.URI, "error", err)
		return
	}
	w.state.Duration = w.media.Duration()

	if w.inspector != nil {
		if info, err := w.inspector.Inspect(location); err == nil {
			w.state.Info = info
		} else {
			w.logger.Debug("no track metadata", "uri", source.URI, "error", err)
		}
	}
}

// subscribe registers media callbacks that tag notifications with generation.
func (w *Widget) subscribe(generation uint64) {
	ctx := context.Background()
	w.media.OnProgress(func(position float64) {
		_ = w.Dispatch(ctx, Progress{Position: position, Generation: generation})
	})
	w.media.OnMetadataReady(func(duration float64) {
		_ = w.Dispatch(ctx, MetadataReady{Duration: duration, Generation: generation})
	})
}

// locate maps a source URI to something the media primitive can open.
func (w *Widget) locate(uri string) (string, error) {
	if w.blobs.IsTransient(uri) {
		return w.blobs.Resolve(uri)
	}
	return uri, nil
}

// releaseTransient revokes uri if it is a transient reference.
func (w *Widget) releaseTransient(ctx context.Context, uri string) {
	if uri == "" || !w.blobs.IsTransient(uri) {
		return
	}
	if err := w.blobs.Revoke(ctx, uri); err != nil {
		w.logger.Debug("failed to revoke transient track", "uri", uri, "error", err)
	}
}
