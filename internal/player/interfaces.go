package player

import (
	"context"
	"io"

	"github.com/desertthunder/edubrasil/internal/models"
)

// Storage is the persistent key-value store used for the chosen track.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Media is the playback primitive. Play, Pause and Seek are fire-and-forget from the widget's point of view.
//
// Notifications may arrive on any goroutine but must not be delivered synchronously from within a call
// the widget makes into Media. A track's notifications go to the callbacks registered before it was
// loaded. Duration may report 0 until the metadata notification arrives.
type Media interface {
	Load(location string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	Duration() float64
	OnProgress(fn func(position float64))
	OnMetadataReady(fn func(duration float64))
	Close() error
}

// Blobs derives transient, revocable references from uploaded content.
type Blobs interface {
	Create(ctx context.Context, name, mediaType string, r io.Reader) (uri string, err error)
	Revoke(ctx context.Context, uri string) error
	Resolve(uri string) (location string, err error)
	IsTransient(uri string) bool
}

// Inspector reads display metadata from a track location.
type Inspector interface {
	Inspect(location string) (models.TrackInfo, error)
}

// Notifier surfaces user-facing errors.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) { f(err) }
