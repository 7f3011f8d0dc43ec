package player

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultStorageKey is the storage key the chosen track is persisted under.
const DefaultStorageKey = "musicFile"

// Options contains the collaborators and settings of a [Widget].
//
// Storage, Media and Blobs are required. Passphrase is compared in plaintext.
type Options struct {
	Storage      Storage
	Media        Media
	Blobs        Blobs
	Inspector    Inspector
	Notifier     Notifier
	Logger       *log.Logger
	DefaultTrack string
	StorageKey   string
	Passphrase   string

	// AttemptsPerMinute throttles passphrase submissions. Zero disables throttling.
	AttemptsPerMinute int
}

// Widget owns the player [State] and applies actions to it one at a time.
type Widget struct {
	mu           sync.Mutex
	state        State
	storage      Storage
	media        Media
	blobs        Blobs
	inspector    Inspector
	notifier     Notifier
	logger       *log.Logger
	defaultTrack string
	storageKey   string
	passphrase   string
	limiter      *rate.Limiter

	// generation counts source activations. Media notifications carry the generation they were loaded under.
	generation uint64
}

// New creates a Widget. It subscribes to the media primitive's notifications each time it loads a track.
//
// The widget starts with no source; dispatch [Mount] to restore or select one.
func New(opts Options) (*Widget, error) {
	if opts.Storage == nil || opts.Media == nil || opts.Blobs == nil {
		return nil, fmt.Errorf("player: storage, media and blobs are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(error) {})
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}

	w := &Widget{
		state:        initialState(),
		storage:      opts.Storage,
		media:        opts.Media,
		blobs:        opts.Blobs,
		inspector:    opts.Inspector,
		notifier:     opts.Notifier,
		logger:       opts.Logger,
		defaultTrack: opts.DefaultTrack,
		storageKey:   opts.StorageKey,
		passphrase:   opts.Passphrase,
	}
	if opts.AttemptsPerMinute > 0 {
		every := time.Minute / time.Duration(opts.AttemptsPerMinute)
		w.limiter = rate.NewLimiter(rate.Every(every), opts.AttemptsPerMinute)
	}

	return w, nil
}

// Snapshot returns a copy of the current state.
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Dispatch applies action to the state and performs its side effects.
//
// User-facing failures are reported to the Notifier and also returned.
func (w *Widget) Dispatch(ctx context.Context, action Action) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := action.(Progress); !ok {
		w.logger.Debug("dispatch", "action", action.String())
	}

	switch a := action.(type) {
	case Mount:
		return w.mount(ctx)
	case TogglePlay:
		return w.togglePlay()
	case Seek:
		return w.seek(a.Position)
	case Progress:
		if a.Generation == w.generation {
			w.state.Position = a.Position
		}
		return nil
	case MetadataReady:
		if a.Generation == w.generation {
			w.state.Duration = a.Duration
		} else {
			w.logger.Debug("dropped stale metadata", "generation", a.Generation, "current", w.generation)
		}
		return nil
	case SelectFile:
		return w.selectFile(ctx, a.File)
	case EnterPassphrase:
		w.state.Access.Entry = a.Value
		return nil
	case SubmitPassphrase:
		return w.submitPassphrase()
	case Authenticate:
		w.state.Access.Entry = a.Value
		return w.submitPassphrase()
	case Reset:
		return w.reset(ctx)
	case Lock:
		return w.lock()
	default:
		return fmt.Errorf("%w: %v", ErrUnknownAction, action)
	}
}

// Close releases the active transient reference and the media primitive.
//
// The media primitive is closed without holding the state lock so that an in-flight notification can finish.
func (w *Widget) Close(ctx context.Context) error {
	w.mu.Lock()
	w.releaseTransient(ctx, w.state.Source.URI)
	w.mu.Unlock()

	return w.media.Close()
}

// notify reports a user-facing error and returns it.
func (w *Widget) notify(err error) error {
	w.logger.Warn("user notification", "error", err)
	w.notifier.Notify(err)
	return err
}
