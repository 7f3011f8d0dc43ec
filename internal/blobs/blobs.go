// Package blobs stores uploaded tracks for the lifetime of one process and hands out blob:<uuid> references.
//
// References are revocable. Revoking removes the file. Closing the [Store] removes everything it created,
// so a reference persisted by an earlier process never resolves again.
package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/desertthunder/edubrasil/internal/shared"
)

// Scheme prefixes every reference handed out by a [Store].
const Scheme = "blob:"

var (
	ErrNotFound = errors.New("blob not found")
	ErrClosed   = errors.New("blob store closed")
)

// Recorder keeps a history of uploads. Implemented by repositories.UploadRepository.
type Recorder interface {
	Record(ctx context.Context, upload *models.Upload) error
	MarkRevoked(ctx context.Context, uri string) error
}

// Entry describes a live blob.
type Entry struct {
	URI       string
	Path      string
	Name      string
	MediaType string
	Size      int64
}

// Store keeps uploaded content on disk under a session directory.
type Store struct {
	mu       sync.Mutex
	dir      string
	owned    bool
	maxBytes int64
	entries  map[string]Entry
	recorder Recorder
	logger   *log.Logger
	closed   bool
}

// StoreOpts contains configuration options for creating a Store.
type StoreOpts struct {
	// Dir is where blobs are written. Empty creates a temporary directory that Close removes.
	Dir string
	// MaxBytes limits a single blob. Zero means unlimited.
	MaxBytes int64
	Recorder Recorder
	Logger   *log.Logger
}

// NewStore creates a Store.
func NewStore(opts StoreOpts) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	dir, owned := opts.Dir, false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "edubrasil-blobs-")
		if err != nil {
			return nil, fmt.Errorf("failed to create blob directory: %w", err)
		}
		dir, owned = tmp, true
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	return &Store{
		dir:      dir,
		owned:    owned,
		maxBytes: opts.MaxBytes,
		entries:  make(map[string]Entry),
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}, nil
}

// Dir returns the directory blobs are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Create copies r into a new blob and returns its reference.
func (s *Store) Create(ctx context.Context, name, mediaType string, r io.Reader) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", ErrClosed
	}

	id := shared.GenerateID()
	uri := Scheme + id
	path := filepath.Join(s.dir, id+strings.ToLower(filepath.Ext(name)))

	size, err := s.write(path, r)
	if err != nil {
		os.Remove(path)
		return "", err
	}

	entry := Entry{URI: uri, Path: path, Name: filepath.Base(name), MediaType: mediaType, Size: size}
	s.mu.Lock()
	s.entries[uri] = entry
	s.mu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, models.NewUpload(uri, entry.Name, mediaType, size)); err != nil {
			s.logger.Warn("failed to record upload", "uri", uri, "error", err)
		}
	}

	s.logger.Info("blob created", "uri", uri, "name", entry.Name, "size", size)
	return uri, nil
}

func (s *Store) write(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		return 0, fmt.Errorf("failed to write blob: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return 0, fmt.Errorf("%w: blob exceeds %d bytes", shared.ErrInvalidInput, s.maxBytes)
	}
	return n, f.Sync()
}

// Revoke deletes a blob. Revoking an unknown reference returns [ErrNotFound].
func (s *Store) Revoke(ctx context.Context, uri string) error {
	s.mu.Lock()
	entry, ok := s.entries[uri]
	delete(s.entries, uri)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uri)
	}

	if err := os.Remove(entry.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}

	if s.recorder != nil {
		if err := s.recorder.MarkRevoked(ctx, uri); err != nil {
			s.logger.Warn("failed to mark upload revoked", "uri", uri, "error", err)
		}
	}

	s.logger.Info("blob revoked", "uri", uri)
	return nil
}

// Resolve returns the file path behind a live reference.
func (s *Store) Resolve(uri string) (string, error) {
	entry, err := s.Lookup(uri)
	if err != nil {
		return "", err
	}
	return entry.Path, nil
}

// Lookup returns the [Entry] behind a live reference.
func (s *Store) Lookup(uri string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[uri]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return entry, nil
}

// IsTransient reports whether uri uses the blob scheme, whether or not it is still live.
func (s *Store) IsTransient(uri string) bool {
	return strings.HasPrefix(uri, Scheme)
}

// Len returns the number of live blobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close revokes every live blob and removes the directory if the store created it.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	uris := make([]string, 0, len(s.entries))
	for uri := range s.entries {
		uris = append(uris, uri)
	}
	s.mu.Unlock()

	var errs []error
	for _, uri := range uris {
		if err := s.Revoke(ctx, uri); err != nil {
			errs = append(errs, err)
		}
	}
	if s.owned {
		if err := os.RemoveAll(s.dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove blob directory: %w", err))
		}
	}
	return errors.Join(errs...)
}
