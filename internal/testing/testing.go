// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/edubrasil/internal/models"
)

// MediaCall is one call recorded by [FakeMedia].
type MediaCall struct {
	Method string
	Arg    string
}

func (c MediaCall) String() string {
	if c.Arg == "" {
		return c.Method
	}
	return c.Method + "(" + c.Arg + ")"
}

// FakeMedia is a test double for player.Media that records calls and lets tests fire notifications.
type FakeMedia struct {
	mu         sync.Mutex
	calls      []MediaCall
	duration   float64
	onProgress func(float64)
	onMetadata func(float64)
	LoadErr    error
	PlayErr    error

	// Durations is what Duration reports after loading each location.
	Durations map[string]float64
}

func (m *FakeMedia) record(method, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MediaCall{Method: method, Arg: arg})
}

func (m *FakeMedia) Load(location string) error {
	m.record("load", location)
	if m.LoadErr != nil {
		return m.LoadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = m.Durations[location]
	return nil
}

func (m *FakeMedia) Play() error {
	m.record("play", "")
	return m.PlayErr
}

func (m *FakeMedia) Pause() error {
	m.record("pause", "")
	return nil
}

func (m *FakeMedia) Seek(seconds float64) error {
	m.record("seek", fmt.Sprintf("%g", seconds))
	return nil
}

func (m *FakeMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *FakeMedia) OnProgress(fn func(float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress = fn
}

func (m *FakeMedia) OnMetadataReady(fn func(float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMetadata = fn
}

func (m *FakeMedia) Close() error {
	m.record("close", "")
	return nil
}

// FireProgress delivers a progress notification as the media clock would.
func (m *FakeMedia) FireProgress(position float64) {
	m.mu.Lock()
	fn := m.onProgress
	m.mu.Unlock()
	if fn != nil {
		fn(position)
	}
}

// FireMetadata delivers a metadata-ready notification.
func (m *FakeMedia) FireMetadata(duration float64) {
	m.mu.Lock()
	m.duration = duration
	fn := m.onMetadata
	m.mu.Unlock()
	if fn != nil {
		fn(duration)
	}
}

// Subscribers returns the callbacks registered last, so a test can fire them after they went stale.
func (m *FakeMedia) Subscribers() (progress, metadata func(float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onProgress, m.onMetadata
}

// Calls returns the recorded calls.
func (m *FakeMedia) Calls() []MediaCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MediaCall(nil), m.calls...)
}

// CallsOf returns the recorded calls with the given method.
func (m *FakeMedia) CallsOf(method string) []MediaCall {
	var out []MediaCall
	for _, c := range m.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (m *FakeMedia) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// FakeBlobs is a test double for player.Blobs keeping content in memory.
type FakeBlobs struct {
	mu      sync.Mutex
	next    int
	blobs   map[string][]byte
	Revoked []string
	Err     error
}

func (b *FakeBlobs) Create(ctx context.Context, name, mediaType string, r io.Reader) (string, error) {
	if b.Err != nil {
		return "", b.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blobs == nil {
		b.blobs = map[string][]byte{}
	}
	b.next++
	uri := fmt.Sprintf("blob:fake-%d", b.next)
	b.blobs[uri] = data
	return uri, nil
}

func (b *FakeBlobs) Revoke(ctx context.Context, uri string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[uri]; !ok {
		return errors.New("blob not found")
	}
	delete(b.blobs, uri)
	b.Revoked = append(b.Revoked, uri)
	return nil
}

func (b *FakeBlobs) Resolve(uri string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[uri]; !ok {
		return "", errors.New("blob not found")
	}
	return "/blobs/" + strings.TrimPrefix(uri, "blob:"), nil
}

func (b *FakeBlobs) IsTransient(uri string) bool {
	return strings.HasPrefix(uri, "blob:")
}

// Live returns the number of blobs not yet revoked.
func (b *FakeBlobs) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// MapStorage is a test double for player.Storage.
type MapStorage struct {
	mu     sync.Mutex
	Values map[string]string
	Err    error
}

func NewMapStorage(kv ...string) *MapStorage {
	s := &MapStorage{Values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		s.Values[kv[i]] = kv[i+1]
	}
	return s
}

func (s *MapStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	v, ok := s.Values[key]
	return v, ok, nil
}

func (s *MapStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Values[key] = value
	return nil
}

func (s *MapStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.Values, key)
	return nil
}

// RecordingNotifier collects notifications.
type RecordingNotifier struct {
	mu   sync.Mutex
	errs []error
}

func (n *RecordingNotifier) Notify(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
}

func (n *RecordingNotifier) Errors() []error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]error(nil), n.errs...)
}

// StaticInspector returns the same info for every location.
type StaticInspector struct {
	Info models.TrackInfo
	Err  error
}

func (s StaticInspector) Inspect(string) (models.TrackInfo, error) {
	return s.Info, s.Err
}

// AudioFile builds a [models.File] with the given declared type.
func AudioFile(name, mediaType, content string) models.File {
	return models.File{Name: name, MediaType: mediaType, Content: strings.NewReader(content)}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
