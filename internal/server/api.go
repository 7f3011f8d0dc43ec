package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/edubrasil/internal/blobs"
	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/desertthunder/edubrasil/internal/player"
	"github.com/desertthunder/edubrasil/internal/shared"
)

// uploadField is the multipart form field carrying the track.
const uploadField = "file"

// Player is the widget surface the API drives.
type Player interface {
	Dispatch(ctx context.Context, action player.Action) error
	Snapshot() player.State
}

// Tracks looks up uploaded tracks for streaming. Implemented by [blobs.Store].
type Tracks interface {
	Lookup(uri string) (blobs.Entry, error)
}

// APIOpts contains configuration options for creating an API.
type APIOpts struct {
	Player   Player
	Tracks   Tracks
	Brand    string
	Subtitle string
	// MaxUploadBytes limits the upload request body. Zero means unlimited.
	MaxUploadBytes int64
	Logger         *log.Logger
}

// API serves the player widget as JSON.
type API struct {
	mux       *http.ServeMux
	player    Player
	tracks    Tracks
	brand     string
	subtitle  string
	maxUpload int64
	logger    *log.Logger
}

var _ Handler = (*API)(nil)

// NewAPI creates an API and registers its routes on an internal mux.
func NewAPI(opts APIOpts) *API {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	a := &API{
		mux:       http.NewServeMux(),
		player:    opts.Player,
		tracks:    opts.Tracks,
		brand:     opts.Brand,
		subtitle:  opts.Subtitle,
		maxUpload: opts.MaxUploadBytes,
		logger:    opts.Logger,
	}

	a.mux.HandleFunc("GET /api/state", a.state)
	a.mux.HandleFunc("POST /api/toggle", a.toggle)
	a.mux.HandleFunc("POST /api/seek", a.seek)
	a.mux.HandleFunc("POST /api/upload", a.upload)
	a.mux.HandleFunc("POST /api/admin/passphrase", a.passphrase)
	a.mux.HandleFunc("POST /api/admin/reset", a.reset)
	a.mux.HandleFunc("POST /api/admin/lock", a.lock)
	a.mux.HandleFunc("GET /api/tracks/{ref}", a.track)
	return a
}

// Routes returns the HTTP routes this handler serves.
func (a *API) Routes() []string {
	return []string{"/api/"}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// StateResponse is the body of every successful player route.
type StateResponse struct {
	player.State
	Brand       string  `json:"brand"`
	Subtitle    string  `json:"subtitle,omitempty"`
	TimeLabel   string  `json:"time_label"`
	ButtonLabel string  `json:"button_label"`
	Remaining   float64 `json:"remaining"`
	CanUpload   bool    `json:"can_upload"`
	ShowGate    bool    `json:"show_gate"`
	StreamURL   string  `json:"stream_url,omitempty"`
}

func (a *API) respond(w http.ResponseWriter) {
	s := a.player.Snapshot()
	resp := StateResponse{
		State:       s,
		Brand:       a.brand,
		Subtitle:    a.subtitle,
		TimeLabel:   s.TimeLabel(),
		ButtonLabel: s.ButtonLabel(),
		Remaining:   max(0, s.Remaining()),
		CanUpload:   s.CanUpload(),
		ShowGate:    s.ShowGate(),
	}
	if ref, ok := strings.CutPrefix(s.Source.URI, blobs.Scheme); ok {
		resp.StreamURL = "/api/tracks/" + ref
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) state(w http.ResponseWriter, r *http.Request) {
	a.respond(w)
}

func (a *API) toggle(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, player.TogglePlay{})
}

func (a *API) seek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position *float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Position == nil {
		a.fail(w, fmt.Errorf("%w: expected {\"position\": seconds}", shared.ErrInvalidInput))
		return
	}
	a.apply(w, r, player.Seek{Position: *body.Position})
}

func (a *API) passphrase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.fail(w, fmt.Errorf("%w: expected {\"passphrase\": \"...\"}", shared.ErrInvalidInput))
		return
	}
	a.apply(w, r, player.Authenticate{Value: body.Passphrase})
}

func (a *API) reset(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, player.Reset{})
}

func (a *API) lock(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, player.Lock{})
}

// upload reads the first multipart part named "file" and selects it. The part's own Content-Type is the
// declared media type.
func (a *API) upload(w http.ResponseWriter, r *http.Request) {
	if a.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		a.fail(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		a.fail(w, err)
		return
	}
	defer part.Close()

	file := models.File{
		Name:      part.FileName(),
		MediaType: part.Header.Get("Content-Type"),
		Content:   part,
	}
	a.logger.Debug("upload received", "name", file.Name, "type", file.MediaType)
	a.apply(w, r, player.SelectFile{File: file})
}

func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing %q part", shared.ErrMissingArgument, uploadField)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		if part.FormName() == uploadField {
			return part, nil
		}
		part.Close()
	}
}

// track streams an uploaded blob with range support.
func (a *API) track(w http.ResponseWriter, r *http.Request) {
	if a.tracks == nil {
		a.fail(w, blobs.ErrNotFound)
		return
	}

	entry, err := a.tracks.Lookup(blobs.Scheme + r.PathValue("ref"))
	if err != nil {
		a.fail(w, err)
		return
	}

	f, err := os.Open(entry.Path)
	if err != nil {
		a.fail(w, fmt.Errorf("%w: %v", blobs.ErrNotFound, err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		a.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", entry.MediaType)
	http.ServeContent(w, r, entry.Name, info.ModTime(), f)
}

func (a *API) apply(w http.ResponseWriter, r *http.Request, action player.Action) {
	if err := a.player.Dispatch(r.Context(), action); err != nil {
		a.fail(w, err)
		return
	}
	a.respond(w)
}

func (a *API) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, player.ErrInvalidFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, player.ErrWrongPassphrase), errors.Is(err, player.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, player.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, player.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, player.ErrNoSource):
		return http.StatusConflict
	case errors.Is(err, blobs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
