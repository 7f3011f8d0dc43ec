package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/edubrasil/internal/blobs"
	"github.com/desertthunder/edubrasil/internal/player"
	th "github.com/desertthunder/edubrasil/internal/testing"
)

type apiFixture struct {
	handler http.Handler
	widget  *player.Widget
	media   *th.FakeMedia
	store   *blobs.Store
}

func newAPIFixture(t *testing.T, defaultTrack string, maxUpload int64) *apiFixture {
	t.Helper()

	store, err := blobs.NewStore(blobs.StoreOpts{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })

	media := &th.FakeMedia{}
	w, err := player.New(player.Options{
		Storage:      th.NewMapStorage(),
		Media:        media,
		Blobs:        store,
		DefaultTrack: defaultTrack,
		Passphrase:   "secret",
	})
	if err != nil {
		t.Fatalf("player.New failed: %v", err)
	}
	if err := w.Dispatch(context.Background(), player.Mount{}); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	router := NewBasicRouter()
	router.Handler(NewAPI(APIOpts{
		Player:         w,
		Tracks:         store,
		Brand:          "Edu Brasil!",
		MaxUploadBytes: maxUpload,
	}))
	return &apiFixture{handler: router, widget: w, media: media, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func (f *apiFixture) postJSON(t *testing.T, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	return f.do(t, http.MethodPost, path, strings.NewReader(body), "application/json")
}

func (f *apiFixture) upload(t *testing.T, field, name, mediaType, content string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	h.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	return f.do(t, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType())
}

func nested(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

func TestAPI(t *testing.T) {
	t.Run("state", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 0)

		rec, body := f.do(t, http.MethodGet, "/api/state", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body["brand"] != "Edu Brasil!" || body["button_label"] != "Play" || body["time_label"] != "0:00 / 0:00" {
			t.Errorf("unexpected state %v", body)
		}
		if nested(body, "source", "kind") != "default" || nested(body, "source", "uri") != "./music.mp3" {
			t.Errorf("unexpected source %v", body["source"])
		}
		if body["can_upload"] != true || body["show_gate"] != false {
			t.Errorf("unexpected flags %v", body)
		}
	})

	t.Run("toggle and seek", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 0)
		f.media.FireMetadata(60)

		rec, body := f.do(t, http.MethodPost, "/api/toggle", nil, "")
		if rec.Code != http.StatusOK || body["playing"] != true || body["button_label"] != "Pause" {
			t.Errorf("expected playing, got %d %v", rec.Code, body)
		}

		rec, body = f.postJSON(t, "/api/seek", `{"position": 90}`)
		if rec.Code != http.StatusOK || body["position"] != 60.0 {
			t.Errorf("expected clamped position 60, got %d %v", rec.Code, body)
		}

		rec, _ = f.postJSON(t, "/api/seek", `{"pos": 1}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for missing position, got %d", rec.Code)
		}
	})

	t.Run("toggle without source", func(t *testing.T) {
		f := newAPIFixture(t, "", 0)

		rec, body := f.do(t, http.MethodPost, "/api/toggle", nil, "")
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
		if body["error"] != player.ErrNoSource.Error() {
			t.Errorf("unexpected error body %v", body)
		}
	})

	t.Run("upload and stream", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 0)

		rec, body := f.upload(t, "file", "single.mp3", "audio/mpeg", "ID3 fake audio")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if nested(body, "source", "kind") != "upload" {
			t.Errorf("expected upload source, got %v", body["source"])
		}

		streamURL, _ := body["stream_url"].(string)
		if !strings.HasPrefix(streamURL, "/api/tracks/") {
			t.Fatalf("expected stream url, got %q", streamURL)
		}

		rec, _ = f.do(t, http.MethodGet, streamURL, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 streaming track, got %d", rec.Code)
		}
		if rec.Body.String() != "ID3 fake audio" {
			t.Errorf("unexpected track body %q", rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
			t.Errorf("expected audio/mpeg, got %q", ct)
		}
	})

	t.Run("upload rejections", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 1024)

		tc := []struct {
			name   string
			field  string
			file   string
			typ    string
			data   string
			status int
		}{
			{name: "not audio", field: "file", file: "cover.png", typ: "image/png", data: "png", status: http.StatusUnsupportedMediaType},
			{name: "missing part", field: "other", file: "song.mp3", typ: "audio/mpeg", data: "mp3", status: http.StatusBadRequest},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				rec, body := f.upload(t, tt.field, tt.file, tt.typ, tt.data)
				if rec.Code != tt.status {
					t.Errorf("expected %d, got %d: %v", tt.status, rec.Code, body)
				}
			})
		}

		rec, _ := f.upload(t, "file", "long.mp3", "audio/mpeg", strings.Repeat("x", 4096))
		if rec.Code < http.StatusBadRequest {
			t.Errorf("expected oversized upload to fail, got %d", rec.Code)
		}
		if f.widget.Snapshot().Source.Kind.String() != "default" {
			t.Error("source should be unchanged after rejected uploads")
		}
	})

	t.Run("admin flow", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 0)

		rec, _ := f.do(t, http.MethodPost, "/api/admin/reset", nil, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403 before unlocking, got %d", rec.Code)
		}

		rec, _ = f.postJSON(t, "/api/admin/passphrase", `{"passphrase": "guess"}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403 for wrong passphrase, got %d", rec.Code)
		}
		_, body := f.do(t, http.MethodGet, "/api/state", nil, "")
		if body["show_gate"] != true {
			t.Errorf("expected gate shown, got %v", body)
		}

		rec, body = f.postJSON(t, "/api/admin/passphrase", `{"passphrase": "secret"}`)
		if rec.Code != http.StatusOK || nested(body, "access", "panel_visible") != true {
			t.Fatalf("expected admin panel, got %d %v", rec.Code, body)
		}

		f.upload(t, "file", "single.mp3", "audio/mpeg", "audio")
		rec, body = f.do(t, http.MethodPost, "/api/admin/reset", nil, "")
		if rec.Code != http.StatusOK || nested(body, "source", "kind") != "default" {
			t.Errorf("expected default after reset, got %d %v", rec.Code, body)
		}
		if f.store.Len() != 0 {
			t.Errorf("expected uploaded blob revoked, %d left", f.store.Len())
		}

		rec, body = f.do(t, http.MethodPost, "/api/admin/lock", nil, "")
		if rec.Code != http.StatusOK || body["locked"] != true || body["can_upload"] != false {
			t.Errorf("expected locked, got %d %v", rec.Code, body)
		}

		rec, _ = f.upload(t, "file", "late.mp3", "audio/mpeg", "audio")
		if rec.Code != http.StatusLocked {
			t.Errorf("expected 423 after lock, got %d", rec.Code)
		}
	})

	t.Run("concurrent passphrase submissions", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 0)

		entries := []string{"secret", "guess"}
		codes := make([]int, 40)
		var wg sync.WaitGroup
		for i := range codes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				body := fmt.Sprintf(`{"passphrase": %q}`, entries[i%2])
				req := httptest.NewRequest(http.MethodPost, "/api/admin/passphrase", strings.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				rec := httptest.NewRecorder()
				f.handler.ServeHTTP(rec, req)
				codes[i] = rec.Code
			}(i)
		}
		wg.Wait()

		for i, code := range codes {
			want := http.StatusOK
			if entries[i%2] == "guess" {
				want = http.StatusForbidden
			}
			if code != want {
				t.Errorf("request %d with %q: expected %d, got %d", i, entries[i%2], want, code)
			}
		}
	})

	t.Run("unknown track", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 0)

		rec, _ := f.do(t, http.MethodGet, "/api/tracks/nope", nil, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		f := newAPIFixture(t, "./music.mp3", 0)

		rec, _ := f.do(t, http.MethodPost, "/api/state", nil, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}
