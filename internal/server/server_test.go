package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jcolasacco/folio/pkg/config"
	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/site"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// newTestServer serves a public directory with three photos and no music.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, configure func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	public := t.TempDir()
	writePNG(t, filepath.Join(public, "photos", "a.png"), 400, 300)
	writePNG(t, filepath.Join(public, "photos", "b.png"), 300, 300)
	writePNG(t, filepath.Join(public, "photos", "c.png"), 600, 300)

	cfg := config.Default()
	cfg.Server.Public = public
	if configure != nil {
		configure(&cfg)
	}
	s, err := New(Deps{Config: cfg, Content: site.Default()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = ""
	_, err := New(Deps{Config: cfg})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New() error = %v, want INVALID_CONFIG", err)
	}
}

func TestPages(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", `href="/photo"`},
		{"/photo", `data-ws="/ws/gallery"`},
		{"/audio", "unreleased songs are currently disabled"},
		{"/code", "scatter sync"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			if !strings.Contains(string(body), tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
		})
	}
}

func TestStaticAndMedia(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/static/gallery.js", "/static/site.css", "/photos/a.png"} {
		resp, _ := get(t, ts.URL+path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestAPIPhotos(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/photos")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var metas []gallery.Meta
	if err := json.Unmarshal(body, &metas); err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 {
		t.Fatalf("got %d metas, want 3", len(metas))
	}
	ratios := map[string]float64{}
	for _, m := range metas {
		ratios[m.FullURL] = m.AspectRatio
	}
	want := map[string]float64{"/photos/a.png": 4.0 / 3.0, "/photos/b.png": 1, "/photos/c.png": 2}
	for url, ar := range want {
		if got := ratios[url]; got < ar-1e-9 || got > ar+1e-9 {
			t.Errorf("ratio of %s = %v, want %v", url, got, ar)
		}
	}
}

func TestAPIRows(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/photos/rows?width=1000")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got rowsResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Width != 1000 {
		t.Errorf("width = %v, want 1000", got.Width)
	}
	if len(got.Rows) != 1 || len(got.Rows[0].Items) != 3 {
		t.Fatalf("rows = %+v, want one row of three", got.Rows)
	}
	if got.Rows[0].Centered {
		t.Error("overfull row should be justified")
	}
	if w := got.Rows[0].Width(20); w < 999.9 || w > 1000.1 {
		t.Errorf("row width = %v, want 1000", w)
	}
	if len(got.Tiles) != 3 {
		t.Errorf("got %d tiles, want 3", len(got.Tiles))
	}
	if got.Height <= 0 {
		t.Errorf("height = %v, want > 0", got.Height)
	}
}

func TestAPIRowsErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
		code  errors.Code
	}{
		{"missing width", "", errors.ErrCodeInvalidInput},
		{"negative width", "?width=-5", errors.ErrCodeInvalidInput},
		{"not a number", "?width=wide", errors.ErrCodeInvalidInput},
		{"negative gap", "?width=800&gap=-1", errors.ErrCodeInvalidOptions},
		{"zero target", "?width=800&target=0", errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/photos/rows"+tt.query)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			var e apiError
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatal(err)
			}
			if e.Error != tt.code {
				t.Errorf("code = %q, want %q", e.Error, tt.code)
			}
		})
	}
}

// lightboxBody mirrors the lightbox state as it appears on the wire.
type lightboxBody struct {
	Phase   string       `json:"phase"`
	Src     string       `json:"src"`
	Box     gallery.Size `json:"box"`
	Natural gallery.Size `json:"natural"`
	Labels  struct {
		Aperture string `json:"aperture"`
		Shutter  string `json:"shutter"`
		ISO      string `json:"iso"`
	} `json:"labels"`
	Broken bool `json:"broken"`
}

func TestAPILightbox(t *testing.T) {
	s, ts := newTestServer(t)
	if err := os.WriteFile(filepath.Join(s.catalog.PhotoDir(), "broken.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		query   string
		box     gallery.Size
		natural gallery.Size
		broken  bool
	}{
		{"fits", "?src=/photos/a.png&vw=1000&vh=800", gallery.Size{Width: 400, Height: 300}, gallery.Size{Width: 400, Height: 300}, false},
		{"scaled down", "?src=/photos/c.png&vw=500&vh=800", gallery.Size{Width: 460, Height: 230}, gallery.Size{Width: 600, Height: 300}, false},
		{"unreadable file", "?src=/photos/broken.png&vw=1000&vh=800", gallery.Size{Width: 920, Height: 720}, gallery.Size{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/photos/lightbox"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			var got lightboxBody
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatal(err)
			}
			if got.Phase != "sized" {
				t.Errorf("phase = %q, want sized", got.Phase)
			}
			if got.Box != tt.box {
				t.Errorf("box = %+v, want %+v", got.Box, tt.box)
			}
			if got.Natural != tt.natural {
				t.Errorf("natural = %+v, want %+v", got.Natural, tt.natural)
			}
			if got.Broken != tt.broken {
				t.Errorf("broken = %v, want %v", got.Broken, tt.broken)
			}
			if got.Labels.ISO != "ISO —" {
				t.Errorf("iso label = %q, want unknown", got.Labels.ISO)
			}
		})
	}
}

func TestAPILightboxErrors(t *testing.T) {
	_, ts := newTestServer(t)

	for _, q := range []string{
		"?vw=1000&vh=800",
		"?src=/photos/a.png&vw=x&vh=800",
		"?src=/photos/a.png&vw=1000",
		"?src=/photos/../secret&vw=1000&vh=800",
	} {
		resp, body := get(t, ts.URL+"/api/photos/lightbox"+q)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400 (%s)", q, resp.StatusCode, body)
		}
	}
}

func TestAPILightboxOnlyOpensCatalogPhotos(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("secret"))
	}))
	defer upstream.Close()

	_, ts := newTestServerWith(t, func(cfg *config.Config) { cfg.Server.Remote = true })

	for _, src := range []string{
		upstream.URL + "/admin/secret",
		"/photos/nope.png",
		"/about",
	} {
		q := url.Values{"src": {src}, "vw": {"1000"}, "vh": {"800"}}
		resp, body := get(t, ts.URL+"/api/photos/lightbox?"+q.Encode())
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404 (%s)", src, resp.StatusCode, body)
			continue
		}
		var e apiError
		if err := json.Unmarshal(body, &e); err != nil {
			t.Fatal(err)
		}
		if e.Error != errors.ErrCodeNotFound {
			t.Errorf("%s: code = %q, want NOT_FOUND", src, e.Error)
		}
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("upstream received %d requests, want 0", n)
	}
}

func TestAPITracksAndCovers(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/api/tracks")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tracks status = %d: %s", resp.StatusCode, body)
	}
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("tracks = %s, want []", body)
	}

	resp, body = get(t, ts.URL+"/covers/unknown")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cover status = %d, want 404", resp.StatusCode)
	}
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatal(err)
	}
	if e.Error != errors.ErrCodeCoverNotFound {
		t.Errorf("code = %q, want COVER_NOT_FOUND", e.Error)
	}
}

func TestAPIProjects(t *testing.T) {
	_, ts := newTestServer(t)

	_, body := get(t, ts.URL+"/api/projects")
	var projects []site.Project
	if err := json.Unmarshal(body, &projects); err != nil {
		t.Fatal(err)
	}
	if len(projects) != len(site.Default().Projects) {
		t.Errorf("got %d projects, want %d", len(projects), len(site.Default().Projects))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidPath, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeFileNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeCoverNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewAPIError(t *testing.T) {
	e := newAPIError(io.EOF)
	if e.Error != errors.ErrCodeInternal || e.Message != "EOF" {
		t.Errorf("newAPIError(EOF) = %+v", e)
	}
	e = newAPIError(errors.New(errors.ErrCodeInvalidMessage, "bad %s", "frame"))
	if e.Error != errors.ErrCodeInvalidMessage || e.Message != "bad frame" {
		t.Errorf("newAPIError = %+v", e)
	}
}

func dialLive(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/gallery"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]json.RawMessage) bool) map[string]json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var frame map[string]json.RawMessage
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(frame) {
			return frame
		}
	}
}

func TestLiveGallery(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialLive(t, ts)

	if err := conn.WriteJSON(map[string]any{"type": "resize", "width": 1000, "vw": 1280, "vh": 800}); err != nil {
		t.Fatal(err)
	}
	frame := readUntil(t, conn, func(f map[string]json.RawMessage) bool {
		return string(f["loading"]) == "false"
	})
	var rows []gallery.Row
	if err := json.Unmarshal(frame["rows"], &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || len(rows[0].Items) != 3 {
		t.Fatalf("rows = %+v, want one row of three", rows)
	}

	if err := conn.WriteJSON(map[string]any{"type": "scroll", "top": 0, "height": 800}); err != nil {
		t.Fatal(err)
	}
	frame = readUntil(t, conn, func(f map[string]json.RawMessage) bool {
		var revealed []string
		json.Unmarshal(f["revealed"], &revealed)
		return len(revealed) == 3
	})

	if err := conn.WriteJSON(map[string]any{"type": "open", "src": "/photos/c.png", "vw": 1280, "vh": 800}); err != nil {
		t.Fatal(err)
	}
	frame = readUntil(t, conn, func(f map[string]json.RawMessage) bool {
		var lb lightboxBody
		json.Unmarshal(f["lightbox"], &lb)
		return lb.Phase == "sized"
	})
	var lb lightboxBody
	if err := json.Unmarshal(frame["lightbox"], &lb); err != nil {
		t.Fatal(err)
	}
	if lb.Src != "/photos/c.png" || lb.Box != (gallery.Size{Width: 600, Height: 300}) {
		t.Errorf("lightbox = %+v", lb)
	}

	if err := conn.WriteJSON(map[string]any{"type": "close"}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(f map[string]json.RawMessage) bool {
		var lb lightboxBody
		json.Unmarshal(f["lightbox"], &lb)
		return lb.Phase == "closed"
	})
}

func TestLiveGalleryRejectsBadMessages(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialLive(t, ts)

	tests := []string{
		`{"type":"zoom"}`,
		`{"type":"open"}`,
		`{"type":"resize","width":-1}`,
		`not json`,
	}
	for _, msg := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatal(err)
		}
		frame := readUntil(t, conn, func(f map[string]json.RawMessage) bool {
			_, ok := f["error"]
			return ok
		})
		if got := string(frame["error"]); got != `"INVALID_MESSAGE"` {
			t.Errorf("%s: error = %s, want INVALID_MESSAGE", msg, got)
		}
	}
}

func TestLiveGalleryReportsCatalogFailure(t *testing.T) {
	s, ts := newTestServer(t)
	photos := s.catalog.PhotoDir()
	if err := os.RemoveAll(photos); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(photos, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		conn := dialLive(t, ts)
		frame := readUntil(t, conn, func(f map[string]json.RawMessage) bool {
			_, ok := f["error"]
			return ok
		})
		if got := string(frame["error"]); got != `"INTERNAL_ERROR"` {
			t.Fatalf("error = %s, want INTERNAL_ERROR", got)
		}
		conn.Close()
	}
}

func TestCloseEndsLiveSessions(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialLive(t, ts)

	deadline := time.Now().Add(5 * time.Second)
	for {
		s.sessionsMu.Lock()
		n := len(s.sessions)
		s.sessionsMu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sessions = %d, want 1", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.closeSessions()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
