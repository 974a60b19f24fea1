package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Session: config.SessionConfig{TTL: time.Hour},
		Preview: config.PreviewConfig{Scale: 1.5, Workers: 1, MaxSize: 256, Timeout: time.Second},
		Upload:  config.UploadConfig{MaxBytes: 1 << 20, RateLimit: 100},
	}
	s := NewServer(cfg, 0, "127.0.0.1", "test-secret")
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// client replays the session cookie the server hands out
type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	c.handler.ServeHTTP(recorder, req)
	if cookies := recorder.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	return recorder
}

func (c *client) json(method, path, body string) map[string]any {
	c.t.Helper()
	recorder := c.do(method, path, "application/json", []byte(body))
	if recorder.Code != http.StatusOK {
		c.t.Fatalf("%s %s: expected 200, got %d: %s", method, path, recorder.Code, recorder.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &out); err != nil {
		c.t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	s := testServer(t)

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest("GET", "/api/v1/health", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
	if recorder.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected security headers")
	}
}

func TestSessionCookieIsIssued(t *testing.T) {
	s := testServer(t)
	c := &client{t: t, handler: s.Router()}

	first := c.json("GET", "/api/v1/session", "")
	if len(c.cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	second := c.json("GET", "/api/v1/session", "")
	if first["session_id"] != second["session_id"] {
		t.Error("expected the cookie to select the same session")
	}
}

func TestAuthorAndPreviewFlow(t *testing.T) {
	s := testServer(t)
	c := &client{t: t, handler: s.Router()}

	c.json("POST", "/api/v1/book/pages", `{"count": "2"}`)
	c.json("PUT", "/api/v1/book/pages/0/grid", `{"rows": 1, "cols": 2}`)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "cover.png")
	part.Write([]byte("\x89PNG\r\n\x1a\n"))
	writer.Close()
	recorder := c.do("PUT", "/api/v1/book/pages/0/cells/1/file", writer.FormDataContentType(), body.Bytes())
	if recorder.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", recorder.Code, recorder.Body.String())
	}

	var state struct {
		Pages []struct {
			Cells []struct {
				File *struct {
					URL string `json:"url"`
				} `json:"file"`
			} `json:"cells"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	file := state.Pages[0].Cells[1].File
	if file == nil {
		t.Fatal("expected uploaded file in cell 1")
	}

	recorder = c.do("GET", file.URL, "", nil)
	if recorder.Code != http.StatusOK || !strings.HasPrefix(recorder.Body.String(), "\x89PNG") {
		t.Errorf("expected uploaded bytes at %s, got %d", file.URL, recorder.Code)
	}

	if recorder := c.do("GET", "/api/v1/preview", "", nil); recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 before publishing, got %d", recorder.Code)
	}

	published := c.json("POST", "/api/v1/book/preview", "")
	if published["path"] != "/flipbook" {
		t.Errorf("unexpected publish response %v", published)
	}

	view := c.json("GET", "/api/v1/preview?viewport=1400", "")
	if view["page_count"] != float64(2) {
		t.Errorf("expected 2 published pages, got %v", view["page_count"])
	}

	jump := c.json("POST", "/api/v1/preview/navigate", `{"page": "2"}`)
	if jump["jump"] != true || jump["index"] != float64(1) {
		t.Errorf("unexpected jump %v", jump)
	}
}

func TestFilesAreSessionScoped(t *testing.T) {
	s := testServer(t)
	owner := &client{t: t, handler: s.Router()}
	owner.json("POST", "/api/v1/book/pages", `{"count": 1}`)
	blob := s.uploads.Put("someone-else", "a.png", "image/png", []byte("png"))

	recorder := owner.do("GET", blob.URL(), "", nil)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another session's file, got %d", recorder.Code)
	}
}

func TestFilesRequireSession(t *testing.T) {
	s := testServer(t)
	blob := s.uploads.Put("someone", "a.png", "image/png", []byte("png"))

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest("GET", blob.URL(), nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a session cookie, got %d", recorder.Code)
	}
	if len(recorder.Result().Cookies()) != 0 {
		t.Error("expected no session to be created")
	}
}

func TestSessionResetReleasesResources(t *testing.T) {
	s := testServer(t)
	c := &client{t: t, handler: s.Router()}
	status := c.json("GET", "/api/v1/session", "")
	id, _ := status["session_id"].(string)
	s.uploads.Put(id, "a.png", "image/png", []byte("png"))
	c.json("POST", "/api/v1/book/preview", "")

	c.json("DELETE", "/api/v1/session", "")

	if s.uploads.Count() != 0 {
		t.Errorf("expected uploads to be released, got %d", s.uploads.Count())
	}
	if _, err := s.handoff.Raw(id); err == nil {
		t.Error("expected handoff payload to be released")
	}
}

func TestSPAFallback(t *testing.T) {
	s := testServer(t)

	for _, path := range []string{"/", "/flipbook"} {
		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, httptest.NewRequest("GET", path, nil))
		if recorder.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, recorder.Code)
		}
		if ct := recorder.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("%s: unexpected Content-Type %q", path, ct)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"/assets/app.js":   "application/javascript; charset=utf-8",
		"/index.html":      "text/html; charset=utf-8",
		"/assets/LOGO.PNG": "image/png",
		"/unknown.bin":     "application/octet-stream",
		"/noext":           "application/octet-stream",
	}
	for path, want := range tests {
		if got := contentTypeFor(path); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", path, got, want)
		}
	}
}
