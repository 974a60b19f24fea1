package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/config"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/handoff"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/preview"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/uploads"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{TTL: time.Hour},
		Upload:  config.UploadConfig{MaxBytes: 1 << 20, RateLimit: 100},
	}
}

// fakeQueue records preview jobs instead of rendering them
type fakeQueue struct {
	mu        sync.Mutex
	submitted []preview.Job
	cancelled []book.CellKey
	sessions  []string
	err       error
}

func (q *fakeQueue) Submit(j preview.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.submitted = append(q.submitted, j)
	return nil
}

func (q *fakeQueue) Cancel(_ string, key book.CellKey) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelled = append(q.cancelled, key)
}

func (q *fakeQueue) CancelSession(session string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sessions = append(q.sessions, session)
}

func (q *fakeQueue) jobs() []preview.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]preview.Job(nil), q.submitted...)
}

// testEnv wires the handlers around one session
type testEnv struct {
	cfg      *config.Config
	sm       *middleware.SessionManager
	uploads  *uploads.Store
	handoff  *handoff.Store
	queue    *fakeQueue
	events   *EventHub
	books    *BookHandler
	previews *PreviewHandler
	files    *FilesHandler
	session  *middleware.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	sm := middleware.NewSessionManager("test-secret", time.Hour)
	t.Cleanup(sm.Stop)

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	env := &testEnv{
		cfg:     cfg,
		sm:      sm,
		uploads: uploads.NewStore(time.Hour, time.Hour),
		handoff: handoff.NewStore(time.Hour, time.Hour),
		queue:   &fakeQueue{},
		events:  NewEventHub(),
		session: session,
	}
	env.books = NewBookHandler(cfg, sm, env.uploads, env.queue, env.events)
	env.previews = NewPreviewHandler(env.handoff)
	env.files = NewFilesHandler(env.uploads)
	return env
}

// confirm sets up n blank pages on the session
func (e *testEnv) confirm(n int) {
	e.session.Apply(book.ConfirmPages{Count: n})
}

// request creates a request carrying the env's session and a JSON body
func (e *testEnv) request(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.SetSessionInContext(req.Context(), e.session))
}

// do runs a handler and returns the recorder
func do(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	h(recorder, req)
	return recorder
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// parseBook parses an authoring state response
func parseBook(t *testing.T, recorder *httptest.ResponseRecorder) bookResponse {
	t.Helper()
	var resp bookResponse
	parseJSONResponse(t, recorder, &resp)
	return resp
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
