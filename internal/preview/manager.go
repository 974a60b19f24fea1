package preview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
)

// Manager errors.
var (
	ErrStopped   = errors.New("preview manager stopped")
	ErrQueueFull = errors.New("preview queue full")
)

// Job requests the preview of one cell assignment.
type Job struct {
	Session    string
	Key        book.CellKey
	Generation int
	Data       []byte
}

// Result is the outcome of a job. Cancelled jobs produce no result.
type Result struct {
	Session    string
	Key        book.CellKey
	Generation int
	DataURL    string
	Err        error
}

type task struct {
	Job
	ctx    context.Context
	cancel context.CancelFunc
}

type slot struct {
	session string
	key     book.CellKey
}

// Manager renders previews on a fixed number of workers. At most one job per
// session cell is live: submitting a job for a cell cancels the one before it.
type Manager struct {
	renderer Renderer
	timeout  time.Duration
	onResult func(Result)

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan *task
	wg     sync.WaitGroup

	mu       sync.Mutex
	stopped  bool
	inflight map[slot]*task
}

// NewManager starts workers rendering with r. onResult is called from worker
// goroutines.
func NewManager(r Renderer, workers int, timeout time.Duration, onResult func(Result)) *Manager {
	if workers <= 0 {
		workers = constants.DefaultPreviewWorkers
	}
	if timeout <= 0 {
		timeout = constants.PreviewTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		renderer: r,
		timeout:  timeout,
		onResult: onResult,
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan *task, constants.PreviewQueueSize),
		inflight: make(map[slot]*task),
	}
	for range workers {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Submit queues a job, cancelling any queued or running job for the same cell.
// A job older than the one already live for its cell is dropped; the live job
// belongs to the newer assignment.
func (m *Manager) Submit(j Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return ErrStopped
	}

	s := slot{session: j.Session, key: j.Key}
	if prev, ok := m.inflight[s]; ok {
		if prev.Generation > j.Generation {
			return nil
		}
		prev.cancel()
		delete(m.inflight, s)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	t := &task{Job: j, ctx: ctx, cancel: cancel}
	select {
	case m.queue <- t:
		m.inflight[s] = t
		return nil
	default:
		cancel()
		return ErrQueueFull
	}
}

// Cancel drops the pending or running job of a cell.
func (m *Manager) Cancel(session string, key book.CellKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := slot{session: session, key: key}
	if t, ok := m.inflight[s]; ok {
		t.cancel()
		delete(m.inflight, s)
	}
}

// CancelSession drops every job of a session.
func (m *Manager) CancelSession(session string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for s, t := range m.inflight {
		if s.session == session {
			t.cancel()
			delete(m.inflight, s)
		}
	}
}

// Pending returns the number of queued or running jobs.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inflight)
}

// Stop cancels all jobs and waits for the workers to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.cancel()
	close(m.queue)
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for t := range m.queue {
		m.run(t)
	}
}

func (m *Manager) run(t *task) {
	defer t.cancel()
	if t.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(t.ctx, m.timeout)
	start := time.Now()
	dataURL, err := m.renderer.RenderFirstPage(ctx, t.Data)
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
	cancel()

	// A replaced or cancelled job may still have finished; its result is stale.
	if !m.finish(t) {
		return
	}
	if timedOut && err != nil {
		err = fmt.Errorf("render timed out after %v", m.timeout)
	}

	res := Result{Session: t.Session, Key: t.Key, Generation: t.Generation, DataURL: dataURL, Err: err}
	if err != nil {
		log.Printf("preview %s/%s (generation %d) failed: %v", t.Session, t.Key, t.Generation, err)
		res.DataURL = ""
	} else {
		log.Printf("preview %s/%s (generation %d) rendered in %v", t.Session, t.Key, t.Generation, time.Since(start).Round(time.Millisecond))
	}
	if m.onResult != nil {
		m.onResult(res)
	}
}

// finish removes t from the in-flight set and reports whether it was still current.
func (m *Manager) finish(t *task) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := slot{session: t.Session, key: t.Key}
	if m.inflight[s] != t || t.ctx.Err() != nil {
		return false
	}
	delete(m.inflight, s)
	return true
}
