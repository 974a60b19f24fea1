package handlers

import (
	"log"
	"sync"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/preview"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// Event types streamed to the edit view.
const (
	EventPreviewReady  = "preview_ready"
	EventPreviewFailed = "preview_failed"
	EventState         = "state"
)

// SessionEvent is an event pushed to a session's listeners.
type SessionEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// PreviewEventData is the payload of preview events.
type PreviewEventData struct {
	Key        string `json:"key"`
	Page       int    `json:"page"`
	Cell       int    `json:"cell"`
	Generation int    `json:"generation"`
	DataURL    string `json:"data_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting.
type EventBroadcaster struct {
	listeners []chan SessionEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan SessionEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event SessionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// closeAll closes every listener so their streams end.
func (b *EventBroadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.listeners {
		close(ch)
	}
	b.listeners = nil
}

// EventHub holds one broadcaster per session.
type EventHub struct {
	sessions map[string]*EventBroadcaster
	mu       sync.Mutex
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{sessions: make(map[string]*EventBroadcaster)}
}

// For returns the broadcaster of a session, creating it on first use.
func (h *EventHub) For(sessionID string) *EventBroadcaster {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.sessions[sessionID]
	if !ok {
		b = &EventBroadcaster{}
		h.sessions[sessionID] = b
	}
	return b
}

// Send sends an event to a session's listeners, if it has any.
func (h *EventHub) Send(sessionID string, event SessionEvent) {
	h.mu.Lock()
	b, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if ok {
		b.SendEvent(event)
	}
}

// Drop closes and forgets a session's broadcaster.
func (h *EventHub) Drop(sessionID string) {
	h.mu.Lock()
	b, ok := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	h.mu.Unlock()
	if ok {
		b.closeAll()
	}
}

// PreviewResultHandler returns the callback that stores finished renders in
// their session and notifies the session's listeners. Results for replaced
// files are dropped by the reducer.
func PreviewResultHandler(sm *middleware.SessionManager, hub *EventHub) func(preview.Result) {
	return func(res preview.Result) {
		session := sm.GetSession(res.Session)
		if session == nil {
			return
		}

		var action book.Action
		data := PreviewEventData{
			Key:        res.Key.String(),
			Page:       res.Key.Page,
			Cell:       res.Key.Cell,
			Generation: res.Generation,
		}
		eventType := EventPreviewReady
		if res.Err != nil {
			action = book.PreviewFailedToRender{Key: res.Key, Generation: res.Generation, Err: res.Err.Error()}
			data.Error = res.Err.Error()
			eventType = EventPreviewFailed
		} else {
			action = book.PreviewRendered{Key: res.Key, Generation: res.Generation, DataURL: res.DataURL}
			data.DataURL = res.DataURL
		}

		applied := false
		session.Update(func(s book.State) book.State {
			next := book.Reduce(s, action)
			p, ok := next.Preview(res.Key)
			applied = ok && p.Generation == res.Generation && p.Status != book.PreviewPending
			return next
		})
		if !applied {
			log.Printf("Dropping stale preview for session cell %s (generation %d)", res.Key, res.Generation)
			return
		}
		hub.Send(res.Session, SessionEvent{Type: eventType, Data: data})
	}
}
