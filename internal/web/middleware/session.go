package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
)

const sessionCookieName = "flipbook_session"

// Session is one authoring session. It owns the book being edited; uploads
// and the published handoff payload are keyed by its ID.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	mu    sync.Mutex
	state book.State
}

// State returns the current authoring state.
func (s *Session) State() book.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply reduces actions onto the session state and returns the new state.
func (s *Session) Apply(actions ...book.Action) book.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = book.ReduceAll(s.state, actions...)
	return s.state
}

// Update replaces the state with fn's result while holding the session lock.
func (s *Session) Update(fn func(book.State) book.State) book.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

// SessionManager handles session creation and validation
type SessionManager struct {
	secret   []byte
	ttl      time.Duration
	sessions map[string]*Session
	mu       sync.RWMutex

	onExpire []func(sessionID string)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates a new session manager and starts purging expired
// sessions in the background. Call Stop to end the purge loop.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	// Use a default secret if none provided (for development)
	if secret == "" {
		secret = "flipbook-dev-secret-change-in-production"
	}
	if ttl <= 0 {
		ttl = constants.SessionDuration
	}
	sm := &SessionManager{
		secret:   []byte(secret),
		ttl:      ttl,
		sessions: make(map[string]*Session),
		stopCh:   make(chan struct{}),
	}
	go sm.cleanupLoop(constants.SessionCleanupInterval)
	return sm
}

// OnExpire registers a hook run after a session is deleted or expires.
// Hooks must be registered before the server starts serving.
func (sm *SessionManager) OnExpire(fn func(sessionID string)) {
	sm.onExpire = append(sm.onExpire, fn)
}

// TTL returns the session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CreateSession creates a new session with an empty book
func (sm *SessionManager) CreateSession() (*Session, error) {
	// Generate session ID
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}
	sessionID := base64.RawURLEncoding.EncodeToString(idBytes)

	now := time.Now()
	session := &Session{
		ID:        sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.ttl),
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return nil
	}

	// Check if session has expired
	if time.Now().After(session.ExpiresAt) {
		go sm.DeleteSession(sessionID)
		return nil
	}

	return session
}

// DeleteSession removes a session and runs the expiry hooks
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	_, ok := sm.sessions[sessionID]
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if !ok {
		return
	}
	for _, fn := range sm.onExpire {
		fn(sessionID)
	}
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Stop ends the background purge loop.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stopCh) })
}

func (sm *SessionManager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-sm.stopCh:
			return
		case <-ticker.C:
			if n := sm.purgeExpired(time.Now()); n > 0 {
				log.Printf("Purged %d expired sessions", n)
			}
		}
	}
}

// purgeExpired deletes every session expired at now.
func (sm *SessionManager) purgeExpired(now time.Time) int {
	sm.mu.RLock()
	var expired []string
	for id, s := range sm.sessions {
		if now.After(s.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	sm.mu.RUnlock()

	for _, id := range expired {
		sm.DeleteSession(id)
	}
	return len(expired)
}

// SetSessionCookie sets the session cookie on the response. The cookie is
// marked Secure when the request arrived over TLS.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, r *http.Request, session *Session) {
	// Sign the session ID
	signature := sm.signData(session.ID)
	cookieValue := session.ID + "." + signature

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sm.ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from a request
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	// Try cookie first
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		parts := strings.SplitN(cookie.Value, ".", 2)
		if len(parts) == 2 {
			sessionID := parts[0]
			signature := parts[1]
			if sm.verifySignature(sessionID, signature) {
				if session := sm.GetSession(sessionID); session != nil {
					return session
				}
			}
		}
	}

	// Try Authorization header
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		sessionID := strings.TrimPrefix(authHeader, "Bearer ")
		if session := sm.GetSession(sessionID); session != nil {
			return session
		}
	}

	return nil
}

// signData creates an HMAC signature for data
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature
func (sm *SessionManager) verifySignature(data, signature string) bool {
	expected := sm.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SessionData is a helper struct for JSON responses
type SessionData struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}

// ToJSON returns the session data for JSON response
func (s *Session) ToJSON() SessionData {
	return SessionData{
		SessionID: s.ID,
		ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
	}
}

// MarshalJSON implements json.Marshaler (excludes the authoring state)
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToJSON())
}
