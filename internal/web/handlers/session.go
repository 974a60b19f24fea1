package handlers

import (
	"net/http"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionManager *middleware.SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sm *middleware.SessionManager) *SessionHandler {
	return &SessionHandler{sessionManager: sm}
}

// StatusResponse describes the caller's session
type StatusResponse struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
	PageCount int    `json:"page_count"`
}

// Status returns the current session
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	data := session.ToJSON()
	respondJSON(w, http.StatusOK, StatusResponse{
		SessionID: data.SessionID,
		ExpiresAt: data.ExpiresAt,
		PageCount: session.State().PageCount,
	})
}

// Reset discards the session together with its uploads, renders and
// published flipbook. The next request starts a fresh one.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	h.sessionManager.DeleteSession(session.ID)
	h.sessionManager.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
