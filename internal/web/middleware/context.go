package middleware

import (
	"context"
	"log"
	"net/http"
)

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession is middleware that attaches the caller's authoring session to the
// request context, starting a new session (and setting its cookie) when the
// request carries none.
func WithSession(sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sm.GetSessionFromRequest(r)
			if session == nil {
				var err error
				session, err = sm.CreateSession()
				if err != nil {
					log.Printf("Failed to create session: %v", err)
					http.Error(w, `{"error": "failed to create session"}`, http.StatusInternalServerError)
					return
				}
				sm.SetSessionCookie(w, r, session)
			}

			// Add session to context
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession is middleware that rejects requests without an existing session.
func RequireSession(sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sm.GetSessionFromRequest(r)
			if session == nil {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *Session {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// SetSessionInContext adds a session to the context.
// This is primarily for testing - use WithSession middleware in production.
func SetSessionInContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// MustGetSession retrieves the session from context.
// If not available, writes an error response and returns nil.
// Handlers should return immediately after receiving nil.
func MustGetSession(ctx context.Context, w http.ResponseWriter) *Session {
	session := GetSessionFromContext(ctx)
	if session == nil {
		http.Error(w, `{"error": "session not available"}`, http.StatusInternalServerError)
		return nil
	}
	return session
}
