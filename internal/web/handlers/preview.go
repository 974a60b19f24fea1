package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/handoff"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// maxPayloadBytes bounds a handoff payload written directly by a client.
const maxPayloadBytes = 8 << 20

// PreviewHandler serves the preview view. It only ever reads the state the
// edit view last published for the session.
type PreviewHandler struct {
	store *handoff.Store
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(store *handoff.Store) *PreviewHandler {
	return &PreviewHandler{store: store}
}

// Publish serializes the caller's authoring state for the preview view.
func (h *PreviewHandler) Publish(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	if err := h.store.Publish(session.ID, session.State()); err != nil {
		log.Printf("Failed to publish flipbook data: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to publish flipbook data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"path": constants.PreviewPath})
}

// load reads the published state. Missing and unreadable payloads both answer 404.
func (h *PreviewHandler) load(w http.ResponseWriter, r *http.Request) (book.State, bool) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return book.State{}, false
	}
	state, err := h.store.Load(session.ID)
	if err != nil {
		if !errors.Is(err, handoff.ErrNoPayload) {
			log.Printf("Discarding unreadable flipbook data: %v", err)
		}
		respondError(w, http.StatusNotFound, handoff.ErrNoPayload.Error())
		return book.State{}, false
	}
	return state, true
}

// Get renders the published flipbook for a viewport width
func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newFlipbookResponse(state, r.URL.Query().Get("viewport")))
}

// Navigate resolves a jump within the published flipbook
func (h *PreviewHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	state, ok := h.load(w, r)
	if !ok {
		return
	}
	var req navigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, resolveJump(state, req))
}

// Payload returns the serialized handoff payload as published
func (h *PreviewHandler) Payload(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	data, err := h.store.Raw(session.ID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PutPayload replaces the handoff payload with one produced elsewhere, such
// as a payload saved from an earlier session.
func (h *PreviewHandler) PutPayload(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	if err := h.store.PublishRaw(session.ID, data); err != nil {
		if errors.Is(err, handoff.ErrUnsupportedVersion) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "invalid flipbook data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"path": constants.PreviewPath})
}
