package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/uploads"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// FilesHandler serves uploaded files under their object URLs
type FilesHandler struct {
	uploads *uploads.Store
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(store *uploads.Store) *FilesHandler {
	return &FilesHandler{uploads: store}
}

// Get streams an uploaded file. Only the session that uploaded it can read it.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	blob, err := h.uploads.GetForSession(session.ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if blob.MIMEType != "" {
		w.Header().Set("Content-Type", blob.MIMEType)
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+media.ASCIIFileName(blob.Name)+`"`)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, blob.Name, blob.CreatedAt, bytes.NewReader(blob.Data))
}
