package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// Upload stores a file in a cell. PDFs get a first-page preview rendered in
// the background; the result arrives on the session's event stream.
func (h *BookHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	key, ok := cellKeyParams(w, r)
	if !ok {
		return
	}

	if limit := h.config.Upload.MaxBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(constants.MultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	sniffLen := min(len(data), 512)
	mimeType := media.Sniff(data[:sniffLen], header.Header.Get("Content-Type"))
	if !media.Accepts(h.config.Upload.AcceptPatterns(), mimeType) {
		log.Printf("Upload %q (%s) is outside the accepted types", sanitizeForLog(header.Filename), sanitizeForLog(mimeType))
	}

	blob := h.uploads.Put(session.ID, header.Filename, mimeType, data)
	ref := book.NewFileRef(blob.ID, blob.Name, blob.MIMEType, blob.Size(), blob.URL())

	var generation int
	assigned := false
	state := session.Update(func(s book.State) book.State {
		next := book.Reduce(s, book.AssignFile{Page: key.Page, Cell: key.Cell, File: ref})
		if c, ok := next.Cell(key); ok && c.File != nil && c.File.ID == blob.ID {
			assigned = true
		}
		if p, ok := next.Preview(key); ok && ref.IsPDF() {
			generation = p.Generation
		}
		return next
	})

	// No such cell, or it went away while the body was read.
	if !assigned {
		h.uploads.Delete(blob.ID)
		respondJSON(w, http.StatusOK, newBookResponse(state))
		return
	}

	if ref.IsPDF() && generation > 0 {
		h.submitPreview(session, key, generation, blob.ID)
		state = session.State()
	} else {
		h.previews.Cancel(session.ID, key)
	}

	respondJSON(w, http.StatusOK, newBookResponse(state))
}
