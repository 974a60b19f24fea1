package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/config"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/preview"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/uploads"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// PreviewQueue is the part of the preview manager the handlers use.
type PreviewQueue interface {
	Submit(j preview.Job) error
	Cancel(session string, key book.CellKey)
	CancelSession(session string)
}

// BookHandler handles the edit view endpoints. Every mutation answers with
// the full authoring state; inputs the numeric filter rejects and targets
// that do not exist leave the state unchanged.
type BookHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
	uploads        *uploads.Store
	previews       PreviewQueue
	events         *EventHub
}

// NewBookHandler creates a new book handler
func NewBookHandler(cfg *config.Config, sm *middleware.SessionManager, store *uploads.Store, previews PreviewQueue, events *EventHub) *BookHandler {
	return &BookHandler{
		config:         cfg,
		sessionManager: sm,
		uploads:        store,
		previews:       previews,
		events:         events,
	}
}

// apply reduces actions onto the caller's session and responds with the new state.
func (h *BookHandler) apply(w http.ResponseWriter, r *http.Request, actions ...book.Action) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	respondJSON(w, http.StatusOK, newBookResponse(session.Apply(actions...)))
}

// respondState responds with the unchanged state of the caller's session.
func (h *BookHandler) respondState(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r)
}

// Get returns the authoring state
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, r)
}

// --- Pages and cells ---

// ConfirmPages creates the confirmed number of blank pages
func (h *BookHandler) ConfirmPages(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	var req struct {
		Count numericInput `json:"count"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	n, ok := req.Count.Number()
	if !ok || n < 1 {
		h.respondState(w, r)
		return
	}
	h.previews.CancelSession(session.ID)
	h.apply(w, r, book.ConfirmPages{Count: n})
}

// SetGrid resizes a page grid
func (h *BookHandler) SetGrid(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	page, ok := indexParam(w, r, "page")
	if !ok {
		return
	}
	var req struct {
		Rows numericInput `json:"rows"`
		Cols numericInput `json:"cols"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if (req.Rows.Provided() && !req.Rows.Valid) || (req.Cols.Provided() && !req.Cols.Valid) {
		h.respondState(w, r)
		return
	}

	var truncated []book.CellKey
	state := session.Update(func(s book.State) book.State {
		if page >= len(s.Pages) {
			return s
		}
		current := s.Pages[page]
		rows, cols := current.Rows, current.Cols
		if req.Rows.Provided() {
			rows = req.Rows.Value
		}
		if req.Cols.Provided() {
			cols = req.Cols.Value
		}
		next := book.Reduce(s, book.SetGridShape{Page: page, Rows: rows, Cols: cols})
		for i := len(next.Pages[page].Cells); i < len(current.Cells); i++ {
			truncated = append(truncated, book.CellKey{Page: page, Cell: i})
		}
		return next
	})
	for _, key := range truncated {
		h.previews.Cancel(session.ID, key)
	}
	respondJSON(w, http.StatusOK, newBookResponse(state))
}

// ClearCell removes the file from a cell
func (h *BookHandler) ClearCell(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	key, ok := cellKeyParams(w, r)
	if !ok {
		return
	}
	h.previews.Cancel(session.ID, key)
	h.apply(w, r, book.ClearCell{Page: key.Page, Cell: key.Cell})
}

// SwapCells exchanges two cells of a page
func (h *BookHandler) SwapCells(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	page, ok := indexParam(w, r, "page")
	if !ok {
		return
	}
	var req struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.A == req.B {
		respondError(w, http.StatusBadRequest, "cells must be different")
		return
	}
	state := session.Apply(book.SwapCells{Page: page, A: req.A, B: req.B})
	// Pending renders are keyed by cell, so they follow the swap.
	h.resubmitPending(session, state, book.CellKey{Page: page, Cell: req.A}, book.CellKey{Page: page, Cell: req.B})
	respondJSON(w, http.StatusOK, newBookResponse(session.State()))
}

// SetFit sets how a cell's image or preview is scaled
func (h *BookHandler) SetFit(w http.ResponseWriter, r *http.Request) {
	key, ok := cellKeyParams(w, r)
	if !ok {
		return
	}
	var req struct {
		Fit book.FitMode `json:"fit"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Fit.Valid() {
		respondError(w, http.StatusBadRequest, "fit must be contain or cover")
		return
	}
	h.apply(w, r, book.SetFitMode{Page: key.Page, Cell: key.Cell, Fit: req.Fit})
}

// --- Table of contents ---

// SetTOCPage designates the page hosting the table of contents
func (h *BookHandler) SetTOCPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page numericInput `json:"page"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Page.Valid {
		h.respondState(w, r)
		return
	}
	h.apply(w, r, book.SetTOCPage{Page: req.Page.Value})
}

// SetTOCCount resizes the table of contents
func (h *BookHandler) SetTOCCount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count numericInput `json:"count"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Count.Valid {
		h.respondState(w, r)
		return
	}
	h.apply(w, r, book.SetTOCCount{Count: req.Count.Value})
}

// SetTOCEntry updates one table of contents entry
func (h *BookHandler) SetTOCEntry(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r, "index")
	if !ok {
		return
	}
	var req struct {
		Content *string      `json:"content"`
		Page    numericInput `json:"page"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	action := book.SetTOCEntry{Index: index, Content: req.Content}
	if req.Page.Provided() && req.Page.Valid {
		page := req.Page.Value
		action.Page = &page
	}
	h.apply(w, r, action)
}

// --- Social links ---

func parseNetworkOrFail(w http.ResponseWriter, name string) (book.Network, bool) {
	n, ok := book.ParseNetwork(name)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown social network")
		return "", false
	}
	return n, true
}

// AddSocial adds a social network link
func (h *BookHandler) AddSocial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	name, ok := parseNetworkOrFail(w, req.Name)
	if !ok {
		return
	}
	h.apply(w, r, book.AddSocial{Name: name})
}

// RemoveSocial removes a social network link
func (h *BookHandler) RemoveSocial(w http.ResponseWriter, r *http.Request) {
	name, ok := parseNetworkOrFail(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	h.apply(w, r, book.RemoveSocial{Name: name})
}

// SetSocialLink sets the URL of a social network link
func (h *BookHandler) SetSocialLink(w http.ResponseWriter, r *http.Request) {
	name, ok := parseNetworkOrFail(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	var req struct {
		Link string `json:"link"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, book.SetSocialLink{Name: name, Link: req.Link})
}

// AddSocialPage assigns a page to every social link
func (h *BookHandler) AddSocialPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page numericInput `json:"page"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	n, ok := req.Page.Number()
	if !ok {
		h.respondState(w, r)
		return
	}
	h.apply(w, r, book.AddSocialPage{Page: n})
}

// RemoveSocialPage removes a page from every social link
func (h *BookHandler) RemoveSocialPage(w http.ResponseWriter, r *http.Request) {
	n, ok := pageNumberParam(r)
	if !ok {
		h.respondState(w, r)
		return
	}
	h.apply(w, r, book.RemoveSocialPage{Page: n})
}

// SetAllSocialPages toggles "all pages" for social links
func (h *BookHandler) SetAllSocialPages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, book.SetAllSocialPages{Enabled: req.Enabled})
}

// --- Buttons ---

// AddButton adds the action button to a page
func (h *BookHandler) AddButton(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page numericInput `json:"page"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	n, ok := req.Page.Number()
	if !ok {
		h.respondState(w, r)
		return
	}
	h.apply(w, r, book.AddButtonPage{Page: n})
}

// RemoveButton removes the action button from a page
func (h *BookHandler) RemoveButton(w http.ResponseWriter, r *http.Request) {
	n, ok := pageNumberParam(r)
	if !ok {
		h.respondState(w, r)
		return
	}
	h.apply(w, r, book.RemoveButtonPage{Page: n})
}

// --- Live flipbook ---

// View renders the live flipbook for a viewport width
func (h *BookHandler) View(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	respondJSON(w, http.StatusOK, newFlipbookResponse(session.State(), r.URL.Query().Get("viewport")))
}

// PageView renders one page of the live flipbook
func (h *BookHandler) PageView(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	page, ok := indexParam(w, r, "page")
	if !ok {
		return
	}
	view, ok := book.RenderPage(session.State(), page)
	if !ok {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Navigate resolves a page number or table of contents entry to a flip target
func (h *BookHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	var req navigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, resolveJump(session.State(), req))
}

// Events streams preview events of the caller's session via SSE
func (h *BookHandler) Events(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context(), w)
	if session == nil {
		return
	}
	streamSSEEvents(w, r, h.events.For(session.ID), newBookResponse(session.State()))
}

// --- helpers ---

func cellKeyParams(w http.ResponseWriter, r *http.Request) (book.CellKey, bool) {
	page, ok := indexParam(w, r, "page")
	if !ok {
		return book.CellKey{}, false
	}
	cell, ok := indexParam(w, r, "cell")
	if !ok {
		return book.CellKey{}, false
	}
	return book.CellKey{Page: page, Cell: cell}, true
}

// pageNumberParam reads a 1-based page number from the URL through the numeric filter.
func pageNumberParam(r *http.Request) (int, bool) {
	n, empty, ok := book.ParseNumericInput(chi.URLParam(r, "page"))
	return n, ok && !empty
}

// resubmitPending restarts the renders of pending PDF cells. Cells without a
// pending preview just have their queued job cancelled.
func (h *BookHandler) resubmitPending(session *middleware.Session, state book.State, keys ...book.CellKey) {
	for _, key := range keys {
		h.previews.Cancel(session.ID, key)
		p, ok := state.Preview(key)
		if !ok || p.Status != book.PreviewPending {
			continue
		}
		c, _ := state.Cell(key)
		if !c.File.IsPDF() {
			continue
		}
		h.submitPreview(session, key, p.Generation, c.File.ID)
	}
}

// submitPreview queues the render of a cell's PDF. A job that cannot be
// queued marks the preview failed straight away.
func (h *BookHandler) submitPreview(session *middleware.Session, key book.CellKey, generation int, blobID string) {
	blob, err := h.uploads.GetForSession(session.ID, blobID)
	if err == nil {
		err = h.previews.Submit(preview.Job{Session: session.ID, Key: key, Generation: generation, Data: blob.Data})
	}
	if err != nil {
		log.Printf("Failed to queue preview for cell %s: %v", key, err)
		session.Apply(book.PreviewFailedToRender{Key: key, Generation: generation, Err: err.Error()})
	}
}
