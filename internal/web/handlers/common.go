package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a request body, answering 400 on malformed JSON.
// Returns false when the handler should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	return true
}

// indexParam reads a non-negative integer URL parameter. Returns false (after
// writing a 400) when it is not a number.
func indexParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// numericInput is a form value run through the digits-only filter. It
// decodes from a JSON number or string. Values the filter rejects decode
// without error but are not Valid, so the field is simply not updated.
type numericInput struct {
	Value int
	Empty bool
	Valid bool
	set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *numericInput) UnmarshalJSON(data []byte) error {
	n.set = true
	data = bytes.TrimSpace(data)
	switch {
	case string(data) == "null":
		*n = numericInput{Empty: true, Valid: true, set: true}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.Value, n.Empty, n.Valid = book.ParseNumericInput(s)
		return nil
	default:
		// Numbers go through the same filter, so -1 and 1.5 are rejected.
		n.Value, n.Empty, n.Valid = book.ParseNumericInput(string(data))
		return nil
	}
}

// Provided reports whether the field was present in the body.
func (n numericInput) Provided() bool {
	return n.set
}

// Number returns the value of a valid, non-empty input.
func (n numericInput) Number() (int, bool) {
	return n.Value, n.set && n.Valid && !n.Empty
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
