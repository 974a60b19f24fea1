package handlers

import (
	"net/http"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/config"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Accept         []string           `json:"accept"`
	Networks       []book.NetworkInfo `json:"networks"`
	FlipSizes      []FlipSizePreset   `json:"flip_sizes"`
	HandoffKey     string             `json:"handoff_key"`
	PreviewPath    string             `json:"preview_path"`
	MaxGrid        int                `json:"max_grid"`
	UploadMaxBytes int64              `json:"upload_max_bytes"`
}

// FlipSizePreset is one viewport range of the flip renderer
type FlipSizePreset struct {
	MinWidth int           `json:"min_width"`
	MaxWidth int           `json:"max_width,omitempty"`
	Size     book.FlipSize `json:"size"`
}

// Get returns what the edit view needs to build its controls
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	presets := []FlipSizePreset{
		{MinWidth: 0, MaxWidth: constants.MobileBreakpoint, Size: book.FlipSizeFor(constants.MobileBreakpoint)},
		{MinWidth: constants.CompactMinWidth, MaxWidth: constants.CompactMaxWidth, Size: book.FlipSizeFor(constants.CompactMinWidth)},
		{MinWidth: constants.CompactMaxWidth + 1, Size: book.FlipSizeFor(constants.CompactMaxWidth + 1)},
	}

	response := ConfigResponse{
		Accept:         h.config.Upload.AcceptPatterns(),
		Networks:       book.Networks(),
		FlipSizes:      presets,
		HandoffKey:     constants.HandoffKey,
		PreviewPath:    constants.PreviewPath,
		MaxGrid:        book.MaxGridDimension,
		UploadMaxBytes: h.config.Upload.MaxBytes,
	}

	respondJSON(w, http.StatusOK, response)
}
