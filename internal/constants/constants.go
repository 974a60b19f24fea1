// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Handoff constants
const (
	// HandoffKey is the fixed session-scoped key the edit view writes the
	// serialized authoring state under and the preview view reads it from.
	HandoffKey = "flipbookData"

	// HandoffVersion is the current version of the handoff payload schema
	HandoffVersion = 1

	// PreviewPath is the route of the preview view opened after a handoff
	PreviewPath = "/flipbook"
)

// PDF preview constants
const (
	// PreviewScale is the scale factor the first PDF page is rendered at
	PreviewScale = 1.5

	// PDFBaseDPI is the resolution of a PDF page at scale 1.0
	PDFBaseDPI = 72.0

	// MaxPreviewSize is the maximum dimension (width or height) of a rendered preview
	MaxPreviewSize = 1920

	// PreviewTimeout bounds a single first-page render
	PreviewTimeout = 90 * time.Second

	// DefaultPreviewWorkers is the default number of parallel PDF renders
	DefaultPreviewWorkers = 4

	// PreviewQueueSize is the buffer size of the pending render queue
	PreviewQueueSize = 64
)

// Flip renderer size presets, chosen by viewport width.
const (
	// MobileBreakpoint is the widest viewport rendered in the mobile layout
	MobileBreakpoint = 768

	// CompactMinWidth and CompactMaxWidth bound the small-laptop preset
	CompactMinWidth = 769
	CompactMaxWidth = 1200

	DefaultFlipWidth  = 600
	DefaultFlipHeight = 800
	CompactFlipWidth  = 800
	CompactFlipHeight = 900
)

// Session constants
const (
	// SessionDuration is how long an authoring session and its uploads live
	SessionDuration = 24 * time.Hour

	// SessionCleanupInterval is how often expired sessions are purged
	SessionCleanupInterval = 10 * time.Minute
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// File upload constants
const (
	// MultipartMemory is how much of a multipart upload is held in memory (32MB);
	// larger parts spill to temporary files
	MultipartMemory = 32 << 20

	// DefaultUploadRateLimit is the default number of uploads per minute per client
	DefaultUploadRateLimit = 120
)
