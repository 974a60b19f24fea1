// Package media classifies uploaded files into the content kinds a flipbook cell can show.
package media

import (
	"net/http"
	"path/filepath"
	"strings"
)

// Kind is the resolved content kind of an uploaded file.
type Kind string

// Kind constants define the content a cell can hold.
const (
	KindImage       Kind = "image"
	KindPDF         Kind = "pdf"
	KindVideo       Kind = "video"
	KindUnsupported Kind = "unsupported"
)

// imageExtensions are accepted as images when the client sent no MIME type.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Classify resolves the kind of a file from its MIME type, falling back to the
// file extension for images without a declared type.
func Classify(mimeType, name string) Kind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(mimeType, "pdf"):
		return KindPDF
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	}
	if mimeType == "" {
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]; ok {
			return KindImage
		}
	}
	return KindUnsupported
}

// Sniff returns the MIME type to record for an upload. A declared type wins
// unless it is empty or the generic octet-stream, in which case the content
// header (up to 512 bytes) is sniffed.
func Sniff(header []byte, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(header) == 0 {
		return declared
	}
	sniffed := http.DetectContentType(header)
	// DetectContentType appends parameters such as "; charset=utf-8".
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = strings.TrimSpace(sniffed[:i])
	}
	return sniffed
}

// AcceptPatterns returns the MIME patterns an upload slot accepts.
func AcceptPatterns(allowVideo bool) []string {
	patterns := []string{"image/*", "application/pdf"}
	if allowVideo {
		patterns = append(patterns, "video/*")
	}
	return patterns
}

// Accepts reports whether mimeType matches one of the patterns.
// A pattern is either an exact type or "major/*".
func Accepts(patterns []string, mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.ToLower(p)
		if major, ok := strings.CutSuffix(p, "/*"); ok {
			if strings.HasPrefix(mimeType, major+"/") {
				return true
			}
			continue
		}
		if p == mimeType {
			return true
		}
	}
	return false
}
