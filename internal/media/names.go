package media

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxDisplayNameLen is the longest name shown verbatim on an upload slot.
const maxDisplayNameLen = 18

// EmptySlotLabel is shown on an upload slot that has no file.
const EmptySlotLabel = "Upload your file here"

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName folds a name for case- and accent-insensitive comparison.
func NormalizeName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(strings.TrimSpace(name))
	return name
}

// DisplayFileName shortens long file names for an upload slot label:
// the first five characters, an ellipsis and the extension.
func DisplayFileName(name string) string {
	if name == "" {
		return EmptySlotLabel
	}
	r := []rune(name)
	if len(r) <= maxDisplayNameLen {
		return name
	}
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i:]
	}
	return string(r[:5]) + "..." + ext
}

// ASCIIFileName returns a header-safe variant of a file name for
// Content-Disposition: diacritics removed, the base name only, and any
// remaining non-printable or non-ASCII rune replaced with an underscore.
func ASCIIFileName(name string) string {
	name = filepath.Base(RemoveDiacritics(name))
	if name == "." || name == string(filepath.Separator) {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
