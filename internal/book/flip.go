package book

import "github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"

// FlipSize is the size the page-flip widget is mounted with.
type FlipSize struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Mobile bool `json:"mobile"`
}

// FlipSizeFor picks the widget size preset for a viewport width in pixels.
func FlipSizeFor(viewportWidth int) FlipSize {
	size := FlipSize{
		Width:  constants.DefaultFlipWidth,
		Height: constants.DefaultFlipHeight,
		Mobile: viewportWidth > 0 && viewportWidth <= constants.MobileBreakpoint,
	}
	if viewportWidth >= constants.CompactMinWidth && viewportWidth <= constants.CompactMaxWidth {
		size.Width = constants.CompactFlipWidth
		size.Height = constants.CompactFlipHeight
	}
	return size
}

// JumpTo returns the zero-based flip target for a 1-based page number.
// Out-of-range numbers are not a target.
func JumpTo(s State, pageNumber int) (int, bool) {
	if !s.ValidPage(pageNumber) {
		return 0, false
	}
	return pageNumber - 1, true
}

// JumpToTOCEntry returns the flip target of a table of contents entry.
func JumpToTOCEntry(s State, entry int) (int, bool) {
	if entry < 0 || entry >= len(s.TOC.Entries) {
		return 0, false
	}
	return JumpTo(s, s.TOC.Entries[entry].Page)
}
