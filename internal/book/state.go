// Package book holds the flipbook authoring state: the ordered pages, the
// content cells of each page's grid, the PDF preview cache and the page-keyed
// overlays (table of contents, social links, buttons).
//
// State is treated as an immutable value. Every author action is a transition
// applied by Reduce, which copies what it changes and never mutates its input.
package book

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
)

// ErrInvalidCellKey is returned when a cell key is not of the form "page_cell".
var ErrInvalidCellKey = errors.New("invalid cell key")

// FitMode controls how an image or preview is scaled inside its cell.
type FitMode string

// FitMode constants.
const (
	FitContain FitMode = "contain"
	FitCover   FitMode = "cover"
)

// Valid reports whether f is a known fit mode.
func (f FitMode) Valid() bool {
	return f == FitContain || f == FitCover
}

// OrDefault returns f, or contain when f is unset or unknown.
func (f FitMode) OrDefault() FitMode {
	if f.Valid() {
		return f
	}
	return FitContain
}

// FileRef is an opaque handle to uploaded data. Kind is resolved once when
// the reference is created.
type FileRef struct {
	ID       string
	Name     string
	MIMEType string
	Kind     media.Kind
	Size     int64
	// URL is the transient object URL the bytes are served under.
	URL string
}

// NewFileRef builds a file reference and classifies it.
func NewFileRef(id, name, mimeType string, size int64, url string) FileRef {
	return FileRef{
		ID:       id,
		Name:     name,
		MIMEType: mimeType,
		Kind:     media.Classify(mimeType, name),
		Size:     size,
		URL:      url,
	}
}

// IsPDF reports whether the file is a PDF.
func (f *FileRef) IsPDF() bool {
	return f != nil && f.Kind == media.KindPDF
}

// Cell is one slot of a page grid. A nil File means the cell is blank.
type Cell struct {
	File *FileRef
	Fit  FitMode
}

// Page is one flipbook page with a rows x cols grid of cells.
type Page struct {
	Rows  int
	Cols  int
	Cells []Cell
}

// CellCount returns rows x cols.
func (p Page) CellCount() int {
	return p.Rows * p.Cols
}

func newPage() Page {
	return Page{Rows: 1, Cols: 1, Cells: []Cell{{Fit: FitContain}}}
}

// CellKey identifies a cell by its 0-based page and cell index.
type CellKey struct {
	Page int
	Cell int
}

// String renders the key as "page_cell".
func (k CellKey) String() string {
	return strconv.Itoa(k.Page) + "_" + strconv.Itoa(k.Cell)
}

// ParseCellKey parses a "page_cell" key.
func ParseCellKey(s string) (CellKey, error) {
	pageStr, cellStr, ok := strings.Cut(s, "_")
	if !ok {
		return CellKey{}, fmt.Errorf("%w: %q", ErrInvalidCellKey, s)
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		return CellKey{}, fmt.Errorf("%w: %q", ErrInvalidCellKey, s)
	}
	cell, err := strconv.Atoi(cellStr)
	if err != nil || cell < 0 {
		return CellKey{}, fmt.Errorf("%w: %q", ErrInvalidCellKey, s)
	}
	return CellKey{Page: page, Cell: cell}, nil
}

// PreviewStatus is the lifecycle state of a PDF preview cache entry.
type PreviewStatus string

// PreviewStatus constants.
const (
	PreviewPending PreviewStatus = "pending"
	PreviewReady   PreviewStatus = "ready"
	PreviewFailed  PreviewStatus = "failed"
)

// Preview is a PDF preview cache entry. Generation identifies the assignment
// that requested it so that late results for a replaced file are dropped.
type Preview struct {
	Status     PreviewStatus
	DataURL    string
	Error      string
	Generation int
}

// TOCEntry is one line of the table of contents. Page 0 means no target.
type TOCEntry struct {
	Content string
	Page    int
}

// TOC is the table of contents. Page is the 1-based page number hosting it,
// 0 when no page does.
type TOC struct {
	Page    int
	Entries []TOCEntry
}

// SocialLink is a social network icon overlay shown on a set of pages.
type SocialLink struct {
	Name  Network
	Link  string
	Pages []int
}

// OnPage reports whether the link's icon appears on the 1-based page number.
func (l SocialLink) OnPage(pageNumber int) bool {
	_, found := slices.BinarySearch(l.Pages, pageNumber)
	return found
}

// Socials holds the social links and the page assignment controls shared by them.
type Socials struct {
	Links []SocialLink
	// Excluded holds page numbers removed by the author; "all pages" skips them.
	Excluded map[int]struct{}
	AllPages bool
}

// State is the complete authoring state of one flipbook.
type State struct {
	// PageCount is the confirmed number of pages, 0 before confirmation.
	PageCount int
	Pages     []Page
	Previews  map[CellKey]Preview
	TOC       TOC
	Socials   Socials
	// Buttons is the set of 1-based page numbers that render an action button.
	Buttons map[int]struct{}
	// seq is the last preview generation handed out.
	seq int
}

// Cell returns the cell at key, if it exists.
func (s State) Cell(key CellKey) (Cell, bool) {
	if key.Page < 0 || key.Page >= len(s.Pages) {
		return Cell{}, false
	}
	p := s.Pages[key.Page]
	if key.Cell < 0 || key.Cell >= len(p.Cells) {
		return Cell{}, false
	}
	return p.Cells[key.Cell], true
}

// Preview returns the preview cache entry of a cell.
func (s State) Preview(key CellKey) (Preview, bool) {
	p, ok := s.Previews[key]
	return p, ok
}

// ValidPage reports whether a 1-based page number exists.
func (s State) ValidPage(pageNumber int) bool {
	return pageNumber >= 1 && pageNumber <= s.PageCount
}

// ButtonPages returns the button page numbers in ascending order.
func (s State) ButtonPages() []int {
	return sortedSet(s.Buttons)
}

// ExcludedPages returns the social exclusion set in ascending order.
func (s State) ExcludedPages() []int {
	return sortedSet(s.Socials.Excluded)
}

// clone returns a deep copy so a transition can modify it freely.
func (s State) clone() State {
	out := s
	out.Pages = make([]Page, len(s.Pages))
	for i, p := range s.Pages {
		p.Cells = slices.Clone(p.Cells)
		out.Pages[i] = p
	}
	out.Previews = maps.Clone(s.Previews)
	if out.Previews == nil {
		out.Previews = make(map[CellKey]Preview)
	}
	out.TOC.Entries = slices.Clone(s.TOC.Entries)
	out.Socials.Links = make([]SocialLink, len(s.Socials.Links))
	for i, l := range s.Socials.Links {
		l.Pages = slices.Clone(l.Pages)
		out.Socials.Links[i] = l
	}
	out.Socials.Excluded = maps.Clone(s.Socials.Excluded)
	if out.Socials.Excluded == nil {
		out.Socials.Excluded = make(map[int]struct{})
	}
	out.Buttons = maps.Clone(s.Buttons)
	if out.Buttons == nil {
		out.Buttons = make(map[int]struct{})
	}
	return out
}

func sortedSet(set map[int]struct{}) []int {
	out := slices.Collect(maps.Keys(set))
	slices.Sort(out)
	if out == nil {
		out = []int{}
	}
	return out
}
