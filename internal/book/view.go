package book

import (
	"strconv"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
)

// Placeholder texts rendered in place of content.
const (
	TOCTitle           = "Table of Contents"
	TOCEmptyMessage    = "No Table of Contents entries added."
	TOCEmptyEntry      = "(Empty)"
	LoadingPreviewText = "Loading preview..."
	FailedPreviewText  = "Preview failed"
	UnsupportedText    = "Unsupported file type"
	ButtonLabel        = "Button"
)

// CellContent is what a cell renders.
type CellContent string

// CellContent constants.
const (
	ContentBlank       CellContent = "blank"
	ContentImage       CellContent = "image"
	ContentVideo       CellContent = "video"
	ContentPDFPreview  CellContent = "pdf_preview"
	ContentPDFLoading  CellContent = "pdf_loading"
	ContentPDFFailed   CellContent = "pdf_failed"
	ContentUnsupported CellContent = "unsupported"
)

// CellView is the rendered content of one cell.
type CellView struct {
	Index   int         `json:"index"`
	Key     string      `json:"key"`
	Content CellContent `json:"content"`
	// Label is the placeholder text for blank, loading, failed and unsupported cells.
	Label string  `json:"label,omitempty"`
	URL   string  `json:"url,omitempty"`
	Alt   string  `json:"alt,omitempty"`
	Fit   FitMode `json:"fit"`
	Name  string  `json:"name,omitempty"`
}

// TOCEntryView is one rendered table of contents entry.
type TOCEntryView struct {
	Content   string `json:"content"`
	Page      int    `json:"page,omitempty"`
	Clickable bool   `json:"clickable"`
	// JumpIndex is the zero-based flip target, -1 for inert entries.
	JumpIndex int `json:"jump_index"`
}

// TOCView is a full-page table of contents.
type TOCView struct {
	Title   string         `json:"title"`
	Entries []TOCEntryView `json:"entries"`
	Message string         `json:"message,omitempty"`
}

// SocialIcon is a social network icon overlay.
type SocialIcon struct {
	Name Network `json:"name"`
	Icon string  `json:"icon"`
	Href string  `json:"href"`
}

// ButtonView is the fixed-position action button overlay. Its action is an
// inert placeholder.
type ButtonView struct {
	Label string `json:"label"`
	Page  int    `json:"page"`
}

// PageView is the rendered content of one flipbook page: either a table of
// contents takeover or a grid of cells with overlays.
type PageView struct {
	Index   int          `json:"index"`
	Number  int          `json:"number"`
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	TOC     *TOCView     `json:"toc,omitempty"`
	Cells   []CellView   `json:"cells,omitempty"`
	Socials []SocialIcon `json:"socials,omitempty"`
	Button  *ButtonView  `json:"button,omitempty"`
}

// RenderBook renders every page.
func RenderBook(s State) []PageView {
	views := make([]PageView, len(s.Pages))
	for i := range s.Pages {
		views[i], _ = RenderPage(s, i)
	}
	return views
}

// RenderPage renders the page at a 0-based index.
func RenderPage(s State, index int) (PageView, bool) {
	if index < 0 || index >= len(s.Pages) {
		return PageView{}, false
	}
	number := index + 1
	page := s.Pages[index]
	view := PageView{Index: index, Number: number, Rows: page.Rows, Cols: page.Cols}

	if s.TOC.Page == number {
		view.TOC = renderTOC(s)
		return view, true
	}

	view.Cells = make([]CellView, len(page.Cells))
	for i, c := range page.Cells {
		view.Cells[i] = renderCell(s, CellKey{Page: index, Cell: i}, c)
	}
	for _, l := range s.Socials.Links {
		if !l.OnPage(number) {
			continue
		}
		href := l.Link
		if href == "" {
			href = "#"
		}
		view.Socials = append(view.Socials, SocialIcon{Name: l.Name, Icon: l.Name.Icon(), Href: href})
	}
	if _, ok := s.Buttons[number]; ok {
		view.Button = &ButtonView{Label: ButtonLabel, Page: number}
	}
	return view, true
}

func renderTOC(s State) *TOCView {
	v := &TOCView{Title: TOCTitle, Entries: make([]TOCEntryView, 0, len(s.TOC.Entries))}
	if len(s.TOC.Entries) == 0 {
		v.Message = TOCEmptyMessage
		return v
	}
	for _, e := range s.TOC.Entries {
		ev := TOCEntryView{Content: e.Content, JumpIndex: -1}
		if ev.Content == "" {
			ev.Content = TOCEmptyEntry
		}
		if s.ValidPage(e.Page) {
			ev.Clickable = true
			ev.Page = e.Page
			ev.JumpIndex = e.Page - 1
		}
		v.Entries = append(v.Entries, ev)
	}
	return v
}

func renderCell(s State, key CellKey, c Cell) CellView {
	v := CellView{Index: key.Cell, Key: key.String(), Fit: c.Fit.OrDefault()}
	if c.File == nil {
		v.Content = ContentBlank
		v.Label = "Blank " + strconv.Itoa(key.Page+1)
		return v
	}
	v.Name = c.File.Name
	switch c.File.Kind {
	case media.KindPDF:
		p, ok := s.Previews[key]
		switch {
		case ok && p.Status == PreviewReady:
			v.Content = ContentPDFPreview
			v.URL = p.DataURL
			v.Alt = "PDF preview cell " + strconv.Itoa(key.Cell+1)
		case ok && p.Status == PreviewFailed:
			v.Content = ContentPDFFailed
			v.Label = FailedPreviewText
		default:
			v.Content = ContentPDFLoading
			v.Label = LoadingPreviewText
		}
	case media.KindImage:
		v.Content = ContentImage
		v.URL = c.File.URL
		v.Alt = "Cell " + strconv.Itoa(key.Cell+1)
	case media.KindVideo:
		v.Content = ContentVideo
		v.URL = c.File.URL
	default:
		v.Content = ContentUnsupported
		v.Label = UnsupportedText
	}
	return v
}
