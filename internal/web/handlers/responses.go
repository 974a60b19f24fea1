package handlers

import (
	"strconv"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
)

// --- Edit view responses ---

type bookResponse struct {
	PageCount   int                        `json:"page_count"`
	Pages       []pageResponse             `json:"pages"`
	Previews    map[string]previewResponse `json:"previews"`
	TOC         tocResponse                `json:"toc"`
	Socials     socialsResponse            `json:"socials"`
	ButtonPages []int                      `json:"button_pages"`
}

type pageResponse struct {
	Index  int            `json:"index"`
	Number int            `json:"number"`
	Rows   int            `json:"rows"`
	Cols   int            `json:"cols"`
	Cells  []cellResponse `json:"cells"`
}

type cellResponse struct {
	Index int           `json:"index"`
	Key   string        `json:"key"`
	Label string        `json:"label"`
	Fit   book.FitMode  `json:"fit"`
	File  *fileResponse `json:"file"`
}

type fileResponse struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type string     `json:"type"`
	Kind media.Kind `json:"kind"`
	Size int64      `json:"size"`
	URL  string     `json:"url"`
}

type previewResponse struct {
	Status     book.PreviewStatus `json:"status"`
	DataURL    string             `json:"data_url,omitempty"`
	Error      string             `json:"error,omitempty"`
	Generation int                `json:"generation"`
}

type tocResponse struct {
	Page    int                `json:"page"`
	Entries []tocEntryResponse `json:"entries"`
}

type tocEntryResponse struct {
	Content string `json:"content"`
	Page    int    `json:"page"`
	// Valid marks pages the entry could jump to with the current page count.
	Valid bool `json:"valid"`
}

type socialsResponse struct {
	Links         []socialLinkResponse `json:"links"`
	ExcludedPages []int                `json:"excluded_pages"`
	AllPages      bool                 `json:"all_pages"`
}

type socialLinkResponse struct {
	Name  book.Network `json:"name"`
	Icon  string       `json:"icon"`
	Link  string       `json:"link"`
	Pages []int        `json:"pages"`
}

func newBookResponse(s book.State) bookResponse {
	resp := bookResponse{
		PageCount:   s.PageCount,
		Pages:       make([]pageResponse, len(s.Pages)),
		Previews:    make(map[string]previewResponse, len(s.Previews)),
		TOC:         tocResponse{Page: s.TOC.Page, Entries: make([]tocEntryResponse, len(s.TOC.Entries))},
		Socials:     socialsResponse{Links: make([]socialLinkResponse, len(s.Socials.Links)), ExcludedPages: s.ExcludedPages(), AllPages: s.Socials.AllPages},
		ButtonPages: s.ButtonPages(),
	}
	for i, p := range s.Pages {
		pr := pageResponse{Index: i, Number: i + 1, Rows: p.Rows, Cols: p.Cols, Cells: make([]cellResponse, len(p.Cells))}
		for j, c := range p.Cells {
			cr := cellResponse{Index: j, Key: book.CellKey{Page: i, Cell: j}.String(), Fit: c.Fit.OrDefault(), Label: media.EmptySlotLabel}
			if c.File != nil {
				cr.Label = media.DisplayFileName(c.File.Name)
				cr.File = &fileResponse{
					ID:   c.File.ID,
					Name: c.File.Name,
					Type: c.File.MIMEType,
					Kind: c.File.Kind,
					Size: c.File.Size,
					URL:  c.File.URL,
				}
			}
			pr.Cells[j] = cr
		}
		resp.Pages[i] = pr
	}
	for key, p := range s.Previews {
		resp.Previews[key.String()] = previewResponse{Status: p.Status, DataURL: p.DataURL, Error: p.Error, Generation: p.Generation}
	}
	for i, e := range s.TOC.Entries {
		resp.TOC.Entries[i] = tocEntryResponse{Content: e.Content, Page: e.Page, Valid: s.ValidPage(e.Page)}
	}
	for i, l := range s.Socials.Links {
		pages := l.Pages
		if pages == nil {
			pages = []int{}
		}
		resp.Socials.Links[i] = socialLinkResponse{Name: l.Name, Icon: l.Name.Icon(), Link: l.Link, Pages: pages}
	}
	return resp
}

// --- Flipbook responses ---

type flipbookResponse struct {
	Size      book.FlipSize   `json:"size"`
	PageCount int             `json:"page_count"`
	Pages     []book.PageView `json:"pages"`
}

func newFlipbookResponse(s book.State, viewport string) flipbookResponse {
	width, _ := strconv.Atoi(viewport)
	return flipbookResponse{
		Size:      book.FlipSizeFor(width),
		PageCount: len(s.Pages),
		Pages:     book.RenderBook(s),
	}
}

type navigateRequest struct {
	Page     numericInput `json:"page"`
	TOCEntry *int         `json:"toc_entry"`
}

type navigateResponse struct {
	Jump  bool `json:"jump"`
	Index int  `json:"index"`
}

// resolveJump turns a navigation request into a flip target.
func resolveJump(s book.State, req navigateRequest) navigateResponse {
	var (
		idx int
		ok  bool
	)
	if req.TOCEntry != nil {
		idx, ok = book.JumpToTOCEntry(s, *req.TOCEntry)
	} else if n, valid := req.Page.Number(); valid {
		idx, ok = book.JumpTo(s, n)
	}
	if !ok {
		return navigateResponse{Jump: false, Index: -1}
	}
	return navigateResponse{Jump: true, Index: idx}
}
