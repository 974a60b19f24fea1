// Package handoff serializes the authoring state into the versioned payload the
// edit view publishes and the preview view rebuilds its book from.
package handoff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
)

// ErrUnsupportedVersion is returned for payloads written by a newer schema.
var ErrUnsupportedVersion = errors.New("unsupported handoff payload version")

// Payload is the serialized authoring state.
type Payload struct {
	Version              int                     `json:"version,omitempty"`
	PageConfigs          []PageConfig            `json:"pageConfigs"`
	PagesFiles           [][]*FileEntry          `json:"pagesFiles"`
	ImageFitModes        map[string]book.FitMode `json:"imageFitModes"`
	PDFPagePreviews      map[string]string       `json:"pdfPagePreviews"`
	PDFPreviewErrors     map[string]string       `json:"pdfPreviewErrors,omitempty"`
	TOCPage              PageNumber              `json:"tocPage"`
	TOCEntries           []TOCEntry              `json:"tocEntries"`
	ConfirmedPages       int                     `json:"confirmedPages"`
	SocialLinks          []SocialLink            `json:"socialLinks"`
	PagesWithAddedButton []int                   `json:"pagesWithAddedButton"`
}

// PageConfig is the grid shape of one page.
type PageConfig struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// FileEntry is a file reference. URL is a transient object URL that only
// resolves within the session that created it.
type FileEntry struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
	Size int64  `json:"size,omitempty"`
}

// TOCEntry is one table of contents line.
type TOCEntry struct {
	Content string     `json:"content"`
	Page    PageNumber `json:"page"`
}

// UnmarshalJSON accepts the object form and the legacy bare-string form.
func (e *TOCEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*e = TOCEntry{}
		return json.Unmarshal(data, &e.Content)
	}
	type plain TOCEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = TOCEntry(p)
	return nil
}

// SocialLink is one social network overlay.
type SocialLink struct {
	Name  string `json:"name"`
	Link  string `json:"link"`
	Pages []int  `json:"pages"`
}

// PageNumber is a 1-based page number where 0 means "none". It is written as
// null when unset and read from a number, a digit string, "" or null.
type PageNumber int

// MarshalJSON implements json.Marshaler.
func (p PageNumber) MarshalJSON() ([]byte, error) {
	if p <= 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(p))), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PageNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, empty, ok := book.ParseNumericInput(s)
		if !ok {
			return fmt.Errorf("invalid page number %q", s)
		}
		if empty {
			n = 0
		}
		*p = PageNumber(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid page number %s: %w", data, err)
	}
	*p = PageNumber(max(n, 0))
	return nil
}

// Encode serializes a state.
func Encode(s book.State) Payload {
	p := Payload{
		Version:              constants.HandoffVersion,
		PageConfigs:          make([]PageConfig, len(s.Pages)),
		PagesFiles:           make([][]*FileEntry, len(s.Pages)),
		ImageFitModes:        make(map[string]book.FitMode),
		PDFPagePreviews:      make(map[string]string),
		TOCPage:              PageNumber(s.TOC.Page),
		TOCEntries:           make([]TOCEntry, len(s.TOC.Entries)),
		ConfirmedPages:       s.PageCount,
		SocialLinks:          make([]SocialLink, len(s.Socials.Links)),
		PagesWithAddedButton: s.ButtonPages(),
	}
	for i, page := range s.Pages {
		p.PageConfigs[i] = PageConfig{Rows: page.Rows, Cols: page.Cols}
		files := make([]*FileEntry, len(page.Cells))
		for j, c := range page.Cells {
			key := book.CellKey{Page: i, Cell: j}.String()
			p.ImageFitModes[key] = c.Fit.OrDefault()
			if c.File == nil {
				continue
			}
			files[j] = &FileEntry{
				ID:   c.File.ID,
				Name: c.File.Name,
				Type: c.File.MIMEType,
				URL:  c.File.URL,
				Size: c.File.Size,
			}
		}
		p.PagesFiles[i] = files
	}
	for key, pv := range s.Previews {
		switch pv.Status {
		case book.PreviewReady:
			p.PDFPagePreviews[key.String()] = pv.DataURL
		case book.PreviewFailed:
			if p.PDFPreviewErrors == nil {
				p.PDFPreviewErrors = make(map[string]string)
			}
			p.PDFPreviewErrors[key.String()] = pv.Error
		}
	}
	for i, e := range s.TOC.Entries {
		p.TOCEntries[i] = TOCEntry{Content: e.Content, Page: PageNumber(e.Page)}
	}
	for i, l := range s.Socials.Links {
		p.SocialLinks[i] = SocialLink{Name: string(l.Name), Link: l.Link, Pages: slices.Clone(l.Pages)}
		if p.SocialLinks[i].Pages == nil {
			p.SocialLinks[i].Pages = []int{}
		}
	}
	return p
}

// Decode rebuilds a state from a payload. The page count is the number of
// page configs. Files are classified again from their recorded MIME type,
// social links with unknown network names are skipped, and preview entries
// only attach to cells that still hold a PDF. A PDF without a recorded
// preview decodes as failed.
func Decode(p Payload) (book.State, error) {
	if p.Version > constants.HandoffVersion {
		return book.State{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}

	var s book.State
	if len(p.PageConfigs) > 0 {
		s = book.Reduce(s, book.ConfirmPages{Count: len(p.PageConfigs)})
		if s.PageCount != len(p.PageConfigs) {
			return book.State{}, fmt.Errorf("invalid page count %d", len(p.PageConfigs))
		}
	}

	var actions []book.Action
	for i, cfg := range p.PageConfigs {
		actions = append(actions, book.SetGridShape{Page: i, Rows: cfg.Rows, Cols: cfg.Cols})
		if i >= len(p.PagesFiles) {
			continue
		}
		for j, f := range p.PagesFiles[i] {
			if f == nil {
				continue
			}
			ref := book.NewFileRef(f.ID, f.Name, f.Type, f.Size, f.URL)
			actions = append(actions, book.AssignFile{Page: i, Cell: j, File: ref})
		}
	}
	s = book.ReduceAll(s, actions...)

	for _, key := range slices.Sorted(maps.Keys(p.ImageFitModes)) {
		k, err := book.ParseCellKey(key)
		if err != nil {
			continue
		}
		s = book.Reduce(s, book.SetFitMode{Page: k.Page, Cell: k.Cell, Fit: p.ImageFitModes[key]})
	}
	s = restorePreviews(s, p)
	s = failUnresolvedPreviews(s)

	s.TOC.Page = int(p.TOCPage)
	if len(p.TOCEntries) > 0 {
		s.TOC.Entries = make([]book.TOCEntry, len(p.TOCEntries))
		for i, e := range p.TOCEntries {
			s.TOC.Entries[i] = book.TOCEntry{Content: e.Content, Page: int(e.Page)}
		}
	}

	for _, l := range p.SocialLinks {
		name, ok := book.ParseNetwork(l.Name)
		if !ok || slices.ContainsFunc(s.Socials.Links, func(x book.SocialLink) bool { return x.Name == name }) {
			continue
		}
		s.Socials.Links = append(s.Socials.Links, book.SocialLink{
			Name:  name,
			Link:  book.NormalizeLink(l.Link),
			Pages: cleanPages(l.Pages),
		})
	}

	if len(p.PagesWithAddedButton) > 0 {
		s.Buttons = make(map[int]struct{}, len(p.PagesWithAddedButton))
		for _, n := range p.PagesWithAddedButton {
			if n >= 1 {
				s.Buttons[n] = struct{}{}
			}
		}
	}
	return s, nil
}

func restorePreviews(s book.State, p Payload) book.State {
	restore := func(key string, action func(book.CellKey, int) book.Action) {
		k, err := book.ParseCellKey(key)
		if err != nil {
			return
		}
		pv, ok := s.Preview(k)
		if !ok {
			return
		}
		s = book.Reduce(s, action(k, pv.Generation))
	}
	for key, msg := range p.PDFPreviewErrors {
		restore(key, func(k book.CellKey, gen int) book.Action {
			return book.PreviewFailedToRender{Key: k, Generation: gen, Err: msg}
		})
	}
	for key, url := range p.PDFPagePreviews {
		restore(key, func(k book.CellKey, gen int) book.Action {
			return book.PreviewRendered{Key: k, Generation: gen, DataURL: url}
		})
	}
	return s
}

// unresolvedPreviewError is recorded for PDF cells whose render had not
// finished when the payload was written. Nothing renders a decoded payload.
const unresolvedPreviewError = "preview was not ready when published"

func failUnresolvedPreviews(s book.State) book.State {
	var actions []book.Action
	for key, pv := range s.Previews {
		if pv.Status == book.PreviewPending {
			actions = append(actions, book.PreviewFailedToRender{Key: key, Generation: pv.Generation, Err: unresolvedPreviewError})
		}
	}
	return book.ReduceAll(s, actions...)
}

func cleanPages(pages []int) []int {
	out := make([]int, 0, len(pages))
	for _, n := range pages {
		if n >= 1 {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Marshal encodes a state as JSON.
func Marshal(s book.State) ([]byte, error) {
	return json.Marshal(Encode(s))
}

// Unmarshal decodes JSON written by Marshal or by an older writer.
func Unmarshal(data []byte) (book.State, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return book.State{}, fmt.Errorf("decoding handoff payload: %w", err)
	}
	return Decode(p)
}
