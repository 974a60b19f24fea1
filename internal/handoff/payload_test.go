package handoff

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
)

func authoredState() book.State {
	intro, summary := "Intro", "Summary"
	one, three := 1, 3
	s := book.ReduceAll(book.State{},
		book.ConfirmPages{Count: 3},
		book.SetGridShape{Page: 0, Rows: 2, Cols: 2},
		book.AssignFile{Page: 0, Cell: 0, File: book.NewFileRef("a", "cover.png", "image/png", 10, "/api/v1/files/a")},
		book.AssignFile{Page: 0, Cell: 3, File: book.NewFileRef("b", "report.pdf", "application/pdf", 20, "/api/v1/files/b")},
		book.AssignFile{Page: 2, Cell: 0, File: book.NewFileRef("c", "broken.pdf", "application/pdf", 5, "/api/v1/files/c")},
		book.SetFitMode{Page: 0, Cell: 0, Fit: book.FitCover},
		book.SetTOCPage{Page: 2},
		book.SetTOCCount{Count: 2},
		book.SetTOCEntry{Index: 0, Content: &intro, Page: &one},
		book.SetTOCEntry{Index: 1, Content: &summary, Page: &three},
		book.AddSocial{Name: "Instagram"},
		book.AddSocial{Name: "LinkedIn"},
		book.SetSocialLink{Name: "Instagram", Link: "instagram.com/me"},
		book.AddSocialPage{Page: 1},
		book.AddSocialPage{Page: 3},
		book.AddButtonPage{Page: 3},
	)
	ready, _ := s.Preview(book.CellKey{Page: 0, Cell: 3})
	failed, _ := s.Preview(book.CellKey{Page: 2, Cell: 0})
	return book.ReduceAll(s,
		book.PreviewRendered{Key: book.CellKey{Page: 0, Cell: 3}, Generation: ready.Generation, DataURL: "data:image/png;base64,AAAA"},
		book.PreviewFailedToRender{Key: book.CellKey{Page: 2, Cell: 0}, Generation: failed.Generation, Err: "corrupt"},
	)
}

func TestRoundTrip(t *testing.T) {
	in := authoredState()

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if out.PageCount != 3 || len(out.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d/%d", out.PageCount, len(out.Pages))
	}
	for i := range in.Pages {
		if in.Pages[i].Rows != out.Pages[i].Rows || in.Pages[i].Cols != out.Pages[i].Cols {
			t.Errorf("page %d: grid differs", i)
		}
		for j := range in.Pages[i].Cells {
			a, b := in.Pages[i].Cells[j], out.Pages[i].Cells[j]
			if a.Fit != b.Fit {
				t.Errorf("cell %d_%d: fit %q != %q", i, j, a.Fit, b.Fit)
			}
			if (a.File == nil) != (b.File == nil) || (a.File != nil && *a.File != *b.File) {
				t.Errorf("cell %d_%d: file %+v != %+v", i, j, a.File, b.File)
			}
		}
	}

	if !slices.Equal(in.TOC.Entries, out.TOC.Entries) || in.TOC.Page != out.TOC.Page {
		t.Errorf("toc differs: %+v vs %+v", in.TOC, out.TOC)
	}
	if len(out.Socials.Links) != 2 {
		t.Fatalf("expected 2 social links, got %d", len(out.Socials.Links))
	}
	for i, l := range out.Socials.Links {
		want := in.Socials.Links[i]
		if l.Name != want.Name || l.Link != want.Link || !slices.Equal(l.Pages, want.Pages) {
			t.Errorf("social %d: %+v != %+v", i, l, want)
		}
		if l.Name.Icon() == "" {
			t.Errorf("social %d: icon not resolved", i)
		}
	}
	if !slices.Equal(out.ButtonPages(), []int{3}) {
		t.Errorf("expected button on page 3, got %v", out.ButtonPages())
	}

	ready, ok := out.Preview(book.CellKey{Page: 0, Cell: 3})
	if !ok || ready.Status != book.PreviewReady || ready.DataURL != "data:image/png;base64,AAAA" {
		t.Errorf("expected ready preview, got %+v", ready)
	}
	failed, ok := out.Preview(book.CellKey{Page: 2, Cell: 0})
	if !ok || failed.Status != book.PreviewFailed || failed.Error != "corrupt" {
		t.Errorf("expected failed preview, got %+v", failed)
	}
}

func TestEncode_FieldNames(t *testing.T) {
	data, err := Marshal(authoredState())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{
		"version", "pageConfigs", "pagesFiles", "imageFitModes", "pdfPagePreviews",
		"tocPage", "tocEntries", "confirmedPages", "socialLinks", "pagesWithAddedButton",
	} {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing field %q", field)
		}
	}
	if string(raw["tocPage"]) != "2" {
		t.Errorf("expected tocPage 2, got %s", raw["tocPage"])
	}
	if !strings.Contains(string(raw["pagesFiles"]), "null") {
		t.Error("expected blank cells encoded as null")
	}
}

func TestEncode_UnsetPagesAreNull(t *testing.T) {
	s := book.Reduce(book.State{}, book.ConfirmPages{Count: 1})
	p := Encode(s)
	data, _ := json.Marshal(p)

	if !strings.Contains(string(data), `"tocPage":null`) {
		t.Errorf("expected null tocPage in %s", data)
	}
	if !strings.Contains(string(data), `"tocEntries":[{"content":"","page":null}]`) {
		t.Errorf("expected null entry page in %s", data)
	}
	if !strings.Contains(string(data), `"pagesWithAddedButton":[]`) {
		t.Errorf("expected empty button list in %s", data)
	}
}

func TestUnmarshal_LegacyShapes(t *testing.T) {
	data := `{
		"pageConfigs": [{"rows": 1, "cols": 1}, {"rows": 1, "cols": 2}],
		"pagesFiles": [[{"name": "a.jpg", "type": "", "url": "blob:a"}], [null, {"name": "b.pdf", "type": "application/pdf", "url": "blob:b"}]],
		"imageFitModes": {"0_0": "cover", "1_1": "stretch", "bogus": "cover"},
		"pdfPagePreviews": {"1_1": "data:image/png;base64,BB", "0_0": "data:ignored"},
		"tocPage": "1",
		"tocEntries": ["Plain title", {"content": "Back", "page": "2"}, {"content": "None", "page": ""}],
		"confirmedPages": 2,
		"socialLinks": [{"name": "facebook", "link": "fb.com/me", "pages": [2, 1, 2, 0]}, {"name": "MySpace", "link": "", "pages": [1]}],
		"pagesWithAddedButton": [2, 7]
	}`

	s, err := Unmarshal([]byte(data))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	c, _ := s.Cell(book.CellKey{Page: 0, Cell: 0})
	if c.File == nil || c.File.Kind != media.KindImage || c.Fit != book.FitCover {
		t.Errorf("unexpected cell 0_0: %+v", c)
	}
	c, _ = s.Cell(book.CellKey{Page: 1, Cell: 1})
	if c.Fit != book.FitContain {
		t.Errorf("expected unknown fit to stay contain, got %q", c.Fit)
	}
	if _, ok := s.Preview(book.CellKey{Page: 0, Cell: 0}); ok {
		t.Error("expected preview on a non-PDF cell dropped")
	}
	if pv, _ := s.Preview(book.CellKey{Page: 1, Cell: 1}); pv.Status != book.PreviewReady {
		t.Errorf("expected ready preview, got %+v", pv)
	}

	if s.TOC.Page != 1 {
		t.Errorf("expected toc page 1, got %d", s.TOC.Page)
	}
	want := []book.TOCEntry{{Content: "Plain title"}, {Content: "Back", Page: 2}, {Content: "None"}}
	if !slices.Equal(s.TOC.Entries, want) {
		t.Errorf("unexpected entries %+v", s.TOC.Entries)
	}

	if len(s.Socials.Links) != 1 {
		t.Fatalf("expected unknown network skipped, got %+v", s.Socials.Links)
	}
	l := s.Socials.Links[0]
	if l.Name != "Facebook" || l.Link != "https://fb.com/me" || !slices.Equal(l.Pages, []int{1, 2}) {
		t.Errorf("unexpected link %+v", l)
	}
	// Out-of-range references are kept and stay inert in the views.
	if !slices.Equal(s.ButtonPages(), []int{2, 7}) {
		t.Errorf("unexpected buttons %v", s.ButtonPages())
	}
}

func TestUnmarshal_PDFWithoutPreviewIsFailed(t *testing.T) {
	s := book.ReduceAll(book.State{},
		book.ConfirmPages{Count: 1},
		book.AssignFile{Page: 0, Cell: 0, File: book.NewFileRef("b", "report.pdf", "application/pdf", 20, "/api/v1/files/b")},
	)
	data, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	p, ok := out.Preview(book.CellKey{})
	if !ok || p.Status != book.PreviewFailed || p.Error != unresolvedPreviewError {
		t.Errorf("expected a failed preview, got %+v", p)
	}
}

func TestUnmarshal_RejectsNewerVersion(t *testing.T) {
	_, err := Unmarshal([]byte(`{"version": 99, "pageConfigs": []}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestUnmarshal_InvalidPageNumber(t *testing.T) {
	_, err := Unmarshal([]byte(`{"pageConfigs": [], "tocPage": "two"}`))
	if err == nil {
		t.Error("expected error")
	}
}

func TestUnmarshal_Malformed(t *testing.T) {
	if _, err := Unmarshal([]byte(`{`)); err == nil {
		t.Error("expected error")
	}
}

func TestStore(t *testing.T) {
	store := NewStore(time.Hour, time.Hour)

	if _, err := store.Load("s1"); !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}

	if err := store.Publish("s1", authoredState()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, err := store.Load("s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", got.PageCount)
	}

	// Payloads are scoped to their session.
	if _, err := store.Load("s2"); !errors.Is(err, ErrNoPayload) {
		t.Errorf("expected other session to have no payload, got %v", err)
	}

	// A second publish replaces the first.
	if err := store.Publish("s1", book.Reduce(book.State{}, book.ConfirmPages{Count: 1})); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Load("s1")
	if got.PageCount != 1 {
		t.Errorf("expected replaced payload, got %d pages", got.PageCount)
	}

	store.Delete("s1")
	if _, err := store.Raw("s1"); !errors.Is(err, ErrNoPayload) {
		t.Errorf("expected payload deleted, got %v", err)
	}
}

func TestStore_PublishRawValidates(t *testing.T) {
	store := NewStore(time.Hour, time.Hour)
	if err := store.PublishRaw("s", []byte(`not json`)); err == nil {
		t.Error("expected error")
	}
	if _, err := store.Raw("s"); !errors.Is(err, ErrNoPayload) {
		t.Error("expected nothing stored")
	}
	if err := store.PublishRaw("s", []byte(`{"pageConfigs":[{"rows":1,"cols":1}]}`)); err != nil {
		t.Fatalf("PublishRaw: %v", err)
	}
	if s, err := store.Load("s"); err != nil || s.PageCount != 1 {
		t.Errorf("unexpected load %d, %v", s.PageCount, err)
	}
}
