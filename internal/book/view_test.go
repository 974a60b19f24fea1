package book

import (
	"testing"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
)

func TestRenderPage_BlankCells(t *testing.T) {
	s := Reduce(confirmed(3), SetGridShape{Page: 1, Rows: 2, Cols: 2})

	v, ok := RenderPage(s, 1)
	if !ok {
		t.Fatal("expected page")
	}
	if v.Number != 2 || len(v.Cells) != 4 {
		t.Fatalf("unexpected view %+v", v)
	}
	for _, c := range v.Cells {
		if c.Content != ContentBlank || c.Label != "Blank 2" {
			t.Errorf("expected blank cell labelled with page number, got %+v", c)
		}
	}
}

func TestRenderPage_OutOfRange(t *testing.T) {
	if _, ok := RenderPage(confirmed(1), 1); ok {
		t.Error("expected no page")
	}
	if _, ok := RenderPage(confirmed(1), -1); ok {
		t.Error("expected no page")
	}
}

func TestRenderPage_CellContents(t *testing.T) {
	video := NewFileRef("v", "clip.mp4", "video/mp4", 10, "/api/v1/files/v")
	doc := NewFileRef("d", "notes.docx", "application/msword", 10, "/api/v1/files/d")
	s := ReduceAll(confirmed(1),
		SetGridShape{Page: 0, Rows: 3, Cols: 2},
		AssignFile{Page: 0, Cell: 0, File: imageFile("img")},
		AssignFile{Page: 0, Cell: 1, File: video},
		AssignFile{Page: 0, Cell: 2, File: pdfFile("loading")},
		AssignFile{Page: 0, Cell: 3, File: pdfFile("ready")},
		AssignFile{Page: 0, Cell: 4, File: pdfFile("failed")},
		AssignFile{Page: 0, Cell: 5, File: doc},
		SetFitMode{Page: 0, Cell: 0, Fit: FitCover},
	)
	ready, _ := s.Preview(CellKey{Page: 0, Cell: 3})
	failed, _ := s.Preview(CellKey{Page: 0, Cell: 4})
	s = ReduceAll(s,
		PreviewRendered{Key: CellKey{Page: 0, Cell: 3}, Generation: ready.Generation, DataURL: "data:image/png;base64,AA"},
		PreviewFailedToRender{Key: CellKey{Page: 0, Cell: 4}, Generation: failed.Generation, Err: "broken"},
	)

	v, _ := RenderPage(s, 0)

	want := []CellContent{ContentImage, ContentVideo, ContentPDFLoading, ContentPDFPreview, ContentPDFFailed, ContentUnsupported}
	for i, c := range v.Cells {
		if c.Content != want[i] {
			t.Errorf("cell %d: expected %s, got %s", i, want[i], c.Content)
		}
	}
	if v.Cells[0].URL != "/api/v1/files/img" || v.Cells[0].Fit != FitCover {
		t.Errorf("unexpected image cell %+v", v.Cells[0])
	}
	if v.Cells[2].Label != LoadingPreviewText {
		t.Errorf("expected loading label, got %q", v.Cells[2].Label)
	}
	if v.Cells[3].URL != "data:image/png;base64,AA" {
		t.Errorf("expected preview data URL, got %q", v.Cells[3].URL)
	}
	if v.Cells[4].Label != FailedPreviewText {
		t.Errorf("expected failed label, got %q", v.Cells[4].Label)
	}
	if v.Cells[5].Label != UnsupportedText {
		t.Errorf("expected unsupported label, got %q", v.Cells[5].Label)
	}
}

func TestRenderPage_PDFWithoutCacheEntryIsLoading(t *testing.T) {
	// A payload restored without previews still shows the loading state.
	f := pdfFile("a")
	s := confirmed(1)
	s.Pages[0].Cells[0].File = &f

	v, _ := RenderPage(s, 0)
	if v.Cells[0].Content != ContentPDFLoading {
		t.Errorf("expected loading, got %s", v.Cells[0].Content)
	}
}

func TestRenderPage_TOCTakeover(t *testing.T) {
	intro, summary, broken := "Intro", "Summary", "Broken"
	one, three, nine := 1, 3, 9
	s := ReduceAll(confirmed(3),
		SetGridShape{Page: 1, Rows: 2, Cols: 2},
		AssignFile{Page: 1, Cell: 0, File: imageFile("x")},
		AddSocial{Name: "Instagram"},
		AddSocialPage{Page: 2},
		AddButtonPage{Page: 2},
		SetTOCPage{Page: 2},
		SetTOCCount{Count: 4},
		SetTOCEntry{Index: 0, Content: &intro, Page: &one},
		SetTOCEntry{Index: 1, Content: &summary, Page: &three},
		SetTOCEntry{Index: 2, Content: &broken, Page: &nine},
	)

	v, _ := RenderPage(s, 1)

	if v.TOC == nil {
		t.Fatal("expected TOC page")
	}
	if len(v.Cells) != 0 || len(v.Socials) != 0 || v.Button != nil {
		t.Error("expected TOC page to replace cells and overlays")
	}
	if v.TOC.Title != TOCTitle || len(v.TOC.Entries) != 4 {
		t.Fatalf("unexpected toc %+v", v.TOC)
	}
	e := v.TOC.Entries
	if !e[0].Clickable || e[0].JumpIndex != 0 {
		t.Errorf("expected Intro to jump to 0, got %+v", e[0])
	}
	if !e[1].Clickable || e[1].JumpIndex != 2 {
		t.Errorf("expected Summary to jump to 2, got %+v", e[1])
	}
	if e[2].Clickable || e[2].JumpIndex != -1 {
		t.Errorf("expected out-of-range entry to be inert, got %+v", e[2])
	}
	if e[3].Content != TOCEmptyEntry || e[3].Clickable {
		t.Errorf("expected empty placeholder entry, got %+v", e[3])
	}
}

func TestRenderPage_TOCWithoutEntries(t *testing.T) {
	s := Reduce(confirmed(2), SetTOCPage{Page: 1})
	s.TOC.Entries = nil

	v, _ := RenderPage(s, 0)
	if v.TOC == nil || v.TOC.Message != TOCEmptyMessage {
		t.Errorf("expected empty message, got %+v", v.TOC)
	}
}

func TestRenderPage_TOCClickabilityMatchesPageCount(t *testing.T) {
	for n := 1; n <= 6; n++ {
		s := ReduceAll(confirmed(n), SetTOCPage{Page: 1}, SetTOCCount{Count: n + 3})
		for i := range n + 3 {
			p := i
			s = Reduce(s, SetTOCEntry{Index: i, Page: &p})
		}
		v, _ := RenderPage(s, 0)
		for i, e := range v.TOC.Entries {
			want := i >= 1 && i <= n
			if e.Clickable != want {
				t.Fatalf("n=%d entry page %d: expected clickable=%v", n, i, want)
			}
		}
	}
}

func TestRenderPage_Overlays(t *testing.T) {
	s := ReduceAll(confirmed(3),
		AddSocial{Name: "Facebook"},
		AddSocial{Name: "YouTube"},
		SetSocialLink{Name: "YouTube", Link: "youtube.com/x"},
		AddSocialPage{Page: 1},
		AddButtonPage{Page: 3},
	)

	first, _ := RenderPage(s, 0)
	if len(first.Socials) != 2 {
		t.Fatalf("expected 2 icons, got %d", len(first.Socials))
	}
	if first.Socials[0].Href != "#" {
		t.Errorf("expected placeholder href, got %q", first.Socials[0].Href)
	}
	if first.Socials[1].Href != "https://youtube.com/x" || first.Socials[1].Icon == "" {
		t.Errorf("unexpected icon %+v", first.Socials[1])
	}
	if first.Button != nil {
		t.Error("expected no button on page 1")
	}

	last, _ := RenderPage(s, 2)
	if len(last.Socials) != 0 {
		t.Error("expected no icons on page 3")
	}
	if last.Button == nil || last.Button.Label != ButtonLabel {
		t.Error("expected button on page 3")
	}
}

func TestRenderBook(t *testing.T) {
	views := RenderBook(confirmed(4))
	if len(views) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(views))
	}
	for i, v := range views {
		if v.Index != i || v.Number != i+1 {
			t.Errorf("page %d: unexpected numbering %+v", i, v)
		}
	}
}

func TestNewFileRef_Classifies(t *testing.T) {
	f := NewFileRef("1", "scan.pdf", "application/x-pdf", 1, "")
	if f.Kind != media.KindPDF || !f.IsPDF() {
		t.Errorf("expected pdf, got %s", f.Kind)
	}
	if g := NewFileRef("2", "photo.JPG", "", 1, ""); g.Kind != media.KindImage {
		t.Errorf("expected image from extension, got %s", g.Kind)
	}
	var nilRef *FileRef
	if nilRef.IsPDF() {
		t.Error("nil ref is not a pdf")
	}
}
