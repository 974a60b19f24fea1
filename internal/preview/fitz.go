// Package preview rasterises the first page of uploaded PDFs into PNG data
// URLs and runs those renders on a bounded worker pool.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
)

// ErrNoPages is returned for documents without a single page.
var ErrNoPages = errors.New("document has no pages")

// Renderer renders the first page of a PDF document as an image data URL.
type Renderer interface {
	RenderFirstPage(ctx context.Context, pdf []byte) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, pdf []byte) (string, error)

// RenderFirstPage calls f.
func (f RendererFunc) RenderFirstPage(ctx context.Context, pdf []byte) (string, error) {
	return f(ctx, pdf)
}

// FitzRenderer renders with MuPDF through go-fitz.
type FitzRenderer struct {
	// Scale is relative to the page's natural 72 DPI size.
	Scale float64
	// MaxSize bounds the longer side of the output, 0 for no bound.
	MaxSize int
}

// NewFitzRenderer creates a renderer. A non-positive scale falls back to the default.
func NewFitzRenderer(scale float64, maxSize int) *FitzRenderer {
	if scale <= 0 {
		scale = constants.PreviewScale
	}
	return &FitzRenderer{Scale: scale, MaxSize: maxSize}
}

// RenderFirstPage implements Renderer. MuPDF calls cannot be interrupted, so
// on cancellation the render keeps running in the background and its result
// is discarded.
func (r *FitzRenderer) RenderFirstPage(ctx context.Context, pdf []byte) (string, error) {
	img, err := r.RenderImage(ctx, pdf)
	if err != nil {
		return "", err
	}
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return DataURL(data), nil
}

// RenderImage renders the first page as an image scaled to fit MaxSize.
func (r *FitzRenderer) RenderImage(ctx context.Context, pdf []byte) (image.Image, error) {
	type renderResult struct {
		img image.Image
		err error
	}

	// Buffered so the render goroutine can exit after a timeout.
	resultCh := make(chan renderResult, 1)
	go func() {
		img, err := renderFirstPage(pdf, constants.PDFBaseDPI*r.Scale)
		resultCh <- renderResult{img: img, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, res.err
		}
		return FitWithin(res.img, r.MaxSize), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func renderFirstPage(pdf []byte, dpi float64) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return nil, ErrNoPages
	}
	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render first page: %w", err)
	}
	return img, nil
}

// DocumentInfo describes a PDF document.
type DocumentInfo struct {
	PageCount int    `json:"page_count"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
}

// Inspect opens a PDF and reads its page count and metadata.
func Inspect(pdf []byte) (DocumentInfo, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	info := DocumentInfo{PageCount: doc.NumPage()}
	meta := doc.Metadata()
	if title, ok := meta["title"]; ok {
		info.Title = title
	}
	if author, ok := meta["author"]; ok {
		info.Author = author
	}
	return info, nil
}
