package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/config"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/preview"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail <pdf>...",
	Short: "Render first-page PNG previews of PDF files",
	Long: `Render the first page of each PDF to a PNG file, using the same renderer
the web server uses for PDF cell previews.

Examples:
  # Render a single document next to the current directory
  flipbook thumbnail brochure.pdf

  # Render into a directory at a higher scale
  flipbook thumbnail --out previews --scale 2 *.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runThumbnail,
}

func init() {
	rootCmd.AddCommand(thumbnailCmd)

	thumbnailCmd.Flags().String("out", ".", "Directory to write PNG files to")
	thumbnailCmd.Flags().Float64("scale", 0, "Render scale relative to 72 DPI (default from PREVIEW_SCALE)")
	thumbnailCmd.Flags().Int("max-size", -1, "Longest side in pixels, 0 for no bound (default from PREVIEW_MAX_SIZE)")
	thumbnailCmd.Flags().Int("concurrency", 0, "Parallel renders (default from PREVIEW_WORKERS)")
	thumbnailCmd.Flags().Bool("json", false, "Output as JSON")
}

// ThumbnailResult describes one rendered document.
type ThumbnailResult struct {
	Source string `json:"source"`
	Output string `json:"output"`
	Pages  int    `json:"pages"`
	Title  string `json:"title,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// thumbnailName maps a source document to its PNG file name.
func thumbnailName(source string) string {
	name := media.ASCIIFileName(source)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" {
		name = "document"
	}
	return name + ".png"
}

func runThumbnail(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	outDir := mustGetString(cmd, "out")
	jsonOutput := mustGetBool(cmd, "json")

	scale := mustGetFloat64(cmd, "scale")
	if scale <= 0 {
		scale = cfg.Preview.Scale
	}
	maxSize := mustGetInt(cmd, "max-size")
	if maxSize < 0 {
		maxSize = cfg.Preview.MaxSize
	}
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Preview.Workers
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	renderer := preview.NewFitzRenderer(scale, maxSize)
	bar := newThumbnailProgressBar(len(args), jsonOutput)
	results, errs := renderThumbnails(cmd.Context(), renderer, args, outDir, cfg.Preview.Timeout, concurrency, bar)

	if jsonOutput {
		return outputJSON(results)
	}

	fmt.Println()
	for _, r := range results {
		fmt.Printf("%s -> %s (%dx%d, %d pages)\n", r.Source, r.Output, r.Width, r.Height, r.Pages)
	}
	if len(errs) > 0 {
		fmt.Printf("\nErrors: %d\n", len(errs))
		for _, e := range errs {
			fmt.Printf("  - %v\n", e)
		}
		return fmt.Errorf("%d of %d documents failed", len(errs), len(args))
	}
	return nil
}

// renderThumbnails renders documents with a bounded number of workers.
func renderThumbnails(
	ctx context.Context, renderer *preview.FitzRenderer, sources []string, outDir string,
	timeout time.Duration, concurrency int, bar *progressbar.ProgressBar,
) ([]ThumbnailResult, []error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]ThumbnailResult, len(sources))
	var errs []error
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range sources {
		wg.Add(1)
		go func(idx int, source string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := renderThumbnail(ctx, renderer, source, outDir, timeout)
			mu.Lock()
			if err != nil {
				errs = append(errs, err)
			} else {
				results[idx] = result
			}
			mu.Unlock()

			if bar != nil {
				bar.Add(1)
			}
		}(i, sources[i])
	}
	wg.Wait()

	// Filter out empty results (from errors)
	valid := make([]ThumbnailResult, 0, len(results))
	for i := range results {
		if results[i].Output != "" {
			valid = append(valid, results[i])
		}
	}
	return valid, errs
}

func renderThumbnail(ctx context.Context, renderer *preview.FitzRenderer, source, outDir string, timeout time.Duration) (ThumbnailResult, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return ThumbnailResult{}, fmt.Errorf("%s: %w", source, err)
	}
	info, err := preview.Inspect(data)
	if err != nil {
		return ThumbnailResult{}, fmt.Errorf("%s: %w", source, err)
	}

	renderCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	img, err := renderer.RenderImage(renderCtx, data)
	if err != nil {
		return ThumbnailResult{}, fmt.Errorf("%s: %w", source, err)
	}
	png, err := preview.EncodePNG(img)
	if err != nil {
		return ThumbnailResult{}, fmt.Errorf("%s: %w", source, err)
	}

	output := filepath.Join(outDir, thumbnailName(source))
	if err := os.WriteFile(output, png, 0o644); err != nil {
		return ThumbnailResult{}, fmt.Errorf("writing %s: %w", output, err)
	}
	bounds := img.Bounds()
	return ThumbnailResult{
		Source: source,
		Output: output,
		Pages:  info.PageCount,
		Title:  info.Title,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// newThumbnailProgressBar creates a progress bar for rendering, or nil if JSON output.
func newThumbnailProgressBar(count int, jsonOutput bool) *progressbar.ProgressBar {
	if jsonOutput {
		return nil
	}
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Rendering previews"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}
