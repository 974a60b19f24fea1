package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/book"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/handoff"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <payload.json>",
	Short: "Print the pages of a saved flipbook payload",
	Long: `Decode a flipbook handoff payload (as served by GET /api/v1/preview/payload)
and print what each page renders: its grid, cell contents, table of contents
and overlays.

Examples:
  flipbook inspect book.json
  flipbook inspect --viewport 400 --json book.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Int("viewport", 0, "Viewport width in pixels used to pick the flipbook size")
	inspectCmd.Flags().Bool("json", false, "Output as JSON")
}

// InspectResult is the decoded flipbook.
type InspectResult struct {
	PageCount int             `json:"page_count"`
	Size      book.FlipSize   `json:"size"`
	Pages     []book.PageView `json:"pages"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}
	state, err := handoff.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}

	result := InspectResult{
		PageCount: state.PageCount,
		Size:      book.FlipSizeFor(mustGetInt(cmd, "viewport")),
		Pages:     book.RenderBook(state),
	}
	if mustGetBool(cmd, "json") {
		return outputJSON(result)
	}

	fmt.Printf("Pages:  %d\n", result.PageCount)
	fmt.Printf("Size:   %dx%d", result.Size.Width, result.Size.Height)
	if result.Size.Mobile {
		fmt.Print(" (mobile)")
	}
	fmt.Println()
	for _, page := range result.Pages {
		fmt.Println()
		fmt.Print(summarizePage(page))
	}
	return nil
}

// summarizePage formats one rendered page as indented text lines.
func summarizePage(page book.PageView) string {
	var b strings.Builder
	if page.TOC != nil {
		fmt.Fprintf(&b, "Page %d: %s\n", page.Number, page.TOC.Title)
		if page.TOC.Message != "" {
			fmt.Fprintf(&b, "  %s\n", page.TOC.Message)
		}
		for _, e := range page.TOC.Entries {
			if e.Clickable {
				fmt.Fprintf(&b, "  %s ... %d\n", e.Content, e.Page)
			} else {
				fmt.Fprintf(&b, "  %s\n", e.Content)
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Page %d: %dx%d grid\n", page.Number, page.Rows, page.Cols)
	for _, c := range page.Cells {
		fmt.Fprintf(&b, "  [%d] %s", c.Index, c.Content)
		switch {
		case c.Name != "":
			fmt.Fprintf(&b, " %s", c.Name)
		case c.Label != "":
			fmt.Fprintf(&b, " %q", c.Label)
		}
		if c.Content == book.ContentImage || c.Content == book.ContentVideo || c.Content == book.ContentPDFPreview {
			fmt.Fprintf(&b, " (%s)", c.Fit)
		}
		b.WriteString("\n")
	}
	for _, s := range page.Socials {
		fmt.Fprintf(&b, "  social %s -> %s\n", s.Name, s.Href)
	}
	if page.Button != nil {
		fmt.Fprintf(&b, "  button %q\n", page.Button.Label)
	}
	return b.String()
}
