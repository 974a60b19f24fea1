package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flipbook",
	Short: "A browser flipbook editor and viewer",
	Long: `Flipbook serves a browser-based editor for laying out images, videos and
PDF first-page previews on flipbook pages, with a table of contents,
social link overlays and a live page-turning preview.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
