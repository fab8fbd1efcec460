package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/generator"
	"gallery-showcase/pkg/services"
)

// Command options
var (
	forceRegenerate bool
	frameTimeMs     int // Time in milliseconds where to extract the frame
	coverGallery    string
	coverVideo      string
	clearCovers     bool
)

// newGenerateCoversCmd creates a new command for generating covers for videos
func newGenerateCoversCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-covers",
		Short: "Generate covers for videos without an existing cover",
		Long: `Extract a poster frame with ffmpeg for every video that has no plausible cover and
store it next to the video as thumb-{name}.jpg. Works on the local assets directory and on a bucket.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			covers := services.NewCoverService(a.source, a.overrides, a.galleries.Refresh)
			out := cmd.OutOrStdout()

			switch {
			case clearCovers && coverGallery != "" && coverVideo != "":
				if err := covers.ClearCover(cmd.Context(), coverGallery, coverVideo); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared cover of %s/%s\n", coverGallery, coverVideo)
				return nil

			case clearCovers:
				result, err := covers.ClearCovers(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, result.Message)
				return nil

			case coverGallery != "" && coverVideo != "":
				err := covers.GenerateCover(cmd.Context(), coverGallery, coverVideo, frameTimeMs, func(step string, progress int) {
					fmt.Fprintf(out, "[%3d%%] %s\n", progress, step)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Generated %s\n", generator.GeneratedCoverPath(coverVideo))
				return nil
			}

			fmt.Fprintln(out, "Scanning galleries for videos without covers...")
			result, err := covers.GenerateCovers(cmd.Context(), frameTimeMs, forceRegenerate)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, result.Message)
			if result.Errors > 0 {
				return fmt.Errorf("%d covers could not be generated", result.Errors)
			}
			return nil
		},
	}

	// Add command-specific flags
	cmd.Flags().BoolVarP(&forceRegenerate, "force", "f", false, "Force regeneration of all covers, even if they exist")
	cmd.Flags().IntVarP(&frameTimeMs, "time", "t", 1000, "Time in milliseconds where to extract the cover frame")
	cmd.Flags().StringVarP(&coverGallery, "gallery", "g", "", "Only process this gallery (requires --video)")
	cmd.Flags().StringVarP(&coverVideo, "video", "v", "", "Only process this video (requires --gallery)")
	cmd.Flags().BoolVar(&clearCovers, "clear", false, "Remove generated covers instead of creating them")

	return cmd
}
