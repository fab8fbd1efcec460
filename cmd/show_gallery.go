package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/models"
)

// newShowGalleryCmd creates a new command for showing gallery details
func newShowGalleryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-gallery [id]",
		Short: "Show the items of a specific gallery",
		Long:  `Show the configuration and media items of a gallery identified by its id.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			gallery, err := a.galleries.Gallery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			showGallery(cmd.OutOrStdout(), gallery)
			return nil
		},
	}
}

// showGallery displays details about a specific gallery
func showGallery(w io.Writer, gallery models.GalleryConfig) {
	fmt.Fprintf(w, "Gallery: %s\n", gallery.Title)
	fmt.Fprintf(w, "ID: %s\n", gallery.ID)
	fmt.Fprintf(w, "Layout: %s (%s)\n", gallery.Layout, gallery.RenderContext)
	fmt.Fprintf(w, "Animation: %s %.2fs %s\n", gallery.Animation.Effect, gallery.Animation.Duration, gallery.Animation.Ease)
	if gallery.TransitionTime != nil {
		fmt.Fprintf(w, "Transition time: %dms\n", *gallery.TransitionTime)
	}
	fmt.Fprintf(w, "Items: %d\n", len(gallery.Items))
	fmt.Fprintln(w, "================")

	for i, item := range gallery.Items {
		fmt.Fprintf(w, "%d. %s [%s]\n", i+1, item.ID, item.Type)
		fmt.Fprintf(w, "   URL: %s\n", item.URL)
		if item.ThumbURL != "" {
			fmt.Fprintf(w, "   Cover: %s\n", item.ThumbURL)
		}
		fmt.Fprintln(w)
	}
}
