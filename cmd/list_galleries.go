package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/models"
)

// newListGalleriesCmd creates a new command for listing galleries
func newListGalleriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-galleries",
		Short: "List all galleries",
		Long:  `List all galleries in display order with their layout and the number of items in each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			galleries, err := a.galleries.Galleries(cmd.Context())
			if err != nil {
				return err
			}
			listGalleries(cmd.OutOrStdout(), galleries)
			return nil
		},
	}
}

// listGalleries displays all galleries and their item counts
func listGalleries(w io.Writer, galleries []models.GalleryConfig) {
	fmt.Fprintln(w, "Galleries:")
	fmt.Fprintln(w, "==========")

	items := 0
	for _, g := range galleries {
		fmt.Fprintf(w, "  - %s: %s (%s, items: %d)\n", g.ID, g.Title, g.Layout, len(g.Items))
		if g.Autoplays() {
			fmt.Fprintf(w, "    Autoplay: every %dms\n", *g.TransitionTime)
		}
		items += len(g.Items)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d galleries with %d items\n", len(galleries), items)
}
