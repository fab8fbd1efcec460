package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/models"
)

// newListLayoutsCmd creates a new command for listing galleries grouped by layout
func newListLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-layouts",
		Short: "List galleries grouped by layout",
		Long:  `List every layout in use with the galleries that use it.`,
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
			listLayouts(cmd.OutOrStdout(), galleries)
			return nil
		},
	}
}

// listLayouts displays all layouts and their galleries
func listLayouts(w io.Writer, galleries []models.GalleryConfig) {
	byLayout := make(map[models.Layout][]string)
	for _, g := range galleries {
		byLayout[g.Layout] = append(byLayout[g.Layout], g.ID)
	}

	layouts := make([]string, 0, len(byLayout))
	for layout := range byLayout {
		layouts = append(layouts, string(layout))
	}
	sort.Strings(layouts)

	fmt.Fprintln(w, "Gallery Layouts:")
	fmt.Fprintln(w, "================")

	for _, layout := range layouts {
		ids := byLayout[models.Layout(layout)]
		fmt.Fprintf(w, "%s\n", layout)
		fmt.Fprintf(w, "  Galleries: %d %v\n", len(ids), ids)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d layouts\n", len(layouts))
}
