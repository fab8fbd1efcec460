package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/models"
)

// newExportCmd creates a new command for exporting gallery data
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export gallery data",
		Long:  `Export all gallery configurations in the specified format. Currently supported formats: json.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			if format != "json" {
				return fmt.Errorf("unsupported export format: %s (supported formats: json)", format)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			galleries, err := a.galleries.Galleries(cmd.Context())
			if err != nil {
				return err
			}
			return exportJSON(cmd.OutOrStdout(), galleries)
		},
	}
}

// exportJSON writes the galleries in the shape served by GET /api/galleries
func exportJSON(w io.Writer, galleries []models.GalleryConfig) error {
	data, err := json.MarshalIndent(models.GalleriesResponse{
		Success: true,
		Data:    galleries,
		Count:   len(galleries),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
