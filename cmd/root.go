package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/config"
	"gallery-showcase/pkg/observability"
	"gallery-showcase/pkg/overrides"
	"gallery-showcase/pkg/services"
)

// Configuration flags
var (
	assetsDir     string
	portNumber    string
	overridesFile string
	bucketName    string
	adminKey      string
	logLevel      string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gallery-showcase",
		Short: "Gallery Showcase builds and serves animated media galleries",
		Long: `Gallery Showcase is a command line application that turns folders of images and
videos into gallery configurations, serves them over HTTP and plays their transitions.
Media can live in a local assets directory or in Google Cloud Storage.`,
		SilenceUsage: true,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&assetsDir, "assets", "a", "", "Set the ASSETS_DIR (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&overridesFile, "overrides", "o", "", "Set the OVERRIDES_FILE (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&adminKey, "admin-key", "s", "", "Set the ADMIN_KEY (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the LOG_LEVEL: debug, info, warn or error")

	// Add commands to root
	rootCmd.AddCommand(newListLayoutsCmd())
	rootCmd.AddCommand(newListGalleriesCmd())
	rootCmd.AddCommand(newShowGalleryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newGenerateCoversCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	flagEnv := map[string]string{
		"ASSETS_DIR":     assetsDir,
		"PORT":           portNumber,
		"OVERRIDES_FILE": overridesFile,
		"BUCKET_NAME":    bucketName,
		"ADMIN_KEY":      adminKey,
		"LOG_LEVEL":      logLevel,
	}
	for key, value := range flagEnv {
		if value != "" {
			if err := os.Setenv(key, value); err != nil {
				return nil, err
			}
		}
	}

	// Load configuration from environment variables (potentially set above)
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		observability.GetLogger().SetLevel(observability.ParseLevel(level))
	}
	return cfg, nil
}

// app is the set of services every command works from
type app struct {
	cfg       *config.Config
	source    services.Source
	overrides *overrides.Set
	galleries *services.GalleryService
	close     func()
}

// openApp loads configuration and opens the media source it names
func openApp(ctx context.Context) (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	set, err := overrides.Load(cfg.OverridesFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, overrides: set, close: func() {}}
	if cfg.UsesBucket() {
		bucket, err := services.NewBucketService(ctx, cfg.BucketName, cfg.BucketPrefix)
		if err != nil {
			return nil, err
		}
		a.source = bucket
		a.close = func() {
			if err := bucket.Close(); err != nil {
				observability.Warnf("Error closing storage client: %v", err)
			}
		}
	} else {
		a.source = services.NewFileService(cfg.AssetsDir)
	}

	a.galleries = services.NewGalleryService(a.source, set, cfg.CacheTTL)
	return a, nil
}
