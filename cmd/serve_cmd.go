package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/analytics"
	"gallery-showcase/pkg/handlers"
	"gallery-showcase/pkg/observability"
	"gallery-showcase/pkg/services"
)

const shutdownTimeout = 30 * time.Second

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the gallery API, the index page and the media assets via HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Serve(ctx)
		},
	}
}

// Serve runs the web server until ctx is cancelled
func Serve(ctx context.Context) error {
	a, err := openApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer a.close()

	telemetry, err := observability.Initialize(ctx, observability.NewConfig("gallery-showcase", handlers.Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			observability.Warnf("Error shutting down telemetry: %v", err)
		}
	}()

	metrics, err := observability.NewHTTPMetrics()
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	collector, err := analytics.NewCollector(analytics.LogSink{Logger: observability.WithField("component", "analytics")})
	if err != nil {
		return fmt.Errorf("failed to create analytics collector: %w", err)
	}
	if err := collector.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := collector.Stop(stopCtx); err != nil {
			observability.Warnf("Error flushing analytics: %v", err)
		}
	}()

	deps := handlers.Dependencies{
		Galleries: a.galleries,
		Covers:    services.NewCoverService(a.source, a.overrides, a.galleries.Refresh),
		Events:    collector,
		AssetsDir: a.cfg.AssetsDir,
		PublicDir: a.cfg.PublicDir,
		ViewsDir:  a.cfg.ViewsDir,
		AdminKey:  a.cfg.AdminKey,
		Metrics:   metrics,
	}
	if bucket, ok := a.source.(*services.BucketService); ok {
		deps.Signer = bucket
	}

	srv := &http.Server{
		Addr:         a.cfg.ServerAddress(),
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Longer for cover generation
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.cfg.PrintServerStartMessage()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	observability.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	observability.Info("Server stopped")
	return nil
}
