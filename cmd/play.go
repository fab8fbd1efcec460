package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gallery-showcase/pkg/analytics"
	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
	"gallery-showcase/pkg/orchestrator"
)

// Command options
var (
	playSteps     int
	reducedMotion bool
	connection    string
	viewportWidth float64
	baseURL       string
	analyticsURL  string
	noAnimation   bool
)

// newPlayCmd creates a new command that plays a gallery's transitions in the terminal
func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [id]",
		Short: "Play the transitions of a gallery",
		Long: `Drive a gallery through its transitions in real time and print every state change
and animation frame. Autoplaying galleries advance on their own; others are advanced step by step.
Treadmill galleries print their track plan instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			gallery, err := a.galleries.Gallery(ctx, args[0])
			if err != nil {
				return err
			}
			if len(gallery.Items) == 0 {
				return fmt.Errorf("cannot play %s: %w", gallery.ID, models.ErrNoItems)
			}

			out := cmd.OutOrStdout()
			if gallery.Variant.IsTreadmill() {
				printTreadmill(out, gallery)
				return nil
			}
			return play(ctx, out, gallery)
		},
	}

	cmd.Flags().IntVarP(&playSteps, "steps", "n", 0, "Number of transitions to play (default: one full cycle)")
	cmd.Flags().BoolVar(&reducedMotion, "reduced-motion", false, "Behave as if the viewer prefers reduced motion")
	cmd.Flags().StringVar(&connection, "connection", "4g", "Effective connection type: slow-2g, 2g, 3g or 4g")
	cmd.Flags().Float64Var(&viewportWidth, "viewport-width", 1920, "Viewport width in pixels; below 768 counts as mobile")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Preload adjacent images from this server, e.g. http://localhost:8080")
	cmd.Flags().StringVar(&analyticsURL, "analytics-url", "", "Post analytics batches to this endpoint instead of logging them")
	cmd.Flags().BoolVar(&noAnimation, "no-animation", false, "Never acquire the animation capability")

	return cmd
}

// play runs an orchestrator over gallery until the requested number of transitions completed
func play(ctx context.Context, out io.Writer, gallery models.GalleryConfig) error {
	var sink analytics.Sink = analytics.LogSink{Logger: observability.WithField("component", "analytics")}
	if analyticsURL != "" {
		sink = analytics.HTTPSink{URL: analyticsURL, Client: &http.Client{Timeout: 10 * time.Second}}
	}
	collector, err := analytics.NewCollector(sink)
	if err != nil {
		return err
	}
	if err := collector.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := collector.Stop(stopCtx); err != nil {
			observability.Warnf("Error flushing analytics: %v", err)
		}
	}()

	clock := orchestrator.RealClock()
	opts := orchestrator.Options{
		Clock:   clock,
		Tracker: collector,
		Policy: orchestrator.MotionPolicy{
			ReducedMotion: reducedMotion,
			Connection:    connection,
			Mobile:        viewportWidth < orchestrator.MobileBreakpoint,
		},
	}
	if !noAnimation {
		opts.Loader = func(context.Context) (orchestrator.Animator, error) {
			return orchestrator.NewClockAnimator(clock, func(f orchestrator.Frame) {
				fmt.Fprintf(out, "    %-8s item %d -> %v\n", f.Layer, f.Index, f.Props)
			}), nil
		}
	}

	var preloader *orchestrator.HTTPPreloader
	if baseURL != "" {
		preloader = orchestrator.NewHTTPPreloader(baseURL, nil)
		opts.Preloader = preloader
	}

	o := orchestrator.New(gallery, opts)
	defer o.Close()

	idle := make(chan orchestrator.State, 1)
	o.OnChange(func(s orchestrator.State) {
		if s.Transitioning {
			fmt.Fprintf(out, "%s transitioning %d -> %d\n", time.Now().Format("15:04:05.000"), *s.PreviousIndex, s.ActiveIndex)
			return
		}
		fmt.Fprintf(out, "%s showing %d: %s\n", time.Now().Format("15:04:05.000"), s.ActiveIndex, gallery.Items[s.ActiveIndex].URL)
		select {
		case idle <- s:
		default:
		}
	})

	steps := playSteps
	if steps <= 0 {
		steps = len(gallery.Items)
	}

	fmt.Fprintf(out, "Playing %s (%s, %s %.2fs), %d steps\n", gallery.ID, gallery.Layout, gallery.Animation.Effect, gallery.Animation.Duration, steps)
	o.SetVisible(true)
	defer o.SetVisible(false)

	timeline := orchestrator.BuildTimeline(gallery.Animation, 0, 1)
	wait := o.AutoplayInterval() + timeline.Total() + 5*time.Second

	autoplay := o.AutoplayInterval() > 0
	for i := 0; i < steps; i++ {
		if !autoplay {
			// give the capability a moment to load before the first manual step
			if i == 0 && opts.Loader != nil {
				time.Sleep(50 * time.Millisecond)
			}
			o.Advance()
		}

		select {
		case <-idle:
		case <-time.After(wait):
			return fmt.Errorf("transition %d did not complete within %s", i+1, wait)
		case <-ctx.Done():
			return nil
		}
	}

	if preloader != nil {
		for _, url := range preloader.Failed() {
			fmt.Fprintf(out, "Failed to preload %s\n", url)
		}
	}
	return nil
}

// printTreadmill prints the track plan of a treadmill gallery
func printTreadmill(out io.Writer, gallery models.GalleryConfig) {
	track := orchestrator.NewTreadmillTrack(len(gallery.Items), viewportWidth, gallery.Variant)

	fmt.Fprintf(out, "Treadmill %s: %d items, image width %.0fpx, gap %.0fpx, cycle %s\n",
		gallery.ID, track.Count, track.ImageWidth, track.Gap, track.Cycle())
	for _, step := range track.Steps() {
		switch {
		case step.Hold:
			fmt.Fprintf(out, "  hold %s\n", step.Duration)
		case step.Reset():
			fmt.Fprintf(out, "  reset to %.0fpx\n", step.Offset)
		default:
			fmt.Fprintf(out, "  move to %.0fpx over %s (%s)\n", step.Offset, step.Duration, step.Ease)
		}
	}
}
