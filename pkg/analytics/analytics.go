// Package analytics collects gallery events in memory and delivers them in batches.
// A Collector has an explicit Start/Flush/Stop lifecycle and is injected wherever
// events are produced; nothing in this package is a global.
package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
)

const (
	DefaultBatchSize     = 10
	DefaultFlushInterval = 30 * time.Second
)

// Action classifies a gallery event
type Action string

const (
	ActionView        Action = "view"
	ActionInteraction Action = "interaction"
	ActionError       Action = "error"
	ActionPerformance Action = "performance"
)

// GalleryEvent is an event about one gallery
type GalleryEvent struct {
	GalleryID string
	Action    Action
	Data      map[string]interface{}
}

// Tracker receives gallery events
type Tracker interface {
	TrackGallery(event GalleryEvent)
}

// NopTracker drops every event
type NopTracker struct{}

// TrackGallery implements Tracker
func (NopTracker) TrackGallery(GalleryEvent) {}

// Sink delivers a batch of events
type Sink interface {
	Send(ctx context.Context, events []models.ClientEvent) error
}

// ErrStopped is returned by Start after Stop
var ErrStopped = errors.New("analytics collector stopped")

// Option configures a Collector
type Option func(*Collector)

// WithBatchSize sets how many queued events trigger a flush
func WithBatchSize(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithFlushInterval sets the periodic flush interval
func WithFlushInterval(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// Collector queues events and flushes them to a Sink when the batch is full,
// on every flush interval, and on Stop. Failed batches are put back at the
// front of the queue.
type Collector struct {
	sink      Sink
	batchSize int
	interval  time.Duration
	sessionID string
	now       func() time.Time
	events    metric.Int64Counter

	mu      sync.Mutex
	queue   []models.ClientEvent
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewCollector creates a collector delivering to sink
func NewCollector(sink Sink, opts ...Option) (*Collector, error) {
	counter, err := otel.Meter(observability.InstrumentationName).Int64Counter(
		"gallery.analytics.events",
		metric.WithDescription("Analytics events accepted by the collector"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return nil, err
	}

	c := &Collector{
		sink:      sink,
		batchSize: DefaultBatchSize,
		interval:  DefaultFlushInterval,
		sessionID: uuid.NewString(),
		now:       time.Now,
		events:    counter,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SessionID identifies this collector's session on every event it records
func (c *Collector) SessionID() string {
	return c.sessionID
}

// Start begins periodic flushing
func (c *Collector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return nil
	}
	c.started = true

	go c.loop()
	return nil
}

func (c *Collector) loop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Flush(context.Background()); err != nil {
				observability.Warnf("Failed to send analytics: %v", err)
			}
		case <-c.stop:
			return
		}
	}
}

// Track records an event. Events recorded after Stop are dropped.
func (c *Collector) Track(name string, properties map[string]interface{}) {
	c.Record(models.ClientEvent{Name: name, Properties: properties})
}

// Record queues a client event, filling in the timestamp and session id when absent
func (c *Collector) Record(event models.ClientEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = c.now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = c.sessionID
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, event)
	full := len(c.queue) >= c.batchSize
	if full {
		c.wg.Add(1)
	}
	c.mu.Unlock()

	c.events.Add(context.Background(), 1, metric.WithAttributes(observability.EventName(event.Name)))

	if full {
		go func() {
			defer c.wg.Done()
			if err := c.Flush(context.Background()); err != nil {
				observability.Warnf("Failed to send analytics: %v", err)
			}
		}()
	}
}

// TrackGallery implements Tracker
func (c *Collector) TrackGallery(event GalleryEvent) {
	props := make(map[string]interface{}, len(event.Data)+2)
	props["gallery_id"] = event.GalleryID
	props["action"] = string(event.Action)
	for k, v := range event.Data {
		props[k] = v
	}
	c.Track("gallery_event", props)
}

// TrackError records an error with optional context
func (c *Collector) TrackError(err error, fields map[string]interface{}) {
	props := make(map[string]interface{}, len(fields)+1)
	props["message"] = err.Error()
	for k, v := range fields {
		props[k] = v
	}
	c.Track("error", props)
}

// PerformanceMetrics are client rendering measurements
type PerformanceMetrics struct {
	LoadTime           float64
	RenderTime         float64
	AnimationFrameRate float64
	MemoryUsage        *float64
}

// TrackPerformance records rendering measurements
func (c *Collector) TrackPerformance(m PerformanceMetrics) {
	props := map[string]interface{}{
		"loadTime":           m.LoadTime,
		"renderTime":         m.RenderTime,
		"animationFrameRate": m.AnimationFrameRate,
	}
	if m.MemoryUsage != nil {
		props["memoryUsage"] = *m.MemoryUsage
	}
	c.Track("performance_metrics", props)
}

// Pending returns the number of queued events
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Flush sends every queued event. On failure the batch is requeued ahead of newer events.
func (c *Collector) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.queue
	c.queue = nil
	c.mu.Unlock()

	if err := c.sink.Send(ctx, batch); err != nil {
		c.mu.Lock()
		c.queue = append(batch, c.queue...)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Stop ends periodic flushing and performs a final flush. It is safe to call more than once.
func (c *Collector) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	started := c.started
	c.mu.Unlock()

	if started {
		close(c.stop)
		select {
		case <-c.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.wg.Wait()
	return c.Flush(ctx)
}
