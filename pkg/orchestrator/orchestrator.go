// Package orchestrator drives the active item of a cycling gallery: crossfade
// transitions between a previous and an active layer, autoplay, adjacent-item
// preloading and cleanup. One Orchestrator owns the state of one gallery.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"gallery-showcase/pkg/analytics"
	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
)

const (
	// fallbackSlack is added to a timeline's running time before the fallback timer forces completion
	fallbackSlack = 200 * time.Millisecond

	// slowAutoplayNum/slowAutoplayDen stretch autoplay by 1.5 on very slow connections
	slowAutoplayNum = 3
	slowAutoplayDen = 2
)

// State is the transition state of a gallery
type State struct {
	ActiveIndex   int
	PreviousIndex *int
	Transitioning bool
}

func (s State) clone() State {
	if s.PreviousIndex != nil {
		prev := *s.PreviousIndex
		s.PreviousIndex = &prev
	}
	return s
}

// MotionPolicy describes the viewer's motion and bandwidth preferences
type MotionPolicy struct {
	ReducedMotion bool
	// Connection is the effective connection type, e.g. "4g", "2g", "slow-2g"
	Connection string
	Mobile     bool
}

// SlowConnection reports whether the connection is classified as very slow
func (p MotionPolicy) SlowConnection() bool {
	return p.Connection == "slow-2g" || p.Connection == "2g"
}

// Options configure an Orchestrator. Zero values are usable.
type Options struct {
	Clock Clock
	// Animator is an animation capability that is available from the start
	Animator Animator
	// Loader acquires the animation capability on first visibility when Animator is nil
	Loader    Loader
	Preloader Preloader
	Tracker   analytics.Tracker
	Policy    MotionPolicy
}

// Orchestrator cycles the active item of one gallery
type Orchestrator struct {
	clock     Clock
	loader    Loader
	preloader Preloader
	tracker   analytics.Tracker
	policy    MotionPolicy
	log       *observability.Logger

	mu             sync.Mutex
	gallery        models.GalleryConfig
	state          State
	animator       Animator
	capable        bool
	degraded       bool
	visible        bool
	visibleSince   time.Time
	closed         bool
	seq            uint64
	handle         Handle
	fallback       Timer
	autoplay       Timer
	autoplayGen    uint64
	acquireStarted bool
	cancelAcquire  context.CancelFunc
	listeners      []func(State)
}

// New creates an orchestrator for gallery in the Idle state with the first item active
func New(gallery models.GalleryConfig, opts Options) *Orchestrator {
	o := &Orchestrator{
		clock:     opts.Clock,
		loader:    opts.Loader,
		preloader: opts.Preloader,
		tracker:   opts.Tracker,
		policy:    opts.Policy,
		gallery:   gallery,
		animator:  NoopAnimator{},
		log:       observability.WithField("gallery_id", gallery.ID),
	}
	if o.clock == nil {
		o.clock = RealClock()
	}
	if o.tracker == nil {
		o.tracker = analytics.NopTracker{}
	}
	if opts.Animator != nil {
		o.animator = opts.Animator
		o.capable = true
	}
	return o
}

// State returns a snapshot of the transition state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Gallery returns the configuration being orchestrated
func (o *Orchestrator) Gallery() models.GalleryConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gallery
}

// Animated reports whether transitions currently use the animated path
func (o *Orchestrator) Animated() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.instantLocked()
}

// OnChange registers a listener called after every state change
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.listeners = append(o.listeners, fn)
	}
}

func (o *Orchestrator) instantLocked() bool {
	return o.gallery.Animation.Instant() ||
		o.policy.ReducedMotion ||
		o.policy.SlowConnection() ||
		!o.capable ||
		o.degraded
}

// Advance moves to the next item, wrapping at the end. It returns false without
// changing anything while a transition is in flight, after Close, or when the
// gallery has no items.
func (o *Orchestrator) Advance() bool {
	o.mu.Lock()
	n := len(o.gallery.Items)
	if o.closed || o.state.Transitioning || n == 0 {
		o.mu.Unlock()
		return false
	}

	prev := o.state.ActiveIndex
	next := (prev + 1) % n
	o.seq++
	seq := o.seq
	animator := o.animator
	items := o.gallery.Items
	galleryID := o.gallery.ID

	if o.instantLocked() {
		o.state = State{ActiveIndex: next}
		snapshot, listeners := o.state.clone(), o.listenersLocked()
		o.mu.Unlock()

		o.safely("animator", func() {
			animator.Set(LayerPrevious, prev, models.Props{"opacity": 0})
			animator.Set(LayerActive, next, models.Props{"opacity": 1})
		})
		o.afterAdvance(galleryID, prev, next, items, snapshot, listeners)
		return true
	}

	o.state = State{ActiveIndex: next, PreviousIndex: &prev, Transitioning: true}
	timeline := BuildTimeline(o.gallery.Animation, prev, next)
	o.fallback = o.clock.AfterFunc(timeline.Total()+fallbackSlack, func() {
		o.finish(seq, true)
	})
	snapshot, listeners := o.state.clone(), o.listenersLocked()
	o.mu.Unlock()

	o.afterAdvance(galleryID, prev, next, items, snapshot, listeners)

	var handle Handle
	played := o.safely("animator", func() {
		handle = animator.Play(timeline, func() { o.finish(seq, false) })
	})
	if !played {
		o.finish(seq, false)
		return true
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		if handle != nil {
			handle.Kill()
		}
		return true
	}
	if o.seq == seq && o.state.Transitioning {
		o.handle = handle
	}
	o.mu.Unlock()
	return true
}

func (o *Orchestrator) afterAdvance(galleryID string, prev, next int, items []models.MediaItem, snapshot State, listeners []func(State)) {
	o.notify(snapshot, listeners)
	o.tracker.TrackGallery(analytics.GalleryEvent{
		GalleryID: galleryID,
		Action:    analytics.ActionInteraction,
		Data: map[string]interface{}{
			"kind":      "slide_transition",
			"fromIndex": prev,
			"toIndex":   next,
		},
	})
	o.preloadAround(items, next)
}

// finish completes transition seq; forced marks the fallback timer path
func (o *Orchestrator) finish(seq uint64, forced bool) {
	o.mu.Lock()
	if o.closed || seq != o.seq || !o.state.Transitioning {
		o.mu.Unlock()
		return
	}

	o.state.PreviousIndex = nil
	o.state.Transitioning = false
	if o.fallback != nil {
		o.fallback.Stop()
		o.fallback = nil
	}
	handle := o.handle
	o.handle = nil
	snapshot, listeners := o.state.clone(), o.listenersLocked()
	o.mu.Unlock()

	if forced {
		o.log.Debugf("Transition %d forced to complete by fallback timer", seq)
		if handle != nil {
			handle.Kill()
		}
	}
	o.notify(snapshot, listeners)
}

func (o *Orchestrator) listenersLocked() []func(State) {
	listeners := make([]func(State), len(o.listeners))
	copy(listeners, o.listeners)
	return listeners
}

func (o *Orchestrator) notify(s State, listeners []func(State)) {
	for _, fn := range listeners {
		fn := fn
		o.safely("listener", func() { fn(s.clone()) })
	}
}

// SetVisible reports whether the gallery is on screen. Autoplay only runs while
// visible, and the animation capability is acquired on first visibility.
func (o *Orchestrator) SetVisible(visible bool) {
	o.mu.Lock()
	if o.closed || o.visible == visible {
		o.mu.Unlock()
		return
	}
	o.visible = visible

	now := o.clock.Now()
	event := analytics.GalleryEvent{GalleryID: o.gallery.ID}
	if visible {
		o.visibleSince = now
		event.Action = analytics.ActionView
		event.Data = map[string]interface{}{
			"layout":          string(o.gallery.Layout),
			"itemCount":       len(o.gallery.Items),
			"isMobile":        o.policy.Mobile,
			"connectionSpeed": o.policy.Connection,
		}
	} else {
		event.Action = analytics.ActionInteraction
		event.Data = map[string]interface{}{
			"viewDuration": now.Sub(o.visibleSince).Milliseconds(),
			"layout":       string(o.gallery.Layout),
		}
	}

	var acquireCtx context.Context
	if visible && o.shouldAcquireLocked() {
		o.acquireStarted = true
		acquireCtx, o.cancelAcquire = context.WithCancel(context.Background())
	}

	o.armAutoplayLocked()
	items, active := o.gallery.Items, o.state.ActiveIndex
	o.mu.Unlock()

	o.tracker.TrackGallery(event)
	if acquireCtx != nil {
		go o.acquire(acquireCtx)
	}
	if visible {
		o.preloadAround(items, active)
	}
}

func (o *Orchestrator) shouldAcquireLocked() bool {
	return o.loader != nil &&
		!o.capable &&
		!o.acquireStarted &&
		!o.policy.ReducedMotion &&
		o.gallery.Layout.Cycles()
}

func (o *Orchestrator) acquire(ctx context.Context) {
	defer o.recoverPanic("animation loader")

	animator, err := o.loader(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil || animator == nil {
		o.log.Warnf("Animation capability unavailable, using instant transitions: %v", err)
		o.tracker.TrackGallery(analytics.GalleryEvent{
			GalleryID: o.Gallery().ID,
			Action:    analytics.ActionError,
			Data:      map[string]interface{}{"error": "animation load failed"},
		})
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.animator = animator
	o.capable = true
}

// AutoplayInterval is the effective autoplay cadence, or zero when the gallery does not autoplay
func (o *Orchestrator) AutoplayInterval() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.autoplayIntervalLocked()
}

func (o *Orchestrator) autoplayIntervalLocked() time.Duration {
	if !o.gallery.Autoplays() {
		return 0
	}
	d := time.Duration(*o.gallery.TransitionTime) * time.Millisecond
	if o.policy.SlowConnection() {
		d = d * slowAutoplayNum / slowAutoplayDen
	}
	return d
}

// Autoplaying reports whether an autoplay timer is armed
func (o *Orchestrator) Autoplaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.autoplay != nil
}

func (o *Orchestrator) armAutoplayLocked() {
	o.autoplayGen++
	if o.autoplay != nil {
		o.autoplay.Stop()
		o.autoplay = nil
	}
	if o.closed || !o.visible {
		return
	}

	interval := o.autoplayIntervalLocked()
	if interval <= 0 {
		return
	}
	gen := o.autoplayGen
	o.autoplay = o.clock.AfterFunc(interval, func() { o.tick(gen) })
}

func (o *Orchestrator) tick(gen uint64) {
	o.mu.Lock()
	if o.closed || gen != o.autoplayGen {
		o.mu.Unlock()
		return
	}
	o.autoplay = o.clock.AfterFunc(o.autoplayIntervalLocked(), func() { o.tick(gen) })
	o.mu.Unlock()

	o.Advance()
}

// Update replaces the gallery configuration. Autoplay is re-armed when the
// layout or transition time changes; an active index past the new end resets to 0.
func (o *Orchestrator) Update(gallery models.GalleryConfig) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}

	rearm := gallery.Layout != o.gallery.Layout || !sameInt(gallery.TransitionTime, o.gallery.TransitionTime)
	o.gallery = gallery

	var handle Handle
	var listeners []func(State)
	reset := o.state.ActiveIndex >= len(gallery.Items) ||
		(o.state.PreviousIndex != nil && *o.state.PreviousIndex >= len(gallery.Items))
	if reset {
		o.seq++
		handle = o.handle
		o.handle = nil
		if o.fallback != nil {
			o.fallback.Stop()
			o.fallback = nil
		}
		o.state = State{}
		listeners = o.listenersLocked()
	}
	if rearm {
		o.armAutoplayLocked()
	}
	snapshot := o.state.clone()
	o.mu.Unlock()

	if handle != nil {
		handle.Kill()
	}
	if reset {
		o.notify(snapshot, listeners)
	}
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Close cancels the in-flight animation, every pending timer and capability
// acquisition. Callbacks that arrive afterwards are ignored. In-flight preloads
// are left to finish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.seq++
	o.autoplayGen++

	handle := o.handle
	o.handle = nil
	if o.fallback != nil {
		o.fallback.Stop()
		o.fallback = nil
	}
	if o.autoplay != nil {
		o.autoplay.Stop()
		o.autoplay = nil
	}
	if o.cancelAcquire != nil {
		o.cancelAcquire()
		o.cancelAcquire = nil
	}
	o.listeners = nil
	o.mu.Unlock()

	if handle != nil {
		handle.Kill()
	}
}

// preloadAround warms the image items adjacent to index. Videos and gifs are not
// preloaded, and nothing is preloaded on very slow connections.
func (o *Orchestrator) preloadAround(items []models.MediaItem, index int) {
	n := len(items)
	if o.preloader == nil || o.policy.SlowConnection() || n < 2 {
		return
	}

	targets := []int{(index + 1) % n}
	if prev := (index - 1 + n) % n; prev != targets[0] {
		targets = append(targets, prev)
	}

	for _, i := range targets {
		item := items[i]
		if item.Type != models.MediaImage {
			continue
		}
		go func(url string) {
			defer o.recoverPanic("preloader")
			_ = o.preloader.Preload(context.Background(), url)
		}(item.URL)
	}
}

// safely runs fn, containing a panic to this gallery. It reports whether fn returned normally.
func (o *Orchestrator) safely(where string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.degrade(where, r)
			ok = false
		}
	}()
	fn()
	return true
}

func (o *Orchestrator) recoverPanic(where string) {
	if r := recover(); r != nil {
		o.degrade(where, r)
	}
}

// Degraded reports whether a recovered panic switched the gallery to instant transitions
func (o *Orchestrator) Degraded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.degraded
}

// Retry leaves the degraded state so the animated path is tried again
func (o *Orchestrator) Retry() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.degraded = false
}

// degrade switches the gallery to instant transitions after a panic
func (o *Orchestrator) degrade(where string, r interface{}) {
	o.log.Errorf("Recovered panic in %s: %v", where, r)

	o.mu.Lock()
	o.degraded = true
	galleryID := o.gallery.ID
	o.mu.Unlock()

	o.tracker.TrackGallery(analytics.GalleryEvent{
		GalleryID: galleryID,
		Action:    analytics.ActionError,
		Data:      map[string]interface{}{"error": where + " panic"},
	})
}
