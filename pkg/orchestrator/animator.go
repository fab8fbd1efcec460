package orchestrator

import (
	"context"
	"sync"

	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
)

// Layer is one of the two stacked elements of a crossfade
type Layer int

const (
	// LayerPrevious holds the item being transitioned away from
	LayerPrevious Layer = iota
	// LayerActive holds the item being transitioned to
	LayerActive
)

func (l Layer) String() string {
	if l == LayerPrevious {
		return "previous"
	}
	return "active"
}

// Handle controls a running animation
type Handle interface {
	Kill()
}

// Animator is the animation capability an Orchestrator drives
type Animator interface {
	// Set applies props to the item on layer immediately
	Set(layer Layer, index int, props models.Props)
	// Play runs the timeline and calls onComplete when it ends, unless killed first
	Play(timeline Timeline, onComplete func()) Handle
}

// Loader acquires an animation capability
type Loader func(ctx context.Context) (Animator, error)

type noopHandle struct{}

func (noopHandle) Kill() {}

// NoopAnimator is the animator used until a capability is acquired.
// Play completes immediately, so every transition is an instant swap.
type NoopAnimator struct{}

// Set implements Animator
func (NoopAnimator) Set(Layer, int, models.Props) {}

// Play implements Animator
func (NoopAnimator) Play(_ Timeline, onComplete func()) Handle {
	onComplete()
	return noopHandle{}
}

// Frame is a property change applied by a ClockAnimator
type Frame struct {
	Layer Layer
	Index int
	Props models.Props
}

// ClockAnimator plays timelines by waiting out their duration on a Clock.
// It keeps the last applied props of every item, which is what a renderer would show.
type ClockAnimator struct {
	clock   Clock
	mu      sync.Mutex
	props   map[int]models.Props
	onFrame func(Frame)
}

// NewClockAnimator creates a ClockAnimator; onFrame, if set, observes every applied change
func NewClockAnimator(clock Clock, onFrame func(Frame)) *ClockAnimator {
	if clock == nil {
		clock = RealClock()
	}
	return &ClockAnimator{
		clock:   clock,
		props:   make(map[int]models.Props),
		onFrame: onFrame,
	}
}

// Props returns the current props of an item
func (a *ClockAnimator) Props(index int) models.Props {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(models.Props, len(a.props[index]))
	for k, v := range a.props[index] {
		out[k] = v
	}
	return out
}

// Set implements Animator
func (a *ClockAnimator) Set(layer Layer, index int, props models.Props) {
	a.mu.Lock()
	current := a.props[index]
	if current == nil {
		current = make(models.Props)
		a.props[index] = current
	}
	for k, v := range props {
		current[k] = v
	}
	a.mu.Unlock()

	if a.onFrame != nil {
		a.onFrame(Frame{Layer: layer, Index: index, Props: props})
	}
}

type timerHandle struct {
	mu     sync.Mutex
	timer  Timer
	killed bool
}

func (h *timerHandle) Kill() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.killed = true
	if h.timer != nil {
		h.timer.Stop()
	}
}

func (h *timerHandle) alive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.killed
}

// Play implements Animator. Start props apply at once and end props when the timeline elapses.
func (a *ClockAnimator) Play(timeline Timeline, onComplete func()) Handle {
	for _, tw := range timeline.Tweens {
		if tw.From != nil {
			a.Set(tw.Layer, tw.Index, tw.From)
		}
	}

	h := &timerHandle{}
	timer := a.clock.AfterFunc(timeline.Total(), func() {
		if !h.alive() {
			return
		}
		for _, tw := range timeline.Tweens {
			a.Set(tw.Layer, tw.Index, tw.To)
		}
		observability.Debugf("Timeline finished after %s (%s)", timeline.Total(), timeline.Ease)
		onComplete()
	})

	h.mu.Lock()
	h.timer = timer
	h.mu.Unlock()
	return h
}
