package orchestrator

import (
	"math"
	"time"

	"gallery-showcase/pkg/models"
)

const (
	// MobileBreakpoint is the viewport width below which a viewer counts as mobile
	MobileBreakpoint = 768

	treadmillEase = "power1.inOut"
)

// TreadmillStep is one segment of the treadmill cycle. A hold has no target;
// a move slides the track to Offset.
type TreadmillStep struct {
	Hold     bool
	Offset   float64
	Duration time.Duration
	Ease     string
}

// TreadmillTrack is the horizontal strip a treadmill gallery slides through.
// Items are spaced one gap apart and each stop centres one item in the viewport.
type TreadmillTrack struct {
	Count         int
	ViewportWidth float64
	ImageWidth    float64
	Gap           float64
	Hold          time.Duration
	Move          time.Duration
}

// Reset reports whether the step is the instantaneous snap back to the start
func (s TreadmillStep) Reset() bool {
	return !s.Hold && s.Duration == 0
}

// NewTreadmillTrack sizes a track of count items for a viewport
func NewTreadmillTrack(count int, viewportWidth float64, variant models.Variant) TreadmillTrack {
	mobile := viewportWidth < MobileBreakpoint

	t := TreadmillTrack{
		Count:         count,
		ViewportWidth: viewportWidth,
		ImageWidth:    720,
		Gap:           viewportWidth,
		Hold:          2 * time.Second,
		Move:          1800 * time.Millisecond,
	}
	if mobile {
		t.ImageWidth = 280
		t.Gap = viewportWidth * 0.8
		t.Hold = 1500 * time.Millisecond
		t.Move = 1200 * time.Millisecond
	}
	if variant == models.VariantTreadmillCompact {
		t.ImageWidth = math.Round(t.ImageWidth * 0.8)
	}
	return t
}

// Position is the track offset that centres item i in the viewport
func (t TreadmillTrack) Position(i int) float64 {
	return (t.ViewportWidth-t.ImageWidth)/2 - float64(i)*(t.ImageWidth+t.Gap)
}

// Steps is one cycle: hold on the first item, move to each following item with a
// hold in between, then snap back to the start. The items are rendered twice so
// the last move lands on the copy of the first item.
func (t TreadmillTrack) Steps() []TreadmillStep {
	if t.Count == 0 {
		return nil
	}

	steps := []TreadmillStep{{Hold: true, Duration: t.Hold}}
	for i := 1; i <= t.Count; i++ {
		steps = append(steps, TreadmillStep{Offset: t.Position(i), Duration: t.Move, Ease: treadmillEase})
		if i < t.Count {
			steps = append(steps, TreadmillStep{Hold: true, Duration: t.Hold})
		}
	}
	return append(steps, TreadmillStep{Offset: t.Position(0)})
}

// Cycle is the running time of one full pass over the track
func (t TreadmillTrack) Cycle() time.Duration {
	var total time.Duration
	for _, s := range t.Steps() {
		total += s.Duration
	}
	return total
}
