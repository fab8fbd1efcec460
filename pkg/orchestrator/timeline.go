package orchestrator

import (
	"math"
	"time"

	"gallery-showcase/pkg/models"
)

// Tween animates one item from one set of props to another
type Tween struct {
	Layer Layer
	Index int
	From  models.Props
	To    models.Props
}

// Timeline is a crossfade between the previous and the active item
type Timeline struct {
	Tweens   []Tween
	Duration time.Duration
	Delay    time.Duration
	Ease     string
}

// Total reports the full running time of a timeline
func (t Timeline) Total() time.Duration {
	return t.Delay + t.Duration
}

// effectMotion are the built-in enter and exit props of an effect
type effectMotion struct {
	enterFrom models.Props
	enterTo   models.Props
	exitTo    models.Props
}

func motionFor(effect models.Effect) effectMotion {
	switch effect {
	case models.EffectSlide:
		return effectMotion{
			enterFrom: models.Props{"x": "100%"},
			enterTo:   models.Props{"x": "0%"},
			exitTo:    models.Props{"x": "-100%"},
		}
	case models.EffectScale:
		return effectMotion{
			enterFrom: models.Props{"opacity": 0, "scale": 0.8},
			enterTo:   models.Props{"opacity": 1, "scale": 1},
			exitTo:    models.Props{"opacity": 0, "scale": 0.8},
		}
	default:
		return effectMotion{
			enterFrom: models.Props{"opacity": 0},
			enterTo:   models.Props{"opacity": 1},
			exitTo:    models.Props{"opacity": 0},
		}
	}
}

// seconds converts a duration in seconds to a time.Duration
func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}

// BuildTimeline derives the crossfade from prev to next. Crossfade overrides win,
// then the animation's own from/to, then the effect's built-in motion.
func BuildTimeline(anim models.AnimationConfig, prev, next int) Timeline {
	m := motionFor(anim.Effect)

	exitTo := m.exitTo
	enterFrom := m.enterFrom
	enterTo := m.enterTo

	if anim.From != nil {
		enterFrom = anim.From
	}
	if anim.To != nil {
		enterTo = anim.To
	}
	if cf := anim.Crossfade; cf != nil {
		if cf.PrevOut != nil {
			exitTo = cf.PrevOut
		}
		if cf.From != nil {
			enterFrom = cf.From
		}
		if cf.To != nil {
			enterTo = cf.To
		}
	}

	t := Timeline{
		Tweens: []Tween{
			{Layer: LayerPrevious, Index: prev, To: exitTo},
			{Layer: LayerActive, Index: next, From: enterFrom, To: enterTo},
		},
		Duration: seconds(anim.Duration),
		Ease:     anim.Ease,
	}
	if anim.Delay != nil {
		t.Delay = seconds(*anim.Delay)
	}
	return t
}
