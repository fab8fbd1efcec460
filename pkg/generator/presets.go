package generator

import "gallery-showcase/pkg/models"

// presets are pre-tuned animation parameters keyed by effect name
var presets = map[models.Effect]models.AnimationConfig{
	models.EffectNone: {
		Duration: 0,
		Ease:     "none",
	},
	models.EffectFade: {
		Duration: 0.8,
		Ease:     "power2.inOut",
		Crossfade: &models.Crossfade{
			From:    models.Props{"opacity": 0},
			To:      models.Props{"opacity": 1},
			PrevOut: models.Props{"opacity": 0},
		},
	},
	models.EffectSlide: {
		Duration: 0.8,
		Ease:     "power2.inOut",
	},
	models.EffectSlideUp: {
		Duration: 0.9,
		Ease:     "power3.out",
		From:     models.Props{"opacity": 0, "y": 100},
		To:       models.Props{"opacity": 1, "y": 0},
	},
	models.EffectSlideDown: {
		Duration: 0.9,
		Ease:     "power3.out",
		From:     models.Props{"opacity": 0, "y": -100},
		To:       models.Props{"opacity": 1, "y": 0},
	},
	models.EffectScale: {
		Duration: 0.8,
		Ease:     "power2.out",
		From:     models.Props{"opacity": 0, "scale": 0.8},
		To:       models.Props{"opacity": 1, "scale": 1},
	},
}

// Preset returns the animation preset for effect. Unknown effects fall back to none.
func Preset(effect models.Effect) models.AnimationConfig {
	preset, ok := presets[effect]
	if !ok {
		effect = models.EffectNone
		preset = presets[effect]
	}
	preset.Effect = effect
	return preset.Clone()
}

// KnownEffect reports whether effect has a preset
func KnownEffect(effect models.Effect) bool {
	_, ok := presets[effect]
	return ok
}

// AnimationOverride carries caller-supplied animation fields. Zero fields are left to the preset.
type AnimationOverride struct {
	Effect    models.Effect     `toml:"effect"`
	Duration  *float64          `toml:"duration"`
	Ease      string            `toml:"ease"`
	Delay     *float64          `toml:"delay"`
	Stagger   *float64          `toml:"stagger"`
	From      models.Props      `toml:"from"`
	To        models.Props      `toml:"to"`
	Crossfade *models.Crossfade `toml:"crossfade"`
}

// Apply shallow-merges the override on top of base
func (o AnimationOverride) Apply(base models.AnimationConfig) models.AnimationConfig {
	if o.Duration != nil {
		base.Duration = *o.Duration
	}
	if o.Ease != "" {
		base.Ease = o.Ease
	}
	if o.Delay != nil {
		base.Delay = models.Float(*o.Delay)
	}
	if o.Stagger != nil {
		base.Stagger = models.Float(*o.Stagger)
	}
	if o.From != nil {
		base.From = o.From.Clone()
	}
	if o.To != nil {
		base.To = o.To.Clone()
	}
	if o.Crossfade != nil {
		base.Crossfade = o.Crossfade.Clone()
	}
	return base
}
