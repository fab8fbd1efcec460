package models

// Variant selects a specialised presentation of a layout
type Variant string

const (
	VariantDefault   Variant = ""
	VariantTreadmill Variant = "treadmill"
	// VariantTreadmillCompact is a treadmill with items at 80% of the base width
	VariantTreadmillCompact Variant = "treadmill-compact"
)

// IsTreadmill reports whether the variant is one of the treadmill strips
func (v Variant) IsTreadmill() bool {
	return v == VariantTreadmill || v == VariantTreadmillCompact
}

// RenderContext tells a client how items of a gallery are presented.
// It is carried in the configuration so renderers never infer it from markup.
type RenderContext string

const (
	RenderInline     RenderContext = "inline"
	RenderCarousel   RenderContext = "carousel"
	RenderFullscreen RenderContext = "fullscreen"
	RenderTreadmill  RenderContext = "treadmill"
)

// RenderContextFor derives the render context of a layout and variant
func RenderContextFor(layout Layout, variant Variant) RenderContext {
	switch layout {
	case LayoutCarousel, LayoutFullscreen:
		if variant.IsTreadmill() {
			return RenderTreadmill
		}
		if layout == LayoutFullscreen {
			return RenderFullscreen
		}
		return RenderCarousel
	default:
		return RenderInline
	}
}

// FullViewport reports whether items fill the whole viewport
func (r RenderContext) FullViewport() bool {
	return r == RenderFullscreen || r == RenderTreadmill
}
