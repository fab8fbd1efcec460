package models

// MediaType classifies a media file
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "gif"
)

// Layout is the arrangement of a gallery section
type Layout string

const (
	LayoutGrid       Layout = "grid"
	LayoutMasonry    Layout = "masonry"
	LayoutCarousel   Layout = "carousel"
	LayoutFullscreen Layout = "fullscreen"
)

// Cycles reports whether the layout shows one item at a time and cycles through them
func (l Layout) Cycles() bool {
	return l == LayoutCarousel || l == LayoutFullscreen
}

// Effect names an animation preset
type Effect string

const (
	EffectFade      Effect = "fade"
	EffectSlide     Effect = "slide"
	EffectSlideUp   Effect = "slide-up"
	EffectSlideDown Effect = "slide-down"
	EffectScale     Effect = "scale"
	EffectNone      Effect = "none"
)

// Props is a set of style property deltas, e.g. {"opacity": 0, "y": 20}
type Props map[string]interface{}

// Clone returns a copy of p that shares no map with it
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Size is an explicit width/height override for a media item
type Size struct {
	Width  interface{} `json:"width,omitempty" toml:"width"`
	Height interface{} `json:"height,omitempty" toml:"height"`
}

// MediaItem represents one displayable asset inside a gallery
type MediaItem struct {
	ID       string    `json:"id"`
	Type     MediaType `json:"type"`
	URL      string    `json:"url"`
	ThumbURL string    `json:"thumbUrl,omitempty"`
	Category string    `json:"category"`
	Size     *Size     `json:"size,omitempty"`
}

// IsVideo reports whether the item plays as a video
func (m MediaItem) IsVideo() bool {
	return m.Type == MediaVideo
}

// Crossfade overrides the two-layer transition properties
type Crossfade struct {
	From    Props `json:"from,omitempty" toml:"from"`
	To      Props `json:"to,omitempty" toml:"to"`
	PrevOut Props `json:"prevOut,omitempty" toml:"prev_out"`
}

// Clone returns a deep copy of c, or nil
func (c *Crossfade) Clone() *Crossfade {
	if c == nil {
		return nil
	}
	return &Crossfade{
		From:    c.From.Clone(),
		To:      c.To.Clone(),
		PrevOut: c.PrevOut.Clone(),
	}
}

// AnimationConfig describes how gallery items transition
type AnimationConfig struct {
	Effect    Effect     `json:"effect" toml:"effect"`
	Duration  float64    `json:"duration" toml:"duration"`
	Ease      string     `json:"ease" toml:"ease"`
	Delay     *float64   `json:"delay,omitempty" toml:"delay"`
	Stagger   *float64   `json:"stagger,omitempty" toml:"stagger"`
	From      Props      `json:"from,omitempty" toml:"from"`
	To        Props      `json:"to,omitempty" toml:"to"`
	Crossfade *Crossfade `json:"crossfade,omitempty" toml:"crossfade"`
}

// Clone returns a deep copy of a
func (a AnimationConfig) Clone() AnimationConfig {
	a.From = a.From.Clone()
	a.To = a.To.Clone()
	a.Crossfade = a.Crossfade.Clone()
	if a.Delay != nil {
		a.Delay = Float(*a.Delay)
	}
	if a.Stagger != nil {
		a.Stagger = Float(*a.Stagger)
	}
	return a
}

// Instant reports whether the animation collapses to an instant swap
func (a AnimationConfig) Instant() bool {
	return a.Effect == EffectNone || a.Duration <= 0
}

// ContainerConfig is the outer style descriptor of a gallery
type ContainerConfig struct {
	Width        string `json:"width,omitempty" toml:"width"`
	MinWidth     string `json:"minWidth,omitempty" toml:"min_width"`
	MaxWidth     string `json:"maxWidth,omitempty" toml:"max_width"`
	Height       string `json:"height,omitempty" toml:"height"`
	MinHeight    string `json:"minHeight,omitempty" toml:"min_height"`
	MaxHeight    string `json:"maxHeight,omitempty" toml:"max_height"`
	AspectRatio  string `json:"aspectRatio,omitempty" toml:"aspect_ratio"`
	Alignment    string `json:"alignment,omitempty" toml:"alignment"`
	Background   string `json:"background,omitempty" toml:"background"`
	Padding      string `json:"padding,omitempty" toml:"padding"`
	Margin       string `json:"margin,omitempty" toml:"margin"`
	BorderRadius string `json:"borderRadius,omitempty" toml:"border_radius"`
}

// GalleryContainerConfig is the inner style descriptor of a gallery
type GalleryContainerConfig struct {
	Padding        string            `json:"padding,omitempty" toml:"padding"`
	Display        string            `json:"display,omitempty" toml:"display"`
	AlignItems     string            `json:"alignItems,omitempty" toml:"align_items"`
	JustifyContent string            `json:"justifyContent,omitempty" toml:"justify_content"`
	MinHeight      string            `json:"minHeight,omitempty" toml:"min_height"`
	Extra          map[string]string `json:"extra,omitempty" toml:"extra"`
}

// GalleryConfig represents one renderable gallery section
type GalleryConfig struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Layout           Layout                  `json:"layout"`
	Variant          Variant                 `json:"variant,omitempty"`
	RenderContext    RenderContext           `json:"renderContext"`
	Animation        AnimationConfig         `json:"animation"`
	Items            []MediaItem             `json:"items"`
	TransitionTime   *int                    `json:"transitionTime,omitempty"`
	Container        *ContainerConfig        `json:"container,omitempty"`
	GalleryContainer *GalleryContainerConfig `json:"galleryContainer,omitempty"`
}

// Clone returns a deep copy of g
func (g GalleryConfig) Clone() GalleryConfig {
	g.Animation = g.Animation.Clone()
	if g.Items != nil {
		items := make([]MediaItem, len(g.Items))
		for i, item := range g.Items {
			if item.Size != nil {
				size := *item.Size
				item.Size = &size
			}
			items[i] = item
		}
		g.Items = items
	}
	if g.TransitionTime != nil {
		g.TransitionTime = Int(*g.TransitionTime)
	}
	if g.Container != nil {
		container := *g.Container
		g.Container = &container
	}
	if g.GalleryContainer != nil {
		inner := *g.GalleryContainer
		if inner.Extra != nil {
			extra := make(map[string]string, len(inner.Extra))
			for k, v := range inner.Extra {
				extra[k] = v
			}
			inner.Extra = extra
		}
		g.GalleryContainer = &inner
	}
	return g
}

// Autoplays reports whether the gallery advances on its own
func (g GalleryConfig) Autoplays() bool {
	return g.Layout.Cycles() && g.TransitionTime != nil && *g.TransitionTime > 0
}

// Int returns a pointer to v, for optional integer fields
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v, for optional float fields
func Float(v float64) *float64 {
	return &v
}
