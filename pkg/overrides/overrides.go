// Package overrides holds authored gallery metadata: the generation settings
// per gallery and the static presentation configs merged over generated ones.
package overrides

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"gallery-showcase/pkg/generator"
	"gallery-showcase/pkg/models"
)

// File is the on-disk override document
type File struct {
	Galleries []Gallery `toml:"gallery"`
}

// Gallery is one [[gallery]] table of an override file
type Gallery struct {
	ID       string                  `toml:"id"`
	Generate *Generate               `toml:"generate"`
	Static   *Static                 `toml:"static"`
	Covers   generator.CoverManifest `toml:"covers"`
	Sizes    map[string]models.Size  `toml:"sizes"`
}

// Generate are the settings used when a gallery is generated from its folder
type Generate struct {
	Title          string                      `toml:"title"`
	Description    string                      `toml:"description"`
	Layout         models.Layout               `toml:"layout"`
	Variant        models.Variant              `toml:"variant"`
	Animation      generator.AnimationOverride `toml:"animation"`
	TransitionTime *int                        `toml:"transition_time"`
}

// Static is an authored presentation override
type Static struct {
	Title            string                         `toml:"title"`
	Description      string                         `toml:"description"`
	Layout           models.Layout                  `toml:"layout"`
	Variant          models.Variant                 `toml:"variant"`
	Animation        *generator.AnimationOverride   `toml:"animation"`
	TransitionTime   *int                           `toml:"transition_time"`
	Container        *models.ContainerConfig        `toml:"container"`
	GalleryContainer *models.GalleryContainerConfig `toml:"gallery_container"`
}

// Set is the effective override data, safe for concurrent use
type Set struct {
	mu      sync.RWMutex
	options map[string]generator.Options
	static  map[string]models.GalleryConfig
}

// Defaults returns the built-in override set
func Defaults() *Set {
	s := &Set{
		options: defaultOptions(),
		static:  make(map[string]models.GalleryConfig),
	}
	for _, cfg := range defaultStatic() {
		s.static[cfg.ID] = cfg
	}
	return s
}

// Empty returns a set with no overrides, so galleries are purely generated
func Empty() *Set {
	return &Set{
		options: make(map[string]generator.Options),
		static:  make(map[string]models.GalleryConfig),
	}
}

// Load returns the built-in set extended by the file at path.
// Entries in the file add to or replace built-in entries by gallery id.
// An empty path returns the built-in set.
func Load(path string) (*Set, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file %s: %w", path, err)
	}

	if err := s.Apply(file); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply merges an override document into the set
func (s *Set) Apply(file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range file.Galleries {
		if g.ID == "" {
			return fmt.Errorf("override entry without id")
		}

		opts := s.options[g.ID]
		if g.Generate != nil {
			opts = generator.Options{
				Title:          g.Generate.Title,
				Description:    g.Generate.Description,
				Layout:         g.Generate.Layout,
				Variant:        g.Generate.Variant,
				Animation:      g.Generate.Animation,
				TransitionTime: g.Generate.TransitionTime,
			}
		}
		if g.Covers.Gallery != "" || len(g.Covers.Files) > 0 {
			opts.Covers = g.Covers
		}
		if len(g.Sizes) > 0 {
			opts.Sizes = g.Sizes
		}
		s.options[g.ID] = opts

		if g.Static != nil {
			s.static[g.ID] = g.Static.config(g.ID)
		}
	}
	return nil
}

// SetOptions replaces the generation settings of one gallery
func (s *Set) SetOptions(galleryID string, opts generator.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[galleryID] = opts
}

// Options returns the generation settings for a gallery; unknown ids get empty settings
func (s *Set) Options(galleryID string) *generator.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := s.options[galleryID]
	return &opts
}

// Static returns the static configs ordered by id
func (s *Set) Static() []models.GalleryConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]models.GalleryConfig, 0, len(s.static))
	for _, cfg := range s.static {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ID < configs[j].ID
	})
	return configs
}

func (st *Static) config(id string) models.GalleryConfig {
	cfg := models.GalleryConfig{
		ID:               id,
		Title:            st.Title,
		Description:      st.Description,
		Layout:           st.Layout,
		Variant:          st.Variant,
		TransitionTime:   st.TransitionTime,
		Container:        st.Container,
		GalleryContainer: st.GalleryContainer,
	}
	if st.Animation != nil {
		effect := st.Animation.Effect
		if effect == "" {
			effect = models.EffectNone
		}
		cfg.Animation = st.Animation.Apply(generator.Preset(effect))
	}
	return cfg
}
