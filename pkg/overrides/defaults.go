package overrides

import (
	"gallery-showcase/pkg/generator"
	"gallery-showcase/pkg/models"
)

// defaultOptions are the generation settings of the built-in galleries
func defaultOptions() map[string]generator.Options {
	return map[string]generator.Options{
		"gallery1": {
			Title:          "Featured Products",
			Description:    "Our most popular items this season",
			Layout:         models.LayoutCarousel,
			Animation:      generator.AnimationOverride{Effect: models.EffectFade},
			TransitionTime: models.Int(2000),
		},
		"gallery2": {
			Title:          "Product Collection",
			Description:    "Full catalog of available products",
			Layout:         models.LayoutCarousel,
			Animation:      generator.AnimationOverride{Effect: models.EffectNone},
			TransitionTime: models.Int(700),
		},
	}
}

// defaultStatic are the authored presentation overrides of the built-in galleries
func defaultStatic() []models.GalleryConfig {
	return []models.GalleryConfig{
		{
			ID:          "gallery1",
			Title:       "Gallery 1",
			Description: "First gallery showcase",
			Layout:      models.LayoutFullscreen,
			Animation: generator.AnimationOverride{
				Duration: models.Float(0.7),
				Ease:     "power2.inOut",
			}.Apply(generator.Preset(models.EffectFade)),
			GalleryContainer: &models.GalleryContainerConfig{
				Padding:        "0",
				Display:        "flex",
				AlignItems:     "center",
				JustifyContent: "center",
				MinHeight:      "100vh",
			},
			Container: &models.ContainerConfig{
				Width:        "100%",
				MaxWidth:     "100vw",
				Height:       "100vh",
				MinHeight:    "100vh",
				MaxHeight:    "100vh",
				AspectRatio:  "auto",
				Alignment:    "center",
				Background:   "#fff",
				BorderRadius: "0",
				Padding:      "0",
			},
			TransitionTime: models.Int(2000),
		},
		{
			ID:          "gallery2",
			Title:       "Product Collection",
			Description: "Full catalog of available products",
			Layout:      models.LayoutCarousel,
			Animation:   generator.Preset(models.EffectFade),
			GalleryContainer: &models.GalleryContainerConfig{
				Display:        "flex",
				AlignItems:     "center",
				JustifyContent: "center",
				MinHeight:      "100vh",
				Padding:        "4rem 2rem 0 2rem",
			},
			Container: &models.ContainerConfig{
				Width:        "80%",
				MaxWidth:     "100vw",
				Height:       "70vh",
				MinHeight:    "400px",
				MaxHeight:    "90vh",
				AspectRatio:  "auto",
				Alignment:    "center",
				Background:   "#fff",
				BorderRadius: "12px",
				Padding:      "1rem",
			},
			TransitionTime: models.Int(2500),
		},
	}
}
