package generator

import (
	"fmt"
	"sort"

	"gallery-showcase/pkg/models"
)

// Options are the per-gallery generation settings
type Options struct {
	Title          string
	Description    string
	Layout         models.Layout
	Variant        models.Variant
	Animation      AnimationOverride
	TransitionTime *int
	Sizes          map[string]models.Size
	Covers         CoverManifest
	// GeneratedCovers lists the files in the gallery's CoversDir
	GeneratedCovers []string
}

// CreateMediaItem builds the media item for filename at index of the sorted listing.
// covers may be nil, in which case videos get no poster.
func CreateMediaItem(galleryID, filename string, index int, covers CoverResolver) models.MediaItem {
	item := models.MediaItem{
		ID:       fmt.Sprintf("%s-%d", galleryID, index),
		Type:     DetectFileType(filename),
		URL:      AssetPath(galleryID, filename),
		Category: galleryID,
	}

	if item.Type == models.MediaVideo && covers != nil {
		if thumb, ok := covers.ResolveCover(galleryID, filename); ok {
			item.ThumbURL = thumb
		}
	}

	return item
}

// SortMediaFiles orders files so every video precedes every non-video,
// alphabetically within each group. The input slice is not modified.
func SortMediaFiles(files []string) []string {
	sorted := make([]string, len(files))
	copy(sorted, files)

	sort.SliceStable(sorted, func(i, j int) bool {
		vi := DetectFileType(sorted[i]) == models.MediaVideo
		vj := DetectFileType(sorted[j]) == models.MediaVideo
		if vi != vj {
			return vi
		}
		return sorted[i] < sorted[j]
	})

	return sorted
}

// GenerateGalleryConfig builds a gallery configuration from a folder listing
func GenerateGalleryConfig(galleryID string, files []string, opts *Options) models.GalleryConfig {
	if opts == nil {
		opts = &Options{}
	}

	resolver := NewListingResolver(files, opts.Covers).WithGenerated(opts.GeneratedCovers)
	sorted := SortMediaFiles(files)

	items := make([]models.MediaItem, 0, len(sorted))
	for i, file := range sorted {
		item := CreateMediaItem(galleryID, file, i, resolver)
		if size, ok := opts.Sizes[file]; ok {
			s := size
			item.Size = &s
		}
		items = append(items, item)
	}

	effect := opts.Animation.Effect
	if effect == "" {
		effect = models.EffectNone
	}
	animation := opts.Animation.Apply(Preset(effect))

	layout := opts.Layout
	if layout == "" {
		layout = models.LayoutGrid
	}

	var transitionTime *int
	if opts.TransitionTime != nil {
		transitionTime = models.Int(*opts.TransitionTime)
	}

	return models.GalleryConfig{
		ID:             galleryID,
		Title:          opts.Title,
		Description:    opts.Description,
		Layout:         layout,
		Variant:        opts.Variant,
		RenderContext:  models.RenderContextFor(layout, opts.Variant),
		Animation:      animation,
		Items:          items,
		TransitionTime: transitionTime,
	}
}
