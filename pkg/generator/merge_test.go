package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-showcase/pkg/models"
)

func TestMerge(t *testing.T) {
	dynamic := GenerateGalleryConfig("gallery1", []string{"a.jpg", "b.mp4"}, &Options{
		Title:  "Generated",
		Layout: models.LayoutGrid,
	})

	static := models.GalleryConfig{
		ID:             "gallery1",
		Title:          "Authored",
		Layout:         models.LayoutFullscreen,
		Animation:      Preset(models.EffectFade),
		TransitionTime: models.Int(2000),
		Container:      &models.ContainerConfig{Width: "100%"},
		Items:          []models.MediaItem{{ID: "stale"}},
	}

	merged := Merge(dynamic, static)
	assert.Equal(t, "Authored", merged.Title)
	assert.Equal(t, models.LayoutFullscreen, merged.Layout)
	assert.Equal(t, models.RenderFullscreen, merged.RenderContext)
	assert.Equal(t, models.EffectFade, merged.Animation.Effect)
	require.NotNil(t, merged.TransitionTime)
	assert.Equal(t, 2000, *merged.TransitionTime)
	require.NotNil(t, merged.Container)
	assert.Equal(t, "100%", merged.Container.Width)

	require.Len(t, merged.Items, 2)
	assert.Equal(t, "gallery1-0", merged.Items[0].ID)

	t.Run("unauthored fields keep generated values", func(t *testing.T) {
		m := Merge(dynamic, models.GalleryConfig{ID: "gallery1"})
		assert.Equal(t, "Generated", m.Title)
		assert.Equal(t, models.LayoutGrid, m.Layout)
		assert.Equal(t, models.EffectNone, m.Animation.Effect)
		assert.Nil(t, m.TransitionTime)
	})
}

func TestMergeAll(t *testing.T) {
	dynamic := []models.GalleryConfig{
		{ID: "gallery1", Title: "one"},
		{ID: "gallery3", Title: "three"},
	}
	static := []models.GalleryConfig{
		{ID: "gallery1", Title: "Authored"},
		{ID: "gallery2", Title: "Static only"},
	}

	merged, orphans := MergeAll(dynamic, static)
	require.Len(t, merged, 2)
	assert.Equal(t, "Authored", merged[0].Title)
	assert.Equal(t, "three", merged[1].Title)
	assert.Equal(t, []string{"gallery2"}, orphans)
}

func TestSortByID(t *testing.T) {
	configs := []models.GalleryConfig{
		{ID: "gallery10"},
		{ID: "gallery2"},
		{ID: "extras"},
		{ID: "gallery1"},
		{ID: "archive"},
	}
	SortByID(configs)

	ids := make([]string, len(configs))
	for i, c := range configs {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"archive", "extras", "gallery1", "gallery2", "gallery10"}, ids)
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("file2", "file10"))
	assert.False(t, naturalLess("file10", "file2"))
	assert.True(t, naturalLess("a", "b"))
	assert.True(t, naturalLess("abc", "abcd"))
	assert.False(t, naturalLess("same", "same"))
}
