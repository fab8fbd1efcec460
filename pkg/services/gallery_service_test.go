package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/overrides"
)

// writeGallery creates dir/galleryID with the given empty files
func writeGallery(t *testing.T, dir, galleryID string, files ...string) {
	t.Helper()
	gdir := filepath.Join(dir, galleryID)
	require.NoError(t, os.MkdirAll(gdir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(gdir, f), []byte("x"), 0644))
	}
}

// stubSource is a Source with scripted answers
type stubSource struct {
	rootErr  error
	idsErr   error
	ids      []string
	files    map[string][]string
	panicFor string
	calls    int
}

func (s *stubSource) EnsureRoot(ctx context.Context) error {
	return s.rootErr
}

func (s *stubSource) GalleryIDs(ctx context.Context) ([]string, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.ids, s.idsErr
}

func (s *stubSource) GalleryFiles(ctx context.Context, galleryID string) ([]string, error) {
	if galleryID == s.panicFor {
		panic("corrupt listing")
	}
	files, ok := s.files[galleryID]
	if !ok {
		return nil, errors.New("unreadable")
	}
	return files, nil
}

func TestGalleryServiceLocal(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery1", "a.jpg", "b.mp4", "notes.txt")
	writeGallery(t, dir, "gallery10", "z.png")
	writeGallery(t, dir, "gallery3", "c.gif")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cache"), 0755))

	svc := NewGalleryService(NewFileService(dir), overrides.Defaults(), time.Minute)
	galleries, err := svc.Galleries(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(galleries))
	for i, g := range galleries {
		ids[i] = g.ID
	}
	assert.Equal(t, []string{"gallery1", "gallery3", "gallery10"}, ids)

	g1 := galleries[0]
	require.Len(t, g1.Items, 2)
	assert.Equal(t, models.MediaVideo, g1.Items[0].Type)
	assert.Equal(t, "/assets/gallery1/b.mp4", g1.Items[0].URL)
	assert.Equal(t, "/assets/gallery1/a.jpg", g1.Items[1].URL)

	// static override for gallery1 wins on presentation fields
	assert.Equal(t, "Gallery 1", g1.Title)
	assert.Equal(t, models.LayoutFullscreen, g1.Layout)
	assert.Equal(t, models.RenderFullscreen, g1.RenderContext)
	require.NotNil(t, g1.TransitionTime)
	assert.Equal(t, 2000, *g1.TransitionTime)

	g3 := galleries[1]
	assert.Equal(t, models.LayoutGrid, g3.Layout)
	assert.Equal(t, models.MediaGIF, g3.Items[0].Type)
}

func TestGalleryServiceCreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "assets")
	svc := NewGalleryService(NewFileService(dir), nil, 0)

	galleries, err := svc.Galleries(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, galleries)
	assert.Empty(t, galleries)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGalleryServiceStaticOnlyExcluded(t *testing.T) {
	src := &stubSource{
		ids:   []string{"gallery1"},
		files: map[string][]string{"gallery1": {"a.jpg"}},
	}
	svc := NewGalleryService(src, overrides.Defaults(), 0)

	galleries, err := svc.Galleries(context.Background())
	require.NoError(t, err)
	require.Len(t, galleries, 1)
	assert.Equal(t, "gallery1", galleries[0].ID)
}

func TestGalleryServiceFailures(t *testing.T) {
	t.Run("enumeration failure yields empty list", func(t *testing.T) {
		svc := NewGalleryService(&stubSource{idsErr: errors.New("permission denied")}, nil, 0)
		galleries, err := svc.Galleries(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, galleries)
		assert.Empty(t, galleries)
	})

	t.Run("unavailable root yields empty list", func(t *testing.T) {
		svc := NewGalleryService(&stubSource{rootErr: errors.New("bucket missing")}, nil, 0)
		galleries, err := svc.Galleries(context.Background())
		require.NoError(t, err)
		assert.Empty(t, galleries)
	})

	t.Run("unreadable gallery yields empty list", func(t *testing.T) {
		src := &stubSource{
			ids:   []string{"gallery1", "gallery2"},
			files: map[string][]string{"gallery1": {"a.jpg"}},
		}
		svc := NewGalleryService(src, nil, 0)
		galleries, err := svc.Galleries(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, galleries)
		assert.Empty(t, galleries)
	})

	t.Run("panicking gallery yields empty list", func(t *testing.T) {
		src := &stubSource{
			ids:      []string{"gallery1", "gallery3"},
			files:    map[string][]string{"gallery1": {"a.jpg"}, "gallery3": {"c.jpg"}},
			panicFor: "gallery3",
		}
		svc := NewGalleryService(src, nil, 0)
		galleries, err := svc.Galleries(context.Background())
		require.NoError(t, err)
		assert.Empty(t, galleries)
	})

	t.Run("cancelled context is an error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := NewGalleryService(&stubSource{}, nil, 0)
		_, err := svc.Galleries(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGalleryServiceCache(t *testing.T) {
	src := &stubSource{
		ids:   []string{"gallery5"},
		files: map[string][]string{"gallery5": {"a.jpg"}},
	}
	svc := NewGalleryService(src, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.Galleries(ctx)
	require.NoError(t, err)
	_, err = svc.Galleries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	svc.Refresh()
	_, err = svc.Galleries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	t.Run("zero ttl disables caching", func(t *testing.T) {
		uncached := NewGalleryService(src, nil, 0)
		before := src.calls
		_, _ = uncached.Galleries(ctx)
		_, _ = uncached.Galleries(ctx)
		assert.Equal(t, before+2, src.calls)
	})
}

func TestGalleryByID(t *testing.T) {
	src := &stubSource{
		ids:   []string{"gallery5"},
		files: map[string][]string{"gallery5": {"a.jpg"}},
	}
	svc := NewGalleryService(src, nil, 0)

	g, err := svc.Gallery(context.Background(), "gallery5")
	require.NoError(t, err)
	assert.Equal(t, "gallery5", g.ID)

	_, err = svc.Gallery(context.Background(), "gallery6")
	assert.ErrorIs(t, err, models.ErrGalleryNotFound)
}

func TestGalleryServiceSkipsInvalidFolderNames(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery5", "a.jpg")
	writeGallery(t, dir, "Gallery 6", "b.jpg")

	svc := NewGalleryService(NewFileService(dir), overrides.Empty(), 0)
	galleries, err := svc.Galleries(context.Background())
	require.NoError(t, err)
	require.Len(t, galleries, 1)
	assert.Equal(t, "gallery5", galleries[0].ID)
	assert.Equal(t, "/assets/gallery5/a.jpg", galleries[0].Items[0].URL)
}

func TestGalleryServiceGeneratedCovers(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery5", "a.jpg", "b.mp4")
	writeGallery(t, dir, filepath.Join("gallery5", ".covers"), "thumb-b.jpg")

	svc := NewGalleryService(NewFileService(dir), overrides.Empty(), 0)
	galleries, err := svc.Galleries(context.Background())
	require.NoError(t, err)
	require.Len(t, galleries, 1)

	items := galleries[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, "/assets/gallery5/b.mp4", items[0].URL)
	assert.Equal(t, "/assets/gallery5/.covers/thumb-b.jpg", items[0].ThumbURL)
	assert.Equal(t, "/assets/gallery5/a.jpg", items[1].URL)
}

func TestGalleryServiceResultsDoNotShareCache(t *testing.T) {
	src := &stubSource{
		ids:   []string{"gallery5"},
		files: map[string][]string{"gallery5": {"a.jpg", "b.jpg"}},
	}
	svc := NewGalleryService(src, overrides.Empty(), time.Minute)
	ctx := context.Background()

	first, err := svc.Galleries(ctx)
	require.NoError(t, err)
	first[0].Items[0].URL = "/assets/changed.jpg"
	first[0].Items = first[0].Items[:1]

	second, err := svc.Galleries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	require.Len(t, second[0].Items, 2)
	assert.Equal(t, "/assets/gallery5/a.jpg", second[0].Items[0].URL)
}
