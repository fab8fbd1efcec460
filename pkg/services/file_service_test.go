package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileService(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery2", "b.PNG", "a.mp4", "readme.md")
	writeGallery(t, dir, "gallery1")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.jpg"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gallery2", "nested.jpg"), 0755))

	fs := NewFileService(dir)
	ctx := context.Background()
	require.NoError(t, fs.EnsureRoot(ctx))

	ids, err := fs.GalleryIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gallery1", "gallery2"}, ids)

	files, err := fs.GalleryFiles(ctx, "gallery2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.mp4", "b.PNG"}, files)

	files, err = fs.GalleryFiles(ctx, "gallery1")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = fs.GalleryFiles(ctx, "missing")
	assert.Error(t, err)
}

func TestFileServiceRejectsEscapes(t *testing.T) {
	fs := NewFileService(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"..", "../etc", "a/b", ""} {
		_, err := fs.GalleryFiles(ctx, id)
		assert.Error(t, err, id)
	}

	_, err := fs.OpenMedia(ctx, "gallery1", "../secret")
	assert.Error(t, err)
}

func TestFileServiceMediaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery1")
	fs := NewFileService(dir)
	ctx := context.Background()

	require.NoError(t, fs.WriteMedia(ctx, "gallery1", "thumb-a.jpg", bytes.NewBufferString("jpeg"), "image/jpeg"))

	r, err := fs.OpenMedia(ctx, "gallery1", "thumb-a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	files, err := fs.GalleryFiles(ctx, "gallery1")
	require.NoError(t, err)
	assert.Equal(t, []string{"thumb-a.jpg"}, files)

	require.NoError(t, fs.RemoveMedia(ctx, "gallery1", "thumb-a.jpg"))
	_, err = os.Stat(filepath.Join(dir, "gallery1", "thumb-a.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileServiceCovers(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery1", "b.mp4")
	fs := NewFileService(dir)
	ctx := context.Background()

	covers, err := fs.CoverFiles(ctx, "gallery1")
	require.NoError(t, err)
	assert.Empty(t, covers)

	require.NoError(t, fs.WriteMedia(ctx, "gallery1", ".covers/thumb-b.jpg", bytes.NewBufferString("jpeg"), "image/jpeg"))

	covers, err = fs.CoverFiles(ctx, "gallery1")
	require.NoError(t, err)
	assert.Equal(t, []string{"thumb-b.jpg"}, covers)

	files, err := fs.GalleryFiles(ctx, "gallery1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.mp4"}, files, "generated covers are not listed as media")

	_, err = fs.OpenMedia(ctx, "gallery1", ".covers/../../secret")
	assert.Error(t, err)
	_, err = fs.OpenMedia(ctx, "gallery1", "other/thumb-b.jpg")
	assert.Error(t, err)

	require.NoError(t, fs.RemoveMedia(ctx, "gallery1", ".covers/thumb-b.jpg"))
	covers, err = fs.CoverFiles(ctx, "gallery1")
	require.NoError(t, err)
	assert.Empty(t, covers)
}

func TestEnsureRootRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.Error(t, NewFileService(path).EnsureRoot(context.Background()))
}

func TestBucketPaths(t *testing.T) {
	assert.Equal(t, "assets/gallery1/a.jpg", objectName("assets", "gallery1", "a.jpg"))
	assert.Equal(t, "gallery1/a.jpg", objectName("", "gallery1", "a.jpg"))
	assert.Equal(t, "assets/gallery1", objectName("assets", "gallery1", ""))

	assert.Equal(t, "assets/", folderPrefix("assets"))
	assert.Equal(t, "", folderPrefix(""))

	assert.Equal(t, "gallery1", galleryIDFromPrefix("assets", "assets/gallery1/"))
	assert.Equal(t, "gallery1", galleryIDFromPrefix("", "gallery1/"))
	assert.Equal(t, "", galleryIDFromPrefix("assets", "assets/"))
}
