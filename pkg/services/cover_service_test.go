package services

import (
	"context"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-showcase/pkg/models"
)

// listOnly is a Source that cannot store media
type listOnly struct{ stubSource }

func TestFFmpegTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:01.500", ffmpegTimestamp(1500))
	assert.Equal(t, "01:01:01.001", ffmpegTimestamp(3661001))
	assert.Equal(t, "00:00:00.000", ffmpegTimestamp(-5))
}

func TestValidateThumbnail(t *testing.T) {
	t.Run("solid frame is rejected", func(t *testing.T) {
		img := imaging.New(64, 64, color.Black)
		assert.Error(t, validateThumbnail(img))
	})

	t.Run("gradient frame is accepted", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
			}
		}
		assert.NoError(t, validateThumbnail(img))
	})

	t.Run("empty frame is rejected", func(t *testing.T) {
		assert.Error(t, validateThumbnail(image.NewNRGBA(image.Rect(0, 0, 0, 0))))
	})
}

func TestFitCover(t *testing.T) {
	small := imaging.New(800, 600, color.White)
	assert.Equal(t, small, fitCover(small))

	large := fitCover(imaging.New(3840, 1080, color.White))
	assert.Equal(t, 1920, large.Bounds().Dx())
	assert.Equal(t, 540, large.Bounds().Dy())
}

func TestCoversUnsupported(t *testing.T) {
	svc := NewCoverService(&listOnly{}, nil, nil)
	ctx := context.Background()

	_, err := svc.GenerateCovers(ctx, 1000, false)
	assert.ErrorIs(t, err, models.ErrCoversUnsupported)
	_, err = svc.ClearCovers(ctx)
	assert.ErrorIs(t, err, models.ErrCoversUnsupported)
	assert.ErrorIs(t, svc.GenerateCover(ctx, "g", "a.mp4", 0, nil), models.ErrCoversUnsupported)
	assert.ErrorIs(t, svc.ClearCover(ctx, "g", "a.mp4"), models.ErrCoversUnsupported)
}

func TestClearCovers(t *testing.T) {
	dir := t.TempDir()
	writeGallery(t, dir, "gallery1", "a.mp4", "thumb-a.jpg", "photo.jpg")
	writeGallery(t, dir, filepath.Join("gallery1", ".covers"), "thumb-a.jpg", "thumb-photo.jpg")

	changes := 0
	svc := NewCoverService(NewFileService(dir), nil, func() { changes++ })

	result, err := svc.ClearCovers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, changes)

	_, err = os.Stat(filepath.Join(dir, "gallery1", ".covers", "thumb-a.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "gallery1", ".covers", "thumb-photo.jpg"))
	assert.NoError(t, err, "covers without a matching video are left alone")
	_, err = os.Stat(filepath.Join(dir, "gallery1", "thumb-a.jpg"))
	assert.NoError(t, err, "authored posters beside the video are never removed")
}

func TestGenerateCoversWithFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	dir := t.TempDir()
	writeGallery(t, dir, "gallery1")
	video := filepath.Join(dir, "gallery1", "clip.mp4")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=10",
		"-pix_fmt", "yuv420p", "-y", video)
	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg cannot encode test video: %v", err)
	}

	svc := NewCoverService(NewFileService(dir), nil, nil)
	result, err := svc.GenerateCovers(context.Background(), 500, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Errors)

	img, err := imaging.Open(filepath.Join(dir, "gallery1", ".covers", "thumb-clip.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	// the cover is a poster, not an item of the gallery
	galleries, err := NewGalleryService(NewFileService(dir), nil, 0).Galleries(context.Background())
	require.NoError(t, err)
	require.Len(t, galleries, 1)
	require.Len(t, galleries[0].Items, 1)
	assert.Equal(t, "/assets/gallery1/.covers/thumb-clip.jpg", galleries[0].Items[0].ThumbURL)

	// the video now has a plausible cover and is skipped
	result, err = svc.GenerateCovers(context.Background(), 500, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}
