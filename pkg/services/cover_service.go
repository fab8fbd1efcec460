package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gallery-showcase/pkg/generator"
	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
	"gallery-showcase/pkg/overrides"
)

const (
	// colorDifferenceThreshold defines the minimum difference between color components
	// to consider two pixels as different colors (accounts for compression artifacts)
	colorDifferenceThreshold = uint32(256) // About 1 unit difference in 8-bit color

	// maxCoverSize bounds the longest edge of a generated cover
	maxCoverSize = 1920
)

// ProgressCallback is a function that receives progress updates
type ProgressCallback func(step string, progress int)

// CoverService extracts poster frames for videos that have no cover
type CoverService struct {
	store     MediaStore
	overrides *overrides.Set
	onChange  func()
	ffmpeg    string
}

// NewCoverService creates a cover service over source. onChange runs after covers change.
// Sources that cannot store media make every operation fail with models.ErrCoversUnsupported.
func NewCoverService(source Source, set *overrides.Set, onChange func()) *CoverService {
	store, _ := source.(MediaStore)
	if set == nil {
		set = overrides.Defaults()
	}
	return &CoverService{
		store:     store,
		overrides: set,
		onChange:  onChange,
		ffmpeg:    "ffmpeg",
	}
}

// startSpan traces one cover operation
func startSpan(ctx context.Context, op, galleryID string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(observability.InstrumentationName).Start(ctx, "covers."+op,
		trace.WithAttributes(observability.Operation(op)))
	if galleryID != "" {
		span.SetAttributes(observability.GalleryID(galleryID))
	}
	return ctx, span
}

func (c *CoverService) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// GenerateCover generates the cover of one video
func (c *CoverService) GenerateCover(ctx context.Context, galleryID, videoFile string, timeMs int, progressCb ProgressCallback) error {
	if c.store == nil {
		return models.ErrCoversUnsupported
	}

	ctx, span := startSpan(ctx, "generate_cover", galleryID)
	defer span.End()

	sendProgress := func(step string, progress int) {
		if progressCb != nil {
			progressCb(step, progress)
		}
	}

	sendProgress("Checking FFmpeg", 5)
	if err := c.checkFFmpeg(ctx); err != nil {
		return fmt.Errorf("FFmpeg is required but not found: %w", err)
	}

	sendProgress("Locating video", 10)
	files, err := c.store.GalleryFiles(ctx, galleryID)
	if err != nil {
		return err
	}
	if !contains(files, videoFile) || generator.DetectFileType(videoFile) != models.MediaVideo {
		return fmt.Errorf("%s is not a video in gallery %s", videoFile, galleryID)
	}

	outputDir, err := os.MkdirTemp("", "gallery-covers-")
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	defer os.RemoveAll(outputDir)

	if err := c.generate(ctx, outputDir, galleryID, videoFile, timeMs, sendProgress); err != nil {
		return err
	}

	sendProgress("Clearing cache", 95)
	c.changed()

	sendProgress("Complete", 100)
	return nil
}

func (c *CoverService) generate(ctx context.Context, outputDir, galleryID, videoFile string, timeMs int, sendProgress ProgressCallback) error {
	coverFile := generator.GeneratedCoverPath(videoFile)

	sendProgress("Downloading video", 30)
	tmpVideoPath := filepath.Join(outputDir, getSafeFilename(videoFile))
	if err := c.download(ctx, galleryID, videoFile, tmpVideoPath); err != nil {
		return fmt.Errorf("error reading video: %w", err)
	}
	defer os.Remove(tmpVideoPath)

	sendProgress("Extracting frame", 60)
	tmpFramePath := filepath.Join(outputDir, getSafeFilename(generator.GeneratedCoverName(videoFile)))
	if err := c.extractFrame(ctx, tmpVideoPath, tmpFramePath, timeMs); err != nil {
		return fmt.Errorf("error extracting frame: %w", err)
	}
	defer os.Remove(tmpFramePath)

	sendProgress("Validating cover", 75)
	img, err := imaging.Open(tmpFramePath)
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}
	if err := validateThumbnail(img); err != nil {
		return fmt.Errorf("cover validation failed: %w", err)
	}

	sendProgress("Resizing cover", 80)
	tmpCoverPath := tmpFramePath + ".cover.jpg"
	if err := imaging.Save(fitCover(img), tmpCoverPath, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("failed to encode cover: %w", err)
	}
	defer os.Remove(tmpCoverPath)

	sendProgress("Storing cover", 85)
	if err := c.upload(ctx, tmpCoverPath, galleryID, coverFile); err != nil {
		return fmt.Errorf("error storing cover: %w", err)
	}
	return nil
}

// GenerateCovers generates covers for every video without a plausible one.
// With force, videos that already have a cover are regenerated too.
func (c *CoverService) GenerateCovers(ctx context.Context, timeMs int, force bool) (models.CoverResult, error) {
	var result models.CoverResult
	if c.store == nil {
		return result, models.ErrCoversUnsupported
	}

	ctx, span := startSpan(ctx, "generate_covers", "")
	defer span.End()

	if err := c.checkFFmpeg(ctx); err != nil {
		return result, fmt.Errorf("FFmpeg is required but not found: %w", err)
	}

	outputDir, err := os.MkdirTemp("", "gallery-covers-")
	if err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}
	defer os.RemoveAll(outputDir)

	ids, err := c.store.GalleryIDs(ctx)
	if err != nil {
		return result, err
	}

	noProgress := func(string, int) {}
	for _, id := range ids {
		files, err := c.store.GalleryFiles(ctx, id)
		if err != nil {
			observability.Warnf("Error listing gallery %s: %v", id, err)
			result.Errors++
			continue
		}

		generated, err := c.store.CoverFiles(ctx, id)
		if err != nil {
			observability.WithField("gallery_id", id).Warnf("Error listing covers: %v", err)
		}

		covered := generator.CoveredVideos(id, files, generated, c.overrides.Options(id).Covers)
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if generator.DetectFileType(file) != models.MediaVideo {
				continue
			}
			if covered.Contains(file) && !force {
				continue
			}

			if err := c.generate(ctx, outputDir, id, file, timeMs, noProgress); err != nil {
				observability.Warnf("Error creating cover for %s/%s: %v", id, file, err)
				result.Errors++
				continue
			}
			result.Processed++
		}
	}

	c.changed()
	result.Message = fmt.Sprintf("Generated %d covers with %d errors", result.Processed, result.Errors)
	return result, nil
}

// ClearCover removes the generated cover of one video
func (c *CoverService) ClearCover(ctx context.Context, galleryID, videoFile string) error {
	if c.store == nil {
		return models.ErrCoversUnsupported
	}

	ctx, span := startSpan(ctx, "clear_cover", galleryID)
	defer span.End()

	if err := c.store.RemoveMedia(ctx, galleryID, generator.GeneratedCoverPath(videoFile)); err != nil {
		return fmt.Errorf("failed to delete cover: %w", err)
	}

	c.changed()
	return nil
}

// ClearCovers removes every generated cover. Only covers named after a listed video are touched.
func (c *CoverService) ClearCovers(ctx context.Context) (models.CoverResult, error) {
	var result models.CoverResult
	if c.store == nil {
		return result, models.ErrCoversUnsupported
	}

	ctx, span := startSpan(ctx, "clear_covers", "")
	defer span.End()

	ids, err := c.store.GalleryIDs(ctx)
	if err != nil {
		return result, err
	}

	for _, id := range ids {
		files, err := c.store.GalleryFiles(ctx, id)
		if err != nil {
			observability.Warnf("Error listing gallery %s: %v", id, err)
			result.Errors++
			continue
		}
		generated, err := c.store.CoverFiles(ctx, id)
		if err != nil {
			observability.Warnf("Error listing covers of %s: %v", id, err)
			result.Errors++
			continue
		}

		removed := make(map[string]bool)
		for _, file := range files {
			if generator.DetectFileType(file) != models.MediaVideo {
				continue
			}
			name := generator.GeneratedCoverName(file)
			if removed[name] || !contains(generated, name) {
				continue
			}
			removed[name] = true
			cover := generator.GeneratedCoverPath(file)
			if err := c.store.RemoveMedia(ctx, id, cover); err != nil {
				observability.Warnf("Error deleting cover %s/%s: %v", id, cover, err)
				result.Errors++
				continue
			}
			result.Processed++
		}
	}

	c.changed()
	result.Message = fmt.Sprintf("Removed %d covers", result.Processed)
	return result, nil
}

// Helper functions

func (c *CoverService) checkFFmpeg(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.ffmpeg, "-version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg not found or not working: %w", err)
	}
	return nil
}

func (c *CoverService) extractFrame(ctx context.Context, videoPath, framePath string, timeMs int) error {
	cmd := exec.CommandContext(ctx,
		c.ffmpeg,
		"-ss", ffmpegTimestamp(timeMs),
		"-i", videoPath,
		"-vf", "thumbnail",
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		framePath,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	return nil
}

func (c *CoverService) download(ctx context.Context, galleryID, file, dst string) error {
	reader, err := c.store.OpenMedia(ctx, galleryID, file)
	if err != nil {
		return err
	}
	defer reader.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	return nil
}

func (c *CoverService) upload(ctx context.Context, src, galleryID, file string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	return c.store.WriteMedia(ctx, galleryID, file, f, "image/jpeg")
}

// ffmpegTimestamp converts milliseconds to HH:MM:SS.mmm
func ffmpegTimestamp(timeMs int) string {
	if timeMs < 0 {
		timeMs = 0
	}
	totalSeconds := timeMs / 1000
	milliseconds := timeMs % 1000

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, milliseconds)
}

// fitCover shrinks img so neither edge exceeds maxCoverSize
func fitCover(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxCoverSize && b.Dy() <= maxCoverSize {
		return img
	}
	return imaging.Fit(img, maxCoverSize, maxCoverSize, imaging.Lanczos)
}

// validateThumbnail rejects frames that are almost entirely one colour, such as black fades
func validateThumbnail(img image.Image) error {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("thumbnail is empty")
	}

	sampleSize := 10
	stepX := width / sampleSize
	stepY := height / sampleSize

	if stepX == 0 {
		stepX = 1
	}
	if stepY == 0 {
		stepY = 1
	}

	r1, g1, b1, a1 := img.At(bounds.Min.X, bounds.Min.Y).RGBA()

	differentPixels := 0
	totalSamples := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			totalSamples++
			r2, g2, b2, a2 := img.At(x, y).RGBA()

			// If any color component differs by more than the threshold, count it as different
			if abs(int(r1)-int(r2)) > int(colorDifferenceThreshold) ||
				abs(int(g1)-int(g2)) > int(colorDifferenceThreshold) ||
				abs(int(b1)-int(b2)) > int(colorDifferenceThreshold) ||
				abs(int(a1)-int(a2)) > int(colorDifferenceThreshold) {
				differentPixels++
			}
		}
	}

	if totalSamples > 0 && float64(differentPixels)/float64(totalSamples) < 0.01 {
		return fmt.Errorf("thumbnail appears to be a solid color (only %d/%d sampled pixels differ)", differentPixels, totalSamples)
	}

	return nil
}

func getSafeFilename(path string) string {
	baseName := filepath.Base(path)

	if len(baseName) > 200 {
		hash := sha256.Sum256([]byte(path))
		extension := filepath.Ext(baseName)

		shortName := baseName[:20]
		shortName = strings.Map(func(r rune) rune {
			if strings.ContainsRune(`<>:"/\|?*`, r) {
				return '_'
			}
			return r
		}, shortName)

		baseName = fmt.Sprintf("%s-%s%s", shortName, hex.EncodeToString(hash[:8]), extension)
	}

	return baseName
}

func contains(files []string, name string) bool {
	for _, f := range files {
		if f == name {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
