// Package generator turns raw gallery file listings into typed gallery configurations
package generator

import (
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"gallery-showcase/pkg/models"
)

// MediaExtensions are the file extensions enumerated as gallery media
var MediaExtensions = mapset.NewSet(
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg",
	".mp4", ".webm", ".mov", ".avi",
)

var videoExtensions = mapset.NewSet("mp4", "webm", "mov", "avi")

// IsMediaFile reports whether filename has one of the MediaExtensions
func IsMediaFile(filename string) bool {
	return MediaExtensions.Contains(strings.ToLower(filepath.Ext(filename)))
}

// DetectFileType classifies a file by its extension, case-insensitively.
// Unrecognized extensions are images.
func DetectFileType(filename string) models.MediaType {
	ext := filename
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx+1:]
	}
	ext = strings.ToLower(ext)

	switch {
	case videoExtensions.Contains(ext):
		return models.MediaVideo
	case ext == "gif":
		return models.MediaGIF
	default:
		return models.MediaImage
	}
}
