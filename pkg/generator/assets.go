package generator

import (
	"regexp"
	"strings"
)

// AssetsBase is the URL prefix all media URLs are resolved under
const AssetsBase = "/assets"

var unsafeIDChars = regexp.MustCompile(`(?i)[^a-z0-9_-]`)

// SanitizeGalleryID strips characters outside [a-z0-9-_] and lower-cases the rest
func SanitizeGalleryID(galleryID string) string {
	return strings.ToLower(unsafeIDChars.ReplaceAllString(galleryID, ""))
}

// AssetPath resolves the URL of a file inside a gallery folder
func AssetPath(galleryID, filename string) string {
	return AssetsBase + "/" + SanitizeGalleryID(galleryID) + "/" + filename
}

// capitalize upper-cases the first letter of s
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// baseName returns filename without its last extension
func baseName(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		return filename[:idx]
	}
	return filename
}
