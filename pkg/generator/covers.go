package generator

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"gallery-showcase/pkg/models"
)

// CoversDir is the hidden gallery subfolder generated covers are stored in.
// Gallery listings never descend into it, so covers are not shown as items.
const CoversDir = ".covers"

// CoverResolver finds a poster image for a video inside a gallery
type CoverResolver interface {
	ResolveCover(galleryID, videoFile string) (string, bool)
}

// CoverManifest lists explicitly authored posters.
// Files maps a video file name to its poster file; Gallery is the fallback for every video.
type CoverManifest struct {
	Gallery string            `toml:"gallery"`
	Files   map[string]string `toml:"files"`
}

// ListingResolver resolves posters against a gallery's own file listing.
// Manifest entries are trusted as authored; naming conventions only count
// when the candidate file is actually present in the listing.
type ListingResolver struct {
	manifest  CoverManifest
	files     map[string]string // lower-cased name -> listed name
	generated map[string]string // same, for files inside CoversDir
}

// NewListingResolver creates a resolver over the listed files of one gallery
func NewListingResolver(files []string, manifest CoverManifest) *ListingResolver {
	return &ListingResolver{manifest: manifest, files: lowerIndex(files)}
}

// WithGenerated adds the listing of the gallery's CoversDir
func (r *ListingResolver) WithGenerated(covers []string) *ListingResolver {
	r.generated = lowerIndex(covers)
	return r
}

func lowerIndex(files []string) map[string]string {
	index := make(map[string]string, len(files))
	for _, f := range files {
		index[strings.ToLower(f)] = f
	}
	return index
}

// GeneratedCoverName is the file name, inside CoversDir, of the generated cover for a video
func GeneratedCoverName(videoFile string) string {
	return "thumb-" + baseName(videoFile) + ".jpg"
}

// GeneratedCoverPath is the gallery-relative path of the generated cover for a video
func GeneratedCoverPath(videoFile string) string {
	return CoversDir + "/" + GeneratedCoverName(videoFile)
}

// CoverCandidates lists the conventional poster names for a video, most preferred first
func CoverCandidates(galleryID, videoFile string) []string {
	base := baseName(videoFile)
	return []string{
		capitalize(galleryID) + "-Cover.png",
		"thumb-" + base + ".jpg",
		base + ".jpg",
		base + ".png",
		base + ".webp",
	}
}

// ResolveCover returns the poster URL for videoFile, if one is plausible
func (r *ListingResolver) ResolveCover(galleryID, videoFile string) (string, bool) {
	if cover, ok := r.manifest.Files[videoFile]; ok && cover != "" {
		return AssetPath(galleryID, cover), true
	}
	if r.manifest.Gallery != "" {
		return AssetPath(galleryID, r.manifest.Gallery), true
	}

	if listed, ok := r.generated[strings.ToLower(GeneratedCoverName(videoFile))]; ok {
		return AssetPath(galleryID, CoversDir+"/"+listed), true
	}

	for _, candidate := range CoverCandidates(galleryID, videoFile) {
		if listed, ok := r.files[strings.ToLower(candidate)]; ok && listed != videoFile {
			return AssetPath(galleryID, listed), true
		}
	}
	return "", false
}

// CoveredVideos returns the set of videos in files that already have a plausible poster.
// generated lists the gallery's CoversDir.
func CoveredVideos(galleryID string, files, generated []string, manifest CoverManifest) mapset.Set[string] {
	resolver := NewListingResolver(files, manifest).WithGenerated(generated)
	covered := mapset.NewSet[string]()
	for _, f := range files {
		if DetectFileType(f) != models.MediaVideo {
			continue
		}
		if _, ok := resolver.ResolveCover(galleryID, f); ok {
			covered.Add(f)
		}
	}
	return covered
}
