package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gallery-showcase/pkg/generator"
)

// Source enumerates gallery folders and the media files inside them
type Source interface {
	// EnsureRoot prepares the assets root, creating it when that is possible
	EnsureRoot(ctx context.Context) error
	// GalleryIDs lists the gallery folders
	GalleryIDs(ctx context.Context) ([]string, error)
	// GalleryFiles lists the media files of one gallery folder
	GalleryFiles(ctx context.Context, galleryID string) ([]string, error)
}

// MediaStore is a Source whose media can be read and written, which cover generation needs.
// File names may be prefixed with generator.CoversDir to address generated covers.
type MediaStore interface {
	Source
	// CoverFiles lists the generated covers of one gallery; a missing covers folder is empty
	CoverFiles(ctx context.Context, galleryID string) ([]string, error)
	OpenMedia(ctx context.Context, galleryID, file string) (io.ReadCloser, error)
	WriteMedia(ctx context.Context, galleryID, file string, r io.Reader, contentType string) error
	RemoveMedia(ctx context.Context, galleryID, file string) error
}

// checkName rejects gallery ids and file names that would escape their folder
func checkName(kind, name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid %s %q", kind, name)
	}
	return nil
}

// checkMediaName is checkName for file names, which may address a generated cover
func checkMediaName(file string) error {
	if rest, ok := strings.CutPrefix(file, generator.CoversDir+"/"); ok {
		return checkName("file name", rest)
	}
	return checkName("file name", file)
}
