package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gallery-showcase/pkg/generator"
	"gallery-showcase/pkg/observability"
)

// FileService reads galleries from a local assets directory.
// Every immediate subdirectory is a gallery.
type FileService struct {
	root string
}

// NewFileService creates a source rooted at dir
func NewFileService(dir string) *FileService {
	return &FileService{root: dir}
}

// Root returns the assets directory
func (f *FileService) Root() string {
	return f.root
}

// EnsureRoot creates the assets directory if it does not exist
func (f *FileService) EnsureRoot(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(f.root)
	if errors.Is(err, fs.ErrNotExist) {
		observability.Warnf("Assets directory %s not found, creating it", f.root)
		if err := os.MkdirAll(f.root, 0755); err != nil {
			return fmt.Errorf("failed to create assets directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat assets directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("assets path %s is not a directory", f.root)
	}
	return nil
}

// GalleryIDs lists the gallery folders, skipping hidden ones
func (f *FileService) GalleryIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// GalleryFiles lists the media files of a gallery folder
func (f *FileService) GalleryFiles(ctx context.Context, galleryID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName("gallery id", galleryID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(f.root, galleryID))
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery %s: %w", galleryID, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && generator.IsMediaFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// CoverFiles lists the generated covers of a gallery
func (f *FileService) CoverFiles(ctx context.Context, galleryID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName("gallery id", galleryID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(f.root, galleryID, generator.CoversDir))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read covers of %s: %w", galleryID, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && generator.IsMediaFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func (f *FileService) mediaPath(galleryID, file string) (string, error) {
	if err := checkName("gallery id", galleryID); err != nil {
		return "", err
	}
	if err := checkMediaName(file); err != nil {
		return "", err
	}
	return filepath.Join(f.root, galleryID, filepath.FromSlash(file)), nil
}

// OpenMedia opens a media file for reading
func (f *FileService) OpenMedia(ctx context.Context, galleryID, file string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.mediaPath(galleryID, file)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// WriteMedia writes a media file atomically
func (f *FileService) WriteMedia(ctx context.Context, galleryID, file string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.mediaPath(galleryID, file)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", file, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return os.Rename(tmp.Name(), path)
}

// RemoveMedia deletes a media file
func (f *FileService) RemoveMedia(ctx context.Context, galleryID, file string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.mediaPath(galleryID, file)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
