package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"gallery-showcase/pkg/generator"
)

// signedURLTTL is how long a signed media URL stays valid
const signedURLTTL = 24 * time.Hour

// BucketService reads galleries from a Cloud Storage bucket.
// Objects are laid out as {prefix}/{galleryID}/{file}.
type BucketService struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
}

// NewBucketService connects to bucketName; prefix is the folder holding the galleries
func NewBucketService(ctx context.Context, bucketName, prefix string) (*BucketService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &BucketService{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Close releases the storage client
func (b *BucketService) Close() error {
	return b.client.Close()
}

// EnsureRoot checks that the bucket is reachable. Buckets are never created.
func (b *BucketService) EnsureRoot(ctx context.Context) error {
	if _, err := b.bucket.Attrs(ctx); err != nil {
		return fmt.Errorf("bucket %s is not accessible: %w", b.name, err)
	}
	return nil
}

// GalleryIDs lists the gallery folders under the prefix
func (b *BucketService) GalleryIDs(ctx context.Context) ([]string, error) {
	it := b.bucket.Objects(ctx, &storage.Query{
		Prefix:    folderPrefix(b.prefix),
		Delimiter: "/",
	})

	var ids []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		if id := galleryIDFromPrefix(b.prefix, attrs.Prefix); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GalleryFiles lists the media objects of one gallery folder
func (b *BucketService) GalleryFiles(ctx context.Context, galleryID string) ([]string, error) {
	if err := checkName("gallery id", galleryID); err != nil {
		return nil, err
	}

	dir := folderPrefix(objectName(b.prefix, galleryID, ""))
	it := b.bucket.Objects(ctx, &storage.Query{
		Prefix:    dir,
		Delimiter: "/",
	})

	var files []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		if attrs.Name == "" {
			continue
		}
		file := strings.TrimPrefix(attrs.Name, dir)
		if file != "" && generator.IsMediaFile(file) {
			files = append(files, file)
		}
	}
	return files, nil
}

// CoverFiles lists the generated covers of a gallery
func (b *BucketService) CoverFiles(ctx context.Context, galleryID string) ([]string, error) {
	if err := checkName("gallery id", galleryID); err != nil {
		return nil, err
	}

	dir := folderPrefix(objectName(b.prefix, galleryID, generator.CoversDir))
	it := b.bucket.Objects(ctx, &storage.Query{
		Prefix:    dir,
		Delimiter: "/",
	})

	files := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		if file := strings.TrimPrefix(attrs.Name, dir); attrs.Name != "" && generator.IsMediaFile(file) {
			files = append(files, file)
		}
	}
	return files, nil
}

// SignedURL creates a signed 24-hour URL for a gallery file
func (b *BucketService) SignedURL(galleryID, file string) (string, error) {
	if err := checkName("gallery id", galleryID); err != nil {
		return "", err
	}
	if err := checkMediaName(file); err != nil {
		return "", err
	}

	return b.bucket.SignedURL(objectName(b.prefix, galleryID, file), &storage.SignedURLOptions{
		Expires: time.Now().Add(signedURLTTL),
		Method:  "GET",
	})
}

// OpenMedia opens an object for reading
func (b *BucketService) OpenMedia(ctx context.Context, galleryID, file string) (io.ReadCloser, error) {
	reader, err := b.bucket.Object(objectName(b.prefix, galleryID, file)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Object(%q).NewReader: %w", file, err)
	}
	return reader, nil
}

// WriteMedia uploads an object
func (b *BucketService) WriteMedia(ctx context.Context, galleryID, file string, r io.Reader, contentType string) error {
	if err := checkMediaName(file); err != nil {
		return err
	}

	writer := b.bucket.Object(objectName(b.prefix, galleryID, file)).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return fmt.Errorf("Writer.Write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

// RemoveMedia deletes an object
func (b *BucketService) RemoveMedia(ctx context.Context, galleryID, file string) error {
	if err := b.bucket.Object(objectName(b.prefix, galleryID, file)).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", file, err)
	}
	return nil
}

func folderPrefix(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

func objectName(prefix, galleryID, file string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, galleryID, file} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// galleryIDFromPrefix extracts "gallery1" from a delimiter prefix such as "assets/gallery1/"
func galleryIDFromPrefix(prefix, p string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(p, folderPrefix(prefix)), "/")
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
