package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"gallery-showcase/pkg/generator"
	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
	"gallery-showcase/pkg/overrides"
)

const galleriesCacheKey = "galleries"

// GalleryService builds the merged gallery list from a Source and the override set
type GalleryService struct {
	source    Source
	overrides *overrides.Set
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	log       *observability.Logger
}

// NewGalleryService creates a gallery service. A ttl of zero disables caching.
func NewGalleryService(source Source, set *overrides.Set, ttl time.Duration) *GalleryService {
	if set == nil {
		set = overrides.Defaults()
	}

	cleanup := 2 * ttl
	if ttl <= 0 {
		cleanup = time.Minute
	}

	return &GalleryService{
		source:    source,
		overrides: set,
		cache:     cache.New(ttl, cleanup),
		ttl:       ttl,
		log:       observability.WithField("component", "galleries"),
	}
}

// Source returns the underlying media source
func (s *GalleryService) Source() Source {
	return s.source
}

// Overrides returns the override set the service merges
func (s *GalleryService) Overrides() *overrides.Set {
	return s.overrides
}

// Refresh drops the cached gallery list
func (s *GalleryService) Refresh() {
	s.cache.Flush()
}

// Galleries returns every gallery, sorted by id.
// Enumeration failures, including one unreadable gallery, yield an empty list
// rather than a partial one; only context errors are returned.
func (s *GalleryService) Galleries(ctx context.Context) ([]models.GalleryConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, found := s.cache.Get(galleriesCacheKey); found {
		s.log.Debugf("Using cached galleries")
		return copyConfigs(cached.([]models.GalleryConfig)), nil
	}

	galleries, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		s.cache.Set(galleriesCacheKey, galleries, cache.DefaultExpiration)
	}
	return copyConfigs(galleries), nil
}

// Gallery returns one gallery by id
func (s *GalleryService) Gallery(ctx context.Context, id string) (models.GalleryConfig, error) {
	galleries, err := s.Galleries(ctx)
	if err != nil {
		return models.GalleryConfig{}, err
	}
	for _, g := range galleries {
		if g.ID == id {
			return g, nil
		}
	}
	return models.GalleryConfig{}, fmt.Errorf("%w: %s", models.ErrGalleryNotFound, id)
}

func (s *GalleryService) build(ctx context.Context) ([]models.GalleryConfig, error) {
	log := s.log.WithContext(ctx)

	if err := s.source.EnsureRoot(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("Assets root unavailable: %v", err)
		return []models.GalleryConfig{}, nil
	}

	ids, err := s.source.GalleryIDs(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("Failed to enumerate galleries: %v", err)
		return []models.GalleryConfig{}, nil
	}

	dynamic := make([]models.GalleryConfig, 0, len(ids))
	for _, id := range ids {
		if generator.SanitizeGalleryID(id) != id {
			log.WithField("gallery_id", id).Warnf("Gallery folder name is not a valid gallery id and is excluded")
			continue
		}

		cfg, err := s.generate(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithField("gallery_id", id).Warnf("Failed to read gallery, returning no galleries: %v", err)
			return []models.GalleryConfig{}, nil
		}
		dynamic = append(dynamic, cfg)
	}

	merged, orphans := generator.MergeAll(dynamic, s.overrides.Static())
	for _, id := range orphans {
		log.WithField("gallery_id", id).Warnf("Static gallery has no media folder and is excluded")
	}

	generator.SortByID(merged)
	log.Infof("Generated %d galleries", len(merged))
	return merged, nil
}

// generate builds one gallery; a panic is contained to that gallery
func (s *GalleryService) generate(ctx context.Context, id string) (cfg models.GalleryConfig, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while generating gallery %s: %v", id, r)
		}
	}()

	files, err := s.source.GalleryFiles(ctx, id)
	if err != nil {
		return models.GalleryConfig{}, err
	}

	opts := s.overrides.Options(id)
	if store, ok := s.source.(MediaStore); ok {
		// covers are optional, so a listing failure only costs the posters
		covers, err := store.CoverFiles(ctx, id)
		if err != nil {
			s.log.WithField("gallery_id", id).Warnf("Failed to list generated covers: %v", err)
		}
		opts.GeneratedCovers = covers
	}
	return generator.GenerateGalleryConfig(id, files, opts), nil
}

// copyConfigs deep-copies configs so callers never share state with the cache
func copyConfigs(in []models.GalleryConfig) []models.GalleryConfig {
	out := make([]models.GalleryConfig, len(in))
	for i, cfg := range in {
		out[i] = cfg.Clone()
	}
	return out
}
