package service

import (
	"context"
	"encoding/json"
	"time"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
)

// Fallback backgrounds served when the upstream image cannot be fetched
const (
	FallbackDarkImage  = "https://images.unsplash.com/photo-1505506874110-6a7a69069a08?ixlib=rb-4.0.3&w=1200"
	FallbackLightImage = "https://images.unsplash.com/photo-1501167786227-4cba60f6d58f?ixlib=rb-4.0.3&w=1200"
)

// Cache is a string key-value store with per-entry expiry
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ImageSource fetches the current image of the day
type ImageSource interface {
	ImageOfTheDay(ctx context.Context) (*domain.Image, error)
}

// ImageService serves the background image, caching it per theme
type ImageService struct {
	cache  Cache
	source ImageSource
	ttl    time.Duration
	logger *logger.Logger
}

// NewImageService creates a new image service
func NewImageService(cache Cache, source ImageSource, ttl time.Duration, log *logger.Logger) *ImageService {
	return &ImageService{
		cache:  cache,
		source: source,
		ttl:    ttl,
		logger: log,
	}
}

// NormalizeTheme maps anything other than "light" to "dark". Unknown and
// empty themes get the dark image and share the bing-dark cache entry;
// a raw theme value never becomes part of a cache key.
func NormalizeTheme(theme string) string {
	if theme == "light" {
		return "light"
	}
	return "dark"
}

// Get returns the image for theme. A cache hit is returned as the stored
// payload. It never fails: when the cache misses and the upstream is
// unavailable a fixed fallback is returned, and that fallback is not cached.
func (s *ImageService) Get(ctx context.Context, theme string) domain.Image {
	theme = NormalizeTheme(theme)
	key := "bing-" + theme

	if cached, ok := s.lookup(ctx, key); ok {
		return cached
	}

	img, err := s.source.ImageOfTheDay(ctx)
	if err != nil || img == nil || img.URL == "" {
		s.logger.Warn("Image of the day unavailable, using %s fallback: %v", theme, err)
		return fallbackImage(theme)
	}

	if data, err := json.Marshal(img); err == nil {
		if err := s.cache.Put(ctx, key, string(data), s.ttl); err != nil {
			s.logger.Warn("Failed to cache image under %s: %v", key, err)
		}
	}

	s.logger.Info("Fetched image of the day for %s theme", theme)
	return *img
}

func (s *ImageService) lookup(ctx context.Context, key string) (domain.Image, bool) {
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache read for %s failed: %v", key, err)
		return domain.Image{}, false
	}
	if !ok {
		return domain.Image{}, false
	}

	var img domain.Image
	if err := json.Unmarshal([]byte(value), &img); err != nil || img.URL == "" {
		s.logger.Warn("Discarding corrupt cache entry %s", key)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to evict %s: %v", key, err)
		}
		return domain.Image{}, false
	}
	img.Cached = value
	s.logger.Debug("Cache hit for %s", key)
	return img, true
}

func fallbackImage(theme string) domain.Image {
	if theme == "light" {
		return domain.Image{URL: FallbackLightImage}
	}
	return domain.Image{URL: FallbackDarkImage}
}
