package images

import (
	"log/slog"

	"github.com/masarflow/masar/pkg/models"
	"github.com/redis/go-redis/v9"
)

// NewSearcher builds the searcher for the configured image provider. Providers
// without a search API ("none", "dall-e") return nil, which disables media
// resolution. An optional Redis client adds URL caching.
func NewSearcher(provider models.ImageProvider, apiKey string, redisClient *redis.Client, logger *slog.Logger) Searcher {
	var searcher Searcher

	switch provider {
	case models.ImageProviderUnsplash:
		searcher = NewUnsplashSearcher(apiKey)
	case models.ImageProviderPexels:
		searcher = NewPexelsSearcher(apiKey)
	case models.ImageProviderDallE, models.ImageProviderNone:
		return nil
	default:
		return nil
	}

	if redisClient != nil {
		return NewCachedSearcher(searcher, redisClient, logger)
	}

	return searcher
}
