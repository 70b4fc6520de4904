package cmd

import (
	"fmt"
	"log/slog"

	"github.com/masarflow/masar/pkg/images"
	"github.com/masarflow/masar/pkg/models"
	"github.com/redis/go-redis/v9"
)

// NewImageSearcherFactory builds the per-request image searcher factory. An
// empty redisURL disables URL caching.
func NewImageSearcherFactory(redisURL string, logger *slog.Logger) func(models.ImageProvider, string) images.Searcher {
	var client *redis.Client

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			panic(fmt.Errorf("failed to parse Redis URL: %w", err))
		}

		client = redis.NewClient(opts)
	}

	return func(provider models.ImageProvider, apiKey string) images.Searcher {
		return images.NewSearcher(provider, apiKey, client, logger)
	}
}
