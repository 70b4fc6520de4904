package images

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "masar:images:"
	cacheTTL       = 24 * time.Hour
)

// CachedSearcher caches resolved image URLs in Redis in front of another
// searcher. Redis failures degrade to the inner searcher, never to an error.
type CachedSearcher struct {
	inner  Searcher
	client *redis.Client
	logger *slog.Logger
}

// NewCachedSearcher wraps a searcher with a Redis URL cache.
func NewCachedSearcher(inner Searcher, client *redis.Client, logger *slog.Logger) *CachedSearcher {
	return &CachedSearcher{inner: inner, client: client, logger: logger}
}

func (s *CachedSearcher) Search(ctx context.Context, query string) (string, error) {
	key := cacheKeyPrefix + query

	cached, err := s.client.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}

	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "image cache read failed", "query", query, "error", err)
	}

	imageURL, err := s.inner.Search(ctx, query)
	if err != nil {
		return "", err
	}

	err = s.client.Set(ctx, key, imageURL, cacheTTL).Err()
	if err != nil {
		s.logger.WarnContext(ctx, "image cache write failed", "query", query, "error", err)
	}

	return imageURL, nil
}
