// Package images resolves short keyword queries into image URLs using the
// configured stock photo provider. Generated media steps carry a keyword until
// a searcher swaps it for a real URL.
package images

import (
	"context"
	"errors"
)

// ErrNoResults is returned when the provider has no image for the query.
var ErrNoResults = errors.New("no matching images found")

// Searcher finds one representative image URL for a keyword query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}
