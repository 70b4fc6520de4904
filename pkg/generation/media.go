package generation

import (
	"context"
	"log/slog"

	"github.com/masarflow/masar/pkg/images"
	"github.com/masarflow/masar/pkg/models"
)

// ResolveMedia replaces the keyword content of media steps with real image
// URLs. The keyword is the search query, falling back to the step title when
// the model left content empty. Lookup failures keep the keyword so the guide
// stays usable; a nil searcher disables resolution entirely.
func ResolveMedia(ctx context.Context, searcher images.Searcher, logger *slog.Logger, steps []*models.Step) {
	if searcher == nil {
		return
	}

	for _, step := range steps {
		if step.Type != models.StepTypeMedia {
			continue
		}

		query := step.Content
		if query == "" {
			query = step.Title
		}

		imageURL, err := searcher.Search(ctx, query)
		if err != nil {
			logger.WarnContext(ctx, "image lookup failed, keeping keyword", "query", query, "error", err)

			continue
		}

		step.Content = imageURL
	}
}
