package generation

import (
	"errors"
	"fmt"

	"github.com/masarflow/masar/pkg/models"
)

var (
	// ErrNoModelConfigured is returned when generation is requested but the
	// model registry has no usable default.
	ErrNoModelConfigured = errors.New("no AI model configured")

	// ErrMissingAPIKey is returned before any network call when the selected
	// model has no API key.
	ErrMissingAPIKey = errors.New("model has no API key")

	// ErrUnsupportedProvider is returned for providers without a generator
	// implementation.
	ErrUnsupportedProvider = errors.New("unsupported AI provider")

	// ErrMalformedResponse is returned when the provider's reply is not the
	// expected JSON document.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrEmptyResponse is returned when the provider replied with no content.
	ErrEmptyResponse = errors.New("empty provider response")
)

// GenerationError tags an error with the provider it came from.
type GenerationError struct {
	Provider models.AIProvider
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError wraps err with its originating provider.
func NewGenerationError(provider models.AIProvider, err error) *GenerationError {
	return &GenerationError{Provider: provider, Err: err}
}

// IsConfigurationError checks whether an error is a configuration problem the
// user fixes in settings, as opposed to a provider failure.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoModelConfigured) ||
		errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrUnsupportedProvider)
}

// IsMalformedResponse checks whether the provider replied with unusable content.
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrEmptyResponse)
}
