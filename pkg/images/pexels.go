package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultPexelsBaseURL = "https://api.pexels.com"

// PexelsSearcher queries the Pexels search API and returns the first result's
// large-size URL.
type PexelsSearcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewPexelsSearcher creates a Pexels-backed searcher.
func NewPexelsSearcher(apiKey string) *PexelsSearcher {
	return &PexelsSearcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultPexelsBaseURL,
		apiKey:     apiKey,
	}
}

func (s *PexelsSearcher) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/search?query=%s&per_page=1", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build pexels request: %w", err)
	}

	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pexels request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pexels returned status %d", resp.StatusCode)
	}

	var payload struct {
		Photos []struct {
			Src struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}

	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode pexels response: %w", err)
	}

	if len(payload.Photos) == 0 || payload.Photos[0].Src.Large == "" {
		return "", ErrNoResults
	}

	return payload.Photos[0].Src.Large, nil
}
