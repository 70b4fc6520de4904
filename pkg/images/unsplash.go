package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultUnsplashBaseURL = "https://api.unsplash.com"

// UnsplashSearcher queries the Unsplash search API and returns the first
// result's regular-size URL.
type UnsplashSearcher struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
}

// NewUnsplashSearcher creates an Unsplash-backed searcher.
func NewUnsplashSearcher(accessKey string) *UnsplashSearcher {
	return &UnsplashSearcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultUnsplashBaseURL,
		accessKey:  accessKey,
	}
}

func (s *UnsplashSearcher) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/search/photos?query=%s&per_page=1&client_id=%s",
		s.baseURL, url.QueryEscape(query), url.QueryEscape(s.accessKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build unsplash request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}

	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode unsplash response: %w", err)
	}

	if len(payload.Results) == 0 || payload.Results[0].URLs.Regular == "" {
		return "", ErrNoResults
	}

	return payload.Results[0].URLs.Regular, nil
}
