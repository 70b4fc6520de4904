package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsplashSearcher_Search(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "engine oil check", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		assert.Equal(t, "ak-test", r.URL.Query().Get("client_id"))

		_, _ = w.Write([]byte(`{"results":[{"urls":{"regular":"https://images.example/oil.jpg"}}]}`))
	}))
	defer server.Close()

	searcher := NewUnsplashSearcher("ak-test")
	searcher.baseURL = server.URL

	imageURL, err := searcher.Search(context.Background(), "engine oil check")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/oil.jpg", imageURL)
}

func TestUnsplashSearcher_NoResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	searcher := NewUnsplashSearcher("ak-test")
	searcher.baseURL = server.URL

	_, err := searcher.Search(context.Background(), "nothing")
	require.ErrorIs(t, err, ErrNoResults)
}

func TestUnsplashSearcher_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	searcher := NewUnsplashSearcher("bad-key")
	searcher.baseURL = server.URL

	_, err := searcher.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
}

func TestPexelsSearcher_Search(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "px-key", r.Header.Get("Authorization"))
		assert.Equal(t, "cake decoration", r.URL.Query().Get("query"))

		_, _ = w.Write([]byte(`{"photos":[{"src":{"large":"https://images.example/cake.jpg"}}]}`))
	}))
	defer server.Close()

	searcher := NewPexelsSearcher("px-key")
	searcher.baseURL = server.URL

	imageURL, err := searcher.Search(context.Background(), "cake decoration")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/cake.jpg", imageURL)
}

func TestPexelsSearcher_NoResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"photos":[]}`))
	}))
	defer server.Close()

	searcher := NewPexelsSearcher("px-key")
	searcher.baseURL = server.URL

	_, err := searcher.Search(context.Background(), "nothing")
	require.ErrorIs(t, err, ErrNoResults)
}

func TestNewSearcher_DisabledProviders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewSearcher("none", "", nil, nil))
	assert.Nil(t, NewSearcher("dall-e", "", nil, nil))
	assert.Nil(t, NewSearcher("unknown", "", nil, nil))
	assert.NotNil(t, NewSearcher("unsplash", "k", nil, nil))
	assert.NotNil(t, NewSearcher("pexels", "k", nil, nil))
}
