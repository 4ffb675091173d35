package podcast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpisodeIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk", "4rOoJ6Egrf8K2IrywzwOMk"},
		{"https://open.spotify.com/episode/abc123?si=xyz", "abc123"},
		{"https://open.spotify.com/show/abc123", ""},
		{"https://example.com/episode/abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EpisodeIDFromURL(tt.url), "url %q", tt.url)
	}
}

func TestIsEpisodeURL(t *testing.T) {
	assert.True(t, IsEpisodeURL("https://open.spotify.com/episode/abc123"))
	assert.True(t, IsEpisodeURL("https://OPEN.SPOTIFY.COM/EPISODE/abc123"))
	assert.False(t, IsEpisodeURL("https://open.spotify.com/album/abc123"))
	assert.False(t, IsEpisodeURL("https://www.youtube.com/watch?v=abc"))
}

func TestTokenCache(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := tokenCache{now: func() time.Time { return clock }}

	_, ok := cache.get()
	assert.False(t, ok, "empty cache must miss")

	cache.put("tok-1", time.Hour)

	got, ok := cache.get()
	require.True(t, ok)
	assert.Equal(t, "tok-1", got)

	// Still valid just inside the refresh buffer.
	clock = clock.Add(time.Hour - tokenExpiryBuffer - time.Second)
	_, ok = cache.get()
	assert.True(t, ok)

	// The buffer expires the token a minute before Spotify would.
	clock = clock.Add(2 * time.Second)
	_, ok = cache.get()
	assert.False(t, ok, "token must be treated as expired inside the buffer window")
}

func TestFetchOEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"title":         "Episode Title From oEmbed",
			"thumbnail_url": "https://i.scdn.co/image/thumb",
			"provider_name": "Spotify",
		})
	}))
	defer server.Close()

	c := NewSpotifyClient("", "", 5*time.Second)
	c.httpClient = server.Client()
	c.httpClient.Transport = rewriteHost(server)

	ep, err := c.FetchOEmbed(context.Background(), "https://open.spotify.com/episode/abc123")
	require.NoError(t, err)
	assert.Equal(t, "Episode Title From oEmbed", ep.Title)
	assert.Equal(t, "https://i.scdn.co/image/thumb", ep.ThumbnailURL)
	assert.Equal(t, "Spotify", ep.Provider)
}

func TestFetchEpisodeBadURL(t *testing.T) {
	c := NewSpotifyClient("id", "secret", 5*time.Second)
	_, err := c.FetchEpisode(context.Background(), "https://open.spotify.com/show/notanepisode")
	require.EqualError(t, err, "could not extract episode ID from URL")
}

// rewriteHost sends every request to the test server regardless of the
// URL the client built.
func rewriteHost(server *httptest.Server) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		req.URL.Scheme = "http"
		req.URL.Host = server.Listener.Addr().String()
		return http.DefaultTransport.RoundTrip(req)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
