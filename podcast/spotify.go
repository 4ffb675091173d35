// Package podcast resolves podcast episode metadata and audio through the
// fallback chain Spotify Web API -> Spotify oEmbed -> iTunes feed lookup ->
// RSS episode match.
package podcast

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	spotifyTokenURL   = "https://accounts.spotify.com/api/token"
	spotifyEpisodeURL = "https://api.spotify.com/v1/episodes/%s"
	spotifyOEmbedURL  = "https://open.spotify.com/oembed?url=%s"

	// tokenExpiryBuffer refreshes tokens a bit early so a token never
	// expires mid-request.
	tokenExpiryBuffer = 60 * time.Second
)

var episodeIDRe = regexp.MustCompile(`spotify\.com/episode/([a-zA-Z0-9]+)`)

// EpisodeIDFromURL extracts the episode ID from a Spotify episode URL.
// Returns "" when the URL is not an episode link.
func EpisodeIDFromURL(rawURL string) string {
	m := episodeIDRe.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsEpisodeURL reports whether a URL points at a Spotify podcast episode.
func IsEpisodeURL(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "spotify.com/episode")
}

// tokenCache holds one client-credentials token. It is deliberately
// lock-free: a concurrently overwritten value only costs one extra auth
// round trip, never correctness.
type tokenCache struct {
	token     string
	expiresAt time.Time
	now       func() time.Time
}

func (c *tokenCache) get() (string, bool) {
	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, true
	}
	return "", false
}

func (c *tokenCache) put(token string, expiresIn time.Duration) {
	c.token = token
	c.expiresAt = c.now().Add(expiresIn - tokenExpiryBuffer)
}

// Episode is the metadata resolved for one podcast episode.
type Episode struct {
	Title           string
	Description     string
	ThumbnailURL    string
	ReleaseDate     string
	DurationMinutes int
	ShowName        string
	ShowDescription string
	Publisher       string
	Provider        string
}

// SpotifyClient fetches episode metadata from the Spotify Web API, with
// the unauthenticated oEmbed endpoint as fallback.
type SpotifyClient struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	tokens       tokenCache
	stripHTML    *bluemonday.Policy
}

// NewSpotifyClient builds a client. Credentials may be empty, in which
// case every lookup falls straight through to oEmbed.
func NewSpotifyClient(clientID, clientSecret string, timeout time.Duration) *SpotifyClient {
	return &SpotifyClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		clientID:     clientID,
		clientSecret: clientSecret,
		tokens:       tokenCache{now: time.Now},
		stripHTML:    bluemonday.StrictPolicy(),
	}
}

// SetClock overrides the token cache clock; used by tests to control
// expiry deterministically.
func (c *SpotifyClient) SetClock(now func() time.Time) {
	c.tokens.now = now
}

// FetchEpisode resolves rich metadata for a Spotify episode URL. Without
// credentials, or when the Web API fails for any reason other than a
// missing episode, it falls back to oEmbed.
func (c *SpotifyClient) FetchEpisode(ctx context.Context, episodeURL string) (*Episode, error) {
	id := EpisodeIDFromURL(episodeURL)
	if id == "" {
		return nil, fmt.Errorf("could not extract episode ID from URL")
	}

	token, err := c.accessToken(ctx)
	if err != nil || token == "" {
		return c.FetchOEmbed(ctx, episodeURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(spotifyEpisodeURL, id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.FetchOEmbed(ctx, episodeURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("episode not found")
	}
	if resp.StatusCode != http.StatusOK {
		return c.FetchOEmbed(ctx, episodeURL)
	}

	var body struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		HTMLDescription string `json:"html_description"`
		ReleaseDate     string `json:"release_date"`
		DurationMS      int    `json:"duration_ms"`
		Images          []struct {
			URL string `json:"url"`
		} `json:"images"`
		Show struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Publisher   string `json:"publisher"`
		} `json:"show"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return c.FetchOEmbed(ctx, episodeURL)
	}

	description := body.Description
	if description == "" {
		description = c.stripHTML.Sanitize(body.HTMLDescription)
	}

	ep := &Episode{
		Title:           body.Name,
		Description:     description,
		ReleaseDate:     body.ReleaseDate,
		ShowName:        body.Show.Name,
		ShowDescription: body.Show.Description,
		Publisher:       body.Show.Publisher,
		Provider:        "Spotify",
	}
	if body.DurationMS > 0 {
		ep.DurationMinutes = int(float64(body.DurationMS)/60000 + 0.5)
	}
	if len(body.Images) > 0 {
		ep.ThumbnailURL = body.Images[0].URL
	}

	return ep, nil
}

// FetchOEmbed resolves the minimal metadata Spotify exposes without
// authentication: title, thumbnail, provider.
func (c *SpotifyClient) FetchOEmbed(ctx context.Context, episodeURL string) (*Episode, error) {
	endpoint := fmt.Sprintf(spotifyOEmbedURL, url.QueryEscape(episodeURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify oEmbed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify oEmbed error: %d", resp.StatusCode)
	}

	var body struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
		ProviderName string `json:"provider_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("spotify oEmbed decode failed: %w", err)
	}

	provider := body.ProviderName
	if provider == "" {
		provider = "Spotify"
	}

	return &Episode{
		Title:        body.Title,
		ThumbnailURL: body.ThumbnailURL,
		Provider:     provider,
	}, nil
}

// accessToken returns a cached client-credentials token, authenticating
// when the cache is empty or expired.
func (c *SpotifyClient) accessToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.get(); ok {
		return token, nil
	}
	if c.clientID == "" || c.clientSecret == "" {
		return "", nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spotifyTokenURL, form)
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("spotify auth error: %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("spotify auth decode failed: %w", err)
	}

	expiresIn := time.Duration(body.ExpiresIn) * time.Second
	if expiresIn == 0 {
		expiresIn = time.Hour
	}
	c.tokens.put(body.AccessToken, expiresIn)

	return body.AccessToken, nil
}
