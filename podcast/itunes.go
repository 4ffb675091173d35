package podcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const itunesSearchURL = "https://itunes.apple.com/search"

// ShowFeed is the result of an iTunes podcast directory lookup: enough to
// find the show's RSS feed and identify it.
type ShowFeed struct {
	RSSURL      string
	PodcastName string
	ArtistName  string
	ArtworkURL  string
}

// ITunesClient looks up podcast RSS feeds through the iTunes Search API.
type ITunesClient struct {
	httpClient *http.Client
}

func NewITunesClient(timeout time.Duration) *ITunesClient {
	return &ITunesClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// LookupFeed searches iTunes for a show by name and returns its feed.
// An exact (case-insensitive) collection name match is preferred over the
// first result, since search ranking sometimes puts tribute shows first.
func (c *ITunesClient) LookupFeed(ctx context.Context, showName string) (*ShowFeed, error) {
	cleaned := strings.NewReplacer(`"`, "", "'", "").Replace(showName)

	params := url.Values{}
	params.Set("term", cleaned)
	params.Set("media", "podcast")
	params.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, itunesSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iTunes search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iTunes search error: %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			CollectionName string `json:"collectionName"`
			ArtistName     string `json:"artistName"`
			FeedURL        string `json:"feedUrl"`
			ArtworkURL600  string `json:"artworkUrl600"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("iTunes search decode failed: %w", err)
	}
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("no podcast found on iTunes for %q", showName)
	}

	best := body.Results[0]
	for _, r := range body.Results {
		if strings.EqualFold(r.CollectionName, cleaned) {
			best = r
			break
		}
	}
	if best.FeedURL == "" {
		return nil, fmt.Errorf("iTunes result for %q has no feed URL", showName)
	}

	return &ShowFeed{
		RSSURL:      best.FeedURL,
		PodcastName: best.CollectionName,
		ArtistName:  best.ArtistName,
		ArtworkURL:  best.ArtworkURL600,
	}, nil
}
