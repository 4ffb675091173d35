package media

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

// queryPrefixes are stripped from episode titles before searching; they
// appear in Spotify titles but rarely in the matching YouTube uploads.
var queryPrefixes = []string{"Most Replayed Moment:", "Ep.", "Episode", "#"}

// BuildSearchQuery cleans an episode title into a YouTube search query,
// prepending the show name when it is not already part of the title.
func BuildSearchQuery(episodeTitle, showName string) string {
	query := episodeTitle
	for _, prefix := range queryPrefixes {
		if strings.HasPrefix(query, prefix) {
			query = strings.TrimSpace(query[len(prefix):])
		}
	}
	if showName != "" && !strings.Contains(query, showName) {
		query = showName + " " + query
	}
	return query
}

// YouTubeSearcher locates a video for a search query, using the YouTube
// Data API when a key is configured and yt-dlp's ytsearch otherwise.
type YouTubeSearcher struct {
	apiKey     string
	ytdlpPath  string
	httpClient *http.Client
	maxResults int
}

func NewYouTubeSearcher(apiKey, ytdlpPath string, httpClient *http.Client) *YouTubeSearcher {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &YouTubeSearcher{
		apiKey:     apiKey,
		ytdlpPath:  ytdlpPath,
		httpClient: httpClient,
		maxResults: 10,
	}
}

// Search returns a YouTube watch URL for the query, or an error when
// neither the API nor yt-dlp finds anything.
func (s *YouTubeSearcher) Search(ctx context.Context, query string) (string, error) {
	if found, err := s.SearchAPI(ctx, query); err == nil && found != "" {
		return found, nil
	}
	return s.SearchScrape(ctx, query)
}

// SearchAPI queries the YouTube Data API; errors immediately when no key
// is configured.
func (s *YouTubeSearcher) SearchAPI(ctx context.Context, query string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("no YouTube API key configured")
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", "5")
	params.Set("key", s.apiKey)
	// podcasts run long; the duration filter weeds out clips and shorts
	params.Set("videoDuration", "long")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("YouTube API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("YouTube API error: %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("YouTube API decode failed: %w", err)
	}
	if len(body.Items) == 0 || body.Items[0].ID.VideoID == "" {
		return "", fmt.Errorf("no YouTube API results")
	}

	return "https://youtube.com/watch?v=" + body.Items[0].ID.VideoID, nil
}

// SearchScrape runs a flat ytsearch through yt-dlp and picks the first
// result longer than five minutes, falling back to the first result of
// any length.
func (s *YouTubeSearcher) SearchScrape(ctx context.Context, query string) (string, error) {
	cmd := exec.CommandContext(ctx, s.ytdlpPath,
		"--flat-playlist",
		"--dump-json",
		"--no-warnings",
		"--extractor-args", "youtube:player_client=ios,android_vr,tv_embedded",
		"--user-agent", iosUserAgent,
		fmt.Sprintf("ytsearch%d:%s", s.maxResults, query),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("yt-dlp search failed: %s", msg)
	}

	type entry struct {
		ID       string  `json:"id"`
		Duration float64 `json:"duration"`
	}
	var entries []entry

	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil || e.ID == "" {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no YouTube results found")
	}

	for _, e := range entries {
		if e.Duration > 300 {
			return "https://youtube.com/watch?v=" + e.ID, nil
		}
	}
	return "https://youtube.com/watch?v=" + entries[0].ID, nil
}
