package podcast

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// FeedReader lists episodes from a podcast RSS feed.
type FeedReader struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

func NewFeedReader(timeout time.Duration) *FeedReader {
	return &FeedReader{parser: gofeed.NewParser(), timeout: timeout}
}

// ListEpisodes fetches and parses a feed, converting each item into an
// episode candidate. Items without a title are skipped; duration parsing
// is best-effort.
func (r *FeedReader) ListEpisodes(ctx context.Context, rssURL string) ([]models.EpisodeCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(rssURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	var episodes []models.EpisodeCandidate
	for _, item := range feed.Items {
		if item == nil || item.Title == "" {
			continue
		}

		candidate := models.EpisodeCandidate{Title: item.Title}
		if item.ITunesExt != nil {
			candidate.DurationMinutes = parseITunesDuration(item.ITunesExt.Duration)
		}
		for _, enc := range item.Enclosures {
			if enc == nil || enc.URL == "" {
				continue
			}
			candidate.Enclosures = append(candidate.Enclosures, models.Enclosure{
				URL:  enc.URL,
				Type: enc.Type,
			})
		}

		episodes = append(episodes, candidate)
	}

	return episodes, nil
}

// parseITunesDuration handles the three formats feeds use for
// itunes:duration: "HH:MM:SS", "MM:SS", and plain seconds. Returns whole
// minutes, 0 when unparseable.
func parseITunesDuration(dur string) int {
	dur = strings.TrimSpace(dur)
	if dur == "" {
		return 0
	}

	if strings.Contains(dur, ":") {
		parts := strings.Split(dur, ":")
		switch len(parts) {
		case 2:
			if m, err := strconv.Atoi(parts[0]); err == nil {
				return m
			}
		case 3:
			h, errH := strconv.Atoi(parts[0])
			m, errM := strconv.Atoi(parts[1])
			if errH == nil && errM == nil {
				return h*60 + m
			}
		}
		return 0
	}

	if secs, err := strconv.Atoi(dur); err == nil {
		return secs / 60
	}
	return 0
}
