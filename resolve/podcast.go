package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
	"github.com/royhenengel/Bookmark-Knowledge-Base/podcast"
)

// Chain stage names recorded in resolution traces.
const (
	stagePrimaryAPI     = "PRIMARY_API"
	stageOEmbedFallback = "OEMBED_FALLBACK"
	stageITunesFeed     = "ITUNES_FEED_LOOKUP"
	stageEpisodeMatch   = "EPISODE_MATCH"
	stageAudioResolved  = "AUDIO_RESOLVED"
)

// PodcastResolution is the outcome of the podcast metadata+audio chain.
// Metadata is always present on success; audio is best-effort, with
// AudioError explaining its absence.
type PodcastResolution struct {
	Episode      *podcast.Episode
	AudioURL     string
	MatchedTitle string
	MatchScore   float64
	AudioError   string
	Attempts     []models.ResolutionAttempt
}

// PodcastResolver runs the podcast chain:
// PRIMARY_API -> OEMBED_FALLBACK -> ITUNES_FEED_LOOKUP -> EPISODE_MATCH.
type PodcastResolver struct {
	spotify *podcast.SpotifyClient
	itunes  *podcast.ITunesClient
	feeds   *podcast.FeedReader
	logger  *slog.Logger
}

func NewPodcastResolver(spotify *podcast.SpotifyClient, itunes *podcast.ITunesClient, feeds *podcast.FeedReader, logger *slog.Logger) *PodcastResolver {
	return &PodcastResolver{spotify: spotify, itunes: itunes, feeds: feeds, logger: logger}
}

// Resolve produces episode metadata and, when the RSS chain cooperates,
// a direct audio URL. Metadata failure fails the resolution; audio
// failure only annotates it, since a metadata-only record is still
// usable.
func (r *PodcastResolver) Resolve(ctx context.Context, episodeURL string) (*PodcastResolution, error) {
	episode, attempts, chainErr := runChain(ctx, []Stage[*podcast.Episode]{
		{Name: stagePrimaryAPI, Run: func(ctx context.Context) (*podcast.Episode, error) {
			return r.spotify.FetchEpisode(ctx, episodeURL)
		}},
		{Name: stageOEmbedFallback, Run: func(ctx context.Context) (*podcast.Episode, error) {
			return r.spotify.FetchOEmbed(ctx, episodeURL)
		}},
	})
	if chainErr != nil {
		return nil, chainErr
	}

	res := &PodcastResolution{Episode: episode, Attempts: attempts}
	r.resolveAudio(ctx, episodeURL, res)
	return res, nil
}

// resolveAudio walks the RSS side of the chain. Every failure lands in
// the trace and AudioError; none of them aborts the resolution.
func (r *PodcastResolver) resolveAudio(ctx context.Context, episodeURL string, res *PodcastResolution) {
	fail := func(stage string, err error) {
		res.Attempts = append(res.Attempts, models.ResolutionAttempt{
			Source:  stage,
			Outcome: models.OutcomeFailure,
			Detail:  err.Error(),
		})
		res.AudioError = err.Error()
		r.logger.Warn("podcast audio resolution failed",
			slog.String("stage", stage),
			slog.String("url", episodeURL),
			slog.String("error", err.Error()))
	}
	ok := func(stage string) {
		res.Attempts = append(res.Attempts, models.ResolutionAttempt{
			Source:  stage,
			Outcome: models.OutcomeSuccess,
		})
	}

	if res.Episode.ShowName == "" {
		fail(stageITunesFeed, fmt.Errorf("no show name available for feed lookup"))
		return
	}

	feed, err := r.itunes.LookupFeed(ctx, res.Episode.ShowName)
	if err != nil {
		fail(stageITunesFeed, err)
		return
	}
	ok(stageITunesFeed)

	candidates, err := r.feeds.ListEpisodes(ctx, feed.RSSURL)
	if err != nil {
		fail(stageEpisodeMatch, err)
		return
	}

	match, err := podcast.FindBest(candidates, res.Episode.Title, res.Episode.DurationMinutes)
	if err != nil {
		fail(stageEpisodeMatch, err)
		return
	}
	ok(stageEpisodeMatch)

	res.AudioURL = match.AudioURL
	res.MatchedTitle = match.Title
	res.MatchScore = match.Score
	ok(stageAudioResolved)
}
