package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/royhenengel/Bookmark-Knowledge-Base/media"
	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
	"github.com/royhenengel/Bookmark-Knowledge-Base/podcast"
)

const (
	stageSpotifyMetadata = "SPOTIFY_METADATA"
	stageYouTubeAPI      = "YOUTUBE_API_SEARCH"
	stageYouTubeScrape   = "YOUTUBE_SCRAPE_SEARCH_FALLBACK"
	stageDownload        = "DOWNLOAD"
	stageYTDLPDownload   = "YTDLP_DOWNLOAD"
	stageTikTokYTDLP     = "TIKTOK_YTDLP"
	stageTikTokRapidAPI  = "TIKTOK_RAPIDAPI"
)

// VideoResolution is a downloaded video plus the trace of how it was
// acquired.
type VideoResolution struct {
	Video    *models.VideoInfo
	Attempts []models.ResolutionAttempt

	// BotDetected marks a download blocked by the platform's bot
	// challenge; recoverable, unlike "not found".
	BotDetected bool
}

// VideoResolver acquires a downloadable video for a URL, picking the
// chain by platform: Spotify episodes are located on YouTube first,
// TikTok gets the tool-then-paid-API chain, everything else goes
// straight to yt-dlp.
type VideoResolver struct {
	spotify    *podcast.SpotifyClient
	searcher   *media.YouTubeSearcher
	downloader *media.Downloader
	logger     *slog.Logger
}

func NewVideoResolver(spotify *podcast.SpotifyClient, searcher *media.YouTubeSearcher, downloader *media.Downloader, logger *slog.Logger) *VideoResolver {
	return &VideoResolver{spotify: spotify, searcher: searcher, downloader: downloader, logger: logger}
}

// Resolve downloads the video behind a URL into dir.
func (r *VideoResolver) Resolve(ctx context.Context, rawURL, dir string) (*VideoResolution, error) {
	lower := strings.ToLower(rawURL)
	switch {
	case podcast.IsEpisodeURL(rawURL):
		return r.resolveSpotifyAsVideo(ctx, rawURL, dir)
	case strings.Contains(lower, "tiktok"):
		return r.resolveTikTok(ctx, rawURL, dir)
	default:
		return r.resolveGeneric(ctx, rawURL, dir)
	}
}

// resolveSpotifyAsVideo finds a Spotify episode on YouTube and downloads
// it from there:
// SPOTIFY_METADATA -> YOUTUBE_API_SEARCH -> YOUTUBE_SCRAPE_SEARCH_FALLBACK -> DOWNLOAD.
func (r *VideoResolver) resolveSpotifyAsVideo(ctx context.Context, rawURL, dir string) (*VideoResolution, error) {
	res := &VideoResolution{}

	meta, err := r.spotify.FetchOEmbed(ctx, rawURL)
	if err != nil {
		res.Attempts = append(res.Attempts, models.ResolutionAttempt{
			Source:  stageSpotifyMetadata,
			Outcome: models.OutcomeFailure,
			Detail:  err.Error(),
		})
		return nil, &ChainError{Attempts: res.Attempts}
	}
	res.Attempts = append(res.Attempts, models.ResolutionAttempt{
		Source:  stageSpotifyMetadata,
		Outcome: models.OutcomeSuccess,
	})

	query := media.BuildSearchQuery(meta.Title, meta.ShowName)
	r.logger.Info("searching YouTube for podcast episode",
		slog.String("episode", meta.Title),
		slog.String("query", query))

	youtubeURL, searchAttempts, chainErr := runChain(ctx, []Stage[string]{
		{Name: stageYouTubeAPI, Run: func(ctx context.Context) (string, error) {
			return r.searcher.SearchAPI(ctx, query)
		}},
		{Name: stageYouTubeScrape, Run: func(ctx context.Context) (string, error) {
			return r.searcher.SearchScrape(ctx, query)
		}},
	})
	res.Attempts = append(res.Attempts, searchAttempts...)
	if chainErr != nil {
		return nil, &ChainError{Attempts: res.Attempts}
	}

	video, err := r.downloader.DownloadWithYTDLP(ctx, youtubeURL, dir)
	if err != nil {
		res.Attempts = append(res.Attempts, models.ResolutionAttempt{
			Source:  stageDownload,
			Outcome: models.OutcomeFailure,
			Detail:  err.Error(),
		})
		if media.IsBotDetection(err) {
			res.BotDetected = true
			return res, fmt.Errorf("download blocked by bot detection, found video: %s", youtubeURL)
		}
		return nil, &ChainError{Attempts: res.Attempts}
	}
	res.Attempts = append(res.Attempts, models.ResolutionAttempt{
		Source:  stageDownload,
		Outcome: models.OutcomeSuccess,
	})

	video.Source = "spotify_via_youtube"
	video.Title = meta.Title
	if video.Thumbnail == "" {
		video.Thumbnail = meta.ThumbnailURL
	}
	res.Video = video
	return res, nil
}

func (r *VideoResolver) resolveTikTok(ctx context.Context, rawURL, dir string) (*VideoResolution, error) {
	video, attempts, chainErr := runChain(ctx, []Stage[*models.VideoInfo]{
		{Name: stageTikTokYTDLP, Run: func(ctx context.Context) (*models.VideoInfo, error) {
			return r.downloader.DownloadTikTokYTDLP(ctx, rawURL, dir)
		}},
		{Name: stageTikTokRapidAPI, Run: func(ctx context.Context) (*models.VideoInfo, error) {
			return r.downloader.DownloadTikTokRapidAPI(ctx, rawURL, dir)
		}},
	})
	if chainErr != nil {
		return nil, chainErr
	}
	return &VideoResolution{Video: video, Attempts: attempts}, nil
}

func (r *VideoResolver) resolveGeneric(ctx context.Context, rawURL, dir string) (*VideoResolution, error) {
	res := &VideoResolution{}

	video, err := r.downloader.DownloadWithYTDLP(ctx, rawURL, dir)
	if err != nil {
		res.Attempts = append(res.Attempts, models.ResolutionAttempt{
			Source:  stageYTDLPDownload,
			Outcome: models.OutcomeFailure,
			Detail:  err.Error(),
		})
		if media.IsBotDetection(err) {
			res.BotDetected = true
			return res, fmt.Errorf("download blocked by bot detection")
		}
		return nil, &ChainError{Attempts: res.Attempts}
	}
	res.Attempts = append(res.Attempts, models.ResolutionAttempt{
		Source:  stageYTDLPDownload,
		Outcome: models.OutcomeSuccess,
	})
	res.Video = video
	return res, nil
}
