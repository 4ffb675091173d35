// Package enrich is the content-resolution pipeline: it takes a
// bookmarked URL, classifies it, resolves metadata and media through
// per-type fallback chains, runs AI analysis, and assembles the final
// content record.
package enrich

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/royhenengel/Bookmark-Knowledge-Base/classify"
	"github.com/royhenengel/Bookmark-Knowledge-Base/gemini"
	"github.com/royhenengel/Bookmark-Knowledge-Base/media"
	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
	"github.com/royhenengel/Bookmark-Knowledge-Base/page"
	"github.com/royhenengel/Bookmark-Knowledge-Base/podcast"
	"github.com/royhenengel/Bookmark-Knowledge-Base/resolve"
	"github.com/royhenengel/Bookmark-Knowledge-Base/storage"
	"github.com/royhenengel/Bookmark-Knowledge-Base/title"
	"github.com/royhenengel/Bookmark-Knowledge-Base/transcribe"
)

// Options tune a single webpage enrichment.
type Options struct {
	SkipAI      bool
	ExtractCode bool
}

// DefaultOptions matches the request defaults: AI on, code extraction on.
func DefaultOptions() Options {
	return Options{SkipAI: false, ExtractCode: true}
}

// Service wires the pipeline's collaborators together.
type Service struct {
	fetcher     *page.Fetcher
	ai          *gemini.Client
	podcasts    *resolve.PodcastResolver
	videos      *resolve.VideoResolver
	transcriber *transcribe.Client
	store       *storage.S3Storage
	audio       *media.AudioExtractor
	logger      *slog.Logger
}

// Deps are the collaborators a Service needs. store may be nil, which
// disables media uploads in the video pipeline.
type Deps struct {
	Fetcher     *page.Fetcher
	AI          *gemini.Client
	Podcasts    *resolve.PodcastResolver
	Videos      *resolve.VideoResolver
	Transcriber *transcribe.Client
	Store       *storage.S3Storage
	Audio       *media.AudioExtractor
	Logger      *slog.Logger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:     d.Fetcher,
		ai:          d.AI,
		podcasts:    d.Podcasts,
		videos:      d.Videos,
		transcriber: d.Transcriber,
		store:       d.Store,
		audio:       d.Audio,
		logger:      logger,
	}
}

// EnrichWebpage runs the full webpage pipeline for one URL and always
// returns a record; failures are classified inside it rather than
// returned as Go errors.
func (s *Service) EnrichWebpage(ctx context.Context, rawURL string, opts Options) *models.ContentRecord {
	record := &models.ContentRecord{
		ID:          uuid.NewString(),
		URL:         rawURL,
		Domain:      domainOf(rawURL),
		ProcessedAt: time.Now().UTC(),
	}

	// Spotify episodes get the dedicated podcast chain; if it cannot
	// even produce metadata the URL is treated as a plain webpage.
	if podcast.IsEpisodeURL(rawURL) {
		if s.enrichPodcast(ctx, record, opts) {
			return record
		}
		s.logger.Warn("podcast resolution failed, falling back to page fetch", slog.String("url", rawURL))
	}

	html, fetchErr := s.fetcher.Fetch(ctx, rawURL)
	if fetchErr != nil {
		record.Error = &models.ErrorEntry{
			Stage:       models.StageFetch,
			Message:     fetchErr.Message,
			Recoverable: fetchErr.Recoverable,
		}
		return record
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		record.Error = &models.ErrorEntry{
			Stage:       models.StageProcessing,
			Message:     "Failed to parse HTML: " + err.Error(),
			Recoverable: false,
		}
		return record
	}

	contentType := classify.Detect(rawURL, doc)
	record.Type = contentType

	md := page.ExtractMetadata(doc)
	record.Author = md.Author
	record.PublishedDate = md.PublishedDate
	record.MainImage = md.MainImage
	record.Description = md.Description

	mainContent := page.ExtractMainContent(html, rawURL)
	if contentType == models.TypeArticle {
		record.ReadingTime = page.ReadingTime(mainContent)
	}
	if contentType == models.TypeProduct {
		record.Price, record.Currency = page.ExtractPrice(doc)
	}
	if contentType == models.TypeCode && opts.ExtractCode {
		record.CodeSnippets = page.ExtractCodeSnippets(doc)
	}

	finalTitle := md.Title
	if !opts.SkipAI {
		ai := s.ai.AnalyzeWebpage(ctx, rawURL, md.Title, mainContent, contentType)
		if ai.Error != "" {
			record.AddError(models.StageAIAnalysis, ai.Error, true)
		} else {
			if ai.Title != "" {
				finalTitle = ai.Title
			}
			record.AISummary = ai.Summary
			record.AIAnalysis = ai.Analysis
		}
	}
	record.Title = normalizeTitle(finalTitle)

	return record
}

// enrichPodcast fills the record from the podcast chain. Returns false
// when not even metadata could be resolved, letting the caller fall back
// to the generic page path.
func (s *Service) enrichPodcast(ctx context.Context, record *models.ContentRecord, opts Options) bool {
	res, err := s.podcasts.Resolve(ctx, record.URL)
	if err != nil {
		return false
	}
	ep := res.Episode

	record.Type = models.TypePodcast
	record.Title = normalizeTitle(ep.Title)
	record.PublishedDate = ep.ReleaseDate
	record.MainImage = ep.ThumbnailURL
	record.Description = ep.Description
	record.ReadingTime = ep.DurationMinutes
	record.ShowName = ep.ShowName
	record.ShowDescription = ep.ShowDescription

	switch {
	case ep.Publisher != "":
		record.Author = ep.Publisher
	case ep.ShowName != "":
		record.Author = ep.ShowName
	default:
		record.Author = ep.Provider
	}

	if !opts.SkipAI {
		ai := s.ai.AnalyzePodcast(ctx, ep.Title, ep.ShowName, ep.Description)
		if ai.Error != "" {
			record.AddError(models.StageAIAnalysis, ai.Error, true)
		} else {
			record.AISummary = ai.Summary
			record.AIAnalysis = ai.Analysis
		}
	}

	if res.AudioURL != "" {
		tr := s.transcriber.TranscribeURL(ctx, res.AudioURL)
		if tr.Error != "" {
			record.AddError(models.StageTranscription, "Transcription failed: "+tr.Error, true)
		} else {
			record.Transcription = tr.Text
		}
	} else if res.AudioError != "" {
		record.AddError(models.StageTranscription, res.AudioError, true)
	}

	return true
}

// normalizeTitle is the last gate every title passes before landing in a
// record: control characters stripped, punctuation restricted, truncated
// at a word boundary.
func normalizeTitle(raw string) string {
	cleaned := title.Sanitize(raw)
	cleaned, _ = title.Truncate(cleaned, title.MaxLength)
	return cleaned
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
