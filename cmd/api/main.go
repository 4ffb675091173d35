package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	enrich "github.com/royhenengel/Bookmark-Knowledge-Base"
	"github.com/royhenengel/Bookmark-Knowledge-Base/api"
	"github.com/royhenengel/Bookmark-Knowledge-Base/gemini"
	"github.com/royhenengel/Bookmark-Knowledge-Base/media"
	"github.com/royhenengel/Bookmark-Knowledge-Base/page"
	"github.com/royhenengel/Bookmark-Knowledge-Base/podcast"
	"github.com/royhenengel/Bookmark-Knowledge-Base/resolve"
	"github.com/royhenengel/Bookmark-Knowledge-Base/storage"
	"github.com/royhenengel/Bookmark-Knowledge-Base/tracing"
	"github.com/royhenengel/Bookmark-Knowledge-Base/transcribe"
)

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("enrichment service initializing", "version", "1.0.0")

	// Initialize tracing
	tp, err := tracing.InitTracer("bookmark-enricher")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Default values
	defaultPort := getEnv("PORT", "8080")
	defaultGeminiModel := getEnv("GEMINI_MODEL", gemini.DefaultModel)

	// Command-line flags (override environment variables)
	port := flag.String("port", defaultPort, "Server port")
	geminiModel := flag.String("gemini-model", defaultGeminiModel, "Gemini model for AI analysis")
	disableCORS := flag.Bool("disable-cors", false, "Disable CORS")
	flag.Parse()

	// External service credentials; everything degrades gracefully when
	// absent except S3, which just disables media uploads.
	geminiKey := getEnv("GEMINI_API_KEY", "")
	assemblyAIKey := getEnv("ASSEMBLYAI_API_KEY", "")
	spotifyClientID := getEnv("SPOTIFY_CLIENT_ID", "")
	spotifyClientSecret := getEnv("SPOTIFY_CLIENT_SECRET", "")
	rapidAPIKey := getEnv("RAPIDAPI_KEY", "")
	youtubeAPIKey := getEnv("YOUTUBE_API_KEY", "")
	ytdlpPath := getEnv("YTDLP_PATH", "yt-dlp")
	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")

	if geminiKey == "" {
		logger.Warn("GEMINI_API_KEY not set, AI analysis disabled")
	}
	if assemblyAIKey == "" {
		logger.Warn("ASSEMBLYAI_API_KEY not set, transcription disabled")
	}
	if spotifyClientID == "" || spotifyClientSecret == "" {
		logger.Warn("Spotify credentials not set, podcast metadata limited to oEmbed")
	}

	var store *storage.S3Storage
	s3Bucket := getEnv("S3_BUCKET", "")
	if s3Bucket != "" {
		store, err = storage.NewS3Storage(context.Background(), storage.S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          s3Bucket,
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnv("S3_USE_PATH_STYLE", "") == "true",
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		})
		if err != nil {
			logger.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		logger.Info("S3 storage initialized", "bucket", s3Bucket)
	} else {
		logger.Warn("S3_BUCKET not set, media uploads disabled")
	}

	spotifyClient := podcast.NewSpotifyClient(spotifyClientID, spotifyClientSecret, 15*time.Second)
	downloader := media.NewDownloader(ytdlpPath, rapidAPIKey)
	searcher := media.NewYouTubeSearcher(youtubeAPIKey, ytdlpPath, nil)

	enricher := enrich.NewService(enrich.Deps{
		Fetcher: page.NewFetcher(30 * time.Second),
		AI:      gemini.NewClient("", geminiKey, *geminiModel),
		Podcasts: resolve.NewPodcastResolver(
			spotifyClient,
			podcast.NewITunesClient(15*time.Second),
			podcast.NewFeedReader(30*time.Second),
			logger,
		),
		Videos:      resolve.NewVideoResolver(spotifyClient, searcher, downloader, logger),
		Transcriber: transcribe.NewClient(assemblyAIKey),
		Store:       store,
		Audio:       media.NewAudioExtractor(ffmpegPath),
		Logger:      logger,
	})

	config := api.DefaultConfig()
	config.Addr = ":" + *port
	config.CORSEnabled = !*disableCORS

	server := api.NewServer(config, enricher, logger)

	// Start server in a goroutine
	go func() {
		logger.Info("enrichment service starting",
			"port", *port,
			"gemini_model", *geminiModel,
			"uploads_enabled", store != nil,
		)

		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
