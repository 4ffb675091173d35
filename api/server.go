// Package api exposes the enrichment pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	enrich "github.com/royhenengel/Bookmark-Knowledge-Base"
	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
	"github.com/royhenengel/Bookmark-Knowledge-Base/notify"
)

// Server represents the API server
type Server struct {
	enricher    *enrich.Service
	addr        string
	server      *http.Server
	mux         *http.ServeMux
	corsEnabled bool
	logger      *slog.Logger
	metrics     *metrics
}

// Config contains server configuration
type Config struct {
	Addr        string
	CORSEnabled bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		CORSEnabled: true,
	}
}

// NewServer creates a new API server
func NewServer(config Config, enricher *enrich.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		enricher:    enricher,
		addr:        config.Addr,
		mux:         http.NewServeMux(),
		corsEnabled: config.CORSEnabled,
		logger:      logger,
		metrics:     newMetrics(prometheus.DefaultRegisterer),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      otelhttp.NewHandler(s.middleware(s.mux), "api"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 20 * time.Minute, // video downloads and transcription run long
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/api/enrich", s.handleEnrich)
	s.mux.HandleFunc("/api/enrich/video", s.handleEnrichVideo)
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", slog.String("addr", s.addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// middleware applies CORS, logging, panic recovery, and metrics to all
// routes.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsEnabled {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("panic in handler",
					slog.String("path", r.URL.Path),
					slog.Any("panic", p))
				respondJSON(rec, http.StatusInternalServerError, map[string]any{
					"error": models.ErrorEntry{
						Stage:       models.StageProcessing,
						Message:     fmt.Sprintf("%v", p),
						Recoverable: false,
					},
				})
			}
			if r.URL.Path != "/health" && r.URL.Path != "/metrics" {
				s.logger.Info("request completed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", rec.status),
					slog.Duration("duration", time.Since(start)))
			}
			s.metrics.requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
			s.metrics.requestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.written {
		r.status = status
		r.written = true
	}
	r.ResponseWriter.WriteHeader(status)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// EnrichRequest represents a webpage enrichment request
type EnrichRequest struct {
	URL     string `json:"url"`
	Options struct {
		SkipAI      bool  `json:"skip_ai"`
		ExtractCode *bool `json:"extract_code"` // default true
	} `json:"options"`
}

// handleEnrich runs the webpage pipeline. Stage failures stay inside the
// record (fetch errors included), so the response is 200 unless the
// request itself is malformed.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: url")
		return
	}

	opts := enrich.DefaultOptions()
	opts.SkipAI = req.Options.SkipAI
	if req.Options.ExtractCode != nil {
		opts.ExtractCode = *req.Options.ExtractCode
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	record := s.enricher.EnrichWebpage(ctx, req.URL, opts)

	s.recordOutcome(record)
	respondJSON(w, http.StatusOK, record)
}

// recordOutcome runs the notification rule and feeds the metrics; the
// decision itself is for downstream notifiers, so it is logged rather
// than added to the wire format.
func (s *Server) recordOutcome(record *models.ContentRecord) {
	shouldNotify := notify.Classify(record, http.StatusOK)
	s.metrics.notifications.WithLabelValues(strconv.FormatBool(shouldNotify)).Inc()
	for _, e := range record.Errors {
		s.metrics.stageErrors.WithLabelValues(string(e.Stage)).Inc()
	}
	if record.Error != nil {
		s.metrics.stageErrors.WithLabelValues(string(record.Error.Stage)).Inc()
	}

	if shouldNotify {
		s.logger.Warn("record flagged for notification",
			slog.String("id", record.ID),
			slog.String("url", record.URL),
			slog.Int("errors", len(record.Errors)))
	}
}

// VideoEnrichRequest represents a video enrichment request
type VideoEnrichRequest struct {
	VideoURL        string `json:"video_url"`
	Filename        string `json:"filename"`
	ExtractAudio    *bool  `json:"extract_audio"`    // default true
	TranscribeAudio *bool  `json:"transcribe_audio"` // default true
	AnalyzeVideo    *bool  `json:"analyze_video"`    // default true
}

// handleEnrichVideo runs the video pipeline.
func (s *Server) handleEnrichVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req VideoEnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VideoURL == "" {
		respondError(w, http.StatusBadRequest, "video_url is required")
		return
	}

	videoReq := enrich.VideoRequest{
		URL:             req.VideoURL,
		Filename:        req.Filename,
		ExtractAudio:    boolOrDefault(req.ExtractAudio, true),
		TranscribeAudio: boolOrDefault(req.TranscribeAudio, true),
		AnalyzeVideo:    boolOrDefault(req.AnalyzeVideo, true),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Minute)
	defer cancel()

	result := s.enricher.EnrichVideo(ctx, videoReq)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, result)
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
