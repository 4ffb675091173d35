package enrich

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/royhenengel/Bookmark-Knowledge-Base/analysis"
	"github.com/royhenengel/Bookmark-Knowledge-Base/media"
	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// VideoRequest drives one run of the video pipeline.
type VideoRequest struct {
	URL             string
	Filename        string // optional override for the storage filename
	ExtractAudio    bool
	TranscribeAudio bool
	AnalyzeVideo    bool
}

// EnrichVideo downloads a video, stores it, and optionally extracts
// audio, transcribes it, and runs AI analysis. Stage failures degrade
// the result instead of aborting it; only a failed download makes the
// whole enrichment unsuccessful.
func (s *Service) EnrichVideo(ctx context.Context, req VideoRequest) *models.VideoEnrichment {
	enr := &models.VideoEnrichment{}

	tmpdir, err := os.MkdirTemp("", "video-enrich-*")
	if err != nil {
		enr.Errors = append(enr.Errors, models.ErrorEntry{
			Stage:       models.StageProcessing,
			Message:     "Failed to create working directory: " + err.Error(),
			Recoverable: true,
		})
		return enr
	}
	defer os.RemoveAll(tmpdir)

	res, err := s.videos.Resolve(ctx, req.URL, tmpdir)
	if err != nil {
		recoverable := res != nil && res.BotDetected
		enr.Errors = append(enr.Errors, models.ErrorEntry{
			Stage:       models.StageDownload,
			Message:     err.Error(),
			Recoverable: recoverable,
		})
		return enr
	}
	video := res.Video
	enr.Metadata = video
	enr.Success = true

	filename := req.Filename
	if filename == "" {
		filename = media.SmartFilename(video.Title, video.Uploader, video.Ext)
	}

	if s.store != nil {
		stored, err := s.store.SaveMedia(ctx, video.Filepath, filename)
		if err != nil {
			enr.Errors = append(enr.Errors, models.ErrorEntry{
				Stage:       models.StageUpload,
				Message:     err.Error(),
				Recoverable: true,
			})
		} else {
			enr.Video = stored
		}
	}

	var transcriptText string
	if req.ExtractAudio {
		audioPath, err := s.audio.Extract(ctx, video.Filepath)
		if err != nil {
			enr.Errors = append(enr.Errors, models.ErrorEntry{
				Stage:       models.StageTranscription,
				Message:     err.Error(),
				Recoverable: true,
			})
			s.logger.Warn("audio extraction failed",
				slog.String("url", req.URL),
				slog.String("error", err.Error()))
		} else {
			if s.store != nil {
				audioName := strings.TrimSuffix(filename, "."+video.Ext) + ".mp3"
				stored, err := s.store.SaveMedia(ctx, audioPath, audioName)
				if err != nil {
					enr.Errors = append(enr.Errors, models.ErrorEntry{
						Stage:       models.StageUpload,
						Message:     err.Error(),
						Recoverable: true,
					})
				} else {
					enr.Audio = stored
				}
			}

			if req.TranscribeAudio {
				tr := s.transcriber.Transcribe(ctx, audioPath)
				enr.Transcription = tr
				if tr.Error != "" {
					enr.Errors = append(enr.Errors, models.ErrorEntry{
						Stage:       models.StageTranscription,
						Message:     tr.Error,
						Recoverable: true,
					})
				} else {
					transcriptText = tr.Text
				}
			}
		}
	}

	if req.AnalyzeVideo {
		ai := s.ai.AnalyzeVideo(ctx, video.Title, video.Uploader, transcriptText)
		enr.Analysis = ai
		if ai.Error != "" {
			enr.Errors = append(enr.Errors, models.ErrorEntry{
				Stage:       models.StageAIAnalysis,
				Message:     ai.Error,
				Recoverable: true,
			})
		}
	}

	validation := analysis.ValidateEnrichment(enr)
	enr.Validation = &models.Validation{
		Valid:            validation.Valid,
		Errors:           validation.Errors,
		RequiredSections: analysis.RequiredSections,
	}

	return enr
}
