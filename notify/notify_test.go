package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

func cleanRecord() *models.ContentRecord {
	return &models.ContentRecord{
		ID:     "rec-1",
		URL:    "https://example.com/post",
		Domain: "example.com",
		Type:   models.TypeArticle,
		Title:  "A Perfectly Good Title",
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		record     func() *models.ContentRecord
		httpStatus int
		want       bool
	}{
		{
			"clean record stays quiet",
			cleanRecord, 200, false,
		},
		{
			"http error notifies regardless of record",
			cleanRecord, 404, true,
		},
		{
			"nil record notifies",
			func() *models.ContentRecord { return nil }, 200, true,
		},
		{
			"singular fatal error notifies",
			func() *models.ContentRecord {
				r := cleanRecord()
				r.Error = &models.ErrorEntry{Stage: models.StageFetch, Message: "HTTP error: 410", Recoverable: false}
				return r
			}, 200, true,
		},
		{
			"recoverable ai analysis failure alone stays quiet",
			func() *models.ContentRecord {
				r := cleanRecord()
				r.AddError(models.StageAIAnalysis, "AI analysis failed: quota exceeded", true)
				return r
			}, 200, false,
		},
		{
			"transcription failure notifies even when recoverable",
			func() *models.ContentRecord {
				r := cleanRecord()
				r.AddError(models.StageAIAnalysis, "AI analysis failed", true)
				r.AddError(models.StageTranscription, "Transcription failed: upload error", true)
				return r
			}, 200, true,
		},
		{
			"unrecoverable entry in any stage notifies",
			func() *models.ContentRecord {
				r := cleanRecord()
				r.AddError(models.StageProcessing, "Failed to parse HTML", false)
				return r
			}, 200, true,
		},
		{
			"blank title notifies",
			func() *models.ContentRecord {
				r := cleanRecord()
				r.Title = "   "
				return r
			}, 200, true,
		},
		{
			"unknown type notifies",
			func() *models.ContentRecord {
				r := cleanRecord()
				r.Type = models.TypeUnknown
				return r
			}, 200, true,
		},
		{
			"empty type notifies",
			func() *models.ContentRecord {
				r := cleanRecord()
				r.Type = ""
				return r
			}, 200, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.record(), tt.httpStatus))
		})
	}
}
