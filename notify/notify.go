// Package notify decides whether an enriched record warrants alerting a
// human. The rules run in order; the first match wins.
package notify

import (
	"strings"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// Classify reports whether the record should trigger a notification.
//
// Rules, first match wins:
//  1. HTTP status >= 400.
//  2. A singular fatal error.
//  3. Any error entry tagged transcription, or any unrecoverable entry.
//  4. Missing or empty title.
//  5. Missing or unknown content type.
//  6. Otherwise clean: no notification, even with benign recoverable
//     errors such as a failed AI analysis.
func Classify(record *models.ContentRecord, httpStatus int) bool {
	if httpStatus >= 400 {
		return true
	}
	if record == nil {
		return true
	}
	if record.Error != nil {
		return true
	}
	for _, entry := range record.Errors {
		if entry.Stage == models.StageTranscription || !entry.Recoverable {
			return true
		}
	}
	if strings.TrimSpace(record.Title) == "" {
		return true
	}
	if !record.Type.IsKnown() {
		return true
	}
	return false
}
