package analysis

import (
	"strings"
	"testing"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

func TestValidateSectionsComplete(t *testing.T) {
	res := ValidateSections(iconAnalysis, nil, false)

	if !res.Valid {
		t.Fatalf("ValidateSections on complete analysis invalid: %v", res.Errors)
	}
	if len(res.Missing) != 0 || len(res.Empty) != 0 {
		t.Errorf("missing = %v, empty = %v, want both empty", res.Missing, res.Empty)
	}
}

func TestValidateSectionsOneMissing(t *testing.T) {
	// Drop Key Messages only.
	text := strings.Replace(iconAnalysis, "5. **💡 Key Messages**\nAnyone can cook this dish with basic tools.\n", "", 1)

	res := ValidateSections(text, nil, false)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Missing) != 1 || res.Missing[0] != "Key Messages" {
		t.Errorf("missing = %v, want exactly [Key Messages]", res.Missing)
	}
	found := false
	for _, e := range res.Errors {
		if e == "Missing required section: Key Messages" {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want missing-section message", res.Errors)
	}
}

func TestValidateSectionsEmptyText(t *testing.T) {
	res := ValidateSections("", nil, false)
	if res.Valid {
		t.Fatal("expected invalid result for empty text")
	}
	if len(res.Missing) != len(RequiredSections) {
		t.Errorf("missing = %v, want all %d required sections", res.Missing, len(RequiredSections))
	}
	if len(res.Errors) == 0 || res.Errors[0] != "Analysis text is missing or empty" {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestValidateSectionsWithTranscript(t *testing.T) {
	res := ValidateSections(iconAnalysis, nil, true)
	if res.Valid {
		t.Fatal("expected invalid: transcript section required but absent")
	}
	found := false
	for _, m := range res.Missing {
		if m == "Transcript" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing = %v, want Transcript included", res.Missing)
	}
}

func TestValidateTranscription(t *testing.T) {
	tests := []struct {
		name      string
		input     *models.Transcription
		wantValid bool
		wantError string
	}{
		{"nil result", nil, false, "Transcription result is missing"},
		{"carries error", &models.Transcription{Error: "upload failed"}, false, "Transcription error: upload failed"},
		{"blank text", &models.Transcription{Text: "   "}, false, "Transcript text is empty"},
		{"usable", &models.Transcription{Text: "hello world", Confidence: 0.95}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateTranscription(tt.input)
			if res.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors: %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if tt.wantError != "" && (len(res.Errors) == 0 || res.Errors[0] != tt.wantError) {
				t.Errorf("errors = %v, want %q", res.Errors, tt.wantError)
			}
		})
	}
}

func TestValidateEnrichment(t *testing.T) {
	t.Run("analysis error short-circuits", func(t *testing.T) {
		res := ValidateEnrichment(&models.VideoEnrichment{
			Analysis: &models.AIResult{Error: "quota exceeded"},
		})
		if res.Valid {
			t.Fatal("expected invalid")
		}
		if len(res.Errors) != 1 || res.Errors[0] != "Gemini analysis error: quota exceeded" {
			t.Errorf("errors = %v", res.Errors)
		}
		if res.AnalysisValidation != nil {
			t.Error("section validation must not run when the analysis errored")
		}
	})

	t.Run("valid analysis without transcription", func(t *testing.T) {
		res := ValidateEnrichment(&models.VideoEnrichment{
			Analysis: &models.AIResult{Analysis: iconAnalysis},
		})
		if !res.Valid {
			t.Errorf("expected valid, errors: %v", res.Errors)
		}
		if res.TranscriptionValidation != nil {
			t.Error("absent transcription must not be validated")
		}
	})

	t.Run("failed transcription aggregates", func(t *testing.T) {
		res := ValidateEnrichment(&models.VideoEnrichment{
			Analysis:      &models.AIResult{Analysis: iconAnalysis},
			Transcription: &models.Transcription{Error: "audio too short"},
		})
		if res.Valid {
			t.Fatal("expected invalid")
		}
		if res.TranscriptionValidation == nil || res.TranscriptionValidation.Valid {
			t.Errorf("transcription validation = %+v", res.TranscriptionValidation)
		}
	})
}
