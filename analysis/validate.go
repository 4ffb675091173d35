package analysis

import (
	"fmt"
	"strings"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// SectionsValidation reports whether analysis text contains every required
// section with non-empty content.
type SectionsValidation struct {
	Valid    bool              `json:"valid"`
	Sections map[string]string `json:"sections"`
	Missing  []string          `json:"missing"`
	Empty    []string          `json:"empty"`
	Errors   []string          `json:"errors"`
}

// ValidateSections parses analysis text and checks each required section.
// A nil required slice means the default six sections; includeTranscript
// additionally requires the Transcript section. Missing or empty analysis
// text is immediately invalid with every required section reported missing.
func ValidateSections(text string, required []string, includeTranscript bool) SectionsValidation {
	if required == nil {
		required = append([]string{}, RequiredSections...)
	}
	if includeTranscript {
		required = append(append([]string{}, required...), "Transcript")
	}

	res := SectionsValidation{
		Valid:    true,
		Sections: map[string]string{},
		Missing:  []string{},
		Empty:    []string{},
		Errors:   []string{},
	}

	if text == "" {
		res.Valid = false
		res.Errors = append(res.Errors, "Analysis text is missing or empty")
		res.Missing = required
		return res
	}

	res.Sections = Parse(text)

	for _, name := range required {
		content, found := lookupSection(res.Sections, name)
		switch {
		case !found:
			res.Missing = append(res.Missing, name)
			res.Errors = append(res.Errors, fmt.Sprintf("Missing required section: %s", name))
			res.Valid = false
		case strings.TrimSpace(content) == "":
			res.Empty = append(res.Empty, name)
			res.Errors = append(res.Errors, fmt.Sprintf("Section is empty: %s", name))
			res.Valid = false
		}
	}

	return res
}

// TranscriptionValidation reports whether a transcription result is usable.
type TranscriptionValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateTranscription fails when the result is absent, carries an error,
// or has no transcript text.
func ValidateTranscription(t *models.Transcription) TranscriptionValidation {
	res := TranscriptionValidation{Valid: true, Errors: []string{}}

	if t == nil {
		res.Valid = false
		res.Errors = append(res.Errors, "Transcription result is missing")
		return res
	}
	if t.Error != "" {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("Transcription error: %s", t.Error))
		return res
	}
	if strings.TrimSpace(t.Text) == "" {
		res.Valid = false
		res.Errors = append(res.Errors, "Transcript text is empty")
	}

	return res
}

// EnrichmentValidation aggregates analysis and transcription validation for
// a complete video enrichment response.
type EnrichmentValidation struct {
	Valid                   bool                     `json:"valid"`
	Errors                  []string                 `json:"errors"`
	AnalysisValidation      *SectionsValidation      `json:"analysis_validation,omitempty"`
	TranscriptionValidation *TranscriptionValidation `json:"transcription_validation,omitempty"`
}

// ValidateEnrichment checks the AI analysis sub-result (an error field
// short-circuits as invalid, otherwise its text is section-validated) and,
// independently, the transcription sub-result when present. Absence of a
// transcription is not itself an error.
func ValidateEnrichment(resp *models.VideoEnrichment) EnrichmentValidation {
	res := EnrichmentValidation{Valid: true, Errors: []string{}}
	if resp == nil {
		return res
	}

	if resp.Analysis != nil {
		if resp.Analysis.Error != "" {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("Gemini analysis error: %s", resp.Analysis.Error))
		} else {
			av := ValidateSections(resp.Analysis.Analysis, nil, false)
			res.AnalysisValidation = &av
			if !av.Valid {
				res.Valid = false
				res.Errors = append(res.Errors, av.Errors...)
			}
		}
	}

	if resp.Transcription != nil {
		tv := ValidateTranscription(resp.Transcription)
		res.TranscriptionValidation = &tv
		if !tv.Valid {
			res.Valid = false
			res.Errors = append(res.Errors, tv.Errors...)
		}
	}

	return res
}
