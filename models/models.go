package models

import "time"

// ContentType classifies what kind of resource a bookmarked URL points to.
type ContentType string

const (
	TypeArticle  ContentType = "article"
	TypeVideo    ContentType = "video"
	TypePodcast  ContentType = "podcast"
	TypeProduct  ContentType = "product"
	TypeCode     ContentType = "code"
	TypeSocial   ContentType = "social"
	TypeDocument ContentType = "document"
	TypeUnknown  ContentType = "unknown"
)

// KnownTypes lists the content types a downstream writer accepts. A record
// whose type is not in this list is treated as unexpected.
var KnownTypes = []ContentType{
	TypeArticle, TypeVideo, TypePodcast, TypeProduct, TypeCode, TypeSocial, TypeDocument,
}

// IsKnown reports whether t is one of the accepted content types.
func (t ContentType) IsKnown() bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Stage identifies the pipeline stage an error originated from.
type Stage string

const (
	StageFetch         Stage = "fetch"
	StageProcessing    Stage = "processing"
	StageAIAnalysis    Stage = "ai_analysis"
	StageTranscription Stage = "transcription"
	StageDownload      Stage = "download"
	StageMetadata      Stage = "metadata"
	StageUpload        Stage = "upload"
)

// ErrorEntry is a classified, stage-tagged error. Every entry carries all
// three fields; recoverable means the operation could plausibly succeed on
// retry or via a different source.
type ErrorEntry struct {
	Stage       Stage  `json:"stage"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// ContentRecord is the enriched result for one bookmarked URL. It is created
// empty at pipeline start, filled incrementally, and frozen after validation.
// Either Error (fatal, no usable record) or Errors (partial failures on a
// usable record) is populated, never both.
type ContentRecord struct {
	ID            string      `json:"id"`
	URL           string      `json:"url"`
	Domain        string      `json:"domain"`
	Type          ContentType `json:"type,omitempty"`
	Title         string      `json:"title,omitempty"`
	Author        string      `json:"author,omitempty"`
	PublishedDate string      `json:"published_date,omitempty"`
	MainImage     string      `json:"main_image,omitempty"`
	Description   string      `json:"description,omitempty"`

	// ReadingTime is minutes to read for articles, episode duration in
	// minutes for podcasts and videos.
	ReadingTime int `json:"reading_time,omitempty"`

	Price        float64       `json:"price,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	CodeSnippets []CodeSnippet `json:"code_snippets,omitempty"`

	AISummary     string `json:"ai_summary,omitempty"`
	AIAnalysis    string `json:"ai_analysis,omitempty"`
	Transcription string `json:"transcription,omitempty"`

	// Podcast extras populated from the episode metadata source.
	ShowName        string `json:"show_name,omitempty"`
	ShowDescription string `json:"show_description,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`

	// Error is the singular fatal error; its presence means no usable
	// record could be assembled. Errors holds partial-stage failures on an
	// otherwise usable record.
	Error  *ErrorEntry  `json:"error,omitempty"`
	Errors []ErrorEntry `json:"errors,omitempty"`
}

// AddError appends a partial-stage failure to the record.
func (r *ContentRecord) AddError(stage Stage, message string, recoverable bool) {
	r.Errors = append(r.Errors, ErrorEntry{Stage: stage, Message: message, Recoverable: recoverable})
}

// CodeSnippet is a code block extracted from a dev resource page.
type CodeSnippet struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// ResolutionAttempt records one try against one source in a fallback chain.
// The full ordered sequence is kept for diagnostics even when a later
// attempt succeeds.
type ResolutionAttempt struct {
	Source  string `json:"source"`
	Outcome string `json:"outcome"` // "success" or "failure"
	Detail  string `json:"detail,omitempty"`
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Enclosure is an audio/media attachment advertised by a feed entry.
type Enclosure struct {
	URL  string
	Type string // MIME type, e.g. "audio/mpeg"
}

// EpisodeCandidate is a feed entry considered during episode matching.
// Ephemeral: produced by feed parsing, discarded after selection.
type EpisodeCandidate struct {
	Title           string
	DurationMinutes int // 0 when unknown
	Enclosures      []Enclosure
}

// Transcription is the result returned by the transcription collaborator.
type Transcription struct {
	Text            string  `json:"text,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
	Language        string  `json:"language,omitempty"`
	DurationSeconds int     `json:"duration_seconds,omitempty"`
	WordCount       int     `json:"word_count,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// AIResult is the outcome of one AI text-generation call.
type AIResult struct {
	Title    string `json:"title,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Analysis string `json:"analysis,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}

// VideoInfo describes a downloaded media file as reported by the download
// tool.
type VideoInfo struct {
	Filepath       string `json:"-"`
	Title          string `json:"title"`
	Duration       int    `json:"duration"` // seconds
	Ext            string `json:"ext"`
	Uploader       string `json:"uploader"`
	ID             string `json:"video_id"`
	Source         string `json:"source"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	DownloadMethod string `json:"download_method,omitempty"`
}

// StoredFile describes an object uploaded to media storage.
type StoredFile struct {
	FileName  string `json:"file_name"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
	SizeBytes int64  `json:"size_bytes"`
}

// VideoEnrichment is the assembled result of the video pipeline.
type VideoEnrichment struct {
	Success       bool           `json:"success"`
	Video         *StoredFile    `json:"video,omitempty"`
	Audio         *StoredFile    `json:"audio,omitempty"`
	Metadata      *VideoInfo     `json:"metadata,omitempty"`
	Transcription *Transcription `json:"transcription,omitempty"`
	Analysis      *AIResult      `json:"gemini_analysis,omitempty"`
	Validation    *Validation    `json:"validation,omitempty"`
	Errors        []ErrorEntry   `json:"errors,omitempty"`
}

// Validation summarizes enrichment validation for downstream automation.
type Validation struct {
	Valid            bool     `json:"valid"`
	Errors           []string `json:"errors"`
	RequiredSections []string `json:"required_sections"`
}
