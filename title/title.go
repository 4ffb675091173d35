// Package title normalizes, validates, and quality-scores content titles.
//
// All titles in the system are limited to 70 characters. Longer titles are
// truncated at word boundaries and flagged so downstream automation can
// notify on suspect records.
package title

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxLength is the global title limit for all content types.
const MaxLength = 70

// incompleteEndings are connector words a title should not end with.
var incompleteEndings = []string{
	" and", " or", " the", " a", " an", " to", " for", " with", " in", " on", " at", " by",
}

// completeSuffixes suggest the last word of a near-limit title is a whole
// word rather than a truncation artifact.
var completeSuffixes = []string{
	"ing", "tion", "ment", "ness", "able", "ible", "ly", "ed", "er", "est", "ful", "less",
}

var (
	nonAlnumRe    = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	longLowerRe   = regexp.MustCompile(`[a-z]{15,}`)
	longDigitsRe  = regexp.MustCompile(`\d{10,}`)
	controlCharRe = regexp.MustCompile(`[\x{0000}-\x{001f}\x{007f}-\x{009f}]`)
)

// Truncate shortens a title to maxLength characters at a word boundary.
// Internal whitespace runs are collapsed first. A single run-on token with
// no space in the prefix is cut to maxLength-3 characters with an ellipsis.
// Returns the (possibly shortened) title and whether truncation happened.
func Truncate(s string, maxLength int) (string, bool) {
	if s == "" {
		return "", false
	}

	s = collapseWhitespace(s)

	runes := []rune(s)
	if len(runes) <= maxLength {
		return s, false
	}

	prefix := string(runes[:maxLength])
	lastSpace := strings.LastIndex(prefix, " ")
	if lastSpace == -1 {
		// Single long word, cut hard and mark the cut.
		return string(runes[:maxLength-3]) + "...", true
	}

	return strings.TrimRight(prefix[:lastSpace], " \t"), true
}

// ValidationResult reports fatal errors and non-fatal warnings for a title.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks a title for quality problems. Errors make the title
// unusable; warnings flag suspect but acceptable titles.
func Validate(s string) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	if s == "" {
		res.Errors = append(res.Errors, "Title is missing or empty")
		return res
	}
	if strings.TrimSpace(s) == "" {
		res.Errors = append(res.Errors, "Title contains only whitespace")
		return res
	}

	length := len([]rune(s))
	if length > MaxLength {
		res.Errors = append(res.Errors, fmt.Sprintf("Title exceeds %d character limit (%d chars)", MaxLength, length))
	}
	if strings.ContainsRune(s, '\x00') {
		res.Errors = append(res.Errors, "Title contains null bytes (likely encoding issue)")
	}
	if strings.TrimSpace(nonAlnumRe.ReplaceAllString(s, "")) == "" {
		res.Errors = append(res.Errors, "Title contains no alphanumeric characters")
	}

	if length > 200 {
		res.Warnings = append(res.Warnings, "Title is unusually long (>200 chars) - may indicate scraping issue")
	}

	runes := []rune(s)
	last := runes[len(runes)-1]
	if (unicode.IsLetter(last) || unicode.IsDigit(last)) && length >= MaxLength {
		res.Warnings = append(res.Warnings, "Title may have been truncated mid-word")
	}

	lower := strings.ToLower(s)
	for _, ending := range incompleteEndings {
		if strings.HasSuffix(lower, ending) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Title ends with incomplete word '%s'", strings.TrimSpace(ending)))
			break
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// IsValid reports whether a title passes Validate with no errors.
func IsValid(s string) bool {
	return Validate(s).Valid
}

// Sanitize strips control characters and anything outside the safe
// character set (alphanumerics, whitespace, common punctuation), then
// collapses whitespace. Safe for filenames and display. Idempotent.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	s = controlCharRe.ReplaceAllString(s, "")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(`.,!?-:;'"()[]`, r) {
			b.WriteRune(r)
		}
	}

	return collapseWhitespace(b.String())
}

// QualityResult is a 0..1 quality assessment of a title.
type QualityResult struct {
	QualityScore float64  `json:"quality_score"`
	Issues       []string `json:"issues"`
	IsAcceptable bool     `json:"is_acceptable"`
}

// ScoreQuality rates title clarity. It starts at 1.0 and subtracts a fixed
// penalty per detected issue; every check runs independently. A score of
// 0.7 or above is acceptable.
func ScoreQuality(s string) QualityResult {
	if strings.TrimSpace(s) == "" {
		return QualityResult{QualityScore: 0, Issues: []string{"Title is empty"}, IsAcceptable: false}
	}

	s = strings.TrimSpace(s)
	runes := []rune(s)
	issues := []string{}
	score := 1.0

	if isAllUpper(s) && len(runes) > 5 {
		issues = append(issues, "Title is all uppercase (considered shouting)")
		score -= 0.2
	}

	if len(runes) > 20 && !strings.Contains(s, " ") {
		issues = append(issues, "Title has no spaces - may be concatenated words")
		score -= 0.3
	}

	words := strings.Fields(strings.ToLower(s))
	for i := 0; i+1 < len(words); i++ {
		if words[i] == words[i+1] {
			issues = append(issues, fmt.Sprintf("Repeated word: '%s'", words[i]))
			score -= 0.1
			break
		}
	}

	if len(runes) >= MaxLength-5 {
		fields := strings.Fields(s)
		lastWord := ""
		if len(fields) > 0 {
			lastWord = fields[len(fields)-1]
		}
		if lastWord != "" && !hasCompleteSuffix(lastWord) && unicode.IsLower([]rune(lastWord)[len([]rune(lastWord))-1]) {
			issues = append(issues, "Title may end with incomplete word")
			score -= 0.15
		}
	}

	if hasGarbagePattern(strings.ToLower(s)) {
		issues = append(issues, "Title contains suspicious character patterns")
		score -= 0.3
	}

	if len(runes) < 5 {
		issues = append(issues, "Title is very short (less than 5 characters)")
		score -= 0.2
	}

	score = math.Max(0, math.Min(1, score))
	score = math.Round(score*100) / 100

	return QualityResult{
		QualityScore: score,
		Issues:       issues,
		IsAcceptable: score >= 0.7,
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isAllUpper reports whether every cased character is uppercase and at
// least one cased character exists.
func isAllUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

func hasCompleteSuffix(word string) bool {
	lower := strings.ToLower(word)
	for _, suffix := range completeSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// hasGarbagePattern detects runs that indicate scraped garbage: 15+
// consecutive lowercase letters, the same character repeated 5+ times, or
// 10+ consecutive digits.
func hasGarbagePattern(lower string) bool {
	if longLowerRe.MatchString(lower) || longDigitsRe.MatchString(lower) {
		return true
	}

	var prev rune
	run := 0
	for _, r := range lower {
		if r == prev {
			run++
			if run >= 5 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
