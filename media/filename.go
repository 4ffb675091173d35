package media

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/royhenengel/Bookmark-Knowledge-Base/title"
)

var unsafeFilenameRe = regexp.MustCompile(`[/\\:*?"<>|]+`)

// SmartFilename builds the storage filename "Title - Uploader.ext".
// The title is sanitized and truncated at a word boundary; the uploader
// has underscores turned into spaces and each word capitalized.
func SmartFilename(videoTitle, uploader, ext string) string {
	if ext == "" {
		ext = "mp4"
	}

	cleaned := title.Sanitize(videoTitle)
	cleaned, _ = title.Truncate(cleaned, title.MaxLength)
	if cleaned == "" {
		cleaned = "Untitled"
	}

	words := strings.Fields(strings.ReplaceAll(uploader, "_", " "))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	who := strings.Join(words, " ")
	if who == "" {
		who = "Unknown"
	}

	name := fmt.Sprintf("%s - %s.%s", cleaned, who, ext)
	name = transliterate(name)
	return strings.TrimSpace(unsafeFilenameRe.ReplaceAllString(name, ""))
}

func capitalize(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// transliterate converts unicode characters to ASCII equivalents so
// object keys stay portable across storage backends.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// isMn checks if a rune is a nonspacing mark (accents, diacritics)
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
