// Package analysis parses AI-generated video/content analysis text into
// named sections and validates that all required sections are present.
package analysis

import (
	"regexp"
	"strings"
)

// SectionIcons maps canonical section names to the icons the analysis
// prompt asks for. Kept in sync with the prompt in the gemini package.
var SectionIcons = map[string]string{
	"Visual Content":     "\U0001F441️",
	"Audio Content":      "\U0001F50A",
	"Style & Production": "\U0001F3AC",
	"Mood & Tone":        "\U0001F3AD",
	"Key Messages":       "\U0001F4A1",
	"Content Category":   "\U0001F4C1",
	"Transcript":         "\U0001F4DD",
}

// RequiredSections are the sections every analysis must contain, in prompt
// order.
var RequiredSections = []string{
	"Visual Content",
	"Audio Content",
	"Style & Production",
	"Mood & Tone",
	"Key Messages",
	"Content Category",
}

// SectionIcon returns the icon for a section name.
func SectionIcon(name string) string {
	if icon, ok := SectionIcons[name]; ok {
		return icon
	}
	return "\U0001F4CC"
}

var (
	// "1. **👁️ Visual Content**" or legacy "1. **Visual Content**: inline content"
	numberedHeaderRe = regexp.MustCompile(`^\d+\.\s*\*\*([^*]+)\*\*[:\s]*(.*)$`)
	headingRe        = regexp.MustCompile(`^##\s*(.+?)\s*$`)

	// Leading emoji runs: pictographic blocks, misc symbols, variation
	// selectors, regional indicator pairs, plus surrounding whitespace.
	leadingIconRe = regexp.MustCompile(`^[\x{1F300}-\x{1F9FF}\x{2600}-\x{27BF}\x{FE00}-\x{FE0F}\x{1F1E0}-\x{1F1FF}\s]+`)

	wordRe = regexp.MustCompile(`\w+`)
)

// stripIcon removes a leading emoji run and surrounding whitespace from a
// section label: "👁️ Visual Content" -> "Visual Content".
func stripIcon(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(leadingIconRe.ReplaceAllString(s, ""))
}

// Parse splits analysis text into sections keyed by canonical name (icons
// stripped). It recognizes numbered bold headers first; if none exist
// anywhere it falls back to "##" headings. A section's content is every
// line until the next header, trimmed. Empty input yields an empty map.
func Parse(text string) map[string]string {
	sections := map[string]string{}
	if text == "" {
		return sections
	}

	lines := strings.Split(text, "\n")

	current := ""
	var content []string
	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(content, "\n"))
		}
	}

	for _, line := range lines {
		m := numberedHeaderRe.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			flush()
			current = stripIcon(strings.TrimSpace(m[1]))
			content = nil
			if inline := strings.TrimSpace(m[2]); inline != "" {
				content = append(content, inline)
			}
		} else if current != "" {
			content = append(content, line)
		}
	}
	flush()

	if len(sections) > 0 {
		return sections
	}

	// No numbered headers anywhere, retry with markdown headings.
	current = ""
	content = nil
	for _, line := range lines {
		m := headingRe.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			flush()
			current = stripIcon(strings.TrimSpace(m[1]))
			content = nil
		} else if current != "" {
			content = append(content, line)
		}
	}
	flush()

	return sections
}

// lookupSection finds the content for a required section name, trying exact
// match, case-insensitive match, then word-set equality ("Mood & Tone"
// matches "Mood and Tone"). The second return reports whether a match was
// found at all.
func lookupSection(sections map[string]string, name string) (string, bool) {
	if content, ok := sections[name]; ok {
		return content, true
	}

	for key, content := range sections {
		if strings.EqualFold(key, name) {
			return content, true
		}
	}

	want := wordSet(name)
	for key, content := range sections {
		if setsEqual(wordSet(key), want) {
			return content, true
		}
	}

	return "", false
}

// connectorWords are ignored during word-set comparison so that
// "Mood and Tone" matches "Mood & Tone".
var connectorWords = map[string]struct{}{
	"and": {}, "or": {}, "of": {}, "the": {}, "a": {}, "an": {},
}

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if _, skip := connectorWords[w]; skip {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for w := range a {
		if _, ok := b[w]; !ok {
			return false
		}
	}
	return true
}
