package page

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// maxContentChars bounds extracted text passed on to AI analysis.
const maxContentChars = 15000

var (
	contentClassRe = regexp.MustCompile(`(?i)content|post|article|entry`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	priceValueRe   = regexp.MustCompile(`[\$£€]?\s*(\d+(?:[.,]\d{2})?)`)
)

// ExtractMainContent returns the readable text of a page. Readability
// extraction runs first; when it yields nothing usable the document is
// stripped of chrome elements and the densest content container is used.
func ExtractMainContent(htmlText, pageURL string) string {
	if htmlText == "" {
		return ""
	}

	if u, err := url.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(strings.NewReader(htmlText), u); err == nil {
			if text := normalizeText(article.TextContent); text != "" {
				return clampText(text)
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return ""
	}
	return extractFromDocument(doc)
}

// extractFromDocument is the structural fallback: drop non-content
// elements, then take the first plausible content container.
func extractFromDocument(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, noscript").Remove()

	container := doc.Find("article").First()
	if container.Length() == 0 {
		container = doc.Find("main").First()
	}
	if container.Length() == 0 {
		doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if class, ok := s.Attr("class"); ok && contentClassRe.MatchString(class) {
				container = s
				return false
			}
			return true
		})
	}
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}

	return clampText(normalizeText(container.Text()))
}

func normalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func clampText(s string) string {
	runes := []rune(s)
	if len(runes) > maxContentChars {
		return string(runes[:maxContentChars])
	}
	return s
}

// ReadingTime estimates minutes to read at 225 words per minute, minimum
// one minute for any non-empty text.
func ReadingTime(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	return int(math.Max(1, math.Round(float64(words)/225)))
}

// ExtractPrice finds a price and its currency on a product page. Selectors
// are tried in order; the first element with a parseable numeric value
// wins. Currency comes from the symbol in the matched text.
func ExtractPrice(doc *goquery.Document) (float64, string) {
	if doc == nil {
		return 0, ""
	}

	candidates := []*goquery.Selection{
		priceClassElement(doc),
		doc.Find(`[itemprop="price"]`).First(),
		doc.Find("[data-price]").First(),
	}

	for _, sel := range candidates {
		if sel == nil || sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.Text())
		m := priceValueRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}

		currency := ""
		switch {
		case strings.Contains(text, "$"):
			currency = "USD"
		case strings.Contains(text, "£"):
			currency = "GBP"
		case strings.Contains(text, "€"):
			currency = "EUR"
		}
		return price, currency
	}

	return 0, ""
}

var priceOnlyClassRe = regexp.MustCompile(`(?i)price`)

func priceClassElement(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && priceOnlyClassRe.MatchString(class) {
			found = s
			return false
		}
		return true
	})
	return found
}

// ExtractCodeSnippets collects code blocks from a dev resource page:
// blocks between 20 and 5000 characters, capped at 2000 characters each,
// at most five snippets. Language is taken from a language-* class.
func ExtractCodeSnippets(doc *goquery.Document) []models.CodeSnippet {
	if doc == nil {
		return nil
	}

	var snippets []models.CodeSnippet
	doc.Find("pre, code").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		code := strings.TrimSpace(s.Text())
		if len(code) <= 20 || len(code) >= 5000 {
			return true
		}

		language := ""
		if class, ok := s.Attr("class"); ok {
			for _, cls := range strings.Fields(class) {
				if strings.Contains(cls, "language-") {
					language = strings.Replace(cls, "language-", "", 1)
					break
				}
			}
		}

		if len(code) > 2000 {
			code = code[:2000]
		}
		snippets = append(snippets, models.CodeSnippet{Code: code, Language: language})
		return len(snippets) < 5
	})

	return snippets
}
