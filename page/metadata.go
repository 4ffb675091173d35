package page

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata holds the structured fields extracted from a page head/body.
type Metadata struct {
	Title         string
	Author        string
	PublishedDate string // YYYY-MM-DD
	MainImage     string
	Description   string
}

var (
	bylineClassRe = regexp.MustCompile(`(?i)author|byline`)
	byPrefixRe    = regexp.MustCompile(`(?i)^by\s+`)
)

// ExtractMetadata pulls title, author, published date, main image, and
// description from the document, trying sources in fixed priority order.
func ExtractMetadata(doc *goquery.Document) Metadata {
	md := Metadata{}
	if doc == nil {
		return md
	}

	// Title: og:title > twitter:title > <title> > first <h1>.
	md.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="twitter:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
		strings.TrimSpace(doc.Find("h1").First().Text()),
	)

	md.Author = firstNonEmpty(
		metaContent(doc, `meta[name="author"]`),
		metaContent(doc, `meta[property="article:author"]`),
		strings.TrimSpace(doc.Find(`a[rel="author"]`).First().Text()),
		bylineText(doc),
	)
	if md.Author != "" {
		md.Author = strings.TrimSpace(byPrefixRe.ReplaceAllString(md.Author, ""))
	}

	date := firstNonEmpty(
		metaContent(doc, `meta[property="article:published_time"]`),
		attrValue(doc, "time[datetime]", "datetime"),
	)
	if len(date) >= 10 {
		md.PublishedDate = date[:10] // just YYYY-MM-DD
	} else {
		md.PublishedDate = date
	}

	md.MainImage = firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
	)

	md.Description = firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
	)

	return md
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func attrValue(doc *goquery.Document, selector, attr string) string {
	v, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// bylineText finds the first element whose class looks like an author
// byline and returns its text.
func bylineText(doc *goquery.Document) string {
	text := ""
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && bylineClassRe.MatchString(class) {
			text = strings.TrimSpace(s.Text())
			return false
		}
		return true
	})
	return text
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
