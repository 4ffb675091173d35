// Package classify maps a bookmarked URL (and optionally its fetched page
// structure) to a content type.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// Pattern tables evaluated first-match-wins, in priority order
// video > podcast > social > code > product. Patterns containing a slash
// are matched against the whole URL (so spotify.com/episode is a podcast
// while spotify.com/album is not); bare host patterns match the domain.
var typeTables = []struct {
	contentType models.ContentType
	patterns    []string
}{
	{models.TypeVideo, []string{"youtube.com", "youtu.be", "vimeo.com", "tiktok.com", "twitch.tv"}},
	{models.TypePodcast, []string{"spotify.com/episode", "podcasts.apple.com", "overcast.fm", "pocketcasts.com"}},
	{models.TypeSocial, []string{"twitter.com", "x.com", "instagram.com", "linkedin.com/posts", "facebook.com", "threads.net"}},
	{models.TypeCode, []string{"github.com", "gitlab.com", "stackoverflow.com", "codepen.io", "jsfiddle.net", "replit.com"}},
	{models.TypeProduct, []string{"amazon.", "ebay.", "etsy.com", "shopify.", "aliexpress.", "walmart.com", "target.com"}},
}

var (
	priceClassRe = regexp.MustCompile(`(?i)price|cost|amount`)
	cartTextRe   = regexp.MustCompile(`(?i)add to cart|buy now|purchase`)
)

// Detect classifies a URL. The page document is optional; when present it
// drives secondary heuristics (price/cart indicators mean product, more
// than three code blocks mean code). Anything unmatched is an article.
func Detect(rawURL string, doc *goquery.Document) models.ContentType {
	lowerURL := strings.ToLower(rawURL)
	domain := ""
	if u, err := url.Parse(rawURL); err == nil {
		domain = strings.ToLower(u.Hostname())
	}

	for _, table := range typeTables {
		for _, p := range table.patterns {
			if strings.Contains(p, "/") {
				if strings.Contains(lowerURL, p) {
					return table.contentType
				}
			} else if strings.Contains(domain, p) {
				return table.contentType
			}
		}
	}

	if doc != nil {
		if hasPriceIndicators(doc) {
			return models.TypeProduct
		}
		if doc.Find("pre, code").Length() > 3 {
			return models.TypeCode
		}
	}

	return models.TypeArticle
}

func hasPriceIndicators(doc *goquery.Document) bool {
	found := false
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && priceClassRe.MatchString(class) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}
	return cartTextRe.MatchString(doc.Find("body").Text())
}
