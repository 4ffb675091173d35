package page

import (
	"strings"
	"testing"
)

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty", 0, 0},
		{"short text rounds up to one", 50, 1},
		{"one minute", 225, 1},
		{"two minutes", 450, 2},
		{"longer article", 2250, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.TrimSpace(strings.Repeat("word ", tt.words))
			if got := ReadingTime(text); got != tt.want {
				t.Errorf("ReadingTime(%d words) = %d, want %d", tt.words, got, tt.want)
			}
		})
	}
}

func TestExtractMainContentFallback(t *testing.T) {
	html := `<html><body>
		<nav>Site navigation links</nav>
		<article>The actual article body with several words of content.</article>
		<footer>Copyright footer</footer>
	</body></html>`

	got := ExtractMainContent(html, "https://example.com/post")
	if !strings.Contains(got, "actual article body") {
		t.Errorf("content = %q, want article text", got)
	}
	if strings.Contains(got, "Copyright footer") || strings.Contains(got, "navigation") {
		t.Errorf("content = %q, chrome elements not stripped", got)
	}
}

func TestExtractMainContentEmpty(t *testing.T) {
	if got := ExtractMainContent("", "https://example.com"); got != "" {
		t.Errorf("ExtractMainContent(\"\") = %q, want empty", got)
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		wantPrice    float64
		wantCurrency string
	}{
		{
			"dollar price in price class",
			`<html><body><span class="product-price">$49.99</span></body></html>`,
			49.99, "USD",
		},
		{
			"euro itemprop",
			`<html><body><span itemprop="price">€15,50</span></body></html>`,
			15.50, "EUR",
		},
		{
			"pound price",
			`<html><body><div class="price">£7.00</div></body></html>`,
			7.0, "GBP",
		},
		{
			"no price",
			`<html><body><p>nothing for sale</p></body></html>`,
			0, "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, currency := ExtractPrice(mustDoc(t, tt.html))
			if price != tt.wantPrice || currency != tt.wantCurrency {
				t.Errorf("ExtractPrice = (%v, %q), want (%v, %q)", price, currency, tt.wantPrice, tt.wantCurrency)
			}
		})
	}
}

func TestExtractCodeSnippets(t *testing.T) {
	longSnippet := strings.Repeat("x := compute(input)\n", 5)
	html := `<html><body>
		<pre class="language-go">` + longSnippet + `</pre>
		<code>short</code>
		<pre>` + longSnippet + `</pre>
	</body></html>`

	snippets := ExtractCodeSnippets(mustDoc(t, html))
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2 (short block skipped)", len(snippets))
	}
	if snippets[0].Language != "go" {
		t.Errorf("Language = %q, want go", snippets[0].Language)
	}
	if snippets[1].Language != "" {
		t.Errorf("Language = %q, want empty for unclassed block", snippets[1].Language)
	}
}

func TestExtractCodeSnippetsCap(t *testing.T) {
	block := "<pre>" + strings.Repeat("line of code here\n", 4) + "</pre>"
	html := "<html><body>" + strings.Repeat(block, 10) + "</body></html>"

	snippets := ExtractCodeSnippets(mustDoc(t, html))
	if len(snippets) != 5 {
		t.Errorf("got %d snippets, want cap of 5", len(snippets))
	}
}
