// Package page fetches webpages and extracts metadata, main content,
// prices, and code snippets from their structure.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html/charset"
)

// userAgent mirrors a desktop browser; several sites serve stripped-down
// or blocked responses to obvious bot agents.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a page is read; enough for any real
// article head+body without letting a streaming endpoint pin memory.
const maxBodyBytes = 10 * 1024 * 1024

// FetchError describes a failed page fetch with enough classification for
// the error taxonomy: timeouts, connection failures, 429 and 5xx are
// recoverable; other 4xx client errors are not.
type FetchError struct {
	Message     string
	StatusCode  int // 0 when the request never completed
	Recoverable bool
}

func (e *FetchError) Error() string { return e.Message }

// Fetcher retrieves webpages over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a Fetcher with the given timeout. The transport is
// wrapped with otelhttp so traces propagate into outbound requests.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Fetch retrieves a URL and returns its decoded HTML. Redirects are
// followed; the body is decoded to UTF-8 using the response charset.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{Message: fmt.Sprintf("Request failed: %v", err), Recoverable: false}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", &FetchError{Message: "Request timed out", Recoverable: true}
		}
		return "", &FetchError{Message: fmt.Sprintf("Request failed: %v", err), Recoverable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &FetchError{
			Message:     fmt.Sprintf("HTTP error: %d", resp.StatusCode),
			StatusCode:  resp.StatusCode,
			Recoverable: RecoverableStatus(resp.StatusCode),
		}
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{Message: fmt.Sprintf("Failed to decode response: %v", err), Recoverable: false}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", &FetchError{Message: fmt.Sprintf("Failed to read response: %v", err), Recoverable: true}
	}

	return string(body), nil
}

// RecoverableStatus classifies an HTTP status per the error taxonomy:
// 429 and server errors are worth retrying, other client errors are not.
func RecoverableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
