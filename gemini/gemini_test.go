package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// fakeGemini answers every generateContent call with the given text.
func fakeGemini(t *testing.T, responseText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") == "" {
			t.Error("request missing API key")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": responseText}}}},
			},
		})
	}))
}

func TestAnalyzeWebpageNoKey(t *testing.T) {
	c := NewClient("", "", "")
	res := c.AnalyzeWebpage(context.Background(), "https://example.com", "Raw Title", strings.Repeat("x", 200), models.TypeArticle)
	if res.Error != "GEMINI_API_KEY not configured" {
		t.Errorf("Error = %q", res.Error)
	}
	if res.Title != "Raw Title" {
		t.Errorf("Title = %q, raw title must carry through", res.Title)
	}
}

func TestAnalyzeWebpageInsufficientContent(t *testing.T) {
	c := NewClient("", "key", "")
	res := c.AnalyzeWebpage(context.Background(), "https://example.com", "Raw Title", "too short", models.TypeArticle)
	if res.Error != "Insufficient content for analysis" {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestAnalyzeWebpageParsesJSON(t *testing.T) {
	server := fakeGemini(t, "Here you go:\n```json\n"+
		`{"title": "Clean Title", "summary": "A summary.", "analysis": "Worth saving."}`+
		"\n```")
	defer server.Close()

	c := NewClient(server.URL, "key", "")
	res := c.AnalyzeWebpage(context.Background(), "https://example.com", "Raw Title | Site Name", strings.Repeat("content ", 50), models.TypeArticle)
	if res.Error != "" {
		t.Fatalf("Error = %q", res.Error)
	}
	if res.Title != "Clean Title" {
		t.Errorf("Title = %q", res.Title)
	}
	if res.Summary != "A summary." {
		t.Errorf("Summary = %q", res.Summary)
	}
	if res.Analysis != "Worth saving." {
		t.Errorf("Analysis = %q", res.Analysis)
	}
}

func TestAnalyzeWebpageUnparseableFallsBack(t *testing.T) {
	server := fakeGemini(t, "This page is about cooking. No JSON here.")
	defer server.Close()

	c := NewClient(server.URL, "key", "")
	res := c.AnalyzeWebpage(context.Background(), "https://example.com", "Raw Title", strings.Repeat("content ", 50), models.TypeArticle)
	if res.Error != "" {
		t.Fatalf("Error = %q", res.Error)
	}
	if res.Title != "Raw Title" {
		t.Errorf("Title = %q, raw title must survive an unparseable response", res.Title)
	}
	if res.Analysis != "This page is about cooking. No JSON here." {
		t.Errorf("Analysis = %q", res.Analysis)
	}
}

func TestAnalyzeWebpageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, "key", "")
	res := c.AnalyzeWebpage(context.Background(), "https://example.com", "Raw Title", strings.Repeat("content ", 50), models.TypeArticle)
	if res.Error != "gemini error: 429" {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestAnalyzePodcast(t *testing.T) {
	server := fakeGemini(t, `{"summary": "Two hosts talk.", "analysis": "Key topics: talking."}`)
	defer server.Close()

	c := NewClient(server.URL, "key", "")
	res := c.AnalyzePodcast(context.Background(), "Ep 1", "The Show", "A description")
	if res.Error != "" {
		t.Fatalf("Error = %q", res.Error)
	}
	if res.Summary != "Two hosts talk." {
		t.Errorf("Summary = %q", res.Summary)
	}
}

func TestAnalyzeVideoKeepsFreeFormText(t *testing.T) {
	analysis := "1. **👁️ Visual Content**\nA kitchen.\n"
	server := fakeGemini(t, analysis)
	defer server.Close()

	c := NewClient(server.URL, "key", "")
	res := c.AnalyzeVideo(context.Background(), "Video Title", "Uploader", "transcript text")
	if res.Error != "" {
		t.Fatalf("Error = %q", res.Error)
	}
	if res.Analysis != strings.TrimSpace(analysis) {
		t.Errorf("Analysis = %q", res.Analysis)
	}
}
