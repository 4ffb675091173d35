// Package gemini is a client for the Google Generative Language API used
// to produce cleaned titles, summaries, and structured content analysis.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

const (
	// DefaultBaseURL is the Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model used for all analysis.
	DefaultModel = "gemini-2.0-flash"

	// minContentChars is the least page content worth sending for
	// analysis; below this the model just restates the title.
	minContentChars = 100

	// maxPromptContentChars caps how much page content goes into the
	// prompt.
	maxPromptContentChars = 10000
)

// jsonBlockRe pulls a JSON object out of a model response that may wrap
// it in prose or markdown fences.
var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// Client calls the Generative Language API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a Gemini client. An empty baseURL or model selects
// the defaults; an empty apiKey leaves the client in a degraded mode
// where every analysis returns an explanatory error result.
func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   120 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// Generate sends a single text prompt and returns the model's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not configured")
	}

	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error: %d", resp.StatusCode)
	}

	var body struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("gemini decode failed: %w", err)
	}
	if len(body.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range body.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// AnalyzeWebpage asks the model for a cleaned title, a short summary, and
// an analysis of why the page is worth keeping. Errors never propagate:
// the result's Error field records them and the raw title carries through.
func (c *Client) AnalyzeWebpage(ctx context.Context, pageURL, rawTitle, content string, contentType models.ContentType) *models.AIResult {
	result := &models.AIResult{Title: rawTitle, Model: c.model}

	if c.apiKey == "" {
		result.Error = "GEMINI_API_KEY not configured"
		return result
	}
	if len(content) < minContentChars {
		result.Error = "Insufficient content for analysis"
		return result
	}

	if len(content) > maxPromptContentChars {
		content = content[:maxPromptContentChars]
	}

	prompt := fmt.Sprintf(`Analyze this webpage and provide:

1. **Title**: Clean up the raw title. Keep it as close to the original as possible but:
   - Remove site names, separators like " | " or " - Site Name" at the end
   - Keep it under 100 characters
   - Make it descriptive and recognizable
   - If the title includes a long description after ":" or "-", keep only the main title part

2. **Summary**: A 2-3 sentence summary of what this page is about.

3. **Analysis**: Why might someone save this bookmark? What are the key takeaways or value? Who would find this useful?

URL: %s
Raw Title: %s
Content Type: %s

Page Content:
%s

Respond in this exact JSON format:
{
  "title": "Cleaned title here (max 100 chars)",
  "summary": "2-3 sentence summary here",
  "analysis": "Why this is useful, key takeaways, target audience"
}`, pageURL, rawTitle, contentType, content)

	text, err := c.Generate(ctx, prompt)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	var parsed struct {
		Title    string `json:"title"`
		Summary  string `json:"summary"`
		Analysis string `json:"analysis"`
	}
	if block := jsonBlockRe.FindString(text); block != "" && json.Unmarshal([]byte(block), &parsed) == nil {
		if parsed.Title != "" {
			result.Title = parsed.Title
		}
		result.Summary = parsed.Summary
		result.Analysis = parsed.Analysis
	} else {
		// unparseable response still has value as free-form analysis
		result.Analysis = text
	}

	return result
}

// AnalyzePodcast summarizes a podcast episode from its metadata and
// description.
func (c *Client) AnalyzePodcast(ctx context.Context, episodeTitle, showName, description string) *models.AIResult {
	result := &models.AIResult{Title: episodeTitle, Model: c.model}

	if c.apiKey == "" {
		result.Error = "GEMINI_API_KEY not configured"
		return result
	}

	prompt := fmt.Sprintf(`Analyze this podcast episode:

Episode: %s
Show: %s
Description: %s

Provide:
1. A 2-3 sentence summary of what this episode covers
2. Key topics and who would find this episode useful

Respond in this exact JSON format:
{"summary": "Your 2-3 sentence summary here", "analysis": "Key topics: topic1, topic2, topic3. Target audience: description of who would find this useful."}`, episodeTitle, showName, description)

	text, err := c.Generate(ctx, prompt)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	var parsed struct {
		Summary  string `json:"summary"`
		Analysis string `json:"analysis"`
	}
	if block := jsonBlockRe.FindString(text); block != "" && json.Unmarshal([]byte(block), &parsed) == nil {
		result.Summary = parsed.Summary
		result.Analysis = parsed.Analysis
	} else {
		result.Analysis = text
	}

	return result
}

// AnalyzeVideo produces the six-section structured analysis of a video
// from its metadata and transcript.
func (c *Client) AnalyzeVideo(ctx context.Context, videoTitle, uploader, transcript string) *models.AIResult {
	result := &models.AIResult{Title: videoTitle, Model: c.model}

	if c.apiKey == "" {
		result.Error = "GEMINI_API_KEY not configured"
		return result
	}

	prompt := fmt.Sprintf(`Analyze this video in detail based on its metadata and transcript. Provide a comprehensive analysis covering:

1. **👁️ Visual Content**
Describe what the video likely shows - people, objects, settings, actions, transitions, visual effects, text overlays, and any on-screen graphics.

2. **🔊 Audio Content**
Describe the audio - speech (summarize what is said), music, sound effects, and overall audio quality.

3. **🎬 Style & Production**
Comment on the video style, editing techniques, pacing, and production quality.

4. **🎭 Mood & Tone**
Describe the overall mood, emotional tone, and atmosphere of the video.

5. **💡 Key Messages**
What are the main points, messages, or takeaways from this video?

6. **📝 Content Category**
What type of content is this? (e.g., tutorial, entertainment, educational, promotional, personal vlog, etc.)

Title: %s
Uploader: %s

Transcript:
%s

Be specific and detailed in your analysis.`, videoTitle, uploader, transcript)

	text, err := c.Generate(ctx, prompt)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Analysis = text
	return result
}
