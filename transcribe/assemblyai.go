// Package transcribe turns extracted audio into text through the
// AssemblyAI API: upload, submit, poll.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

const defaultBaseURL = "https://api.assemblyai.com"

// Client transcribes audio files with AssemblyAI.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
}

// NewClient creates a transcription client. An empty apiKey leaves it in
// a degraded mode where Transcribe returns an error result.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:      defaultBaseURL,
		apiKey:       apiKey,
		pollInterval: 3 * time.Second,
	}
}

// SetBaseURL points the client at a different endpoint; used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetPollInterval shortens polling; used by tests.
func (c *Client) SetPollInterval(d time.Duration) { c.pollInterval = d }

// Transcribe uploads a local audio file and waits for its transcript.
// Failures never propagate as errors: the result's Error field records
// them so the pipeline can carry on without the transcript.
func (c *Client) Transcribe(ctx context.Context, audioPath string) *models.Transcription {
	if c.apiKey == "" {
		return &models.Transcription{Error: "No AssemblyAI API key provided"}
	}

	audioURL, err := c.upload(ctx, audioPath)
	if err != nil {
		return &models.Transcription{Error: err.Error()}
	}

	id, err := c.submit(ctx, audioURL)
	if err != nil {
		return &models.Transcription{Error: err.Error()}
	}

	return c.poll(ctx, id)
}

// TranscribeURL submits a publicly reachable audio URL without the
// upload step; used for podcast enclosures.
func (c *Client) TranscribeURL(ctx context.Context, audioURL string) *models.Transcription {
	if c.apiKey == "" {
		return &models.Transcription{Error: "No AssemblyAI API key provided"}
	}

	id, err := c.submit(ctx, audioURL)
	if err != nil {
		return &models.Transcription{Error: err.Error()}
	}

	return c.poll(ctx, id)
}

func (c *Client) upload(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("audio upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audio upload error: %d", resp.StatusCode)
	}

	var body struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("upload response decode failed: %w", err)
	}
	if body.UploadURL == "" {
		return "", fmt.Errorf("upload response missing URL")
	}
	return body.UploadURL, nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"audio_url":          audioURL,
		"language_detection": true,
		"punctuate":          true,
		"format_text":        true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript request error: %d", resp.StatusCode)
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("transcript response decode failed: %w", err)
	}
	if body.ID == "" {
		return "", fmt.Errorf("transcript response missing ID")
	}
	return body.ID, nil
}

type transcriptStatus struct {
	Status        string   `json:"status"`
	Text          string   `json:"text"`
	Confidence    float64  `json:"confidence"`
	LanguageCode  string   `json:"language_code"`
	AudioDuration float64  `json:"audio_duration"`
	Error         string   `json:"error"`
	Words         []struct {
		Text string `json:"text"`
	} `json:"words"`
}

func (c *Client) poll(ctx context.Context, id string) *models.Transcription {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.fetchStatus(ctx, id)
		if err != nil {
			return &models.Transcription{Error: err.Error()}
		}

		switch status.Status {
		case "completed":
			return &models.Transcription{
				Text:            status.Text,
				Confidence:      status.Confidence,
				Language:        status.LanguageCode,
				DurationSeconds: int(status.AudioDuration),
				WordCount:       len(status.Words),
			}
		case "error":
			msg := status.Error
			if msg == "" {
				msg = "transcription failed"
			}
			return &models.Transcription{Error: msg}
		}

		select {
		case <-ctx.Done():
			return &models.Transcription{Error: ctx.Err().Error()}
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchStatus(ctx context.Context, id string) (*transcriptStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript poll failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript poll error: %d", resp.StatusCode)
	}

	var status transcriptStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("transcript poll decode failed: %w", err)
	}
	return &status, nil
}
