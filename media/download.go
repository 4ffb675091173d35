// Package media downloads videos through yt-dlp, extracts audio with
// ffmpeg, and generates storage filenames.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
	"github.com/royhenengel/Bookmark-Knowledge-Base/title"
)

const (
	// iosUserAgent is sent to YouTube with the iOS player client; the web
	// client trips bot detection far more often.
	iosUserAgent = "com.google.ios.youtube/19.29.1 (iPhone16,2; U; CPU iOS 17_5_1 like Mac OS X;)"

	rapidAPIHost = "tiktok-video-no-watermark2.p.rapidapi.com"
	rapidAPIURL  = "https://tiktok-video-no-watermark2.p.rapidapi.com"
)

// Downloader shells out to yt-dlp for video downloads, with a RapidAPI
// fallback for TikTok.
type Downloader struct {
	ytdlpPath   string
	rapidAPIKey string
	httpClient  *http.Client
}

func NewDownloader(ytdlpPath, rapidAPIKey string) *Downloader {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	return &Downloader{
		ytdlpPath:   ytdlpPath,
		rapidAPIKey: rapidAPIKey,
		httpClient: &http.Client{
			Timeout:   5 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ytdlpInfo is the subset of yt-dlp's JSON output the pipeline uses.
type ytdlpInfo struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Ext         string  `json:"ext"`
	Uploader    string  `json:"uploader"`
	Creator     string  `json:"creator"`
	UploaderID  string  `json:"uploader_id"`
	Thumbnail   string  `json:"thumbnail"`
	Filename    string  `json:"_filename"`
}

// Download fetches a video into dir. TikTok URLs go through the TikTok
// path with its RapidAPI fallback; everything else uses yt-dlp with the
// YouTube anti-bot arguments.
func (d *Downloader) Download(ctx context.Context, rawURL, dir string) (*models.VideoInfo, error) {
	if strings.Contains(strings.ToLower(rawURL), "tiktok") {
		return d.DownloadTikTok(ctx, rawURL, dir)
	}
	return d.DownloadWithYTDLP(ctx, rawURL, dir)
}

// DownloadWithYTDLP runs yt-dlp and parses its JSON metadata output.
func (d *Downloader) DownloadWithYTDLP(ctx context.Context, rawURL, dir string) (*models.VideoInfo, error) {
	args := []string{
		"--format", "best[ext=mp4]/best",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--no-warnings", "--no-progress",
		"--print-json",
		"--socket-timeout", "60",
		"--retries", "3",
		"--fragment-retries", "3",
		"--extractor-args", "youtube:player_client=ios,android_vr,tv_embedded",
		"--user-agent", iosUserAgent,
		rawURL,
	}

	info, err := d.runYTDLP(ctx, args)
	if err != nil {
		return nil, err
	}

	source := "other"
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "youtube") || strings.Contains(lower, "youtu.be") {
		source = "youtube"
	}

	return videoInfoFromYTDLP(info, dir, source, false), nil
}

// DownloadTikTok tries yt-dlp first (free, no quota), then falls back to
// the RapidAPI no-watermark endpoint.
func (d *Downloader) DownloadTikTok(ctx context.Context, rawURL, dir string) (*models.VideoInfo, error) {
	vi, ytdlpErr := d.DownloadTikTokYTDLP(ctx, rawURL, dir)
	if ytdlpErr == nil {
		return vi, nil
	}

	vi, rapidErr := d.DownloadTikTokRapidAPI(ctx, rawURL, dir)
	if rapidErr != nil {
		return nil, fmt.Errorf("tiktok download failed: yt-dlp: %v; rapidapi: %v", ytdlpErr, rapidErr)
	}
	return vi, nil
}

// DownloadTikTokYTDLP is the primary TikTok path.
func (d *Downloader) DownloadTikTokYTDLP(ctx context.Context, rawURL, dir string) (*models.VideoInfo, error) {
	args := []string{
		"--format", "best[ext=mp4]/best",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--no-warnings", "--no-progress",
		"--print-json",
		"--socket-timeout", "30",
		rawURL,
	}

	info, err := d.runYTDLP(ctx, args)
	if err != nil {
		return nil, err
	}
	return videoInfoFromYTDLP(info, dir, "tiktok", true), nil
}

func (d *Downloader) runYTDLP(ctx context.Context, args []string) (*ytdlpInfo, error) {
	cmd := exec.CommandContext(ctx, d.ytdlpPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp failed: %s", msg)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("yt-dlp output parse failed: %w", err)
	}
	return &info, nil
}

// videoInfoFromYTDLP converts yt-dlp metadata to a VideoInfo. TikTok
// often leaves the title empty or set to the video ID and puts the real
// title in the description, so the TikTok path falls back to that.
func videoInfoFromYTDLP(info *ytdlpInfo, dir, source string, tiktokTitles bool) *models.VideoInfo {
	id := info.ID
	if id == "" {
		id = "unknown"
	}
	ext := info.Ext
	if ext == "" {
		ext = "mp4"
	}

	path := info.Filename
	if path == "" {
		path = filepath.Join(dir, id+"."+ext)
	}

	videoTitle := info.Title
	if tiktokTitles {
		if videoTitle == "" || videoTitle == id {
			videoTitle = info.Description
		}
		videoTitle = title.Sanitize(videoTitle)
		videoTitle, _ = title.Truncate(videoTitle, title.MaxLength)
	}
	if videoTitle == "" {
		videoTitle = "Untitled"
	}

	uploader := info.Uploader
	if uploader == "" {
		uploader = info.Creator
	}
	if uploader == "" {
		uploader = info.UploaderID
	}
	if uploader == "" {
		uploader = "Unknown"
	}

	return &models.VideoInfo{
		Filepath:       path,
		Title:          videoTitle,
		Duration:       int(info.Duration),
		Ext:            ext,
		Uploader:       uploader,
		ID:             id,
		Source:         source,
		Thumbnail:      info.Thumbnail,
		DownloadMethod: "yt-dlp",
	}
}

// DownloadTikTokRapidAPI is the paid fallback when yt-dlp is blocked.
func (d *Downloader) DownloadTikTokRapidAPI(ctx context.Context, rawURL, dir string) (*models.VideoInfo, error) {
	if d.rapidAPIKey == "" {
		return nil, fmt.Errorf("no RapidAPI key configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rapidAPIURL, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("url", rawURL)
	q.Set("hd", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-RapidAPI-Key", d.rapidAPIKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RapidAPI request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			ID       string  `json:"id"`
			Title    string  `json:"title"`
			Duration float64 `json:"duration"`
			HDPlay   string  `json:"hdplay"`
			Play     string  `json:"play"`
			Cover    string  `json:"cover"`
			Author   struct {
				UniqueID string `json:"unique_id"`
			} `json:"author"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("RapidAPI decode failed: %w", err)
	}
	if body.Code != 0 {
		msg := body.Msg
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("RapidAPI error: %s", msg)
	}

	videoURL := body.Data.HDPlay
	if videoURL == "" {
		videoURL = body.Data.Play
	}
	if videoURL == "" {
		return nil, fmt.Errorf("no video URL found in RapidAPI response")
	}

	id := body.Data.ID
	if id == "" {
		id = "unknown"
	}
	path := filepath.Join(dir, id+".mp4")
	if err := d.downloadFile(ctx, videoURL, path); err != nil {
		return nil, err
	}

	videoTitle := body.Data.Title
	if videoTitle == "" {
		videoTitle = "Untitled"
	}
	uploader := body.Data.Author.UniqueID
	if uploader == "" {
		uploader = "Unknown"
	}

	return &models.VideoInfo{
		Filepath:       path,
		Title:          videoTitle,
		Duration:       int(body.Data.Duration),
		Ext:            "mp4",
		Uploader:       uploader,
		ID:             id,
		Source:         "tiktok",
		Thumbnail:      body.Data.Cover,
		DownloadMethod: "rapidapi",
	}, nil
}

func (d *Downloader) downloadFile(ctx context.Context, fileURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("video download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("video download error: %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("video write failed: %w", err)
	}
	return nil
}

// IsBotDetection reports whether a download error looks like YouTube's
// bot challenge rather than a transient failure.
func IsBotDetection(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Sign in to confirm") || strings.Contains(strings.ToLower(msg), "bot")
}
