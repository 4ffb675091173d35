package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// AudioExtractor pulls the audio track out of a downloaded video.
type AudioExtractor struct {
	ffmpegPath string
}

func NewAudioExtractor(ffmpegPath string) *AudioExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &AudioExtractor{ffmpegPath: ffmpegPath}
}

// Extract writes an MP3 next to the video file and returns its path.
func (a *AudioExtractor) Extract(ctx context.Context, videoPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(filepath.Dir(videoPath), base+".mp3")

	cmd := exec.CommandContext(ctx, a.ffmpegPath,
		"-i", videoPath,
		"-vn", "-acodec", "libmp3lame", "-q:a", "2",
		"-y", audioPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		// ffmpeg is chatty on stderr even on success, keep only the tail
		if len(msg) > 300 {
			msg = msg[len(msg)-300:]
		}
		return "", fmt.Errorf("audio extraction failed: %s", msg)
	}

	return audioPath, nil
}
