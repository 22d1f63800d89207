// Package transcoder derives audio-only artifacts from uploaded videos via ffmpeg.
package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxStderrPreview = 400

// Extractor derives an audio-only file from a local video file.
type Extractor interface {
	Extract(ctx context.Context, videoPath, audioPath string) error
}

// FFmpeg runs the ffmpeg binary to extract an MP3 track from a video file.
type FFmpeg struct {
	Path   string // ffmpeg binary, e.g. "ffmpeg"
	logger *zap.Logger
}

// NewFFmpeg creates an ffmpeg-backed extractor.
func NewFFmpeg(path string, logger *zap.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpeg{Path: path, logger: logger}
}

// Extract writes the audio track of videoPath to audioPath as MP3.
func (f *FFmpeg) Extract(ctx context.Context, videoPath, audioPath string) error {
	start := time.Now()
	cmd := exec.CommandContext(ctx, f.Path,
		"-y",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		audioPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, stderrPreview(stderr.String()))
	}
	f.logger.Info("audio extracted",
		zap.String("video", videoPath),
		zap.String("audio", audioPath),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func stderrPreview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrPreview {
		return s[:maxStderrPreview] + "…"
	}
	return s
}
