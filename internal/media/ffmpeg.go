package media

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Converter turns an audio file into a mono 16kHz WAV file
type Converter interface {
	ToWAV(ctx context.Context, inputPath, outputPath string) error
}

// FFmpeg invokes the ffmpeg binary
type FFmpeg struct {
	Binary  string        // defaults to "ffmpeg"
	Timeout time.Duration // zero means no limit beyond ctx
}

func NewFFmpeg(binary string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{Binary: binary, Timeout: timeout}
}

// ConvertedPath derives the output path: the input without its extension,
// suffixed with "_converted.wav"
func ConvertedPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_converted.wav"
}

// ToWAV runs: ffmpeg -y -i input -ac 1 -ar 16000 output
func (f *FFmpeg) ToWAV(ctx context.Context, inputPath, outputPath string) error {
	binary := f.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary,
		"-y", "-i", inputPath,
		"-ac", "1", "-ar", "16000",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(string(output), 500))
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return "..." + s[len(s)-n:]
	}
	return s
}
