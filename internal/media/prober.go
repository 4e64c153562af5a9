package media

import (
	"context"
	"time"

	"videostudio/internal/ffmpeg"
)

// FFmpegProber implements Prober with the ffprobe/ffmpeg wrappers.
type FFmpegProber struct{}

// Duration implements Prober.
func (FFmpegProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	return ffmpeg.ProbeDuration(ctx, path)
}

// Frame implements Prober.
func (FFmpegProber) Frame(ctx context.Context, path string, at time.Duration) ([]byte, error) {
	return ffmpeg.ExtractFrame(ctx, path, at)
}
