package transcode

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"livearchive/internal/config"
	"livearchive/internal/logging"
)

var commandContext = exec.CommandContext

// stderrTailBytes bounds how much ffmpeg diagnostic output is kept for error
// messages.
const stderrTailBytes = 4096

// FFmpeg runs the ffmpeg CLI with a hardware-accelerated AV1 encode.
type FFmpeg struct {
	enc    config.Encoder
	ext    string
	logger *slog.Logger
}

// NewFFmpeg builds an ffmpeg transcoder from encoder settings producing files
// with extension ext.
func NewFFmpeg(enc config.Encoder, ext string, logger *slog.Logger) *FFmpeg {
	if strings.TrimSpace(enc.FFmpegBinary) == "" {
		enc.FFmpegBinary = "ffmpeg"
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "mp4"
	}
	return &FFmpeg{enc: enc, ext: ext, logger: logging.NewComponentLogger(logger, "ffmpeg")}
}

func (f *FFmpeg) Name() string { return config.BackendFFmpeg }

// Extension reports the archive extension; ffmpeg picks the container from
// the target name.
func (f *FFmpeg) Extension() string { return f.ext }

// Args returns the ffmpeg argument list for one encode. The trailing -n makes
// ffmpeg refuse to overwrite an existing target.
func (f *FFmpeg) Args(source, target string) []string {
	args := make([]string, 0, 24)
	if hw := strings.TrimSpace(f.enc.HWAccel); hw != "" && hw != "none" {
		args = append(args,
			"-init_hw_device", hw+"=hw",
			"-filter_hw_device", "hw",
			"-hwaccel", hw,
			"-hwaccel_output_format", hw,
		)
	}
	args = append(args, "-i", source)
	args = appendFlag(args, "-c:v", f.enc.VideoCodec)
	args = appendFlag(args, "-preset", f.enc.Preset)
	args = appendFlag(args, "-b:v", f.enc.Bitrate)
	args = appendFlag(args, "-maxrate", f.enc.MaxRate)
	args = appendFlag(args, "-bufsize", f.enc.BufSize)
	args = appendFlag(args, "-c:a", f.enc.AudioCodec)
	return append(args, "-n", target)
}

func appendFlag(args []string, flag, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return args
	}
	return append(args, flag, value)
}

// Transcode runs ffmpeg and removes a partially written target on failure.
func (f *FFmpeg) Transcode(ctx context.Context, source, target string) error {
	logger := logging.WithContext(ctx, f.logger)
	existed := targetExists(target)
	args := f.Args(source, target)

	cmd := commandContext(ctx, f.enc.FFmpegBinary, args...) //nolint:gosec
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr

	logger.Info("ffmpeg encode started",
		logging.String("target", target),
		logging.String("video_codec", f.enc.VideoCodec),
		logging.String(logging.FieldEventType, "encode_started"),
	)
	started := time.Now()
	if err := cmd.Run(); err != nil {
		removePartial(target, existed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		tail := strings.TrimSpace(stderr.String())
		logger.Debug("ffmpeg stderr", logging.String("stderr_tail", tail))
		message := "ffmpeg exited with failure"
		if tail != "" {
			message += ": " + lastLine(tail)
		}
		return wrapFailure("run ffmpeg", message, err)
	}
	logger.Info("ffmpeg encode finished",
		logging.String("target", target),
		logging.Duration("elapsed", time.Since(started).Round(time.Second)),
		logging.String(logging.FieldEventType, "encode_finished"),
	)
	return nil
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }
