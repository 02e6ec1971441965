package transcode

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"livearchive/internal/logging"
	"livearchive/internal/media/ffprobe"
)

var inspectMedia = ffprobe.Inspect

// Verified probes every finished archive with ffprobe and removes targets
// that hold no playable video. When ffprobe is not installed verification is
// skipped and a single warning is logged.
type Verified struct {
	Transcoder
	ffprobe string
	logger  *slog.Logger

	missingOnce sync.Once
}

// NewVerified wraps inner so its output is checked with the ffprobe binary.
func NewVerified(inner Transcoder, ffprobeBinary string, logger *slog.Logger) *Verified {
	return &Verified{
		Transcoder: inner,
		ffprobe:    ffprobeBinary,
		logger:     logging.NewComponentLogger(logger, "verify"),
	}
}

// Transcode runs the wrapped backend and then verifies target.
func (v *Verified) Transcode(ctx context.Context, source, target string) error {
	existed := targetExists(target)
	if err := v.Transcoder.Transcode(ctx, source, target); err != nil {
		return err
	}

	result, err := inspectMedia(ctx, v.ffprobe, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			v.missingOnce.Do(func() {
				logging.WarnWithContext(v.logger, "ffprobe not found, archive verification skipped", "verify_skipped",
					logging.String("ffprobe_binary", v.ffprobe),
					logging.String(logging.FieldErrorHint, "install ffprobe or set encoder.verify_output = false"),
					logging.String(logging.FieldImpact, "corrupt encodes are not detected"),
				)
			})
			return nil
		}
		removePartial(target, existed)
		return wrapFailure("verify output", target, err)
	}
	if err := result.Playable(); err != nil {
		removePartial(target, existed)
		return wrapFailure("verify output", target, err)
	}

	logging.WithContext(ctx, v.logger).Debug("archive verified",
		logging.String("target", target),
		logging.String("video_codec", result.VideoCodec()),
		logging.Float64("duration_seconds", result.DurationSeconds()),
	)
	return nil
}
