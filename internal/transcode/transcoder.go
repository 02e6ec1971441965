package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"livearchive/internal/config"
	"livearchive/internal/deps"
	"livearchive/internal/services"
)

const stageName = "transcode"

// Transcoder encodes a source recording into a new archive file. Transcode
// blocks until the encode finishes and must leave source untouched; a failed
// encode must not leave a partial target behind.
type Transcoder interface {
	// Name identifies the backend in logs and the run journal.
	Name() string
	// Extension is the container extension of produced files, without a dot.
	Extension() string
	Transcode(ctx context.Context, source, target string) error
}

// New selects the configured backend. The ffmpeg backend writes archives
// with the configured archive extension. With verify_output set the backend
// is wrapped so each archive is probed before it counts as encoded.
func New(cfg *config.Config, logger *slog.Logger) (Transcoder, error) {
	enc := cfg.Encoder
	var backend Transcoder
	switch strings.ToLower(strings.TrimSpace(enc.Backend)) {
	case "", config.BackendFFmpeg:
		backend = NewFFmpeg(enc, cfg.Archive.Extension, logger)
	case config.BackendDrapto:
		backend = NewDrapto(enc.StagingDir, logger)
	default:
		return nil, fmt.Errorf("unsupported encoder backend %q", enc.Backend)
	}
	if !enc.VerifyOutput {
		return backend, nil
	}
	ffmpeg := enc.FFmpegBinary
	if backend.Name() == config.BackendDrapto {
		ffmpeg = ""
	}
	return NewVerified(backend, deps.ResolveFFprobePath(deps.ResolveFFmpegPath(ffmpeg)), logger), nil
}

// removePartial deletes target when the failed encode created it. Targets that
// existed before the encode started are never touched.
func removePartial(target string, existedBefore bool) {
	if existedBefore {
		return
	}
	_ = os.Remove(target)
}

func targetExists(target string) bool {
	_, err := os.Lstat(target)
	return err == nil
}

func wrapFailure(operation, message string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return services.Wrap(services.ErrTranscode, stageName, operation, message, err)
}
