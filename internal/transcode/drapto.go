package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	draptolib "github.com/five82/drapto"

	"livearchive/internal/config"
	"livearchive/internal/fileutil"
	"livearchive/internal/logging"
)

// encodeWithDrapto runs one library encode of input into outputDir.
var encodeWithDrapto = func(ctx context.Context, input, outputDir string, rep draptolib.Reporter) error {
	encoder, err := draptolib.New(draptolib.WithResponsive())
	if err != nil {
		return err
	}
	_, err = encoder.EncodeWithReporter(ctx, input, outputDir, rep)
	return err
}

// StagingPrefix names the per-encode work directories created under the
// staging directory.
const StagingPrefix = "encode-"

// Drapto encodes with the Drapto library. Drapto names its output after the
// input stem inside an output directory, so each encode runs in a private
// staging directory and the result is moved into the archive slot.
type Drapto struct {
	stagingDir string
	logger     *slog.Logger
}

// NewDrapto builds a library-backed transcoder staging work in stagingDir.
func NewDrapto(stagingDir string, logger *slog.Logger) *Drapto {
	return &Drapto{
		stagingDir: strings.TrimSpace(stagingDir),
		logger:     logging.NewComponentLogger(logger, "drapto"),
	}
}

func (d *Drapto) Name() string { return config.BackendDrapto }

// Extension reports mkv, the container Drapto produces.
func (d *Drapto) Extension() string { return "mkv" }

// Transcode encodes source and moves the result to target.
func (d *Drapto) Transcode(ctx context.Context, source, target string) error {
	if strings.TrimSpace(source) == "" {
		return wrapFailure("prepare encode", "input path required", nil)
	}
	if d.stagingDir == "" {
		return wrapFailure("prepare staging", "staging directory not configured", nil)
	}
	if err := os.MkdirAll(d.stagingDir, 0o755); err != nil {
		return wrapFailure("prepare staging", d.stagingDir, err)
	}
	workDir, err := os.MkdirTemp(d.stagingDir, StagingPrefix+"*")
	if err != nil {
		return wrapFailure("prepare staging", d.stagingDir, err)
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("drapto encode started",
		logging.String("target", target),
		logging.String("work_dir", workDir),
		logging.String(logging.FieldEventType, "encode_started"),
	)

	if err := encodeWithDrapto(ctx, source, workDir, newReporter(logger)); err != nil {
		return wrapFailure("run drapto", "library encode failed", err)
	}

	produced := filepath.Join(workDir, stem(source)+".mkv")
	if _, err := os.Stat(produced); err != nil {
		return wrapFailure("collect output", fmt.Sprintf("expected %s", produced), err)
	}
	existed := targetExists(target)
	if err := fileutil.MoveFile(produced, target); err != nil {
		removePartial(target, existed)
		return wrapFailure("move output", target, err)
	}
	logger.Info("drapto encode finished",
		logging.String("target", target),
		logging.String(logging.FieldEventType, "encode_finished"),
	)
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	s := strings.TrimSuffix(base, filepath.Ext(base))
	if s == "" {
		return base
	}
	return s
}
