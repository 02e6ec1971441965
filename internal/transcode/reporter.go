package transcode

import (
	"log/slog"

	draptolib "github.com/five82/drapto"

	"livearchive/internal/logging"
)

// reporter forwards Drapto progress events to the run logger, sampling the
// noisy progress streams.
type reporter struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func newReporter(logger *slog.Logger) *reporter {
	return &reporter{logger: logger, sampler: logging.NewProgressSampler(10)}
}

func (r *reporter) Hardware(s draptolib.HardwareSummary) {
	r.logger.Debug("drapto hardware", logging.String("hostname", s.Hostname))
}

func (r *reporter) Initialization(s draptolib.InitializationSummary) {
	r.logger.Info("drapto analysis",
		logging.String("input", s.InputFile),
		logging.Any("duration", s.Duration),
		logging.Any("resolution", s.Resolution),
		logging.Any("dynamic_range", s.DynamicRange),
	)
}

func (r *reporter) StageProgress(s draptolib.StageProgress) {
	if !r.sampler.Observe(s.Stage, float64(s.Percent)) {
		return
	}
	attrs := []logging.Attr{
		logging.String("drapto_stage", s.Stage),
		logging.Float64("percent", float64(s.Percent)),
		logging.String("detail", s.Message),
	}
	if s.ETA != nil {
		attrs = append(attrs, logging.Duration("eta", *s.ETA))
	}
	r.logger.Info("drapto stage progress", logging.Args(attrs...)...)
}

func (r *reporter) CropResult(s draptolib.CropSummary) {
	r.logger.Debug("drapto crop detection",
		logging.Any("crop", s.Crop),
		logging.Any("required", s.Required),
		logging.String("detail", s.Message),
	)
}

func (r *reporter) EncodingConfig(s draptolib.EncodingConfigSummary) {
	r.logger.Info("drapto encoding config",
		logging.Any("encoder", s.Encoder),
		logging.Any("preset", s.Preset),
		logging.Any("quality", s.Quality),
		logging.Any("audio_codec", s.AudioCodec),
	)
}

func (r *reporter) EncodingStarted(totalFrames uint64) {
	r.sampler.Reset()
	r.logger.Info("drapto encoding started", logging.Any("total_frames", totalFrames))
}

func (r *reporter) EncodingProgress(s draptolib.ProgressSnapshot) {
	if !r.sampler.Observe("encoding", float64(s.Percent)) {
		return
	}
	r.logger.Info("drapto encoding progress",
		logging.Float64("percent", float64(s.Percent)),
		logging.Float64("speed", float64(s.Speed)),
		logging.Float64("fps", float64(s.FPS)),
		logging.Any("eta", s.ETA),
	)
}

func (r *reporter) ValidationComplete(s draptolib.ValidationSummary) {
	if s.Passed {
		r.logger.Info("drapto validation passed", logging.Int("steps", len(s.Steps)))
		return
	}
	failed := make([]string, 0, len(s.Steps))
	for _, step := range s.Steps {
		if !step.Passed {
			failed = append(failed, step.Name)
		}
	}
	logging.WarnWithContext(r.logger, "drapto validation failed", "encode_validation_failed",
		logging.Any("failed_steps", failed),
		logging.String(logging.FieldErrorHint, "inspect the archived file before relying on it"),
		logging.String(logging.FieldImpact, "archive may not match the source"),
	)
}

func (r *reporter) EncodingComplete(s draptolib.EncodingOutcome) {
	r.logger.Info("drapto encoding complete",
		logging.Any("original_size", s.OriginalSize),
		logging.Any("encoded_size", s.EncodedSize),
		logging.Any("elapsed", s.TotalTime),
	)
}

func (r *reporter) Warning(message string) {
	logging.WarnWithContext(r.logger, "drapto warning", "drapto_warning", logging.String("detail", message))
}

func (r *reporter) Error(e draptolib.ReporterError) {
	logging.ErrorWithContext(r.logger, "drapto error", "drapto_error",
		logging.String("title", e.Title),
		logging.String("detail", e.Message),
		logging.String("context", e.Context),
		logging.String(logging.FieldErrorHint, e.Suggestion),
	)
}

func (r *reporter) OperationComplete(message string) {
	r.logger.Debug("drapto operation complete", logging.String("detail", message))
}

// Batch events do not occur for single-file encodes.

func (r *reporter) BatchStarted(draptolib.BatchStartInfo) {}

func (r *reporter) FileProgress(draptolib.FileProgressContext) {}

func (r *reporter) BatchComplete(draptolib.BatchSummary) {}

var _ draptolib.Reporter = (*reporter)(nil)
