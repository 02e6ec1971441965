package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"livearchive/internal/logging"
	"livearchive/internal/services"
)

func (m *Manager) handleFailure(ctx context.Context, out *Outcome, stageErr error) {
	out.Err = stageErr
	if out.Stage == "" {
		out.Stage = services.Details(stageErr).Stage
	}
	m.advance(ctx, out, StateFailed)
	out.FinishedAt = time.Now().UTC()
	m.saveRun(ctx, *out)

	logger := logging.WithContext(services.WithStage(ctx, out.Stage), m.logger)
	details := services.Details(stageErr)

	if details.Kind == services.KindCanceled {
		logger.Info("processing interrupted by shutdown",
			logging.String(logging.FieldEventType, "run_interrupted"),
		)
		return
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldErrorKind, details.Kind),
		logging.String("error_operation", details.Operation),
		logging.String("error_message", strings.TrimSpace(details.Message)),
		logging.String(logging.FieldErrorHint, failureHint(stageErr)),
		logging.String(logging.FieldImpact, "recording left unarchived; the source file is untouched"),
	}
	if details.Cause != nil {
		attrs = append(attrs, logging.Error(details.Cause))
	} else {
		attrs = append(attrs, logging.Error(stageErr))
	}
	logging.ErrorWithContext(logger, "recording failed", "stage_failure", attrs...)

	m.notifyFailed(ctx, *out)
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrTimeout):
		return "the file kept changing for the whole stability window; drop it again once the recorder has finished"
	case errors.Is(err, services.ErrFormat):
		return "rename the recording to YYYY-MM-DD_HH-MM-SS.<ext> and drop it again"
	case errors.Is(err, services.ErrTranscode):
		return "check the encoder output above and the encoder settings in config.toml"
	case errors.Is(err, services.ErrIO):
		return "check permissions and free space for the watch and output directories"
	default:
		return "see error for details"
	}
}

// saveRun records the run in the journal. Journal failures never affect the
// run itself. A cancelled ctx still records the final state.
func (m *Manager) saveRun(ctx context.Context, out Outcome) {
	if m.recorder == nil {
		return
	}
	run := toJournalRun(out, m.transcoder.Name())
	if err := m.recorder.Save(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "run journal update failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state directory is writable"),
			logging.String(logging.FieldImpact, "history will miss this run"),
		)
	}
}
