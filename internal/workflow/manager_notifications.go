package workflow

import (
	"context"
	"errors"

	"livearchive/internal/journal"
	"livearchive/internal/logging"
	"livearchive/internal/services"
)

func (m *Manager) notifyArchived(ctx context.Context, out Outcome) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyArchived(ctx, out.Slot.DisplayTitle, out.Slot.Path()); err != nil {
		m.logNotifyError(ctx, err)
	}
}

func (m *Manager) notifyFailed(ctx context.Context, out Outcome) {
	if m.notifier == nil || out.Err == nil {
		return
	}
	if err := m.notifier.NotifyFailed(ctx, out.SourcePath, out.Stage, out.Err); err != nil {
		m.logNotifyError(ctx, err)
	}
}

func (m *Manager) logNotifyError(ctx context.Context, err error) {
	logger := logging.WithContext(ctx, m.logger)
	if errors.Is(err, context.Canceled) {
		logger.Debug("daemon shutting down, notification not sent")
		return
	}
	logger.Debug("notification failed", logging.Error(err))
}

func toJournalRun(out Outcome, backend string) journal.Run {
	run := journal.Run{
		ID:         out.RunID,
		SourcePath: out.SourcePath,
		State:      string(out.State),
		Backend:    backend,
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
	}
	if out.Slot.Base != "" {
		run.Category = out.Slot.Category.String()
		run.TargetPath = out.Slot.Path()
	}
	run.SidecarPath = out.SidecarPath
	if out.Err != nil {
		run.ErrorKind = services.Kind(out.Err)
		run.ErrorMessage = out.Err.Error()
	}
	return run
}
