package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"livearchive/internal/logging"
	"livearchive/internal/naming"
	"livearchive/internal/services"
	"livearchive/internal/watcher"
)

// Run consumes watcher events until ctx is cancelled or events is closed.
// When startup scanning is enabled the watch directory is scanned first;
// events that arrive meanwhile wait in the channel.
func (m *Manager) Run(ctx context.Context, events <-chan watcher.Event) error {
	m.setRunning(true)
	defer m.setRunning(false)

	if m.cfg.Workflow.StartupScan {
		if _, err := m.Scan(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.WarnWithContext(m.logger, "startup scan failed", "startup_scan_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the watch directory is readable"),
				logging.String(logging.FieldImpact, "recordings dropped while the daemon was down are not archived"),
			)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent processes created and modified events. Other kinds are ignored.
func (m *Manager) HandleEvent(ctx context.Context, ev watcher.Event) {
	if !ev.Actionable() {
		m.logger.Debug("ignoring filesystem event",
			logging.String("path", ev.Path),
			logging.String("kind", ev.Kind.String()),
		)
		return
	}
	m.Process(ctx, ev.Path)
}

// Scan processes every recording in the watch directory that has no archive
// copy yet. A recording counts as archived when either category's plain file
// exists for its capture date. Names that do not parse are logged and left
// alone.
func (m *Manager) Scan(ctx context.Context) (ScanSummary, error) {
	var summary ScanSummary
	dir := m.cfg.Paths.WatchDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return summary, services.Wrap(services.ErrIO, "scan", "list watch directory", dir, err)
	}

	logger := m.logger.With(logging.String(logging.FieldStage, "scan"))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !m.accepts(path) {
			continue
		}
		summary.Candidates++

		captured, err := naming.ParseCaptureTime(entry.Name(), m.cfg.Archive.Extension)
		if err != nil {
			summary.Unparsable++
			logger.Warn("skipping recording with unrecognized name",
				logging.String(logging.FieldSourcePath, path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "scan_unparsable"),
				logging.String(logging.FieldErrorHint, "rename the recording to YYYY-MM-DD_HH-MM-SS."+m.cfg.Archive.Extension),
			)
			continue
		}
		archived, err := m.resolver.Archived(captured)
		if err != nil {
			return summary, err
		}
		if archived {
			summary.Archived++
			logger.Debug("recording already archived",
				logging.String(logging.FieldSourcePath, path),
			)
			continue
		}

		logger.Info("found unarchived recording",
			logging.String(logging.FieldSourcePath, path),
			logging.String(logging.FieldEventType, "scan_found"),
		)
		out := m.Process(ctx, path)
		switch out.State {
		case StateDone:
			summary.Processed++
		case StateFailed:
			if errors.Is(out.Err, context.Canceled) {
				return summary, out.Err
			}
			summary.Failed++
		}
	}

	logger.Info("startup scan complete",
		logging.Int("candidates", summary.Candidates),
		logging.Int("already_archived", summary.Archived),
		logging.Int("unparsable", summary.Unparsable),
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.String(logging.FieldEventType, "scan_complete"),
	)
	return summary, nil
}

func (s ScanSummary) String() string {
	return fmt.Sprintf("%d candidates, %d already archived, %d unparsable, %d processed, %d failed",
		s.Candidates, s.Archived, s.Unparsable, s.Processed, s.Failed)
}
