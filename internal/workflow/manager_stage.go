package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"livearchive/internal/logging"
	"livearchive/internal/naming"
	"livearchive/internal/services"
	"livearchive/internal/sidecar"
)

const (
	stageStability = "stability"
	stageNaming    = "naming"
	stageTranscode = "transcode"
	stageSidecar   = "sidecar"
)

// Process runs one recording through the pipeline and reports how far it got.
// The source file is only ever read.
func (m *Manager) Process(ctx context.Context, path string) Outcome {
	path = filepath.Clean(path)
	out := Outcome{
		RunID:      uuid.NewString(),
		SourcePath: path,
		State:      StateReceived,
		StartedAt:  time.Now().UTC(),
	}
	ctx = services.WithRunID(ctx, out.RunID)
	ctx = services.WithSourcePath(ctx, path)
	logger := logging.WithContext(ctx, m.logger)

	if reason, skip := m.skipReason(path); skip {
		out.Reason = reason
		m.advance(ctx, &out, StateSkipped)
		out.FinishedAt = time.Now().UTC()
		logger.Debug("recording skipped",
			logging.String("reason", reason),
			logging.String(logging.FieldEventType, "recording_skipped"),
		)
		m.record(out)
		return out
	}

	logger.Info("recording received", logging.String(logging.FieldEventType, "recording_received"))
	m.advance(ctx, &out, StateStabilizing)
	m.saveRun(ctx, out)

	if err := m.runStages(ctx, &out); err != nil {
		m.handleFailure(ctx, &out, err)
		m.record(out)
		return out
	}

	m.ledger.Mark(path)
	m.advance(ctx, &out, StateDone)
	out.FinishedAt = time.Now().UTC()
	m.saveRun(ctx, out)
	logger.Info("recording archived",
		logging.String("target_path", out.Slot.Path()),
		logging.String("sidecar_path", out.SidecarPath),
		logging.String("category", out.Slot.Category.String()),
		logging.Int("suffix", out.Slot.Suffix),
		logging.Duration("elapsed", out.FinishedAt.Sub(out.StartedAt)),
		logging.String(logging.FieldEventType, "recording_archived"),
	)
	m.notifyArchived(ctx, out)
	m.record(out)
	return out
}

// skipReason reports whether path should not be processed at all.
func (m *Manager) skipReason(path string) (string, bool) {
	if !m.accepts(path) {
		return "extension mismatch", true
	}
	if m.ledger.Seen(path) {
		return "already archived in this session", true
	}
	return "", false
}

// accepts matches the configured extension exactly; "X.MP4" is not "x.mp4".
func (m *Manager) accepts(path string) bool {
	return strings.TrimPrefix(filepath.Ext(path), ".") == m.cfg.Archive.Extension
}

func (m *Manager) runStages(ctx context.Context, out *Outcome) error {
	logger := logging.WithContext(ctx, m.logger)

	out.Stage = stageStability
	result, err := m.detector.Wait(services.WithStage(ctx, stageStability), out.SourcePath)
	if err != nil {
		return err
	}
	m.advance(ctx, out, StateStable)
	logger.Debug("recording stable",
		logging.Int("checks", result.Checks),
		logging.Int64("size_bytes", result.Size),
	)

	out.Stage = stageNaming
	captured, err := naming.ParseCaptureTime(filepath.Base(out.SourcePath), m.cfg.Archive.Extension)
	if err != nil {
		return err
	}
	slot, err := m.resolver.Resolve(captured)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(slot.Dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, stageNaming, "create month directory", slot.Dir, err)
	}
	out.Slot = slot
	m.advance(ctx, out, StateNamed)
	logger.Info("archive slot resolved",
		logging.String("target_path", slot.Path()),
		logging.String("category", slot.Category.String()),
		logging.Int("suffix", slot.Suffix),
		logging.String(logging.FieldEventType, "slot_resolved"),
	)

	out.Stage = stageTranscode
	started := time.Now()
	logger.Info("transcode started",
		logging.String("backend", m.transcoder.Name()),
		logging.String("target_path", slot.Path()),
		logging.String(logging.FieldEventType, "transcode_started"),
	)
	if err := m.transcoder.Transcode(services.WithStage(ctx, stageTranscode), out.SourcePath, slot.Path()); err != nil {
		return err
	}
	m.advance(ctx, out, StateTranscoded)
	logger.Info("transcode finished",
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "transcode_finished"),
	)

	out.Stage = stageSidecar
	sidecarPath, err := sidecar.Write(slot, m.cfg.Archive.ShowTitle)
	if err != nil {
		return err
	}
	out.SidecarPath = sidecarPath
	m.advance(ctx, out, StateMetadataWritten)
	out.Stage = ""
	return nil
}

// advance applies a state transition. A rejected transition is a programming
// error; it is logged and the state is forced so the run still terminates.
func (m *Manager) advance(ctx context.Context, out *Outcome, to State) {
	from := out.State
	if err := out.transition(to); err != nil {
		logging.WithContext(ctx, m.logger).Error("invalid run transition",
			logging.Error(err),
			logging.String(logging.FieldEventType, "invalid_transition"),
		)
		out.State = to
		return
	}
	logging.WithContext(ctx, m.logger).Debug("run state changed",
		logging.String("from", string(from)),
		logging.String("to", string(to)),
	)
}
