package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"livearchive/internal/config"
	"livearchive/internal/journal"
	"livearchive/internal/ledger"
	"livearchive/internal/logging"
	"livearchive/internal/naming"
	"livearchive/internal/notifications"
	"livearchive/internal/stability"
	"livearchive/internal/transcode"
)

// RunRecorder stores run history. *journal.Store satisfies it.
type RunRecorder interface {
	Save(ctx context.Context, run journal.Run) error
}

// Manager processes recordings one at a time.
type Manager struct {
	cfg        *config.Config
	logger     *slog.Logger
	detector   *stability.Detector
	resolver   *naming.Resolver
	transcoder transcode.Transcoder
	ledger     *ledger.Ledger
	notifier   notifications.Service
	recorder   RunRecorder

	mu      sync.RWMutex
	running bool
	done    int
	skipped int
	failed  int
	lastRun *Outcome
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithDetector replaces the detector built from the stability config.
func WithDetector(d *stability.Detector) ManagerOption {
	return func(m *Manager) {
		if d != nil {
			m.detector = d
		}
	}
}

// WithNotifier sets the notification service. The default is built from the
// notifications config.
func WithNotifier(n notifications.Service) ManagerOption {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithRecorder enables run history.
func WithRecorder(r RunRecorder) ManagerOption {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithLedger replaces the ledger sized from the workflow config.
func WithLedger(l *ledger.Ledger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.ledger = l
		}
	}
}

// NewManager wires the pipeline. Archive file names use the transcoder's
// extension so collision checks look for the files the encode will produce.
func NewManager(cfg *config.Config, logger *slog.Logger, transcoder transcode.Transcoder, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow manager requires config")
	}
	if transcoder == nil {
		return nil, errors.New("workflow manager requires a transcoder")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	resolver, err := naming.NewResolver(cfg.Paths.OutputDir, transcoder.Extension(), naming.Titles{
		PrimaryTitle:   cfg.Archive.PrimaryTitle,
		PrimaryTag:     cfg.Archive.PrimaryTag,
		SecondaryTitle: cfg.Archive.SecondaryTitle,
		SecondaryTag:   cfg.Archive.SecondaryTag,
	})
	if err != nil {
		return nil, fmt.Errorf("configure naming: %w", err)
	}

	m := &Manager{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "workflow-manager"),
		resolver:   resolver,
		transcoder: transcoder,
		ledger:     ledger.New(cfg.Workflow.LedgerCap),
		notifier:   notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.detector == nil {
		m.detector = stability.NewDetector(detectorOptions(cfg.Stability), logger)
	}
	return m, nil
}

func detectorOptions(s config.Stability) stability.Options {
	return stability.Options{
		InitialDelay:   s.InitialDelay(),
		PollInterval:   s.PollInterval(),
		RequiredChecks: s.RequiredStableChecks,
		Settle:         s.Settle(),
		MaxWait:        s.MaxWait(),
	}
}

// Ledger exposes the dedup ledger for inspection.
func (m *Manager) Ledger() *ledger.Ledger { return m.ledger }

// Resolver exposes the archive naming policy.
func (m *Manager) Resolver() *naming.Resolver { return m.resolver }

// Status returns counters for runs finished since the manager was created.
func (m *Manager) Status() StatusSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary := StatusSummary{
		Running:    m.running,
		Done:       m.done,
		Skipped:    m.skipped,
		Failed:     m.failed,
		LedgerSize: m.ledger.Len(),
	}
	if m.lastRun != nil {
		last := *m.lastRun
		summary.LastRun = &last
	}
	return summary
}

func (m *Manager) setRunning(running bool) {
	m.mu.Lock()
	m.running = running
	m.mu.Unlock()
}

func (m *Manager) record(out Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch out.State {
	case StateDone:
		m.done++
	case StateSkipped:
		m.skipped++
		return
	case StateFailed:
		m.failed++
	}
	m.lastRun = &out
}
