// Package daemonrun assembles the archiver runtime from configuration and
// runs it until the process is signalled.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"livearchive/internal/config"
	"livearchive/internal/daemon"
	"livearchive/internal/deps"
	"livearchive/internal/journal"
	"livearchive/internal/logging"
	"livearchive/internal/notifications"
	"livearchive/internal/preflight"
	"livearchive/internal/staging"
	"livearchive/internal/transcode"
	"livearchive/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Console is "stdout" (default) or "stderr"; the state log file is
	// always written.
	Console string
}

// Runtime is the wired pipeline shared by the daemon and the one-shot scan.
type Runtime struct {
	Manager    *workflow.Manager
	Transcoder transcode.Transcoder
	Journal    *journal.Store
}

// Close releases the journal.
func (r *Runtime) Close() error {
	if r == nil || r.Journal == nil {
		return nil
	}
	return r.Journal.Close()
}

// Run starts the livearchive daemon loop and blocks until SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := NewLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	logPreflight(signalCtx, logger, cfg)
	pruneStaging(signalCtx, logger, cfg)

	rt, err := Assemble(cfg, logger)
	if err != nil {
		logger.Error("assemble runtime", logging.Error(err))
		return err
	}
	defer rt.Close()

	d, err := daemon.New(cfg, logger, rt.Manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Run(signalCtx); err != nil {
		logger.Error("daemon stopped with error",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_failed"),
		)
		return err
	}
	logger.Info("livearchive daemon shutting down")
	return nil
}

// Scan runs a single pass over the watch directory under the instance lock,
// recorded in the pid file so `livearchive stop` can interrupt it, and returns once every found recording has been handled.
func Scan(ctx context.Context, cfg *config.Config, logger *slog.Logger) (workflow.ScanSummary, error) {
	rt, err := Assemble(cfg, logger)
	if err != nil {
		return workflow.ScanSummary{}, err
	}
	defer rt.Close()

	d, err := daemon.New(cfg, logger, rt.Manager)
	if err != nil {
		return workflow.ScanSummary{}, err
	}
	if err := d.Lock(); err != nil {
		return workflow.ScanSummary{}, err
	}
	defer d.Unlock()

	return rt.Manager.Scan(ctx)
}

// Assemble builds the transcoder, journal, notifier, and workflow manager.
// A journal that cannot be opened is logged and skipped.
func Assemble(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	transcoder, err := transcode.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Transcoder: transcoder}
	opts := []workflow.ManagerOption{workflow.WithNotifier(notifications.NewService(cfg))}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.JournalPath())
		if err != nil {
			logging.WarnWithContext(logger, "run journal unavailable", "journal_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the state directory or set journal.enabled = false"),
				logging.String(logging.FieldImpact, "runs will not appear in history"),
			)
		} else {
			rt.Journal = store
			opts = append(opts, workflow.WithRecorder(store))
		}
	}

	mgr, err := workflow.NewManager(cfg, logger, transcoder, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Manager = mgr
	return rt, nil
}

// NewLogger builds the process logger, writing to stdout and the state log.
func NewLogger(cfg *config.Config, opts Options) (*slog.Logger, error) {
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	console := strings.TrimSpace(opts.Console)
	if console == "" {
		console = "stdout"
	}
	return logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{console, cfg.LogPath()},
		Development: opts.Development,
	})
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run `livearchive check` for details"),
			logging.String(logging.FieldImpact, "recordings may fail to archive"),
		)
	}
}

// pruneStaging removes Drapto work directories abandoned by a previous
// process.
func pruneStaging(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	if cfg.Encoder.Backend != config.BackendDrapto {
		return
	}
	result := staging.CleanStale(ctx, cfg.Encoder.StagingDir, staging.DefaultMaxAge, logger)
	if len(result.Removed) > 0 {
		logger.Info("pruned abandoned encode directories",
			logging.Int("removed", len(result.Removed)),
			logging.Int64("bytes", result.Reclaimed),
			logging.String(logging.FieldEventType, "staging_pruned"),
		)
	}
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	ffmpeg := deps.ResolveFFmpegPath(cfg.Encoder.FFmpegBinary)
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("encoder_backend", cfg.Encoder.Backend),
		logging.Bool("ffmpeg_available", binaryAvailable(ffmpeg)),
		logging.Bool("verify_output", cfg.Encoder.VerifyOutput),
		logging.String("ffmpeg_binary", ffmpeg),
		logging.Bool("ntfy_enabled", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Bool("journal_enabled", cfg.Journal.Enabled),
		logging.String("watch_dir", cfg.Paths.WatchDir),
		logging.String("output_dir", cfg.Paths.OutputDir),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// IsLockHeld reports whether err means another instance owns the lock.
func IsLockHeld(err error) bool {
	return errors.Is(err, daemon.ErrAlreadyRunning)
}
