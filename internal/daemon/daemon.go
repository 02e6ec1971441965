package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"livearchive/internal/config"
	"livearchive/internal/logging"
	"livearchive/internal/watcher"
	"livearchive/internal/workflow"
)

// ErrAlreadyRunning reports that another process holds the instance lock.
var ErrAlreadyRunning = errors.New("another livearchive daemon instance is already running")

// Daemon owns the instance lock and the watcher-to-manager pipeline.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	manager  *workflow.Manager
	lockPath string
	pidPath  string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	WatchDir     string
	LockFilePath string
}

// New constructs a daemon around a configured workflow manager.
func New(cfg *config.Config, logger *slog.Logger, mgr *workflow.Manager) (*Daemon, error) {
	if cfg == nil || mgr == nil {
		return nil, errors.New("daemon requires config and workflow manager")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		manager:  mgr,
		lockPath: lockPath,
		pidPath:  cfg.PIDPath(),
		lock:     flock.New(lockPath),
	}, nil
}

// Lock acquires the single-instance lock without blocking and then records
// this process in the pid file. A refused lock leaves the pid file alone.
func (d *Daemon) Lock() error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	if err := writePIDFile(d.pidPath); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// Unlock removes the pid file and releases the single-instance lock.
func (d *Daemon) Unlock() {
	if d.pidPath != "" {
		if err := os.Remove(d.pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("failed to remove pid file",
				logging.String("path", d.pidPath),
				logging.Error(err),
			)
		}
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
		)
	}
}

// Run holds the lock, watches the watch directory, and processes recordings
// until ctx is cancelled. Failing to take the lock or to establish the
// watcher is fatal; a cancelled ctx is a clean shutdown and returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	if err := d.Lock(); err != nil {
		return err
	}
	defer d.Unlock()

	w, err := watcher.New(d.cfg.Paths.WatchDir, d.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	capacity := d.cfg.Workflow.QueueCapacity
	if capacity <= 0 {
		capacity = 1
	}
	events := make(chan watcher.Event, capacity)

	d.logger.Info("livearchive daemon started",
		logging.String("watch_dir", w.Dir()),
		logging.String("output_dir", d.cfg.Paths.OutputDir),
		logging.String("lock", d.lockPath),
		logging.Int("queue_capacity", capacity),
		logging.String(logging.FieldEventType, "daemon_started"),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, events)
	})
	g.Go(func() error {
		return d.manager.Run(gctx, events)
	})
	err = g.Wait()

	status := d.manager.Status()
	d.logger.Info("livearchive daemon stopped",
		logging.Int("archived", status.Done),
		logging.Int("failed", status.Failed),
		logging.Int("skipped", status.Skipped),
		logging.String(logging.FieldEventType, "daemon_stopped"),
	)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Status reports whether the daemon loop is active along with manager counters.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Workflow:     d.manager.Status(),
		WatchDir:     d.cfg.Paths.WatchDir,
		LockFilePath: d.lockPath,
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
