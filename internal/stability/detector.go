package stability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"livearchive/internal/logging"
	"livearchive/internal/services"
)

const stageName = "stability"

// Options controls the polling schedule.
type Options struct {
	// InitialDelay is waited once before the first check.
	InitialDelay time.Duration
	// PollInterval separates consecutive checks.
	PollInterval time.Duration
	// RequiredChecks is the number of consecutive unchanged observations that
	// mark the file as complete.
	RequiredChecks int
	// Settle is waited once after the threshold is reached.
	Settle time.Duration
	// MaxWait bounds the polling window. It is converted to a number of checks
	// so a slow stat call cannot stretch the window indefinitely.
	MaxWait time.Duration
}

// Result describes the observation that satisfied the detector.
type Result struct {
	Checks  int
	Size    int64
	ModTime time.Time
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// StatFunc reports file metadata.
type StatFunc func(path string) (os.FileInfo, error)

// Detector waits for a file to stop changing.
type Detector struct {
	opts   Options
	logger *slog.Logger
	stat   StatFunc
	sleep  SleepFunc
}

// Option customizes a Detector.
type Option func(*Detector)

// WithStat replaces os.Stat.
func WithStat(fn StatFunc) Option {
	return func(d *Detector) {
		if fn != nil {
			d.stat = fn
		}
	}
}

// WithSleep replaces the context-aware timer sleep.
func WithSleep(fn SleepFunc) Option {
	return func(d *Detector) {
		if fn != nil {
			d.sleep = fn
		}
	}
}

// NewDetector constructs a detector. Non-positive values fall back to one
// check per second with a single required check.
func NewDetector(opts Options, logger *slog.Logger, options ...Option) *Detector {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.RequiredChecks <= 0 {
		opts.RequiredChecks = 1
	}
	d := &Detector{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, stageName),
		stat:   os.Stat,
		sleep:  sleepContext,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// MaxChecks is the number of polls attempted before giving up.
func (d *Detector) MaxChecks() int {
	if d.opts.MaxWait <= 0 {
		return d.opts.RequiredChecks + 1
	}
	n := int((d.opts.MaxWait + d.opts.PollInterval - 1) / d.opts.PollInterval)
	if n < d.opts.RequiredChecks+1 {
		n = d.opts.RequiredChecks + 1
	}
	return n
}

// Wait blocks until path has kept the same non-zero size and modification
// time for the required number of consecutive checks. Metadata failures end
// the wait immediately with services.ErrIO; exhausting the window yields
// services.ErrTimeout. Context cancellation is honoured between checks.
func (d *Detector) Wait(ctx context.Context, path string) (Result, error) {
	logger := logging.WithContext(ctx, d.logger)

	if err := d.sleep(ctx, d.opts.InitialDelay); err != nil {
		return Result{}, err
	}

	tr := newTracker(d.opts.RequiredChecks)
	maxChecks := d.MaxChecks()
	for check := 1; check <= maxChecks; check++ {
		if check > 1 {
			if err := d.sleep(ctx, d.opts.PollInterval); err != nil {
				return Result{}, err
			}
		}

		info, err := d.stat(path)
		if err != nil {
			return Result{}, services.Wrap(services.ErrIO, stageName, "read file metadata", path, err)
		}
		obs := observation{size: info.Size(), modTime: info.ModTime()}
		stable := tr.observe(obs)
		logger.Debug("stability check",
			logging.Int("check", check),
			logging.Int64("size_bytes", obs.size),
			logging.Int("stable_count", tr.count),
		)
		if !stable {
			continue
		}

		logger.Info("recording stable; settling",
			logging.Int("checks", check),
			logging.Int64("size_bytes", obs.size),
			logging.Duration("settle", d.opts.Settle),
			logging.String(logging.FieldEventType, "recording_stable"),
		)
		if err := d.sleep(ctx, d.opts.Settle); err != nil {
			return Result{}, err
		}
		return Result{Checks: check, Size: obs.size, ModTime: obs.modTime}, nil
	}

	return Result{}, services.Wrap(services.ErrTimeout, stageName, "wait for stable file",
		fmt.Sprintf("%s still changing after %d checks", path, maxChecks), nil)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
