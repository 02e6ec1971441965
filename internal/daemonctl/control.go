// Package daemonctl inspects and stops a running livearchive daemon from
// another process using the instance lock and pid file in the state
// directory.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"livearchive/internal/config"
)

// ErrNotRunning reports that no process holds the instance lock.
var ErrNotRunning = errors.New("daemon not running")

const pollInterval = 100 * time.Millisecond

// Status describes the daemon as seen from outside the process.
type Status struct {
	Running  bool
	PID      int
	LockPath string
	PIDPath  string
}

// StopResult captures how the daemon was stopped.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// Probe reports whether a daemon or one-shot scan holds the instance lock.
// The pid is read from the pid file when one is present.
func Probe(cfg *config.Config) (Status, error) {
	status := Status{LockPath: cfg.LockPath(), PIDPath: cfg.PIDPath()}
	held, err := lockHeld(status.LockPath)
	if err != nil {
		return status, err
	}
	status.Running = held
	if held {
		pid, err := ReadPID(status.PIDPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return status, err
		}
		status.PID = pid
	}
	return status, nil
}

// Stop sends SIGTERM to the daemon and waits up to grace for it to release
// the lock. A daemon still holding the lock afterwards is killed.
func Stop(cfg *config.Config, grace time.Duration) (StopResult, error) {
	status, err := Probe(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !status.Running {
		return StopResult{}, ErrNotRunning
	}
	if status.PID <= 0 {
		return StopResult{}, fmt.Errorf("lock %s is held but no pid file was found at %s", status.LockPath, status.PIDPath)
	}
	if status.PID == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", status.PID)
	}

	result := StopResult{PID: status.PID}
	if err := syscall.Kill(status.PID, syscall.SIGTERM); err != nil {
		return result, fmt.Errorf("signal daemon process %d: %w", status.PID, err)
	}
	if waitForRelease(status.LockPath, grace) {
		return result, nil
	}

	if err := syscall.Kill(status.PID, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return result, fmt.Errorf("kill daemon process %d: %w", status.PID, err)
	}
	result.ForcedKill = true
	if err := os.Remove(status.PIDPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file %q: %w", status.PIDPath, err)
	}
	return result, nil
}

// ReadPID parses the pid file written by the daemon.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	value := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(value)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %q: %q", path, value)
	}
	return pid, nil
}

func lockHeld(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	probe := flock.New(path)
	ok, err := probe.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock %s: %w", path, err)
	}
	if ok {
		_ = probe.Unlock()
		return false, nil
	}
	return true, nil
}

func waitForRelease(lockPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		held, err := lockHeld(lockPath)
		if err == nil && !held {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}
