package daemonctl_test

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"livearchive/internal/daemonctl"
	"livearchive/internal/testsupport"
)

// TestHelperProcess stands in for a daemon: it holds the lock until SIGTERM.
func TestHelperProcess(t *testing.T) {
	lockPath := os.Getenv("DAEMONCTL_HELPER_LOCK")
	if lockPath == "" {
		return
	}
	lock := flock.New(lockPath)
	if ok, err := lock.TryLock(); err != nil || !ok {
		os.Exit(3)
	}
	signals := make(chan os.Signal, 1)
	if os.Getenv("DAEMONCTL_HELPER_IGNORE_TERM") == "1" {
		signal.Ignore(syscall.SIGTERM)
	} else {
		signal.Notify(signals, syscall.SIGTERM)
	}
	if err := os.WriteFile(lockPath+".ready", []byte("ok"), 0o644); err != nil {
		os.Exit(4)
	}
	select {
	case <-signals:
		_ = lock.Unlock()
		os.Exit(0)
	case <-time.After(30 * time.Second):
		os.Exit(5)
	}
}

func startHelper(t *testing.T, lockPath, pidPath string, ignoreTerm bool) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=TestHelperProcess")
	cmd.Env = append(os.Environ(), "DAEMONCTL_HELPER_LOCK="+lockPath)
	if ignoreTerm {
		cmd.Env = append(cmd.Env, "DAEMONCTL_HELPER_IGNORE_TERM=1")
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start helper: %v", err)
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-done
	})

	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, err := os.Stat(lockPath + ".ready"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("helper never took the lock")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(cmd.Process.Pid)+"\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	return cmd
}

func TestProbeNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	status, err := daemonctl.Probe(cfg)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if status.Running || status.PID != 0 {
		t.Fatalf("unexpected status %+v", status)
	}
	if _, err := daemonctl.Stop(cfg, time.Second); !errors.Is(err, daemonctl.ErrNotRunning) {
		t.Fatalf("Stop err = %v, want ErrNotRunning", err)
	}
}

func TestProbeReportsLockHolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cmd := startHelper(t, cfg.LockPath(), cfg.PIDPath(), false)

	status, err := daemonctl.Probe(cfg)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !status.Running || status.PID != cmd.Process.Pid {
		t.Fatalf("status = %+v, want running pid %d", status, cmd.Process.Pid)
	}
}

func TestStopGraceful(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cmd := startHelper(t, cfg.LockPath(), cfg.PIDPath(), false)

	result, err := daemonctl.Stop(cfg, 5*time.Second)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if result.ForcedKill || result.PID != cmd.Process.Pid {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestStopForcesKillAfterGrace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	startHelper(t, cfg.LockPath(), cfg.PIDPath(), true)

	result, err := daemonctl.Stop(cfg, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !result.ForcedKill {
		t.Fatalf("expected forced kill, got %+v", result)
	}
	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed, stat err %v", err)
	}
}

func TestStopWithoutPIDFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lock := flock.New(cfg.LockPath())
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("lock: %v %v", ok, err)
	}
	defer lock.Unlock()

	if _, err := daemonctl.Stop(cfg, time.Second); err == nil {
		t.Fatal("expected error without pid file")
	}
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	if err := os.WriteFile(path, []byte("nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := daemonctl.ReadPID(path); err == nil {
		t.Fatal("expected parse error")
	}
}
