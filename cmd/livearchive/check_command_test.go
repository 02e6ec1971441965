package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckPassesWithStubbedFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Watch directory")
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "OK")
}

func TestCheckFailsWithoutFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(filepath.Join(env.baseDir, "bin", "ffmpeg")); err != nil {
		t.Fatalf("remove stub: %v", err)
	}
	t.Setenv("PATH", filepath.Join(env.baseDir, "bin"))

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatalf("expected check failure, output:\n%s", out)
	}
	requireContains(t, out, "FAIL")
}

func TestScanWithEmptyWatchDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"scan", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, `"candidates": 0`)
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}
