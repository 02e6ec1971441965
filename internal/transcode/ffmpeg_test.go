package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"livearchive/internal/config"
	"livearchive/internal/services"
)

func defaultEncoder() config.Encoder {
	return config.Default().Encoder
}

func TestFFmpegArgsMatchArchiveEncode(t *testing.T) {
	f := NewFFmpeg(defaultEncoder(), "mp4", nil)
	got := f.Args("/watch/2024-12-27_18-42-36.mp4", "/archive/out.mp4")
	want := []string{
		"-init_hw_device", "qsv=hw",
		"-filter_hw_device", "hw",
		"-hwaccel", "qsv",
		"-hwaccel_output_format", "qsv",
		"-i", "/watch/2024-12-27_18-42-36.mp4",
		"-c:v", "av1_qsv",
		"-preset", "4",
		"-b:v", "6M",
		"-maxrate", "12M",
		"-bufsize", "24M",
		"-c:a", "copy",
		"-n", "/archive/out.mp4",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("args mismatch\n got: %v\nwant: %v", got, want)
	}
}

func TestFFmpegArgsWithoutHardware(t *testing.T) {
	enc := defaultEncoder()
	enc.HWAccel = "none"
	enc.VideoCodec = "libsvtav1"
	enc.MaxRate = ""
	enc.BufSize = ""
	got := NewFFmpeg(enc, "mp4", nil).Args("in.mp4", "out.mp4")
	if findArg(got, "-hwaccel") != -1 || findArg(got, "-init_hw_device") != -1 {
		t.Fatalf("expected no hardware flags, got %v", got)
	}
	if findArg(got, "-maxrate") != -1 {
		t.Fatalf("expected empty maxrate to be omitted, got %v", got)
	}
	if idx := findArg(got, "-c:v"); idx == -1 || got[idx+1] != "libsvtav1" {
		t.Fatalf("expected video codec override, got %v", got)
	}
	if got[len(got)-2] != "-n" {
		t.Fatalf("expected -n before target, got %v", got)
	}
}

func TestFFmpegExtensionFollowsArchive(t *testing.T) {
	if ext := NewFFmpeg(defaultEncoder(), ".mkv", nil).Extension(); ext != "mkv" {
		t.Fatalf("extension = %q, want mkv", ext)
	}
	if ext := NewFFmpeg(defaultEncoder(), "", nil).Extension(); ext != "mp4" {
		t.Fatalf("extension = %q, want mp4", ext)
	}
}

func TestFFmpegTranscodeSuccess(t *testing.T) {
	captured := setHelperCommand(t, "success")
	dir := t.TempDir()
	source := filepath.Join(dir, "2024-12-27_18-42-36.mp4")
	target := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(source, []byte("source"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFFmpeg(defaultEncoder(), "mp4", nil)
	if err := f.Transcode(context.Background(), source, target); err != nil {
		t.Fatalf("Transcode returned error: %v", err)
	}
	if captured.name != "ffmpeg" {
		t.Fatalf("binary = %q, want ffmpeg", captured.name)
	}
	if got := captured.args[len(captured.args)-1]; got != target {
		t.Fatalf("last arg = %q, want target", got)
	}
	data, err := os.ReadFile(source)
	if err != nil || string(data) != "source" {
		t.Fatalf("source modified: %q, %v", data, err)
	}
}

func TestFFmpegTranscodeFailureRemovesPartialTarget(t *testing.T) {
	setHelperCommand(t, "failure")
	dir := t.TempDir()
	target := filepath.Join(dir, "out.mp4")

	f := NewFFmpeg(defaultEncoder(), "mp4", nil)
	err := f.Transcode(context.Background(), filepath.Join(dir, "in.mp4"), target)
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
	if !strings.Contains(err.Error(), "Device creation failed") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
	if _, statErr := os.Stat(target); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected partial target removed, stat err=%v", statErr)
	}
}

func TestFFmpegTranscodeKeepsPreexistingTarget(t *testing.T) {
	setHelperCommand(t, "exists")
	dir := t.TempDir()
	target := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(target, []byte("earlier archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := NewFFmpeg(defaultEncoder(), "mp4", nil).Transcode(context.Background(), filepath.Join(dir, "in.mp4"), target)
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
	data, readErr := os.ReadFile(target)
	if readErr != nil || string(data) != "earlier archive" {
		t.Fatalf("existing target disturbed: %q, %v", data, readErr)
	}
}

func TestTailBufferKeepsSuffix(t *testing.T) {
	tb := newTailBuffer(5)
	_, _ = tb.Write([]byte("abc"))
	_, _ = tb.Write([]byte("defgh"))
	if got := tb.String(); got != "defgh" {
		t.Fatalf("tail = %q, want defgh", got)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	tr, err := New(&cfg, nil)
	if err != nil || tr.Name() != config.BackendFFmpeg {
		t.Fatalf("default backend = %v, %v", tr, err)
	}
	cfg.Encoder.Backend = config.BackendDrapto
	tr, err = New(&cfg, nil)
	if err != nil || tr.Name() != config.BackendDrapto || tr.Extension() != "mkv" {
		t.Fatalf("drapto backend = %v, %v", tr, err)
	}
	cfg.Encoder.Backend = "handbrake"
	if _, err := New(&cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

type capturedCommand struct {
	name string
	args []string
}

func setHelperCommand(t *testing.T, mode string) *capturedCommand {
	t.Helper()
	captured := &capturedCommand{}
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured.name = name
		captured.args = append([]string(nil), args...)
		helperArgs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], helperArgs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return captured
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	target := args[len(args)-1]

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		_ = os.WriteFile(target, []byte("encoded"), 0o644)
		os.Exit(0)
	case "failure":
		_ = os.WriteFile(target, []byte("partial"), 0o644)
		fmt.Fprintln(os.Stderr, "frame=  120 fps= 60")
		fmt.Fprintln(os.Stderr, "Device creation failed: -12.")
		os.Exit(1)
	case "exists":
		fmt.Fprintf(os.Stderr, "File '%s' already exists. Exiting.\n", target)
		os.Exit(1)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}
