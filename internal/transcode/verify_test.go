package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"livearchive/internal/config"
	"livearchive/internal/media/ffprobe"
	"livearchive/internal/services"
)

type writingTranscoder struct {
	err error
}

func (writingTranscoder) Name() string      { return "fake" }
func (writingTranscoder) Extension() string { return "mp4" }
func (w writingTranscoder) Transcode(_ context.Context, _, target string) error {
	if w.err != nil {
		return w.err
	}
	return os.WriteFile(target, []byte("encoded"), 0o644)
}

func stubInspect(t *testing.T, fn func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	t.Helper()
	orig := inspectMedia
	inspectMedia = fn
	t.Cleanup(func() { inspectMedia = orig })
}

func playable() ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "av1"}},
		Format:  ffprobe.Format{Duration: "42.0"},
	}
}

func TestVerifiedAcceptsPlayableOutput(t *testing.T) {
	var probed string
	stubInspect(t, func(_ context.Context, binary, path string) (ffprobe.Result, error) {
		probed = binary + " " + path
		return playable(), nil
	})
	target := filepath.Join(t.TempDir(), "out.mp4")

	v := NewVerified(writingTranscoder{}, "/opt/ffprobe", nil)
	if err := v.Transcode(context.Background(), "in.mp4", target); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if probed != "/opt/ffprobe "+target {
		t.Fatalf("probed %q", probed)
	}
	if v.Name() != "fake" || v.Extension() != "mp4" {
		t.Fatalf("wrapper should report inner backend, got %s/%s", v.Name(), v.Extension())
	}
}

func TestVerifiedRemovesUnplayableOutput(t *testing.T) {
	stubInspect(t, func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}, Format: ffprobe.Format{Duration: "5"}}, nil
	})
	target := filepath.Join(t.TempDir(), "out.mp4")

	err := NewVerified(writingTranscoder{}, "ffprobe", nil).Transcode(context.Background(), "in.mp4", target)
	if !errors.Is(err, services.ErrTranscode) || !errors.Is(err, ffprobe.ErrNotPlayable) {
		t.Fatalf("err = %v, want transcode failure wrapping ErrNotPlayable", err)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatal("unplayable target should be removed")
	}
}

func TestVerifiedRemovesOutputOnProbeFailure(t *testing.T) {
	stubInspect(t, func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, fmt.Errorf("ffprobe inspect: exit status 1: moov atom not found")
	})
	target := filepath.Join(t.TempDir(), "out.mp4")

	err := NewVerified(writingTranscoder{}, "ffprobe", nil).Transcode(context.Background(), "in.mp4", target)
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("err = %v, want ErrTranscode", err)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatal("target should be removed")
	}
}

func TestVerifiedSkipsWhenFFprobeMissing(t *testing.T) {
	stubInspect(t, func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, fmt.Errorf("ffprobe inspect: %w", &exec.Error{Name: "ffprobe", Err: exec.ErrNotFound})
	})
	target := filepath.Join(t.TempDir(), "out.mp4")

	if err := NewVerified(writingTranscoder{}, "ffprobe", nil).Transcode(context.Background(), "in.mp4", target); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("target should be kept: %v", err)
	}
}

func TestVerifiedPassesInnerFailureThrough(t *testing.T) {
	called := false
	stubInspect(t, func(context.Context, string, string) (ffprobe.Result, error) {
		called = true
		return playable(), nil
	})
	inner := errors.New("encode failed")

	err := NewVerified(writingTranscoder{err: inner}, "ffprobe", nil).Transcode(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, inner) || called {
		t.Fatalf("err = %v, probed = %v", err, called)
	}
}

func TestNewWrapsWhenVerifyEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.VerifyOutput = true
	tr, err := New(&cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tr.(*Verified); !ok {
		t.Fatalf("got %T, want *Verified", tr)
	}
	cfg.Encoder.VerifyOutput = false
	tr, err = New(&cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tr.(*FFmpeg); !ok {
		t.Fatalf("got %T, want *FFmpeg", tr)
	}
}
