package workflow_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"livearchive/internal/config"
	"livearchive/internal/journal"
	"livearchive/internal/stability"
	"livearchive/internal/workflow"
)

type stubTranscoder struct {
	ext   string
	err   error
	calls []string
}

func (s *stubTranscoder) Name() string { return "stub" }

func (s *stubTranscoder) Extension() string {
	if s.ext == "" {
		return "mp4"
	}
	return s.ext
}

func (s *stubTranscoder) Transcode(ctx context.Context, source, target string) error {
	s.calls = append(s.calls, target)
	if s.err != nil {
		return s.err
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString("encoded")
	return err
}

type failure struct {
	source string
	stage  string
	err    error
}

type stubNotifier struct {
	mu       sync.Mutex
	archived []string
	failures []failure
}

func (s *stubNotifier) NotifyArchived(_ context.Context, title, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived = append(s.archived, title)
	return nil
}

func (s *stubNotifier) NotifyFailed(_ context.Context, sourcePath, stage string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{source: sourcePath, stage: stage, err: err})
	return nil
}

func (s *stubNotifier) TestNotification(context.Context) error { return nil }

type memoryRecorder struct {
	runs map[string]journal.Run
}

func (m *memoryRecorder) Save(_ context.Context, run journal.Run) error {
	if m.runs == nil {
		m.runs = make(map[string]journal.Run)
	}
	m.runs[run.ID] = run
	return nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func fastDetector(opts ...stability.Option) *stability.Detector {
	opts = append([]stability.Option{stability.WithSleep(noSleep)}, opts...)
	return stability.NewDetector(stability.Options{RequiredChecks: 1, MaxWait: 0}, nil, opts...)
}

type harness struct {
	cfg        *config.Config
	manager    *workflow.Manager
	transcoder *stubTranscoder
	notifier   *stubNotifier
	recorder   *memoryRecorder
}

func newHarness(t *testing.T, cfg *config.Config, transcoder *stubTranscoder, opts ...workflow.ManagerOption) *harness {
	t.Helper()
	if transcoder == nil {
		transcoder = &stubTranscoder{}
	}
	h := &harness{
		cfg:        cfg,
		transcoder: transcoder,
		notifier:   &stubNotifier{},
		recorder:   &memoryRecorder{},
	}
	base := []workflow.ManagerOption{
		workflow.WithDetector(fastDetector()),
		workflow.WithNotifier(h.notifier),
		workflow.WithRecorder(h.recorder),
	}
	mgr, err := workflow.NewManager(cfg, nil, transcoder, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	h.manager = mgr
	return h
}

type fakeInfo struct {
	size    int64
	modTime time.Time
}

func (f fakeInfo) Name() string       { return "recording" }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() os.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return f.modTime }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }
