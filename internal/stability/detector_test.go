package stability

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"livearchive/internal/services"
)

type fakeInfo struct {
	size    int64
	modTime time.Time
}

func (f fakeInfo) Name() string       { return "recording.mp4" }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return f.modTime }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

// scriptedStat replays the given observations, repeating the last one forever.
type scriptedStat struct {
	steps []fakeInfo
	calls int
}

func (s *scriptedStat) stat(string) (os.FileInfo, error) {
	idx := s.calls
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	s.calls++
	return s.steps[idx], nil
}

type sleepRecorder struct {
	durations []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.durations = append(r.durations, d)
	return ctx.Err()
}

var base = time.Date(2024, time.December, 27, 18, 42, 36, 0, time.UTC)

func testOptions() Options {
	return Options{
		InitialDelay:   10 * time.Second,
		PollInterval:   2 * time.Second,
		RequiredChecks: 3,
		Settle:         30 * time.Second,
		MaxWait:        40 * time.Second,
	}
}

func TestWaitSucceedsAfterExactCheckCount(t *testing.T) {
	stat := &scriptedStat{steps: []fakeInfo{
		{size: 100, modTime: base},
		{size: 200, modTime: base.Add(time.Second)},
		{size: 300, modTime: base.Add(2 * time.Second)},
		{size: 300, modTime: base.Add(2 * time.Second)},
	}}
	sleeper := &sleepRecorder{}
	d := NewDetector(testOptions(), nil, WithStat(stat.stat), WithSleep(sleeper.sleep))

	res, err := d.Wait(context.Background(), "/watch/recording.mp4")
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	// Three growing observations, then three unchanged ones.
	if res.Checks != 6 || stat.calls != 6 {
		t.Fatalf("checks = %d (stat calls %d), want 6", res.Checks, stat.calls)
	}
	if res.Size != 300 {
		t.Fatalf("size = %d, want 300", res.Size)
	}

	want := []time.Duration{10 * time.Second}
	for i := 0; i < 5; i++ {
		want = append(want, 2*time.Second)
	}
	want = append(want, 30*time.Second)
	if len(sleeper.durations) != len(want) {
		t.Fatalf("sleeps = %v, want %v", sleeper.durations, want)
	}
	for i := range want {
		if sleeper.durations[i] != want[i] {
			t.Fatalf("sleep %d = %v, want %v", i, sleeper.durations[i], want[i])
		}
	}
}

func TestWaitNeverSucceedsEarly(t *testing.T) {
	for required := 1; required <= 5; required++ {
		stat := &scriptedStat{steps: []fakeInfo{{size: 42, modTime: base}}}
		opts := testOptions()
		opts.RequiredChecks = required
		d := NewDetector(opts, nil, WithStat(stat.stat), WithSleep((&sleepRecorder{}).sleep))

		res, err := d.Wait(context.Background(), "file")
		if err != nil {
			t.Fatalf("required=%d: %v", required, err)
		}
		// The first observation only establishes the baseline.
		if res.Checks != required+1 {
			t.Fatalf("required=%d: checks = %d, want %d", required, res.Checks, required+1)
		}
	}
}

func TestWaitResetsOnMtimeChangeAndZeroSize(t *testing.T) {
	stat := &scriptedStat{steps: []fakeInfo{
		{size: 0, modTime: base},
		{size: 0, modTime: base},
		{size: 0, modTime: base},
		{size: 10, modTime: base},
		{size: 10, modTime: base},
		{size: 10, modTime: base.Add(time.Second)},
		{size: 10, modTime: base.Add(time.Second)},
	}}
	d := NewDetector(testOptions(), nil, WithStat(stat.stat), WithSleep((&sleepRecorder{}).sleep))

	res, err := d.Wait(context.Background(), "file")
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	// Zero-size polls never count; the mtime bump at check 6 resets the
	// count so stability arrives at check 6+3.
	if res.Checks != 9 {
		t.Fatalf("checks = %d, want 9", res.Checks)
	}
}

func TestWaitTimesOutWhileGrowing(t *testing.T) {
	size := int64(0)
	stat := func(string) (os.FileInfo, error) {
		size += 1024
		return fakeInfo{size: size, modTime: base.Add(time.Duration(size))}, nil
	}
	d := NewDetector(testOptions(), nil, WithStat(stat), WithSleep((&sleepRecorder{}).sleep))

	_, err := d.Wait(context.Background(), "file")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if got := size / 1024; got != int64(d.MaxChecks()) {
		t.Fatalf("stat calls = %d, want %d", got, d.MaxChecks())
	}
}

func TestMaxChecksMatchesWindow(t *testing.T) {
	d := NewDetector(Options{PollInterval: 2 * time.Second, RequiredChecks: 15, MaxWait: 4 * time.Hour}, nil)
	if got := d.MaxChecks(); got != 7200 {
		t.Fatalf("MaxChecks = %d, want 7200", got)
	}
}

func TestWaitFailsImmediatelyWhenFileDisappears(t *testing.T) {
	calls := 0
	stat := func(string) (os.FileInfo, error) {
		calls++
		if calls == 3 {
			return nil, fs.ErrNotExist
		}
		return fakeInfo{size: 5, modTime: base}, nil
	}
	d := NewDetector(testOptions(), nil, WithStat(stat), WithSleep((&sleepRecorder{}).sleep))

	_, err := d.Wait(context.Background(), "file")
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("stat calls = %d, want 3", calls)
	}
}

func TestWaitHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDetector(testOptions(), nil, WithSleep((&sleepRecorder{}).sleep))

	_, err := d.Wait(ctx, "file")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitOnRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024-12-27_18-42-36.mp4")
	if err := os.WriteFile(path, []byte("complete recording"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := Options{PollInterval: time.Millisecond, RequiredChecks: 2, MaxWait: time.Second}
	d := NewDetector(opts, nil)

	res, err := d.Wait(context.Background(), path)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if res.Size != int64(len("complete recording")) {
		t.Fatalf("size = %d", res.Size)
	}
}

func TestTrackerRequiresBaseline(t *testing.T) {
	tr := newTracker(1)
	if tr.observe(observation{size: 1, modTime: base}) {
		t.Fatal("first observation must not be stable")
	}
	if !tr.observe(observation{size: 1, modTime: base}) {
		t.Fatal("second identical observation should be stable with threshold 1")
	}
}
