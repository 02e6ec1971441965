package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"livearchive/internal/journal"
)

func seedJournal(t *testing.T, path string, runs ...journal.Run) {
	t.Helper()
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer store.Close()
	for _, run := range runs {
		if err := store.Save(context.Background(), run); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestHistoryListsRunsNewestFirst(t *testing.T) {
	env := setupCLITestEnv(t)
	started := time.Date(2024, 12, 27, 19, 0, 0, 0, time.UTC)
	seedJournal(t, env.cfg.JournalPath(),
		journal.Run{
			ID:         "run-1",
			SourcePath: "/watch/2024-12-27_18-42-36.mp4",
			State:      "done",
			Category:   "primary",
			TargetPath: "/archive/2024/12-December/Primary | December 27 2024.mp4",
			StartedAt:  started,
			FinishedAt: started.Add(90 * time.Minute),
		},
		journal.Run{
			ID:           "run-2",
			SourcePath:   "/watch/notes.mp4",
			State:        "failed",
			ErrorKind:    "format",
			ErrorMessage: "format error: naming: parse capture time",
			StartedAt:    started.Add(time.Hour),
			FinishedAt:   started.Add(time.Hour + time.Second),
		},
	)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	requireContains(t, lines[0], "failed")
	requireContains(t, lines[0], "format: format error")
	requireContains(t, lines[1], "Primary | December 27 2024.mp4")

	out, _, err = runCLI(t, []string{"history", "--json", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var entries []historyEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(entries) != 1 || entries[0].ID != "run-2" || entries[0].ErrorKind != "format" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestRenderHistoryTable(t *testing.T) {
	started := time.Date(2024, 12, 27, 19, 0, 0, 0, time.UTC)
	table := renderHistoryTable([]journal.Run{{
		ID:         "run-1",
		SourcePath: "/watch/2024-12-27_18-42-36.mp4",
		State:      "done",
		TargetPath: "/archive/Primary | December 27 2024.mp4",
		StartedAt:  started,
		FinishedAt: started.Add(45 * time.Second),
	}})
	for _, want := range []string{"Started", "State", "2024-12-27_18-42-36.mp4", "Primary | December 27 2024.mp4", "45s"} {
		requireContains(t, table, want)
	}
	if strings.Contains(table, "STARTED") {
		t.Fatalf("headers should keep their casing:\n%s", table)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"Name", "Size"}, [][]string{{"encode-1"}}, []columnAlignment{alignLeft, alignRight})
	requireContains(t, out, "Name")
	requireContains(t, out, "encode-1")
	if got := strings.Count(out, "\n") + 1; got != 5 {
		t.Fatalf("table has %d lines, want 5:\n%s", got, out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("table without headers should render empty")
	}
}

func TestHistorySummaryCountsStates(t *testing.T) {
	env := setupCLITestEnv(t)
	started := time.Date(2024, 12, 27, 19, 0, 0, 0, time.UTC)
	seedJournal(t, env.cfg.JournalPath(),
		journal.Run{ID: "run-1", SourcePath: "/watch/a.mp4", State: "done", StartedAt: started},
		journal.Run{ID: "run-2", SourcePath: "/watch/b.mp4", State: "done", StartedAt: started.Add(time.Minute)},
		journal.Run{ID: "run-3", SourcePath: "/watch/c.mp4", State: "failed", StartedAt: started.Add(2 * time.Minute)},
	)

	out, _, err := runCLI(t, []string{"history", "--summary"}, env.configPath)
	if err != nil {
		t.Fatalf("history --summary: %v", err)
	}
	want := "done: 2\nfailed: 1\ntotal: 3\n"
	if out != want {
		t.Fatalf("summary = %q, want %q", out, want)
	}

	out, _, err = runCLI(t, []string{"history", "--summary", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history --summary --json: %v", err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if counts["done"] != 2 || counts["failed"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestHistoryShowRun(t *testing.T) {
	env := setupCLITestEnv(t)
	started := time.Date(2024, 12, 27, 19, 0, 0, 0, time.UTC)
	seedJournal(t, env.cfg.JournalPath(), journal.Run{
		ID:           "run-9",
		SourcePath:   "/watch/notes.mp4",
		State:        "failed",
		ErrorKind:    "format",
		ErrorMessage: "format error: naming: parse capture time",
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Second),
	})

	out, _, err := runCLI(t, []string{"history", "show", "run-9"}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "/watch/notes.mp4")
	requireContains(t, out, "format: format error")
	requireContains(t, out, "2s")

	if _, _, err := runCLI(t, []string{"history", "show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h30m"},
		{50 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
