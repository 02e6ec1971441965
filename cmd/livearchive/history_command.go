package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"livearchive/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool
	var summary bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent archive runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if summary {
				counts, err := store.CountByState(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, counts)
				}
				writeStateCounts(cmd.OutOrStdout(), counts)
				return nil
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, historyJSON(runs))
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			if isTerminalWriter(out) {
				fmt.Fprintln(out, renderHistoryTable(runs))
				return nil
			}
			writeHistoryPlain(out, runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print run counts per final state")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one archive run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			if jsonOutput {
				return writeJSON(cmd, historyJSON([]journal.Run{*run})[0])
			}
			writeRunDetail(cmd.OutOrStdout(), *run)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func openJournal(ctx *commandContext) (*journal.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("run journal is disabled (journal.enabled = false)")
	}
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return store, nil
}

// writeStateCounts prints one "state: count" line per state, busiest first.
func writeStateCounts(out io.Writer, counts map[string]int) {
	if len(counts) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	states := make([]string, 0, len(counts))
	total := 0
	for state, n := range counts {
		states = append(states, state)
		total += n
	}
	sort.Slice(states, func(i, j int) bool {
		if counts[states[i]] != counts[states[j]] {
			return counts[states[i]] > counts[states[j]]
		}
		return states[i] < states[j]
	})
	for _, state := range states {
		fmt.Fprintf(out, "%s: %d\n", state, counts[state])
	}
	fmt.Fprintf(out, "total: %d\n", total)
}

func writeRunDetail(out io.Writer, run journal.Run) {
	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		fmt.Fprintf(out, "%-10s %s\n", label+":", value)
	}
	field("Run", run.ID)
	field("State", run.State)
	field("Recording", run.SourcePath)
	field("Category", run.Category)
	field("Archive", run.TargetPath)
	field("Sidecar", run.SidecarPath)
	field("Backend", run.Backend)
	field("Started", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	field("Elapsed", elapsed(run))
	if run.ErrorMessage != "" {
		field("Error", historyResult(run))
	}
}

func renderHistoryTable(runs []journal.Run) string {
	headers := []string{"Started", "State", "Recording", "Archive", "Elapsed"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.State,
			filepath.Base(run.SourcePath),
			historyResult(run),
			elapsed(run),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
}

// writeHistoryPlain prints one tab-separated line per run for piping.
func writeHistoryPlain(out io.Writer, runs []journal.Run) {
	for _, run := range runs {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
			run.StartedAt.UTC().Format(time.RFC3339),
			run.State,
			run.SourcePath,
			historyResult(run),
		)
	}
}

func historyResult(run journal.Run) string {
	if run.ErrorMessage != "" {
		return strings.TrimSpace(run.ErrorKind + ": " + run.ErrorMessage)
	}
	if run.TargetPath != "" {
		return filepath.Base(run.TargetPath)
	}
	return "-"
}

func elapsed(run journal.Run) string {
	if !run.Finished() {
		return "running"
	}
	d := run.FinishedAt.Sub(run.StartedAt)
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	return formatDuration(d)
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}

type historyEntry struct {
	ID         string `json:"id"`
	Source     string `json:"source_path"`
	State      string `json:"state"`
	Category   string `json:"category,omitempty"`
	Target     string `json:"target_path,omitempty"`
	Sidecar    string `json:"sidecar_path,omitempty"`
	Backend    string `json:"backend,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

func historyJSON(runs []journal.Run) []historyEntry {
	entries := make([]historyEntry, 0, len(runs))
	for _, run := range runs {
		entry := historyEntry{
			ID:        run.ID,
			Source:    run.SourcePath,
			State:     run.State,
			Category:  run.Category,
			Target:    run.TargetPath,
			Sidecar:   run.SidecarPath,
			Backend:   run.Backend,
			ErrorKind: run.ErrorKind,
			Error:     run.ErrorMessage,
			StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
		}
		if run.Finished() {
			entry.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}
	return entries
}
