package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"livearchive/internal/config"
	"livearchive/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Inspect Drapto encode work directories",
	}
	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))
	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List encode work directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stagingDir := strings.TrimSpace(cfg.Encoder.StagingDir)
			dirs, err := staging.List(stagingDir)
			if err != nil {
				return fmt.Errorf("list staging directories: %w", err)
			}
			var total int64
			for _, dir := range dirs {
				total += dir.Size
			}

			if jsonOutput {
				if dirs == nil {
					dirs = []staging.DirInfo{}
				}
				return writeJSON(cmd, map[string]any{
					"staging_dir":      stagingDir,
					"directories":      dirs,
					"total_size_bytes": total,
				})
			}

			out := cmd.OutOrStdout()
			if cfg.Encoder.Backend != config.BackendDrapto {
				fmt.Fprintf(out, "Encoder backend is %s; staging is only used by drapto\n", cfg.Encoder.Backend)
			}
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No staging directories found")
				return nil
			}
			fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				rows = append(rows, []string{
					dir.Name,
					formatDuration(time.Since(dir.ModTime).Truncate(time.Minute)),
					humanBytes(dir.Size),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Directory", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), humanBytes(total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print directories as JSON")
	return cmd
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove abandoned encode work directories",
		Long: `Remove encode work directories left behind by an interrupted Drapto encode.

Only directories older than --max-age are removed. Pass --max-age 0 to remove
every work directory; do that only while the daemon is stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}
			result := staging.CleanStale(cmd.Context(), cfg.Encoder.StagingDir, maxAge, nil)

			errs := make([]string, 0, len(result.Errors))
			for _, e := range result.Errors {
				errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Err))
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"removed":         len(result.Removed),
					"reclaimed_bytes": result.Reclaimed,
					"errors":          errs,
				})
			}

			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 && len(errs) == 0 {
				fmt.Fprintln(out, "No staging directories to clean")
				return nil
			}
			fmt.Fprintf(out, "Removed %d staging directories (%s)\n", len(result.Removed), humanBytes(result.Reclaimed))
			for _, e := range errs {
				fmt.Fprintf(out, "  Error: %s\n", e)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d staging directories could not be removed", len(errs))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", staging.DefaultMaxAge, "Only remove directories older than this")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func humanBytes(v int64) string {
	if v < 0 {
		v = 0
	}
	return humanize.IBytes(uint64(v))
}
