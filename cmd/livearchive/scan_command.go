package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"livearchive/internal/daemonrun"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Archive recordings already in the watch directory, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := daemonrun.NewLogger(cfg, daemonrun.Options{Console: "stderr"})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			summary, err := daemonrun.Scan(cmd.Context(), cfg, logger)
			if err != nil {
				if daemonrun.IsLockHeld(err) {
					return fmt.Errorf("%w; stop it before running a manual scan", err)
				}
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]int{
					"candidates":       summary.Candidates,
					"already_archived": summary.Archived,
					"unparsable":       summary.Unparsable,
					"processed":        summary.Processed,
					"failed":           summary.Failed,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scan complete: %s\n", summary)
			if summary.Failed > 0 {
				return fmt.Errorf("%d recording(s) failed to archive", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}
