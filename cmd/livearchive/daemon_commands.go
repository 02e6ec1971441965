package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"livearchive/internal/daemonctl"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := daemonctl.Probe(cfg)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"running":    status.Running,
					"pid":        status.PID,
					"lock_path":  status.LockPath,
					"watch_dir":  cfg.Paths.WatchDir,
					"output_dir": cfg.Paths.OutputDir,
				})
			}
			out := cmd.OutOrStdout()
			switch {
			case !status.Running:
				fmt.Fprintln(out, "Daemon: not running")
			case status.PID > 0:
				fmt.Fprintf(out, "Daemon: running (pid %d)\n", status.PID)
			default:
				fmt.Fprintln(out, "Daemon: running (a one-shot scan holds the lock)")
			}
			fmt.Fprintf(out, "Watch: %s\n", cfg.Paths.WatchDir)
			fmt.Fprintf(out, "Archive: %s\n", cfg.Paths.OutputDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := daemonctl.Stop(cfg, grace)
			out := cmd.OutOrStdout()
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Daemon (pid %d) did not stop within %s and was killed\n", result.PID, grace)
				return nil
			}
			fmt.Fprintf(out, "Daemon (pid %d) stopped\n", result.PID)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 30*time.Second, "How long to wait for a clean shutdown before killing")
	return cmd
}
