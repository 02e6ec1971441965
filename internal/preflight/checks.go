package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"livearchive/internal/config"
	"livearchive/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the configured encoder
// backend runs. Both the daemon and the CLI check command use this list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	ffmpeg := deps.ResolveFFmpegPath(cfg.Encoder.FFmpegBinary)
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Required for encoding",
		},
	}
	if cfg.Encoder.Backend == config.BackendDrapto {
		requirements[0].Command = deps.ResolveFFmpegPath("")
		requirements[0].Description = "Used by Drapto for encoding"
		requirements = append(requirements, deps.Requirement{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobePath(requirements[0].Command),
			Description: "Used by Drapto for media inspection",
		})
	} else {
		description := "Useful for inspecting archived recordings"
		if cfg.Encoder.VerifyOutput {
			description = "Verifies encoded archives; verification is skipped without it"
		}
		requirements = append(requirements, deps.Requirement{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobePath(ffmpeg),
			Description: description,
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}
