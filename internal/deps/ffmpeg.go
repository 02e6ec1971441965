package deps

import (
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultFFmpeg = "ffmpeg"

// ResolveFFmpegPath returns the ffmpeg command to run. A configured value
// containing a path separator is used as-is; a bare name is looked up on PATH
// and returned unchanged when the lookup fails so callers can report it.
func ResolveFFmpegPath(configured string) string {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = defaultFFmpeg
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if resolved, err := exec.LookPath(name); err == nil {
		return resolved
	}
	return name
}

// ResolveFFprobePath returns the ffprobe that sits next to ffmpeg when one
// exists there, and "ffprobe" otherwise.
func ResolveFFprobePath(ffmpegPath string) string {
	if strings.ContainsRune(ffmpegPath, filepath.Separator) {
		candidate := filepath.Join(filepath.Dir(ffmpegPath), "ffprobe")
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "ffprobe"
}
