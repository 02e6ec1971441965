package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WatchDir  string `toml:"watch_dir"`
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
}

// Archive describes the recordings the pipeline accepts and how outputs are titled.
// Titles are read once at startup; the naming template itself is fixed.
type Archive struct {
	Extension      string `toml:"extension"`
	ShowTitle      string `toml:"show_title"`
	PrimaryTitle   string `toml:"primary_title"`
	PrimaryTag     string `toml:"primary_tag"`
	SecondaryTitle string `toml:"secondary_title"`
	SecondaryTag   string `toml:"secondary_tag"`
}

// Stability contains the write-completion polling parameters.
type Stability struct {
	InitialDelaySeconds  int `toml:"initial_delay_seconds"`
	PollIntervalSeconds  int `toml:"poll_interval_seconds"`
	RequiredStableChecks int `toml:"required_stable_checks"`
	SettleSeconds        int `toml:"settle_seconds"`
	MaxWaitSeconds       int `toml:"max_wait_seconds"`
}

// Encoder contains transcode backend settings.
type Encoder struct {
	Backend      string `toml:"backend"`
	FFmpegBinary string `toml:"ffmpeg_binary"`
	HWAccel      string `toml:"hwaccel"`
	VideoCodec   string `toml:"video_codec"`
	Preset       string `toml:"preset"`
	Bitrate      string `toml:"bitrate"`
	MaxRate      string `toml:"maxrate"`
	BufSize      string `toml:"bufsize"`
	AudioCodec   string `toml:"audio_codec"`
	StagingDir   string `toml:"staging_dir"`
	VerifyOutput bool   `toml:"verify_output"`
}

// Workflow contains queue and ledger sizing.
type Workflow struct {
	QueueCapacity int  `toml:"queue_capacity"`
	LedgerCap     int  `toml:"ledger_cap"`
	StartupScan   bool `toml:"startup_scan"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Archived       bool   `toml:"archived"`
	Errors         bool   `toml:"errors"`
}

// Journal controls the run history database.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for livearchive.
//
// Configuration sections by subsystem:
//   - Paths: watched directory, archive root, and state directory
//   - Archive: accepted extension, show title, and category titles/tags
//   - Stability: write-completion polling
//   - Encoder: ffmpeg or drapto transcode settings
//   - Workflow: event queue capacity and dedup ledger cap
//   - Notifications: ntfy push notification settings
//   - Journal: run history database
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Archive       Archive       `toml:"archive"`
	Stability     Stability     `toml:"stability"`
	Encoder       Encoder       `toml:"encoder"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Journal       Journal       `toml:"journal"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("livearchive.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the watched directory, the archive root, and the
// state directory. Failure here is fatal for the daemon.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WatchDir, c.Paths.OutputDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Encoder.Backend == BackendDrapto {
		if err := os.MkdirAll(c.Encoder.StagingDir, 0o755); err != nil {
			return fmt.Errorf("create encoder staging directory %q: %w", c.Encoder.StagingDir, err)
		}
	}
	return nil
}

// LogPath returns the daemon log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "livearchive.log")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "livearchive.lock")
}

// PIDPath returns where the running daemon records its process ID.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "livearchive.pid")
}

// JournalPath returns the run history database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// InitialDelay returns the grace period before the first stability check.
func (s Stability) InitialDelay() time.Duration {
	return time.Duration(s.InitialDelaySeconds) * time.Second
}

// PollInterval returns the delay between stability checks.
func (s Stability) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// Settle returns the buffer applied after stability is reached.
func (s Stability) Settle() time.Duration {
	return time.Duration(s.SettleSeconds) * time.Second
}

// MaxWait returns the upper bound on a single stability wait.
func (s Stability) MaxWait() time.Duration {
	return time.Duration(s.MaxWaitSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
