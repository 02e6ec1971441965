package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArchive()
	if err := c.normalizeEncoder(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("LIVEARCHIVE_WATCH_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WatchDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("LIVEARCHIVE_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.WatchDir, err = expandPath(strings.TrimSpace(c.Paths.WatchDir)); err != nil {
		return fmt.Errorf("paths.watch_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchive() {
	ext := strings.TrimSpace(c.Archive.Extension)
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = defaultExtension
	}
	c.Archive.Extension = ext

	c.Archive.ShowTitle = strings.TrimSpace(c.Archive.ShowTitle)
	if c.Archive.ShowTitle == "" {
		c.Archive.ShowTitle = defaultShowTitle
	}
	c.Archive.PrimaryTitle = strings.TrimSpace(c.Archive.PrimaryTitle)
	c.Archive.PrimaryTag = strings.TrimSpace(c.Archive.PrimaryTag)
	c.Archive.SecondaryTitle = strings.TrimSpace(c.Archive.SecondaryTitle)
	c.Archive.SecondaryTag = strings.TrimSpace(c.Archive.SecondaryTag)
	if c.Archive.PrimaryTag == "" {
		c.Archive.PrimaryTag = c.Archive.PrimaryTitle
	}
	if c.Archive.SecondaryTag == "" {
		c.Archive.SecondaryTag = c.Archive.SecondaryTitle
	}
}

func (c *Config) normalizeEncoder() error {
	c.Encoder.Backend = strings.ToLower(strings.TrimSpace(c.Encoder.Backend))
	if c.Encoder.Backend == "" {
		c.Encoder.Backend = BackendFFmpeg
	}
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		c.Encoder.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoder.HWAccel = strings.TrimSpace(c.Encoder.HWAccel)
	c.Encoder.VideoCodec = strings.TrimSpace(c.Encoder.VideoCodec)
	if c.Encoder.VideoCodec == "" {
		c.Encoder.VideoCodec = defaultVideoCodec
	}
	c.Encoder.Preset = strings.TrimSpace(c.Encoder.Preset)
	c.Encoder.Bitrate = strings.TrimSpace(c.Encoder.Bitrate)
	c.Encoder.MaxRate = strings.TrimSpace(c.Encoder.MaxRate)
	c.Encoder.BufSize = strings.TrimSpace(c.Encoder.BufSize)
	c.Encoder.AudioCodec = strings.TrimSpace(c.Encoder.AudioCodec)
	if c.Encoder.AudioCodec == "" {
		c.Encoder.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.Encoder.StagingDir) == "" {
		c.Encoder.StagingDir = defaultStagingDir
	}
	var err error
	if c.Encoder.StagingDir, err = expandPath(strings.TrimSpace(c.Encoder.StagingDir)); err != nil {
		return fmt.Errorf("encoder.staging_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueueCapacity <= 0 {
		c.Workflow.QueueCapacity = defaultQueueCapacity
	}
	if c.Workflow.LedgerCap <= 0 {
		c.Workflow.LedgerCap = defaultLedgerCap
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
