package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateStability(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WatchDir == "" {
		return errors.New("paths.watch_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if filepath.Clean(c.Paths.WatchDir) == filepath.Clean(c.Paths.OutputDir) {
		return errors.New("paths.output_dir must differ from paths.watch_dir")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if strings.ContainsAny(c.Archive.Extension, `/\`) {
		return fmt.Errorf("archive.extension %q must not contain path separators", c.Archive.Extension)
	}
	if c.Archive.PrimaryTitle == "" {
		return errors.New("archive.primary_title must be set")
	}
	if c.Archive.SecondaryTitle == "" {
		return errors.New("archive.secondary_title must be set")
	}
	if c.Archive.PrimaryTitle == c.Archive.SecondaryTitle {
		return errors.New("archive.primary_title and archive.secondary_title must differ")
	}
	return nil
}

func (c *Config) validateStability() error {
	s := c.Stability
	if s.InitialDelaySeconds < 0 {
		return errors.New("stability.initial_delay_seconds must be zero or positive")
	}
	if s.PollIntervalSeconds <= 0 {
		return errors.New("stability.poll_interval_seconds must be positive")
	}
	if s.RequiredStableChecks <= 0 {
		return errors.New("stability.required_stable_checks must be positive")
	}
	if s.PollIntervalSeconds*s.RequiredStableChecks < minQuiescenceSeconds {
		return fmt.Errorf("stability.poll_interval_seconds * stability.required_stable_checks must cover at least %d seconds", minQuiescenceSeconds)
	}
	if s.SettleSeconds < 0 {
		return errors.New("stability.settle_seconds must be zero or positive")
	}
	if s.MaxWaitSeconds <= s.PollIntervalSeconds*s.RequiredStableChecks {
		return errors.New("stability.max_wait_seconds must exceed the required quiescence window")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	switch c.Encoder.Backend {
	case BackendFFmpeg:
		if c.Encoder.FFmpegBinary == "" {
			return errors.New("encoder.ffmpeg_binary must be set")
		}
	case BackendDrapto:
		if c.Encoder.StagingDir == "" {
			return errors.New("encoder.staging_dir must be set for the drapto backend")
		}
	default:
		return fmt.Errorf("encoder.backend: unsupported value %q (use %q or %q)", c.Encoder.Backend, BackendFFmpeg, BackendDrapto)
	}
	return nil
}
