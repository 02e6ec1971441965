package config

const (
	defaultConfigPath           = "~/.config/livearchive/config.toml"
	defaultWatchDir             = "~/Sync/Livestreams"
	defaultOutputDir            = "~/archive/livestreams"
	defaultStateDir             = "~/.local/share/livearchive"
	defaultStagingDir           = "~/.local/share/livearchive/staging"
	defaultExtension            = "mp4"
	defaultShowTitle            = "LiveStreams"
	defaultPrimaryTitle         = "Divine Worship Service - RTSDA"
	defaultPrimaryTag           = "Divine Worship Service"
	defaultSecondaryTitle       = "Afternoon Program - RTSDA"
	defaultSecondaryTag         = "Afternoon Program"
	defaultInitialDelaySeconds  = 10
	defaultPollIntervalSeconds  = 2
	defaultRequiredStableChecks = 15
	defaultSettleSeconds        = 30
	defaultMaxWaitSeconds       = 4 * 60 * 60
	defaultFFmpegBinary         = "ffmpeg"
	defaultHWAccel              = "qsv"
	defaultVideoCodec           = "av1_qsv"
	defaultPreset               = "4"
	defaultBitrate              = "6M"
	defaultMaxRate              = "12M"
	defaultBufSize              = "24M"
	defaultAudioCodec           = "copy"
	defaultQueueCapacity        = 100
	defaultLedgerCap            = 1000
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"

	// minQuiescenceSeconds is the shortest span of unchanged size and mtime
	// accepted as evidence that the producer has finished writing.
	minQuiescenceSeconds = 30
)

// Encoder backends.
const (
	BackendFFmpeg = "ffmpeg"
	BackendDrapto = "drapto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir:  defaultWatchDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Archive: Archive{
			Extension:      defaultExtension,
			ShowTitle:      defaultShowTitle,
			PrimaryTitle:   defaultPrimaryTitle,
			PrimaryTag:     defaultPrimaryTag,
			SecondaryTitle: defaultSecondaryTitle,
			SecondaryTag:   defaultSecondaryTag,
		},
		Stability: Stability{
			InitialDelaySeconds:  defaultInitialDelaySeconds,
			PollIntervalSeconds:  defaultPollIntervalSeconds,
			RequiredStableChecks: defaultRequiredStableChecks,
			SettleSeconds:        defaultSettleSeconds,
			MaxWaitSeconds:       defaultMaxWaitSeconds,
		},
		Encoder: Encoder{
			Backend:      BackendFFmpeg,
			FFmpegBinary: defaultFFmpegBinary,
			HWAccel:      defaultHWAccel,
			VideoCodec:   defaultVideoCodec,
			Preset:       defaultPreset,
			Bitrate:      defaultBitrate,
			MaxRate:      defaultMaxRate,
			BufSize:      defaultBufSize,
			AudioCodec:   defaultAudioCodec,
			StagingDir:   defaultStagingDir,
			VerifyOutput: true,
		},
		Workflow: Workflow{
			QueueCapacity: defaultQueueCapacity,
			LedgerCap:     defaultLedgerCap,
			StartupScan:   true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Archived:       true,
			Errors:         true,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
