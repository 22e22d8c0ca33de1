package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/source"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("log_format") {
		v.Set("log_format", "console")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "table")
	}

	home, _ := os.UserHomeDir()
	if !v.IsSet("config_dir") {
		v.Set("config_dir", filepath.Join(home, ".config", "speech-coach"))
	}
	if !v.IsSet("data_dir") {
		v.Set("data_dir", filepath.Join(home, ".local", "share", "speech-coach"))
	}

	setAnalysisDefaults(v)
	setSourceDefaults(v)

	// Server defaults
	server := GetDefaultServerConfig()
	setIfUnset(v, "server.address", server.Address)
	setIfUnset(v, "server.read_timeout", server.ReadTimeout)
	setIfUnset(v, "server.write_timeout", server.WriteTimeout)
	setIfUnset(v, "server.shutdown_timeout", server.ShutdownTimeout)
	setIfUnset(v, "server.max_body_bytes", server.MaxBodyBytes)
	setIfUnset(v, "server.mode", server.Mode)

	// Batch defaults
	batch := GetDefaultBatchConfig()
	setIfUnset(v, "batch.max_concurrent", batch.MaxConcurrent)
	setIfUnset(v, "batch.item_timeout", batch.ItemTimeout)
	setIfUnset(v, "batch.fail_fast", batch.FailFast)

	// Output defaults
	output := GetDefaultOutputConfig()
	setIfUnset(v, "output.precision", output.Precision)
	setIfUnset(v, "output.include_metadata", output.IncludeMetadata)
	setIfUnset(v, "output.timestamps", output.Timestamps)
	setIfUnset(v, "output.decisions", output.Decisions)
}

// setAnalysisDefaults sets the analysis engine defaults key by key so a
// config file can override any single tunable
func setAnalysisDefaults(v *viper.Viper) {
	a := config.DefaultFeatureConfig()

	setIfUnset(v, "analysis.sample_rate", a.SampleRate)
	setIfUnset(v, "analysis.frame_length", a.FrameLength)
	setIfUnset(v, "analysis.hop_length", a.HopLength)
	setIfUnset(v, "analysis.window", a.Window)
	setIfUnset(v, "analysis.num_mel_filters", a.NumMelFilters)
	setIfUnset(v, "analysis.mfcc_coefficients", a.MFCCCoefficients)
	setIfUnset(v, "analysis.log_floor_db", a.LogFloorDB)
	setIfUnset(v, "analysis.silence_threshold", a.SilenceThreshold)
	setIfUnset(v, "analysis.max_workers", a.MaxWorkers)

	setIfUnset(v, "analysis.pitch.fmin", a.Pitch.FMin)
	setIfUnset(v, "analysis.pitch.fmax", a.Pitch.FMax)
	setIfUnset(v, "analysis.pitch.threshold", a.Pitch.Threshold)

	setIfUnset(v, "analysis.segment.top_db", a.Segment.TopDB)
	setIfUnset(v, "analysis.segment.min_voiced_frames", a.Segment.MinVoicedFrames)

	setIfUnset(v, "analysis.onset.pre_max", a.Onset.PreMax)
	setIfUnset(v, "analysis.onset.post_max", a.Onset.PostMax)
	setIfUnset(v, "analysis.onset.pre_avg", a.Onset.PreAvg)
	setIfUnset(v, "analysis.onset.post_avg", a.Onset.PostAvg)
	setIfUnset(v, "analysis.onset.wait", a.Onset.Wait)
	setIfUnset(v, "analysis.onset.delta", a.Onset.Delta)

	setIfUnset(v, "analysis.filler.min_duration", a.Filler.MinDuration)
	setIfUnset(v, "analysis.filler.max_duration", a.Filler.MaxDuration)
	setIfUnset(v, "analysis.filler.min_pitch_frames", a.Filler.MinPitchFrames)
	setIfUnset(v, "analysis.filler.min_pitch_mean", a.Filler.MinPitchMean)
	setIfUnset(v, "analysis.filler.max_pitch_mean", a.Filler.MaxPitchMean)
	setIfUnset(v, "analysis.filler.max_pitch_variance", a.Filler.MaxPitchVariance)
	setIfUnset(v, "analysis.filler.max_mfcc_variance", a.Filler.MaxMFCCVariance)
	setIfUnset(v, "analysis.filler.fmin", a.Filler.FMin)
	setIfUnset(v, "analysis.filler.fmax", a.Filler.FMax)
}

// setSourceDefaults sets recording loader defaults
func setSourceDefaults(v *viper.Viper) {
	s := source.DefaultConfig()

	setIfUnset(v, "source.sample_rate", s.SampleRate)
	setIfUnset(v, "source.channels", s.Channels)
	setIfUnset(v, "source.transcode", s.Transcode)
	setIfUnset(v, "source.ffmpeg_path", s.FFmpegPath)
	setIfUnset(v, "source.http.user_agent", s.HTTP.UserAgent)
	setIfUnset(v, "source.http.timeout", s.HTTP.Timeout)
	setIfUnset(v, "source.http.max_redirects", s.HTTP.MaxRedirects)
	setIfUnset(v, "source.http.max_body_bytes", s.HTTP.MaxBodyBytes)
	setIfUnset(v, "source.http.custom_headers", map[string]string{})
}

func setIfUnset(v *viper.Viper, key string, value any) {
	if !v.IsSet(key) {
		v.SetDefault(key, value)
	}
}

// GetDefaultConfig returns a complete default configuration
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		LogFormat:    "console",
		OutputFormat: "table",
		ConfigDir:    filepath.Join(home, ".config", "speech-coach"),
		DataDir:      filepath.Join(home, ".local", "share", "speech-coach"),
		Analysis:     *config.DefaultFeatureConfig(),
		Source:       *source.DefaultConfig(),
		Server:       GetDefaultServerConfig(),
		Batch:        GetDefaultBatchConfig(),
		Output:       GetDefaultOutputConfig(),
		Profiles:     GetDefaultProfiles(),
	}
}

// GetDefaultServerConfig returns default HTTP service settings
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:         ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    32 << 20,
		Mode:            "release",
	}
}

// GetDefaultBatchConfig returns default batch settings
func GetDefaultBatchConfig() BatchConfig {
	return BatchConfig{
		MaxConcurrent: 4,
		ItemTimeout:   2 * time.Minute,
		FailFast:      false,
	}
}

// GetDefaultOutputConfig returns default output settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Precision:       3,
		IncludeMetadata: true,
		Timestamps:      true,
		Decisions:       true,
	}
}

// GetDefaultProfiles returns the built-in analysis profiles
func GetDefaultProfiles() map[string]AnalysisProfile {
	base := config.DefaultFeatureConfig()

	strict := base.Filler
	strict.MinDuration = 0.25
	strict.MaxDuration = 0.8
	strict.MinPitchFrames = 8
	strict.MaxPitchVariance = 25
	strict.MaxMFCCVariance = 12

	lenient := base.Filler
	lenient.MinDuration = 0.15
	lenient.MaxDuration = 1.5
	lenient.MaxPitchVariance = 100
	lenient.MaxMFCCVariance = 30

	noisy := base.Segment
	noisy.TopDB = 20
	noisy.MinVoicedFrames = 4

	return map[string]AnalysisProfile{
		"default": {
			Name:        "default",
			Description: "Engine defaults",
		},
		"strict": {
			Name:        "strict",
			Description: "Counts only clearly sustained, steady fillers",
			Filler:      &strict,
		},
		"lenient": {
			Name:        "lenient",
			Description: "Accepts shorter, longer and less steady fillers",
			Filler:      &lenient,
		},
		"noisy-room": {
			Name:        "noisy-room",
			Description: "Tighter voice activity threshold for recordings with background noise",
			Segment:     &noisy,
		},
	}
}

// GetDefaultOutputConfigForFormat returns output config tuned for a format
func GetDefaultOutputConfigForFormat(format string) OutputConfig {
	base := GetDefaultOutputConfig()

	switch format {
	case "json":
		base.Precision = 6
	case "csv":
		base.IncludeMetadata = false
		base.Timestamps = false
		base.Decisions = false
	case "table":
		base.Precision = 2
	}

	return base
}
