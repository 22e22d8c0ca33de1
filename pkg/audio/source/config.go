package source

import (
	"maps"
	"time"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
)

// Config holds configuration for loading recordings
type Config struct {
	// SampleRate is the rate raw PCM is assumed to carry and the rate ffmpeg resamples to
	SampleRate int `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate"`
	// Channels of interleaved raw PCM input
	Channels int `json:"channels" yaml:"channels" mapstructure:"channels"`
	// Transcode routes local WAV files through ffmpeg so other rates are resampled
	Transcode  bool       `json:"transcode" yaml:"transcode" mapstructure:"transcode"`
	FFmpegPath string     `json:"ffmpeg_path" yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	HTTP       HTTPConfig `json:"http" yaml:"http" mapstructure:"http"`
}

// HTTPConfig holds HTTP settings for remote recordings
type HTTPConfig struct {
	UserAgent     string            `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration     `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	MaxRedirects  int               `json:"max_redirects" yaml:"max_redirects" mapstructure:"max_redirects"`
	MaxBodyBytes  int64             `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	CustomHeaders map[string]string `json:"custom_headers" yaml:"custom_headers" mapstructure:"custom_headers"`
}

// DefaultConfig returns the default source configuration
func DefaultConfig() *Config {
	return &Config{
		SampleRate: common.DefaultSampleRate,
		Channels:   1,
		FFmpegPath: "ffmpeg",
		HTTP: HTTPConfig{
			UserAgent:     "SpeechCoach/1.0",
			Timeout:       30 * time.Second,
			MaxRedirects:  3,
			MaxBodyBytes:  64 << 20,
			CustomHeaders: make(map[string]string),
		},
	}
}

// GetHTTPHeaders returns the headers sent with every download
func (c *HTTPConfig) GetHTTPHeaders() map[string]string {
	headers := map[string]string{
		"User-Agent": c.UserAgent,
		"Accept":     "audio/wav, audio/*;q=0.9, */*;q=0.5",
	}
	maps.Copy(headers, c.CustomHeaders)
	return headers
}

func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}

	cp := *c
	if cp.SampleRate <= 0 {
		cp.SampleRate = def.SampleRate
	}
	if cp.Channels <= 0 {
		cp.Channels = def.Channels
	}
	if cp.FFmpegPath == "" {
		cp.FFmpegPath = def.FFmpegPath
	}
	if cp.HTTP.UserAgent == "" {
		cp.HTTP.UserAgent = def.HTTP.UserAgent
	}
	if cp.HTTP.Timeout <= 0 {
		cp.HTTP.Timeout = def.HTTP.Timeout
	}
	if cp.HTTP.MaxRedirects <= 0 {
		cp.HTTP.MaxRedirects = def.HTTP.MaxRedirects
	}
	if cp.HTTP.MaxBodyBytes <= 0 {
		cp.HTTP.MaxBodyBytes = def.HTTP.MaxBodyBytes
	}
	cp.HTTP.CustomHeaders = maps.Clone(c.HTTP.CustomHeaders)
	return &cp
}
