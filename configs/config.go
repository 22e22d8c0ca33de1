package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/source"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" yaml:"config_dir" json:"config_dir"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`

	// Analysis engine tunables
	Analysis config.FeatureConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`

	// Recording loading
	Source source.Config `mapstructure:"source" yaml:"source" json:"source"`

	// HTTP service
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch analysis
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Named analysis profiles
	Profiles map[string]AnalysisProfile `mapstructure:"profiles" yaml:"profiles" json:"profiles"`
}

// ServerConfig contains HTTP service settings
type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address" json:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes" validate:"gt=0"`
	Mode            string        `mapstructure:"mode" yaml:"mode" json:"mode" validate:"oneof=debug release test"`
}

// BatchConfig contains batch execution settings
type BatchConfig struct {
	MaxConcurrent int           `mapstructure:"max_concurrent" yaml:"max_concurrent" json:"max_concurrent" validate:"gt=0"`
	ItemTimeout   time.Duration `mapstructure:"item_timeout" yaml:"item_timeout" json:"item_timeout" validate:"gte=0"`
	FailFast      bool          `mapstructure:"fail_fast" yaml:"fail_fast" json:"fail_fast"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision       int  `mapstructure:"precision" yaml:"precision" json:"precision" validate:"gte=0,lte=12"`
	IncludeMetadata bool `mapstructure:"include_metadata" yaml:"include_metadata" json:"include_metadata"`
	Timestamps      bool `mapstructure:"timestamps" yaml:"timestamps" json:"timestamps"`
	Decisions       bool `mapstructure:"decisions" yaml:"decisions" json:"decisions"`
}

// AnalysisProfile overrides parts of the analysis configuration. Nil sections
// leave the base configuration untouched.
type AnalysisProfile struct {
	Name        string                `mapstructure:"name" yaml:"name" json:"name"`
	Description string                `mapstructure:"description" yaml:"description" json:"description"`
	Pitch       *config.PitchConfig   `mapstructure:"pitch" yaml:"pitch,omitempty" json:"pitch,omitempty"`
	Segment     *config.SegmentConfig `mapstructure:"segment" yaml:"segment,omitempty" json:"segment,omitempty"`
	Onset       *config.OnsetConfig   `mapstructure:"onset" yaml:"onset,omitempty" json:"onset,omitempty"`
	Filler      *config.FillerConfig  `mapstructure:"filler" yaml:"filler,omitempty" json:"filler,omitempty"`
}

// ApplyTo returns a copy of base with the profile's sections swapped in
func (p *AnalysisProfile) ApplyTo(base *config.FeatureConfig) *config.FeatureConfig {
	out := base.Clone()
	if p == nil {
		return out
	}
	if p.Pitch != nil {
		out.Pitch = *p.Pitch
	}
	if p.Segment != nil {
		out.Segment = *p.Segment
	}
	if p.Onset != nil {
		out.Onset = *p.Onset
	}
	if p.Filler != nil {
		out.Filler = *p.Filler
	}
	return out
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom loads configuration from v, filling unset keys with defaults
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		cfg.Profiles = GetDefaultProfiles()
	}

	return cfg, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	if err := cfg.Analysis.Validate(); err != nil {
		return fmt.Errorf("invalid analysis configuration: %w", err)
	}

	switch cfg.OutputFormat {
	case "json", "yaml", "csv", "table":
	default:
		return fmt.Errorf("unsupported output format: %q", cfg.OutputFormat)
	}

	if cfg.Source.SampleRate != cfg.Analysis.SampleRate {
		return fmt.Errorf("source sample rate %d does not match analysis sample rate %d",
			cfg.Source.SampleRate, cfg.Analysis.SampleRate)
	}

	if err := config.ValidateStruct("server configuration", &cfg.Server); err != nil {
		return err
	}
	if err := config.ValidateStruct("batch configuration", &cfg.Batch); err != nil {
		return err
	}
	if err := config.ValidateStruct("output configuration", &cfg.Output); err != nil {
		return err
	}

	for name, profile := range cfg.Profiles {
		if err := profile.ApplyTo(&cfg.Analysis).Validate(); err != nil {
			return fmt.Errorf("invalid profile %q: %w", name, err)
		}
	}

	return nil
}

// Profile looks up a named profile
func (c *Config) Profile(name string) (*AnalysisProfile, bool) {
	p, ok := c.Profiles[name]
	if !ok {
		return nil, false
	}
	return &p, true
}
