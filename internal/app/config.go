package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Anupamak004/Public-speaking-coach/configs"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
)

// loadAndMergeConfig loads the base configuration, merges the profile file
// and CLI flags, and resolves the effective analysis configuration
func loadAndMergeConfig(ctx *Context) (*configs.Config, *config.FeatureConfig, error) {
	cfg := ctx.Config
	if cfg == nil {
		var err error
		cfg, err = configs.LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load base configuration: %w", err)
		}
	}

	if ctx.ProfileFile != "" {
		profile, err := loadProfileFromFile(ctx.ProfileFile, &cfg.Analysis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load analysis profile: %w", err)
		}
		if cfg.Profiles == nil {
			cfg.Profiles = make(map[string]configs.AnalysisProfile)
		}
		cfg.Profiles[profile.Name] = *profile
		if ctx.Profile == "" {
			ctx.Profile = profile.Name
		}
	}

	mergeConfig(cfg, ctx)

	if err := configs.ValidateConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	features := cfg.Analysis.Clone()
	if ctx.Profile != "" {
		profile, ok := cfg.Profile(ctx.Profile)
		if !ok {
			return nil, nil, fmt.Errorf("unknown analysis profile %q", ctx.Profile)
		}
		features = profile.ApplyTo(&cfg.Analysis)
	}

	return cfg, features, nil
}

// mergeConfig overrides configuration with CLI flags
func mergeConfig(cfg *configs.Config, ctx *Context) {
	if ctx.OutputFormat != "" {
		cfg.OutputFormat = ctx.OutputFormat
	}
	if ctx.MaxConcurrent > 0 {
		cfg.Batch.MaxConcurrent = ctx.MaxConcurrent
	}
	if ctx.Transcode {
		cfg.Source.Transcode = true
	}
	if ctx.Verbose {
		cfg.Verbose = true
	}
}

// loadProfileFromFile loads an analysis profile from a YAML or JSON file.
// Sections present in the file overlay base, so a profile may set only the
// thresholds it changes; absent sections leave base untouched.
func loadProfileFromFile(filePath string, base *config.FeatureConfig) (*configs.AnalysisProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	seed := base.Clone()
	profile := configs.AnalysisProfile{
		Pitch:   &seed.Pitch,
		Segment: &seed.Segment,
		Onset:   &seed.Onset,
		Filler:  &seed.Filler,
	}
	var present map[string]any

	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		err = decodeProfileYAML(data, &profile, &present)
	case ".json":
		err = decodeProfileJSON(data, &profile, &present)
	default:
		// Try YAML first, then JSON
		if err = decodeProfileYAML(data, &profile, &present); err != nil {
			err = decodeProfileJSON(data, &profile, &present)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", filePath, err)
	}

	if _, ok := present["pitch"]; !ok {
		profile.Pitch = nil
	}
	if _, ok := present["segment"]; !ok {
		profile.Segment = nil
	}
	if _, ok := present["onset"]; !ok {
		profile.Onset = nil
	}
	if _, ok := present["filler"]; !ok {
		profile.Filler = nil
	}

	if profile.Name == "" {
		name := filepath.Base(filePath)
		profile.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return &profile, nil
}

func decodeProfileYAML(data []byte, profile *configs.AnalysisProfile, present *map[string]any) error {
	if err := yaml.Unmarshal(data, present); err != nil {
		return err
	}
	return yaml.Unmarshal(data, profile)
}

func decodeProfileJSON(data []byte, profile *configs.AnalysisProfile, present *map[string]any) error {
	if err := json.Unmarshal(data, present); err != nil {
		return err
	}
	return json.Unmarshal(data, profile)
}

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	data, err := yaml.Marshal(configs.GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateConfigFile loads a configuration file over the defaults and validates it
func ValidateConfigFile(configFile string) (*configs.Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := configs.LoadConfigFrom(v)
	if err != nil {
		return nil, err
	}

	if err := configs.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
