package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Anupamak004/Public-speaking-coach/configs"
	"github.com/Anupamak004/Public-speaking-coach/internal/app"
)

// configCmd displays the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, generate and validate configuration",
	Long: `Display every configuration value after merging defaults, the config file,
SPEECH_COACH_* environment variables and flags.

Examples:
  speech-coach config
  speech-coach --config ./speech-coach.yaml config
  speech-coach config generate ~/.config/speech-coach/speech-coach.yaml
  speech-coach config validate ./speech-coach.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate <path>",
	Short: "Write the default configuration as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.GenerateExampleConfig(args[0]); err != nil {
			return err
		}
		printSuccess("Example configuration written to %s", args[0])
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.ValidateConfigFile(args[0])
		if err != nil {
			printResult("Configuration", false)
			return err
		}
		printResult("Configuration", true)
		printInfo("%d analysis profiles", len(cfg.Profiles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGenerateCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configs.ValidateConfig(cfg); err != nil {
		printWarning("Configuration is invalid: %v", err)
	}

	printSectionHeader("APPLICATION SETTINGS")
	printKeyValue("Config File", viper.ConfigFileUsed())
	printKeyValue("Verbose", fmt.Sprintf("%t", cfg.Verbose))
	printKeyValue("Log Level", cfg.LogLevel)
	printKeyValue("Log Format", cfg.LogFormat)
	printKeyValue("Output Format", cfg.OutputFormat)
	printKeyValue("Config Directory", cfg.ConfigDir)
	printKeyValue("Data Directory", cfg.DataDir)

	a := cfg.Analysis
	printSectionHeader("ANALYSIS")
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", a.SampleRate))
	printKeyValue("Frame / Hop", fmt.Sprintf("%d / %d samples", a.FrameLength, a.HopLength))
	printKeyValue("Window", a.Window)
	printKeyValue("Mel Filters", fmt.Sprintf("%d", a.NumMelFilters))
	printKeyValue("MFCC Coefficients", fmt.Sprintf("%d", a.MFCCCoefficients))
	printKeyValue("Silence Threshold", fmt.Sprintf("%g", a.SilenceThreshold))
	printKeyValue("Pitch Range", fmt.Sprintf("%g-%g Hz (threshold %g)", a.Pitch.FMin, a.Pitch.FMax, a.Pitch.Threshold))
	printKeyValue("Segment Top dB", fmt.Sprintf("%g", a.Segment.TopDB))
	printKeyValue("Onset Wait / Delta", fmt.Sprintf("%d / %g", a.Onset.Wait, a.Onset.Delta))
	printKeyValue("Filler Duration", fmt.Sprintf("%g-%g s", a.Filler.MinDuration, a.Filler.MaxDuration))
	printKeyValue("Filler Pitch Mean", fmt.Sprintf("%g-%g Hz", a.Filler.MinPitchMean, a.Filler.MaxPitchMean))

	printSectionHeader("SOURCE")
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", cfg.Source.SampleRate))
	printKeyValue("Channels", fmt.Sprintf("%d", cfg.Source.Channels))
	printKeyValue("Transcode", fmt.Sprintf("%t", cfg.Source.Transcode))
	printKeyValue("FFmpeg", cfg.Source.FFmpegPath)
	printKeyValue("HTTP Timeout", cfg.Source.HTTP.Timeout.String())

	printSectionHeader("SERVER")
	printKeyValue("Address", cfg.Server.Address)
	printKeyValue("Mode", cfg.Server.Mode)
	printKeyValue("Read / Write Timeout", fmt.Sprintf("%v / %v", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout))
	printKeyValue("Max Body", fmt.Sprintf("%d bytes", cfg.Server.MaxBodyBytes))

	printSectionHeader("BATCH")
	printKeyValue("Max Concurrent", fmt.Sprintf("%d", cfg.Batch.MaxConcurrent))
	printKeyValue("Item Timeout", cfg.Batch.ItemTimeout.String())
	printKeyValue("Fail Fast", fmt.Sprintf("%t", cfg.Batch.FailFast))

	printSectionHeader(fmt.Sprintf("PROFILES (%d)", len(cfg.Profiles)))
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := cfg.Profiles[name]
		printKeyValue("  "+name, p.Description)
		var sections []string
		if p.Pitch != nil {
			sections = append(sections, "pitch")
		}
		if p.Segment != nil {
			sections = append(sections, "segment")
		}
		if p.Onset != nil {
			sections = append(sections, "onset")
		}
		if p.Filler != nil {
			sections = append(sections, "filler")
		}
		if len(sections) > 0 {
			printKeyValue("    Overrides", strings.Join(sections, ", "))
		}
	}

	return nil
}
