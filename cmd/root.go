package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Anupamak004/Public-speaking-coach/configs"
	"github.com/Anupamak004/Public-speaking-coach/internal/app"
)

const (
	appName   = "speech-coach"
	envPrefix = "SPEECH_COACH"
)

var (
	configFile   string
	verbose      bool
	quiet        bool
	logLevel     string
	logFormat    string
	outputFormat string
	outputFile   string
	profileName  string
	profileFile  string
	configDir    string
	dataDir      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Speech acoustic analysis and filler detection",
	Long: `Analyze recorded speech for delivery coaching.

The engine splits a 16 kHz mono recording into voiced intervals, tracks
pitch, extracts MFCCs and spectral onsets, counts hesitation fillers
("um", "uh") and summarizes everything as a fixed 22-slot feature vector.

Key features:
- Filler counting with per-interval decisions
- Prosody summary: pitch, jitter, shimmer, speech rate, pauses
- WAV, raw PCM, HTTP and ffmpeg-transcoded inputs
- Concurrent batch analysis with aggregate statistics
- HTTP service for uploads
- Named analysis profiles for different rooms and speakers`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/speech-coach/speech-coach.yaml)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"config directory (default is $HOME/.config/speech-coach)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default is $HOME/.local/share/speech-coach)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"only log errors and suppress progress output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console",
		"log format (console, json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format (json, table, csv, yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output-file", "",
		"write results to this file instead of stdout")

	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "",
		"named analysis profile (default, strict, lenient, noisy-room)")
	rootCmd.PersistentFlags().StringVar(&profileFile, "profile-file", "",
		"YAML or JSON analysis profile to load")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	// A missing .env file is normal
	_ = godotenv.Load()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", appName))
		viper.AddConfigPath(filepath.Join("/etc", appName))
		viper.AddConfigPath("./configs")
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configFile, err)
		os.Exit(1)
	}

	// Defaults fill only what the file, environment and flags left unset
	configs.SetDefaults(viper.GetViper())
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper())
}

// flagKeys maps flag names to the viper keys they override. Flags not listed
// use their name with dashes replaced by underscores.
var flagKeys = map[string]string{
	"output":         "output_format",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"config-dir":     "config_dir",
	"data-dir":       "data_dir",
	"max-concurrent": "batch.max_concurrent",
	"item-timeout":   "batch.item_timeout",
	"fail-fast":      "batch.fail_fast",
	"addr":           "server.address",
	"mode":           "server.mode",
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// bindFlags binds each cobra flag to its associated viper key and environment variable
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := flagKey(f.Name)
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(key) {
			val := v.Get(key)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}

		if err := v.BindEnv(key, envPrefix+"_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// newAppContext builds the application context from the global flags.
// Leaving Config nil makes the app load it from viper, so flags bound to
// nested keys (batch.*, server.*, source.*) take effect.
func newAppContext() *app.Context {
	return &app.Context{
		ConfigFile:   viper.ConfigFileUsed(),
		ProfileFile:  profileFile,
		Profile:      profileName,
		OutputFile:   outputFile,
		OutputFormat: viper.GetString("output_format"),
		Verbose:      viper.GetBool("verbose"),
		Quiet:        quiet,
	}
}

// commandContext returns a context cancelled on SIGINT or SIGTERM
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// showProgress reports whether human progress output is wanted
func showProgress() bool {
	return !quiet && viper.GetBool("verbose")
}

func printTimings(timer *PerformanceTimer) {
	if !showProgress() {
		return
	}
	printSectionHeader("Performance Breakdown")
	for _, event := range timer.Events() {
		printInfo("%s: %v", eventTitle(event), timer.GetDuration(event))
	}
	printInfo("Total: %v", timer.GetTotalDuration())
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
