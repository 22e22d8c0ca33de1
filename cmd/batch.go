package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Anupamak004/Public-speaking-coach/internal/app"
)

var (
	batchMaxConcurrent int
	batchItemTimeout   time.Duration
	batchFailFast      bool
	batchTranscode     bool
	batchListFile      string
)

// batchCmd analyzes many recordings concurrently
var batchCmd = &cobra.Command{
	Use:   "batch [flags] <recordings...>",
	Short: "Analyze many recordings concurrently",
	Long: `Analyze many recordings with a bounded worker pool. Each recording succeeds
or fails on its own; the summary carries per-file feature vectors and mean,
median and spread per vector slot over the successful recordings.

With -o csv the output is one row per recording.

Examples:
  speech-coach batch talks/*.wav
  speech-coach batch --max-concurrent 8 --item-timeout 30s -o csv talks/*.wav
  speech-coach batch --list recordings.txt --fail-fast`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && batchListFile == "" {
			return fmt.Errorf("requires at least one recording or --list")
		}
		return nil
	},
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchMaxConcurrent, "max-concurrent", 0,
		"maximum recordings analyzed at once (default from config)")
	batchCmd.Flags().DurationVar(&batchItemTimeout, "item-timeout", 2*time.Minute,
		"per-recording timeout")
	batchCmd.Flags().BoolVar(&batchFailFast, "fail-fast", false,
		"stop the batch at the first failure")
	batchCmd.Flags().BoolVar(&batchTranscode, "transcode", false,
		"decode and resample through ffmpeg")
	batchCmd.Flags().StringVar(&batchListFile, "list", "",
		"file with one recording per line")

	_ = viper.BindPFlag("batch.item_timeout", batchCmd.Flags().Lookup("item-timeout"))
	_ = viper.BindPFlag("batch.fail_fast", batchCmd.Flags().Lookup("fail-fast"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	locations := append([]string{}, args...)
	if batchListFile != "" {
		listed, err := readLocationList(batchListFile)
		if err != nil {
			return err
		}
		locations = append(locations, listed...)
	}

	timer := NewPerformanceTimer()
	if showProgress() {
		printHeader("Batch Analysis", fmt.Sprintf("%d recordings", len(locations)))
	}

	appCtx := newAppContext()
	appCtx.MaxConcurrent = batchMaxConcurrent
	appCtx.Transcode = batchTranscode

	application, err := app.NewApp(appCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, cancel := commandContext()
	defer cancel()

	timer.StartEvent("batch")
	err = application.RunBatch(ctx, locations)
	timer.EndEvent("batch")
	if err != nil {
		if showProgress() {
			printError("%v", err)
		}
		return err
	}

	printTimings(timer)
	return nil
}

// readLocationList reads one location per line, skipping blanks and # comments
func readLocationList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording list: %w", err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recording list: %w", err)
	}
	return out, nil
}
