package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Anupamak004/Public-speaking-coach/internal/app"
)

var (
	analyzeVectorOnly bool
	analyzeTranscode  bool
)

// analyzeCmd runs the full acoustic analysis of one recording
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <recording>",
	Short: "Analyze one recording and print its feature vector",
	Long: `Analyze one recording: voiced intervals, pitch, MFCCs, onsets, fillers and
the prosody summary, reported alongside the 22-slot feature vector.

The recording may be a local WAV or raw 16-bit PCM file, an http(s) URL, or any
format ffmpeg can decode. Recordings must be 16 kHz mono; use --transcode to
resample other rates through ffmpeg.

Examples:
  # Full report as a table
  speech-coach analyze talk.wav

  # Only the feature vector, as JSON
  speech-coach analyze --vector-only -o json talk.wav

  # Resample a phone recording and use the noisy-room profile
  speech-coach analyze --transcode --profile noisy-room call.m4a`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeVectorOnly, "vector-only", false,
		"print only the named feature vector")
	analyzeCmd.Flags().BoolVar(&analyzeTranscode, "transcode", false,
		"decode and resample through ffmpeg")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	location := args[0]
	timer := NewPerformanceTimer()

	if showProgress() {
		printHeader("Speech Analysis", location)
	}

	timer.StartEvent("initialization")
	appCtx := newAppContext()
	appCtx.VectorOnly = analyzeVectorOnly
	appCtx.Transcode = analyzeTranscode

	application, err := app.NewApp(appCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	timer.EndEvent("initialization")

	ctx, cancel := commandContext()
	defer cancel()

	timer.StartEvent("analysis")
	err = application.RunAnalyze(ctx, location)
	timer.EndEvent("analysis")
	if err != nil {
		return err
	}

	printTimings(timer)
	return nil
}
