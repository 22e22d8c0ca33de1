package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Anupamak004/Public-speaking-coach/internal/app"
)

var fillersTranscode bool

// fillersCmd counts hesitation fillers without the full prosody pipeline
var fillersCmd = &cobra.Command{
	Use:   "fillers [flags] <recording>",
	Short: "Count filler sounds in one recording",
	Long: `Count hesitation fillers ("um", "uh") in one recording and report the rate
per minute. Each voiced interval gets a decision with the reason it was accepted
or rejected unless output.decisions is disabled.

Examples:
  speech-coach fillers talk.wav
  speech-coach fillers --profile strict -o json talk.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runFillers,
}

func init() {
	rootCmd.AddCommand(fillersCmd)

	fillersCmd.Flags().BoolVar(&fillersTranscode, "transcode", false,
		"decode and resample through ffmpeg")
}

func runFillers(cmd *cobra.Command, args []string) error {
	location := args[0]

	appCtx := newAppContext()
	appCtx.Transcode = fillersTranscode

	application, err := app.NewApp(appCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, cancel := commandContext()
	defer cancel()

	return application.RunFillers(ctx, location)
}
