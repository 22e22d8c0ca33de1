package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Anupamak004/Public-speaking-coach/internal/app"
	"github.com/Anupamak004/Public-speaking-coach/internal/server"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

var (
	serveAddress   string
	serveMode      string
	serveTranscode bool
)

// serveCmd runs the HTTP analysis service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis over HTTP",
	Long: `Run an HTTP service sharing one analysis engine across requests.

Routes:
  GET  /healthz      liveness
  POST /v1/analyze   full report and named vector
  POST /v1/fillers   filler count, rate and decisions

Upload the recording as the raw request body or as the "file" field of a
multipart form. Query parameters: vector_only=true, decisions=false.

Examples:
  speech-coach serve --addr :9000
  curl --data-binary @talk.wav -H 'Content-Type: audio/wav' localhost:9000/v1/fillers`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddress, "addr", ":8080",
		"listen address")
	serveCmd.Flags().StringVar(&serveMode, "mode", "release",
		"gin mode (debug, release, test)")
	serveCmd.Flags().BoolVar(&serveTranscode, "transcode", false,
		"decode uploads through ffmpeg")

	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.mode", serveCmd.Flags().Lookup("mode"))
}

func runServe(cmd *cobra.Command, args []string) error {
	appCtx := newAppContext()
	appCtx.Transcode = serveTranscode

	application, err := app.NewApp(appCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	cfg := application.Config()
	srv := server.New(cfg.Server, application.Engine(), application.Sources(), appCtx.Logger)

	appCtx.Logger.Info("Starting speech analysis service", logging.Fields{
		"addr":           srv.Addr(),
		"profile":        appCtx.Profile,
		"max_body_bytes": cfg.Server.MaxBodyBytes,
		"transcode":      cfg.Source.Transcode,
	})

	ctx, cancel := commandContext()
	defer cancel()

	return srv.Run(ctx)
}
