package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Anupamak004/Public-speaking-coach/configs"
	"github.com/Anupamak004/Public-speaking-coach/internal/batch"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analysis"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/extractors"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/source"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
	"github.com/Anupamak004/Public-speaking-coach/pkg/output"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile    string // Application configuration file, already read by viper
	ProfileFile   string // Analysis profile file (optional)
	Profile       string // Named analysis profile
	OutputFile    string
	OutputFormat  string
	MaxConcurrent int
	Transcode     bool
	VectorOnly    bool
	Verbose       bool
	Quiet         bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
	Stdout io.Writer
}

// App handles the analysis application lifecycle
type App struct {
	ctx      *Context
	config   *configs.Config
	analysis *config.FeatureConfig
	engine   *analysis.Engine
	sources  *source.Factory
	logger   logging.Logger
}

// NewApp loads configuration, sets up logging and builds the engine once
func NewApp(ctx *Context) (*App, error) {
	cfg, features, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = cfg

	logger, err := setupLogging(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	ctx.Logger = logger

	engine, err := analysis.NewEngine(&analysis.EngineConfig{
		Features: features,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis engine: %w", err)
	}

	if ctx.Stdout == nil {
		ctx.Stdout = os.Stdout
	}

	logger.Debug("Speech analysis application initialized", logging.Fields{
		"config_file":   ctx.ConfigFile,
		"profile":       ctx.Profile,
		"output_format": cfg.OutputFormat,
		"transcode":     cfg.Source.Transcode,
	})

	return &App{
		ctx:      ctx,
		config:   cfg,
		analysis: features,
		engine:   engine,
		sources:  source.NewFactory(&cfg.Source, logger),
		logger:   logger,
	}, nil
}

// Engine returns the analysis engine
func (app *App) Engine() *analysis.Engine {
	return app.engine
}

// Sources returns the recording loader
func (app *App) Sources() *source.Factory {
	return app.sources
}

// Config returns the merged configuration
func (app *App) Config() *configs.Config {
	return app.config
}

// RunAnalyze loads one recording and writes its full report
func (app *App) RunAnalyze(ctx context.Context, location string) error {
	report, err := app.analyze(ctx, location)
	if err != nil {
		return err
	}

	if app.ctx.VectorOnly {
		return app.outputResults(report.NamedVector())
	}

	out := map[string]any{
		"report": app.cleanReport(report),
		"slots":  report.NamedVector(),
	}
	app.addMetadata(out)
	return app.outputResults(out)
}

// RunFillers loads one recording and writes its filler detection result
func (app *App) RunFillers(ctx context.Context, location string) error {
	w, err := app.sources.Load(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", location, err)
	}

	result, err := app.engine.DetectFillers(w.Samples, w.SampleRate)
	if err != nil {
		return fmt.Errorf("filler detection failed for %s: %w", location, err)
	}

	out := map[string]any{
		"source":           location,
		"duration_seconds": w.Seconds(),
		"fillers":          app.cleanFillers(result),
	}
	app.addMetadata(out)
	return app.outputResults(out)
}

// RunBatch analyzes many recordings concurrently and writes per-file vectors
// plus an aggregate summary. It fails only when every recording failed.
func (app *App) RunBatch(ctx context.Context, locations []string) error {
	orchestrator := batch.NewOrchestrator(app.sources, app.engine, &batch.Config{
		MaxConcurrent: app.config.Batch.MaxConcurrent,
		ItemTimeout:   app.config.Batch.ItemTimeout,
		FailFast:      app.config.Batch.FailFast,
		Logger:        app.logger,
	})

	summary, runErr := orchestrator.Run(ctx, locations)
	if summary == nil {
		return fmt.Errorf("batch execution failed: %w", runErr)
	}

	rows := make([]map[string]any, 0, len(summary.Results))
	for _, res := range summary.Results {
		rows = append(rows, batchRow(res))
	}

	var err error
	if app.config.OutputFormat == "csv" {
		err = app.outputResults(rows)
	} else {
		out := map[string]any{
			"run_id":           summary.RunID,
			"successful":       summary.Successful,
			"failed":           summary.Failed,
			"total_duration_s": summary.TotalDuration.Seconds(),
			"results":          rows,
			"metrics":          summary.Metrics,
		}
		app.addMetadata(out)
		err = app.outputResults(out)
	}
	if err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 && summary.Successful == 0 {
		return fmt.Errorf("all %d recordings failed", summary.Failed)
	}
	return nil
}

func (app *App) analyze(ctx context.Context, location string) (*analysis.Report, error) {
	w, err := app.sources.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", location, err)
	}

	report, err := app.engine.AnalyzeWaveform(w)
	if err != nil {
		return nil, fmt.Errorf("analysis failed for %s: %w", location, err)
	}

	if app.ctx.Verbose {
		app.logger.Info("Analysis stage timings", logging.Fields{
			"energy_ms":   report.Timings.Energy.Milliseconds(),
			"fillers_ms":  report.Timings.Fillers.Milliseconds(),
			"pitch_ms":    report.Timings.Pitch.Milliseconds(),
			"spectral_ms": report.Timings.Spectral.Milliseconds(),
			"total_ms":    report.Timings.Total.Milliseconds(),
		})
	}
	return report, nil
}

// cleanReport applies the output settings to a report copy
func (app *App) cleanReport(report *analysis.Report) *analysis.Report {
	cp := *report
	cp.Fillers = app.cleanFillers(report.Fillers)
	return &cp
}

func (app *App) cleanFillers(result extractors.FillerDetectionResult) extractors.FillerDetectionResult {
	if !app.config.Output.Decisions {
		result.Decisions = nil
	}
	return result
}

func (app *App) addMetadata(out map[string]any) {
	if app.config.Output.Timestamps {
		out["timestamp"] = time.Now()
	}
	if app.config.Output.IncludeMetadata {
		out["configuration"] = map[string]any{
			"profile":        app.ctx.Profile,
			"vector_version": extractors.FeatureVectorVersion,
			"sample_rate":    app.analysis.SampleRate,
			"transcode":      app.config.Source.Transcode,
		}
	}
}

func batchRow(res *batch.Result) map[string]any {
	row := map[string]any{"location": res.Location}
	if res.Err() != nil {
		row["error"] = res.Error
		row["error_code"] = res.ErrorCode
		return row
	}
	row["duration_seconds"] = res.Report.DurationSeconds
	for name, v := range res.Report.NamedVector() {
		row[name] = v
	}
	return row
}

// outputResults formats data and writes it to the output file or stdout
func (app *App) outputResults(data any) error {
	formatter := output.NewFormatter(app.config.OutputFormat, app.config.Output.Precision)

	formatted, err := formatter.Format(data, true)
	if err != nil {
		// non-finite floats cannot be JSON encoded
		if strings.Contains(err.Error(), "unsupported value") {
			formatted, err = formatter.Format(output.Sanitize(data), true)
		}
		if err != nil {
			return fmt.Errorf("failed to format output data: %w", err)
		}
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formatted)
	}

	_, err = app.ctx.Stdout.Write(formatted)
	return err
}

// writeToFile writes data to the specified output file
func (app *App) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context, cfg *configs.Config) (logging.Logger, error) {
	if ctx.Logger != nil {
		return ctx.Logger, nil
	}

	level := cfg.LogLevel
	switch {
	case ctx.Verbose || cfg.Verbose:
		level = "debug"
	case ctx.Quiet:
		level = "error"
	}

	logger, err := logging.NewLogger(logging.Config{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}
