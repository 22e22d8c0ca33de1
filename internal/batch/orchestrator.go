package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analysis"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

const tracerName = "github.com/Anupamak004/Public-speaking-coach/internal/batch"

// Loader turns a location into a waveform
type Loader interface {
	Load(ctx context.Context, location string) (*common.Waveform, error)
}

// Analyzer produces a report for a waveform
type Analyzer interface {
	AnalyzeWaveform(w *common.Waveform) (*analysis.Report, error)
}

// Config controls a batch run
type Config struct {
	MaxConcurrent int
	ItemTimeout   time.Duration
	FailFast      bool
	Logger        logging.Logger
}

// Result is the outcome for one recording
type Result struct {
	Index     int              `json:"index"`
	Location  string           `json:"location"`
	Report    *analysis.Report `json:"report,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Duration  time.Duration    `json:"duration"`

	err error
}

// Err returns the error that failed this item, if any
func (r *Result) Err() error {
	return r.err
}

// Summary is the outcome of a batch run
type Summary struct {
	RunID         string        `json:"run_id"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	TotalDuration time.Duration `json:"total_duration"`
	Successful    int           `json:"successful"`
	Failed        int           `json:"failed"`
	Results       []*Result     `json:"results"`
	Metrics       *Metrics      `json:"metrics"`
}

// Orchestrator analyzes many recordings with bounded concurrency
type Orchestrator struct {
	loader   Loader
	analyzer Analyzer
	cfg      Config
	metrics  *MetricsCalculator
	logger   logging.Logger
}

// NewOrchestrator creates a batch orchestrator
func NewOrchestrator(loader Loader, analyzer Analyzer, cfg *Config) *Orchestrator {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
	if c.Logger == nil {
		c.Logger = logging.NewDefaultLogger()
	}

	return &Orchestrator{
		loader:   loader,
		analyzer: analyzer,
		cfg:      c,
		metrics:  NewMetricsCalculator(c.Logger),
		logger:   c.Logger.WithFields(logging.Fields{"component": "batch_orchestrator"}),
	}
}

// Run analyzes every location. Results keep input order. Per-item failures are
// recorded on the result; with FailFast the first failure cancels the rest and
// is returned alongside the partial summary.
func (o *Orchestrator) Run(ctx context.Context, locations []string) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Results:   make([]*Result, len(locations)),
	}

	logger := o.logger.WithFields(logging.Fields{"run_id": summary.RunID})
	logger.Debug("Starting batch analysis", logging.Fields{
		"items":          len(locations),
		"max_concurrent": o.cfg.MaxConcurrent,
		"fail_fast":      o.cfg.FailFast,
	})

	p := pool.New().WithContext(ctx).WithMaxGoroutines(o.cfg.MaxConcurrent)
	if o.cfg.FailFast {
		p = p.WithCancelOnError().WithFirstError()
	}

	for i, location := range locations {
		p.Go(func(ctx context.Context) error {
			res := o.analyzeOne(ctx, i, location)
			summary.Results[i] = res
			if o.cfg.FailFast {
				return res.err
			}
			return nil
		})
	}
	runErr := p.Wait()

	summary.EndTime = time.Now()
	summary.TotalDuration = summary.EndTime.Sub(summary.StartTime)
	for _, res := range summary.Results {
		if res == nil || res.err != nil {
			summary.Failed++
		} else {
			summary.Successful++
		}
	}
	summary.Metrics = o.metrics.Calculate(summary.Results)

	logger.Debug("Batch analysis completed", logging.Fields{
		"successful":       summary.Successful,
		"failed":           summary.Failed,
		"total_duration_s": summary.TotalDuration.Seconds(),
	})

	if runErr != nil {
		return summary, fmt.Errorf("batch stopped after failure: %w", runErr)
	}
	return summary, nil
}

func (o *Orchestrator) analyzeOne(ctx context.Context, index int, location string) *Result {
	start := time.Now()
	res := &Result{Index: index, Location: location}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "batch.analyze")
	span.SetAttributes(
		attribute.String("speech.location", location),
		attribute.Int("batch.index", index),
	)
	defer span.End()

	if o.cfg.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ItemTimeout)
		defer cancel()
	}

	report, err := o.load(ctx, location)
	res.Duration = time.Since(start)
	if err != nil {
		res.err = err
		res.Error = err.Error()
		res.ErrorCode = common.ErrorCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, res.ErrorCode)

		o.logger.Warn("Recording analysis failed", logging.Fields{
			"location":   location,
			"error":      err.Error(),
			"error_code": res.ErrorCode,
		})
		return res
	}

	res.Report = report
	span.SetAttributes(
		attribute.Int("speech.filler_count", report.Fillers.Count),
		attribute.Float64("speech.duration_s", report.DurationSeconds),
	)
	return res
}

func (o *Orchestrator) load(ctx context.Context, location string) (*analysis.Report, error) {
	w, err := o.loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return o.analyzer.AnalyzeWaveform(w)
}
