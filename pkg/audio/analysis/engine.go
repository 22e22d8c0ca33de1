package analysis

import (
	"fmt"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analyzers"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/extractors"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// EngineConfig contains configuration for the analysis engine
type EngineConfig struct {
	Features *config.FeatureConfig
	Logger   logging.Logger
}

// Engine turns mono waveforms into feature vectors and filler counts. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	cfg       *config.FeatureConfig
	framer    *analyzers.Framer
	spectral  *analyzers.SpectralAnalyzer
	cepstral  *extractors.CepstralExtractor
	pitch     *analyzers.PitchTracker
	segmenter *analyzers.VoiceActivitySegmenter
	onsets    *analyzers.OnsetDetector
	fillers   *extractors.FillerClassifier
	prosody   *extractors.ProsodyAggregator
	logger    logging.Logger
}

// NewEngine validates the configuration and precomputes the analysis window,
// mel filter bank and DCT basis
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg == nil {
		cfg = &EngineConfig{}
	}

	features := config.DefaultFeatureConfig()
	if cfg.Features != nil {
		features = cfg.Features.Clone()
	}
	if err := features.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	spectral, err := analyzers.NewSpectralAnalyzer(features)
	if err != nil {
		return nil, fmt.Errorf("failed to create spectral analyzer: %w", err)
	}
	spectral.WithLogger(logger)

	cepstral, err := extractors.NewCepstralExtractor(features)
	if err != nil {
		return nil, fmt.Errorf("failed to create cepstral extractor: %w", err)
	}
	cepstral.WithLogger(logger)

	return &Engine{
		cfg:       features,
		framer:    analyzers.NewFramer(features.FrameLength, features.HopLength),
		spectral:  spectral,
		cepstral:  cepstral,
		pitch:     analyzers.NewPitchTracker(features, features.Pitch.FMin, features.Pitch.FMax).WithLogger(logger),
		segmenter: analyzers.NewVoiceActivitySegmenter(features).WithLogger(logger),
		onsets:    analyzers.NewOnsetDetector(features).WithLogger(logger),
		fillers:   extractors.NewFillerClassifier(features, spectral, cepstral).WithLogger(logger),
		prosody:   extractors.NewProsodyAggregator(features),
		logger: logger.WithFields(logging.Fields{
			"component": "analysis_engine",
		}),
	}, nil
}

// Config returns a copy of the engine's feature configuration
func (e *Engine) Config() *config.FeatureConfig {
	return e.cfg.Clone()
}

// AnalyzeUtterance returns the 22-slot feature vector of a recording
func (e *Engine) AnalyzeUtterance(samples []float64, sampleRate int) (extractors.FeatureVector, error) {
	report, err := e.Analyze(samples, sampleRate)
	if err != nil {
		return extractors.FeatureVector{}, err
	}
	return report.Vector, nil
}

// DetectFillers counts filler sounds without running the full prosody pipeline
func (e *Engine) DetectFillers(samples []float64, sampleRate int) (extractors.FillerDetectionResult, error) {
	if err := common.CheckContract(samples, sampleRate, e.cfg.SampleRate); err != nil {
		return extractors.FillerDetectionResult{}, err
	}
	if len(samples) == 0 {
		return extractors.FillerDetectionResult{}, nil
	}

	intervals := e.segmenter.Split(samples)
	return e.fillers.Detect(samples, intervals), nil
}

// AnalyzeWaveform analyses a decoded waveform
func (e *Engine) AnalyzeWaveform(w *common.Waveform) (*Report, error) {
	if w == nil {
		return e.Analyze(nil, e.cfg.SampleRate)
	}
	report, err := e.Analyze(w.Samples, w.SampleRate)
	if err != nil {
		return nil, err
	}
	report.Source = w.Source
	return report, nil
}

// Analyze runs every component and returns the vector with its intermediate results
func (e *Engine) Analyze(samples []float64, sampleRate int) (*Report, error) {
	if err := common.CheckContract(samples, sampleRate, e.cfg.SampleRate); err != nil {
		e.logger.Debug("Rejected waveform", logging.Fields{
			"sample_rate": sampleRate,
			"code":        common.ErrorCode(err),
		})
		return nil, err
	}

	start := time.Now()
	report := newReport(e.cfg, len(samples))
	if len(samples) == 0 {
		report.Timings.Total = time.Since(start)
		return report, nil
	}

	rmsStart := time.Now()
	frameRMS := e.framer.FrameRMS(samples)
	report.Timings.Energy = time.Since(rmsStart)

	var (
		intervals []analyzers.VoicedInterval
		fillers   extractors.FillerDetectionResult
		contour   *analyzers.PitchContour
		cepstral  *extractors.CepstralMatrix
		onsets    *analyzers.OnsetResult
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		t := time.Now()
		intervals = e.segmenter.SplitRMS(frameRMS, len(samples))
		fillers = e.fillers.Detect(samples, intervals)
		report.Timings.Fillers = time.Since(t)
	})
	wg.Go(func() {
		t := time.Now()
		contour = e.pitch.Track(samples)
		report.Timings.Pitch = time.Since(t)
	})
	wg.Go(func() {
		t := time.Now()
		spectrogram := e.spectral.ComputeSTFT(samples)
		logMel := e.cepstral.LogMel(spectrogram.Power)
		cepstral = e.cepstral.FromLogMel(logMel)
		onsets = e.onsets.Detect(logMel)
		report.Timings.Spectral = time.Since(t)
	})
	wg.Wait()

	report.Prosody = e.prosody.Aggregate(extractors.ProsodyInputs{
		Samples:  samples,
		Pitch:    contour,
		FrameRMS: frameRMS,
		Onsets:   onsets,
		Cepstral: cepstral,
	})
	report.Fillers = fillers
	report.Intervals = intervals
	report.OnsetFrames = onsets.Frames
	report.Pitch = contour
	report.Vector = extractors.Assemble(report.Prosody, fillers)
	report.Timings.Total = time.Since(start)

	e.logger.Debug("Utterance analysed", logging.Fields{
		"samples":     len(samples),
		"frames":      report.NumFrames,
		"intervals":   len(intervals),
		"fillers":     fillers.Count,
		"onsets":      len(onsets.Frames),
		"valid_pitch": report.Prosody.ValidPitchFrames,
		"duration_ms": report.Timings.Total.Milliseconds(),
	})

	return report, nil
}
