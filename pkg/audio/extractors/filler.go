package extractors

import (
	"github.com/sourcegraph/conc/iter"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analyzers"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// FillerReason explains a filler decision
type FillerReason string

const (
	ReasonFiller            FillerReason = "filler"
	ReasonDuration          FillerReason = "duration"
	ReasonInsufficientPitch FillerReason = "insufficient_pitch"
	ReasonPitchMean         FillerReason = "pitch_mean"
	ReasonPitchVariance     FillerReason = "pitch_variance"
	ReasonSpectralVariance  FillerReason = "spectral_variance"
)

// FillerDecision is the classification of one voiced interval
type FillerDecision struct {
	Interval         analyzers.VoicedInterval `json:"interval"`
	DurationSeconds  float64                  `json:"duration_seconds"`
	IsFiller         bool                     `json:"is_filler"`
	Reason           FillerReason             `json:"reason"`
	ValidPitchFrames int                      `json:"valid_pitch_frames"`
	PitchMean        float64                  `json:"pitch_mean"`
	PitchVariance    float64                  `json:"pitch_variance"`
	MFCCVariance     float64                  `json:"mfcc_variance"`
}

// FillerDetectionResult summarises filler sounds over a recording
type FillerDetectionResult struct {
	Count         int              `json:"count"`
	RatePerMinute float64          `json:"rate_per_minute"`
	Decisions     []FillerDecision `json:"decisions,omitempty"`
}

// FillerRate converts a count over totalSeconds into a per-minute rate, 0 for no duration
func FillerRate(count int, totalSeconds float64) float64 {
	if totalSeconds <= 0 {
		return 0
	}
	return float64(count) / totalSeconds * 60
}

// FillerClassifier applies the duration, pitch stability and spectral
// stability rules to voiced intervals
type FillerClassifier struct {
	cfg         config.FillerConfig
	sampleRate  int
	frameLength int
	maxWorkers  int
	pitch       *analyzers.PitchTracker
	spectral    *analyzers.SpectralAnalyzer
	cepstral    *CepstralExtractor
	logger      logging.Logger
}

// NewFillerClassifier creates a classifier sharing the engine's spectral and cepstral stages
func NewFillerClassifier(cfg *config.FeatureConfig, spectral *analyzers.SpectralAnalyzer, cepstral *CepstralExtractor) *FillerClassifier {
	fc := &FillerClassifier{
		cfg:         cfg.Filler,
		sampleRate:  cfg.SampleRate,
		frameLength: cfg.FrameLength,
		maxWorkers:  cfg.MaxWorkers,
		pitch:       analyzers.NewPitchTracker(cfg, cfg.Filler.FMin, cfg.Filler.FMax),
		spectral:    spectral,
		cepstral:    cepstral,
	}
	return fc.WithLogger(logging.NewDefaultLogger())
}

// WithLogger routes the classifier's logs, and those of its own pitch
// tracker, to l
func (fc *FillerClassifier) WithLogger(l logging.Logger) *FillerClassifier {
	fc.pitch.WithLogger(l)
	fc.logger = l.WithFields(logging.Fields{
		"component": "filler_classifier",
	})
	return fc
}

// steadyCore trims one frame length from each end of an interval. Interval
// edges lie up to one frame outside the sound itself, and a frame straddling
// an abrupt start or stop spreads energy across every mel band.
func (fc *FillerClassifier) steadyCore(segment []float64) []float64 {
	edge := fc.frameLength
	if len(segment)-2*edge < edge {
		return segment
	}
	return segment[edge : len(segment)-edge]
}

// Classify decides whether one interval of samples is a filler sound
func (fc *FillerClassifier) Classify(samples []float64, interval analyzers.VoicedInterval) FillerDecision {
	decision := FillerDecision{
		Interval:        interval,
		DurationSeconds: interval.Seconds(fc.sampleRate),
		Reason:          ReasonDuration,
	}

	if decision.DurationSeconds < fc.cfg.MinDuration || decision.DurationSeconds > fc.cfg.MaxDuration {
		return decision
	}

	segment := samples[interval.StartSample:interval.EndSample]

	mean, variance, count := fc.pitch.Track(segment).Stats()
	decision.ValidPitchFrames = count
	if count < fc.cfg.MinPitchFrames {
		decision.Reason = ReasonInsufficientPitch
		return decision
	}
	decision.PitchMean = mean
	decision.PitchVariance = variance

	spectrogram := fc.spectral.ComputeSTFT(fc.steadyCore(segment))
	decision.MFCCVariance = fc.cepstral.FromPower(spectrogram.Power).MeanVariance()

	switch {
	case mean <= fc.cfg.MinPitchMean || mean >= fc.cfg.MaxPitchMean:
		decision.Reason = ReasonPitchMean
	case variance >= fc.cfg.MaxPitchVariance:
		decision.Reason = ReasonPitchVariance
	case decision.MFCCVariance >= fc.cfg.MaxMFCCVariance:
		decision.Reason = ReasonSpectralVariance
	default:
		decision.Reason = ReasonFiller
		decision.IsFiller = true
	}

	return decision
}

// Detect classifies every interval and rates fillers over the whole recording
func (fc *FillerClassifier) Detect(samples []float64, intervals []analyzers.VoicedInterval) FillerDetectionResult {
	mapper := iter.Mapper[analyzers.VoicedInterval, FillerDecision]{MaxGoroutines: fc.maxWorkers}
	decisions := mapper.Map(intervals, func(iv *analyzers.VoicedInterval) FillerDecision {
		return fc.Classify(samples, *iv)
	})

	count := 0
	for _, d := range decisions {
		if d.IsFiller {
			count++
		}
	}

	totalSeconds := 0.0
	if fc.sampleRate > 0 {
		totalSeconds = float64(len(samples)) / float64(fc.sampleRate)
	}

	fc.logger.Debug("Filler detection complete", logging.Fields{
		"intervals": len(intervals),
		"fillers":   count,
	})

	return FillerDetectionResult{
		Count:         count,
		RatePerMinute: FillerRate(count, totalSeconds),
		Decisions:     decisions,
	}
}
