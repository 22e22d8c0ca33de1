package analysis

import (
	"time"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analyzers"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/extractors"
)

// Report is the full result of one analysis call
type Report struct {
	Source          string                           `json:"source,omitempty"`
	VectorVersion   int                              `json:"vector_version"`
	Vector          extractors.FeatureVector         `json:"vector"`
	Prosody         extractors.ProsodyFeatures       `json:"prosody"`
	Fillers         extractors.FillerDetectionResult `json:"fillers"`
	Intervals       []analyzers.VoicedInterval       `json:"intervals"`
	OnsetFrames     []int                            `json:"onset_frames"`
	Pitch           *analyzers.PitchContour          `json:"-"`
	NumSamples      int                              `json:"num_samples"`
	NumFrames       int                              `json:"num_frames"`
	DurationSeconds float64                          `json:"duration_seconds"`
	Timings         StageTimings                     `json:"timings"`
}

// StageTimings records wall time spent per stage
type StageTimings struct {
	Energy   time.Duration `json:"energy"`
	Fillers  time.Duration `json:"fillers"`
	Pitch    time.Duration `json:"pitch"`
	Spectral time.Duration `json:"spectral"`
	Total    time.Duration `json:"total"`
}

func newReport(cfg *config.FeatureConfig, numSamples int) *Report {
	framer := analyzers.NewFramer(cfg.FrameLength, cfg.HopLength)
	return &Report{
		VectorVersion: extractors.FeatureVectorVersion,
		Prosody: extractors.ProsodyFeatures{
			MFCCMeans: make([]float64, cfg.MFCCCoefficients),
		},
		Intervals:       []analyzers.VoicedInterval{},
		OnsetFrames:     []int{},
		NumSamples:      numSamples,
		NumFrames:       framer.NumFrames(numSamples),
		DurationSeconds: float64(numSamples) / float64(cfg.SampleRate),
	}
}

// NamedVector returns the feature vector keyed by slot name
func (r *Report) NamedVector() map[string]float64 {
	return r.Vector.Named()
}
