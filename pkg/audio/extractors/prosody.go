package extractors

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analyzers"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
)

// ProsodyFeatures are the scalar delivery statistics of an utterance
type ProsodyFeatures struct {
	AvgPitch         float64   `json:"avg_pitch"`
	PitchVariance    float64   `json:"pitch_variance"`
	ValidPitchFrames int       `json:"valid_pitch_frames"`
	RMSEnergy        float64   `json:"rms_energy"`
	SpeechRate       float64   `json:"speech_rate"`
	OnsetCount       int       `json:"onset_count"`
	SilenceRatio     float64   `json:"silence_ratio"`
	Jitter           float64   `json:"jitter"`
	Shimmer          float64   `json:"shimmer"`
	MFCCMeans        []float64 `json:"mfcc_means"`
}

// ProsodyInputs are the upstream component outputs the aggregator reads
type ProsodyInputs struct {
	Samples  []float64
	Pitch    *analyzers.PitchContour
	FrameRMS []float64
	Onsets   *analyzers.OnsetResult
	Cepstral *CepstralMatrix
}

// ProsodyAggregator reduces component outputs to ProsodyFeatures
type ProsodyAggregator struct {
	sampleRate       int
	silenceThreshold float64
	numCoeffs        int
}

// NewProsodyAggregator creates an aggregator
func NewProsodyAggregator(cfg *config.FeatureConfig) *ProsodyAggregator {
	return &ProsodyAggregator{
		sampleRate:       cfg.SampleRate,
		silenceThreshold: cfg.SilenceThreshold,
		numCoeffs:        cfg.MFCCCoefficients,
	}
}

// Aggregate computes the prosody summary. Every ratio falls back to 0 when
// its denominator is 0.
func (pa *ProsodyAggregator) Aggregate(in ProsodyInputs) ProsodyFeatures {
	features := ProsodyFeatures{MFCCMeans: make([]float64, pa.numCoeffs)}

	if in.Pitch != nil {
		features.AvgPitch, features.PitchVariance, features.ValidPitchFrames = in.Pitch.Stats()
	}

	if len(in.FrameRMS) > 0 {
		features.RMSEnergy = stat.Mean(in.FrameRMS, nil)
		// shimmer proxy: spread of frame loudness
		features.Shimmer = math.Sqrt(stat.PopVariance(in.FrameRMS, nil))
	}

	duration := 0.0
	if pa.sampleRate > 0 {
		duration = float64(len(in.Samples)) / float64(pa.sampleRate)
	}
	if in.Onsets != nil {
		features.OnsetCount = in.Onsets.Count()
		if duration > 0 {
			features.SpeechRate = float64(features.OnsetCount) / duration
		}
	}

	if len(in.Samples) > 0 {
		quiet := 0
		for _, s := range in.Samples {
			if math.Abs(s) < pa.silenceThreshold {
				quiet++
			}
		}
		features.SilenceRatio = float64(quiet) / float64(len(in.Samples))
	}

	// jitter proxy: pitch variance relative to mean pitch
	if features.AvgPitch > 0 {
		features.Jitter = features.PitchVariance / features.AvgPitch
	}

	if in.Cepstral != nil {
		copy(features.MFCCMeans, in.Cepstral.Means())
	}

	return features
}
