package analyzers

import (
	"gonum.org/v1/gonum/floats"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// OnsetResult holds detected onsets and the envelope they were picked from
type OnsetResult struct {
	Frames   []int     `json:"frames"`
	Envelope []float64 `json:"-"`
}

// Count returns the number of onsets
func (r *OnsetResult) Count() int {
	return len(r.Frames)
}

// OnsetDetector picks transient peaks from a spectral flux envelope over a
// decibel mel spectrogram. Working in decibels keeps an attack 20 dB below the
// loudest one as visible as the loudest.
type OnsetDetector struct {
	cfg    config.OnsetConfig
	logger logging.Logger
}

// NewOnsetDetector creates an onset detector
func NewOnsetDetector(cfg *config.FeatureConfig) *OnsetDetector {
	od := &OnsetDetector{cfg: cfg.Onset}
	return od.WithLogger(logging.NewDefaultLogger())
}

// WithLogger routes the detector's logs to l
func (od *OnsetDetector) WithLogger(l logging.Logger) *OnsetDetector {
	od.logger = l.WithFields(logging.Fields{
		"component": "onset_detector",
	})
	return od
}

// Envelope computes the onset strength of each frame as the mean positive
// change across mel bands, normalised to [0, 1]. A flat envelope yields nil.
func (od *OnsetDetector) Envelope(logMel [][]float64) []float64 {
	env := ComputeSpectralFlux(logMel)
	if len(env) == 0 {
		return nil
	}

	floats.AddConst(-floats.Min(env), env)
	peak := floats.Max(env)
	if peak <= 0 {
		return nil
	}
	floats.Scale(1/peak, env)
	return env
}

// Detect returns the onset frames of a decibel mel spectrogram, as produced
// by PowerToDB
func (od *OnsetDetector) Detect(logMel [][]float64) *OnsetResult {
	env := od.Envelope(logMel)
	result := &OnsetResult{Frames: []int{}, Envelope: env}
	if env == nil {
		return result
	}

	n := len(env)
	last := -(od.cfg.Wait + 1)
	for i := range n {
		lo, hi := max(0, i-od.cfg.PreMax), min(n, i+od.cfg.PostMax+1)
		if env[i] != floats.Max(env[lo:hi]) {
			continue
		}

		lo, hi = max(0, i-od.cfg.PreAvg), min(n, i+od.cfg.PostAvg+1)
		if env[i] < floats.Sum(env[lo:hi])/float64(hi-lo)+od.cfg.Delta {
			continue
		}

		if i-last <= od.cfg.Wait {
			continue
		}

		result.Frames = append(result.Frames, i)
		last = i
	}

	od.logger.Debug("Onsets detected", logging.Fields{
		"frames": n,
		"onsets": len(result.Frames),
	})

	return result
}
