package common

import (
	"math"
	"time"

	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// DefaultSampleRate is the only rate the analysis engine accepts
const DefaultSampleRate = 16000

// Waveform is a mono recording in [-1, 1]
type Waveform struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
	Source     string    `json:"source,omitempty"`
}

// NumSamples returns the sample count
func (w *Waveform) NumSamples() int {
	if w == nil {
		return 0
	}
	return len(w.Samples)
}

// Seconds returns the recording length in seconds, 0 for an unknown rate
func (w *Waveform) Seconds() float64 {
	if w == nil || w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Duration returns the recording length
func (w *Waveform) Duration() time.Duration {
	return time.Duration(w.Seconds() * float64(time.Second))
}

// CheckContract validates a waveform against the rate the engine expects
func CheckContract(samples []float64, sampleRate, expectedRate int) error {
	if sampleRate <= 0 {
		return NewAudioErrorWithFields(ErrCodeInvalidContract,
			"sample rate must be positive", nil,
			logging.Fields{"sample_rate": sampleRate})
	}
	if sampleRate != expectedRate {
		return NewAudioErrorWithFields(ErrCodeSampleRateMismatch,
			"sample rate mismatch, resample before analysis", nil,
			logging.Fields{"sample_rate": sampleRate, "expected_rate": expectedRate})
	}
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return NewAudioErrorWithFields(ErrCodeInvalidSamples,
				"waveform contains non-finite samples", nil,
				logging.Fields{"index": i})
		}
	}
	return nil
}
