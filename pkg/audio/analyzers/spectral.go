package analyzers

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"github.com/sourcegraph/conc/iter"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// SpectralAnalyzer provides the short-time Fourier analysis shared by the
// cepstral and onset stages
type SpectralAnalyzer struct {
	framer          *Framer
	windowGenerator *WindowGenerator
	window          []float64
	sampleRate      int
	maxWorkers      int
	logger          logging.Logger
}

// SpectrogramResult holds the power spectrogram of a signal
type SpectrogramResult struct {
	Power          [][]float64 `json:"-"`               // Time x Frequency power matrix
	Offsets        []int       `json:"-"`               // Start sample of each frame
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSpectralAnalyzer creates a spectral analyzer with a precomputed window
func NewSpectralAnalyzer(cfg *config.FeatureConfig) (*SpectralAnalyzer, error) {
	wg := NewWindowGenerator()
	coeffs, err := wg.Generate(WindowType(cfg.Window), cfg.FrameLength)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis window: %w", err)
	}

	sa := &SpectralAnalyzer{
		framer:          NewFramer(cfg.FrameLength, cfg.HopLength),
		windowGenerator: wg,
		window:          coeffs,
		sampleRate:      cfg.SampleRate,
		maxWorkers:      cfg.MaxWorkers,
	}
	return sa.WithLogger(logging.NewDefaultLogger()), nil
}

// WithLogger routes the analyzer's logs to l
func (sa *SpectralAnalyzer) WithLogger(l logging.Logger) *SpectralAnalyzer {
	sa.logger = l.WithFields(logging.Fields{
		"component":   "spectral_analyzer",
		"sample_rate": sa.sampleRate,
	})
	return sa
}

// FreqBins returns the number of non-negative frequency bins per frame
func (sa *SpectralAnalyzer) FreqBins() int {
	return sa.framer.FrameLength/2 + 1
}

// FFT computes the transform of a real signal
func (sa *SpectralAnalyzer) FFT(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// FramePower returns the power spectrum of one windowed frame
func (sa *SpectralAnalyzer) FramePower(frame []float64) []float64 {
	windowed := make([]float64, sa.framer.FrameLength)
	sa.windowGenerator.Apply(windowed, frame, sa.window)

	spectrum := sa.FFT(windowed)
	power := make([]float64, sa.FreqBins())
	for k := range power {
		re, im := real(spectrum[k]), imag(spectrum[k])
		power[k] = re*re + im*im
	}
	return power
}

// ComputeSTFT computes the power spectrogram of a signal. Frames are
// transformed concurrently; row order always follows frame order.
func (sa *SpectralAnalyzer) ComputeSTFT(signal []float64) *SpectrogramResult {
	numFrames := sa.framer.NumFrames(len(signal))

	frames := make([]int, numFrames)
	offsets := make([]int, numFrames)
	for i := range frames {
		frames[i] = i
		offsets[i] = sa.framer.Offset(i)
	}

	mapper := iter.Mapper[int, []float64]{MaxGoroutines: sa.maxWorkers}
	power := mapper.Map(frames, func(i *int) []float64 {
		return sa.FramePower(sa.framer.View(signal, *i))
	})

	sa.logger.Debug("STFT computed", logging.Fields{
		"frames":    numFrames,
		"freq_bins": sa.FreqBins(),
	})

	return &SpectrogramResult{
		Power:          power,
		Offsets:        offsets,
		TimeFrames:     numFrames,
		FreqBins:       sa.FreqBins(),
		SampleRate:     sa.sampleRate,
		WindowSize:     sa.framer.FrameLength,
		HopSize:        sa.framer.HopLength,
		FreqResolution: float64(sa.sampleRate) / float64(sa.framer.FrameLength),
		TimeResolution: float64(sa.framer.HopLength) / float64(sa.sampleRate),
	}
}

// GetFrequencyBins returns the centre frequency of every bin
func (sa *SpectralAnalyzer) GetFrequencyBins() []float64 {
	bins := make([]float64, sa.FreqBins())
	for i := range bins {
		bins[i] = float64(i) * float64(sa.sampleRate) / float64(sa.framer.FrameLength)
	}
	return bins
}

// ComputeSpectralFlux computes the half-wave rectified frame-to-frame increase
// of each row, averaged across columns. The first frame has no predecessor and
// scores 0.
func ComputeSpectralFlux(rows [][]float64) []float64 {
	flux := make([]float64, len(rows))
	for t := 1; t < len(rows); t++ {
		prev, cur := rows[t-1], rows[t]
		if len(cur) == 0 {
			continue
		}
		sum := 0.0
		for b := range cur {
			if d := cur[b] - prev[b]; d > 0 {
				sum += d
			}
		}
		flux[t] = sum / float64(len(cur))
	}
	return flux
}
