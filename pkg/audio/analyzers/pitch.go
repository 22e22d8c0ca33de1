package analyzers

import (
	"fmt"
	"math"

	"github.com/sourcegraph/conc/iter"
	"gonum.org/v1/gonum/stat"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// PitchStatus marks whether a frame carries a usable F0 estimate
type PitchStatus int

const (
	PitchValid PitchStatus = iota
	PitchSilent
	PitchUnvoiced
	PitchOutOfRange
	PitchTooShort
)

func (s PitchStatus) String() string {
	switch s {
	case PitchValid:
		return "valid"
	case PitchSilent:
		return "silent"
	case PitchUnvoiced:
		return "unvoiced"
	case PitchOutOfRange:
		return "out_of_range"
	case PitchTooShort:
		return "too_short"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s PitchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PitchFrame is the estimate for one analysis frame. Frequency is only
// meaningful when Status is PitchValid.
type PitchFrame struct {
	Offset     int         `json:"offset"`
	Frequency  float64     `json:"frequency"`
	Confidence float64     `json:"confidence"`
	Status     PitchStatus `json:"status"`
}

// Valid reports whether the frame has a usable estimate
func (pf PitchFrame) Valid() bool {
	return pf.Status == PitchValid
}

// PitchContour holds one PitchFrame per analysis frame
type PitchContour struct {
	Frames []PitchFrame `json:"frames"`
	FMin   float64      `json:"fmin"`
	FMax   float64      `json:"fmax"`
}

// ValidFrequencies returns the frequencies of valid frames in order
func (pc *PitchContour) ValidFrequencies() []float64 {
	out := make([]float64, 0, len(pc.Frames))
	for _, f := range pc.Frames {
		if f.Valid() {
			out = append(out, f.Frequency)
		}
	}
	return out
}

// Stats returns the mean and population variance of valid frames, 0 when none
func (pc *PitchContour) Stats() (mean, variance float64, count int) {
	freqs := pc.ValidFrequencies()
	if len(freqs) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(freqs, nil)
	variance = stat.PopVariance(freqs, nil)
	return mean, variance, len(freqs)
}

// PitchTracker estimates F0 per frame with the YIN cumulative mean normalised
// difference function
type PitchTracker struct {
	framer           *Framer
	sampleRate       int
	fmin             float64
	fmax             float64
	threshold        float64
	silenceThreshold float64
	maxWorkers       int
	logger           logging.Logger
}

// NewPitchTracker creates a tracker over [fmin, fmax] Hz
func NewPitchTracker(cfg *config.FeatureConfig, fmin, fmax float64) *PitchTracker {
	pt := &PitchTracker{
		framer:           NewFramer(cfg.FrameLength, cfg.HopLength),
		sampleRate:       cfg.SampleRate,
		fmin:             fmin,
		fmax:             fmax,
		threshold:        cfg.Pitch.Threshold,
		silenceThreshold: cfg.SilenceThreshold,
		maxWorkers:       cfg.MaxWorkers,
	}
	return pt.WithLogger(logging.NewDefaultLogger())
}

// WithLogger routes the tracker's logs to l
func (pt *PitchTracker) WithLogger(l logging.Logger) *PitchTracker {
	pt.logger = l.WithFields(logging.Fields{
		"component": "pitch_tracker",
		"fmin":      pt.fmin,
		"fmax":      pt.fmax,
	})
	return pt
}

func (pt *PitchTracker) integrationWindow() int { return pt.framer.FrameLength / 2 }
func (pt *PitchTracker) minLag() int            { return int(float64(pt.sampleRate) / pt.fmax) }
func (pt *PitchTracker) maxLag() int            { return int(float64(pt.sampleRate) / pt.fmin) }

// MinSpan returns the shortest span that can hold one full lag search
func (pt *PitchTracker) MinSpan() int {
	return pt.integrationWindow() + pt.maxLag() + 1
}

// Track produces one PitchFrame per analysis frame of the span
func (pt *PitchTracker) Track(samples []float64) *PitchContour {
	numFrames := pt.framer.NumFrames(len(samples))
	contour := &PitchContour{FMin: pt.fmin, FMax: pt.fmax}

	if numFrames == 0 {
		contour.Frames = []PitchFrame{}
		return contour
	}

	frames := make([]int, numFrames)
	for i := range frames {
		frames[i] = i
	}

	if len(samples) < pt.MinSpan() {
		contour.Frames = make([]PitchFrame, numFrames)
		for i := range frames {
			contour.Frames[i] = PitchFrame{Offset: pt.framer.Offset(i), Status: PitchTooShort}
		}
		return contour
	}

	mapper := iter.Mapper[int, PitchFrame]{MaxGoroutines: pt.maxWorkers}
	contour.Frames = mapper.Map(frames, func(i *int) PitchFrame {
		pf := pt.EstimateFrame(pt.framer.Frame(samples, *i))
		pf.Offset = pt.framer.Offset(*i)
		return pf
	})

	pt.logger.Debug("Pitch contour computed", logging.Fields{
		"frames":       numFrames,
		"valid_frames": len(contour.ValidFrequencies()),
	})

	return contour
}

// EstimateFrame runs the YIN estimator on one zero-padded frame
func (pt *PitchTracker) EstimateFrame(frame []float64) PitchFrame {
	peak := 0.0
	for _, s := range frame {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak < pt.silenceThreshold {
		return PitchFrame{Status: PitchSilent}
	}

	w := pt.integrationWindow()
	tauMin, tauMax := pt.minLag(), pt.maxLag()
	if len(frame) < w+tauMax+2 {
		return PitchFrame{Status: PitchTooShort}
	}

	// difference function d(tau) for tau in [1, tauMax+1]
	diff := make([]float64, tauMax+2)
	for tau := 1; tau <= tauMax+1; tau++ {
		sum := 0.0
		for j := range w {
			d := frame[j] - frame[j+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	// cumulative mean normalised difference
	cmnd := make([]float64, tauMax+2)
	cmnd[0] = 1
	running := 0.0
	for tau := 1; tau <= tauMax+1; tau++ {
		running += diff[tau]
		if running > 0 {
			cmnd[tau] = diff[tau] * float64(tau) / running
		} else {
			cmnd[tau] = 1
		}
	}

	tau := -1
	for t := tauMin; t <= tauMax; t++ {
		if cmnd[t] < pt.threshold {
			for t+1 <= tauMax && cmnd[t+1] < cmnd[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		best := 1.0
		for t := tauMin; t <= tauMax; t++ {
			best = math.Min(best, cmnd[t])
		}
		return PitchFrame{Status: PitchUnvoiced, Confidence: math.Max(0, 1-best)}
	}

	// parabolic interpolation around the trough
	a, b, c := cmnd[tau-1], cmnd[tau], cmnd[tau+1]
	shift := 0.0
	if den := a - 2*b + c; den != 0 {
		shift = (a - c) / (2 * den)
	}
	shift = math.Max(-1, math.Min(1, shift))

	f0 := float64(pt.sampleRate) / (float64(tau) + shift)
	confidence := math.Max(0, 1-b)
	if f0 < pt.fmin || f0 > pt.fmax {
		return PitchFrame{Frequency: f0, Confidence: confidence, Status: PitchOutOfRange}
	}

	return PitchFrame{Frequency: f0, Confidence: confidence, Status: PitchValid}
}
