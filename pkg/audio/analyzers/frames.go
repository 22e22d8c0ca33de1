package analyzers

import "math"

// Framer slices a signal into fixed-length frames advanced by a hop.
// Frame i starts at sample i*hop; frames running past the end are zero-padded.
type Framer struct {
	FrameLength int
	HopLength   int
}

// NewFramer creates a framer
func NewFramer(frameLength, hopLength int) *Framer {
	return &Framer{FrameLength: frameLength, HopLength: hopLength}
}

// NumFrames returns the frame count for n samples: 0 for no samples, 1 when the
// signal fits in one frame, otherwise every full frame
func (f *Framer) NumFrames(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= f.FrameLength:
		return 1
	default:
		return 1 + (n-f.FrameLength)/f.HopLength
	}
}

// Offset returns the start sample of frame i
func (f *Framer) Offset(i int) int {
	return i * f.HopLength
}

// Frame copies frame i into a new zero-padded slice
func (f *Framer) Frame(signal []float64, i int) []float64 {
	out := make([]float64, f.FrameLength)
	start := f.Offset(i)
	if start < len(signal) {
		copy(out, signal[start:min(len(signal), start+f.FrameLength)])
	}
	return out
}

// View returns the samples of frame i without padding
func (f *Framer) View(signal []float64, i int) []float64 {
	start := f.Offset(i)
	if start >= len(signal) {
		return nil
	}
	return signal[start:min(len(signal), start+f.FrameLength)]
}

// FrameRMS returns the root mean square of each frame, normalised by the full
// frame length so padded frames read quieter
func (f *Framer) FrameRMS(signal []float64) []float64 {
	n := f.NumFrames(len(signal))
	rms := make([]float64, n)
	for i := range n {
		sum := 0.0
		for _, s := range f.View(signal, i) {
			sum += s * s
		}
		rms[i] = math.Sqrt(sum / float64(f.FrameLength))
	}
	return rms
}
