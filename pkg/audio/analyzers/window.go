package analyzers

import (
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// WindowType names a tapering window
type WindowType string

const (
	WindowHann        WindowType = "hann"
	WindowHamming     WindowType = "hamming"
	WindowBlackman    WindowType = "blackman"
	WindowRectangular WindowType = "rectangular"
)

// WindowGenerator builds window coefficients
type WindowGenerator struct{}

// NewWindowGenerator creates a window generator
func NewWindowGenerator() *WindowGenerator {
	return &WindowGenerator{}
}

// Generate returns the coefficients of a window of the given length
func (wg *WindowGenerator) Generate(windowType WindowType, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("invalid window length: %d", length)
	}

	switch windowType {
	case WindowHann, "":
		return window.Hann(length), nil
	case WindowHamming:
		return window.Hamming(length), nil
	case WindowBlackman:
		return window.Blackman(length), nil
	case WindowRectangular:
		return window.Rectangular(length), nil
	default:
		return nil, fmt.Errorf("unsupported window type: %s", windowType)
	}
}

// Apply multiplies a frame by a window into dst. Frames shorter than the
// window are treated as zero-padded.
func (wg *WindowGenerator) Apply(dst, frame, coeffs []float64) {
	for i := range dst {
		if i < len(frame) && i < len(coeffs) {
			dst[i] = frame[i] * coeffs[i]
		} else {
			dst[i] = 0
		}
	}
}
