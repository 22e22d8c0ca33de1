package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramerNumFrames(t *testing.T) {
	f := NewFramer(1024, 256)

	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{1024, 1},
		{1025, 1},
		{1280, 2},
		{16000, 59},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, f.NumFrames(tt.n), "n=%d", tt.n)
	}
}

func TestFramerFramePadsShortSignals(t *testing.T) {
	f := NewFramer(8, 4)
	signal := []float64{1, 2, 3, 4, 5, 6}

	frame := f.Frame(signal, 1)
	require.Len(t, frame, 8)
	assert.Equal(t, []float64{5, 6, 0, 0, 0, 0, 0, 0}, frame)

	assert.Equal(t, []float64{5, 6}, f.View(signal, 1))
	assert.Nil(t, f.View(signal, 2))
	assert.Equal(t, make([]float64, 8), f.Frame(signal, 5))
}

func TestFrameRMS(t *testing.T) {
	f := NewFramer(4, 2)
	signal := []float64{0.5, -0.5, 0.5, -0.5, 0.5, -0.5}

	rms := f.FrameRMS(signal)
	require.Len(t, rms, 2)
	assert.InDelta(t, 0.5, rms[0], 1e-12)
	assert.InDelta(t, 0.5, rms[1], 1e-12)

	assert.Empty(t, f.FrameRMS(nil))
}

func TestWindowGenerator(t *testing.T) {
	wg := NewWindowGenerator()

	hann, err := wg.Generate(WindowHann, 1024)
	require.NoError(t, err)
	require.Len(t, hann, 1024)
	assert.InDelta(t, 0.0, hann[0], 1e-12)
	assert.InDelta(t, 0.0, hann[1023], 1e-12)
	for _, v := range hann {
		assert.True(t, v >= 0 && v <= 1)
	}

	rect, err := wg.Generate(WindowRectangular, 16)
	require.NoError(t, err)
	for _, v := range rect {
		assert.Equal(t, 1.0, v)
	}

	for _, wt := range []WindowType{WindowHamming, WindowBlackman} {
		coeffs, err := wg.Generate(wt, 32)
		require.NoError(t, err)
		assert.Len(t, coeffs, 32)
	}

	_, err = wg.Generate("kaiser", 16)
	assert.Error(t, err)
	_, err = wg.Generate(WindowHann, 0)
	assert.Error(t, err)
}

func TestWindowApplyZeroPads(t *testing.T) {
	wg := NewWindowGenerator()
	dst := []float64{9, 9, 9, 9}

	wg.Apply(dst, []float64{1, 2}, []float64{0.5, 0.5, 0.5, 0.5})
	assert.Equal(t, []float64{0.5, 1, 0, 0}, dst)
}
