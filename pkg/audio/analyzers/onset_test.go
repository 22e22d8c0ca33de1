package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anupamak004/Public-speaking-coach/internal/testsignal"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
)

func logMelOf(t *testing.T, samples []float64) [][]float64 {
	t.Helper()

	cfg := config.DefaultFeatureConfig()
	sa, err := NewSpectralAnalyzer(cfg)
	require.NoError(t, err)
	bank, err := NewMelFilterBank(cfg.NumMelFilters, 0, float64(cfg.SampleRate)/2,
		sa.FreqBins(), cfg.FrameLength, cfg.SampleRate)
	require.NoError(t, err)

	return PowerToDB(bank.ApplyAll(sa.ComputeSTFT(samples).Power), cfg.LogFloorDB)
}

func TestOnsetDetectorBursts(t *testing.T) {
	od := NewOnsetDetector(config.DefaultFeatureConfig())

	result := od.Detect(logMelOf(t, testsignal.Bursts(4, 150, 0.1, 0.15)))
	assert.Equal(t, []int{7, 32, 57, 82}, result.Frames)
	assert.Equal(t, 4, result.Count())

	require.NotEmpty(t, result.Envelope)
	for _, v := range result.Envelope {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestOnsetDetectorQuietSyllables(t *testing.T) {
	od := NewOnsetDetector(config.DefaultFeatureConfig())

	// one loud attack followed by five syllables 20 dB quieter
	samples := testsignal.BurstsAt(180, 0.1, 0.15, 0.5, 0.05, 0.05, 0.05, 0.05, 0.05)

	result := od.Detect(logMelOf(t, samples))
	assert.Equal(t, []int{7, 32, 57, 82, 107, 132}, result.Frames)
}

func TestOnsetDetectorVariedBursts(t *testing.T) {
	od := NewOnsetDetector(config.DefaultFeatureConfig())

	var parts [][]float64
	for k := range 5 {
		parts = append(parts, testsignal.Tone(testsignal.ToneSpec{
			Frequency: testsignal.Steady(100 + 20*float64(k)),
			Duration:  0.15,
			Pad:       0.1 + 0.02*float64(k),
			Amplitude: 0.2 + 0.1*float64(k),
			Ramp:      0.04,
		}))
	}

	result := od.Detect(logMelOf(t, testsignal.Concat(parts...)))
	assert.Equal(t, 5, result.Count())
}

func TestOnsetDetectorSteadyTone(t *testing.T) {
	od := NewOnsetDetector(config.DefaultFeatureConfig())

	result := od.Detect(logMelOf(t, testsignal.Tone(testsignal.ToneSpec{
		Frequency: testsignal.Steady(150),
		Duration:  0.5,
		Pad:       0.5,
		Amplitude: 0.5,
		Ramp:      0.04,
	})))
	assert.Equal(t, 1, result.Count())
}

func TestOnsetDetectorSilence(t *testing.T) {
	od := NewOnsetDetector(config.DefaultFeatureConfig())

	result := od.Detect(logMelOf(t, testsignal.Silence(1)))
	assert.Equal(t, 0, result.Count())
	assert.NotNil(t, result.Frames)
	assert.Nil(t, result.Envelope)

	assert.Equal(t, 0, od.Detect(nil).Count())
}

func TestOnsetDetectorWait(t *testing.T) {
	cfg := config.DefaultFeatureConfig()
	cfg.Onset = config.OnsetConfig{PreMax: 1, PostMax: 1, PreAvg: 1, PostAvg: 1, Wait: 2, Delta: 0}
	od := NewOnsetDetector(cfg)

	// flux peaks at frames 1, 3 and 6; frame 3 falls inside the wait after frame 1
	logMel := [][]float64{{0}, {5}, {5}, {10}, {10}, {10}, {20}}
	result := od.Detect(logMel)
	assert.Equal(t, []int{1, 6}, result.Frames)
}
