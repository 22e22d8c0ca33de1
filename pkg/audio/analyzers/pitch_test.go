package analyzers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anupamak004/Public-speaking-coach/internal/testsignal"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
)

func newTestTracker() *PitchTracker {
	cfg := config.DefaultFeatureConfig()
	return NewPitchTracker(cfg, cfg.Pitch.FMin, cfg.Pitch.FMax)
}

func TestPitchTrackerSteadyTone(t *testing.T) {
	pt := newTestTracker()

	for _, hz := range []float64{100, 150, 220} {
		tone := testsignal.Tone(testsignal.ToneSpec{
			Frequency: testsignal.Steady(hz),
			Duration:  0.5,
			Amplitude: 0.5,
		})

		contour := pt.Track(tone)
		require.Len(t, contour.Frames, NewFramer(1024, 256).NumFrames(len(tone)))

		mean, variance, count := contour.Stats()
		assert.Greater(t, count, 10, "hz=%v", hz)
		assert.InDelta(t, hz, mean, 1.5, "hz=%v", hz)
		assert.Less(t, variance, 1.0, "hz=%v", hz)

		for _, f := range contour.Frames {
			if f.Valid() {
				assert.Greater(t, f.Confidence, 0.9)
			}
		}
	}
}

func TestPitchTrackerSilence(t *testing.T) {
	pt := newTestTracker()

	contour := pt.Track(testsignal.Silence(0.5))
	require.NotEmpty(t, contour.Frames)
	for _, f := range contour.Frames {
		assert.Equal(t, PitchSilent, f.Status)
	}

	mean, variance, count := contour.Stats()
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, variance)
	assert.Equal(t, 0, count)
}

func TestPitchTrackerShortSpan(t *testing.T) {
	pt := newTestTracker()
	require.Equal(t, 512+266+1, pt.MinSpan())

	short := testsignal.Tone(testsignal.ToneSpec{
		Frequency: testsignal.Steady(150),
		Duration:  float64(pt.MinSpan()-1) / testsignal.SampleRate,
		Amplitude: 0.5,
	})

	contour := pt.Track(short)
	require.Len(t, contour.Frames, 1)
	assert.Equal(t, PitchTooShort, contour.Frames[0].Status)
	assert.Empty(t, contour.ValidFrequencies())
}

func TestPitchTrackerEmpty(t *testing.T) {
	contour := newTestTracker().Track(nil)
	assert.NotNil(t, contour.Frames)
	assert.Empty(t, contour.Frames)
}

func TestPitchTrackerNoise(t *testing.T) {
	pt := newTestTracker()

	contour := pt.Track(testsignal.Noise(0.5, 0.5, 3))
	_, _, count := contour.Stats()
	assert.Less(t, count, len(contour.Frames)/4)
}

func TestPitchContourStats(t *testing.T) {
	contour := &PitchContour{Frames: []PitchFrame{
		{Frequency: 100, Status: PitchValid},
		{Frequency: 500, Status: PitchOutOfRange},
		{Status: PitchSilent},
		{Frequency: 110, Status: PitchValid},
	}}

	assert.Equal(t, []float64{100, 110}, contour.ValidFrequencies())

	mean, variance, count := contour.Stats()
	assert.Equal(t, 2, count)
	assert.InDelta(t, 105.0, mean, 1e-12)
	assert.InDelta(t, 25.0, variance, 1e-12)
}

func TestPitchStatusText(t *testing.T) {
	assert.Equal(t, "valid", PitchValid.String())
	assert.Equal(t, "out_of_range", PitchOutOfRange.String())
	assert.Equal(t, "unknown(42)", PitchStatus(42).String())

	b, err := json.Marshal(PitchFrame{Status: PitchUnvoiced})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"unvoiced"`)
}
