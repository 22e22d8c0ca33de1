package extractors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anupamak004/Public-speaking-coach/internal/testsignal"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analyzers"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
)

func newTestStages(t *testing.T) (*config.FeatureConfig, *analyzers.SpectralAnalyzer, *CepstralExtractor) {
	t.Helper()

	cfg := config.DefaultFeatureConfig()
	sa, err := analyzers.NewSpectralAnalyzer(cfg)
	require.NoError(t, err)
	ce, err := NewCepstralExtractor(cfg)
	require.NoError(t, err)
	return cfg, sa, ce
}

func TestDCTBasisIsOrthonormal(t *testing.T) {
	basis := dctBasis(13, 40)
	require.Len(t, basis, 13)

	for i := range basis {
		for j := range basis {
			dot := 0.0
			for n := range basis[i] {
				dot += basis[i][n] * basis[j][n]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, dot, 1e-9, "rows %d,%d", i, j)
		}
	}
}

func TestMFCCSilence(t *testing.T) {
	_, sa, ce := newTestStages(t)

	mfcc := ce.FromPower(sa.ComputeSTFT(testsignal.Silence(0.5)).Power)
	require.Greater(t, mfcc.NumFrames(), 0)

	means := mfcc.Means()
	require.Len(t, means, 13)
	assert.InDelta(t, -100*math.Sqrt(40), means[0], 1e-6)
	for _, m := range means[1:] {
		assert.InDelta(t, 0.0, m, 1e-6)
	}
	assert.InDelta(t, 0.0, mfcc.MeanVariance(), 1e-9)
}

func TestMFCCSteadyToneIsStable(t *testing.T) {
	_, sa, ce := newTestStages(t)

	tone := testsignal.Tone(testsignal.ToneSpec{
		Frequency: testsignal.Steady(150),
		Duration:  0.5,
		Amplitude: 0.5,
	})
	glide := testsignal.Tone(testsignal.ToneSpec{
		Frequency: testsignal.FM(240, 160, 4),
		Duration:  0.5,
		Amplitude: 0.5,
	})

	steady := ce.FromPower(sa.ComputeSTFT(tone).Power)
	moving := ce.FromPower(sa.ComputeSTFT(glide).Power)

	for _, row := range steady.Coefficients {
		for _, c := range row {
			assert.False(t, math.IsNaN(c) || math.IsInf(c, 0))
		}
	}
	assert.Less(t, steady.MeanVariance(), moving.MeanVariance())
}

func TestMFCCEmpty(t *testing.T) {
	_, _, ce := newTestStages(t)

	mfcc := ce.FromMelPower(nil)
	assert.Equal(t, 0, mfcc.NumFrames())
	assert.Equal(t, make([]float64, 13), mfcc.Means())
	assert.Equal(t, 0.0, mfcc.MeanVariance())
}

func TestNewCepstralExtractorRejectsTooFewBands(t *testing.T) {
	cfg := config.DefaultFeatureConfig()
	cfg.NumMelFilters = 10

	_, err := NewCepstralExtractor(cfg)
	assert.Error(t, err)
}
