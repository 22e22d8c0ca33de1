package analysis

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Anupamak004/Public-speaking-coach/internal/testsignal"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/extractors"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func (s *EngineTestSuite) SetupSuite() {
	engine, err := NewEngine(&EngineConfig{Logger: logging.NewNopLogger()})
	s.Require().NoError(err)
	s.engine = engine
}

func (s *EngineTestSuite) TestVectorShape() {
	vec, err := s.engine.AnalyzeUtterance(testsignal.Filler(150), testsignal.SampleRate)
	s.Require().NoError(err)

	s.Len(vec.Slice(), extractors.FeatureVectorLength)
	s.True(vec.IsFinite())
}

func (s *EngineTestSuite) TestSilence() {
	vec, err := s.engine.AnalyzeUtterance(testsignal.Silence(1), testsignal.SampleRate)
	s.Require().NoError(err)

	s.True(vec.IsFinite())
	s.Equal(0.0, vec[extractors.SlotAvgPitch])
	s.Equal(0.0, vec[extractors.SlotPitchVariance])
	s.Equal(1.0, vec[extractors.SlotSilenceRatio])
	s.Equal(0.0, vec[extractors.SlotSpeechRate])
	s.Equal(0.0, vec[extractors.SlotFillerCount])
	s.Equal(0.0, vec[extractors.SlotFillerRate])
}

func (s *EngineTestSuite) TestEmptyInput() {
	for _, samples := range [][]float64{nil, {}} {
		vec, err := s.engine.AnalyzeUtterance(samples, testsignal.SampleRate)
		s.Require().NoError(err)
		s.Equal(extractors.FeatureVector{}, vec)

		fillers, err := s.engine.DetectFillers(samples, testsignal.SampleRate)
		s.Require().NoError(err)
		s.Equal(0, fillers.Count)
		s.Equal(0.0, fillers.RatePerMinute)
	}
}

func (s *EngineTestSuite) TestSteadyToneIsFiller() {
	samples := testsignal.Filler(150)

	report, err := s.engine.Analyze(samples, testsignal.SampleRate)
	s.Require().NoError(err)

	s.Equal(1, report.Fillers.Count)
	s.Equal(1.0, report.Vector[extractors.SlotFillerCount])
	s.InDelta(40.0, report.Vector[extractors.SlotFillerRate], 1e-9)
	s.InDelta(150.0, report.Vector[extractors.SlotAvgPitch], 5.0)
	s.Greater(report.Vector[extractors.SlotRMSEnergy], 0.0)
	s.Greater(report.Vector[extractors.SlotSilenceRatio], 0.0)
	s.Less(report.Vector[extractors.SlotSilenceRatio], 1.0)
	s.Len(report.Intervals, 1)
	s.InDelta(1.5, report.DurationSeconds, 1e-9)
}

func (s *EngineTestSuite) TestGatedToneIsFiller() {
	samples := testsignal.Tone(testsignal.ToneSpec{
		Frequency: testsignal.Steady(150),
		Duration:  0.5,
		Pad:       0.5,
		Amplitude: 0.5,
	})

	report, err := s.engine.Analyze(samples, testsignal.SampleRate)
	s.Require().NoError(err)

	s.Equal(1, report.Fillers.Count)
	s.Require().Len(report.Fillers.Decisions, 1)
	s.Equal(extractors.ReasonFiller, report.Fillers.Decisions[0].Reason)
}

func (s *EngineTestSuite) TestDetectFillersMatchesAnalyze() {
	samples := testsignal.Filler(150)

	fillers, err := s.engine.DetectFillers(samples, testsignal.SampleRate)
	s.Require().NoError(err)
	report, err := s.engine.Analyze(samples, testsignal.SampleRate)
	s.Require().NoError(err)

	s.Equal(report.Fillers.Count, fillers.Count)
	s.Equal(report.Fillers.RatePerMinute, fillers.RatePerMinute)
}

func (s *EngineTestSuite) TestLongToneIsNotFiller() {
	samples := testsignal.Tone(testsignal.ToneSpec{
		Frequency: testsignal.Steady(150),
		Duration:  2.0,
		Pad:       0.5,
		Amplitude: 0.5,
		Ramp:      0.02,
	})

	result, err := s.engine.DetectFillers(samples, testsignal.SampleRate)
	s.Require().NoError(err)

	s.Equal(0, result.Count)
	s.Require().Len(result.Decisions, 1)
	s.Equal(extractors.ReasonDuration, result.Decisions[0].Reason)
}

func (s *EngineTestSuite) TestGlidingToneIsNotFiller() {
	samples := testsignal.Tone(testsignal.ToneSpec{
		Frequency: testsignal.FM(240, 160, 4),
		Duration:  0.5,
		Pad:       0.5,
		Amplitude: 0.5,
	})

	result, err := s.engine.DetectFillers(samples, testsignal.SampleRate)
	s.Require().NoError(err)
	s.Equal(0, result.Count)
}

func (s *EngineTestSuite) TestTwoFillers() {
	samples := testsignal.Concat(testsignal.Filler(150), testsignal.Filler(150))

	result, err := s.engine.DetectFillers(samples, testsignal.SampleRate)
	s.Require().NoError(err)

	s.Equal(2, result.Count)
	s.InDelta(2/3.0*60, result.RatePerMinute, 1e-9)
}

func (s *EngineTestSuite) TestDeterministic() {
	samples := testsignal.Concat(
		testsignal.Filler(150),
		testsignal.Bursts(4, 180, 0.1, 0.15),
		testsignal.Noise(0.5, 0.01, 7),
	)

	first, err := s.engine.AnalyzeUtterance(samples, testsignal.SampleRate)
	s.Require().NoError(err)
	for range 3 {
		again, err := s.engine.AnalyzeUtterance(samples, testsignal.SampleRate)
		s.Require().NoError(err)
		s.Equal(first, again)
	}
}

func (s *EngineTestSuite) TestConcurrentUse() {
	samples := testsignal.Filler(150)
	want, err := s.engine.AnalyzeUtterance(samples, testsignal.SampleRate)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	results := make([]extractors.FeatureVector, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = s.engine.AnalyzeUtterance(samples, testsignal.SampleRate)
		}()
	}
	wg.Wait()

	for _, got := range results {
		s.Equal(want, got)
	}
}

func (s *EngineTestSuite) TestContractViolations() {
	samples := testsignal.Filler(150)

	_, err := s.engine.AnalyzeUtterance(samples, 44100)
	s.Require().Error(err)
	s.True(errors.Is(err, common.ErrInvalidInput))
	s.Equal(common.ErrCodeSampleRateMismatch, common.ErrorCode(err))

	_, err = s.engine.AnalyzeUtterance(samples, 0)
	s.Require().Error(err)
	s.True(errors.Is(err, common.ErrInvalidContract))

	_, err = s.engine.DetectFillers(samples, -1)
	s.True(errors.Is(err, common.ErrInvalidContract))

	bad := append([]float64{}, samples...)
	bad[100] = math.NaN()
	_, err = s.engine.AnalyzeUtterance(bad, testsignal.SampleRate)
	s.Require().Error(err)
	s.True(errors.Is(err, common.ErrInvalidInput))
	s.Equal(common.ErrCodeInvalidSamples, common.ErrorCode(err))

	bad[100] = math.Inf(1)
	_, err = s.engine.DetectFillers(bad, testsignal.SampleRate)
	s.Equal(common.ErrCodeInvalidSamples, common.ErrorCode(err))
}

func (s *EngineTestSuite) TestAnalyzeWaveform() {
	report, err := s.engine.AnalyzeWaveform(&common.Waveform{
		Samples:    testsignal.Filler(150),
		SampleRate: testsignal.SampleRate,
		Source:     "filler.wav",
	})
	s.Require().NoError(err)
	s.Equal("filler.wav", report.Source)
	s.Equal(extractors.FeatureVectorVersion, report.VectorVersion)
	s.Equal(report.Vector[extractors.SlotFillerCount], report.NamedVector()["filler_count"])
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultFeatureConfig()
	cfg.HopLength = cfg.FrameLength * 2

	_, err := NewEngine(&EngineConfig{Features: cfg, Logger: logging.NewNopLogger()})
	require.Error(t, err)
}

func TestNewEngineDefaults(t *testing.T) {
	engine, err := NewEngine(nil)
	require.NoError(t, err)
	assert.Equal(t, common.DefaultSampleRate, engine.Config().SampleRate)

	// the returned config is a copy
	engine.Config().SampleRate = 8000
	assert.Equal(t, common.DefaultSampleRate, engine.Config().SampleRate)
}

func TestEngineLoggerReachesComponents(t *testing.T) {
	defaultCore, defaultLogs := observer.New(zapcore.DebugLevel)
	saved := logging.NewDefaultLogger()
	logging.SetDefault(logging.FromZap(zap.New(defaultCore)))
	defer logging.SetDefault(saved)

	core, logs := observer.New(zapcore.DebugLevel)
	engine, err := NewEngine(&EngineConfig{Logger: logging.FromZap(zap.New(core))})
	require.NoError(t, err)

	_, err = engine.Analyze(testsignal.Filler(150), testsignal.SampleRate)
	require.NoError(t, err)

	for _, component := range []string{
		"analysis_engine",
		"spectral_analyzer",
		"cepstral_extractor",
		"pitch_tracker",
		"voice_activity_segmenter",
		"onset_detector",
		"filler_classifier",
	} {
		assert.NotZero(t, logs.FilterField(zap.String("component", component)).Len(), component)
	}
	assert.Zero(t, defaultLogs.Len())
}
