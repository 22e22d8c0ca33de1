package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Anupamak004/Public-speaking-coach/configs"
	"github.com/Anupamak004/Public-speaking-coach/internal/testsignal"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

type AppTestSuite struct {
	suite.Suite
	dir     string
	filler  string
	silence string
}

func (s *AppTestSuite) SetupSuite() {
	s.dir = s.T().TempDir()
	s.filler = s.writeWAV("filler.wav", testsignal.Filler(150))
	s.silence = s.writeWAV("silence.wav", testsignal.Silence(1.0))
}

func (s *AppTestSuite) writeWAV(name string, samples []float64) string {
	data, err := testsignal.EncodeWAV(samples, testsignal.SampleRate, 16, 1)
	s.Require().NoError(err)
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, data, 0o644))
	return path
}

func (s *AppTestSuite) newApp(mutate func(*Context)) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	ctx := &Context{
		OutputFormat: "json",
		Logger:       logging.NewNopLogger(),
		Config:       configs.GetDefaultConfig(),
		Stdout:       &out,
	}
	if mutate != nil {
		mutate(ctx)
	}
	app, err := NewApp(ctx)
	s.Require().NoError(err)
	return app, &out
}

func (s *AppTestSuite) decode(out *bytes.Buffer) map[string]any {
	var m map[string]any
	s.Require().NoError(json.Unmarshal(out.Bytes(), &m))
	return m
}

func (s *AppTestSuite) TestRunAnalyze() {
	app, out := s.newApp(nil)
	s.Require().NoError(app.RunAnalyze(context.Background(), s.filler))

	m := s.decode(out)
	report := m["report"].(map[string]any)
	s.Len(report["vector"], 22)
	s.Equal(s.filler, report["source"])

	slots := m["slots"].(map[string]any)
	s.Equal(1.0, slots["filler_count"])
	s.InDelta(150, slots["avg_pitch"], 5)

	fillers := report["fillers"].(map[string]any)
	s.Len(fillers["decisions"], 1)

	s.Contains(m, "timestamp")
	s.Contains(m, "configuration")
}

func (s *AppTestSuite) TestRunAnalyzeVectorOnly() {
	app, out := s.newApp(func(c *Context) { c.VectorOnly = true })
	s.Require().NoError(app.RunAnalyze(context.Background(), s.silence))

	m := s.decode(out)
	s.Len(m, 22)
	s.Equal(1.0, m["silence_ratio"])
	s.Equal(0.0, m["avg_pitch"])
}

func (s *AppTestSuite) TestRunFillersWithoutDecisions() {
	app, out := s.newApp(func(c *Context) {
		c.Config.Output.Decisions = false
		c.Config.Output.Timestamps = false
		c.Config.Output.IncludeMetadata = false
	})
	s.Require().NoError(app.RunFillers(context.Background(), s.filler))

	m := s.decode(out)
	fillers := m["fillers"].(map[string]any)
	s.Equal(1.0, fillers["count"])
	s.InDelta(40.0, fillers["rate_per_minute"], 1e-9)
	s.NotContains(fillers, "decisions")
	s.NotContains(m, "timestamp")
	s.NotContains(m, "configuration")
	s.InDelta(1.5, m["duration_seconds"], 1e-9)
}

func (s *AppTestSuite) TestRunBatchCSV() {
	missing := filepath.Join(s.dir, "missing.wav")
	app, out := s.newApp(func(c *Context) {
		c.OutputFormat = "csv"
		c.MaxConcurrent = 2
	})
	s.Require().NoError(app.RunBatch(context.Background(), []string{s.filler, missing}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	s.Require().Len(lines, 3)
	s.Contains(lines[0], "location")
	s.Contains(lines[0], "filler_count")
	s.Contains(lines[0], "error_code")
	s.Contains(lines[2], "DECODING_FAILED")
	s.Equal(2, app.Config().Batch.MaxConcurrent)
}

func (s *AppTestSuite) TestRunBatchSummary() {
	app, out := s.newApp(nil)
	s.Require().NoError(app.RunBatch(context.Background(), []string{s.filler, s.silence}))

	m := s.decode(out)
	s.Equal(2.0, m["successful"])
	s.Equal(0.0, m["failed"])
	s.Len(m["results"], 2)
	metrics := m["metrics"].(map[string]any)
	s.Equal(1.0, metrics["total_fillers"])
}

func (s *AppTestSuite) TestRunBatchAllFailed() {
	app, _ := s.newApp(nil)
	err := app.RunBatch(context.Background(), []string{filepath.Join(s.dir, "nope.wav")})
	s.Require().Error(err)
	s.Contains(err.Error(), "all 1 recordings failed")
}

func (s *AppTestSuite) TestOutputFile() {
	target := filepath.Join(s.dir, "nested", "out", "report.yaml")
	app, out := s.newApp(func(c *Context) {
		c.OutputFormat = "yaml"
		c.OutputFile = target
	})
	s.Require().NoError(app.RunFillers(context.Background(), s.silence))
	s.Zero(out.Len())

	data, err := os.ReadFile(target)
	s.Require().NoError(err)
	s.Contains(string(data), "rate_per_minute: 0")
}

func (s *AppTestSuite) TestRejectsNonNativeRate() {
	path := filepath.Join(s.dir, "cd.wav")
	data, err := testsignal.EncodeWAV(testsignal.Filler(150), 44100, 16, 1)
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(path, data, 0o644))

	app, _ := s.newApp(nil)
	err = app.RunAnalyze(context.Background(), path)
	s.Require().Error(err)
	s.Equal(common.ErrCodeSampleRateMismatch, common.ErrorCode(err))
	s.ErrorIs(err, common.ErrInvalidInput)
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func TestProfileSelection(t *testing.T) {
	ctx := &Context{
		Profile: "strict",
		Logger:  logging.NewNopLogger(),
		Config:  configs.GetDefaultConfig(),
	}
	app, err := NewApp(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.8, app.Engine().Config().Filler.MaxDuration)

	_, err = NewApp(&Context{
		Profile: "missing",
		Logger:  logging.NewNopLogger(),
		Config:  configs.GetDefaultConfig(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown analysis profile "missing"`)
}

func TestLoadProfileFromFile(t *testing.T) {
	dir := t.TempDir()
	base := config.DefaultFeatureConfig()

	yamlPath := filepath.Join(dir, "coach.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("filler:\n  max_duration: 1.5\n"), 0o644))

	profile, err := loadProfileFromFile(yamlPath, base)
	require.NoError(t, err)
	assert.Equal(t, "coach", profile.Name)
	require.NotNil(t, profile.Filler)
	assert.Equal(t, 1.5, profile.Filler.MaxDuration)
	assert.Equal(t, base.Filler.MinDuration, profile.Filler.MinDuration)
	assert.Nil(t, profile.Pitch)
	assert.Nil(t, profile.Segment)
	assert.NoError(t, profile.ApplyTo(base).Validate())
	// base untouched
	assert.Equal(t, 1.0, base.Filler.MaxDuration)

	jsonPath := filepath.Join(dir, "room.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"room","segment":{"top_db":18}}`), 0o644))

	profile, err = loadProfileFromFile(jsonPath, base)
	require.NoError(t, err)
	assert.Equal(t, "room", profile.Name)
	require.NotNil(t, profile.Segment)
	assert.Equal(t, 18.0, profile.Segment.TopDB)
	assert.Equal(t, base.Segment.MinVoicedFrames, profile.Segment.MinVoicedFrames)
	assert.Nil(t, profile.Filler)

	_, err = loadProfileFromFile(filepath.Join(dir, "absent.yaml"), base)
	assert.Error(t, err)
}

func TestProfileFileIsSelected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: quiet\nsegment:\n  top_db: 35\n"), 0o644))

	ctx := &Context{
		ProfileFile: path,
		Logger:      logging.NewNopLogger(),
		Config:      configs.GetDefaultConfig(),
	}
	app, err := NewApp(ctx)
	require.NoError(t, err)
	assert.Equal(t, "quiet", ctx.Profile)
	assert.Equal(t, 35.0, app.Engine().Config().Segment.TopDB)
}

func TestMergeConfig(t *testing.T) {
	cfg := configs.GetDefaultConfig()
	mergeConfig(cfg, &Context{OutputFormat: "csv", MaxConcurrent: 9, Transcode: true, Verbose: true})

	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, 9, cfg.Batch.MaxConcurrent)
	assert.True(t, cfg.Source.Transcode)
	assert.True(t, cfg.Verbose)

	cfg = configs.GetDefaultConfig()
	mergeConfig(cfg, &Context{})
	assert.Equal(t, configs.GetDefaultConfig().OutputFormat, cfg.OutputFormat)
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := NewApp(&Context{
		OutputFormat: "xml",
		Logger:       logging.NewNopLogger(),
		Config:       configs.GetDefaultConfig(),
	})
	assert.Error(t, err)
}

func TestGenerateAndValidateExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "speech-coach.yaml")
	require.NoError(t, GenerateExampleConfig(path))

	cfg, err := ValidateConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.GetDefaultConfig().Analysis, cfg.Analysis)
	assert.Equal(t, configs.GetDefaultServerConfig(), cfg.Server)
	assert.Contains(t, cfg.Profiles, "noisy-room")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("output_format: xml\n"), 0o644))
	_, err = ValidateConfigFile(bad)
	assert.Error(t, err)
}
