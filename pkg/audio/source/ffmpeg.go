package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// FFmpegSource extracts the audio track of any container ffmpeg understands,
// downmixed to mono and resampled to the analysis rate
type FFmpegSource struct {
	binary     string
	sampleRate int
	logger     logging.Logger
}

// NewFFmpegSource creates an ffmpeg-backed source
func NewFFmpegSource(binary string, sampleRate int, logger logging.Logger) *FFmpegSource {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &FFmpegSource{
		binary:     binary,
		sampleRate: sampleRate,
		logger:     logger.WithFields(logging.Fields{"source_type": "ffmpeg"}),
	}
}

func (s *FFmpegSource) Type() SourceType { return SourceTypeFFmpeg }

// Load transcodes a local file
func (s *FFmpegSource) Load(ctx context.Context, path string) (*common.Waveform, error) {
	return s.Transcode(ctx, path, nil, path)
}

// Transcode runs ffmpeg on input; pass "pipe:0" with a non-nil stdin to feed bytes
func (s *FFmpegSource) Transcode(ctx context.Context, input string, stdin io.Reader, name string) (*common.Waveform, error) {
	args := s.args(input)
	cmd := exec.CommandContext(ctx, s.binary, args...) //nolint:gosec // input is the recording to transcode

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return nil, common.NewAudioErrorWithFields(common.ErrCodeUnsupported,
				"ffmpeg not found", err, logging.Fields{"binary": s.binary}).WithSource(name)
		case ctx.Err() != nil:
			return nil, common.NewAudioError(common.ErrCodeTimeout,
				"transcode cancelled", ctx.Err()).WithSource(name)
		default:
			return nil, common.NewAudioErrorWithFields(common.ErrCodeTranscode,
				"ffmpeg failed", err,
				logging.Fields{"stderr": strings.TrimSpace(stderr.String())}).WithSource(name)
		}
	}

	samples, err := common.ConvertS16LE(stdout.Bytes(), 1)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Transcode complete", logging.Fields{
		"input":       name,
		"samples":     len(samples),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &common.Waveform{Samples: samples, SampleRate: s.sampleRate, Source: name}, nil
}

func (s *FFmpegSource) args(input string) []string {
	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", input,
		"-vn", "-ac", "1", "-ar", strconv.Itoa(s.sampleRate),
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-",
	}
}
