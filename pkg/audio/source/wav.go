package source

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVSource reads integer PCM WAV files. Samples keep their file rate; no
// resampling happens here.
type WAVSource struct {
	logger logging.Logger
}

// NewWAVSource creates a WAV source
func NewWAVSource(logger logging.Logger) *WAVSource {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &WAVSource{logger: logger.WithFields(logging.Fields{"source_type": "wav"})}
}

func (s *WAVSource) Type() SourceType { return SourceTypeWAV }

// Load decodes a WAV file from disk
func (s *WAVSource) Load(ctx context.Context, path string) (*common.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewAudioError(common.ErrCodeDecoding, "failed to open WAV file", err).WithSource(path)
	}
	defer f.Close()

	w, err := DecodeWAV(f, path)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("WAV decoded", logging.Fields{
		"path":        path,
		"samples":     len(w.Samples),
		"sample_rate": w.SampleRate,
	})
	return w, nil
}

// DecodeWAV decodes a WAV stream into a mono waveform, averaging channels
func DecodeWAV(r io.ReadSeeker, name string) (*common.Waveform, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, common.NewAudioError(common.ErrCodeInvalidFormat, "not a valid WAV file", d.Err()).WithSource(name)
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, common.NewAudioErrorWithFields(common.ErrCodeUnsupported,
			"only integer PCM WAV is supported", nil,
			logging.Fields{"wav_format": int(d.WavAudioFormat)}).WithSource(name)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, common.NewAudioError(common.ErrCodeDecoding, "failed to read PCM data", err).WithSource(name)
	}

	samples, err := common.ConvertIntBuffer(buf, int(d.BitDepth))
	if err != nil {
		var ae *common.AudioError
		if errors.As(err, &ae) {
			return nil, ae.WithSource(name)
		}
		return nil, err
	}

	return &common.Waveform{
		Samples:    samples,
		SampleRate: int(d.SampleRate),
		Source:     name,
	}, nil
}
