package source

import (
	"context"
	"os"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
)

// RawPCMSource reads headerless signed 16-bit little-endian PCM
type RawPCMSource struct {
	sampleRate int
	channels   int
}

// NewRawPCMSource creates a raw PCM source for the given layout
func NewRawPCMSource(sampleRate, channels int) *RawPCMSource {
	return &RawPCMSource{sampleRate: sampleRate, channels: channels}
}

func (s *RawPCMSource) Type() SourceType { return SourceTypePCM }

// Load reads a raw PCM file from disk
func (s *RawPCMSource) Load(ctx context.Context, path string) (*common.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAudioError(common.ErrCodeDecoding, "failed to read PCM file", err).WithSource(path)
	}
	return s.Decode(data, path)
}

// Decode converts raw bytes into a waveform
func (s *RawPCMSource) Decode(data []byte, name string) (*common.Waveform, error) {
	samples, err := common.ConvertS16LE(data, s.channels)
	if err != nil {
		return nil, err
	}
	return &common.Waveform{Samples: samples, SampleRate: s.sampleRate, Source: name}, nil
}
