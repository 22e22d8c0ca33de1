package common

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioErrorIs(t *testing.T) {
	tests := []struct {
		code     string
		input    bool
		contract bool
	}{
		{ErrCodeSampleRateMismatch, true, false},
		{ErrCodeInvalidSamples, true, false},
		{ErrCodeInvalidContract, false, true},
		{ErrCodeInvalidFormat, false, false},
		{ErrCodeDecoding, false, false},
		{ErrCodeTimeout, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("loading clip: %w", NewAudioError(tt.code, "failed", nil))
			assert.Equal(t, tt.input, errors.Is(err, ErrInvalidInput))
			assert.Equal(t, tt.contract, errors.Is(err, ErrInvalidContract))
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}

func TestAudioErrorChain(t *testing.T) {
	err := NewAudioError(ErrCodeDecoding, "failed to read chunk", io.ErrUnexpectedEOF)
	assert.Equal(t, "failed to read chunk: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	tagged := err.WithSource("clip.wav")
	assert.Equal(t, "clip.wav", tagged.Source)
	assert.Empty(t, err.Source)

	assert.Equal(t, "bare", NewAudioError(ErrCodeTimeout, "bare", nil).Error())
	assert.Empty(t, ErrorCode(io.EOF))
	assert.Empty(t, ErrorCode(nil))
}

func TestConvertIntBufferEightBitIsUnsigned(t *testing.T) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: DefaultSampleRate},
		Data:   []int{0, 128, 255},
	}

	samples, err := ConvertIntBuffer(buf, 8)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 127.0 / 128}, samples)
}

func TestConvertIntBufferScalesAndDownmixes(t *testing.T) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: DefaultSampleRate},
		Data:   []int{16384, -16384, 32767, 32767},
	}

	samples, err := ConvertIntBuffer(buf, 16)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 32767.0 / 32768}, samples)

	samples, err = ConvertIntBuffer(&audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1},
		Data:   []int{-8388608},
	}, 24)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1}, samples)
}

func TestConvertIntBufferErrors(t *testing.T) {
	_, err := ConvertIntBuffer(nil, 16)
	assert.Equal(t, ErrCodeDecoding, ErrorCode(err))

	_, err = ConvertIntBuffer(&audio.IntBuffer{Data: []int{1}}, 16)
	assert.Equal(t, ErrCodeDecoding, ErrorCode(err))

	_, err = ConvertIntBuffer(&audio.IntBuffer{Format: &audio.Format{NumChannels: 1}}, 12)
	assert.Equal(t, ErrCodeUnsupported, ErrorCode(err))
}

func TestConvertS16LE(t *testing.T) {
	samples, err := ConvertS16LE([]byte{0x00, 0x80, 0xff, 0x7f, 0x00, 0x00}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 32767.0 / 32768, 0}, samples)

	// channel count defaults to mono
	samples, err = ConvertS16LE([]byte{0x00, 0x40}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, samples)

	_, err = ConvertS16LE([]byte{0x00, 0x80, 0x01}, 1)
	assert.Equal(t, ErrCodeInvalidFormat, ErrorCode(err))
}

func TestDownmixInterleaved(t *testing.T) {
	mono := []float64{0.1, 0.2}
	assert.Equal(t, mono, DownmixInterleaved(mono, 1))

	// a trailing partial frame is dropped
	got := DownmixInterleaved([]float64{0.3, 0.6, 0.9, -0.3, 0, 0.3, 1}, 3)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.6, got[0], 1e-12)
	assert.InDelta(t, 0.0, got[1], 1e-12)

	assert.Empty(t, DownmixInterleaved(nil, 2))
}

func TestCheckContract(t *testing.T) {
	assert.NoError(t, CheckContract([]float64{0, 0.5}, DefaultSampleRate, DefaultSampleRate))
	assert.NoError(t, CheckContract(nil, DefaultSampleRate, DefaultSampleRate))

	err := CheckContract(nil, 0, DefaultSampleRate)
	assert.ErrorIs(t, err, ErrInvalidContract)

	err = CheckContract(nil, 44100, DefaultSampleRate)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, ErrCodeSampleRateMismatch, ErrorCode(err))

	err = CheckContract([]float64{0, math.NaN()}, DefaultSampleRate, DefaultSampleRate)
	assert.Equal(t, ErrCodeInvalidSamples, ErrorCode(err))
	var ae *AudioError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 1, ae.Fields["index"])
}

func TestWaveformDuration(t *testing.T) {
	w := &Waveform{Samples: make([]float64, 24000), SampleRate: DefaultSampleRate}
	assert.Equal(t, 24000, w.NumSamples())
	assert.InDelta(t, 1.5, w.Seconds(), 1e-12)
	assert.Equal(t, 1500*time.Millisecond, w.Duration())

	var empty *Waveform
	assert.Zero(t, empty.NumSamples())
	assert.Zero(t, empty.Seconds())
	assert.Zero(t, (&Waveform{Samples: []float64{1}}).Seconds())
}
