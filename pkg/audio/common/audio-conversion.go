package common

import (
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
	"github.com/go-audio/audio"
)

// ConvertS16LE converts interleaved signed 16-bit little-endian PCM to mono float samples
func ConvertS16LE(buffer []byte, channels int) ([]float64, error) {
	if channels <= 0 {
		channels = 1
	}
	if len(buffer)%2 != 0 {
		return nil, NewAudioErrorWithFields(ErrCodeInvalidFormat,
			"buffer size not aligned for 16-bit samples", nil,
			logging.Fields{"buffer_size": len(buffer)})
	}

	sampleCount := len(buffer) / 2
	interleaved := make([]float64, sampleCount)
	for i := range sampleCount {
		sample := int16(uint16(buffer[i*2]) | uint16(buffer[i*2+1])<<8)
		interleaved[i] = float64(sample) / 32768.0
	}

	return DownmixInterleaved(interleaved, channels), nil
}

// ConvertIntBuffer converts a decoded integer buffer to mono float samples,
// scaling by the source bit depth
func ConvertIntBuffer(buf *audio.IntBuffer, bitDepth int) ([]float64, error) {
	if buf == nil || buf.Format == nil {
		return nil, NewAudioError(ErrCodeDecoding, "missing PCM format", nil)
	}

	var scale float64
	switch bitDepth {
	case 8:
		scale = 128.0
	case 16:
		scale = 32768.0
	case 24:
		scale = 8388608.0
	case 32:
		scale = 2147483648.0
	default:
		return nil, NewAudioErrorWithFields(ErrCodeUnsupported,
			"unsupported PCM bit depth", nil,
			logging.Fields{"bit_depth": bitDepth})
	}

	interleaved := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			interleaved[i] = (float64(v) - 128.0) / scale
			continue
		}
		interleaved[i] = float64(v) / scale
	}

	return DownmixInterleaved(interleaved, buf.Format.NumChannels), nil
}

// DownmixInterleaved averages interleaved channels into a mono signal
func DownmixInterleaved(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
