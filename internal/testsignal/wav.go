package testsignal

import (
	"errors"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV renders samples as an integer PCM WAV file (8, 16, 24 or 32 bit),
// copying the mono signal into every channel
func EncodeWAV(samples []float64, sampleRate, bitDepth, channels int) ([]byte, error) {
	if channels <= 0 {
		channels = 1
	}

	peak := float64(int(1)<<(bitDepth-1) - 1)
	data := make([]int, 0, len(samples)*channels)
	for _, s := range samples {
		v := int(math.Round(math.Max(-1, math.Min(1, s)) * peak))
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v += 128
		}
		for range channels {
			data = append(data, v)
		}
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.buf, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder rewinds to
// patch chunk sizes on Close
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	b.pos = int(abs)
	return abs, nil
}
