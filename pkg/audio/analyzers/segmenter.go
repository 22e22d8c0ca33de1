package analyzers

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// VoicedInterval is a half-open sample range [StartSample, EndSample)
type VoicedInterval struct {
	StartSample int `json:"start_sample"`
	EndSample   int `json:"end_sample"`
}

// Len returns the interval length in samples
func (vi VoicedInterval) Len() int {
	return vi.EndSample - vi.StartSample
}

// Seconds returns the interval length in seconds
func (vi VoicedInterval) Seconds(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(vi.Len()) / float64(sampleRate)
}

// VoiceActivitySegmenter splits a waveform on frames more than TopDB below the loudest frame
type VoiceActivitySegmenter struct {
	framer          *Framer
	topDB           float64
	minVoicedFrames int
	logger          logging.Logger
}

// NewVoiceActivitySegmenter creates a segmenter
func NewVoiceActivitySegmenter(cfg *config.FeatureConfig) *VoiceActivitySegmenter {
	vs := &VoiceActivitySegmenter{
		framer:          NewFramer(cfg.FrameLength, cfg.HopLength),
		topDB:           cfg.Segment.TopDB,
		minVoicedFrames: cfg.Segment.MinVoicedFrames,
	}
	return vs.WithLogger(logging.NewDefaultLogger())
}

// WithLogger routes the segmenter's logs to l
func (vs *VoiceActivitySegmenter) WithLogger(l logging.Logger) *VoiceActivitySegmenter {
	vs.logger = l.WithFields(logging.Fields{
		"component": "voice_activity_segmenter",
		"top_db":    vs.topDB,
	})
	return vs
}

// Split returns the ordered, non-overlapping voiced intervals of a waveform
func (vs *VoiceActivitySegmenter) Split(samples []float64) []VoicedInterval {
	return vs.SplitRMS(vs.framer.FrameRMS(samples), len(samples))
}

// SplitRMS segments from precomputed frame RMS values of an n-sample waveform
func (vs *VoiceActivitySegmenter) SplitRMS(rms []float64, n int) []VoicedInterval {
	intervals := []VoicedInterval{}
	if len(rms) == 0 {
		return intervals
	}

	peak := floats.Max(rms)
	if peak <= 0 {
		return intervals
	}

	voiced := make([]bool, len(rms))
	for i, r := range rms {
		voiced[i] = r > 0 && 20*math.Log10(r/peak) > -vs.topDB
	}

	for i := 0; i < len(voiced); {
		if !voiced[i] {
			i++
			continue
		}

		j := i
		for j+1 < len(voiced) && voiced[j+1] {
			j++
		}

		// runs shorter than the minimum merge into silence
		if j-i+1 >= vs.minVoicedFrames {
			intervals = append(intervals, VoicedInterval{
				StartSample: vs.framer.Offset(i),
				EndSample:   min(n, vs.framer.Offset(j)+vs.framer.FrameLength),
			})
		}
		i = j + 1
	}

	// the tail of one run's last frame may reach into the next run
	for k := 0; k+1 < len(intervals); k++ {
		intervals[k].EndSample = min(intervals[k].EndSample, intervals[k+1].StartSample)
	}

	vs.logger.Debug("Voiced intervals detected", logging.Fields{
		"frames":    len(rms),
		"intervals": len(intervals),
	})

	return intervals
}
