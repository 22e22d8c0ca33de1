package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FeatureConfig holds every tunable constant of the analysis engine.
// One frame geometry is shared by pitch, spectral, RMS, segmentation and onset analysis.
type FeatureConfig struct {
	// Frame geometry
	SampleRate  int    `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	FrameLength int    `json:"frame_length" yaml:"frame_length" mapstructure:"frame_length" validate:"gte=64"`
	HopLength   int    `json:"hop_length" yaml:"hop_length" mapstructure:"hop_length" validate:"gt=0,ltefield=FrameLength"`
	Window      string `json:"window" yaml:"window" mapstructure:"window" validate:"oneof=hann hamming blackman rectangular"`

	// Mel / cepstral analysis
	NumMelFilters    int     `json:"num_mel_filters" yaml:"num_mel_filters" mapstructure:"num_mel_filters" validate:"gte=13"`
	MFCCCoefficients int     `json:"mfcc_coefficients" yaml:"mfcc_coefficients" mapstructure:"mfcc_coefficients" validate:"eq=13"`
	LogFloorDB       float64 `json:"log_floor_db" yaml:"log_floor_db" mapstructure:"log_floor_db" validate:"gt=0"`

	// Samples with magnitude below this count as silence
	SilenceThreshold float64 `json:"silence_threshold" yaml:"silence_threshold" mapstructure:"silence_threshold" validate:"gt=0,lt=1"`

	Pitch   PitchConfig   `json:"pitch" yaml:"pitch" mapstructure:"pitch"`
	Segment SegmentConfig `json:"segment" yaml:"segment" mapstructure:"segment"`
	Onset   OnsetConfig   `json:"onset" yaml:"onset" mapstructure:"onset"`
	Filler  FillerConfig  `json:"filler" yaml:"filler" mapstructure:"filler"`

	// Upper bound on goroutines used for per-frame work, 0 means GOMAXPROCS
	MaxWorkers int `json:"max_workers" yaml:"max_workers" mapstructure:"max_workers" validate:"gte=0"`
}

// PitchConfig configures utterance-level pitch tracking
type PitchConfig struct {
	FMin      float64 `json:"fmin" yaml:"fmin" mapstructure:"fmin" validate:"gt=0"`
	FMax      float64 `json:"fmax" yaml:"fmax" mapstructure:"fmax" validate:"gtfield=FMin"`
	Threshold float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold" validate:"gt=0,lt=1"`
}

// SegmentConfig configures voice activity segmentation
type SegmentConfig struct {
	TopDB           float64 `json:"top_db" yaml:"top_db" mapstructure:"top_db" validate:"gt=0"`
	MinVoicedFrames int     `json:"min_voiced_frames" yaml:"min_voiced_frames" mapstructure:"min_voiced_frames" validate:"gte=1"`
}

// OnsetConfig configures onset peak picking, all windows in frames
type OnsetConfig struct {
	PreMax  int     `json:"pre_max" yaml:"pre_max" mapstructure:"pre_max" validate:"gte=0"`
	PostMax int     `json:"post_max" yaml:"post_max" mapstructure:"post_max" validate:"gte=0"`
	PreAvg  int     `json:"pre_avg" yaml:"pre_avg" mapstructure:"pre_avg" validate:"gte=0"`
	PostAvg int     `json:"post_avg" yaml:"post_avg" mapstructure:"post_avg" validate:"gte=0"`
	Wait    int     `json:"wait" yaml:"wait" mapstructure:"wait" validate:"gte=0"`
	Delta   float64 `json:"delta" yaml:"delta" mapstructure:"delta" validate:"gte=0"`
}

// FillerConfig holds the filler classification thresholds
type FillerConfig struct {
	MinDuration      float64 `json:"min_duration" yaml:"min_duration" mapstructure:"min_duration" validate:"gte=0"`
	MaxDuration      float64 `json:"max_duration" yaml:"max_duration" mapstructure:"max_duration" validate:"gtfield=MinDuration"`
	MinPitchFrames   int     `json:"min_pitch_frames" yaml:"min_pitch_frames" mapstructure:"min_pitch_frames" validate:"gte=1"`
	MinPitchMean     float64 `json:"min_pitch_mean" yaml:"min_pitch_mean" mapstructure:"min_pitch_mean" validate:"gte=0"`
	MaxPitchMean     float64 `json:"max_pitch_mean" yaml:"max_pitch_mean" mapstructure:"max_pitch_mean" validate:"gtfield=MinPitchMean"`
	MaxPitchVariance float64 `json:"max_pitch_variance" yaml:"max_pitch_variance" mapstructure:"max_pitch_variance" validate:"gt=0"`
	MaxMFCCVariance  float64 `json:"max_mfcc_variance" yaml:"max_mfcc_variance" mapstructure:"max_mfcc_variance" validate:"gt=0"`
	FMin             float64 `json:"fmin" yaml:"fmin" mapstructure:"fmin" validate:"gt=0"`
	FMax             float64 `json:"fmax" yaml:"fmax" mapstructure:"fmax" validate:"gtfield=FMin"`
}

// DefaultFeatureConfig returns the engine defaults: 16 kHz, 64 ms frames with a 16 ms hop
func DefaultFeatureConfig() *FeatureConfig {
	return &FeatureConfig{
		SampleRate:       16000,
		FrameLength:      1024,
		HopLength:        256,
		Window:           "hann",
		NumMelFilters:    40,
		MFCCCoefficients: 13,
		LogFloorDB:       80,
		SilenceThreshold: 0.02,
		Pitch: PitchConfig{
			FMin:      60,
			FMax:      300,
			Threshold: 0.1,
		},
		Segment: SegmentConfig{
			TopDB:           25,
			MinVoicedFrames: 3,
		},
		Onset: OnsetConfig{
			PreMax:  1,
			PostMax: 1,
			PreAvg:  6,
			PostAvg: 7,
			Wait:    2,
			Delta:   0.07,
		},
		Filler: FillerConfig{
			MinDuration:      0.2,
			MaxDuration:      1.0,
			MinPitchFrames:   5,
			MinPitchMean:     80,
			MaxPitchMean:     250,
			MaxPitchVariance: 50,
			MaxMFCCVariance:  20,
			FMin:             60,
			FMax:             300,
		},
	}
}

// Clone returns a copy; the config holds no reference types
func (c *FeatureConfig) Clone() *FeatureConfig {
	cp := *c
	return &cp
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct checks the validate struct tags of s, naming fields by their json tag
func ValidateStruct(what string, s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()+paramSuffix(fe.Param())))
		}
		return fmt.Errorf("invalid %s: %s", what, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("invalid %s: %w", what, err)
}

// Validate checks field ranges and the frame geometry constraints
func (c *FeatureConfig) Validate() error {
	if err := ValidateStruct("feature config", c); err != nil {
		return err
	}

	if c.FrameLength%2 != 0 {
		return fmt.Errorf("invalid feature config: frame_length must be even, got %d", c.FrameLength)
	}

	nyquist := float64(c.SampleRate) / 2
	if c.Pitch.FMax > nyquist || c.Filler.FMax > nyquist {
		return fmt.Errorf("invalid feature config: pitch fmax must not exceed nyquist (%.0f Hz)", nyquist)
	}

	// the lag search must fit inside one frame
	for _, fmin := range []float64{c.Pitch.FMin, c.Filler.FMin} {
		if need := c.FrameLength/2 + int(float64(c.SampleRate)/fmin) + 1; need > c.FrameLength {
			return fmt.Errorf("invalid feature config: frame_length %d too short for fmin %.0f Hz (needs %d)",
				c.FrameLength, fmin, need)
		}
	}

	return nil
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}
