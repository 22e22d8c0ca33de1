package source

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// SourceType identifies how a recording is loaded
type SourceType string

const (
	SourceTypeWAV         SourceType = "wav"
	SourceTypePCM         SourceType = "pcm"
	SourceTypeFFmpeg      SourceType = "ffmpeg"
	SourceTypeHTTP        SourceType = "http"
	SourceTypeUnsupported SourceType = "unsupported"
)

// Source loads a recording into a mono waveform
type Source interface {
	Type() SourceType
	Load(ctx context.Context, location string) (*common.Waveform, error)
}

// Factory creates sources by type and detects the type of a location
type Factory struct {
	sources  map[SourceType]func() Source
	detector *Detector
	cfg      *Config
	logger   logging.Logger
	mu       sync.RWMutex
}

// NewFactory creates a factory with the WAV, raw PCM, ffmpeg and HTTP sources registered
func NewFactory(cfg *Config, logger logging.Logger) *Factory {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	f := &Factory{
		sources:  make(map[SourceType]func() Source),
		detector: NewDetector(cfg.Transcode),
		cfg:      cfg,
		logger:   logger.WithFields(logging.Fields{"component": "source_factory"}),
	}

	f.RegisterSourceFactory(SourceTypeWAV, func() Source {
		return NewWAVSource(f.logger)
	})
	f.RegisterSourceFactory(SourceTypePCM, func() Source {
		return NewRawPCMSource(cfg.SampleRate, cfg.Channels)
	})
	f.RegisterSourceFactory(SourceTypeFFmpeg, func() Source {
		return NewFFmpegSource(cfg.FFmpegPath, cfg.SampleRate, f.logger)
	})
	f.RegisterSourceFactory(SourceTypeHTTP, func() Source {
		return NewHTTPSource(&cfg.HTTP, f, f.logger)
	})

	return f
}

// CreateSource creates a source for the given type
func (f *Factory) CreateSource(sourceType SourceType) (Source, error) {
	f.mu.RLock()
	sourceFactory, exists := f.sources[sourceType]
	f.mu.RUnlock()

	if !exists {
		return nil, common.NewAudioErrorWithFields(common.ErrCodeUnsupported,
			fmt.Sprintf("unsupported source type: %s", sourceType), nil,
			logging.Fields{"source_type": string(sourceType)})
	}

	return sourceFactory(), nil
}

// DetectAndCreate detects the source type of a location and creates the matching source
func (f *Factory) DetectAndCreate(location string) (Source, error) {
	sourceType := f.detector.DetectType(location)
	if sourceType == SourceTypeUnsupported {
		return nil, common.NewAudioError(common.ErrCodeUnsupported,
			"unable to determine source type", nil).WithSource(location)
	}
	return f.CreateSource(sourceType)
}

// Load detects, creates and loads in one step
func (f *Factory) Load(ctx context.Context, location string) (*common.Waveform, error) {
	src, err := f.DetectAndCreate(location)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Loading recording", logging.Fields{
		"location":    location,
		"source_type": string(src.Type()),
	})

	return src.Load(ctx, location)
}

// Decode decodes an in-memory recording. The content type, or failing that
// the name's extension, picks WAV, raw PCM or an ffmpeg transcode over stdin.
func (f *Factory) Decode(ctx context.Context, data []byte, contentType, name string) (*common.Waveform, error) {
	sourceType := f.detector.DetectFromContentType(contentType, name)

	f.logger.Debug("Decoding recording", logging.Fields{
		"name":         name,
		"bytes":        len(data),
		"content_type": contentType,
		"decode_as":    string(sourceType),
	})

	switch sourceType {
	case SourceTypeWAV:
		return DecodeWAV(bytes.NewReader(data), name)
	case SourceTypePCM:
		return NewRawPCMSource(f.cfg.SampleRate, f.cfg.Channels).Decode(data, name)
	default:
		ffmpeg := NewFFmpegSource(f.cfg.FFmpegPath, f.cfg.SampleRate, f.logger)
		return ffmpeg.Transcode(ctx, "pipe:0", bytes.NewReader(data), name)
	}
}

// RegisterSourceFactory registers a source constructor for a type
func (f *Factory) RegisterSourceFactory(sourceType SourceType, factory func() Source) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sources[sourceType] = factory
}

// SupportedTypes returns the registered source types in sorted order
func (f *Factory) SupportedTypes() []SourceType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]SourceType, 0, len(f.sources))
	for sourceType := range f.sources {
		types = append(types, sourceType)
	}
	slices.Sort(types)
	return types
}

// Detector returns the factory's detector
func (f *Factory) Detector() *Detector {
	return f.detector
}
