package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// HTTPSource downloads a recording and hands the body to the decoder its
// content type or extension calls for
type HTTPSource struct {
	client  *http.Client
	cfg     *HTTPConfig
	factory *Factory
	logger  logging.Logger
}

// NewHTTPSource creates an HTTP source decoding through the factory's sources
func NewHTTPSource(cfg *HTTPConfig, factory *Factory, logger logging.Logger) *HTTPSource {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	maxRedirects := cfg.MaxRedirects
	return &HTTPSource{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		cfg:     cfg,
		factory: factory,
		logger:  logger.WithFields(logging.Fields{"source_type": "http"}),
	}
}

func (s *HTTPSource) Type() SourceType { return SourceTypeHTTP }

// Load downloads and decodes a remote recording
func (s *HTTPSource) Load(ctx context.Context, location string) (*common.Waveform, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, common.NewAudioError(common.ErrCodeConnection, "failed to create request", err).WithSource(location)
	}
	for k, v := range s.cfg.GetHTTPHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, common.NewAudioError(common.ErrCodeTimeout, "download timed out", err).WithSource(location)
		}
		return nil, common.NewAudioError(common.ErrCodeConnection, "failed to download recording", err).WithSource(location)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, common.NewAudioErrorWithFields(common.ErrCodeConnection,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil,
			logging.Fields{"status": resp.StatusCode}).WithSource(location)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, common.NewAudioError(common.ErrCodeConnection, "failed to read response body", err).WithSource(location)
	}
	if int64(len(data)) > s.cfg.MaxBodyBytes {
		return nil, common.NewAudioErrorWithFields(common.ErrCodeInvalidFormat,
			"recording exceeds size limit", nil,
			logging.Fields{"max_body_bytes": s.cfg.MaxBodyBytes}).WithSource(location)
	}

	contentType := resp.Header.Get("Content-Type")

	s.logger.Debug("Recording downloaded", logging.Fields{
		"url":          location,
		"bytes":        len(data),
		"content_type": contentType,
	})

	return s.factory.Decode(ctx, data, contentType, location)
}
