package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analysis"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/extractors"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

const (
	tracerName = "github.com/Anupamak004/Public-speaking-coach/internal/server"

	codeMissingAudio   = "MISSING_AUDIO"
	codeBadRequest     = "BAD_REQUEST"
	codeBodyTooLarge   = "BODY_TOO_LARGE"
	codeInternal       = "INTERNAL"
	uploadField        = "file"
	defaultUploadName  = "upload"
	multipartMediaType = "multipart/form-data"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// AnalyzeResponse is the body of a successful analysis
type AnalyzeResponse struct {
	RequestID string             `json:"request_id"`
	Report    *analysis.Report   `json:"report,omitempty"`
	Slots     map[string]float64 `json:"slots"`
}

// FillersResponse is the body of a successful filler detection
type FillersResponse struct {
	RequestID       string                           `json:"request_id"`
	DurationSeconds float64                          `json:"duration_seconds"`
	Fillers         extractors.FillerDetectionResult `json:"fillers"`
}

// analysisQuery holds the optional query parameters of the analysis routes
type analysisQuery struct {
	VectorOnly bool  `form:"vector_only"`
	Decisions  *bool `form:"decisions"`
}

func (q analysisQuery) includeDecisions() bool {
	return q.Decisions == nil || *q.Decisions
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"vector_version": extractors.FeatureVectorVersion,
		"sample_rate":    s.analysis.Config().SampleRate,
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	ctx, span := s.startSpan(c, "speech.analyze")
	defer span.End()

	var query analysisQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.respondError(c, span, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	w, ok := s.readWaveform(ctx, c, span)
	if !ok {
		return
	}

	report, err := s.analysis.AnalyzeWaveform(w)
	if err != nil {
		s.respondAnalysisError(c, span, err)
		return
	}

	span.SetAttributes(
		attribute.Float64("speech.duration_s", report.DurationSeconds),
		attribute.Int("speech.filler_count", report.Fillers.Count),
		attribute.Int("speech.onset_count", report.Prosody.OnsetCount),
	)

	resp := AnalyzeResponse{
		RequestID: c.GetString(requestIDKey),
		Slots:     report.NamedVector(),
	}
	if !query.VectorOnly {
		if !query.includeDecisions() {
			report.Fillers.Decisions = nil
		}
		resp.Report = report
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFillers(c *gin.Context) {
	ctx, span := s.startSpan(c, "speech.fillers")
	defer span.End()

	var query analysisQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.respondError(c, span, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	w, ok := s.readWaveform(ctx, c, span)
	if !ok {
		return
	}

	result, err := s.analysis.DetectFillers(w.Samples, w.SampleRate)
	if err != nil {
		s.respondAnalysisError(c, span, err)
		return
	}
	if !query.includeDecisions() {
		result.Decisions = nil
	}

	span.SetAttributes(attribute.Int("speech.filler_count", result.Count))

	c.JSON(http.StatusOK, FillersResponse{
		RequestID:       c.GetString(requestIDKey),
		DurationSeconds: w.Seconds(),
		Fillers:         result,
	})
}

func (s *Server) startSpan(c *gin.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(c.Request.Context(), name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.route", c.FullPath()),
			attribute.String("request_id", c.GetString(requestIDKey)),
		),
	)
}

// readWaveform reads the recording from a multipart "file" field or the raw
// body and decodes it. On failure the response has been written.
func (s *Server) readWaveform(ctx context.Context, c *gin.Context, span trace.Span) (*common.Waveform, bool) {
	var (
		data        []byte
		contentType = c.GetHeader("Content-Type")
		name        = defaultUploadName
		err         error
	)

	if c.ContentType() == multipartMediaType {
		fh, ferr := c.FormFile(uploadField)
		if ferr != nil {
			s.respondReadError(c, span, ferr)
			return nil, false
		}
		f, ferr := fh.Open()
		if ferr != nil {
			s.respondReadError(c, span, ferr)
			return nil, false
		}
		defer f.Close()

		data, err = io.ReadAll(f)
		contentType = fh.Header.Get("Content-Type")
		name = fh.Filename
	} else {
		data, err = io.ReadAll(c.Request.Body)
	}
	if err != nil {
		s.respondReadError(c, span, err)
		return nil, false
	}
	if len(data) == 0 {
		s.respondError(c, span, http.StatusBadRequest, codeMissingAudio, errors.New("request carries no audio"))
		return nil, false
	}

	if isRIFFWave(data) && !isAudioType(contentType) {
		contentType = "audio/wav"
	}

	span.SetAttributes(
		attribute.Int("speech.upload_bytes", len(data)),
		attribute.String("speech.content_type", contentType),
	)

	w, err := s.sources.Decode(ctx, data, contentType, name)
	if err != nil {
		s.respondError(c, span, http.StatusBadRequest, errorCode(err, common.ErrCodeDecoding), err)
		return nil, false
	}
	return w, true
}

func (s *Server) respondReadError(c *gin.Context, span trace.Span, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		s.respondError(c, span, http.StatusRequestEntityTooLarge, codeBodyTooLarge, err)
	case errors.Is(err, http.ErrMissingFile):
		s.respondError(c, span, http.StatusBadRequest, codeMissingAudio, err)
	default:
		s.respondError(c, span, http.StatusBadRequest, codeBadRequest, err)
	}
}

// respondAnalysisError maps engine errors: contract and input violations are 422
func (s *Server) respondAnalysisError(c *gin.Context, span trace.Span, err error) {
	if errors.Is(err, common.ErrInvalidInput) || errors.Is(err, common.ErrInvalidContract) {
		s.respondError(c, span, http.StatusUnprocessableEntity, errorCode(err, common.ErrCodeInvalidContract), err)
		return
	}
	s.respondError(c, span, http.StatusInternalServerError, codeInternal, err)
}

func (s *Server) respondError(c *gin.Context, span trace.Span, status int, code string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status >= 500 {
		s.logger.Error(err, "Request failed", logging.Fields{
			"code":       code,
			"request_id": c.GetString(requestIDKey),
		})
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: c.GetString(requestIDKey),
	})
}

func errorCode(err error, fallback string) string {
	if code := common.ErrorCode(err); code != "" {
		return code
	}
	return fallback
}

func isRIFFWave(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

func isAudioType(contentType string) bool {
	return len(contentType) >= 6 && contentType[:6] == "audio/"
}
