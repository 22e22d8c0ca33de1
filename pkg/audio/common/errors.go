package common

import (
	"errors"

	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

var (
	// ErrInvalidInput matches audio errors caused by input the caller must fix
	ErrInvalidInput = errors.New("invalid audio input")

	// ErrInvalidContract matches audio errors that violate the engine contract
	ErrInvalidContract = errors.New("invalid analysis contract")
)

// Common error codes
const (
	ErrCodeSampleRateMismatch = "SAMPLE_RATE_MISMATCH"
	ErrCodeInvalidSamples     = "INVALID_SAMPLES"
	ErrCodeInvalidContract    = "INVALID_CONTRACT"
	ErrCodeConnection         = "CONNECTION_FAILED"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInvalidFormat      = "INVALID_FORMAT"
	ErrCodeDecoding           = "DECODING_FAILED"
	ErrCodeUnsupported        = "UNSUPPORTED_SOURCE"
	ErrCodeTranscode          = "TRANSCODE_FAILED"
)

// AudioError represents audio input and decoding errors
type AudioError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Source  string         `json:"source,omitempty"`
	Fields  logging.Fields `json:"fields,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AudioError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AudioError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error belongs to one of the sentinel classes
func (e *AudioError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Code == ErrCodeSampleRateMismatch || e.Code == ErrCodeInvalidSamples
	case ErrInvalidContract:
		return e.Code == ErrCodeInvalidContract
	}
	return false
}

// NewAudioError creates a new audio error
func NewAudioError(code, message string, cause error) *AudioError {
	return &AudioError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAudioErrorWithFields creates a new audio error carrying log fields
func NewAudioErrorWithFields(code, message string, cause error, fields logging.Fields) *AudioError {
	return &AudioError{
		Code:    code,
		Message: message,
		Fields:  fields,
		Cause:   cause,
	}
}

// WithSource returns a copy of the error tagged with the location it came from
func (e *AudioError) WithSource(source string) *AudioError {
	cp := *e
	cp.Source = source
	return &cp
}

// ErrorCode extracts the code of the first AudioError in the chain
func ErrorCode(err error) string {
	var ae *AudioError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
