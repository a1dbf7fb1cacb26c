package vybiumzkmips

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/machine"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

// ErrorCode represents different types of errors
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents invalid sharding or split options
	ErrInvalidConfig

	// ErrInvalidInput represents invalid input data
	ErrInvalidInput

	// ErrInvalidShape represents a shape that does not fit the shard it is applied to
	ErrInvalidShape

	// ErrSharding represents a failure while deferring or splitting records
	ErrSharding

	// ErrTraceGeneration represents a failure while building chip traces
	ErrTraceGeneration

	// ErrProgramMismatch represents a record decoded against the wrong program
	ErrProgramMismatch

	// ErrCodec represents a failure while encoding or decoding a record
	ErrCodec
)

// String returns the name of the error code
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidConfig:
		return "invalid config"
	case ErrInvalidInput:
		return "invalid input"
	case ErrInvalidShape:
		return "invalid shape"
	case ErrSharding:
		return "sharding"
	case ErrTraceGeneration:
		return "trace generation"
	case ErrProgramMismatch:
		return "program mismatch"
	case ErrCodec:
		return "codec"
	default:
		return "unknown"
	}
}

// VMError represents an error from the zkMIPS pipeline
type VMError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *VMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-zkmips error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-zkmips error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *VMError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *VMError) Is(target error) bool {
	t, ok := target.(*VMError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the code of the first VMError in err's chain, or ErrUnknown.
func CodeOf(err error) ErrorCode {
	var vmErr *VMError
	if errors.As(err, &vmErr) {
		return vmErr.Code
	}
	return ErrUnknown
}

// newError wraps cause in a VMError. Known internal sentinels take precedence
// over fallback so callers can match on the precise failure.
func newError(fallback ErrorCode, message string, cause error) *VMError {
	code := fallback
	switch {
	case errors.Is(cause, utils.ErrInvalidOpts):
		code = ErrInvalidConfig
	case errors.Is(cause, executor.ErrChipNotInShape), errors.Is(cause, machine.ErrShapeTooSmall):
		code = ErrInvalidShape
	case errors.Is(cause, executor.ErrProgramMismatch):
		code = ErrProgramMismatch
	}
	return &VMError{Code: code, Message: message, Cause: cause}
}
