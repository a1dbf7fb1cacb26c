package vybiumzkmips

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/machine"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

func TestVMErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *VMError
		want string
	}{
		{
			name: "without cause",
			err:  &VMError{Code: ErrInvalidInput, Message: "record cannot be nil"},
			want: "vybium-zkmips error [invalid input]: record cannot be nil",
		},
		{
			name: "with cause",
			err:  &VMError{Code: ErrCodec, Message: "failed to decode record", Cause: errors.New("EOF")},
			want: "vybium-zkmips error [codec]: failed to decode record (caused by: EOF)",
		},
		{
			name: "unknown code",
			err:  &VMError{Code: ErrorCode(99), Message: "boom"},
			want: "vybium-zkmips error [unknown]: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestVMErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("%w: shard size must be a positive power of two", utils.ErrInvalidOpts)
	err := fmt.Errorf("setup: %w", newError(ErrSharding, "invalid options", cause))

	assert.ErrorIs(t, err, utils.ErrInvalidOpts)
	assert.ErrorIs(t, err, &VMError{Code: ErrInvalidConfig})
	assert.NotErrorIs(t, err, &VMError{Code: ErrSharding})
	assert.Equal(t, ErrInvalidConfig, CodeOf(err))
	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrUnknown, CodeOf(nil))
}

func TestNewErrorClassifiesSentinels(t *testing.T) {
	tests := []struct {
		name     string
		cause    error
		fallback ErrorCode
		want     ErrorCode
	}{
		{"invalid options", utils.ErrInvalidOpts, ErrSharding, ErrInvalidConfig},
		{"chip not in shape", fmt.Errorf("%w: CPU", executor.ErrChipNotInShape), ErrTraceGeneration, ErrInvalidShape},
		{"shape too small", fmt.Errorf("CPU: %w", machine.ErrShapeTooSmall), ErrTraceGeneration, ErrInvalidShape},
		{"program mismatch", executor.ErrProgramMismatch, ErrCodec, ErrProgramMismatch},
		{"other", errors.New("unexpected EOF"), ErrCodec, ErrCodec},
		{"nil cause", nil, ErrSharding, ErrSharding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newError(tt.fallback, "msg", tt.cause)
			assert.Equal(t, tt.want, err.Code)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}
