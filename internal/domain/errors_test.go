package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{
			name:     "validation error",
			err:      NewValidationError("payload", "missing field email"),
			expected: ErrorTypeValidation,
		},
		{
			name:     "upstream error",
			err:      NewUpstreamError("agent-service", "agent returned 503"),
			expected: ErrorTypeUpstream,
		},
		{
			name:     "evaluation error",
			err:      NewEvaluationError("condition references undefined input", nil),
			expected: ErrorTypeEvaluation,
		},
		{
			name:     "timeout error",
			err:      NewTimeoutError("agent call", 5*time.Second),
			expected: ErrorTypeTimeout,
		},
		{
			name:     "cancellation error",
			err:      NewCancellationError("exec-1"),
			expected: ErrorTypeCancelled,
		},
		{
			name:     "config error",
			err:      NewConfigError("graph", fmt.Errorf("graph contains a cycle")),
			expected: ErrorTypeConfig,
		},
		{
			name:     "not found error",
			err:      NewNotFoundError("action", "send-email"),
			expected: ErrorTypeNotFound,
		},
		{
			name:     "wrapped envelope",
			err:      fmt.Errorf("run failed: %w", NewTimeoutError("node", time.Second)),
			expected: ErrorTypeTimeout,
		},
		{
			name:     "timeout sentinel",
			err:      fmt.Errorf("call: %w", ErrTimeout),
			expected: ErrorTypeTimeout,
		},
		{
			name:     "cancelled sentinel",
			err:      ErrCancelled,
			expected: ErrorTypeCancelled,
		},
		{
			name:     "plain error maps to internal",
			err:      errors.New("boom"),
			expected: ErrorTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeOf(tt.err))
		})
	}
}

func TestErrorString(t *testing.T) {
	err := NewNotFoundError("action", "send-email")
	assert.Equal(t, "not_found: action not found: send-email", err.Error())
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("f", "bad")))
	assert.True(t, IsUpstream(NewUpstreamError("svc", "down")))
	assert.True(t, IsEvaluation(NewEvaluationError("bad rule", nil)))
	assert.True(t, IsTimeout(NewTimeoutError("op", nil)))
	assert.True(t, IsCancelled(NewCancellationError("exec-1")))
	assert.True(t, IsConfig(NewConfigError("engine", ErrInvalidConfig)))
	assert.True(t, IsNotFound(NewNotFoundError("run", "missing")))

	assert.False(t, IsTimeout(errors.New("boom")))
	assert.False(t, IsValidation(nil))
}

func TestNewInternalError_Details(t *testing.T) {
	err := NewInternalError("persist failed", errors.New("disk full"))
	assert.Equal(t, ErrorTypeInternal, err.Type)
	assert.Equal(t, "disk full", err.Details["error"])

	bare := NewInternalError("persist failed", nil)
	assert.NotContains(t, bare.Details, "error")
}
