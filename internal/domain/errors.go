package domain

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUpstream   ErrorType = "upstream"
	ErrorTypeEvaluation ErrorType = "evaluation"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error is the single error envelope used across the engine. Type carries
// the taxonomy class, Details carry structured context safe for logging.
type Error struct {
	Type    ErrorType
	Message string
	Details map[string]interface{}
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

var (
	ErrTimeout       = errors.New("operation timeout")
	ErrCancelled     = errors.New("run cancelled")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
)

func NewValidationError(field, message string) Error {
	return Error{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

func NewConfigError(component string, err error) Error {
	return Error{
		Type:    ErrorTypeConfig,
		Message: err.Error(),
		Details: map[string]interface{}{"component": component},
	}
}

func NewNotFoundError(kind, id string) Error {
	return Error{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]interface{}{"kind": kind, "id": id},
	}
}

func NewUpstreamError(target, message string) Error {
	return Error{
		Type:    ErrorTypeUpstream,
		Message: message,
		Details: map[string]interface{}{"target": target},
	}
}

func NewEvaluationError(message string, details map[string]interface{}) Error {
	return Error{
		Type:    ErrorTypeEvaluation,
		Message: message,
		Details: details,
	}
}

func NewTimeoutError(op string, timeout interface{}) Error {
	return Error{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("%s exceeded its deadline", op),
		Details: map[string]interface{}{"operation": op, "timeout": timeout},
	}
}

func NewCancellationError(executionID string) Error {
	return Error{
		Type:    ErrorTypeCancelled,
		Message: "run cancelled before completion",
		Details: map[string]interface{}{"execution_id": executionID},
	}
}

func NewInternalError(message string, err error) Error {
	details := map[string]interface{}{}
	if err != nil {
		details["error"] = err.Error()
	}
	return Error{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: details,
	}
}

// TypeOf extracts the taxonomy class from any error. Non-envelope errors
// report as internal.
func TypeOf(err error) ErrorType {
	var de Error
	if errors.As(err, &de) {
		return de.Type
	}
	if errors.Is(err, ErrTimeout) {
		return ErrorTypeTimeout
	}
	if errors.Is(err, ErrCancelled) {
		return ErrorTypeCancelled
	}
	return ErrorTypeInternal
}

func IsValidation(err error) bool { return TypeOf(err) == ErrorTypeValidation }
func IsUpstream(err error) bool   { return TypeOf(err) == ErrorTypeUpstream }
func IsEvaluation(err error) bool { return TypeOf(err) == ErrorTypeEvaluation }
func IsTimeout(err error) bool    { return TypeOf(err) == ErrorTypeTimeout }
func IsCancelled(err error) bool  { return TypeOf(err) == ErrorTypeCancelled }
func IsConfig(err error) bool     { return TypeOf(err) == ErrorTypeConfig }
func IsNotFound(err error) bool   { return TypeOf(err) == ErrorTypeNotFound }
