package domain

import (
	"time"
)

// NodeOutput is the uniform envelope every executor produces. Exactly one
// of Data/Error carries content, gated by Success. Duration is measured
// from executor entry to return on every path, including failures.
type NodeOutput struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data"`
	Error     string        `json:"error,omitempty"`
	ErrorType ErrorType     `json:"error_type,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

func SucceededOutput(data interface{}, started time.Time) NodeOutput {
	now := time.Now()
	return NodeOutput{
		Success:   true,
		Data:      data,
		Duration:  now.Sub(started),
		Timestamp: now,
	}
}

func FailedOutput(err error, started time.Time) NodeOutput {
	now := time.Now()
	return NodeOutput{
		Success:   false,
		Error:     err.Error(),
		ErrorType: TypeOf(err),
		Duration:  now.Sub(started),
		Timestamp: now,
	}
}

// DurationMillis reports elapsed execution time in whole milliseconds,
// the unit the platform's run history records.
func (o NodeOutput) DurationMillis() int64 {
	return o.Duration.Milliseconds()
}
