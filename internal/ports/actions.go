package ports

import (
	"context"
)

// ActionTemplate is one externally registered action: an HTTP target plus
// payload/header templates interpolated per invocation.
type ActionTemplate struct {
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	PayloadTemplate string            `json:"payload_template,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
}

// ResolvedAction is a template after interpolation, ready to invoke.
type ResolvedAction struct {
	Name    string
	Method  string
	URL     string
	Headers map[string]string
	Payload []byte
}

type ActionResult struct {
	StatusCode int         `json:"status_code"`
	Body       interface{} `json:"body,omitempty"`
}

// ActionRegistry is the catalog of registered actions and the invocation
// surface for resolved ones. GetAvailableActions is run-independent
// metadata for graph authors and validators.
type ActionRegistry interface {
	Resolve(name string) (*ActionTemplate, error)
	Invoke(ctx context.Context, action ResolvedAction) (*ActionResult, error)
	GetAvailableActions() []ActionTemplate
}
