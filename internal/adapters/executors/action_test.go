package executors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
)

// capturingRegistry resolves a fixed template and records the resolved
// action handed to Invoke.
type capturingRegistry struct {
	template   ports.ActionTemplate
	resolveErr error
	invokeErr  error
	result     *ports.ActionResult
	invoked    *ports.ResolvedAction
}

func (r *capturingRegistry) Resolve(name string) (*ports.ActionTemplate, error) {
	if r.resolveErr != nil {
		return nil, r.resolveErr
	}
	template := r.template
	return &template, nil
}

func (r *capturingRegistry) Invoke(ctx context.Context, action ports.ResolvedAction) (*ports.ActionResult, error) {
	r.invoked = &action
	if r.invokeErr != nil {
		return nil, r.invokeErr
	}
	if r.result != nil {
		return r.result, nil
	}
	return &ports.ActionResult{StatusCode: 200}, nil
}

func (r *capturingRegistry) GetAvailableActions() []ports.ActionTemplate {
	return []ports.ActionTemplate{r.template}
}

func TestActionExecutor_Type(t *testing.T) {
	assert.Equal(t, domain.NodeTypeAction, NewActionExecutor(nil, nil).Type())
}

func TestActionExecutor_ResolvesTemplatesAndInvokes(t *testing.T) {
	registry := &capturingRegistry{
		template: ports.ActionTemplate{
			Name:            "notify",
			Method:          "POST",
			URL:             "https://hooks.internal/{{channel}}",
			PayloadTemplate: `{"text": "{{summarize.response}}", "severity": "{{severity}}"}`,
			Headers:         map[string]string{"X-Channel": "{{channel}}"},
		},
		result: &ports.ActionResult{StatusCode: 202, Body: map[string]interface{}{"id": "msg-1"}},
	}
	executor := NewActionExecutor(registry, discardLogger())

	node := &domain.WorkflowNode{
		ID:   "notify",
		Type: domain.NodeTypeAction,
		Config: map[string]interface{}{
			"action":  "notify",
			"params":  map[string]interface{}{"channel": "alerts", "severity": "high"},
			"headers": map[string]interface{}{"X-Request-Source": "pipeline"},
		},
	}
	inputs := map[string]interface{}{
		"summarize": map[string]interface{}{"response": "all clear"},
	}

	data, err := executor.Execute(context.Background(), node, domain.NewExecutionContext(), inputs)
	require.NoError(t, err)

	require.NotNil(t, registry.invoked)
	assert.Equal(t, "https://hooks.internal/alerts", registry.invoked.URL)
	assert.Equal(t, "POST", registry.invoked.Method)
	assert.JSONEq(t, `{"text": "all clear", "severity": "high"}`, string(registry.invoked.Payload))
	assert.Equal(t, "alerts", registry.invoked.Headers["X-Channel"])
	assert.Equal(t, "pipeline", registry.invoked.Headers["X-Request-Source"])

	payload := data.(map[string]interface{})
	assert.Equal(t, "notify", payload["action"])
	assert.Equal(t, 202, payload["status"])
	assert.Equal(t, map[string]interface{}{"id": "msg-1"}, payload["response"])
}

func TestActionExecutor_ParamsOverrideInputs(t *testing.T) {
	registry := &capturingRegistry{
		template: ports.ActionTemplate{
			Name:            "notify",
			Method:          "POST",
			URL:             "https://hooks.internal/send",
			PayloadTemplate: `{"channel": "{{channel}}"}`,
		},
	}
	executor := NewActionExecutor(registry, discardLogger())

	node := &domain.WorkflowNode{
		ID:   "notify",
		Type: domain.NodeTypeAction,
		Config: map[string]interface{}{
			"action": "notify",
			"params": map[string]interface{}{"channel": "override"},
		},
	}
	inputs := map[string]interface{}{"channel": "from-upstream"}

	_, err := executor.Execute(context.Background(), node, domain.NewExecutionContext(), inputs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel": "override"}`, string(registry.invoked.Payload))
}

func TestActionExecutor_MissingTemplateVariable(t *testing.T) {
	registry := &capturingRegistry{
		template: ports.ActionTemplate{
			Name:            "notify",
			Method:          "POST",
			URL:             "https://hooks.internal/send",
			PayloadTemplate: `{"text": "{{summarize.response}}"}`,
		},
	}
	executor := NewActionExecutor(registry, discardLogger())

	node := &domain.WorkflowNode{
		ID:     "notify",
		Type:   domain.NodeTypeAction,
		Config: map[string]interface{}{"action": "notify"},
	}

	_, err := executor.Execute(context.Background(), node, domain.NewExecutionContext(), map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "missing template variable: summarize.response")
	assert.Nil(t, registry.invoked, "no call may leave the process with an unresolved payload")
}

func TestActionExecutor_ConfigAndResolutionErrors(t *testing.T) {
	executor := NewActionExecutor(&capturingRegistry{
		resolveErr: domain.NewNotFoundError("action", "ghost"),
	}, discardLogger())

	node := &domain.WorkflowNode{ID: "a", Type: domain.NodeTypeAction, Config: map[string]interface{}{}}
	_, err := executor.Execute(context.Background(), node, domain.NewExecutionContext(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "missing action name")

	node.Config["action"] = "ghost"
	_, err = executor.Execute(context.Background(), node, domain.NewExecutionContext(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestActionExecutor_InvokeFailurePassesThrough(t *testing.T) {
	registry := &capturingRegistry{
		template:  ports.ActionTemplate{Name: "notify", Method: "POST", URL: "https://hooks.internal/send"},
		invokeErr: domain.NewUpstreamError("notify", "notify returned 500 (server error)"),
	}
	executor := NewActionExecutor(registry, discardLogger())

	node := &domain.WorkflowNode{
		ID:     "notify",
		Type:   domain.NodeTypeAction,
		Config: map[string]interface{}{"action": "notify"},
	}

	_, err := executor.Execute(context.Background(), node, domain.NewExecutionContext(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
	assert.Contains(t, err.Error(), "server error")
}

func TestActionExecutor_NoRegistryConfigured(t *testing.T) {
	executor := NewActionExecutor(nil, discardLogger())
	node := &domain.WorkflowNode{ID: "a", Type: domain.NodeTypeAction, Config: map[string]interface{}{"action": "x"}}

	_, err := executor.Execute(context.Background(), node, domain.NewExecutionContext(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
	assert.Nil(t, executor.GetAvailableActions())
}
