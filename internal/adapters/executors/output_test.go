package executors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
)

func runOutput(t *testing.T, config map[string]interface{}, execCtx *domain.ExecutionContext, inputs map[string]interface{}) map[string]interface{} {
	t.Helper()
	executor := NewOutputExecutor(discardLogger())
	node := &domain.WorkflowNode{ID: "done", Type: domain.NodeTypeOutput, Config: config}
	data, err := executor.Execute(context.Background(), node, execCtx, inputs)
	require.NoError(t, err)
	return data.(map[string]interface{})
}

func TestOutputExecutor_Type(t *testing.T) {
	assert.Equal(t, domain.NodeTypeOutput, NewOutputExecutor(nil).Type())
}

func TestOutputExecutor_JSONFormat(t *testing.T) {
	inputs := map[string]interface{}{"a": 1, "b": "x"}

	data := runOutput(t, map[string]interface{}{"format": "json"}, domain.NewExecutionContext(), inputs)
	assert.Equal(t, inputs, data["result"])

	data = runOutput(t, nil, domain.NewExecutionContext(), inputs)
	assert.Equal(t, inputs, data["result"], "json is the default format")
}

func TestOutputExecutor_TextFormat(t *testing.T) {
	inputs := map[string]interface{}{"b": "x", "a": float64(1)}

	data := runOutput(t, map[string]interface{}{"format": "text"}, domain.NewExecutionContext(), inputs)
	assert.Equal(t, "a: 1\nb: \"x\"", data["result"], "keys sorted, values JSON-rendered")
}

func TestOutputExecutor_TextFormatNestedValues(t *testing.T) {
	inputs := map[string]interface{}{
		"user": map[string]interface{}{"name": "ada"},
	}

	data := runOutput(t, map[string]interface{}{"format": "text"}, domain.NewExecutionContext(), inputs)
	assert.Equal(t, `user: {"name":"ada"}`, data["result"])
}

func TestOutputExecutor_SummaryFormat(t *testing.T) {
	execCtx := domain.NewExecutionContext()
	execCtx.Record("intake", domain.SucceededOutput(map[string]interface{}{}, time.Now()))
	execCtx.Record("check", domain.SucceededOutput(map[string]interface{}{}, time.Now()))

	inputs := map[string]interface{}{"check": map[string]interface{}{"result": true}}
	data := runOutput(t, map[string]interface{}{"format": "summary"}, execCtx, inputs)

	assert.Equal(t, 2, data["nodeCount"])
	assert.GreaterOrEqual(t, data["executionTime"].(int64), int64(0))
	assert.Equal(t, inputs, data["lastInputs"])
}

func TestOutputExecutor_UnrecognizedFormatFallsBackToJSON(t *testing.T) {
	inputs := map[string]interface{}{"a": 1}

	data := runOutput(t, map[string]interface{}{"format": "xml"}, domain.NewExecutionContext(), inputs)
	assert.Equal(t, inputs, data["result"], "unknown formats must not fail a finished run")
}
