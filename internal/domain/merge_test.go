package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeInputs(t *testing.T) {
	tests := []struct {
		name     string
		inputs   map[string]interface{}
		payload  map[string]interface{}
		expected map[string]interface{}
	}{
		{
			name:     "disjoint keys combine",
			inputs:   map[string]interface{}{"a": 1},
			payload:  map[string]interface{}{"b": 2},
			expected: map[string]interface{}{"a": 1, "b": 2},
		},
		{
			name:     "later payload overrides",
			inputs:   map[string]interface{}{"status": "draft"},
			payload:  map[string]interface{}{"status": "sent"},
			expected: map[string]interface{}{"status": "sent"},
		},
		{
			name: "nested maps merge deeply",
			inputs: map[string]interface{}{
				"user": map[string]interface{}{"name": "ada", "role": "admin"},
			},
			payload: map[string]interface{}{
				"user": map[string]interface{}{"role": "viewer", "email": "ada@example.com"},
			},
			expected: map[string]interface{}{
				"user": map[string]interface{}{"name": "ada", "role": "viewer", "email": "ada@example.com"},
			},
		},
		{
			name:     "slices append",
			inputs:   map[string]interface{}{"tags": []interface{}{"a"}},
			payload:  map[string]interface{}{"tags": []interface{}{"b"}},
			expected: map[string]interface{}{"tags": []interface{}{"a", "b"}},
		},
		{
			name:     "empty payload is a no-op",
			inputs:   map[string]interface{}{"a": 1},
			payload:  map[string]interface{}{},
			expected: map[string]interface{}{"a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, MergeInputs(tt.inputs, tt.payload))
			assert.Equal(t, tt.expected, tt.inputs)
		})
	}
}
