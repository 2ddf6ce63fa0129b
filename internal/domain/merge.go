package domain

import (
	"dario.cat/mergo"
)

// MergeInputs deep-merges a map-valued upstream payload into an inputs map.
// Later producers override earlier ones, slices append. Used for consumers
// that request flattened inputs instead of per-producer keying.
func MergeInputs(inputs map[string]interface{}, payload map[string]interface{}) error {
	if len(payload) == 0 {
		return nil
	}

	if err := mergo.Merge(&inputs, payload,
		mergo.WithOverride,
		mergo.WithAppendSlice); err != nil {
		return NewInternalError("failed to merge upstream payload into inputs", err)
	}
	return nil
}
