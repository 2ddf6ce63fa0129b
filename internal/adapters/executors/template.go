package executors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/xjson"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.\-]+)\s*\}\}`)

// interpolate substitutes {{var}} placeholders from vars, resolving dotted
// paths into nested maps. A placeholder that resolves to nothing is a
// validation error naming the variable; silent pass-through would let a
// half-resolved payload reach an external target.
func interpolate(template string, vars map[string]interface{}) (string, error) {
	var missing []string

	resolved := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		path := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := lookupPath(vars, path)
		if !ok {
			missing = append(missing, path)
			return match
		}
		return renderValue(value)
	})

	if len(missing) > 0 {
		return "", domain.NewValidationError(
			strings.Join(missing, ","),
			fmt.Sprintf("missing template variable: %s", strings.Join(missing, ", ")),
		)
	}
	return resolved, nil
}

// lookupPath resolves a dotted path into nested map[string]interface{}
// values. Returns false when any segment is absent or a non-map is
// traversed into.
func lookupPath(vars map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = vars

	for _, segment := range segments {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = asMap[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// renderValue formats a value for inline substitution: strings verbatim,
// everything else as compact JSON.
func renderValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return "null"
	default:
		raw, err := xjson.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
