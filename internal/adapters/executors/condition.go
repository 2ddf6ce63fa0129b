package executors

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
)

// ConditionExecutor evaluates a rule set over the node's inputs and
// reports the selected branch. An expression that cannot be evaluated is a
// failure, never a coerced false: ambiguous truthiness must not masquerade
// as a deliberate branch decision.
type ConditionExecutor struct {
	logger *slog.Logger
}

func NewConditionExecutor(logger *slog.Logger) *ConditionExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConditionExecutor{logger: logger.With("component", "condition-executor")}
}

func (ce *ConditionExecutor) Type() domain.NodeType {
	return domain.NodeTypeCondition
}

type conditionRule struct {
	field    string
	operator string
	value    interface{}
}

func (ce *ConditionExecutor) Execute(ctx context.Context, node *domain.WorkflowNode, execCtx *domain.ExecutionContext, inputs map[string]interface{}) (interface{}, error) {
	rules, combinator, err := parseRules(node)
	if err != nil {
		return nil, err
	}

	result := combinator == "and"
	for _, rule := range rules {
		matched, err := evaluateRule(rule, inputs)
		if err != nil {
			return nil, err
		}
		if combinator == "and" {
			result = result && matched
			if !result {
				break
			}
		} else {
			result = result || matched
			if result {
				break
			}
		}
	}

	branch := "false"
	if result {
		branch = "true"
	}

	ce.logger.Debug("condition evaluated",
		"execution_id", execCtx.ExecutionID,
		"node_id", node.ID,
		"rules", len(rules),
		"branch", branch,
	)

	return map[string]interface{}{
		"result": result,
		"branch": branch,
	}, nil
}

func parseRules(node *domain.WorkflowNode) ([]conditionRule, string, error) {
	if node.Config == nil {
		return nil, "", domain.NewEvaluationError("condition node has no expression configured",
			map[string]interface{}{"node_id": node.ID})
	}

	combinator := "and"
	if c, ok := node.Config["combinator"].(string); ok {
		c = strings.ToLower(c)
		if c != "and" && c != "or" {
			return nil, "", domain.NewEvaluationError(fmt.Sprintf("unknown combinator %q", c),
				map[string]interface{}{"node_id": node.ID})
		}
		combinator = c
	}

	if rawRules, ok := node.Config["rules"].([]interface{}); ok {
		rules := make([]conditionRule, 0, len(rawRules))
		for i, raw := range rawRules {
			ruleMap, ok := raw.(map[string]interface{})
			if !ok {
				return nil, "", domain.NewEvaluationError(fmt.Sprintf("rule at index %d is not an object", i),
					map[string]interface{}{"node_id": node.ID})
			}
			rule, err := parseRule(ruleMap)
			if err != nil {
				return nil, "", err
			}
			rules = append(rules, rule)
		}
		if len(rules) == 0 {
			return nil, "", domain.NewEvaluationError("condition node has an empty rule set",
				map[string]interface{}{"node_id": node.ID})
		}
		return rules, combinator, nil
	}

	rule, err := parseRule(node.Config)
	if err != nil {
		return nil, "", err
	}
	return []conditionRule{rule}, combinator, nil
}

func parseRule(raw map[string]interface{}) (conditionRule, error) {
	field, _ := raw["field"].(string)
	operator, _ := raw["operator"].(string)
	if field == "" || operator == "" {
		return conditionRule{}, domain.NewEvaluationError("rule requires field and operator",
			map[string]interface{}{"field": field, "operator": operator})
	}
	return conditionRule{
		field:    field,
		operator: strings.ToLower(operator),
		value:    raw["value"],
	}, nil
}

func evaluateRule(rule conditionRule, inputs map[string]interface{}) (bool, error) {
	actual, present := lookupPath(inputs, rule.field)

	if rule.operator == "exists" {
		return present, nil
	}

	if !present {
		return false, domain.NewEvaluationError(
			fmt.Sprintf("condition references undefined input %q", rule.field),
			map[string]interface{}{"field": rule.field})
	}

	switch rule.operator {
	case "eq":
		return equal(actual, rule.value), nil
	case "neq":
		return !equal(actual, rule.value), nil
	case "gt", "gte", "lt", "lte":
		return compareOrdered(rule, actual)
	case "contains":
		return evaluateContains(rule, actual)
	default:
		return false, domain.NewEvaluationError(fmt.Sprintf("unknown operator %q", rule.operator),
			map[string]interface{}{"field": rule.field})
	}
}

func equal(a, b interface{}) bool {
	if fa, aOK := asNumber(a); aOK {
		if fb, bOK := asNumber(b); bOK {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func compareOrdered(rule conditionRule, actual interface{}) (bool, error) {
	fa, aOK := asNumber(actual)
	fb, bOK := asNumber(rule.value)
	if aOK && bOK {
		switch rule.operator {
		case "gt":
			return fa > fb, nil
		case "gte":
			return fa >= fb, nil
		case "lt":
			return fa < fb, nil
		case "lte":
			return fa <= fb, nil
		}
	}

	sa, aOK := actual.(string)
	sb, bOK := rule.value.(string)
	if aOK && bOK {
		switch rule.operator {
		case "gt":
			return sa > sb, nil
		case "gte":
			return sa >= sb, nil
		case "lt":
			return sa < sb, nil
		case "lte":
			return sa <= sb, nil
		}
	}

	return false, domain.NewEvaluationError(
		fmt.Sprintf("operator %q requires comparable operands, got %T and %T", rule.operator, actual, rule.value),
		map[string]interface{}{"field": rule.field})
}

func evaluateContains(rule conditionRule, actual interface{}) (bool, error) {
	switch haystack := actual.(type) {
	case string:
		needle, ok := rule.value.(string)
		if !ok {
			return false, domain.NewEvaluationError(
				fmt.Sprintf("contains on a string requires a string operand, got %T", rule.value),
				map[string]interface{}{"field": rule.field})
		}
		return strings.Contains(haystack, needle), nil
	case []interface{}:
		for _, element := range haystack {
			if equal(element, rule.value) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, domain.NewEvaluationError(
			fmt.Sprintf("contains requires a string or array input, got %T", actual),
			map[string]interface{}{"field": rule.field})
	}
}

func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
