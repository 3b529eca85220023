package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

// ValidateArgs checks args against an object schema.
// Every problem found is reported in a single error wrapping ErrInvalidArguments.
func ValidateArgs(schema *Schema, args map[string]any) error {
	if schema == nil {
		if len(args) > 0 {
			return fmt.Errorf("%w: tool takes no arguments", ErrInvalidArguments)
		}
		return nil
	}

	var problems []string
	validateObject("", schema, args, &problems)
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(problems, "; "))
	}
	return nil
}

func validateObject(prefix string, schema *Schema, obj map[string]any, problems *[]string) {
	for _, name := range schema.Required {
		if v, ok := obj[name]; !ok || v == nil {
			*problems = append(*problems, fmt.Sprintf("missing required argument %q", prefix+name))
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		prop, ok := schema.Properties[k]
		if !ok {
			*problems = append(*problems, fmt.Sprintf("unknown argument %q", prefix+k))
			continue
		}
		if obj[k] == nil {
			continue
		}
		validateValue(prefix+k, prop, obj[k], problems)
	}
}

func validateValue(path string, schema *Schema, v any, problems *[]string) {
	if !matchesType(schema.Type, v) {
		*problems = append(*problems, fmt.Sprintf("argument %q must be %s, got %s", path, schema.Type, describe(v)))
		return
	}

	switch schema.Type {
	case TypeString:
		if len(schema.Enum) > 0 && !slices.Contains(schema.Enum, v.(string)) {
			*problems = append(*problems, fmt.Sprintf("argument %q must be one of %s", path, strings.Join(schema.Enum, ", ")))
		}
	case TypeArray:
		if schema.Items == nil {
			return
		}
		for i, item := range toSlice(v) {
			validateValue(fmt.Sprintf("%s[%d]", path, i), schema.Items, item, problems)
		}
	case TypeObject:
		if m, ok := v.(map[string]any); ok && schema.Properties != nil {
			validateObject(path+".", schema, m, problems)
		}
	}
}

func matchesType(t Type, v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f)
	case TypeArray:
		return toSlice(v) != nil
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
