// Package schema derives JSON Schemas from observed response bodies,
// validates documents against them, and persists the first schema seen for
// an endpoint as its regression baseline.
package schema

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

// Infer derives a JSON Schema (Draft-7 vocabulary subset) describing the
// shape of a decoded JSON value. Objects list every observed key as
// required; heterogeneous array elements are unioned with anyOf. The result
// is deterministic: the same value always yields a structurally identical
// schema.
func Infer(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return inferObject(v)
	case []interface{}:
		return inferArray(v)
	default:
		return map[string]interface{}{"type": scalarType(value)}
	}
}

func inferObject(obj map[string]interface{}) map[string]interface{} {
	properties := make(map[string]interface{}, len(obj))
	required := make([]string, 0, len(obj))
	for key, val := range obj {
		properties[key] = Infer(val)
		required = append(required, key)
	}
	sort.Strings(required)

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func inferArray(arr []interface{}) map[string]interface{} {
	schema := map[string]interface{}{"type": "array"}
	if len(arr) == 0 {
		return schema
	}

	// Union distinct element shapes in first-seen order; identical shapes
	// collapse via their canonical encoding.
	var distinct []map[string]interface{}
	seen := make(map[string]struct{})
	for _, item := range arr {
		s := Infer(item)
		key := canonical(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, s)
	}

	if len(distinct) == 1 {
		schema["items"] = distinct[0]
		return schema
	}
	union := make([]interface{}, len(distinct))
	for i, s := range distinct {
		union[i] = s
	}
	schema["items"] = map[string]interface{}{"anyOf": union}
	return schema
}

// scalarType maps a decoded scalar to its JSON Schema type tag. Numbers
// arrive either as json.Number (transport decoding) or float64 (plain
// unmarshal); integral values classify as "integer".
func scalarType(value interface{}) string {
	switch v := value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		if isIntegral(v) {
			return "integer"
		}
		return "number"
	case float64:
		if v == math.Trunc(v) {
			return "integer"
		}
		return "number"
	case int, int32, int64:
		return "integer"
	case nil:
		return "null"
	default:
		return "string"
	}
}

func isIntegral(n json.Number) bool {
	if _, err := n.Int64(); err == nil {
		return true
	}
	s := n.String()
	return !strings.ContainsAny(s, ".eE")
}

// canonical renders a schema with sorted keys so structural equality reduces
// to string equality.
func canonical(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
