// Package payload builds minimal request bodies for write methods by
// repairing the structured validation detail a 422 response carries.
package payload

import (
	"encoding/json"
	"fmt"
)

// Placeholder is the value filled into every repaired leaf field.
const Placeholder = "auto-filled"

// FieldError is one entry of a structured 422 detail list.
type FieldError struct {
	Loc  []interface{} `json:"loc"`
	Type string        `json:"type"`
}

type errorBody struct {
	Detail []FieldError `json:"detail"`
}

// ParseDetail extracts the structured detail list from a 422 body. A body
// of any other shape means the failure cannot be auto-repaired.
func ParseDetail(body []byte) ([]FieldError, error) {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse 422 error detail: %w", err)
	}
	if len(parsed.Detail) == 0 {
		return nil, fmt.Errorf("422 response carries no structured detail")
	}
	return parsed.Detail, nil
}

// SynthesizeFromValidationError builds a nested object covering every
// "missing" field rooted at the request body: intermediate objects are
// created along the loc path and the leaf is set to the placeholder value.
func SynthesizeFromValidationError(detail []FieldError) map[string]interface{} {
	body := make(map[string]interface{})
	for _, fieldErr := range detail {
		if fieldErr.Type != "missing" || len(fieldErr.Loc) < 2 {
			continue
		}
		if root, ok := fieldErr.Loc[0].(string); !ok || root != "body" {
			continue
		}

		keys := make([]string, 0, len(fieldErr.Loc)-1)
		for _, seg := range fieldErr.Loc[1:] {
			keys = append(keys, fmt.Sprint(seg))
		}

		current := body
		for _, key := range keys[:len(keys)-1] {
			next, ok := current[key].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				current[key] = next
			}
			current = next
		}
		current[keys[len(keys)-1]] = Placeholder
	}
	return body
}
