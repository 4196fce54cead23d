package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValidationError describes one point where a document does not conform to
// a schema.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// SchemaError means the schema itself is unusable, as opposed to the
// document failing to conform. Callers report it distinctly from
// validation failures.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return "invalid schema: " + e.Detail
}

// Validate checks value against schema with Draft-7 semantics for the
// type/properties/required/items/anyOf vocabulary, collecting every
// violation. It returns a nil slice iff the value fully conforms, and a
// *SchemaError when the schema is structurally malformed. It never panics.
func Validate(value interface{}, schema map[string]interface{}) ([]ValidationError, error) {
	var errs []ValidationError
	if err := validate(value, schema, "$", &errs); err != nil {
		return nil, err
	}
	return errs, nil
}

func validate(value interface{}, schema map[string]interface{}, path string, errs *[]ValidationError) error {
	if sub, ok := schema["anyOf"]; ok {
		return validateAnyOf(value, sub, path, errs)
	}

	if rawType, ok := schema["type"]; ok {
		matched, err := matchesType(value, rawType)
		if err != nil {
			return err
		}
		if !matched {
			*errs = append(*errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("%v is not of type %q", describe(value), typeLabel(rawType)),
			})
			return nil
		}
	}

	if obj, ok := value.(map[string]interface{}); ok {
		if err := validateObject(obj, schema, path, errs); err != nil {
			return err
		}
	}
	if arr, ok := value.([]interface{}); ok {
		if err := validateArray(arr, schema, path, errs); err != nil {
			return err
		}
	}
	return nil
}

func validateObject(obj map[string]interface{}, schema map[string]interface{}, path string, errs *[]ValidationError) error {
	if rawReq, ok := schema["required"]; ok {
		req, ok := rawReq.([]interface{})
		if !ok {
			if strs, sok := rawReq.([]string); sok {
				req = make([]interface{}, len(strs))
				for i, s := range strs {
					req[i] = s
				}
			} else {
				return &SchemaError{Detail: fmt.Sprintf("required must be an array, got %T", rawReq)}
			}
		}
		for _, rk := range req {
			name, ok := rk.(string)
			if !ok {
				return &SchemaError{Detail: "required entries must be strings"}
			}
			if _, present := obj[name]; !present {
				*errs = append(*errs, ValidationError{
					Path:    path,
					Message: fmt.Sprintf("%q is a required property", name),
				})
			}
		}
	}

	rawProps, ok := schema["properties"]
	if !ok {
		return nil
	}
	props, ok := rawProps.(map[string]interface{})
	if !ok {
		return &SchemaError{Detail: fmt.Sprintf("properties must be an object, got %T", rawProps)}
	}
	for name, rawSub := range props {
		child, present := obj[name]
		if !present {
			continue
		}
		sub, err := asSchema(rawSub)
		if err != nil {
			return err
		}
		if err := validate(child, sub, path+"."+name, errs); err != nil {
			return err
		}
	}
	return nil
}

func validateArray(arr []interface{}, schema map[string]interface{}, path string, errs *[]ValidationError) error {
	rawItems, ok := schema["items"]
	if !ok {
		return nil
	}
	items, err := asSchema(rawItems)
	if err != nil {
		return err
	}
	for i, item := range arr {
		if err := validate(item, items, fmt.Sprintf("%s[%d]", path, i), errs); err != nil {
			return err
		}
	}
	return nil
}

func validateAnyOf(value interface{}, rawAlternatives interface{}, path string, errs *[]ValidationError) error {
	alternatives, ok := rawAlternatives.([]interface{})
	if !ok {
		return &SchemaError{Detail: fmt.Sprintf("anyOf must be an array, got %T", rawAlternatives)}
	}
	for _, rawAlt := range alternatives {
		alt, err := asSchema(rawAlt)
		if err != nil {
			return err
		}
		var altErrs []ValidationError
		if err := validate(value, alt, path, &altErrs); err != nil {
			return err
		}
		if len(altErrs) == 0 {
			return nil
		}
	}
	*errs = append(*errs, ValidationError{
		Path:    path,
		Message: fmt.Sprintf("%v does not match any allowed schema", describe(value)),
	})
	return nil
}

func asSchema(raw interface{}) (map[string]interface{}, error) {
	schema, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &SchemaError{Detail: fmt.Sprintf("subschema must be an object, got %T", raw)}
	}
	return schema, nil
}

func matchesType(value interface{}, rawType interface{}) (bool, error) {
	switch t := rawType.(type) {
	case string:
		return typeMatches(value, t), nil
	case []interface{}:
		for _, alt := range t {
			name, ok := alt.(string)
			if !ok {
				return false, &SchemaError{Detail: "type array entries must be strings"}
			}
			if typeMatches(value, name) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, &SchemaError{Detail: fmt.Sprintf("type must be a string or array, got %T", rawType)}
	}
}

func typeMatches(value interface{}, typeName string) bool {
	switch typeName {
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "null":
		return value == nil
	case "number":
		return isNumber(value)
	case "integer":
		switch v := value.(type) {
		case json.Number:
			return isIntegral(v)
		case float64:
			return v == math.Trunc(v)
		case int, int32, int64:
			return true
		}
		return false
	default:
		return false
	}
}

func isNumber(value interface{}) bool {
	switch value.(type) {
	case json.Number, float64, int, int32, int64:
		return true
	}
	return false
}

func typeLabel(rawType interface{}) string {
	if s, ok := rawType.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", rawType)
}

func describe(value interface{}) string {
	switch value.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", value)
	}
}
