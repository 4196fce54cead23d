package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConformingObject(t *testing.T) {
	doc := decode(t, `{"name":"ada","age":36}`)
	violations, err := Validate(doc, Infer(doc))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateMissingRequired(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"id", "name"},
	}
	violations, err := Validate(decode(t, `{"id":"x"}`), schema)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "$", violations[0].Path)
	assert.Contains(t, violations[0].Message, `"name" is a required property`)
}

func TestValidateTypeMismatch(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"count": map[string]interface{}{"type": "integer"},
		},
	}
	violations, err := Validate(decode(t, `{"count":"three"}`), schema)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "$.count", violations[0].Path)
	assert.Contains(t, violations[0].Message, `not of type "integer"`)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"a", "b"},
		"properties": map[string]interface{}{
			"c": map[string]interface{}{"type": "string"},
		},
	}
	violations, err := Validate(decode(t, `{"c":1}`), schema)
	require.NoError(t, err)
	assert.Len(t, violations, 3)
}

func TestValidateArrayItems(t *testing.T) {
	schema := map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{"type": "string"},
			},
		},
	}
	violations, err := Validate(decode(t, `[{"id":"a"},{"id":7}]`), schema)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "$[1].id", violations[0].Path)
}

func TestValidateAnyOf(t *testing.T) {
	schema := map[string]interface{}{
		"anyOf": []interface{}{
			map[string]interface{}{"type": "string"},
			map[string]interface{}{"type": "integer"},
		},
	}

	violations, err := Validate(decode(t, `"ok"`), schema)
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = Validate(decode(t, `true`), schema)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "does not match any allowed schema")
}

func TestValidateTypeArray(t *testing.T) {
	schema := map[string]interface{}{"type": []interface{}{"string", "null"}}

	violations, err := Validate(nil, schema)
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = Validate(decode(t, `12`), schema)
	require.NoError(t, err)
	assert.Len(t, violations, 1)
}

func TestValidateMalformedSchema(t *testing.T) {
	tests := []struct {
		doc    string
		schema map[string]interface{}
	}{
		{`{"a":1}`, map[string]interface{}{"type": 42}},
		{`{"a":1}`, map[string]interface{}{"type": "object", "required": "not-a-list"}},
		{`{"a":1}`, map[string]interface{}{"type": "object", "properties": "not-an-object"}},
		{`[1,2]`, map[string]interface{}{"type": "array", "items": "not-a-schema"}},
		{`{"a":1}`, map[string]interface{}{"anyOf": "not-a-list"}},
	}
	for _, tt := range tests {
		_, err := Validate(decode(t, tt.doc), tt.schema)
		require.Error(t, err)
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr, "malformed schema must surface as SchemaError: %v", tt.schema)
	}
}

func TestValidateIntegerAcceptsIntegralFloat(t *testing.T) {
	schema := map[string]interface{}{"type": "integer"}
	violations, err := Validate(float64(5.0), schema)
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = Validate(float64(5.5), schema)
	require.NoError(t, err)
	assert.Len(t, violations, 1)
}
