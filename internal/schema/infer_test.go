package schema

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v interface{}
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestInferScalars(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"hello"`, "string"},
		{"integer", `42`, "integer"},
		{"number", `3.14`, "number"},
		{"boolean", `true`, "boolean"},
		{"null", `null`, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(decode(t, tt.raw))
			assert.Equal(t, tt.want, got["type"])
		})
	}
}

func TestInferObject(t *testing.T) {
	got := Infer(decode(t, `{"name":"ada","age":36,"active":true}`))

	assert.Equal(t, "object", got["type"])
	assert.Equal(t, []string{"active", "age", "name"}, got["required"])

	props := got["properties"].(map[string]interface{})
	assert.Equal(t, "string", props["name"].(map[string]interface{})["type"])
	assert.Equal(t, "integer", props["age"].(map[string]interface{})["type"])
	assert.Equal(t, "boolean", props["active"].(map[string]interface{})["type"])
}

func TestInferNested(t *testing.T) {
	got := Infer(decode(t, `{"user":{"id":"abc","tags":["x","y"]}}`))

	user := got["properties"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "object", user["type"])

	tags := user["properties"].(map[string]interface{})["tags"].(map[string]interface{})
	assert.Equal(t, "array", tags["type"])
	assert.Equal(t, "string", tags["items"].(map[string]interface{})["type"])
}

func TestInferEmptyArray(t *testing.T) {
	got := Infer(decode(t, `[]`))
	assert.Equal(t, "array", got["type"])
	assert.NotContains(t, got, "items")
}

func TestInferHeterogeneousArray(t *testing.T) {
	got := Infer(decode(t, `[1, "two", {"id":"x"}]`))

	items := got["items"].(map[string]interface{})
	union, ok := items["anyOf"].([]interface{})
	require.True(t, ok, "mixed element shapes should union via anyOf")
	assert.Len(t, union, 3)

	// First-seen order is preserved.
	assert.Equal(t, "integer", union[0].(map[string]interface{})["type"])
	assert.Equal(t, "string", union[1].(map[string]interface{})["type"])
	assert.Equal(t, "object", union[2].(map[string]interface{})["type"])
}

func TestInferCollapsesDuplicateElementShapes(t *testing.T) {
	got := Infer(decode(t, `[{"a":1},{"a":2},{"a":3}]`))

	items := got["items"].(map[string]interface{})
	assert.Equal(t, "object", items["type"])
	assert.NotContains(t, items, "anyOf")
}

func TestInferDeterministic(t *testing.T) {
	raw := `{"users":[{"id":"a","n":1},{"id":"b","n":2.5}],"meta":{"total":2}}`
	first := Infer(decode(t, raw))
	for i := 0; i < 10; i++ {
		assert.Equal(t, canonical(first), canonical(Infer(decode(t, raw))))
	}
}

func TestInferValidateSelfConsistency(t *testing.T) {
	docs := []string{
		`{"id":"abc","count":3,"nested":{"deep":[1,2,3]}}`,
		`[{"a":"x"},{"a":"y","b":true}]`,
		`"scalar"`,
		`[]`,
		`{"mixed":[1,"two",null]}`,
	}
	for _, raw := range docs {
		v := decode(t, raw)
		violations, err := Validate(v, Infer(v))
		require.NoError(t, err, raw)
		assert.Empty(t, violations, "value must conform to its own inferred schema: %s", raw)
	}
}
