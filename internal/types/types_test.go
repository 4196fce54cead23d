package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func passingEntry() ValidationEntry {
	return ValidationEntry{
		URL: "http://api/items", Method: "GET",
		StatusCode: 200, SchemaValid: SchemaValid, ResponseTime: 0.3,
	}
}

func TestPassedHappyPath(t *testing.T) {
	assert.True(t, passingEntry().Passed(2.0))
}

func TestPassedSchemaUnknownStillPasses(t *testing.T) {
	e := passingEntry()
	e.SchemaValid = SchemaUnknown
	assert.True(t, e.Passed(2.0), "skipped schema phase must not fail the entry")
}

func TestPassedRejectsNon2xx(t *testing.T) {
	e := passingEntry()
	e.StatusCode = 404
	assert.False(t, e.Passed(2.0))
}

func TestPassedRejectsSchemaInvalid(t *testing.T) {
	e := passingEntry()
	e.SchemaValid = SchemaInvalid
	assert.False(t, e.Passed(2.0))
}

func TestPassedRejectsSlowResponse(t *testing.T) {
	e := passingEntry()
	e.ResponseTime = 2.5
	assert.False(t, e.Passed(2.0))
}

func TestPassedGatingByKind(t *testing.T) {
	gating := []IssueKind{
		IssueStatusUnexpected,
		IssueContentTypeInvalid,
		IssueParseFailed,
		IssueSchemaInvalid,
		IssueSchemaUnusable,
		IssueTransportFailed,
		IssueCorrectnessViolation,
	}
	for _, kind := range gating {
		e := passingEntry()
		e.AddIssue(kind, "boom")
		assert.False(t, e.Passed(2.0), string(kind))
	}

	// Advisory kinds do not gate on their own.
	e := passingEntry()
	e.AddIssue(IssueSlowResponse, "response time too long: 1.9s")
	e.AddIssue(IssueRepairFailed, "could not parse 422 detail")
	assert.True(t, e.Passed(2.0))
}

func TestSchemaStatusJSON(t *testing.T) {
	for status, want := range map[SchemaStatus]string{
		SchemaUnknown: `"unknown"`,
		SchemaValid:   `"valid"`,
		SchemaInvalid: `"invalid"`,
	} {
		data, err := json.Marshal(status)
		assert.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}
