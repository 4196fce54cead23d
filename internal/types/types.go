package types

import "encoding/json"

// Endpoint represents one declared API operation: an HTTP method plus a
// templated path like /users/{id}/posts. RequestSchema carries the
// requestBody schema from the OpenAPI document when one was declared.
type Endpoint struct {
	Method        string
	Path          string
	RequestSchema map[string]interface{}
}

// SchemaStatus is the tri-state outcome of the schema phase. Unknown means
// the phase was skipped (non-JSON body, non-2xx, HEAD/OPTIONS) and must not
// be conflated with a failed validation.
type SchemaStatus int

const (
	SchemaUnknown SchemaStatus = iota
	SchemaValid
	SchemaInvalid
)

func (s SchemaStatus) String() string {
	switch s {
	case SchemaValid:
		return "valid"
	case SchemaInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the tri-state as its string form in reports.
func (s SchemaStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// IssueKind tags an issue so pass/fail aggregation can match on the kind
// instead of substring-matching the human-readable message.
type IssueKind string

const (
	IssueStatusUnexpected     IssueKind = "status_unexpected"
	IssueContentTypeInvalid   IssueKind = "content_type_invalid"
	IssueParseFailed          IssueKind = "parse_failed"
	IssueSchemaInvalid        IssueKind = "schema_invalid"
	IssueSchemaUnusable       IssueKind = "schema_unusable"
	IssueSlowResponse         IssueKind = "slow_response"
	IssueTransportFailed      IssueKind = "transport_failed"
	IssueRepairFailed         IssueKind = "repair_failed"
	IssueCorrectnessViolation IssueKind = "correctness_violation"
)

// Issue pairs a machine-checkable kind with its report text.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// ValidationEntry is one row of the report: the outcome of a single concrete
// request. The field set is the renderer's input contract.
type ValidationEntry struct {
	URL          string       `json:"url"`
	Method       string       `json:"method"`
	StatusCode   int          `json:"status_code"`
	SchemaValid  SchemaStatus `json:"schema_valid"`
	Issues       []Issue      `json:"issues"`
	ResponseTime float64      `json:"response_time"`
	Schema       interface{}  `json:"schema,omitempty"`
	Response     interface{}  `json:"response,omitempty"`
	Payload      interface{}  `json:"payload,omitempty"`

	// SchemaCreated marks the request that established the baseline
	// schema for its endpoint. Informational: the entry still passes.
	SchemaCreated bool `json:"schema_created,omitempty"`
}

// gatingKinds are the issue kinds that flip the aggregate verdict. Slow
// responses are covered by the latency clause instead.
var gatingKinds = map[IssueKind]bool{
	IssueStatusUnexpected:     true,
	IssueContentTypeInvalid:   true,
	IssueParseFailed:          true,
	IssueSchemaInvalid:        true,
	IssueSchemaUnusable:       true,
	IssueTransportFailed:      true,
	IssueCorrectnessViolation: true,
}

// Passed is the aggregate verdict for one entry: 2xx status, schema valid or
// skipped, no gating issue, and response time within the advisory threshold.
func (e ValidationEntry) Passed(latencyThreshold float64) bool {
	if e.StatusCode < 200 || e.StatusCode >= 300 {
		return false
	}
	if e.SchemaValid == SchemaInvalid {
		return false
	}
	for _, issue := range e.Issues {
		if gatingKinds[issue.Kind] {
			return false
		}
	}
	return e.ResponseTime <= latencyThreshold
}

// AddIssue appends a tagged issue.
func (e *ValidationEntry) AddIssue(kind IssueKind, message string) {
	e.Issues = append(e.Issues, Issue{Kind: kind, Message: message})
}
