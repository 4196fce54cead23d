// Package executor drives the validation run: it fans each endpoint out
// into concrete requests, executes them strictly in order, and turns every
// exchange into one report entry.
package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"api-contract-validator/internal/contextstore"
	"api-contract-validator/internal/httpx"
	"api-contract-validator/internal/llm"
	"api-contract-validator/internal/payload"
	"api-contract-validator/internal/probe"
	"api-contract-validator/internal/resolver"
	"api-contract-validator/internal/schema"
	"api-contract-validator/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds run-level settings for the orchestrator.
type Config struct {
	BaseURL          string
	MaxFanout        int
	LatencyThreshold float64
}

// Runner owns one validation run: the transport, the schema baselines, and
// the context store accumulated along the way.
type Runner struct {
	cfg     Config
	client  *httpx.Client
	schemas *schema.Store
	store   *contextstore.Store
	prober  *probe.Prober
	llm     llm.Client
	log     *zap.Logger
}

// NewRunner wires a runner. llmClient may be nil; payloads then start from
// an empty object.
func NewRunner(cfg Config, client *httpx.Client, schemas *schema.Store, store *contextstore.Store, llmClient llm.Client, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		client:  client,
		schemas: schemas,
		store:   store,
		prober:  probe.New(client, log),
		llm:     llmClient,
		log:     log,
	}
}

// Run validates every endpoint in order. Each templated path is expanded
// against the context store at the moment it is reached, so identifiers
// extracted from earlier responses feed later path parameters.
func (r *Runner) Run(ctx context.Context, endpoints []types.Endpoint) []types.ValidationEntry {
	var entries []types.ValidationEntry
	for _, ep := range endpoints {
		paths := resolver.Resolve(ep.Path, r.store, r.cfg.MaxFanout)
		for _, concrete := range paths {
			url := joinURL(r.cfg.BaseURL, concrete)
			r.log.Info("validating", zap.String("method", ep.Method), zap.String("url", url))
			entries = append(entries, r.ValidateOne(ctx, ep.Method, url, ep.RequestSchema))
		}
	}
	return entries
}

// ProbeAndValidate discovers a working method for url by trial, then runs
// the normal validation flow with it.
func (r *Runner) ProbeAndValidate(ctx context.Context, url string) types.ValidationEntry {
	result := r.prober.Probe(ctx, url)
	if result == nil {
		entry := types.ValidationEntry{URL: url, Method: "UNKNOWN", SchemaValid: types.SchemaUnknown}
		entry.AddIssue(types.IssueStatusUnexpected, "no candidate method accepted by this URL")
		return entry
	}
	return r.ValidateOne(ctx, result.Method, url, nil)
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// ValidateOne runs a single concrete request through the full pipeline:
// send (with at most one 422 repair), status and content-type checks, the
// schema phase against the persisted baseline, the latency advisory, and
// the UUID correctness check. Every failure becomes an issue on the entry;
// nothing escapes to the caller.
func (r *Runner) ValidateOne(ctx context.Context, method, url string, requestSchema map[string]interface{}) types.ValidationEntry {
	entry := types.ValidationEntry{
		URL:         url,
		Method:      method,
		SchemaValid: types.SchemaUnknown,
	}

	resp := r.send(ctx, method, url, requestSchema, &entry)
	if resp == nil {
		return entry
	}

	entry.StatusCode = resp.Status
	entry.ResponseTime = resp.Elapsed.Seconds()

	statusOK := resp.Status >= 200 && resp.Status < 300
	if !statusOK {
		entry.AddIssue(types.IssueStatusUnexpected,
			fmt.Sprintf("unexpected status %d %s", resp.Status, http.StatusText(resp.Status)))
	}

	// HEAD and OPTIONS carry no meaningful body; a failed write tells us
	// nothing about the endpoint's contract either. Only safe reads
	// continue past an unexpected status.
	skipBody := method == http.MethodHead || method == http.MethodOptions ||
		(!statusOK && method != http.MethodGet)

	var document interface{}
	haveDocument := false
	if !skipBody {
		if len(resp.Body) == 0 {
			// 204-style responses carry no body to check a contract on.
		} else if !resp.IsJSON() {
			entry.AddIssue(types.IssueContentTypeInvalid,
				fmt.Sprintf("content type %q is not application/json", resp.ContentType()))
			entry.Response = resp.Text()
		} else {
			doc, err := resp.JSON()
			if err != nil {
				entry.AddIssue(types.IssueParseFailed, err.Error())
				entry.SchemaValid = types.SchemaInvalid
				entry.Response = resp.Text()
			} else {
				document = doc
				haveDocument = true
				entry.Response = doc
			}
		}
	}

	if haveDocument && statusOK {
		r.schemaPhase(method, url, document, &entry)
		r.store.ExtractFrom(document)
	}

	if entry.ResponseTime > r.cfg.LatencyThreshold {
		entry.AddIssue(types.IssueSlowResponse,
			fmt.Sprintf("response time too long: %.2fs", entry.ResponseTime))
	}

	if haveDocument {
		checkUUIDs(document, &entry)
	}

	return entry
}

// send performs the request, including the empty-body-then-repair loop for
// write methods. It returns nil after recording a transport failure.
func (r *Runner) send(ctx context.Context, method, url string, requestSchema map[string]interface{}, entry *types.ValidationEntry) *httpx.Response {
	if !isWriteMethod(method) {
		resp, err := r.client.Send(ctx, method, url, nil, nil)
		if err != nil {
			return r.recordSendFailure(err, entry)
		}
		return resp
	}

	body := r.initialBody(ctx, method, url, requestSchema)
	entry.Payload = body

	resp, err := r.client.Send(ctx, method, url, nil, body)
	if err != nil {
		return r.recordSendFailure(err, entry)
	}
	if resp.Status != http.StatusUnprocessableEntity {
		return resp
	}

	detail, perr := payload.ParseDetail(resp.Body)
	if perr != nil {
		entry.AddIssue(types.IssueRepairFailed, perr.Error())
		return resp
	}

	repaired := payload.SynthesizeFromValidationError(detail)
	entry.Payload = repaired

	retried, err := r.client.Send(ctx, method, url, nil, repaired)
	if err != nil {
		return r.recordSendFailure(err, entry)
	}
	return retried
}

// initialBody is the first write payload: an LLM draft when configured and
// a request schema is known, otherwise an empty object for the repair loop
// to work from.
func (r *Runner) initialBody(ctx context.Context, method, url string, requestSchema map[string]interface{}) map[string]interface{} {
	if r.llm == nil || requestSchema == nil {
		return map[string]interface{}{}
	}
	drafted, err := r.llm.SuggestPayload(ctx, method, url, requestSchema)
	if err != nil {
		r.log.Warn("payload drafting failed, starting from empty body", zap.Error(err))
		return map[string]interface{}{}
	}
	return drafted
}

func (r *Runner) recordSendFailure(err error, entry *types.ValidationEntry) *httpx.Response {
	var transportErr *httpx.TransportError
	if errors.As(err, &transportErr) {
		entry.AddIssue(types.IssueTransportFailed, transportErr.Error())
	} else {
		entry.AddIssue(types.IssueTransportFailed, "transport error: "+err.Error())
	}
	return nil
}

// schemaPhase validates the document against the persisted baseline for
// (method, url), or infers and persists a new baseline on first sight.
func (r *Runner) schemaPhase(method, url string, document interface{}, entry *types.ValidationEntry) {
	baseline, found, err := r.schemas.Load(method, url)
	if err != nil {
		var schemaErr *schema.SchemaError
		if errors.As(err, &schemaErr) {
			entry.AddIssue(types.IssueSchemaUnusable, schemaErr.Error())
		} else {
			entry.AddIssue(types.IssueSchemaUnusable, "failed to load baseline schema: "+err.Error())
		}
		return
	}

	if found {
		violations, verr := schema.Validate(document, baseline)
		if verr != nil {
			entry.AddIssue(types.IssueSchemaUnusable, verr.Error())
			entry.Schema = baseline
			return
		}
		entry.Schema = baseline
		if len(violations) > 0 {
			entry.SchemaValid = types.SchemaInvalid
			for _, v := range violations {
				entry.AddIssue(types.IssueSchemaInvalid, v.String())
			}
			return
		}
		entry.SchemaValid = types.SchemaValid
		return
	}

	inferred := schema.Infer(document)
	created, serr := r.schemas.Save(method, url, inferred)
	if serr != nil {
		r.log.Warn("failed to persist baseline schema", zap.String("url", url), zap.Error(serr))
	}
	entry.Schema = inferred
	entry.SchemaValid = types.SchemaValid
	entry.SchemaCreated = created
	if created {
		r.log.Info("baseline schema created", zap.String("method", method), zap.String("url", url))
	}
}

// checkUUIDs verifies that record identifiers parse as canonical UUIDs: the
// top-level object's "id", or each element's "id" when the response is a
// list of records. Violations are issues; they never flip the schema state.
func checkUUIDs(document interface{}, entry *types.ValidationEntry) {
	switch doc := document.(type) {
	case map[string]interface{}:
		checkRecordID(doc, entry)
	case []interface{}:
		for _, item := range doc {
			if record, ok := item.(map[string]interface{}); ok {
				checkRecordID(record, entry)
			}
		}
	}
}

func checkRecordID(record map[string]interface{}, entry *types.ValidationEntry) {
	value, ok := record["id"].(string)
	if !ok {
		return
	}
	if _, err := uuid.Parse(value); err != nil {
		entry.AddIssue(types.IssueCorrectnessViolation,
			fmt.Sprintf("invalid UUID format: %s", value))
	}
}

func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
