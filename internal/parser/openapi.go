// Package parser enumerates the endpoints of an OpenAPI document. Only the
// (method, path) keys and the application/json requestBody schema are read;
// everything else in the document is ignored.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"api-contract-validator/internal/types"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
)

// Parser fetches and walks an OpenAPI document.
type Parser struct {
	client *http.Client
	log    *zap.Logger
}

// New returns a parser with its own short-lived HTTP client.
func New(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// ParseEndpoints fetches the OpenAPI document at docURL and returns one
// endpoint per declared operation, sorted by path then method for a stable
// run order. A URL that does not resolve to a document is fatal to the run;
// operations lacking a JSON request body simply carry no schema hint.
func (p *Parser) ParseEndpoints(docURL string) ([]types.Endpoint, error) {
	doc, err := p.fetchDoc(docURL)
	if err != nil {
		return nil, err
	}

	var endpoints []types.Endpoint
	for path, pathItem := range doc.Paths.Map() {
		for method, operation := range pathItem.Operations() {
			endpoints = append(endpoints, types.Endpoint{
				Method:        strings.ToUpper(method),
				Path:          path,
				RequestSchema: requestSchemaHint(operation),
			})
		}
	}

	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})

	p.log.Info("endpoints enumerated", zap.String("doc", docURL), zap.Int("count", len(endpoints)))
	return endpoints, nil
}

func (p *Parser) fetchDoc(docURL string) (*openapi3.T, error) {
	resp, err := p.client.Get(docURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching OpenAPI document", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	return doc, nil
}

// requestSchemaHint extracts requestBody.content["application/json"].schema
// as a plain map, resolving nothing beyond what the loader already did.
// Any missing link in that chain yields no hint.
func requestSchemaHint(operation *openapi3.Operation) map[string]interface{} {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content, ok := operation.RequestBody.Value.Content["application/json"]
	if !ok || content.Schema == nil || content.Schema.Value == nil {
		return nil
	}

	raw, err := content.Schema.Value.MarshalJSON()
	if err != nil {
		return nil
	}
	var hint map[string]interface{}
	if err := json.Unmarshal(raw, &hint); err != nil {
		return nil
	}
	return hint
}
