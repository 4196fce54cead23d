// Package probe discovers a working HTTP method for a URL by trial when no
// method is declared for it.
package probe

import (
	"context"
	"errors"

	"api-contract-validator/internal/httpx"

	"go.uber.org/zap"
)

// candidates are tried in order. Write methods first: a 404/405 from them
// is a clear rejection, and a real handler usually answers with something
// else (even a 422) that identifies the method.
var candidates = []string{"POST", "PUT", "PATCH", "DELETE", "GET"}

var writeMethods = map[string]bool{"POST": true, "PUT": true, "PATCH": true}

// Result is a successful probe: the first method the URL did not reject.
type Result struct {
	Method   string
	Response *httpx.Response
}

// Prober tries candidate methods against a URL, one attempt per method.
type Prober struct {
	client *httpx.Client
	log    *zap.Logger
}

// New returns a prober over the given transport.
func New(client *httpx.Client, log *zap.Logger) *Prober {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{client: client, log: log}
}

// Probe tries each candidate method once and returns the first response
// whose status is neither 404 nor 405. It returns nil when every candidate
// was rejected or failed at the transport level.
func (p *Prober) Probe(ctx context.Context, url string) *Result {
	for _, method := range candidates {
		var body interface{}
		if writeMethods[method] {
			body = map[string]interface{}{}
		}
		resp, err := p.client.Send(ctx, method, url, nil, body)
		if err != nil {
			var transportErr *httpx.TransportError
			if errors.As(err, &transportErr) {
				p.log.Debug("probe attempt failed", zap.String("method", method), zap.Error(err))
				continue
			}
			continue
		}
		if resp.Status == 404 || resp.Status == 405 {
			continue
		}
		p.log.Info("method discovered",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.Status))
		return &Result{Method: method, Response: resp}
	}
	return nil
}
