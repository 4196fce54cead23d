// Package httpx is the transport layer: one synchronous JSON-oriented HTTP
// exchange at a time, with timing, typed failures, and lazy body decoding.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TransportError wraps a network-level failure (connection refused, DNS,
// timeout). The request it belongs to is abandoned; the run continues.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the body claimed a JSON content type but failed to decode.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "failed to parse response JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Response is the outcome of one exchange.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
	Elapsed time.Duration
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// IsJSON reports whether the response declares a JSON body.
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType()), "application/json")
}

// JSON decodes the body, preserving number precision so integers stay
// distinguishable from floats during schema inference.
func (r *Response) JSON() (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(r.Body))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, &ParseError{Err: err}
	}
	return value, nil
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Client executes requests with a fixed timeout and a set of default
// headers applied to every exchange.
type Client struct {
	hc      *http.Client
	headers map[string]string
	log     *zap.Logger
}

// NewClient builds a client. defaultHeaders may carry a static auth header
// from configuration; nil logger falls back to a nop logger.
func NewClient(timeout time.Duration, defaultHeaders map[string]string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		hc:      &http.Client{Timeout: timeout},
		headers: defaultHeaders,
		log:     log,
	}
}

// Send performs one exchange. A non-nil body is marshaled as JSON. Network
// failures and timeouts return a *TransportError; any HTTP status is a
// successful exchange.
func (c *Client) Send(ctx context.Context, method, url string, headers map[string]string, body interface{}) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.log.Debug("sending request", zap.String("method", method), zap.String("url", url))

	start := time.Now()
	resp, err := c.hc.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("url", url), zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	c.log.Debug("received response",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
		Elapsed: elapsed,
	}, nil
}
