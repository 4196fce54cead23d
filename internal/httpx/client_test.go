package httpx

import (
	"context"
	stdjson "encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"qty":1}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"a1","count":2}`)
	}))
	defer srv.Close()

	client := NewClient(2*time.Second, nil, nil)
	resp, err := client.Send(context.Background(), http.MethodPost, srv.URL, nil, map[string]interface{}{"qty": 1})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.IsJSON())
	assert.Greater(t, resp.Elapsed, time.Duration(0))

	doc, err := resp.JSON()
	require.NoError(t, err)
	obj := doc.(map[string]interface{})
	assert.Equal(t, "a1", obj["id"])
}

func TestSendDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(2*time.Second, map[string]string{"Authorization": "Bearer tok"}, nil)
	resp, err := client.Send(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
}

func TestSendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(time.Second, nil, nil)
	_, err := client.Send(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "transport error")
}

func TestSendTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(50*time.Millisecond, nil, nil)
	_, err := client.Send(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestJSONParseError(t *testing.T) {
	resp := &Response{
		Status:  200,
		Headers: http.Header{"Content-Type": []string{"application/json"}},
		Body:    []byte(`{oops`),
	}
	_, err := resp.JSON()
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestJSONPreservesNumberPrecision(t *testing.T) {
	resp := &Response{Body: []byte(`{"n":1,"f":1.5}`)}
	doc, err := resp.JSON()
	require.NoError(t, err)

	obj := doc.(map[string]interface{})
	n, isNumber := obj["n"].(stdjson.Number)
	assert.True(t, isNumber, "integers should decode as stdjson.Number, not float64")
	assert.Equal(t, "1", n.String())
}
