package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vkozyrev/apptbook/internal/logging"
)

// Request describes one outbound call. It is passed by value: a replay after
// refresh builds a fresh copy with the new token instead of mutating state
// shared with the caller.
type Request struct {
	Method string
	Path   string // relative to the base URL, e.g. "/auth/login"
	Query  url.Values
	Body   any

	// BearerToken, when non-empty, is sent as "Authorization: Bearer <t>".
	BearerToken string
}

// Response is the classified outcome of a completed HTTP exchange. Transport
// errors never produce a Response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorBody is the server's error payload shape:
// {"error": "...", "errors": {"field": "..."}}.
type errorBody struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}

// validationError turns a 4xx response into a *ValidationError, keeping the
// server-provided message verbatim.
func (r *Response) validationError() *ValidationError {
	var body errorBody
	if err := json.Unmarshal(r.Body, &body); err != nil || body.Error == "" {
		return &ValidationError{Message: http.StatusText(r.StatusCode)}
	}
	return &ValidationError{Message: body.Error, Fields: body.Errors}
}

// Transport performs the actual network call. Implemented by HTTPTransport;
// tests substitute fakes.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

type HTTPTransport struct {
	baseURL string
	client  *http.Client
	log     logging.Logger
}

// NewHTTPTransport builds a transport for the given base URL (including the
// /api prefix). Every call is bounded by timeout.
func NewHTTPTransport(baseURL string, timeout time.Duration, log logging.Logger) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req Request) (*Response, error) {
	endpoint := t.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if req.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.BearerToken)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		t.log.Warn(ctx, "server error", "method", req.Method, "path", req.Path, "status", resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
