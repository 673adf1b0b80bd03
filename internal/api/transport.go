// Package api provides low-level HTTP transport for Phantom REST calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tphakala/go-phantom/internal/auth"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// maxLoggedBody caps how much of a response body ends up in debug logs.
	maxLoggedBody = 4096
)

// Logger receives request/response debug records.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
}

// Transport handles HTTP communication with the Phantom REST API.
type Transport struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
	Token      *auth.Token
	UserAgent  string
	Logger     Logger
}

// NewTransport creates a Transport with the given configuration.
func NewTransport(baseURL string, token *auth.Token, httpClient *http.Client) (*Transport, error) {
	if token == nil {
		return nil, fmt.Errorf("auth token must be provided")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultHTTPTimeout,
		}
	}

	return &Transport{
		BaseURL:    u,
		HTTPClient: httpClient,
		Token:      token,
		UserAgent:  "go-phantom/1.0",
	}, nil
}

// BasicAuth carries per-request username/password credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Request represents an API request.
type Request struct {
	Method string
	Path   string
	// Query is an already encoded query string, without the leading '?'.
	Query     string
	Body      any
	Headers   http.Header
	BasicAuth *BasicAuth
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Do executes an API request and returns the raw response.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	// Limit response body size to prevent memory exhaustion
	limitedReader := io.LimitReader(httpResp.Body, defaultMaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if int64(len(body)) > defaultMaxBodySize {
		return nil, fmt.Errorf("response too large: exceeds %d bytes", defaultMaxBodySize)
	}

	t.logExchange(ctx, httpReq, httpResp.StatusCode, body)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

// DoJSON executes a request and unmarshals the JSON response into result.
// It only attempts to unmarshal on success status codes (< 400).
func (t *Transport) DoJSON(ctx context.Context, req *Request, result any) (*Response, error) {
	resp, err := t.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	// Only unmarshal on success status codes
	if result != nil && len(resp.Body) > 0 && resp.StatusCode < 400 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return resp, fmt.Errorf("unmarshaling response: %w", err)
		}
	}

	return resp, nil
}

// URL resolves a request path and query against the base URL.
func (t *Transport) URL(path, query string) *url.URL {
	u := t.BaseURL.JoinPath(path)
	u.RawQuery = query
	return u
}

func (t *Transport) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u := t.URL(req.Path, req.Query)

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Set default headers
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.UserAgent)

	t.Token.Apply(httpReq)

	if req.BasicAuth != nil {
		httpReq.SetBasicAuth(req.BasicAuth.Username, req.BasicAuth.Password)
	}

	// Apply custom headers
	maps.Copy(httpReq.Header, req.Headers)

	return httpReq, nil
}

func (t *Transport) logExchange(ctx context.Context, req *http.Request, status int, body []byte) {
	if t.Logger == nil {
		return
	}
	logged := body
	if len(logged) > maxLoggedBody {
		logged = logged[:maxLoggedBody]
	}
	t.Logger.Debug(ctx, "phantom request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", status,
		"response", string(logged),
	)
}
