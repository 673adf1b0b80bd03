package phantom

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tphakala/go-phantom/internal/api"
)

// restPrefix is the root of the Phantom REST surface.
const restPrefix = "/rest"

// session is the request facade shared by all services: it owns the
// transport, the client's history and the polling defaults.
type session struct {
	transport    *api.Transport
	logger       Logger
	history      *History
	pollInterval time.Duration
	maxAttempts  int
}

// request issues one call and validates the response. Non-2xx statuses become
// typed errors; a 2xx body is returned as a Payload, unmodified.
func (s *session) request(ctx context.Context, method, path string, q *Query, body any, opts ...RequestOption) (Payload, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	req := &api.Request{
		Method:  method,
		Path:    restPath(path),
		Query:   q.Encode(),
		Body:    body,
		Headers: reqCfg.headers,
	}
	if reqCfg.basicAuth != nil {
		req.BasicAuth = &api.BasicAuth{Username: reqCfg.basicAuth[0], Password: reqCfg.basicAuth[1]}
	}

	result := Payload{}
	resp, err := s.transport.DoJSON(ctx, req, &result)
	if resp != nil && (resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices) {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%s: %w", req.Path, err)
		}
		return nil, err
	}

	// A literal null body leaves the map nil.
	if result == nil {
		result = Payload{}
	}
	return result, nil
}

func restPath(path string) string {
	return restPrefix + "/" + strings.TrimPrefix(path, "/")
}

// listPage fetches one page of a list endpoint.
func (s *session) listPage(ctx context.Context, path string, q *Query, opts ...RequestOption) (*ListPage, error) {
	payload, err := s.request(ctx, http.MethodGet, path, q, nil, opts...)
	if err != nil {
		return nil, err
	}

	var page ListPage
	if err := payload.Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding %s list: %w", path, err)
	}
	if q != nil {
		page.Page = q.Page
	}
	return &page, nil
}

// first returns the first item of a list endpoint, or a NotFoundError.
func (s *session) first(ctx context.Context, path string, q *Query, what, key string) (Payload, error) {
	page, err := s.listPage(ctx, path, q)
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, &NotFoundError{
			APIError:     APIError{StatusCode: http.StatusNotFound, Message: what + " not found"},
			ResourceType: what,
			ResourceID:   key,
		}
	}
	return page.Data[0], nil
}

// record appends id to dst, logging when the response carried none.
func (s *session) record(ctx context.Context, dst *[]int, payload Payload, key, what string) (int, bool) {
	id, ok := payload.ID(key)
	if !ok {
		s.logger.Warn(ctx, "response carried no identifier", "resource", what, "key", key)
		return 0, false
	}
	*dst = append(*dst, id)
	return id, true
}
