package phantom_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-phantom"
)

func TestAPIErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"APIError",
			&phantom.APIError{StatusCode: 418, Message: "teapot"},
			"phantom: API error 418: teapot",
		},
		{
			"AuthenticationError",
			&phantom.AuthenticationError{APIError: phantom.APIError{StatusCode: 401, Message: "invalid token"}},
			"phantom: authentication failed: invalid token",
		},
		{
			"NotFoundError with resource",
			&phantom.NotFoundError{APIError: phantom.APIError{StatusCode: 404}, ResourceType: "asset", ResourceID: "jira"},
			"phantom: asset not found: jira",
		},
		{
			"NotFoundError without resource",
			&phantom.NotFoundError{APIError: phantom.APIError{StatusCode: 404, Message: "gone"}},
			"phantom: resource not found: gone",
		},
		{
			"ValidationError",
			&phantom.ValidationError{APIError: phantom.APIError{StatusCode: 400, Message: "bad request"}},
			"phantom: validation error: bad request",
		},
		{
			"RateLimitError with retry-after",
			&phantom.RateLimitError{APIError: phantom.APIError{StatusCode: 429}, RetryAfter: 30 * time.Second},
			"phantom: rate limit exceeded, retry after 30s",
		},
		{
			"RateLimitError without retry-after",
			&phantom.RateLimitError{APIError: phantom.APIError{StatusCode: 429}},
			"phantom: rate limit exceeded",
		},
		{
			"ServerError",
			&phantom.ServerError{APIError: phantom.APIError{StatusCode: 503, Message: "service unavailable"}},
			"phantom: server error 503: service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorsAs(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"AuthenticationError", &phantom.AuthenticationError{APIError: phantom.APIError{StatusCode: 401}}},
		{"NotFoundError", &phantom.NotFoundError{APIError: phantom.APIError{StatusCode: 404}}},
		{"ValidationError", &phantom.ValidationError{APIError: phantom.APIError{StatusCode: 400}}},
		{"RateLimitError", &phantom.RateLimitError{APIError: phantom.APIError{StatusCode: 429}}},
		{"ServerError", &phantom.ServerError{APIError: phantom.APIError{StatusCode: 500}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *phantom.APIError
			require.ErrorAs(t, tt.err, &apiErr, "should be detectable as APIError")
		})
	}
}

func TestPlatformError(t *testing.T) {
	t.Run("message and kind", func(t *testing.T) {
		err := &phantom.PlatformError{Kind: phantom.KindContainer, Message: "failed to create the container"}
		assert.Equal(t, "phantom: container: failed to create the container", err.Error())
		assert.True(t, phantom.IsKind(err, phantom.KindContainer))
		assert.False(t, phantom.IsKind(err, phantom.KindPlaybook))
	})

	t.Run("wrapped cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := fmt.Errorf("outer: %w", &phantom.PlatformError{Kind: phantom.KindAction, Message: "failed", Err: cause})
		assert.ErrorIs(t, err, cause)
		assert.True(t, phantom.IsKind(err, phantom.KindAction))
	})

	t.Run("kind names", func(t *testing.T) {
		assert.Equal(t, "platform", phantom.KindPlatform.String())
		assert.Equal(t, "artifact", phantom.KindArtifact.String())
		assert.Equal(t, "playbook", phantom.KindPlaybook.String())
		assert.Equal(t, "action", phantom.KindAction.String())
	})
}

func TestUnrecognizedStatusError(t *testing.T) {
	err := &phantom.UnrecognizedStatusError{Resource: "action_run/4", Status: "bogus"}
	assert.ErrorIs(t, err, phantom.ErrUnrecognizedStatus)
	assert.Equal(t, `phantom: unrecognized status from action_run/4: "bogus"`, err.Error())

	empty := &phantom.UnrecognizedStatusError{Resource: "app_run"}
	assert.Contains(t, empty.Error(), "no status, success or count field")
}

func TestHTTPErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		header map[string]string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"failed": true, "message": "Invalid token"}`,
			check: func(t *testing.T, err error) {
				var authErr *phantom.AuthenticationError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, "Invalid token", authErr.Message)
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"failed": true, "message": "Requested item not found"}`,
			check: func(t *testing.T, err error) {
				var notFound *phantom.NotFoundError
				require.ErrorAs(t, err, &notFound)
			},
		},
		{
			name:   "bad request keeps raw body",
			status: http.StatusBadRequest,
			body:   `plain failure`,
			check: func(t *testing.T, err error) {
				var validationErr *phantom.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "plain failure", validationErr.Message)
				assert.Equal(t, "plain failure", validationErr.Body)
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "7"},
			check: func(t *testing.T, err error) {
				var rateErr *phantom.RateLimitError
				require.ErrorAs(t, err, &rateErr)
				assert.Equal(t, 7*time.Second, rateErr.RetryAfter)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var serverErr *phantom.ServerError
				require.ErrorAs(t, err, &serverErr)
				assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
			},
		},
		{
			name:   "other client error",
			status: http.StatusConflict,
			body:   `{"message": "duplicate"}`,
			check: func(t *testing.T, err error) {
				var apiErr *phantom.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
				assert.Equal(t, "duplicate", apiErr.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Containers.Get(context.Background(), 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
