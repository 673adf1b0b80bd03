package phantom_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-phantom"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc, opts ...phantom.ClientOption) *phantom.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	base := []phantom.ClientOption{
		phantom.WithBaseURL(server.URL),
		phantom.WithAuthToken("test-token"),
		phantom.WithPollInterval(0),
	}
	client, err := phantom.NewClient(append(base, opts...)...)
	require.NoError(t, err)

	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient(t *testing.T) {
	t.Run("success with required options", func(t *testing.T) {
		client, err := phantom.NewClient(
			phantom.WithBaseURL("https://phantom.example.com"),
			phantom.WithAuthToken("token"),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NotNil(t, client.Containers)
		assert.NotNil(t, client.Artifacts)
		assert.NotNil(t, client.Vault)
		assert.NotNil(t, client.Playbooks)
		assert.NotNil(t, client.Actions)
		assert.Equal(t, "https://phantom.example.com", client.BaseURL())
		assert.Empty(t, client.History().Containers())
	})

	t.Run("error without base URL", func(t *testing.T) {
		_, err := phantom.NewClient(
			phantom.WithAuthToken("token"),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, phantom.ErrNoBaseURL)
	})

	t.Run("error without token", func(t *testing.T) {
		_, err := phantom.NewClient(
			phantom.WithBaseURL("https://phantom.example.com"),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, phantom.ErrNoAuthToken)
	})

	t.Run("error with invalid attempt budget", func(t *testing.T) {
		_, err := phantom.NewClient(
			phantom.WithBaseURL("https://phantom.example.com"),
			phantom.WithAuthToken("token"),
			phantom.WithPollAttempts(0),
		)
		var validationErr *phantom.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("success with all options", func(t *testing.T) {
		client, err := phantom.NewClient(
			phantom.WithBaseURL("https://phantom.example.com"),
			phantom.WithAuthToken("token"),
			phantom.WithUserAgent("test-agent/1.0"),
			phantom.WithTimeout(60*time.Second),
			phantom.WithInsecureSkipVerify(true),
			phantom.WithLogger(phantom.NewSlogLogger(nil)),
			phantom.WithPollInterval(5*time.Second),
			phantom.WithPollAttempts(3),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)

		h := client.NewJobHandle("playbook_run/1", nil)
		assert.Equal(t, 5*time.Second, h.Interval())
		assert.Equal(t, 3, h.MaxAttempts())
	})

	t.Run("success with custom HTTP client", func(t *testing.T) {
		client, err := phantom.NewClient(
			phantom.WithBaseURL("https://phantom.example.com"),
			phantom.WithAuthToken("token"),
			phantom.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_InsecureSkipVerify(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"id": 1})
	}))
	defer server.Close()

	t.Run("verification is on by default", func(t *testing.T) {
		client, err := phantom.NewClient(
			phantom.WithBaseURL(server.URL),
			phantom.WithAuthToken("token"),
		)
		require.NoError(t, err)

		_, err = client.Containers.Get(context.Background(), 1)
		require.Error(t, err)
	})

	t.Run("opt-in accepts self-signed certificates", func(t *testing.T) {
		client, err := phantom.NewClient(
			phantom.WithBaseURL(server.URL),
			phantom.WithAuthToken("token"),
			phantom.WithInsecureSkipVerify(true),
		)
		require.NoError(t, err)

		got, err := client.Containers.Get(context.Background(), 1)
		require.NoError(t, err)
		id, ok := got.ID("id")
		assert.True(t, ok)
		assert.Equal(t, 1, id)
	})
}

func TestClient_Get(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/ph_user", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("ph-auth-token"))
		assert.Equal(t, `"normal"`, r.URL.Query().Get("_filter_type"))
		writeJSON(t, w, map[string]any{"count": 1, "data": []any{map[string]any{"id": 3}}})
	})

	got, err := client.Get(context.Background(), "ph_user", &phantom.Query{
		Filters: []phantom.Filter{phantom.Eq("type", "normal")},
	})
	require.NoError(t, err)
	assert.InDelta(t, float64(1), got["count"], 0.001)
}

func TestClient_RequestOptions(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-request-123", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "custom-value", r.Header.Get("X-Custom-Header"))
		assert.Equal(t, "other", r.Header.Get("X-Other"))
		writeJSON(t, w, map[string]any{"id": 1})
	})

	_, err := client.Containers.Get(context.Background(), 1,
		phantom.WithRequestID("test-request-123"),
		phantom.WithHeader("X-Custom-Header", "custom-value"),
		phantom.WithHeaders(map[string]string{"X-Other": "other"}),
	)
	require.NoError(t, err)
}

func TestResponseSizeLimit(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		largeData := make([]byte, 11*1024*1024) // 11MB
		for i := range largeData {
			largeData[i] = 'x'
		}
		_, err := w.Write(largeData)
		assert.NoError(t, err)
	})

	_, err := client.Containers.Get(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response too large")
}

func TestClient_ResponseDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want phantom.Payload
	}{
		{"object", `{"id": 3}`, phantom.Payload{"id": float64(3)}},
		{"empty body", ``, phantom.Payload{}},
		{"null body", `null`, phantom.Payload{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := client.Get(context.Background(), "container/3", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("malformed success body names the path", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>login</html>`))
		})

		_, err := client.Get(context.Background(), "container/3", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/rest/container/3")
		assert.Contains(t, err.Error(), "unmarshaling response")
	})

	t.Run("malformed error body keeps the status", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>proxy</html>`))
		})

		_, err := client.Get(context.Background(), "container/3", nil)
		var serverErr *phantom.ServerError
		require.ErrorAs(t, err, &serverErr)
		assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
	})
}
