package phantom

import (
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL      string
	authToken    string
	httpClient   *http.Client
	timeout      time.Duration
	userAgent    string
	insecureTLS  bool
	logger       Logger
	pollInterval time.Duration
	maxAttempts  int
}

// WithBaseURL sets the Phantom server address, e.g. "https://phantom.local".
// The /rest prefix is added by the client.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAuthToken sets the automation user token sent as the ph-auth-token header.
func WithAuthToken(token string) ClientOption {
	return func(c *clientConfig) {
		c.authToken = token
	}
}

// WithHTTPClient sets a custom HTTP client.
// Note: WithTimeout and WithInsecureSkipVerify are ignored when this is used.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. Phantom
// appliances commonly ship with self-signed certificates.
func WithInsecureSkipVerify(skip bool) ClientOption {
	return func(c *clientConfig) {
		c.insecureTLS = skip
	}
}

// WithLogger sets the logging sink. The default discards all output.
func WithLogger(l Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithPollInterval sets the default wait between status polls.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.pollInterval = d
	}
}

// WithPollAttempts sets the default number of status polls before giving up.
func WithPollAttempts(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxAttempts = n
	}
}

// RequestOption configures individual API requests.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers   http.Header
	basicAuth *[2]string
}

func newRequestConfig() *requestConfig {
	return &requestConfig{
		headers: make(http.Header),
	}
}

func (r *requestConfig) apply(opts ...RequestOption) {
	for _, opt := range opts {
		opt(r)
	}
}

// WithHeader adds a custom header to a request.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers.Set(key, value)
	}
}

// WithHeaders adds multiple custom headers to a request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *requestConfig) {
		for k, v := range headers {
			r.headers.Set(k, v)
		}
	}
}

// WithRequestID sets the X-Request-ID header for tracing.
func WithRequestID(id string) RequestOption {
	return WithHeader("X-Request-ID", id)
}

// WithBasicAuth adds HTTP basic credentials to a request. Phantom requires
// them, in addition to the token, for some destructive calls.
func WithBasicAuth(username, password string) RequestOption {
	return func(r *requestConfig) {
		r.basicAuth = &[2]string{username, password}
	}
}
