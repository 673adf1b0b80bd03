package phantom

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/tphakala/go-phantom/internal/api"
	"github.com/tphakala/go-phantom/internal/auth"
)

// Default configuration values.
const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = time.Second
	defaultMaxAttempts  = 10
)

// Client is the Phantom API client. A Client is not safe for concurrent use:
// its History is unsynchronized. Use one Client per goroutine.
type Client struct {
	// Containers provides access to container and case operations.
	Containers ContainerService
	// Artifacts provides access to artifact operations.
	Artifacts ArtifactService
	// Vault provides access to container file attachments.
	Vault VaultService
	// Playbooks provides access to playbook runs.
	Playbooks PlaybookService
	// Actions provides access to individual app actions.
	Actions ActionService

	session *session
}

// NewClient creates a new Phantom client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout:      defaultTimeout,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	token := &auth.Token{Value: cfg.authToken}
	if !token.Valid() {
		return nil, ErrNoAuthToken
	}

	if cfg.maxAttempts < 1 {
		return nil, validationError("max attempts must be at least 1")
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.insecureTLS {
			tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
		}
		httpClient = &http.Client{
			Timeout:   cfg.timeout,
			Transport: tr,
		}
	}

	transport, err := api.NewTransport(cfg.baseURL, token, httpClient)
	if err != nil {
		return nil, err
	}

	if cfg.userAgent != "" {
		transport.UserAgent = cfg.userAgent
	}

	logger := cfg.logger
	if logger == nil {
		logger = discardLogger()
	}
	transport.Logger = logger

	s := &session{
		transport:    transport,
		logger:       logger,
		history:      &History{},
		pollInterval: cfg.pollInterval,
		maxAttempts:  cfg.maxAttempts,
	}

	client := &Client{session: s}

	// Initialize services
	client.Containers = newContainerService(s)
	client.Artifacts = newArtifactService(s)
	client.Vault = newVaultService(s)
	client.Playbooks = newPlaybookService(s)
	client.Actions = newActionService(s)

	return client, nil
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.session.transport.BaseURL.String()
}

// History returns the identifiers this client has created.
func (c *Client) History() *History {
	return c.session.history
}

// Get fetches any REST resource below /rest, e.g. "ph_user" or "decided_list/5".
func (c *Client) Get(ctx context.Context, path string, q *Query, opts ...RequestOption) (Payload, error) {
	return c.session.request(ctx, http.MethodGet, path, q, nil, opts...)
}

// Wait polls the job described by h until it reaches a terminal state or runs
// out of attempts.
func (c *Client) Wait(ctx context.Context, h *JobHandle, opts ...RequestOption) (*PollResult, error) {
	return c.session.wait(ctx, h, opts...)
}

// NewJobHandle builds a JobHandle using this client's default interval and
// attempt budget. Options override the defaults.
func (c *Client) NewJobHandle(path string, q *Query, opts ...WaitOption) *JobHandle {
	return c.session.handle(path, q, opts...)
}
