package phantom

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Status vocabularies shared by Phantom's asynchronous resources.
var (
	DefaultTerminalStates   = []string{"failed", "success", "new", "closed", "open"}
	DefaultInProgressStates = []string{"pending", "running"}
)

// StatusClass is the classification of a reported status.
type StatusClass int

const (
	StatusUnrecognized StatusClass = iota
	StatusTerminal
	StatusInProgress
)

func (c StatusClass) String() string {
	switch c {
	case StatusTerminal:
		return "terminal"
	case StatusInProgress:
		return "in-progress"
	default:
		return "unrecognized"
	}
}

// JobHandle describes an asynchronous job to poll: the resource to fetch, how
// often and how many times to fetch it, and which statuses end or extend the
// wait. A JobHandle is immutable once built.
type JobHandle struct {
	path        string
	query       Query
	interval    time.Duration
	maxAttempts int
	terminal    mapset.Set[string]
	inProgress  mapset.Set[string]
}

// WaitOption configures a JobHandle.
type WaitOption func(*JobHandle)

// WithInterval sets the wait between fetches.
func WithInterval(d time.Duration) WaitOption {
	return func(h *JobHandle) {
		h.interval = d
	}
}

// WithMaxAttempts caps the number of fetches. Waiting on a handle with a
// budget below 1 fails with a *ValidationError.
func WithMaxAttempts(n int) WaitOption {
	return func(h *JobHandle) {
		h.maxAttempts = n
	}
}

// WithTerminalStates replaces the set of statuses that end polling.
func WithTerminalStates(states ...string) WaitOption {
	return func(h *JobHandle) {
		h.terminal = mapset.NewThreadUnsafeSet(states...)
	}
}

// WithInProgressStates replaces the set of statuses that cause a retry.
func WithInProgressStates(states ...string) WaitOption {
	return func(h *JobHandle) {
		h.inProgress = mapset.NewThreadUnsafeSet(states...)
	}
}

// NewJobHandle builds a handle for the resource at path (relative to /rest).
// Defaults: one second interval, ten attempts, the default state sets.
func NewJobHandle(path string, q *Query, opts ...WaitOption) *JobHandle {
	h := &JobHandle{
		path:        path,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
		terminal:    mapset.NewThreadUnsafeSet(DefaultTerminalStates...),
		inProgress:  mapset.NewThreadUnsafeSet(DefaultInProgressStates...),
	}
	if q != nil {
		h.query = *q
		h.query.Filters = slices.Clone(q.Filters)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Path returns the polled resource path.
func (h *JobHandle) Path() string { return h.path }

// Query returns a copy of the query sent with every fetch.
func (h *JobHandle) Query() *Query {
	q := h.query
	q.Filters = slices.Clone(h.query.Filters)
	return &q
}

// Interval returns the wait between fetches.
func (h *JobHandle) Interval() time.Duration { return h.interval }

// MaxAttempts returns the fetch budget.
func (h *JobHandle) MaxAttempts() int { return h.maxAttempts }

// Classify places status in exactly one class. A status in both sets is
// terminal.
func (h *JobHandle) Classify(status string) StatusClass {
	switch {
	case h.terminal.Contains(status):
		return StatusTerminal
	case h.inProgress.Contains(status):
		return StatusInProgress
	default:
		return StatusUnrecognized
	}
}

// PollOutcome distinguishes a finished job from an exhausted budget.
type PollOutcome int

const (
	OutcomeCompleted PollOutcome = iota + 1
	OutcomeTimedOut
)

func (o PollOutcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// PollResult is the outcome of waiting on a JobHandle.
type PollResult struct {
	Outcome PollOutcome
	// Payload is the terminal response. It is nil when the wait timed out.
	Payload Payload
	// Attempts is the number of fetches performed.
	Attempts int
	// LastStatus is the last status value observed, if any.
	LastStatus string
}

// TimedOut reports whether the attempt budget ran out.
func (r *PollResult) TimedOut() bool {
	return r.Outcome == OutcomeTimedOut
}

// Err returns an error wrapping ErrTimedOut for a timed out result, nil otherwise.
func (r *PollResult) Err() error {
	if !r.TimedOut() {
		return nil
	}
	return fmt.Errorf("%w after %d attempts (last status %q)", ErrTimedOut, r.Attempts, r.LastStatus)
}

// handle builds a JobHandle that starts from the session's defaults.
func (s *session) handle(path string, q *Query, opts ...WaitOption) *JobHandle {
	base := []WaitOption{WithInterval(s.pollInterval), WithMaxAttempts(s.maxAttempts)}
	return NewJobHandle(path, q, append(base, opts...)...)
}

// wait fetches h's resource until it is terminal, the budget runs out, or an
// unrecognized status is seen. Completion is signalled by, in order: a
// terminal status, a truthy "success" field, a truthy "count" field (list
// endpoints have no status).
func (s *session) wait(ctx context.Context, h *JobHandle, opts ...RequestOption) (*PollResult, error) {
	if h.maxAttempts < 1 {
		return nil, validationError(fmt.Sprintf("max attempts must be at least 1, got %d", h.maxAttempts))
	}

	log := s.logger.With("path", h.path)
	var lastStatus string

	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		payload, err := s.request(ctx, http.MethodGet, h.path, &h.query, nil, opts...)
		if err != nil {
			return nil, err
		}

		status, hasStatus := statusOf(payload)
		class := StatusUnrecognized
		if hasStatus {
			class = h.Classify(status)
			lastStatus = status
		}

		switch {
		case class == StatusTerminal:
			return completed(payload, attempt, lastStatus), nil
		case class == StatusInProgress:
			log.Debug(ctx, "job still in progress", "status", status, "attempt", attempt)
			if attempt == h.maxAttempts {
				continue
			}
			if err := sleepContext(ctx, h.interval); err != nil {
				return nil, err
			}
		case truthy(payload["success"]):
			return completed(payload, attempt, lastStatus), nil
		case truthy(payload["count"]):
			return completed(payload, attempt, lastStatus), nil
		default:
			return nil, &UnrecognizedStatusError{
				Resource: h.path,
				Status:   status,
				Payload:  payload,
			}
		}
	}

	log.Info(ctx, "job wait timed out", "status", lastStatus, "attempts", h.maxAttempts)
	return &PollResult{
		Outcome:    OutcomeTimedOut,
		Attempts:   h.maxAttempts,
		LastStatus: lastStatus,
	}, nil
}

func completed(payload Payload, attempts int, status string) *PollResult {
	return &PollResult{
		Outcome:    OutcomeCompleted,
		Payload:    payload,
		Attempts:   attempts,
		LastStatus: status,
	}
}

func statusOf(p Payload) (string, bool) {
	v, ok := p["status"]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
