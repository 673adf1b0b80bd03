package phantom

import (
	"context"
	"fmt"
	"net/http"
)

// PlaybookService provides operations on playbooks and their runs.
// A run id of 0 means the most recently started run.
type PlaybookService interface {
	// Run starts a playbook against a container and records the run id.
	Run(ctx context.Context, req *RunPlaybookRequest, opts ...RequestOption) (Payload, error)

	// Get fetches the current state of a playbook run without waiting.
	Get(ctx context.Context, runID int, opts ...RequestOption) (Payload, error)

	// Wait polls a playbook run until it finishes.
	Wait(ctx context.Context, runID int, opts ...WaitOption) (*PollResult, error)

	// WaitAction polls the app run of the named action inside a playbook run.
	WaitAction(ctx context.Context, action string, runID int, opts ...WaitOption) (*PollResult, error)

	// Information returns the newest run whose name contains playbookName.
	// An empty name uses the most recently started playbook.
	Information(ctx context.Context, playbookName string, opts ...RequestOption) (Payload, error)

	// LastRun returns the newest playbook run matching filter.
	LastRun(ctx context.Context, filter *LastRunFilter, opts ...RequestOption) (Payload, error)

	// WaitLastRun polls the newest playbook run matching filter until results are available.
	WaitLastRun(ctx context.Context, filter *LastRunFilter, opts ...WaitOption) (*PollResult, error)

	// SetActive turns automatic triggering of a playbook on or off.
	SetActive(ctx context.Context, playbookID int, active, cancelRuns bool, opts ...RequestOption) (Payload, error)

	// FailedAfterFailure lists runs that failed because the platform
	// restarted underneath them. Empty dates disable the range filter.
	FailedAfterFailure(ctx context.Context, start, end string, opts ...RequestOption) (*ListPage, error)
}

// LastRunFilter narrows LastRun. ContainerID takes precedence over
// PlaybookName; with neither set the newest run overall is returned.
type LastRunFilter struct {
	ContainerID  int
	PlaybookName string
}

func (f *LastRunFilter) query() *Query {
	q := &Query{PageSize: 1, Sort: "id", Order: "desc"}
	switch {
	case f == nil:
	case f.ContainerID != 0:
		q.Filters = []Filter{Eq("container", f.ContainerID)}
	case f.PlaybookName != "":
		q.Filters = []Filter{Eq("message__icontains", f.PlaybookName)}
	}
	return q
}

type playbookService struct {
	s *session
}

func newPlaybookService(s *session) *playbookService {
	return &playbookService{s: s}
}

func (p *playbookService) resolve(runID int) (int, error) {
	return resolve(runID, p.s.history.playbookRuns, "playbook run")
}

// Run starts a playbook against a container.
func (p *playbookService) Run(ctx context.Context, req *RunPlaybookRequest, opts ...RequestOption) (Payload, error) {
	if req == nil || req.Playbook == "" {
		return nil, validationError("playbook is required")
	}

	body := *req
	containerID, err := resolve(body.ContainerID, p.s.history.containers, "container")
	if err != nil {
		return nil, err
	}
	body.ContainerID = containerID
	if body.Scope == "" {
		body.Scope = ScopeNew
	}
	if body.Run == nil {
		body.Run = boolPtr(true)
	}

	result, err := p.s.request(ctx, http.MethodPost, "playbook_run", nil, &body, opts...)
	if err != nil {
		return nil, err
	}

	if _, ok := p.s.record(ctx, &p.s.history.playbookRuns, result, "playbook_run_id", "playbook_run"); !ok {
		return result, &PlatformError{Kind: KindPlaybook, Message: "failed to run the playbook", Response: result}
	}
	p.s.history.playbookNames = append(p.s.history.playbookNames, body.Playbook)

	return result, nil
}

// Get fetches the current state of a playbook run.
func (p *playbookService) Get(ctx context.Context, runID int, opts ...RequestOption) (Payload, error) {
	runID, err := p.resolve(runID)
	if err != nil {
		return nil, err
	}
	return p.s.request(ctx, http.MethodGet, fmt.Sprintf("playbook_run/%d", runID), nil, nil, opts...)
}

// Wait polls a playbook run until it finishes.
func (p *playbookService) Wait(ctx context.Context, runID int, opts ...WaitOption) (*PollResult, error) {
	runID, err := p.resolve(runID)
	if err != nil {
		return nil, err
	}
	return p.s.wait(ctx, p.s.handle(fmt.Sprintf("playbook_run/%d", runID), nil, opts...))
}

// WaitAction polls the app run of an action inside a playbook run.
func (p *playbookService) WaitAction(ctx context.Context, action string, runID int, opts ...WaitOption) (*PollResult, error) {
	if action == "" {
		return nil, validationError("action name is required")
	}
	runID, err := p.resolve(runID)
	if err != nil {
		return nil, err
	}

	q := &Query{Filters: []Filter{
		Eq("playbook_run_id", runID),
		Eq("action", action),
	}}
	return p.s.wait(ctx, p.s.handle("app_run", q, opts...))
}

// Information returns the newest run of a playbook.
func (p *playbookService) Information(ctx context.Context, playbookName string, opts ...RequestOption) (Payload, error) {
	if playbookName == "" {
		name, ok := last(p.s.history.playbookNames)
		if !ok {
			return nil, fmt.Errorf("%w: no playbook name given and none run by this client", ErrNoHistory)
		}
		playbookName = name
	}

	q := &Query{
		PageSize: 1,
		Sort:     "id",
		Order:    "desc",
		Filters:  []Filter{Eq("name__icontains", playbookName)},
	}
	return p.s.request(ctx, http.MethodGet, "playbook_run", q, nil, opts...)
}

// LastRun returns the newest playbook run matching filter.
func (p *playbookService) LastRun(ctx context.Context, filter *LastRunFilter, opts ...RequestOption) (Payload, error) {
	return p.s.request(ctx, http.MethodGet, "playbook_run", filter.query(), nil, opts...)
}

// WaitLastRun polls the newest playbook run matching filter.
func (p *playbookService) WaitLastRun(ctx context.Context, filter *LastRunFilter, opts ...WaitOption) (*PollResult, error) {
	return p.s.wait(ctx, p.s.handle("playbook_run", filter.query(), opts...))
}

// SetActive turns automatic triggering of a playbook on or off.
func (p *playbookService) SetActive(ctx context.Context, playbookID int, active, cancelRuns bool, opts ...RequestOption) (Payload, error) {
	if playbookID <= 0 {
		return nil, validationError("playbook id is required")
	}
	body := map[string]any{
		"active":      active,
		"cancel_runs": cancelRuns,
	}
	return p.s.request(ctx, http.MethodPost, fmt.Sprintf("playbook/%d", playbookID), nil, body, opts...)
}

// FailedAfterFailure lists runs killed by a platform restart.
func (p *playbookService) FailedAfterFailure(ctx context.Context, start, end string, opts ...RequestOption) (*ListPage, error) {
	q := &Query{
		Sort:  "id",
		Order: "desc",
		Filters: []Filter{
			Eq("status", "failed"),
			Eq("message__contains", "system/daemon start"),
		},
	}
	if f, ok := createTimeRange(start, end); ok {
		q.Filters = append(q.Filters, f)
	}
	return p.s.listPage(ctx, "playbook_run", q, opts...)
}
