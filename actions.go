package phantom

import (
	"context"
	"fmt"
	"net/http"
)

// AppInfo identifies the app behind a configured asset.
type AppInfo struct {
	Asset       string
	ProductName string
	AppID       int
}

// ActionService runs individual app actions outside of a playbook.
// A run id of 0 means the most recently started action run.
type ActionService interface {
	// ApplicationID resolves an asset name to the app that implements it.
	ApplicationID(ctx context.Context, asset string, opts ...RequestOption) (*AppInfo, error)

	// Run starts an action and records the action run id.
	Run(ctx context.Context, req *RunActionRequest, opts ...RequestOption) (Payload, error)

	// Get fetches the current state of an action run without waiting.
	Get(ctx context.Context, runID int, opts ...RequestOption) (Payload, error)

	// Wait polls an action run until it finishes.
	Wait(ctx context.Context, runID int, opts ...WaitOption) (*PollResult, error)

	// RunData polls the app run records of an action run, which carry the
	// detailed result data.
	RunData(ctx context.Context, runID int, opts ...WaitOption) (*PollResult, error)

	// JiraTicket runs "get ticket" on the "jira" asset and returns the run data.
	JiraTicket(ctx context.Context, ticket string, containerID int, opts ...WaitOption) (*PollResult, error)
}

type actionService struct {
	s *session
}

func newActionService(s *session) *actionService {
	return &actionService{s: s}
}

func (a *actionService) resolve(runID int) (int, error) {
	return resolve(runID, a.s.history.actionRuns, "action run")
}

type assetRecord struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ProductName string `json:"product_name"`
}

// ApplicationID looks the asset up by name, then the app by product name.
func (a *actionService) ApplicationID(ctx context.Context, asset string, opts ...RequestOption) (*AppInfo, error) {
	if asset == "" {
		return nil, validationError("asset name is required")
	}

	assetPayload, err := a.s.first(ctx, "asset", &Query{Filters: []Filter{Eq("name", asset)}}, "asset", asset)
	if err != nil {
		return nil, err
	}
	var rec assetRecord
	if err := assetPayload.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding asset %s: %w", asset, err)
	}
	if rec.ProductName == "" {
		return nil, &PlatformError{Kind: KindAction, Message: "asset " + asset + " has no product name", Response: assetPayload}
	}

	app, err := a.s.first(ctx, "app", &Query{Filters: []Filter{Eq("product_name", rec.ProductName)}}, "app", rec.ProductName)
	if err != nil {
		return nil, err
	}
	appID, ok := app.ID("id")
	if !ok {
		return nil, &PlatformError{Kind: KindAction, Message: "app " + rec.ProductName + " has no id", Response: app}
	}

	return &AppInfo{Asset: asset, ProductName: rec.ProductName, AppID: appID}, nil
}

// Run starts an action.
func (a *actionService) Run(ctx context.Context, req *RunActionRequest, opts ...RequestOption) (Payload, error) {
	if req == nil || req.Action == "" {
		return nil, validationError("action name is required")
	}
	if req.Asset == "" {
		return nil, validationError("asset name is required")
	}

	containerID, err := resolve(req.ContainerID, a.s.history.containers, "container")
	if err != nil {
		return nil, err
	}

	appID := req.AppID
	if appID == 0 {
		info, err := a.ApplicationID(ctx, req.Asset, opts...)
		if err != nil {
			return nil, err
		}
		appID = info.AppID
	}

	name := req.Name
	if name == "" {
		name = req.Action
	}
	params := req.Parameters
	if params == nil {
		params = []map[string]any{}
	}

	body := &actionRunBody{
		Action:      req.Action,
		ContainerID: containerID,
		Name:        name,
		Targets: []actionTarget{{
			Assets:     []string{req.Asset},
			Parameters: params,
			AppID:      appID,
		}},
	}

	result, err := a.s.request(ctx, http.MethodPost, "action_run", nil, body, opts...)
	if err != nil {
		return nil, err
	}

	if _, ok := a.s.record(ctx, &a.s.history.actionRuns, result, "action_run_id", "action_run"); !ok {
		return result, &PlatformError{Kind: KindAction, Message: "failed to run the action", Response: result}
	}
	a.s.history.actionNames = append(a.s.history.actionNames, req.Action)

	return result, nil
}

// Get fetches the current state of an action run.
func (a *actionService) Get(ctx context.Context, runID int, opts ...RequestOption) (Payload, error) {
	runID, err := a.resolve(runID)
	if err != nil {
		return nil, err
	}
	return a.s.request(ctx, http.MethodGet, fmt.Sprintf("action_run/%d", runID), nil, nil, opts...)
}

// Wait polls an action run until it finishes.
func (a *actionService) Wait(ctx context.Context, runID int, opts ...WaitOption) (*PollResult, error) {
	runID, err := a.resolve(runID)
	if err != nil {
		return nil, err
	}
	return a.s.wait(ctx, a.s.handle(fmt.Sprintf("action_run/%d", runID), nil, opts...))
}

// RunData polls the app runs of an action run.
func (a *actionService) RunData(ctx context.Context, runID int, opts ...WaitOption) (*PollResult, error) {
	runID, err := a.resolve(runID)
	if err != nil {
		return nil, err
	}
	q := &Query{Filters: []Filter{Eq("action_run", runID)}}
	return a.s.wait(ctx, a.s.handle("app_run", q, opts...))
}

// JiraTicket fetches the metadata of a JIRA ticket through the jira asset.
func (a *actionService) JiraTicket(ctx context.Context, ticket string, containerID int, opts ...WaitOption) (*PollResult, error) {
	if ticket == "" {
		return nil, validationError("ticket is required")
	}

	run, err := a.Run(ctx, &RunActionRequest{
		Action:      "get ticket",
		Asset:       "jira",
		Parameters:  []map[string]any{{"id": ticket}},
		ContainerID: containerID,
	})
	if err != nil {
		return nil, err
	}
	runID, _ := run.ID("action_run_id")

	status, err := a.Wait(ctx, runID, opts...)
	if err != nil || status.TimedOut() {
		return status, err
	}

	return a.RunData(ctx, runID, opts...)
}
