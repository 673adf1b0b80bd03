package phantom

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Payload is a JSON object returned by the Phantom REST API, passed through
// unmodified.
type Payload map[string]any

// ID returns the integer stored under key, if there is one.
func (p Payload) ID(key string) (int, bool) {
	if p == nil {
		return 0, false
	}
	return toInt(p[key])
}

// String returns the string stored under key.
func (p Payload) String(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	s, ok := p[key].(string)
	return s, ok
}

// Decode maps the payload onto out, matching fields by their json tags.
func (p Payload) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(p))
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// truthy follows JSON truthiness: false, 0, "", null and empty collections are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// Severity is the severity of a container or artifact.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Sensitivity is the TLP marking of a container.
type Sensitivity string

const (
	SensitivityWhite Sensitivity = "white"
	SensitivityGreen Sensitivity = "green"
	SensitivityAmber Sensitivity = "amber"
	SensitivityRed   Sensitivity = "red"
)

// ContainerStatus is the workflow status of a container.
type ContainerStatus string

const (
	ContainerNew      ContainerStatus = "new"
	ContainerOpen     ContainerStatus = "open"
	ContainerClosed   ContainerStatus = "closed"
	ContainerResolved ContainerStatus = "resolved"
)

// CreateContainerRequest contains data for creating a new container.
// Zero values are replaced by the defaults documented on each field.
type CreateContainerRequest struct {
	// Name defaults to "TEST - Default Name".
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Label        string         `json:"label"`
	Artifacts    []Payload      `json:"artifacts"`
	CustomFields map[string]any `json:"custom_fields"`
	Data         map[string]any `json:"data"`
	// RunAutomation is a pointer so that an explicit false survives defaulting.
	RunAutomation *bool       `json:"run_automation"`
	Sensitivity   Sensitivity `json:"sensitivity"`
	Severity      Severity    `json:"severity"`
	// SourceDataIdentifier defaults to a random UUID; Phantom rejects duplicates.
	SourceDataIdentifier string          `json:"source_data_identifier"`
	Status               ContainerStatus `json:"status"`
	Tags                 []string        `json:"tags"`
}

// CreateArtifactRequest contains data for adding an artifact to a container.
type CreateArtifactRequest struct {
	// ContainerID defaults to the most recently created container.
	ContainerID          int                 `json:"container_id"`
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Label                string              `json:"label"`
	CEF                  map[string]any      `json:"cef"`
	CEFTypes             map[string][]string `json:"cef_types"`
	Data                 map[string]any      `json:"data"`
	RunAutomation        *bool               `json:"run_automation"`
	Severity             Severity            `json:"severity"`
	SourceDataIdentifier string              `json:"source_data_identifier"`
	Tags                 []string            `json:"tags"`
}

// PlaybookScope selects which artifacts a playbook run operates on.
type PlaybookScope string

const (
	ScopeNew PlaybookScope = "new"
	ScopeAll PlaybookScope = "all"
)

// RunPlaybookRequest contains data for running a playbook against a container.
type RunPlaybookRequest struct {
	// Playbook is the "repo/name" of the playbook, or its numeric id as a string.
	Playbook string `json:"playbook_id"`
	// ContainerID defaults to the most recently created container.
	ContainerID int           `json:"container_id"`
	Scope       PlaybookScope `json:"scope"`
	// Run must be true for Phantom to start the playbook; defaults to true.
	Run *bool `json:"run"`
}

// RunActionRequest contains data for running a single app action.
type RunActionRequest struct {
	// Action is the action name, e.g. "get ticket".
	Action string
	// Asset is the configured asset name, e.g. "jira".
	Asset string
	// Parameters are passed to the action, one map per invocation.
	Parameters []map[string]any
	// ContainerID defaults to the most recently created container.
	ContainerID int
	// AppID skips the asset lookup when set.
	AppID int
	// Name labels the action run; defaults to Action.
	Name string
}

type actionTarget struct {
	Assets     []string         `json:"assets"`
	Parameters []map[string]any `json:"parameters"`
	AppID      int              `json:"app_id"`
}

type actionRunBody struct {
	Action      string         `json:"action"`
	ContainerID int            `json:"container_id"`
	Name        string         `json:"name"`
	Targets     []actionTarget `json:"targets"`
}

// ListPage is one page of a Phantom list endpoint.
type ListPage struct {
	Count    int       `json:"count"`
	NumPages int       `json:"num_pages"`
	Data     []Payload `json:"data"`
	// Page is the zero-based page this result was requested for.
	Page int `json:"-"`
}

// HasMore returns true if there are more pages available.
func (p *ListPage) HasMore() bool {
	return p.Page+1 < p.NumPages
}

func boolPtr(b bool) *bool {
	return &b
}
