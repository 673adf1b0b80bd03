package phantom

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/google/uuid"
)

const (
	defaultContainerName        = "TEST - Default Name"
	defaultContainerDescription = "This originated from a test case"
	defaultLabel                = "events"
)

// ContainerService provides operations on Phantom containers and cases.
// An id of 0 means the most recently created container.
type ContainerService interface {
	// Create creates a new container and records its id.
	Create(ctx context.Context, req *CreateContainerRequest, opts ...RequestOption) (Payload, error)

	// Get retrieves a single container.
	Get(ctx context.Context, id int, opts ...RequestOption) (Payload, error)

	// ListPage returns a single page of containers.
	ListPage(ctx context.Context, q *Query, opts ...RequestOption) (*ListPage, error)

	// List returns an iterator over all containers matching q.
	List(ctx context.Context, q *Query, opts ...RequestOption) iter.Seq2[Payload, error]

	// UpdateStatus moves a container to a new workflow status.
	UpdateStatus(ctx context.Context, id int, status ContainerStatus, opts ...RequestOption) (Payload, error)

	// UpdateTags replaces the tags of a container.
	UpdateTags(ctx context.Context, id int, tags []string, opts ...RequestOption) (Payload, error)

	// Last returns the most recently created container on the server whose
	// tags contain tag. An empty tag matches every container.
	Last(ctx context.Context, tag string, opts ...RequestOption) (Payload, error)

	// Artifacts lists the artifacts in a container.
	Artifacts(ctx context.Context, id int, opts ...RequestOption) (*ListPage, error)

	// PromoteToCase turns a container into a case based on a named workflow template.
	PromoteToCase(ctx context.Context, id int, templateName string, opts ...RequestOption) (Payload, error)

	// DemoteToContainer turns a case back into a plain container.
	DemoteToContainer(ctx context.Context, id int, opts ...RequestOption) (Payload, error)

	// Delete removes a container. Phantom requires WithBasicAuth for this call.
	Delete(ctx context.Context, id int, opts ...RequestOption) (Payload, error)

	// PendingAfterFailure lists containers that never got a playbook run,
	// typically because the platform failed before they were picked up.
	// Empty dates disable the create_time range filter.
	PendingAfterFailure(ctx context.Context, start, end string, opts ...RequestOption) (*ListPage, error)
}

// containerService implements ContainerService.
type containerService struct {
	s *session
}

func newContainerService(s *session) *containerService {
	return &containerService{s: s}
}

func (c *containerService) resolve(id int) (int, error) {
	return resolve(id, c.s.history.containers, "container")
}

// Create creates a new container.
func (c *containerService) Create(ctx context.Context, req *CreateContainerRequest, opts ...RequestOption) (Payload, error) {
	body := containerDefaults(req)

	result, err := c.s.request(ctx, http.MethodPost, "container", nil, body, opts...)
	if err != nil {
		return nil, err
	}

	if _, ok := c.s.record(ctx, &c.s.history.containers, result, "id", "container"); !ok {
		return result, &PlatformError{Kind: KindContainer, Message: "failed to create the container", Response: result}
	}

	return result, nil
}

func containerDefaults(req *CreateContainerRequest) *CreateContainerRequest {
	body := CreateContainerRequest{}
	if req != nil {
		body = *req
	}
	if body.Name == "" {
		body.Name = defaultContainerName
	}
	if body.Description == "" {
		body.Description = defaultContainerDescription
	}
	if body.Label == "" {
		body.Label = defaultLabel
	}
	if body.Artifacts == nil {
		body.Artifacts = []Payload{}
	}
	if body.CustomFields == nil {
		body.CustomFields = map[string]any{}
	}
	if body.Data == nil {
		body.Data = map[string]any{}
	}
	if body.RunAutomation == nil {
		body.RunAutomation = boolPtr(true)
	}
	if body.Sensitivity == "" {
		body.Sensitivity = SensitivityWhite
	}
	if body.Severity == "" {
		body.Severity = SeverityLow
	}
	if body.SourceDataIdentifier == "" {
		body.SourceDataIdentifier = uuid.NewString()
	}
	if body.Status == "" {
		body.Status = ContainerNew
	}
	if body.Tags == nil {
		body.Tags = []string{}
	}
	return &body
}

// Get retrieves a single container.
func (c *containerService) Get(ctx context.Context, id int, opts ...RequestOption) (Payload, error) {
	id, err := c.resolve(id)
	if err != nil {
		return nil, err
	}
	return c.s.request(ctx, http.MethodGet, fmt.Sprintf("container/%d", id), nil, nil, opts...)
}

// ListPage returns a single page of containers.
func (c *containerService) ListPage(ctx context.Context, q *Query, opts ...RequestOption) (*ListPage, error) {
	return c.s.listPage(ctx, "container", q, opts...)
}

// List returns an iterator over all containers matching q.
func (c *containerService) List(ctx context.Context, q *Query, opts ...RequestOption) iter.Seq2[Payload, error] {
	return paginate(ctx, c.s, "container", q, opts...)
}

// UpdateStatus moves a container to a new workflow status.
func (c *containerService) UpdateStatus(ctx context.Context, id int, status ContainerStatus, opts ...RequestOption) (Payload, error) {
	id, err := c.resolve(id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = ContainerResolved
	}

	body := map[string]any{
		"container_id": id,
		"status":       status,
	}
	return c.s.request(ctx, http.MethodPost, fmt.Sprintf("container/%d", id), nil, body, opts...)
}

// UpdateTags replaces the tags of a container.
func (c *containerService) UpdateTags(ctx context.Context, id int, tags []string, opts ...RequestOption) (Payload, error) {
	id, err := c.resolve(id)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}

	body := map[string]any{
		"container_id": id,
		"tags":         tags,
	}
	return c.s.request(ctx, http.MethodPost, fmt.Sprintf("container/%d", id), nil, body, opts...)
}

// Last returns the newest container whose tags contain tag.
func (c *containerService) Last(ctx context.Context, tag string, opts ...RequestOption) (Payload, error) {
	return c.s.request(ctx, http.MethodGet, "container", newestTagged(tag), nil, opts...)
}

// Artifacts lists the artifacts in a container.
func (c *containerService) Artifacts(ctx context.Context, id int, opts ...RequestOption) (*ListPage, error) {
	id, err := c.resolve(id)
	if err != nil {
		return nil, err
	}
	return c.s.listPage(ctx, "artifact", &Query{Filters: []Filter{Eq("container", id)}}, opts...)
}

// PromoteToCase looks the template up by name, then converts the container.
func (c *containerService) PromoteToCase(ctx context.Context, id int, templateName string, opts ...RequestOption) (Payload, error) {
	if templateName == "" {
		return nil, validationError("template name is required")
	}
	id, err := c.resolve(id)
	if err != nil {
		return nil, err
	}

	template, err := c.s.first(ctx, "workflow_template", &Query{Filters: []Filter{Eq("name", templateName)}}, "workflow_template", templateName)
	if err != nil {
		return nil, err
	}
	templateID, ok := template.ID("id")
	if !ok {
		return nil, &PlatformError{Kind: KindContainer, Message: "workflow template has no id", Response: template}
	}

	body := map[string]any{
		"container_type": "case",
		"template_id":    templateID,
	}
	result, err := c.s.request(ctx, http.MethodPost, fmt.Sprintf("container/%d", id), nil, body, opts...)
	if err != nil {
		return nil, err
	}

	if _, ok := c.s.record(ctx, &c.s.history.cases, result, "id", "case"); !ok {
		return result, &PlatformError{Kind: KindContainer, Message: "failed to promote the container to a case", Response: result}
	}
	return result, nil
}

// DemoteToContainer turns a case back into a plain container.
func (c *containerService) DemoteToContainer(ctx context.Context, id int, opts ...RequestOption) (Payload, error) {
	id, err := c.resolve(id)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"container_type": "default"}
	return c.s.request(ctx, http.MethodPost, fmt.Sprintf("container/%d", id), nil, body, opts...)
}

// Delete removes a container.
func (c *containerService) Delete(ctx context.Context, id int, opts ...RequestOption) (Payload, error) {
	id, err := c.resolve(id)
	if err != nil {
		return nil, err
	}
	return c.s.request(ctx, http.MethodDelete, fmt.Sprintf("container/%d", id), nil, nil, opts...)
}

// PendingAfterFailure lists containers with no playbook run.
func (c *containerService) PendingAfterFailure(ctx context.Context, start, end string, opts ...RequestOption) (*ListPage, error) {
	q := &Query{
		Sort:    "id",
		Order:   "desc",
		Filters: []Filter{Eq("playbookrun__container__isnull", true)},
	}
	if f, ok := createTimeRange(start, end); ok {
		q.Filters = append(q.Filters, f)
	}
	return c.s.listPage(ctx, "container", q, opts...)
}

// newestTagged selects the single newest resource whose tags contain tag.
func newestTagged(tag string) *Query {
	return &Query{
		PageSize: 1,
		Sort:     "id",
		Order:    "desc",
		Filters:  []Filter{Eq("tags__icontains", tag)},
	}
}

func createTimeRange(start, end string) (Filter, bool) {
	if start == "" || end == "" {
		return "", false
	}
	return Raw("create_time__range", fmt.Sprintf("(%q,%q)", start, end)), true
}
