package phantom

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	defaultArtifactName        = "Test Artifact"
	defaultArtifactDescription = "Artifact created for testing purposes"
)

// ArtifactService provides operations on Phantom artifacts.
type ArtifactService interface {
	// Create adds an artifact to a container and records its id. It can be
	// called repeatedly to add several artifacts to the same container.
	Create(ctx context.Context, req *CreateArtifactRequest, opts ...RequestOption) (Payload, error)

	// Last returns the most recently created artifact on the server whose tags
	// contain tag.
	Last(ctx context.Context, tag string, opts ...RequestOption) (Payload, error)

	// ListPage returns a single page of artifacts.
	ListPage(ctx context.Context, q *Query, opts ...RequestOption) (*ListPage, error)
}

type artifactService struct {
	s *session
}

func newArtifactService(s *session) *artifactService {
	return &artifactService{s: s}
}

// Create adds an artifact to a container.
func (a *artifactService) Create(ctx context.Context, req *CreateArtifactRequest, opts ...RequestOption) (Payload, error) {
	body := CreateArtifactRequest{}
	if req != nil {
		body = *req
	}

	containerID, err := resolve(body.ContainerID, a.s.history.containers, "container")
	if err != nil {
		return nil, err
	}
	body.ContainerID = containerID
	applyArtifactDefaults(&body)

	result, err := a.s.request(ctx, http.MethodPost, "artifact", nil, &body, opts...)
	if err != nil {
		return nil, err
	}

	if _, ok := a.s.record(ctx, &a.s.history.artifacts, result, "id", "artifact"); !ok {
		return result, &PlatformError{Kind: KindArtifact, Message: "failed to create the artifact", Response: result}
	}
	a.s.history.artifactNames = append(a.s.history.artifactNames, body.Name)

	return result, nil
}

func applyArtifactDefaults(body *CreateArtifactRequest) {
	if body.Name == "" {
		body.Name = defaultArtifactName
	}
	if body.Description == "" {
		body.Description = defaultArtifactDescription
	}
	if body.Label == "" {
		body.Label = defaultLabel
	}
	if body.CEF == nil {
		body.CEF = map[string]any{}
	}
	if body.CEFTypes == nil {
		body.CEFTypes = map[string][]string{}
	}
	if body.Data == nil {
		body.Data = map[string]any{}
	}
	if body.RunAutomation == nil {
		body.RunAutomation = boolPtr(true)
	}
	if body.Severity == "" {
		body.Severity = SeverityLow
	}
	if body.SourceDataIdentifier == "" {
		body.SourceDataIdentifier = uuid.NewString()
	}
	if body.Tags == nil {
		body.Tags = []string{}
	}
}

// Last returns the newest artifact whose tags contain tag.
func (a *artifactService) Last(ctx context.Context, tag string, opts ...RequestOption) (Payload, error) {
	return a.s.request(ctx, http.MethodGet, "artifact", newestTagged(tag), nil, opts...)
}

// ListPage returns a single page of artifacts.
func (a *artifactService) ListPage(ctx context.Context, q *Query, opts ...RequestOption) (*ListPage, error) {
	return a.s.listPage(ctx, "artifact", q, opts...)
}
