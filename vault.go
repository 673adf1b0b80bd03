package phantom

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
)

// VaultService uploads files into a container's vault.
type VaultService interface {
	// UploadFile reads the file at path and attaches it to a container. Local
	// read failures are returned before any request is made.
	UploadFile(ctx context.Context, path string, containerID int, opts ...RequestOption) (Payload, error)

	// Upload attaches data under the given file name.
	Upload(ctx context.Context, name string, data []byte, containerID int, opts ...RequestOption) (Payload, error)
}

type attachmentBody struct {
	ContainerID int            `json:"container_id"`
	FileContent string         `json:"file_content"`
	FileName    string         `json:"file_name"`
	Metadata    map[string]any `json:"metadata"`
}

type vaultService struct {
	s *session
}

func newVaultService(s *session) *vaultService {
	return &vaultService{s: s}
}

// UploadFile reads and uploads a local file.
func (v *vaultService) UploadFile(ctx context.Context, path string, containerID int, opts ...RequestOption) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("phantom: reading %s: %w", path, err)
	}
	return v.Upload(ctx, filepath.Base(path), data, containerID, opts...)
}

// Upload attaches data to a container.
func (v *vaultService) Upload(ctx context.Context, name string, data []byte, containerID int, opts ...RequestOption) (Payload, error) {
	if name == "" {
		return nil, validationError("file name is required")
	}
	if len(data) == 0 {
		return nil, validationError(fmt.Sprintf("file %s is empty", name))
	}

	containerID, err := resolve(containerID, v.s.history.containers, "container")
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{"contains": []string{"vault id"}}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		metadata["content_type"] = kind.MIME.Value
	}

	body := &attachmentBody{
		ContainerID: containerID,
		FileContent: base64.StdEncoding.EncodeToString(data),
		FileName:    name,
		Metadata:    metadata,
	}

	result, err := v.s.request(ctx, http.MethodPost, "container_attachment", nil, body, opts...)
	if err != nil {
		return nil, err
	}

	if _, ok := v.s.record(ctx, &v.s.history.files, result, "id", "container_attachment"); !ok {
		return result, &PlatformError{Kind: KindContainer, Message: "failed to upload the file", Response: result}
	}
	v.s.history.fileNames = append(v.s.history.fileNames, name)

	return result, nil
}
