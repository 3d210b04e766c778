package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/repository"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ProjectDirectoryClient project directory read from the panel API.
// Used instead of the database directory when DB is disabled.
type ProjectDirectoryClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewProjectDirectoryClient shares the sub-resource client settings
func NewProjectDirectoryClient(opts SectionClientOptions, logger *zap.Logger) *ProjectDirectoryClient {
	return &ProjectDirectoryClient{httpClient: newUpstreamClient(opts), logger: logger}
}

var _ repository.ProjectsRepository = (*ProjectDirectoryClient)(nil)

// upstreamProject panel project payload; accepts the id and client spellings
// the panel uses besides the snapshot's own
type upstreamProject struct {
	domain.Project
	AltID      string `json:"projectId"`
	ClientName string `json:"clientName"`
}

// GetProject GET /projects/{projectId}; nil, nil when the panel has no such project
func (c *ProjectDirectoryClient) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	raw, err := getUpstream(ctx, c.httpClient, c.logger, "project", "/projects/{projectId}",
		map[string]string{"projectId": projectID})
	if err != nil || raw == nil {
		return nil, err
	}

	var up upstreamProject
	if err := json.Unmarshal(raw, &up); err != nil {
		return nil, &UpstreamError{Resource: "project", Message: fmt.Sprintf("unexpected project payload: %v", err)}
	}
	p := up.Project
	if p.ProjectID == "" {
		p.ProjectID = up.AltID
	}
	if p.ProjectID == "" {
		p.ProjectID = projectID
	}
	if p.Client == nil && up.ClientName != "" {
		p.Client = &domain.PartyRef{Name: up.ClientName}
	}
	return &p, nil
}

// ListContacts GET /projects/{projectId}/contacts, primary first
func (c *ProjectDirectoryClient) ListContacts(ctx context.Context, projectID string) ([]domain.ProjectContact, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	raw, err := getUpstream(ctx, c.httpClient, c.logger, "contacts", "/projects/{projectId}/contacts",
		map[string]string{"projectId": projectID})
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProjectContact, 0)
	if raw == nil {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &UpstreamError{Resource: "contacts", Message: fmt.Sprintf("unexpected contacts payload: %v", err)}
	}
	for i := range out {
		if out[i].ProjectID == "" {
			out[i].ProjectID = projectID
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsPrimary && !out[j].IsPrimary
	})
	return out, nil
}
