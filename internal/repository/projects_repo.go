package repository

import (
	"context"

	"pmp-reports/internal/domain"
)

// ProjectsRepository read-only view of the project directory
type ProjectsRepository interface {
	// GetProject returns nil, nil when the project does not exist
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)

	// ListContacts contacts currently associated with the project, primary first
	ListContacts(ctx context.Context, projectID string) ([]domain.ProjectContact, error)
}
