package repository

import (
	"context"
	"sort"
	"sync"

	"pmp-reports/internal/domain"
)

// MemoryProjectsRepo in-process project directory for tests and local tools.
// Seed it with PutProject / PutContacts.
type MemoryProjectsRepo struct {
	mu       sync.RWMutex
	projects map[string]domain.Project          // projectID -> project
	contacts map[string][]domain.ProjectContact // projectID -> contacts
}

func NewMemoryProjectsRepo() *MemoryProjectsRepo {
	return &MemoryProjectsRepo{
		projects: map[string]domain.Project{},
		contacts: map[string][]domain.ProjectContact{},
	}
}

var _ ProjectsRepository = (*MemoryProjectsRepo)(nil)

func (r *MemoryProjectsRepo) PutProject(p domain.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ProjectID] = p
}

func (r *MemoryProjectsRepo) PutContacts(projectID string, contacts []domain.ProjectContact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[projectID] = append([]domain.ProjectContact(nil), contacts...)
}

func (r *MemoryProjectsRepo) GetProject(_ context.Context, projectID string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[projectID]
	if !ok {
		return nil, nil
	}
	p.Consultants = append([]domain.Consultant(nil), p.Consultants...)
	return &p, nil
}

func (r *MemoryProjectsRepo) ListContacts(_ context.Context, projectID string) ([]domain.ProjectContact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]domain.ProjectContact{}, r.contacts[projectID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
