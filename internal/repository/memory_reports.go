package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pmp-reports/internal/domain"

	"github.com/google/uuid"
)

// MemoryReportsRepo Report Store used when DB is disabled (dev, tests).
// Project identity for listings is resolved through the projects repository.
type MemoryReportsRepo struct {
	mu       sync.RWMutex
	reports  map[string]domain.StoredReport // reportID -> report
	projects ProjectsRepository
	now      func() time.Time
	newToken func() (string, error)
}

func NewMemoryReportsRepo(projects ProjectsRepository) *MemoryReportsRepo {
	return &MemoryReportsRepo{
		reports:  map[string]domain.StoredReport{},
		projects: projects,
		now:      time.Now,
		newToken: NewShareToken,
	}
}

var _ ReportsRepository = (*MemoryReportsRepo)(nil)

func (r *MemoryReportsRepo) CreateReport(ctx context.Context, report *domain.StoredReport) error {
	if report == nil || report.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if domain.IsNullJSON(report.ReportData) {
		return fmt.Errorf("report_data is required")
	}

	ref := domain.ProjectRef{ID: report.ProjectID}
	if r.projects != nil {
		p, err := r.projects.GetProject(ctx, report.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to resolve project: %w", err)
		}
		if p == nil {
			return domain.ErrProjectNotFound
		}
		ref.ProjectCode = p.ProjectCode
		ref.ProjectName = p.ProjectName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var token string
	for attempt := 0; ; attempt++ {
		if attempt == maxCreateAttempts {
			return fmt.Errorf("%w: share token collision", domain.ErrConflict)
		}
		t, err := r.newToken()
		if err != nil {
			return err
		}
		if !r.tokenInUseLocked(t) {
			token = t
			break
		}
	}

	version := 1
	for _, existing := range r.reports {
		if existing.ProjectID == report.ProjectID &&
			existing.ReportMonth == report.ReportMonth &&
			existing.ReportYear == report.ReportYear &&
			existing.Version >= version {
			version = existing.Version + 1
		}
	}

	now := r.now().UTC()
	stored := *report
	stored.ReportID = uuid.NewString()
	stored.Version = version
	stored.ShareToken = &token
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Project = ref
	stored.ReportData = append([]byte(nil), report.ReportData...)
	r.reports[stored.ReportID] = stored

	report.ReportID = stored.ReportID
	report.Version = version
	report.ShareToken = &token
	report.CreatedAt = now
	report.UpdatedAt = now
	report.Project = ref
	report.Latest = true
	return nil
}

func (r *MemoryReportsRepo) tokenInUseLocked(token string) bool {
	for _, existing := range r.reports {
		if existing.ShareToken != nil && *existing.ShareToken == token {
			return true
		}
	}
	return false
}

func (r *MemoryReportsRepo) GetReport(_ context.Context, reportID string) (*domain.StoredReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.reports[reportID]
	if !ok {
		return nil, nil
	}
	return r.viewLocked(stored, true), nil
}

func (r *MemoryReportsRepo) GetReportByShareToken(_ context.Context, token string) (*domain.StoredReport, error) {
	if token == "" {
		return nil, fmt.Errorf("share_token is required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.reports {
		if stored.ShareToken != nil && *stored.ShareToken == token {
			return r.viewLocked(stored, true), nil
		}
	}
	return nil, nil
}

func (r *MemoryReportsRepo) ListReports(_ context.Context, filter ReportFilter) ([]*domain.StoredReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]*domain.StoredReport, 0, len(r.reports))
	for _, stored := range r.reports {
		if filter.ProjectID != "" && stored.ProjectID != filter.ProjectID {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(stored.Project.ProjectCode), q) &&
			!strings.Contains(strings.ToLower(stored.Project.ProjectName), q) {
			continue
		}
		out = append(out, r.viewLocked(stored, filter.IncludeData))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Project.ProjectCode != b.Project.ProjectCode {
			return a.Project.ProjectCode < b.Project.ProjectCode
		}
		if a.ReportYear != b.ReportYear {
			return a.ReportYear > b.ReportYear
		}
		if a.ReportMonth != b.ReportMonth {
			return a.ReportMonth > b.ReportMonth
		}
		return a.Version > b.Version
	})
	return out, nil
}

func (r *MemoryReportsRepo) DeleteReport(_ context.Context, reportID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[reportID]; !ok {
		return domain.ErrReportNotFound
	}
	delete(r.reports, reportID)
	return nil
}

// viewLocked copy of stored with the latest flag computed
func (r *MemoryReportsRepo) viewLocked(stored domain.StoredReport, includeData bool) *domain.StoredReport {
	out := stored
	if includeData {
		out.ReportData = append([]byte(nil), stored.ReportData...)
	} else {
		out.ReportData = nil
	}
	if stored.ShareToken != nil {
		token := *stored.ShareToken
		out.ShareToken = &token
	}
	out.Latest = true
	for _, other := range r.reports {
		if other.ProjectID == stored.ProjectID &&
			other.ReportMonth == stored.ReportMonth &&
			other.ReportYear == stored.ReportYear &&
			other.Version > stored.Version {
			out.Latest = false
			break
		}
	}
	return &out
}
