// Package manager holds the reports manager state: the loaded report list,
// its per-project grouping, filtering, delete confirmation and share links.
// It has no rendering of its own; the terminal UI and CLI drive it.
package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/service"
)

// CopiedWindow how long a share link shows as copied
const CopiedWindow = 2 * time.Second

// Store the listing and delete operations the manager needs.
// service.ReportService and the HTTP client both satisfy it.
type Store interface {
	ListReports(ctx context.Context, req service.ListReportsRequest) (*service.ListReportsResponse, error)
	DeleteReport(ctx context.Context, reportID string) error
}

// Clipboard write-only text sink
type Clipboard interface {
	WriteText(text string) error
}

// Manager reports manager state container. Safe for concurrent use.
type Manager struct {
	store  Store
	clip   Clipboard
	origin string
	logger *zap.Logger
	now    func() time.Time

	mu            sync.Mutex
	reports       []*domain.StoredReport
	filter        string
	expanded      map[string]bool
	pendingDelete string
	copiedToken   string
	copiedAt      time.Time
}

func New(store Store, clip Clipboard, origin string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		clip:     clip,
		origin:   strings.TrimRight(strings.TrimSpace(origin), "/"),
		logger:   logger,
		now:      time.Now,
		expanded: map[string]bool{},
	}
}

// SetClock overrides the clock used for the copied acknowledgement
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Load replaces the list with every stored report
func (m *Manager) Load(ctx context.Context) error {
	resp, err := m.store.ListReports(ctx, service.ListReportsRequest{})
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append([]*domain.StoredReport(nil), resp.Items...)
	if m.pendingDelete != "" && m.indexLocked(m.pendingDelete) < 0 {
		m.pendingDelete = ""
	}
	return nil
}

// SetFilter free-text filter over project code and name
func (m *Manager) SetFilter(q string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = strings.TrimSpace(q)
}

func (m *Manager) Filter() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

func matches(r *domain.StoredReport, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(r.Project.ProjectCode), q) ||
		strings.Contains(strings.ToLower(r.Project.ProjectName), q)
}

// Reports flat list after filtering
func (m *Manager) Reports() []*domain.StoredReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleLocked()
}

func (m *Manager) visibleLocked() []*domain.StoredReport {
	out := make([]*domain.StoredReport, 0, len(m.reports))
	for _, r := range m.reports {
		if matches(r, m.filter) {
			out = append(out, r)
		}
	}
	return out
}

// Groups filtered reports grouped by project
func (m *Manager) Groups() []domain.ReportGroup {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.GroupByProject(m.visibleLocked())
}

// Toggle expands or collapses a project group; returns the new state
func (m *Manager) Toggle(projectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expanded[projectID] = !m.expanded[projectID]
	return m.expanded[projectID]
}

func (m *Manager) Expanded(projectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expanded[projectID]
}

func (m *Manager) indexLocked(reportID string) int {
	for i, r := range m.reports {
		if r.ReportID == reportID {
			return i
		}
	}
	return -1
}

// RequestDelete marks a report for deletion; nothing changes until ConfirmDelete
func (m *Manager) RequestDelete(reportID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexLocked(reportID) < 0 {
		return domain.ErrReportNotFound
	}
	m.pendingDelete = reportID
	return nil
}

// PendingDelete report awaiting confirmation, "" when none
func (m *Manager) PendingDelete() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingDelete
}

func (m *Manager) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingDelete = ""
}

// ConfirmDelete deletes the pending report in the store and, only once the
// store has confirmed, drops it from the list and its group.
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	id := m.pendingDelete
	m.pendingDelete = ""
	m.mu.Unlock()

	if id == "" {
		return fmt.Errorf("%w: no report pending deletion", domain.ErrInvalidRequest)
	}
	if err := m.store.DeleteReport(ctx, id); err != nil {
		m.logger.Warn("Report delete failed", zap.String("report_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete report: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(id); i >= 0 {
		m.reports = append(m.reports[:i:i], m.reports[i+1:]...)
	}
	return nil
}

// Share copies the report's public link to the clipboard
func (m *Manager) Share(reportID string) (string, error) {
	m.mu.Lock()
	i := m.indexLocked(reportID)
	if i < 0 {
		m.mu.Unlock()
		return "", domain.ErrReportNotFound
	}
	report := m.reports[i]
	m.mu.Unlock()

	if report.ShareToken == nil || *report.ShareToken == "" {
		return "", domain.ErrShareTokenMissing
	}
	link := domain.ShareURL(m.origin, *report.ShareToken)
	if m.clip != nil {
		if err := m.clip.WriteText(link); err != nil {
			return link, fmt.Errorf("failed to copy share link: %w", err)
		}
	}

	m.mu.Lock()
	m.copiedToken = *report.ShareToken
	m.copiedAt = m.now()
	m.mu.Unlock()
	return link, nil
}

// Copied whether the link for token was copied within the last CopiedWindow
func (m *Manager) Copied(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return token != "" && token == m.copiedToken && m.now().Sub(m.copiedAt) < CopiedWindow
}
