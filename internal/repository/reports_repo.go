package repository

import (
	"context"

	"pmp-reports/internal/domain"
)

// ReportFilter listing filter; empty fields match everything
type ReportFilter struct {
	ProjectID string
	// Query free text matched against project code and name (case-insensitive)
	Query string
	// IncludeData loads report_data too; listings normally leave it out
	IncludeData bool
}

// ReportsRepository Report Store.
// Reports are immutable once created: there is deliberately no update method.
type ReportsRepository interface {
	// CreateReport inserts a new version for (project, month, year) and issues its share token.
	// It fills ReportID, Version, ShareToken, CreatedAt and UpdatedAt on report.
	CreateReport(ctx context.Context, report *domain.StoredReport) error

	// GetReport returns nil, nil when the report does not exist
	GetReport(ctx context.Context, reportID string) (*domain.StoredReport, error)

	// GetReportByShareToken returns nil, nil when no report carries the token
	GetReportByShareToken(ctx context.Context, token string) (*domain.StoredReport, error)

	// ListReports newest period first within each project, project code ascending
	ListReports(ctx context.Context, filter ReportFilter) ([]*domain.StoredReport, error)

	// DeleteReport returns domain.ErrReportNotFound when nothing was deleted
	DeleteReport(ctx context.Context, reportID string) error
}
