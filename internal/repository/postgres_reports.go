package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pmp-reports/internal/domain"

	"github.com/lib/pq"
)

const maxCreateAttempts = 3

// PostgresReportsRepository Report Store backed by project_reports
type PostgresReportsRepository struct {
	db       *sql.DB
	newToken func() (string, error)
}

// NewPostgresReportsRepository creates the Postgres report store
func NewPostgresReportsRepository(db *sql.DB) *PostgresReportsRepository {
	return &PostgresReportsRepository{db: db, newToken: NewShareToken}
}

var _ ReportsRepository = (*PostgresReportsRepository)(nil)

// reportColumns shared SELECT list; %s is replaced by the report_data expression
const reportColumns = `
	SELECT
		r.report_id::text,
		r.project_id::text,
		COALESCE(r.user_id, '') AS user_id,
		r.report_month,
		r.report_year,
		r.version,
		%s AS report_data,
		r.share_token,
		r.created_at,
		r.updated_at,
		p.project_code,
		p.project_name,
		COALESCE(u.name, '') AS user_name,
		COALESCE(u.email, '') AS user_email,
		NOT EXISTS (
			SELECT 1 FROM project_reports n
			WHERE n.project_id = r.project_id
			  AND n.report_month = r.report_month
			  AND n.report_year = r.report_year
			  AND n.version > r.version
		) AS latest
	FROM project_reports r
	JOIN projects p ON p.project_id = r.project_id
	LEFT JOIN users u ON u.user_id::text = r.user_id
`

func selectReports(includeData bool) string {
	if includeData {
		return fmt.Sprintf(reportColumns, "r.report_data")
	}
	return fmt.Sprintf(reportColumns, "NULL::json")
}

// CreateReport inserts the next version for the period.
// The version is computed in the same statement; a concurrent insert of the same
// version (or a token collision) hits a unique index and is retried.
func (r *PostgresReportsRepository) CreateReport(ctx context.Context, report *domain.StoredReport) error {
	if report == nil || report.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if domain.IsNullJSON(report.ReportData) {
		return fmt.Errorf("report_data is required")
	}

	query := `
		INSERT INTO project_reports (
			project_id,
			user_id,
			report_month,
			report_year,
			version,
			report_data,
			share_token
		)
		SELECT
			$1::uuid,
			NULLIF($2, ''),
			$3,
			$4,
			COALESCE(MAX(version), 0) + 1,
			$5::json,
			$6
		FROM project_reports
		WHERE project_id = $1::uuid
		  AND report_month = $3
		  AND report_year = $4
		RETURNING report_id::text, version, created_at, updated_at
	`

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		token, err := r.newToken()
		if err != nil {
			return err
		}

		var (
			reportID  string
			version   int
			createdAt time.Time
			updatedAt time.Time
		)
		err = r.db.QueryRowContext(ctx, query,
			report.ProjectID,
			report.UserID,
			report.ReportMonth,
			report.ReportYear,
			[]byte(report.ReportData),
			token,
		).Scan(&reportID, &version, &createdAt, &updatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("failed to insert project report: %w", err)
		}

		report.ReportID = reportID
		report.Version = version
		report.ShareToken = &token
		report.CreatedAt = createdAt
		report.UpdatedAt = updatedAt
		report.Latest = true
		return nil
	}

	return fmt.Errorf("%w: %v", domain.ErrConflict, lastErr)
}

// GetReport loads one report with its data
func (r *PostgresReportsRepository) GetReport(ctx context.Context, reportID string) (*domain.StoredReport, error) {
	if reportID == "" {
		return nil, fmt.Errorf("report_id is required")
	}
	row := r.db.QueryRowContext(ctx, selectReports(true)+` WHERE r.report_id = $1::uuid`, reportID)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project report: %w", err)
	}
	return report, nil
}

// GetReportByShareToken loads one report by its public token
func (r *PostgresReportsRepository) GetReportByShareToken(ctx context.Context, token string) (*domain.StoredReport, error) {
	if token == "" {
		return nil, fmt.Errorf("share_token is required")
	}
	row := r.db.QueryRowContext(ctx, selectReports(true)+` WHERE r.share_token = $1`, token)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project report by share token: %w", err)
	}
	return report, nil
}

// ListReports lists reports with project/user identity
func (r *PostgresReportsRepository) ListReports(ctx context.Context, filter ReportFilter) ([]*domain.StoredReport, error) {
	query := selectReports(filter.IncludeData) + `
		WHERE ($1 = '' OR r.project_id::text = $1)
		  AND ($2 = '' OR p.project_code ILIKE '%' || $2 || '%' OR p.project_name ILIKE '%' || $2 || '%')
		ORDER BY p.project_code ASC, r.report_year DESC, r.report_month DESC, r.version DESC
	`

	rows, err := r.db.QueryContext(ctx, query, filter.ProjectID, strings.TrimSpace(filter.Query))
	if err != nil {
		return nil, fmt.Errorf("failed to list project reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.StoredReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project reports: %w", err)
	}
	return reports, nil
}

// DeleteReport removes one report
func (r *PostgresReportsRepository) DeleteReport(ctx context.Context, reportID string) error {
	if reportID == "" {
		return fmt.Errorf("report_id is required")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_reports WHERE report_id = $1::uuid`, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete project report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project report: %w", err)
	}
	if n == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.StoredReport, error) {
	var (
		report     domain.StoredReport
		data       []byte
		shareToken sql.NullString
		userName   string
		userEmail  string
	)
	err := row.Scan(
		&report.ReportID,
		&report.ProjectID,
		&report.UserID,
		&report.ReportMonth,
		&report.ReportYear,
		&report.Version,
		&data,
		&shareToken,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.Project.ProjectCode,
		&report.Project.ProjectName,
		&userName,
		&userEmail,
		&report.Latest,
	)
	if err != nil {
		return nil, err
	}

	report.Project.ID = report.ProjectID
	if len(data) > 0 {
		report.ReportData = data
	}
	if shareToken.Valid && shareToken.String != "" {
		token := shareToken.String
		report.ShareToken = &token
	}
	if report.UserID != "" {
		report.User = &domain.UserRef{ID: report.UserID, Name: userName, Email: userEmail}
	}
	return &report, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
