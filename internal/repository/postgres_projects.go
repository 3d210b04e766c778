package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pmp-reports/internal/domain"
)

// PostgresProjectsRepository read-only project directory over projects/clients/staff
type PostgresProjectsRepository struct {
	db *sql.DB
}

func NewPostgresProjectsRepository(db *sql.DB) *PostgresProjectsRepository {
	return &PostgresProjectsRepository{db: db}
}

var _ ProjectsRepository = (*PostgresProjectsRepository)(nil)

func (r *PostgresProjectsRepository) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}

	query := `
		SELECT
			p.project_id::text,
			p.project_code,
			p.project_name,
			COALESCE(p.description, ''),
			COALESCE(c.client_id::text, ''),
			COALESCE(c.name, ''),
			COALESCE(d.staff_id::text, ''),
			COALESCE(d.name, ''),
			COALESCE(d.email, ''),
			COALESCE(m.staff_id::text, ''),
			COALESCE(m.name, ''),
			COALESCE(m.email, ''),
			COALESCE(to_char(p.start_date, 'YYYY-MM-DD'), ''),
			COALESCE(to_char(p.end_date, 'YYYY-MM-DD'), ''),
			COALESCE(p.duration, ''),
			p.project_value,
			COALESCE(p.status, '')
		FROM projects p
		LEFT JOIN clients c ON c.client_id = p.client_id
		LEFT JOIN staff d ON d.staff_id = p.project_director_id
		LEFT JOIN staff m ON m.staff_id = p.project_manager_id
		WHERE p.project_id = $1::uuid
	`

	var (
		p                                   domain.Project
		clientID, clientName                string
		directorID, directorName, directorE string
		managerID, managerName, managerE    string
		value                               sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&p.ProjectID,
		&p.ProjectCode,
		&p.ProjectName,
		&p.Description,
		&clientID,
		&clientName,
		&directorID,
		&directorName,
		&directorE,
		&managerID,
		&managerName,
		&managerE,
		&p.StartDate,
		&p.EndDate,
		&p.Duration,
		&value,
		&p.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if clientID != "" {
		p.Client = &domain.PartyRef{ID: clientID, Name: clientName}
	}
	if directorID != "" {
		p.ProjectDirector = &domain.PersonRef{ID: directorID, Name: directorName, Email: directorE}
	}
	if managerID != "" {
		p.ProjectManager = &domain.PersonRef{ID: managerID, Name: managerName, Email: managerE}
	}
	if value.Valid {
		v := value.Float64
		p.ProjectValue = &v
	}

	consultants, err := r.listConsultants(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p.Consultants = consultants
	return &p, nil
}

func (r *PostgresProjectsRepository) listConsultants(ctx context.Context, projectID string) ([]domain.Consultant, error) {
	query := `
		SELECT
			c.consultant_id::text,
			pc.consultant_type,
			c.name
		FROM project_consultants pc
		JOIN consultants c ON c.consultant_id = pc.consultant_id
		WHERE pc.project_id = $1::uuid
		ORDER BY pc.consultant_type ASC, c.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project consultants: %w", err)
	}
	defer rows.Close()

	var out []domain.Consultant
	for rows.Next() {
		var c domain.Consultant
		if err := rows.Scan(&c.ID, &c.Type, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan project consultant: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresProjectsRepository) ListContacts(ctx context.Context, projectID string) ([]domain.ProjectContact, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}

	query := `
		SELECT
			pc.id::text,
			pc.project_id::text,
			c.contact_id::text,
			c.name,
			COALESCE(c.position, ''),
			COALESCE(c.email, ''),
			COALESCE(c.phone, ''),
			COALESCE(c.organization, ''),
			COALESCE(pc.role, ''),
			pc.is_primary
		FROM project_contacts pc
		JOIN contacts c ON c.contact_id = pc.contact_id
		WHERE pc.project_id = $1::uuid
		ORDER BY pc.is_primary DESC, c.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project contacts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProjectContact, 0)
	for rows.Next() {
		var c domain.ProjectContact
		if err := rows.Scan(
			&c.ID,
			&c.ProjectID,
			&c.ContactID,
			&c.Name,
			&c.Position,
			&c.Email,
			&c.Phone,
			&c.Organization,
			&c.Role,
			&c.IsPrimary,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project contacts: %w", err)
	}
	return out, nil
}
