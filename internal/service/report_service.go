package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/repository"
	"pmp-reports/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ReportService project report generation, store access and sharing
type ReportService interface {
	// GenerateReport builds a snapshot for the period and stores it as a new version
	GenerateReport(ctx context.Context, req GenerateReportRequest) (*GenerateReportResponse, error)

	// GetReport returns domain.ErrReportNotFound when missing
	GetReport(ctx context.Context, reportID string) (*domain.StoredReport, error)

	// ListReports flat list plus per-project groups
	ListReports(ctx context.Context, req ListReportsRequest) (*ListReportsResponse, error)

	// DeleteReport removes the report and drops its cached share entry
	DeleteReport(ctx context.Context, reportID string) error

	// GetSharedReport public read by share token
	GetSharedReport(ctx context.Context, token string) (*domain.StoredReport, error)

	// ShareLink {origin}/share/report/{token}; domain.ErrShareTokenMissing when the report has none
	ShareLink(ctx context.Context, reportID, origin string) (string, error)
}

// ============================================
// Request/Response DTOs
// ============================================

// GenerateReportRequest generation input
type GenerateReportRequest struct {
	ProjectID   string `json:"projectId" validate:"required"`
	ReportMonth int    `json:"reportMonth" validate:"min=1,max=12"`
	ReportYear  int    `json:"reportYear" validate:"min=2000,max=2100"`
	UserID      string `json:"userId" validate:"max=128"`
}

// GenerateReportResponse stored report plus what happened to each section
type GenerateReportResponse struct {
	Report   *domain.StoredReport    `json:"report"`
	Sections []domain.SectionOutcome `json:"sections"`
}

// ListReportsRequest listing filter
type ListReportsRequest struct {
	ProjectID string
	Query     string
}

// ListReportsResponse flat list and grouping by project
type ListReportsResponse struct {
	Items  []*domain.StoredReport `json:"items"`
	Groups []domain.ReportGroup   `json:"groups"`
	Total  int                    `json:"total"`
}

// reportService 实现
type reportService struct {
	reportsRepo  repository.ReportsRepository
	projectsRepo repository.ProjectsRepository
	builder      *SnapshotBuilder
	shareCache   *store.ShareCache
	events       EventPublisher
	shareOrigin  string
	validate     *validator.Validate
	locks        *keyedMutex
	logger       *zap.Logger
}

// ReportServiceOptions optional collaborators; nil values disable the feature
type ReportServiceOptions struct {
	ShareCache  *store.ShareCache
	Events      EventPublisher
	ShareOrigin string
}

// NewReportService creates the ReportService
func NewReportService(
	reportsRepo repository.ReportsRepository,
	projectsRepo repository.ProjectsRepository,
	builder *SnapshotBuilder,
	opts ReportServiceOptions,
	logger *zap.Logger,
) ReportService {
	events := opts.Events
	if events == nil {
		events = nopPublisher{}
	}
	return &reportService{
		reportsRepo:  reportsRepo,
		projectsRepo: projectsRepo,
		builder:      builder,
		shareCache:   opts.ShareCache,
		events:       events,
		shareOrigin:  strings.TrimRight(opts.ShareOrigin, "/"),
		validate:     validator.New(),
		locks:        newKeyedMutex(),
		logger:       logger,
	}
}

func (s *reportService) GenerateReport(ctx context.Context, req GenerateReportRequest) (*GenerateReportResponse, error) {
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	// project identity is the only mandatory input
	project, err := s.projectsRepo.GetProject(ctx, req.ProjectID)
	if err != nil {
		s.logger.Error("Failed to load project for report",
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}

	contacts, err := s.projectsRepo.ListContacts(ctx, req.ProjectID)
	if err != nil {
		s.logger.Warn("Failed to load project contacts, continuing without them",
			zap.String("project_id", req.ProjectID),
			zap.Error(err),
		)
		contacts = nil
	}

	snap, outcomes, err := s.builder.Build(ctx, *project, contacts)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report data: %w", err)
	}

	report := &domain.StoredReport{
		ProjectID:   project.ProjectID,
		UserID:      req.UserID,
		ReportMonth: req.ReportMonth,
		ReportYear:  req.ReportYear,
		ReportData:  data,
	}
	if err := s.reportsRepo.CreateReport(ctx, report); err != nil {
		s.logger.Error("Failed to store report",
			zap.String("project_id", project.ProjectID),
			zap.Int("report_month", req.ReportMonth),
			zap.Int("report_year", req.ReportYear),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	if report.Project.ProjectCode == "" {
		report.Project = domain.ProjectRef{
			ID:          project.ProjectID,
			ProjectCode: project.ProjectCode,
			ProjectName: project.ProjectName,
		}
	}

	s.logger.Info("Report generated",
		zap.String("report_id", report.ReportID),
		zap.String("project_id", project.ProjectID),
		zap.Int("report_month", req.ReportMonth),
		zap.Int("report_year", req.ReportYear),
		zap.Int("version", report.Version),
	)
	s.publish(ctx, EventReportGenerated, report)

	return &GenerateReportResponse{Report: report, Sections: outcomes}, nil
}

func (s *reportService) GetReport(ctx context.Context, reportID string) (*domain.StoredReport, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, fmt.Errorf("%w: report id is required", domain.ErrInvalidRequest)
	}
	report, err := s.reportsRepo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrReportNotFound
	}
	return report, nil
}

func (s *reportService) ListReports(ctx context.Context, req ListReportsRequest) (*ListReportsResponse, error) {
	items, err := s.reportsRepo.ListReports(ctx, repository.ReportFilter{
		ProjectID: strings.TrimSpace(req.ProjectID),
		Query:     strings.TrimSpace(req.Query),
	})
	if err != nil {
		return nil, err
	}
	return &ListReportsResponse{
		Items:  items,
		Groups: domain.GroupByProject(items),
		Total:  len(items),
	}, nil
}

func (s *reportService) DeleteReport(ctx context.Context, reportID string) error {
	if strings.TrimSpace(reportID) == "" {
		return fmt.Errorf("%w: report id is required", domain.ErrInvalidRequest)
	}

	unlock := s.locks.Lock(reportID)
	defer unlock()

	report, err := s.reportsRepo.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if report == nil {
		return domain.ErrReportNotFound
	}
	if err := s.reportsRepo.DeleteReport(ctx, reportID); err != nil {
		return err
	}

	if report.ShareToken != nil {
		if err := s.shareCache.Evict(ctx, *report.ShareToken); err != nil {
			s.logger.Warn("Failed to evict shared report from cache",
				zap.String("report_id", reportID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Report deleted", zap.String("report_id", reportID))
	s.publish(ctx, EventReportDeleted, report)
	return nil
}

func (s *reportService) GetSharedReport(ctx context.Context, token string) (*domain.StoredReport, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrReportNotFound
	}

	cached, err := s.shareCache.Get(ctx, token)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, store.ErrMiss) {
		s.logger.Warn("Share cache read failed", zap.Error(err))
	}

	report, err := s.reportsRepo.GetReportByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrReportNotFound
	}
	if err := s.shareCache.Put(ctx, report); err != nil {
		s.logger.Warn("Share cache write failed", zap.Error(err))
	}
	return report, nil
}

func (s *reportService) ShareLink(ctx context.Context, reportID, origin string) (string, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return "", err
	}
	if report.ShareToken == nil || *report.ShareToken == "" {
		return "", domain.ErrShareTokenMissing
	}
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		origin = s.shareOrigin
	}
	return domain.ShareURL(origin, *report.ShareToken), nil
}

func (s *reportService) publish(ctx context.Context, eventType string, report *domain.StoredReport) {
	event := ReportEvent{
		ReportID:    report.ReportID,
		ProjectID:   report.ProjectID,
		ReportMonth: report.ReportMonth,
		ReportYear:  report.ReportYear,
		Version:     report.Version,
		UserID:      report.UserID,
	}
	if err := s.events.Publish(ctx, eventType, event); err != nil {
		s.logger.Warn("Failed to publish report event",
			zap.String("type", eventType),
			zap.String("report_id", report.ReportID),
			zap.Error(err),
		)
	}
}
