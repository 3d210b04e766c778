package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pmp-reports/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultFetchTimeout = 10 * time.Second

// SnapshotBuilder assembles a ReportSnapshot from the per-section fetchers
type SnapshotBuilder struct {
	fetcher SectionFetcher
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewSnapshotBuilder timeout applies to each section fetch separately
func NewSnapshotBuilder(fetcher SectionFetcher, timeout time.Duration, logger *zap.Logger) *SnapshotBuilder {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &SnapshotBuilder{
		fetcher: fetcher,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// SetClock overrides the generatedAt source
func (b *SnapshotBuilder) SetClock(now func() time.Time) {
	b.now = now
}

type sectionResult struct {
	data    json.RawMessage
	outcome domain.SectionOutcome
}

// Build fetches every section concurrently and merges the results in section order.
// A failed or timed-out section is omitted; only cancellation of ctx fails the build.
func (b *SnapshotBuilder) Build(ctx context.Context, project domain.Project, contacts []domain.ProjectContact) (*domain.ReportSnapshot, []domain.SectionOutcome, error) {
	results := make([]sectionResult, len(domain.AllSections))

	var g errgroup.Group
	for i, section := range domain.AllSections {
		i, section := i, section
		g.Go(func() error {
			results[i] = b.fetch(ctx, project.ProjectID, section)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("snapshot build cancelled: %w", err)
	}

	if contacts == nil {
		contacts = []domain.ProjectContact{}
	}
	snap := &domain.ReportSnapshot{
		Project:     project,
		Contacts:    append([]domain.ProjectContact(nil), contacts...),
		GeneratedAt: b.now().UTC(),
	}

	outcomes := make([]domain.SectionOutcome, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.outcome.Status == domain.SectionPresent {
			snap.SetSection(r.outcome.Section, r.data)
		}
		if r.outcome.Status == domain.SectionFailed {
			failed++
			b.logger.Warn("Report section omitted",
				zap.String("project_id", project.ProjectID),
				zap.String("section", string(r.outcome.Section)),
				zap.String("error", r.outcome.Error),
				zap.Int64("duration_ms", r.outcome.DurationMS),
			)
		}
		outcomes = append(outcomes, r.outcome)
	}

	b.logger.Info("Report snapshot built",
		zap.String("project_id", project.ProjectID),
		zap.Int("sections", len(results)),
		zap.Int("failed", failed),
	)
	return snap, outcomes, nil
}

func (b *SnapshotBuilder) fetch(ctx context.Context, projectID string, section domain.SectionName) sectionResult {
	fctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	data, err := b.fetcher.FetchSection(fctx, projectID, section)
	outcome := domain.SectionOutcome{
		Section:    section,
		DurationMS: time.Since(start).Milliseconds(),
	}

	switch {
	case err != nil:
		outcome.Status = domain.SectionFailed
		outcome.Error = err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fctx.Err(), context.DeadlineExceeded) {
			outcome.Error = fmt.Sprintf("timed out after %s", b.timeout)
		}
		return sectionResult{outcome: outcome}
	case domain.IsNullJSON(data):
		outcome.Status = domain.SectionAbsent
		return sectionResult{outcome: outcome}
	case !json.Valid(data):
		outcome.Status = domain.SectionFailed
		outcome.Error = "invalid JSON payload"
		return sectionResult{outcome: outcome}
	}

	outcome.Status = domain.SectionPresent
	return sectionResult{data: data, outcome: outcome}
}
