package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/repository"
	"pmp-reports/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type recordedEvent struct {
	Type  string
	Event ReportEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := data.(ReportEvent); ok {
		p.events = append(p.events, recordedEvent{Type: eventType, Event: ev})
	}
	return p.err
}

// failingProjects wraps a projects repository and fails selected calls
type failingProjects struct {
	repository.ProjectsRepository
	projectErr  error
	contactsErr error
}

func (f *failingProjects) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	return f.ProjectsRepository.GetProject(ctx, id)
}

func (f *failingProjects) ListContacts(ctx context.Context, id string) ([]domain.ProjectContact, error) {
	if f.contactsErr != nil {
		return nil, f.contactsErr
	}
	return f.ProjectsRepository.ListContacts(ctx, id)
}

type serviceFixture struct {
	svc       ReportService
	projects  *repository.MemoryProjectsRepo
	reports   *repository.MemoryReportsRepo
	fetcher   *fakeFetcher
	kv        *memKV
	publisher *recordingPublisher
}

func newServiceFixture(t *testing.T, wrap func(repository.ProjectsRepository) repository.ProjectsRepository) *serviceFixture {
	t.Helper()
	projects := repository.NewMemoryProjectsRepo()
	projects.PutProject(domain.Project{ProjectID: "p-1", ProjectCode: "PRJ-001", ProjectName: "Tower A"})
	projects.PutContacts("p-1", []domain.ProjectContact{{ID: "pc-1", ProjectID: "p-1", Name: "Omar Said", IsPrimary: true}})
	reports := repository.NewMemoryReportsRepo(projects)

	var dir repository.ProjectsRepository = projects
	if wrap != nil {
		dir = wrap(projects)
	}

	fetcher := newFakeFetcher()
	fetcher.data[domain.SectionRisks] = `[{"riskItem":"Flooding","impact":"High","remarks":"Drainage plan pending"}]`

	kv := newMemKV()
	publisher := &recordingPublisher{}
	svc := NewReportService(reports, dir,
		NewSnapshotBuilder(fetcher, time.Second, zap.NewNop()),
		ReportServiceOptions{
			ShareCache:  store.NewShareCache(kv, time.Minute),
			Events:      publisher,
			ShareOrigin: "https://pmp.example.com/",
		},
		zap.NewNop(),
	)
	return &serviceFixture{svc: svc, projects: projects, reports: reports, fetcher: fetcher, kv: kv, publisher: publisher}
}

func TestGenerateReport_StoresSnapshot(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.GenerateReport(ctx, GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025, UserID: "u-1"})
	require.NoError(t, err)

	require.NotNil(t, resp.Report)
	assert.Equal(t, 1, resp.Report.Version)
	assert.Equal(t, "PRJ-001", resp.Report.Project.ProjectCode)
	require.NotNil(t, resp.Report.ShareToken)
	assert.Len(t, resp.Sections, len(domain.AllSections))

	stored, err := f.svc.GetReport(ctx, resp.Report.ReportID)
	require.NoError(t, err)
	snap, err := stored.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Tower A", snap.Project.ProjectName)
	require.Len(t, snap.Contacts, 1)
	assert.True(t, snap.HasSection(domain.SectionRisks))
	assert.False(t, snap.HasSection(domain.SectionPlanning))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventReportGenerated, f.publisher.events[0].Type)
	assert.Equal(t, resp.Report.ReportID, f.publisher.events[0].Event.ReportID)
}

func TestGenerateReport_Validation(t *testing.T) {
	f := newServiceFixture(t, nil)

	for _, req := range []GenerateReportRequest{
		{ProjectID: "", ReportMonth: 3, ReportYear: 2025},
		{ProjectID: "p-1", ReportMonth: 13, ReportYear: 2025},
		{ProjectID: "p-1", ReportMonth: 0, ReportYear: 2025},
		{ProjectID: "p-1", ReportMonth: 3, ReportYear: 1999},
		{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025, UserID: strings.Repeat("u", 129)},
	} {
		_, err := f.svc.GenerateReport(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, "%+v", req)
	}
}

func TestGenerateReport_ProjectFailureIsFatal(t *testing.T) {
	f := newServiceFixture(t, func(p repository.ProjectsRepository) repository.ProjectsRepository {
		return &failingProjects{ProjectsRepository: p, projectErr: errors.New("directory down")}
	})
	ctx := context.Background()

	_, err := f.svc.GenerateReport(ctx, GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory down")

	_, err = f.svc.GenerateReport(ctx, GenerateReportRequest{ProjectID: "p-404", ReportMonth: 3, ReportYear: 2025})
	require.Error(t, err)

	list, err := f.svc.ListReports(ctx, ListReportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.Empty(t, f.publisher.events)
}

func TestGenerateReport_UnknownProject(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.svc.GenerateReport(context.Background(), GenerateReportRequest{ProjectID: "p-404", ReportMonth: 3, ReportYear: 2025})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestGenerateReport_ContactsFailureIsNotFatal(t *testing.T) {
	f := newServiceFixture(t, func(p repository.ProjectsRepository) repository.ProjectsRepository {
		return &failingProjects{ProjectsRepository: p, contactsErr: errors.New("contacts timeout")}
	})

	resp, err := f.svc.GenerateReport(context.Background(), GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025})
	require.NoError(t, err)

	snap, err := resp.Report.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Contacts)
}

func TestGenerateReport_SamePeriodCreatesNewVersion(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	req := GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025}

	first, err := f.svc.GenerateReport(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.GenerateReport(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 2, second.Report.Version)
	assert.NotEqual(t, *first.Report.ShareToken, *second.Report.ShareToken)

	list, err := f.svc.ListReports(ctx, ListReportsRequest{Query: "tower"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Groups, 1)
	assert.Equal(t, "PRJ-001", list.Groups[0].ProjectCode)
	require.Len(t, list.Groups[0].Reports, 2)
	assert.True(t, list.Groups[0].Reports[0].Latest)
	assert.False(t, list.Groups[0].Reports[1].Latest)

	// the first version is still readable through its own token
	shared, err := f.svc.GetSharedReport(ctx, *first.Report.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, first.Report.ReportID, shared.ReportID)
}

func TestSharedReport_CachedAndEvictedOnDelete(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.GenerateReport(ctx, GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025})
	require.NoError(t, err)
	token := *resp.Report.ShareToken

	shared, err := f.svc.GetSharedReport(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, resp.Report.ReportID, shared.ReportID)
	_, cached := f.kv.data[store.ShareKey(token)]
	assert.True(t, cached)

	require.NoError(t, f.svc.DeleteReport(ctx, resp.Report.ReportID))
	_, cached = f.kv.data[store.ShareKey(token)]
	assert.False(t, cached)

	_, err = f.svc.GetSharedReport(ctx, token)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
	assert.ErrorIs(t, f.svc.DeleteReport(ctx, resp.Report.ReportID), domain.ErrReportNotFound)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, EventReportDeleted, f.publisher.events[1].Type)
}

func TestDeleteReport_ConcurrentCallsDeleteOnce(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.GenerateReport(ctx, GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.DeleteReport(ctx, resp.Report.ReportID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrReportNotFound)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestShareLink(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.GenerateReport(ctx, GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025})
	require.NoError(t, err)
	token := *resp.Report.ShareToken

	link, err := f.svc.ShareLink(ctx, resp.Report.ReportID, "")
	require.NoError(t, err)
	assert.Equal(t, "https://pmp.example.com/share/report/"+token, link)

	link, err = f.svc.ShareLink(ctx, resp.Report.ReportID, "http://localhost:5173/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/share/report/"+token, link)

	_, err = f.svc.ShareLink(ctx, "missing", "")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

// tokenlessReports simulates a legacy row stored before tokens were issued
type tokenlessReports struct {
	repository.ReportsRepository
}

func (r tokenlessReports) GetReport(ctx context.Context, id string) (*domain.StoredReport, error) {
	return &domain.StoredReport{ReportID: id, ProjectID: "p-1", ReportMonth: 1, ReportYear: 2024}, nil
}

func TestShareLink_MissingToken(t *testing.T) {
	svc := NewReportService(tokenlessReports{}, repository.NewMemoryProjectsRepo(),
		NewSnapshotBuilder(newFakeFetcher(), time.Second, zap.NewNop()),
		ReportServiceOptions{ShareOrigin: "https://pmp.example.com"}, zap.NewNop())

	_, err := svc.ShareLink(context.Background(), "legacy", "")
	assert.ErrorIs(t, err, domain.ErrShareTokenMissing)
}
