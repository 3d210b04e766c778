package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/repository"
	"pmp-reports/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// staticFetcher serves fixed section payloads; anything else is absent
type staticFetcher map[domain.SectionName]string

func (f staticFetcher) FetchSection(_ context.Context, _ string, section domain.SectionName) (json.RawMessage, error) {
	if raw, ok := f[section]; ok {
		return json.RawMessage(raw), nil
	}
	return nil, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type testServer struct {
	router  *Router
	reports *repository.MemoryReportsRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	projects := repository.NewMemoryProjectsRepo()
	projects.PutProject(domain.Project{
		ProjectID:   "p-1",
		ProjectCode: "PRJ-001",
		ProjectName: "Tower A",
		Client:      &domain.PartyRef{ID: "c-1", Name: "Acme Holdings"},
	})
	projects.PutProject(domain.Project{ProjectID: "p-2", ProjectCode: "PRJ-002", ProjectName: "Marina Mall"})
	reports := repository.NewMemoryReportsRepo(projects)

	fetcher := staticFetcher{
		domain.SectionPlanning: `{"plannedProgress":45}`,
		domain.SectionRisks:    `[{"riskItem":"Flooding","impact":"High","remarks":"Drainage plan pending"}]`,
		domain.SectionStaff:    `[{"designation":"Project Manager","staff":[{"name":"Jane Doe"}]}]`,
	}
	svc := service.NewReportService(reports, projects,
		service.NewSnapshotBuilder(fetcher, time.Second, zap.NewNop()),
		service.ReportServiceOptions{ShareOrigin: "https://pmp.example.com"},
		zap.NewNop(),
	)

	router := NewRouter(zap.NewNop())
	router.RegisterHealthRoutes()
	router.RegisterReportRoutes(NewReportsHandler(svc, zap.NewNop()))
	router.RegisterShareRoutes(NewShareHandler(svc, zap.NewNop()))
	return &testServer{router: router, reports: reports}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("X-User-Id", "u-1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil && env.Code == ResultSuccess {
		require.NoError(t, json.Unmarshal(env.Result, out))
	}
	return env
}

func (s *testServer) generate(t *testing.T, projectID string) *domain.StoredReport {
	t.Helper()
	var resp service.GenerateReportResponse
	env := decodeEnvelope(t, s.do(t, http.MethodPost, "/admin/api/v1/projects/"+projectID+"/reports", `{"reportMonth":3,"reportYear":2025}`), &resp)
	require.Equal(t, ResultSuccess, env.Code, env.Message)
	return resp.Report
}

func TestGenerateReport_Handler(t *testing.T) {
	s := newTestServer(t)

	report := s.generate(t, "p-1")

	assert.Equal(t, "p-1", report.ProjectID)
	assert.Equal(t, "u-1", report.UserID)
	assert.Equal(t, 1, report.Version)
	require.NotNil(t, report.ShareToken)

	again := s.generate(t, "p-1")
	assert.Equal(t, 2, again.Version)
}

func TestGenerateReport_HandlerErrors(t *testing.T) {
	s := newTestServer(t)

	env := decodeEnvelope(t, s.do(t, http.MethodPost, "/admin/api/v1/projects/p-1/reports", `{"reportMonth":13,"reportYear":2025}`), nil)
	assert.Equal(t, ResultError, env.Code)
	assert.Contains(t, env.Message, "invalid request")

	env = decodeEnvelope(t, s.do(t, http.MethodPost, "/admin/api/v1/projects/nope/reports", `{"reportMonth":3,"reportYear":2025}`), nil)
	assert.Equal(t, ResultError, env.Code)
	assert.Contains(t, env.Message, "project not found")

	env = decodeEnvelope(t, s.do(t, http.MethodPost, "/admin/api/v1/projects/p-1/reports", `{`), nil)
	assert.Equal(t, ResultError, env.Code)

	w := s.do(t, http.MethodPut, "/admin/api/v1/projects/p-1/reports", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListReports_Handler(t *testing.T) {
	s := newTestServer(t)
	s.generate(t, "p-1")
	s.generate(t, "p-2")

	var resp service.ListReportsResponse
	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports", ""), &resp)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Groups, 2)

	resp = service.ListReportsResponse{}
	decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports?q=marina", ""), &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "PRJ-002", resp.Items[0].Project.ProjectCode)
}

func TestGetAndDeleteReport_Handler(t *testing.T) {
	s := newTestServer(t)
	report := s.generate(t, "p-1")

	var got domain.StoredReport
	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID, ""), &got)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, report.ReportID, got.ReportID)

	env = decodeEnvelope(t, s.do(t, http.MethodDelete, "/admin/api/v1/reports/"+report.ReportID, ""), nil)
	assert.Equal(t, ResultSuccess, env.Code)

	env = decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID, ""), nil)
	assert.Equal(t, ResultError, env.Code)
	assert.Contains(t, env.Message, "report not found")

	env = decodeEnvelope(t, s.do(t, http.MethodDelete, "/admin/api/v1/reports/"+report.ReportID, ""), nil)
	assert.Equal(t, ResultError, env.Code)
}

func TestGetSlides_Handler(t *testing.T) {
	s := newTestServer(t)
	report := s.generate(t, "p-1")

	var resp SlidesResponse
	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID+"/slides", ""), &resp)
	require.Equal(t, ResultSuccess, env.Code, env.Message)

	assert.Equal(t, "March 2025", resp.Period)
	require.Len(t, resp.Kinds, 5)
	assert.Equal(t, "cover", string(resp.Kinds[0]))
	assert.Equal(t, "risks", string(resp.Kinds[3]))
	require.Len(t, resp.Slides, 5)
	assert.Equal(t, "Flooding", resp.Slides[3].Cards[0].Title)
}

func TestPresent_Handler(t *testing.T) {
	s := newTestServer(t)
	report := s.generate(t, "p-1")

	w := s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID+"/present?slide=3&close=/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Risks</h1>")
	assert.Contains(t, body, "4 / 5")
	assert.Contains(t, body, `class="close"`)

	w = s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID+"/present?slide=99&close=https://evil.example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "5 / 5")
	assert.NotContains(t, w.Body.String(), "evil.example.com")

	w = s.do(t, http.MethodGet, "/admin/api/v1/reports/missing/present", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport_Handler(t *testing.T) {
	s := newTestServer(t)
	report := s.generate(t, "p-1")

	for format, contentType := range map[string]string{
		"pdf":  "application/pdf",
		"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	} {
		w := s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID+"/export?format="+format, "")
		require.Equal(t, http.StatusOK, w.Code, format)
		assert.Equal(t, contentType, w.Header().Get("Content-Type"), format)
		assert.Equal(t, `attachment; filename="PRJ-001_Report_March_2025.`+format+`"`, w.Header().Get("Content-Disposition"))
		assert.NotZero(t, w.Body.Len(), format)
	}

	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID+"/export?format=docx", ""), nil)
	assert.Equal(t, ResultError, env.Code)
}

func TestShareLinkAndPublicRead_Handler(t *testing.T) {
	s := newTestServer(t)
	report := s.generate(t, "p-1")
	token := *report.ShareToken

	var link ShareLinkResponse
	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID+"/share-link", ""), &link)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "https://pmp.example.com/share/report/"+token, link.URL)

	link = ShareLinkResponse{}
	decodeEnvelope(t, s.do(t, http.MethodGet, "/admin/api/v1/reports/"+report.ReportID+"/share-link?origin=http://localhost:3000/", ""), &link)
	assert.Equal(t, "http://localhost:3000/share/report/"+token, link.URL)

	var shared domain.StoredReport
	env = decodeEnvelope(t, s.do(t, http.MethodGet, "/share/api/v1/reports/"+token, ""), &shared)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, report.ReportID, shared.ReportID)
	assert.Empty(t, shared.UserID)
	assert.Nil(t, shared.User)

	w := s.do(t, http.MethodGet, "/share/report/"+token+"?slide=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Project Overview</h1>")
	assert.NotContains(t, w.Body.String(), `class="close"`)

	w = s.do(t, http.MethodGet, "/share/report/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	env = decodeEnvelope(t, s.do(t, http.MethodGet, "/share/api/v1/reports/unknown", ""), nil)
	assert.Equal(t, ResultError, env.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/healthz", ""), nil)
	assert.Equal(t, ResultSuccess, env.Code)
}
