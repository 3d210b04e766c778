package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": 2000, "type": "success", "message": "ok", "result": result})
}

func fail(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": -1, "type": "error", "message": msg, "result": nil})
}

func TestClient_ListAndDelete(t *testing.T) {
	var gotQuery, gotUser string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/api/v1/reports", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUser = r.Header.Get("X-User-Id")
		ok(w, map[string]any{
			"items": []map[string]any{{"id": "r-1", "projectId": "p-1", "reportMonth": 3, "reportYear": 2025, "version": 1,
				"project": map[string]any{"id": "p-1", "projectCode": "PRJ-001", "projectName": "Tower A"}}},
			"total": 1,
		})
	})
	mux.HandleFunc("DELETE /admin/api/v1/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "r-1" {
			ok(w, map[string]any{"id": "r-1", "deleted": true})
			return
		}
		fail(w, domain.ErrReportNotFound.Error())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/", "", time.Second)
	c.SetUserID("u-1")
	ctx := context.Background()

	resp, err := c.ListReports(ctx, service.ListReportsRequest{Query: "tower"})
	require.NoError(t, err)
	assert.Equal(t, "tower", gotQuery)
	assert.Equal(t, "u-1", gotUser)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "PRJ-001", resp.Items[0].Project.ProjectCode)

	require.NoError(t, c.DeleteReport(ctx, "r-1"))
	err = c.DeleteReport(ctx, "r-2")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestClient_GenerateAndShareLink(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/api/v1/projects/{projectId}/reports", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		ok(w, map[string]any{"report": map[string]any{"id": "r-9", "projectId": r.PathValue("projectId"), "version": 2}})
	})
	mux.HandleFunc("GET /admin/api/v1/reports/{id}/share-link", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "r-3" {
			fail(w, domain.ErrShareTokenMissing.Error())
			return
		}
		ok(w, map[string]string{"url": r.URL.Query().Get("origin") + "/share/report/tok"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	ctx := context.Background()

	resp, err := c.GenerateReport(ctx, service.GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, "r-9", resp.Report.ReportID)
	assert.Equal(t, "p-1", resp.Report.ProjectID)
	assert.EqualValues(t, 3, body["reportMonth"])

	link, err := c.ShareLink(ctx, "r-1", "https://pmp.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://pmp.example.com/share/report/tok", link)

	_, err = c.ShareLink(ctx, "r-3", "")
	assert.ErrorIs(t, err, domain.ErrShareTokenMissing)
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).GetReport(context.Background(), "r-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Message, "bad gateway")
}
