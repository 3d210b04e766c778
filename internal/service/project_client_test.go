package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pmp-reports/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDirectoryTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects/p-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"projectId":"p-1","projectCode":"PRJ-001","projectName":"Tower A","clientName":"Acme Holdings"}}`))
	})
	mux.HandleFunc("GET /api/projects/p-1/contacts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"pc-2","name":"Lina Haddad"},{"id":"pc-1","name":"Omar Said","isPrimary":true}]`))
	})
	mux.HandleFunc("GET /api/projects/p-2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p-2","projectCode":"PRJ-002","projectName":"Marina","client":{"id":"c-9","name":"Harbour Co"}}`))
	})
	mux.HandleFunc("GET /api/projects/p-2/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/projects/p-3", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "panel down", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProjectDirectoryClient_GetProject(t *testing.T) {
	srv := newDirectoryTestServer(t)
	dir := NewProjectDirectoryClient(SectionClientOptions{BaseURL: srv.URL + "/api", Timeout: time.Second}, zap.NewNop())
	ctx := context.Background()

	p, err := dir.GetProject(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p-1", p.ProjectID)
	assert.Equal(t, "PRJ-001", p.ProjectCode)
	require.NotNil(t, p.Client)
	assert.Equal(t, "Acme Holdings", p.Client.Name)

	p, err = dir.GetProject(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, "p-2", p.ProjectID)
	assert.Equal(t, &domain.PartyRef{ID: "c-9", Name: "Harbour Co"}, p.Client)

	p, err = dir.GetProject(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = dir.GetProject(ctx, "p-3")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Equal(t, "project", upstream.Resource)
}

func TestProjectDirectoryClient_ListContacts(t *testing.T) {
	srv := newDirectoryTestServer(t)
	dir := NewProjectDirectoryClient(SectionClientOptions{BaseURL: srv.URL + "/api", Timeout: time.Second}, zap.NewNop())
	ctx := context.Background()

	contacts, err := dir.ListContacts(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Omar Said", contacts[0].Name)
	assert.Equal(t, "p-1", contacts[0].ProjectID)
	assert.Equal(t, "Lina Haddad", contacts[1].Name)

	contacts, err = dir.ListContacts(ctx, "p-2")
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcd", 2))
	// "é" is two bytes; cutting at 2 would split it
	assert.Equal(t, "a", truncate("aé", 2))
	assert.Equal(t, "数", truncate("数据", 4))
}
