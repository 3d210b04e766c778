package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	requests []service.GenerateReportRequest
	err      error
	deadline bool
}

func (g *fakeGenerator) GenerateReport(ctx context.Context, req service.GenerateReportRequest) (*service.GenerateReportResponse, error) {
	g.requests = append(g.requests, req)
	_, g.deadline = ctx.Deadline()
	if g.err != nil {
		return nil, g.err
	}
	return &service.GenerateReportResponse{Report: &domain.StoredReport{ReportID: "r-1", Version: 1}}, nil
}

func TestGenerateBroker_TriggersGeneration(t *testing.T) {
	gen := &fakeGenerator{}
	b := NewGenerateBroker(gen, time.Second, zap.NewNop())

	err := b.HandleMessage("pmp/reports/generate", []byte(`{"projectId":"p-1","reportMonth":3,"reportYear":2025,"userId":"u-1"}`))

	require.NoError(t, err)
	require.Len(t, gen.requests, 1)
	assert.Equal(t, service.GenerateReportRequest{ProjectID: "p-1", ReportMonth: 3, ReportYear: 2025, UserID: "u-1"}, gen.requests[0])
	assert.True(t, gen.deadline)
}

func TestGenerateBroker_DropsMalformed(t *testing.T) {
	gen := &fakeGenerator{}
	b := NewGenerateBroker(gen, 0, zap.NewNop())

	assert.NoError(t, b.HandleMessage("t", []byte(`not json`)))
	assert.NoError(t, b.HandleMessage("t", []byte(`{"reportMonth":3}`)))
	assert.Empty(t, gen.requests)
}

func TestGenerateBroker_ReturnsGenerationError(t *testing.T) {
	gen := &fakeGenerator{err: domain.ErrProjectNotFound}
	b := NewGenerateBroker(gen, time.Second, zap.NewNop())

	err := b.HandleMessage("t", []byte(`{"projectId":"nope","reportMonth":3,"reportYear":2025}`))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProjectNotFound))
}
