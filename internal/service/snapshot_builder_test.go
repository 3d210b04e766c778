package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pmp-reports/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// fakeFetcher answers from maps; blocked sections wait for their context
type fakeFetcher struct {
	mu      sync.Mutex
	data    map[domain.SectionName]string
	errs    map[domain.SectionName]error
	delays  map[domain.SectionName]time.Duration
	blocked map[domain.SectionName]bool
	order   []domain.SectionName
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		data:    map[domain.SectionName]string{},
		errs:    map[domain.SectionName]error{},
		delays:  map[domain.SectionName]time.Duration{},
		blocked: map[domain.SectionName]bool{},
	}
}

func (f *fakeFetcher) FetchSection(ctx context.Context, projectID string, section domain.SectionName) (json.RawMessage, error) {
	if f.blocked[section] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d := f.delays[section]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.order = append(f.order, section)
	f.mu.Unlock()

	if err := f.errs[section]; err != nil {
		return nil, err
	}
	if s, ok := f.data[section]; ok {
		return json.RawMessage(s), nil
	}
	return nil, nil
}

func outcomeOf(outcomes []domain.SectionOutcome, name domain.SectionName) domain.SectionOutcome {
	for _, o := range outcomes {
		if o.Section == name {
			return o
		}
	}
	return domain.SectionOutcome{}
}

func testProject() domain.Project {
	return domain.Project{ProjectID: "p-1", ProjectCode: "PRJ-001", ProjectName: "Tower A"}
}

func TestSnapshotBuilder_MergesPresentSections(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := newFakeFetcher()
	fetcher.data[domain.SectionRisks] = `[{"riskItem":"Flooding","impact":"High","remarks":"Drainage plan pending"}]`
	fetcher.data[domain.SectionPlanning] = `{"progress":42}`
	fetcher.errs[domain.SectionQuality] = errors.New("connection refused")

	builder := NewSnapshotBuilder(fetcher, time.Second, zap.NewNop())
	fixed := time.Date(2025, 3, 31, 9, 30, 0, 0, time.FixedZone("GST", 4*3600))
	builder.SetClock(func() time.Time { return fixed })

	snap, outcomes, err := builder.Build(context.Background(), testProject(), nil)
	require.NoError(t, err)

	assert.Equal(t, fixed.UTC(), snap.GeneratedAt)
	assert.Equal(t, "Tower A", snap.Project.ProjectName)
	assert.NotNil(t, snap.Contacts)
	assert.Len(t, snap.Contacts, 0)

	assert.True(t, snap.HasSection(domain.SectionRisks))
	assert.True(t, snap.HasSection(domain.SectionPlanning))
	assert.False(t, snap.HasSection(domain.SectionQuality))
	assert.False(t, snap.HasSection(domain.SectionHSE))

	require.Len(t, outcomes, len(domain.AllSections))
	for i, o := range outcomes {
		assert.Equal(t, domain.AllSections[i], o.Section)
	}
	assert.Equal(t, domain.SectionPresent, outcomeOf(outcomes, domain.SectionRisks).Status)
	assert.Equal(t, domain.SectionAbsent, outcomeOf(outcomes, domain.SectionHSE).Status)
	failed := outcomeOf(outcomes, domain.SectionQuality)
	assert.Equal(t, domain.SectionFailed, failed.Status)
	assert.Contains(t, failed.Error, "connection refused")
}

func TestSnapshotBuilder_CompletionOrderDoesNotMatter(t *testing.T) {
	defer goleak.VerifyNone(t)

	build := func(delays map[domain.SectionName]time.Duration) []byte {
		fetcher := newFakeFetcher()
		fetcher.data[domain.SectionPlanning] = `{"progress":42}`
		fetcher.data[domain.SectionRisks] = `[{"riskItem":"Flooding"}]`
		fetcher.data[domain.SectionClientFeedback] = `{"rating":4}`
		fetcher.delays = delays

		builder := NewSnapshotBuilder(fetcher, time.Second, zap.NewNop())
		builder.SetClock(func() time.Time { return time.Unix(0, 0) })
		snap, _, err := builder.Build(context.Background(), testProject(), nil)
		require.NoError(t, err)
		b, err := json.Marshal(snap)
		require.NoError(t, err)
		return b
	}

	forward := build(map[domain.SectionName]time.Duration{
		domain.SectionPlanning:       1 * time.Millisecond,
		domain.SectionClientFeedback: 30 * time.Millisecond,
	})
	reverse := build(map[domain.SectionName]time.Duration{
		domain.SectionPlanning:       30 * time.Millisecond,
		domain.SectionClientFeedback: 1 * time.Millisecond,
	})
	assert.JSONEq(t, string(forward), string(reverse))
	assert.Equal(t, forward, reverse)
}

func TestSnapshotBuilder_TimeoutIsFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := newFakeFetcher()
	fetcher.blocked[domain.SectionPictures] = true
	fetcher.data[domain.SectionHSE] = `{"incidents":0}`

	builder := NewSnapshotBuilder(fetcher, 40*time.Millisecond, zap.NewNop())

	start := time.Now()
	snap, outcomes, err := builder.Build(context.Background(), testProject(), nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	assert.False(t, snap.HasSection(domain.SectionPictures))
	assert.True(t, snap.HasSection(domain.SectionHSE))
	o := outcomeOf(outcomes, domain.SectionPictures)
	assert.Equal(t, domain.SectionFailed, o.Status)
	assert.Contains(t, o.Error, "timed out")
}

func TestSnapshotBuilder_InvalidPayloadIsFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.data[domain.SectionAssets] = `{"broken":`

	builder := NewSnapshotBuilder(fetcher, time.Second, zap.NewNop())
	snap, outcomes, err := builder.Build(context.Background(), testProject(), nil)
	require.NoError(t, err)

	assert.False(t, snap.HasSection(domain.SectionAssets))
	assert.Equal(t, domain.SectionFailed, outcomeOf(outcomes, domain.SectionAssets).Status)
}

func TestSnapshotBuilder_CallerCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := newFakeFetcher()
	for _, s := range domain.AllSections {
		fetcher.blocked[s] = true
	}
	builder := NewSnapshotBuilder(fetcher, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	snap, outcomes, err := builder.Build(ctx, testProject(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, snap)
	assert.Nil(t, outcomes)
}

func TestSnapshotBuilder_CopiesContacts(t *testing.T) {
	contacts := []domain.ProjectContact{{ID: "pc-1", Name: "Omar Said", IsPrimary: true}}
	builder := NewSnapshotBuilder(newFakeFetcher(), time.Second, zap.NewNop())

	snap, _, err := builder.Build(context.Background(), testProject(), contacts)
	require.NoError(t, err)

	contacts[0].Name = "changed"
	require.Len(t, snap.Contacts, 1)
	assert.Equal(t, "Omar Said", snap.Contacts[0].Name)
}
