package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"construction-sales-ledger/internal/domain"
)

type MockAuditRepo struct {
	mock.Mock
	mu      sync.Mutex
	written []domain.AuditEntry
}

func (m *MockAuditRepo) Append(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.written = append(m.written, *entry)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *MockAuditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, entityType, entityID)
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func (m *MockAuditRepo) entries() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEntry(nil), m.written...)
}

func TestRecorder_WritesQueuedEntriesOnStop(t *testing.T) {
	repo := new(MockAuditRepo)
	repo.On("Append", mock.Anything, mock.AnythingOfType("*domain.AuditEntry")).Return(nil)

	r := NewRecorder(repo, 2, 16, time.Second)
	r.Start()

	before := map[string]any{"status": "available"}
	after := map[string]any{"status": "reserved"}
	for i := 0; i < 5; i++ {
		r.Record(context.Background(), "sales-1", domain.AuditActionReserve, domain.EntityUnit, "u1", before, after)
	}
	require.NoError(t, r.Stop(context.Background()))

	written := repo.entries()
	require.Len(t, written, 5)
	var d map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(written[0].Diff), &d))
	assert.Equal(t, "available", d["before"]["status"])
	assert.Equal(t, "reserved", d["after"]["status"])
	assert.Equal(t, "sales-1", written[0].ActorID)
	assert.NotEmpty(t, written[0].ID)
}

func TestRecorder_WriteFailureIsSwallowed(t *testing.T) {
	repo := new(MockAuditRepo)
	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("audit table locked"))

	r := NewRecorder(repo, 1, 4, time.Second)
	r.Start()
	r.Record(context.Background(), "finance-1", domain.AuditActionPayPayout, domain.EntityPayout, "p1", nil, nil)
	require.NoError(t, r.Stop(context.Background()))

	repo.AssertNumberOfCalls(t, "Append", 1)
	assert.Empty(t, repo.entries())
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	repo := new(MockAuditRepo)
	repo.On("Append", mock.Anything, mock.Anything).Return(nil)

	// Not started: nothing drains the queue.
	r := NewRecorder(repo, 1, 1, time.Second)
	r.Record(context.Background(), "a", domain.AuditActionCreate, domain.EntityDeal, "d1", nil, nil)
	r.Record(context.Background(), "a", domain.AuditActionCreate, domain.EntityDeal, "d2", nil, nil)
	assert.Len(t, r.entries, 1)

	r.Start()
	require.NoError(t, r.Stop(context.Background()))
	written := repo.entries()
	require.Len(t, written, 1)
	assert.Equal(t, "d1", written[0].EntityID)
}

func TestRecorder_RecordAfterStopIsDropped(t *testing.T) {
	repo := new(MockAuditRepo)
	r := NewRecorder(repo, 1, 4, time.Second)
	r.Start()
	require.NoError(t, r.Stop(context.Background()))
	require.NoError(t, r.Stop(context.Background()), "stop is idempotent")

	assert.NotPanics(t, func() {
		r.Record(context.Background(), "a", domain.AuditActionCancel, domain.EntityDeal, "d1", nil, nil)
	})
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDiff_UnencodableValue(t *testing.T) {
	assert.Equal(t, "{}", diff(make(chan int), nil))
}
