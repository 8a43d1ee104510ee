package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/repository/sqlstore"
	"construction-sales-ledger/internal/service"
)

func TestWalletService_FinalApprovalPolicy(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()

	earning, err := f.tasks.TaskApproved(ctx, "sales-1", 12_500, "task-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindEarning, earning.Kind)
	assert.Equal(t, "Earning of 12,500 for task task-1", earning.Description)

	w := f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(12_500), w.Pending)
	assert.Equal(t, int64(0), w.Available)

	_, err = f.tasks.TaskApproved(ctx, "sales-1", 12_500, "task-1", "")
	assert.ErrorIs(t, err, domain.ErrConflict, "a task is credited once")
	w = f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(12_500), w.TotalEarned, "the rejected credit rolled back")

	promotion, err := f.tasks.TaskFinalApproved(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindPromotion, promotion.Kind)

	again, err := f.tasks.TaskFinalApproved(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, promotion.ID, again.ID, "final approval is idempotent")

	w = f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(0), w.Pending)
	assert.Equal(t, int64(12_500), w.Available)

	_, err = f.tasks.TaskFinalApproved(ctx, "unknown-task")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWalletService_ImmediatePolicy(t *testing.T) {
	f := newFixture(t, service.PromoteImmediately)
	ctx := context.Background()

	_, err := f.tasks.TaskApproved(ctx, "sales-1", 8_000, "task-1", "bonus")
	require.NoError(t, err)

	w := f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(8_000), w.Available)
	assert.Equal(t, int64(0), w.Pending)

	txs, total, err := f.wallets.ListTransactions(ctx, "sales-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), total)
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TransactionKindPromotion, txs[0].Kind, "newest first")
	assert.Equal(t, "bonus", txs[1].Description)
}

func TestWalletService_PromoteToAvailable(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()

	_, err := f.wallets.PromoteToAvailable(ctx, "finance-1", "sales-1", 100)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.wallets.Credit(ctx, "sales-1", 1_000, nil, "")
	require.NoError(t, err)

	_, err = f.wallets.PromoteToAvailable(ctx, "finance-1", "sales-1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.wallets.PromoteToAvailable(ctx, "finance-1", "sales-1", 1_001)
	assert.ErrorIs(t, err, domain.ErrInsufficientPending)

	_, err = f.wallets.PromoteToAvailable(ctx, "finance-1", "sales-1", 400)
	require.NoError(t, err)

	w := f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(400), w.Available)
	assert.Equal(t, int64(600), w.Pending)
}

func TestWalletService_CreditValidation(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()

	_, err := f.wallets.Credit(ctx, "sales-1", 0, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.wallets.Credit(ctx, "", 10, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.tasks.TaskApproved(ctx, "sales-1", 10, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestWalletService_VerifyDetectsDrift(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()

	_, err := f.wallets.Credit(ctx, "sales-1", 1_000, nil, "")
	require.NoError(t, err)

	// Balance change with no matching transaction.
	require.NoError(t, f.store.Wallets().Credit(ctx, "sales-1", 50, t0))

	v, err := f.wallets.Verify(ctx, "sales-1")
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.True(t, v.Balanced, "the identity alone cannot see an unrecorded credit")
	assert.Equal(t, int64(1_000), v.Replayed.TotalEarned)
	assert.Equal(t, int64(1_050), v.Stored.TotalEarned)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, actorID string, action domain.AuditAction, entityType, entityID string, before, after any) {
	m.Called(ctx, actorID, action, entityType, entityID, before, after)
}

func TestWalletService_AuditsAfterCommit(t *testing.T) {
	db, err := sqlstore.Connect(context.Background(), sqlstore.DriverSQLite, ":memory:", true)
	require.NoError(t, err)
	defer db.Close()

	rec := new(mockRecorder)
	rec.On("Record", mock.Anything, domain.SystemActor, domain.AuditActionCredit, domain.EntityWallet, "sales-1",
		mock.Anything, mock.AnythingOfType("*domain.Wallet")).Return().Once()

	svc := service.NewWalletService(sqlstore.NewStore(db), rec, func() time.Time { return t0 }, service.PromoteOnFinalApproval)
	_, err = svc.Credit(context.Background(), "sales-1", 10, nil, "")
	require.NoError(t, err)

	_, err = svc.Credit(context.Background(), "sales-1", -1, nil, "")
	require.Error(t, err)

	rec.AssertExpectations(t)
}
