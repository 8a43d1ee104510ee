package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/service"
)

func fundedWallet(t *testing.T, f *fixture, ownerID string, available int64) {
	t.Helper()
	ctx := context.Background()
	_, err := f.wallets.Credit(ctx, ownerID, available, nil, "")
	require.NoError(t, err)
	_, err = f.wallets.PromoteToAvailable(ctx, "finance-1", ownerID, available)
	require.NoError(t, err)
}

func TestPayoutService_RequestAndPay(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	fundedWallet(t, f, "sales-1", 10_000)

	p, err := f.payouts.RequestPayout(ctx, "sales-1", 4_000, "bank_transfer")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPending, p.Status)

	w := f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(6_000), w.Available)
	assert.Equal(t, int64(4_000), w.PayoutReserved)

	paid, err := f.payouts.Process(ctx, p.ID, domain.PayoutActionPay, "finance-1", "wired")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPaid, paid.Status)
	require.NotNil(t, paid.ProcessedBy)
	assert.Equal(t, "finance-1", *paid.ProcessedBy)

	w = f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(0), w.PayoutReserved)
	assert.Equal(t, int64(4_000), w.TotalWithdrawn)

	_, err = f.payouts.Process(ctx, p.ID, domain.PayoutActionReject, "finance-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "a paid payout is final")
}

func TestPayoutService_RejectRefunds(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	fundedWallet(t, f, "sales-1", 10_000)

	p, err := f.payouts.RequestPayout(ctx, "sales-1", 4_000, "bank_transfer")
	require.NoError(t, err)

	rejected, err := f.payouts.Process(ctx, p.ID, domain.PayoutActionReject, "finance-1", "account closed")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusRejected, rejected.Status)
	assert.Equal(t, "account closed", rejected.Note)

	w := f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(10_000), w.Available)
	assert.Equal(t, int64(0), w.PayoutReserved)
	assert.Equal(t, int64(0), w.TotalWithdrawn)

	txs, _, err := f.wallets.ListTransactions(ctx, "sales-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindPayoutRejected, txs[0].Kind)
	assert.Equal(t, int64(4_000), txs[0].Amount)
	assert.Equal(t, domain.TransactionKindPayoutRequest, txs[1].Kind)
	assert.Equal(t, int64(-4_000), txs[1].Amount)
}

func TestPayoutService_InsufficientBalanceLeavesWalletUnchanged(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	fundedWallet(t, f, "sales-1", 1_000)
	before := f.requireBalanced(t, "sales-1")

	_, err := f.payouts.RequestPayout(ctx, "sales-1", 1_001, "bank_transfer")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	after := f.requireBalanced(t, "sales-1")
	assert.True(t, before.SameBalances(after))

	pending, total, err := f.payouts.ListPayoutsByStatus(ctx, domain.PayoutStatusPending, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, pending)
}

func TestPayoutService_Validation(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()

	_, err := f.payouts.RequestPayout(ctx, "sales-1", 0, "bank")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.payouts.RequestPayout(ctx, "sales-1", 10, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.payouts.RequestPayout(ctx, "nobody", 10, "bank")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = f.payouts.Process(ctx, "p1", "refund", "finance-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.payouts.Process(ctx, "missing", domain.PayoutActionPay, "finance-1", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerIdentityHoldsAcrossOperations(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, err := f.tasks.TaskApproved(ctx, "sales-1", 5_000, "t1", ""); return err },
		func() error { _, err := f.tasks.TaskApproved(ctx, "sales-1", 7_000, "t2", ""); return err },
		func() error { _, err := f.tasks.TaskFinalApproved(ctx, "t1"); return err },
		func() error { _, err := f.payouts.RequestPayout(ctx, "sales-1", 2_000, "bank"); return err },
		func() error { _, err := f.wallets.PromoteToAvailable(ctx, "finance-1", "sales-1", 3_000); return err },
		func() error {
			f.clock.Advance(time.Minute)
			_, err := f.payouts.RequestPayout(ctx, "sales-1", 5_000, "bank")
			return err
		},
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		f.requireBalanced(t, "sales-1")
	}

	pending, total, err := f.payouts.ListPayoutsByStatus(ctx, domain.PayoutStatusPending, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int32(2), total)
	_, err = f.payouts.Process(ctx, pending[0].ID, domain.PayoutActionPay, "finance-1", "")
	require.NoError(t, err)
	_, err = f.payouts.Process(ctx, pending[1].ID, domain.PayoutActionReject, "finance-1", "")
	require.NoError(t, err)

	w := f.requireBalanced(t, "sales-1")
	assert.Equal(t, int64(12_000), w.TotalEarned)
	assert.Equal(t, int64(4_000), w.Pending)
	assert.Equal(t, int64(6_000), w.Available)
	assert.Equal(t, int64(2_000), w.TotalWithdrawn)
}
