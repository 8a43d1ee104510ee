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

func TestInstallmentService_GenerateMonthly(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	d := f.deal(t, "u1", domain.PaymentPlanMonthly)

	plan, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Count: 3, FirstDueDate: t0.Add(monthly)})
	require.NoError(t, err)
	assert.Equal(t, []int64{300_000, 300_000, 300_000}, amounts(plan))
	assert.Equal(t, d.Remaining(), sum(plan))

	_, err = f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Count: 3, FirstDueDate: t0.Add(monthly)})
	assert.ErrorIs(t, err, domain.ErrAlreadyGenerated)

	stored, err := f.installments.ListInstallments(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, amounts(plan), amounts(stored))
}

func TestInstallmentService_GenerateConstructionLinked(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	d := f.deal(t, "u1", domain.PaymentPlanConstructionLinked)
	foundation, roof := "task-foundation", "task-roof"

	_, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Milestones: []domain.Milestone{
		{Percentage: 40, TaskID: &foundation}, {Percentage: 59, TaskID: &roof},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidMilestoneSplit)

	plan, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Milestones: []domain.Milestone{
		{Percentage: 40, TaskID: &foundation}, {Percentage: 60, TaskID: &roof},
	}})
	require.NoError(t, err)
	assert.Equal(t, []int64{360_000, 540_000}, amounts(plan))

	completed := t0.Add(10 * 24 * time.Hour)
	n, err := f.tasks.MilestoneCompleted(ctx, foundation, completed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.tasks.MilestoneCompleted(ctx, foundation, completed.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "a resolved due date is never moved")

	list, err := f.installments.ListInstallments(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, list[0].DueDate.Equal(completed.Add(grace)))
	assert.True(t, list[1].AwaitingMilestone())
}

func TestInstallmentService_MarkOverdueSkipsPlaceholders(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	f.unit(t, "u2")

	monthlyDeal := f.deal(t, "u1", domain.PaymentPlanMonthly)
	_, err := f.installments.Generate(ctx, "sales-1", monthlyDeal.ID, service.PlanRequest{Count: 2, FirstDueDate: t0.Add(24 * time.Hour)})
	require.NoError(t, err)

	linked := f.deal(t, "u2", domain.PaymentPlanConstructionLinked)
	_, err = f.installments.Generate(ctx, "sales-1", linked.ID, service.PlanRequest{Milestones: []domain.Milestone{{Percentage: 100}}})
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	n, err := f.installments.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = f.installments.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestInstallmentService_RecordPayment(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	d := f.deal(t, "u1", domain.PaymentPlanMonthly)
	plan, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Count: 2, FirstDueDate: t0})
	require.NoError(t, err)
	first := plan[0]

	_, err = f.installments.RecordPayment(ctx, "finance-1", first.ID, first.Amount, "", time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.installments.RecordPayment(ctx, "finance-1", first.ID, first.Amount-1, "cash", time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	f.clock.Advance(24 * time.Hour)
	_, err = f.installments.MarkOverdue(ctx)
	require.NoError(t, err)

	paidAt := t0.Add(36 * time.Hour)
	paid, err := f.installments.RecordPayment(ctx, "finance-1", first.ID, first.Amount, "cash", paidAt)
	require.NoError(t, err, "overdue installments can still be paid")
	assert.Equal(t, domain.InstallmentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(paidAt))

	_, err = f.installments.RecordPayment(ctx, "finance-1", first.ID, first.Amount, "cash", paidAt)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.installments.RecordPayment(ctx, "finance-1", "missing", 1, "cash", paidAt)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInstallmentService_ListInstallmentsUnknownDeal(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	_, err := f.installments.ListInstallments(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
