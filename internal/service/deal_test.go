package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/service"
)

func TestDealService_CreateDealReservesUnit(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")

	d := f.deal(t, "u1", domain.PaymentPlanMonthly)
	assert.Equal(t, domain.DealStatusReserved, d.Status)
	require.NotNil(t, d.PublicToken)

	u, err := f.reservations.GetUnit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.UnitSalesStatusReserved, u.SalesStatus)
	assert.True(t, u.ReservationExpiresAt.Equal(t0.Add(reservationTTL)))

	_, err = f.deals.CreateDeal(ctx, service.CreateDealRequest{
		UnitID: "u1", LeadID: "lead-2", ActorID: "sales-2", FinalPrice: 1_000_000, PlanKind: domain.PaymentPlanCash,
	})
	assert.ErrorIs(t, err, domain.ErrUnitUnavailable)
}

func TestDealService_CreateDealValidation(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	f.unit(t, "u1")

	cases := []struct {
		name string
		req  service.CreateDealRequest
		want error
	}{
		{"MissingLead", service.CreateDealRequest{UnitID: "u1", ActorID: "s", FinalPrice: 1, PlanKind: domain.PaymentPlanCash}, domain.ErrInvalidArgument},
		{"ZeroPrice", service.CreateDealRequest{UnitID: "u1", LeadID: "l", ActorID: "s", PlanKind: domain.PaymentPlanCash}, domain.ErrInvalidAmount},
		{"DownPaymentAbovePrice", service.CreateDealRequest{UnitID: "u1", LeadID: "l", ActorID: "s", FinalPrice: 10, DownPayment: 11, PlanKind: domain.PaymentPlanCash}, domain.ErrInvalidAmount},
		{"UnknownPlan", service.CreateDealRequest{UnitID: "u1", LeadID: "l", ActorID: "s", FinalPrice: 10, PlanKind: "barter"}, domain.ErrInvalidArgument},
		{"FullyPrepaidMonthly", service.CreateDealRequest{UnitID: "u1", LeadID: "l", ActorID: "s", FinalPrice: 10, DownPayment: 10, PlanKind: domain.PaymentPlanMonthly}, domain.ErrInvalidAmount},
		{"FullyPrepaidConstruction", service.CreateDealRequest{UnitID: "u1", LeadID: "l", ActorID: "s", FinalPrice: 10, DownPayment: 10, PlanKind: domain.PaymentPlanConstructionLinked}, domain.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.deals.CreateDeal(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.deals.CreateDeal(context.Background(), service.CreateDealRequest{
		UnitID: "missing", LeadID: "l", ActorID: "s", FinalPrice: 10, PlanKind: domain.PaymentPlanCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDealService_CreateDealAdoptsOwnReservation(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")

	_, err := f.reservations.Reserve(ctx, "u1", "sales-1", time.Minute)
	require.NoError(t, err)

	d := f.deal(t, "u1", domain.PaymentPlanCash)
	assert.Equal(t, "sales-1", d.CreatedBy)

	u, err := f.reservations.GetUnit(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u.ReservationExpiresAt)
	assert.True(t, u.ReservationExpiresAt.Equal(t0.Add(reservationTTL)), "the deal restarts the reservation clock")

	f.clock.Advance(2 * time.Minute)
	released, err := f.reservations.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, released)

	got, err := f.deals.GetDeal(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusReserved, got.Status)

	_, err = f.deals.CreateDeal(ctx, service.CreateDealRequest{
		UnitID: "u1", LeadID: "lead-2", ActorID: "sales-1", FinalPrice: 1_000_000, PlanKind: domain.PaymentPlanCash,
	})
	assert.ErrorIs(t, err, domain.ErrUnitUnavailable, "one live deal per unit even for the same holder")
}

func TestDealService_CreateDealRejectsLapsedOwnReservation(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")

	_, err := f.reservations.Reserve(ctx, "u1", "sales-1", time.Minute)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Minute)

	_, err = f.deals.CreateDeal(ctx, service.CreateDealRequest{
		UnitID: "u1", LeadID: "lead-1", ActorID: "sales-1", FinalPrice: 1_000_000, PlanKind: domain.PaymentPlanCash,
	})
	assert.ErrorIs(t, err, domain.ErrUnitUnavailable)
}

func TestDealService_CreateDealFullyPrepaidCash(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")

	d, err := f.deals.CreateDeal(ctx, service.CreateDealRequest{
		UnitID: "u1", LeadID: "lead-1", ActorID: "sales-1",
		FinalPrice: 1_000_000, DownPayment: 1_000_000, PlanKind: domain.PaymentPlanCash,
	})
	require.NoError(t, err)
	_, err = f.deals.SignContract(ctx, "sales-1", d.ID)
	require.NoError(t, err)
	done, err := f.deals.Complete(ctx, "sales-1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusCompleted, done.Status)
}

func TestDealService_SignContractNeedsReservedUnit(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	d := f.deal(t, "u1", domain.PaymentPlanMonthly)

	// The expiry sweep frees the unit before the signing transaction runs.
	f.clock.Advance(reservationTTL + time.Minute)
	ok, err := f.store.Units().ReleaseExpired(ctx, "u1", f.clock.Now())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.deals.SignContract(ctx, "sales-1", d.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.deals.GetDeal(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusReserved, got.Status)
}

func TestDealService_ConcurrentCreateDealOnlyOneWins(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	f.unit(t, "u1")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.deals.CreateDeal(context.Background(), service.CreateDealRequest{
				UnitID:     "u1",
				LeadID:     fmt.Sprintf("lead-%d", i),
				ActorID:    fmt.Sprintf("sales-%d", i),
				FinalPrice: 1_000_000,
				PlanKind:   domain.PaymentPlanCash,
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrUnitUnavailable)
	}
	assert.Equal(t, 1, won)

	deals, err := f.deals.ListDealsByUnit(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, deals, 1)
}

func TestDealService_Lifecycle(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	d := f.deal(t, "u1", domain.PaymentPlanMonthly)

	_, err := f.deals.Complete(ctx, "sales-1", d.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "cannot complete before signing")

	signed, err := f.deals.SignContract(ctx, "sales-1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusContractSigned, signed.Status)

	_, err = f.deals.SignContract(ctx, "sales-1", d.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.deals.Complete(ctx, "sales-1", d.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "monthly plan without installments")

	plan, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Count: 3, FirstDueDate: t0.Add(monthly)})
	require.NoError(t, err)

	_, err = f.deals.Complete(ctx, "sales-1", d.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "unpaid installments block completion")

	for _, inst := range plan {
		_, err := f.installments.RecordPayment(ctx, "finance-1", inst.ID, inst.Amount, "bank_transfer", time.Time{})
		require.NoError(t, err)
	}

	done, err := f.deals.Complete(ctx, "sales-1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	u, err := f.reservations.GetUnit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.UnitSalesStatusSold, u.SalesStatus)
	assert.Nil(t, u.ReservationHolderID)

	_, err = f.deals.Cancel(ctx, "sales-1", d.ID, "changed mind")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "completed is terminal")

	assert.Contains(t, f.audit.actions(), domain.AuditActionComplete)
}

func TestDealService_CompleteCashWithoutInstallments(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")

	d, err := f.deals.CreateDeal(ctx, service.CreateDealRequest{
		UnitID: "u1", LeadID: "lead-1", ActorID: "sales-1", FinalPrice: 500_000, DownPayment: 500_000, PlanKind: domain.PaymentPlanCash,
	})
	require.NoError(t, err)

	plan, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{})
	require.NoError(t, err)
	assert.Empty(t, plan)

	_, err = f.deals.SignContract(ctx, "sales-1", d.ID)
	require.NoError(t, err)
	_, err = f.deals.Complete(ctx, "sales-1", d.ID)
	assert.NoError(t, err)
}

func TestDealService_CancelWaivesAndReleases(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	d := f.deal(t, "u1", domain.PaymentPlanMonthly)

	plan, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Count: 2, FirstDueDate: t0.Add(monthly)})
	require.NoError(t, err)
	_, err = f.installments.RecordPayment(ctx, "finance-1", plan[0].ID, plan[0].Amount, "cash", time.Time{})
	require.NoError(t, err)

	cancelled, err := f.deals.Cancel(ctx, "sales-1", d.ID, "financing fell through")
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusCancelled, cancelled.Status)
	assert.Equal(t, "financing fell through", cancelled.CancelReason)

	list, err := f.installments.ListInstallments(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, list, 2, "installments are kept for the record")
	assert.Equal(t, domain.InstallmentStatusPaid, list[0].Status)
	assert.Equal(t, domain.InstallmentStatusWaived, list[1].Status)

	u, err := f.reservations.GetUnit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.UnitSalesStatusAvailable, u.SalesStatus)

	_, err = f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Count: 2, FirstDueDate: t0})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDealService_GetDealByToken(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	f.unit(t, "u1")
	d := f.deal(t, "u1", domain.PaymentPlanMonthly)
	_, err := f.installments.Generate(ctx, "sales-1", d.ID, service.PlanRequest{Count: 3, FirstDueDate: t0.Add(monthly)})
	require.NoError(t, err)

	got, installments, err := f.deals.GetDealByToken(ctx, *d.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Len(t, installments, 3)

	_, _, err = f.deals.GetDealByToken(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, _, err = f.deals.GetDealByToken(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDealService_ListDealsByStatus(t *testing.T) {
	f := newFixture(t, service.PromoteOnFinalApproval)
	ctx := context.Background()
	for _, id := range []string{"u1", "u2", "u3"} {
		f.unit(t, id)
		f.deal(t, id, domain.PaymentPlanCash)
	}

	page, total, err := f.deals.ListDealsByStatus(ctx, domain.DealStatusReserved, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(3), total)
	assert.Len(t, page, 2)

	page, _, err = f.deals.ListDealsByStatus(ctx, domain.DealStatusReserved, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
