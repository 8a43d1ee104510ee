package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/repository/sqlstore"
	"construction-sales-ledger/internal/service"
)

var t0 = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// auditLog collects audit entries in memory.
type auditLog struct {
	mu      sync.Mutex
	entries []recorded
}

type recorded struct {
	actor    string
	action   domain.AuditAction
	entity   string
	entityID string
}

func (a *auditLog) Record(_ context.Context, actorID string, action domain.AuditAction, entityType, entityID string, _, _ any) {
	a.mu.Lock()
	a.entries = append(a.entries, recorded{actorID, action, entityType, entityID})
	a.mu.Unlock()
}

func (a *auditLog) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.action
	}
	return out
}

type fixture struct {
	store        *sqlstore.Store
	clock        *fakeClock
	audit        *auditLog
	reservations service.ReservationService
	deals        service.DealService
	installments service.InstallmentService
	wallets      service.WalletService
	payouts      service.PayoutService
	tasks        service.TaskEventService
}

const (
	reservationTTL = 72 * time.Hour
	monthly        = 30 * 24 * time.Hour
	grace          = 14 * 24 * time.Hour
)

func newFixture(t *testing.T, policy service.PromotionPolicy) *fixture {
	t.Helper()
	db, err := sqlstore.Connect(context.Background(), sqlstore.DriverSQLite, ":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		store: sqlstore.NewStore(db),
		clock: &fakeClock{now: t0},
		audit: &auditLog{},
	}
	f.reservations = service.NewReservationService(f.store, f.audit, f.clock.Now)
	f.deals = service.NewDealService(f.store, f.audit, f.clock.Now, reservationTTL)
	f.installments = service.NewInstallmentService(f.store, f.audit, f.clock.Now, monthly, grace)
	f.wallets = service.NewWalletService(f.store, f.audit, f.clock.Now, policy)
	f.payouts = service.NewPayoutService(f.store, f.audit, f.clock.Now)
	f.tasks = service.NewTaskEventService(f.wallets, f.installments)
	return f
}

func (f *fixture) unit(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.Units().Create(context.Background(), &domain.Unit{
		ID:          id,
		ProjectID:   "tower-a",
		SalesStatus: domain.UnitSalesStatusAvailable,
		ListPrice:   1_000_000,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}))
}

func (f *fixture) deal(t *testing.T, unitID string, plan domain.PaymentPlanKind) *domain.Deal {
	t.Helper()
	d, err := f.deals.CreateDeal(context.Background(), service.CreateDealRequest{
		UnitID:      unitID,
		LeadID:      "lead-1",
		ActorID:     "sales-1",
		FinalPrice:  1_000_000,
		DownPayment: 100_000,
		PlanKind:    plan,
	})
	require.NoError(t, err)
	return d
}

func sum(installments []domain.Installment) int64 {
	var total int64
	for _, i := range installments {
		total += i.Amount
	}
	return total
}

func (f *fixture) requireBalanced(t *testing.T, ownerID string) *domain.Wallet {
	t.Helper()
	v, err := f.wallets.Verify(context.Background(), ownerID)
	require.NoError(t, err)
	require.True(t, v.Consistent, "stored %+v, replayed %+v", v.Stored, v.Replayed)
	require.True(t, v.Balanced, "ledger identity broken: %+v", v.Stored)
	return &v.Stored
}
