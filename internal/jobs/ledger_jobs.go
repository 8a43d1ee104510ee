package jobs

import (
	"context"

	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/metrics"
)

const (
	JobReleaseExpiredReservations = "release-expired-reservations"
	JobMarkOverdueInstallments    = "mark-overdue-installments"
)

// ReleaseExpiredReservations returns lapsed reservations to the available
// pool and cancels the uncommitted deals that held them.
func (jr *JobRunner) ReleaseExpiredReservations() error {
	return jr.runWithRecovery(JobReleaseExpiredReservations, func() error {
		released, err := jr.services.Reservation.ReleaseExpired(context.Background())
		metrics.SweepAffected.WithLabelValues(JobReleaseExpiredReservations).Add(float64(len(released)))
		logger.Sweep(JobReleaseExpiredReservations, len(released), err)
		return err
	})
}

// MarkOverdueInstallments reclassifies pending installments past their due date.
func (jr *JobRunner) MarkOverdueInstallments() error {
	return jr.runWithRecovery(JobMarkOverdueInstallments, func() error {
		n, err := jr.services.Installment.MarkOverdue(context.Background())
		logger.Sweep(JobMarkOverdueInstallments, int(n), err)
		if err != nil {
			return err
		}
		metrics.SweepAffected.WithLabelValues(JobMarkOverdueInstallments).Add(float64(n))
		return nil
	})
}
