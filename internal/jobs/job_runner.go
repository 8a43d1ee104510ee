package jobs

import (
	"fmt"

	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/metrics"
	"construction-sales-ledger/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Reservation service.ReservationService
	Installment service.InstallmentService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and reports the
// outcome. Every job is an idempotent sweep, so a failed run is simply
// repeated by the next tick.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.JobRuns.WithLabelValues(jobName, outcome).Inc()
	}()

	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName)
	return nil
}

// RunAll runs every sweep once (for manual execution)
func (jr *JobRunner) RunAll() error {
	var firstErr error
	for _, job := range []func() error{jr.ReleaseExpiredReservations, jr.MarkOverdueInstallments} {
		if err := job(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
