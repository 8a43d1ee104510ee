package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/jobs"
)

func runner(releaseSpec, overdueSpec string) *jobs.JobRunner {
	cfg := &config.Config{}
	cfg.Scheduler.ReleaseExpiredReservations = releaseSpec
	cfg.Scheduler.MarkOverdueInstallments = overdueSpec
	return jobs.NewJobRunner(&jobs.Services{}, cfg)
}

func TestNewScheduler_RegistersSweeps(t *testing.T) {
	s, err := NewScheduler(runner("0 */5 * * * *", "0 5 0 * * *"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())
}

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(runner("every five minutes", "0 5 0 * * *"))
	assert.Error(t, err)

	// five-field specs lack the seconds column
	_, err = NewScheduler(runner("0 */5 * * * *", "5 0 * * *"))
	assert.Error(t, err)
}
