package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"construction-sales-ledger/internal/jobs"
	"construction-sales-ledger/internal/service"
)

func init() {
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:       "sweep JOB",
	Short:     "Run one scheduled sweep now",
	Long:      `Run release-expired-reservations, mark-overdue-installments or all, once.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{jobs.JobReleaseExpiredReservations, jobs.JobMarkOverdueInstallments, "all"},
	RunE:      runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close(cmd.Context())

	runner := jobs.NewJobRunner(&jobs.Services{
		Reservation: service.NewReservationService(e.store, e.recorder, nil),
		Installment: service.NewInstallmentService(e.store, e.recorder, nil, e.cfg.Installments.Interval, e.cfg.Installments.MilestoneGrace),
	}, e.cfg)

	switch args[0] {
	case jobs.JobReleaseExpiredReservations:
		err = runner.ReleaseExpiredReservations()
	case jobs.JobMarkOverdueInstallments:
		err = runner.MarkOverdueInstallments()
	case "all":
		err = runner.RunAll()
	default:
		return fmt.Errorf("unknown job %q", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s done\n", args[0])
	return nil
}
