package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"construction-sales-ledger/internal/audit"
	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/jobs"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/repository/sqlstore"
	"construction-sales-ledger/internal/scheduler"
	"construction-sales-ledger/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'release-expired-reservations', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Sales Ledger cronjob runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Database
	logger.Info("Connecting to database...", "driver", cfg.Database.Driver, "host", cfg.Database.Host)
	db, err := sqlstore.Connect(ctx, cfg.Database.Driver, cfg.GetDatabaseDSN(), cfg.Database.Migrate)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := sqlstore.NewStore(db)

	recorder := audit.NewRecorder(sqlstore.NewAuditRepository(db), cfg.Audit.Workers, cfg.Audit.QueueSize, cfg.Audit.WriteTimeout)
	recorder.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := recorder.Stop(stopCtx); err != nil {
			logger.Error("Audit recorder did not drain", "error", err)
		}
	}()

	// Initialize Services
	jobServices := &jobs.Services{
		Reservation: service.NewReservationService(store, recorder, nil),
		Installment: service.NewInstallmentService(store, recorder, nil, cfg.Installments.Interval, cfg.Installments.MilestoneGrace),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := runJobOnce(jobRunner, *runOnce); err != nil {
			logger.Error("Job execution failed", "job", *runOnce, "error", err)
			return
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Invalid schedule", "error", err)
		return
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) error {
	switch jobName {
	case jobs.JobReleaseExpiredReservations:
		return jobRunner.ReleaseExpiredReservations()
	case jobs.JobMarkOverdueInstallments:
		return jobRunner.MarkOverdueInstallments()
	case "all":
		return jobRunner.RunAll()
	default:
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - %s\n", jobs.JobReleaseExpiredReservations)
		fmt.Printf("  - %s\n", jobs.JobMarkOverdueInstallments)
		fmt.Printf("  - all\n")
		return fmt.Errorf("unknown job name %q", jobName)
	}
}
