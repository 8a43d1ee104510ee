package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "construction-sales-ledger/internal/api/grpc"
	"construction-sales-ledger/internal/api/grpc/interceptor"
	httpapi "construction-sales-ledger/internal/api/http"
	"construction-sales-ledger/internal/audit"
	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/repository/sqlstore"
	"construction-sales-ledger/internal/security"
	"construction-sales-ledger/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Sales Ledger server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())
	logger.Info("Database configuration", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "database", cfg.Database.Database)

	ctx := context.Background()

	// Initialize Database
	db, err := sqlstore.Connect(ctx, cfg.Database.Driver, cfg.GetDatabaseDSN(), cfg.Database.Migrate)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := sqlstore.NewStore(db)

	// Audit entries are written off the request path
	recorder := audit.NewRecorder(sqlstore.NewAuditRepository(db), cfg.Audit.Workers, cfg.Audit.QueueSize, cfg.Audit.WriteTimeout)
	recorder.Start()

	// Initialize Services
	reservationSvc := service.NewReservationService(store, recorder, nil)
	dealSvc := service.NewDealService(store, recorder, nil, cfg.Deal.ReservationDuration)
	installmentSvc := service.NewInstallmentService(store, recorder, nil, cfg.Installments.Interval, cfg.Installments.MilestoneGrace)
	walletSvc := service.NewWalletService(store, recorder, nil, service.PromotionPolicy(cfg.Wallet.PromotionPolicy))
	payoutSvc := service.NewPayoutService(store, recorder, nil)
	taskEventSvc := service.NewTaskEventService(walletSvc, installmentSvc)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// Set up gRPC server
	grpcServer, healthServer := api.NewServer(authInterceptor.Unary(), api.Handlers{
		Reservation: api.NewReservationHandler(reservationSvc),
		Deal:        api.NewDealHandler(dealSvc),
		Installment: api.NewInstallmentHandler(installmentSvc),
		Wallet:      api.NewWalletHandler(walletSvc),
		Payout:      api.NewPayoutHandler(payoutSvc),
		TaskEvent:   api.NewTaskEventHandler(taskEventSvc),
	})

	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	// Set up HTTP server for the public deal view, health and metrics
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(httpapi.NewPublicDealHandler(dealSvc), db),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err := recorder.Stop(shutdownCtx); err != nil {
		logger.Error("Audit recorder did not drain", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
