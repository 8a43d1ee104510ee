package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/metrics"
)

// Handlers bundles the service implementations exposed over gRPC.
type Handlers struct {
	Reservation *ReservationHandler
	Deal        *DealHandler
	Installment *InstallmentHandler
	Wallet      *WalletHandler
	Payout      *PayoutHandler
	TaskEvent   *TaskEventHandler
}

// NewServer builds the gRPC server: auth runs first, then error mapping and
// metrics around the handler. The health service reports SERVING for every
// ledger service.
func NewServer(auth grpc.UnaryServerInterceptor, h Handlers) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(auth, UnaryErrorInterceptor()),
	)

	s.RegisterService(&ReservationServiceDesc, h.Reservation)
	s.RegisterService(&DealServiceDesc, h.Deal)
	s.RegisterService(&InstallmentServiceDesc, h.Installment)
	s.RegisterService(&WalletServiceDesc, h.Wallet)
	s.RegisterService(&PayoutServiceDesc, h.Payout)
	s.RegisterService(&TaskEventServiceDesc, h.TaskEvent)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, desc := range []*grpc.ServiceDesc{
		&ReservationServiceDesc, &DealServiceDesc, &InstallmentServiceDesc,
		&WalletServiceDesc, &PayoutServiceDesc, &TaskEventServiceDesc,
	} {
		healthServer.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	return s, healthServer
}

// UnaryErrorInterceptor converts domain errors to status errors and records
// request metrics.
func UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		metrics.ObserveRPC(info.FullMethod, started, err)
		if err != nil {
			logger.WarnContext(ctx, "RPC failed", "method", info.FullMethod, "error", err)
			return nil, toStatus(err)
		}
		return resp, nil
	}
}
