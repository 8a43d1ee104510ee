package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const servicePrefix = "salesledger.v1."

// unary builds the method descriptor of a JSON-coded unary RPC whose server
// implementation is a *H.
func unary[H any, Req any, Resp any](service, method string, call func(h H, ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + servicePrefix + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := srv.(H)
			if interceptor == nil {
				return call(h, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(h, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type reservationServer interface {
	Reserve(context.Context, *ReserveRequest) (*UnitResponse, error)
	Release(context.Context, *UnitRequest) (*UnitResponse, error)
	ReleaseExpired(context.Context, *Empty) (*ReleaseExpiredResponse, error)
	GetUnit(context.Context, *UnitRequest) (*UnitResponse, error)
}

var ReservationServiceDesc = grpc.ServiceDesc{
	ServiceName: servicePrefix + "ReservationService",
	HandlerType: (*reservationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ReservationService", "Reserve", reservationServer.Reserve),
		unary("ReservationService", "Release", reservationServer.Release),
		unary("ReservationService", "ReleaseExpired", reservationServer.ReleaseExpired),
		unary("ReservationService", "GetUnit", reservationServer.GetUnit),
	},
}

type dealServer interface {
	CreateDeal(context.Context, *CreateDealRequest) (*DealResponse, error)
	SignContract(context.Context, *DealRequest) (*DealResponse, error)
	CompleteDeal(context.Context, *DealRequest) (*DealResponse, error)
	CancelDeal(context.Context, *CancelDealRequest) (*DealResponse, error)
	GetDeal(context.Context, *DealRequest) (*DealResponse, error)
	GetDealByToken(context.Context, *DealByTokenRequest) (*PublicDealResponse, error)
	ListDealsByUnit(context.Context, *UnitRequest) (*ListDealsResponse, error)
	ListDealsByStatus(context.Context, *ListDealsByStatusRequest) (*ListDealsResponse, error)
}

var DealServiceDesc = grpc.ServiceDesc{
	ServiceName: servicePrefix + "DealService",
	HandlerType: (*dealServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("DealService", "CreateDeal", dealServer.CreateDeal),
		unary("DealService", "SignContract", dealServer.SignContract),
		unary("DealService", "CompleteDeal", dealServer.CompleteDeal),
		unary("DealService", "CancelDeal", dealServer.CancelDeal),
		unary("DealService", "GetDeal", dealServer.GetDeal),
		unary("DealService", "GetDealByToken", dealServer.GetDealByToken),
		unary("DealService", "ListDealsByUnit", dealServer.ListDealsByUnit),
		unary("DealService", "ListDealsByStatus", dealServer.ListDealsByStatus),
	},
}

type installmentServer interface {
	GenerateInstallments(context.Context, *GenerateInstallmentsRequest) (*InstallmentsResponse, error)
	ListInstallments(context.Context, *DealRequest) (*InstallmentsResponse, error)
	RecordPayment(context.Context, *RecordPaymentRequest) (*InstallmentResponse, error)
	MarkOverdue(context.Context, *Empty) (*CountResponse, error)
}

var InstallmentServiceDesc = grpc.ServiceDesc{
	ServiceName: servicePrefix + "InstallmentService",
	HandlerType: (*installmentServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("InstallmentService", "GenerateInstallments", installmentServer.GenerateInstallments),
		unary("InstallmentService", "ListInstallments", installmentServer.ListInstallments),
		unary("InstallmentService", "RecordPayment", installmentServer.RecordPayment),
		unary("InstallmentService", "MarkOverdue", installmentServer.MarkOverdue),
	},
}

type walletServer interface {
	GetWallet(context.Context, *WalletRequest) (*WalletResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	Credit(context.Context, *CreditRequest) (*TransactionResponse, error)
	PromoteToAvailable(context.Context, *PromoteRequest) (*TransactionResponse, error)
	VerifyWallet(context.Context, *WalletRequest) (*VerifyWalletResponse, error)
}

var WalletServiceDesc = grpc.ServiceDesc{
	ServiceName: servicePrefix + "WalletService",
	HandlerType: (*walletServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("WalletService", "GetWallet", walletServer.GetWallet),
		unary("WalletService", "ListTransactions", walletServer.ListTransactions),
		unary("WalletService", "Credit", walletServer.Credit),
		unary("WalletService", "PromoteToAvailable", walletServer.PromoteToAvailable),
		unary("WalletService", "VerifyWallet", walletServer.VerifyWallet),
	},
}

type payoutServer interface {
	RequestPayout(context.Context, *RequestPayoutRequest) (*PayoutResponse, error)
	ProcessPayout(context.Context, *ProcessPayoutRequest) (*PayoutResponse, error)
	GetPayout(context.Context, *PayoutRequest) (*PayoutResponse, error)
	ListPayoutsByStatus(context.Context, *ListPayoutsByStatusRequest) (*ListPayoutsResponse, error)
}

var PayoutServiceDesc = grpc.ServiceDesc{
	ServiceName: servicePrefix + "PayoutService",
	HandlerType: (*payoutServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("PayoutService", "RequestPayout", payoutServer.RequestPayout),
		unary("PayoutService", "ProcessPayout", payoutServer.ProcessPayout),
		unary("PayoutService", "GetPayout", payoutServer.GetPayout),
		unary("PayoutService", "ListPayoutsByStatus", payoutServer.ListPayoutsByStatus),
	},
}

type taskEventServer interface {
	TaskApproved(context.Context, *TaskApprovedRequest) (*TransactionResponse, error)
	TaskFinalApproved(context.Context, *TaskRequest) (*TransactionResponse, error)
	MilestoneCompleted(context.Context, *MilestoneCompletedRequest) (*CountResponse, error)
}

var TaskEventServiceDesc = grpc.ServiceDesc{
	ServiceName: servicePrefix + "TaskEventService",
	HandlerType: (*taskEventServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("TaskEventService", "TaskApproved", taskEventServer.TaskApproved),
		unary("TaskEventService", "TaskFinalApproved", taskEventServer.TaskFinalApproved),
		unary("TaskEventService", "MilestoneCompleted", taskEventServer.MilestoneCompleted),
	},
}
