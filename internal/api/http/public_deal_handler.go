package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PublicDealHandler serves the read-only deal view shared with buyers via
// the deal's access token.
type PublicDealHandler struct {
	dealSvc service.DealService
}

func NewPublicDealHandler(dealSvc service.DealService) *PublicDealHandler {
	return &PublicDealHandler{dealSvc: dealSvc}
}

type publicInstallment struct {
	Sequence int                      `json:"sequence"`
	Amount   int64                    `json:"amount"`
	DueDate  *time.Time               `json:"due_date"` // null until the linked milestone completes
	Status   domain.InstallmentStatus `json:"status"`
}

type publicDeal struct {
	Status       domain.DealStatus      `json:"status"`
	PlanKind     domain.PaymentPlanKind `json:"plan_kind"`
	FinalPrice   int64                  `json:"final_price"`
	Discount     int64                  `json:"discount"`
	DownPayment  int64                  `json:"down_payment"`
	Installments []publicInstallment    `json:"installments"`
}

// HandleGetDeal handles GET /public/deals/{token}
func (h *PublicDealHandler) HandleGetDeal(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	deal, installments, err := h.dealSvc.GetDealByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Deal not found", http.StatusNotFound)
			return
		}
		logger.Error("Failed to load public deal", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	view := publicDeal{
		Status:       deal.Status,
		PlanKind:     deal.PlanKind,
		FinalPrice:   deal.FinalPrice,
		Discount:     deal.Discount,
		DownPayment:  deal.DownPayment,
		Installments: make([]publicInstallment, 0, len(installments)),
	}
	for _, inst := range installments {
		pi := publicInstallment{Sequence: inst.Sequence, Amount: inst.Amount, Status: inst.Status}
		if !inst.AwaitingMilestone() {
			due := inst.DueDate
			pi.DueDate = &due
		}
		view.Installments = append(view.Installments, pi)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		logger.Error("Failed to encode public deal", "error", err)
	}
}

// NewRouter registers the public deal view, health check and metrics endpoints.
func NewRouter(deals *PublicDealHandler, db Pinger) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/public/deals/{token}", deals.HandleGetDeal).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthz(db)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return router
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
