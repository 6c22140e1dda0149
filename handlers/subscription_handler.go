package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"brandflowAPI/internal/payment"
	"brandflowAPI/services"
)

type SubscriptionHandler struct {
	paymentService *services.PaymentService
}

func NewSubscriptionHandler(paymentService *services.PaymentService) *SubscriptionHandler {
	return &SubscriptionHandler{paymentService: paymentService}
}

type planResponse struct {
	payment.Plan
	UPILink string `json:"upiLink"`
	QRPath  string `json:"qrPath"`
}

// GET /api/v1/plans
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans := h.paymentService.Plans()
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, planResponse{
			Plan:    p,
			UPILink: h.paymentService.UPILink(p),
			QRPath:  "/api/v1/plans/" + string(p.Name) + "/qr",
		})
	}
	respondWithJSON(w, http.StatusOK, out)
}

// GET /api/v1/plans/{plan}/qr
func (h *SubscriptionHandler) PlanQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.paymentService.PaymentQR(mux.Vars(r)["plan"])
	if err != nil {
		respondWithServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	respondWithBytes(w, "image/png", "", png)
}

// POST /api/v1/subscription/payment
func (h *SubscriptionHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req payment.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.paymentService.Submit(ctx, sess, req.Plan, req.UTR)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

// GET /api/v1/subscription/payment
func (h *SubscriptionHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	p, err := h.paymentService.Pending(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	if p == nil {
		respondWithError(w, http.StatusNotFound, "No pending payment")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}
