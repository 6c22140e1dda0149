package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"brandflowAPI/internal/payment"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/session"
	"brandflowAPI/services"
)

type decisionFunc func(ctx context.Context, admin *session.Session, uid string) (*payment.DecisionResponse, error)

type AdminHandler struct {
	userService    *services.UserService
	paymentService *services.PaymentService
}

func NewAdminHandler(userService *services.UserService, paymentService *services.PaymentService) *AdminHandler {
	return &AdminHandler{
		userService:    userService,
		paymentService: paymentService,
	}
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

// GET /api/v1/admin/payments
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pending, err := h.paymentService.ListPending(ctx)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pending)
}

// POST /api/v1/admin/payments/{uid}/approve
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.paymentService.Approve)
}

// POST /api/v1/admin/payments/{uid}/reject
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.paymentService.Reject)
}

func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, decide decisionFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	admin, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	uid := mux.Vars(r)["uid"]
	if !realtime.ValidKey(uid) {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	res, err := decide(ctx, admin, uid)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/admin/payments/ledger?limit=
func (h *AdminHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	entries, err := h.paymentService.Ledger(ctx, limit)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}
