package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/session"
	"brandflowAPI/middleware"
	"brandflowAPI/services"
)

const maxBodyBytes = 16 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithBytes(w http.ResponseWriter, contentType, filename string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func requireSession(ctx context.Context, w http.ResponseWriter) (*session.Session, bool) {
	sess, ok := middleware.GetSession(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}
	return sess, true
}

// respondWithServiceError maps service errors onto HTTP statuses. Anything
// unexpected is logged and reported as a generic failure.
func respondWithServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyInput),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidUTR),
		errors.Is(err, services.ErrInvalidPlan):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrQuotaExceeded):
		respondWithError(w, http.StatusTooManyRequests, "Daily limit reached. Upgrade for more.")
	case errors.Is(err, services.ErrPlanRequired):
		respondWithError(w, http.StatusPaymentRequired, "This is an Enterprise feature. Please upgrade your plan.")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrNoPendingPayment):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, services.ErrGeneration):
		respondWithError(w, http.StatusBadGateway, "Generation failed. Please try again.")
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		logging.FromContext(ctx).WithError(err).Error("request failed")
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
