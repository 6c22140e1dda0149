package handlers

import (
	"context"
	"net/http"
	"time"

	"brandflowAPI/services"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.authService.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

// POST /api/v1/auth/password-reset
//
// Answers 202 for any well-formed email, registered or not.
func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.PasswordReset(ctx, req.Email); err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "If the account exists, a reset link has been sent"})
}
