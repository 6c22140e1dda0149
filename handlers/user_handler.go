package handlers

import (
	"context"
	"net/http"
	"time"

	"brandflowAPI/internal/profile"
	"brandflowAPI/services"
)

type UserHandler struct {
	userService  *services.UserService
	usageService *services.UsageService
}

func NewUserHandler(userService *services.UserService, usageService *services.UsageService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		usageService: usageService,
	}
}

// GET /api/v1/user
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	p, err := h.userService.Profile(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// PUT /api/v1/user
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req profile.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.userService.UpdateName(ctx, sess, req.Name)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// GET /api/v1/user/usage
func (h *UserHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	view, err := h.usageService.Today(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// POST /api/v1/user/devices
func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req profile.RegisterDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.RegisterDevice(ctx, sess, req.Token, req.Platform); err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Device registered"})
}
