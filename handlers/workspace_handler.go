package handlers

import (
	"context"
	"net/http"
	"time"

	"brandflowAPI/internal/records"
	"brandflowAPI/services"
)

// WorkspaceHandler serves the business, academy and health workspaces.
type WorkspaceHandler struct {
	businessService *services.BusinessService
	academyService  *services.AcademyService
	healthService   *services.HealthService
}

func NewWorkspaceHandler(business *services.BusinessService, academy *services.AcademyService, health *services.HealthService) *WorkspaceHandler {
	return &WorkspaceHandler{
		businessService: business,
		academyService:  academy,
		healthService:   health,
	}
}

// POST /api/v1/business/tasks
func (h *WorkspaceHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), generationTimeout)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req records.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.businessService.CreateTask(ctx, sess, req)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

// GET /api/v1/business/tasks
func (h *WorkspaceHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	items, err := h.businessService.Log(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

// POST /api/v1/academy/courses
func (h *WorkspaceHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), generationTimeout)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req records.CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	course, err := h.academyService.Generate(ctx, sess, req.Goal)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, course)
}

// GET /api/v1/academy/courses
func (h *WorkspaceHandler) Courses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	courses, err := h.academyService.Courses(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, courses)
}

// POST /api/v1/health/reports
func (h *WorkspaceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), generationTimeout)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req records.HealthRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.healthService.Analyze(ctx, sess, req.Lifestyle)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, report)
}

// GET /api/v1/health/reports
func (h *WorkspaceHandler) Reports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	reports, err := h.healthService.Reports(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// GET /api/v1/health/reports/latest
func (h *WorkspaceHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	report, err := h.healthService.Latest(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	if report == nil {
		respondWithError(w, http.StatusNotFound, "No health reports yet")
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
