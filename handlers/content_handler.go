package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"brandflowAPI/internal/records"
	"brandflowAPI/services"
)

const (
	generationTimeout = 2 * time.Minute
	videoTimeout      = 6 * time.Minute
)

type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// POST /api/v1/content
func (h *ContentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), generationTimeout)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req records.GenerateContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.contentService.Generate(ctx, sess, req)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

// GET /api/v1/content/history
func (h *ContentHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	items, err := h.contentService.History(ctx, sess)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

// GET /api/v1/content/history/{id}
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	item, err := h.contentService.Get(ctx, sess, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

// GET /api/v1/content/history/{id}/image
func (h *ContentHandler) Image(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	img, err := h.contentService.Image(ctx, sess, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithBytes(w, http.DetectContentType(img), "", img)
}

// GET /api/v1/content/history/{id}/audio/{track}[?format=buffer]
func (h *ContentHandler) Audio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	track := services.AudioTrack(vars["track"])

	if r.URL.Query().Get("format") == "buffer" {
		buf, err := h.contentService.AudioBuffer(ctx, sess, vars["id"], track)
		if err != nil {
			respondWithServiceError(ctx, w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, buf)
		return
	}

	wav, err := h.contentService.AudioWAV(ctx, sess, vars["id"], track)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithBytes(w, "audio/wav", "brandflow-"+string(track)+".wav", wav)
}

// POST /api/v1/content/video
func (h *ContentHandler) Video(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), videoTimeout)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	var req records.VideoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	clip, err := h.contentService.Video(ctx, sess, req.Prompt)
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithBytes(w, "video/mp4", "brandflow-video.mp4", clip)
}
