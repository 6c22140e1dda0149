package handlers

import (
	"context"
	"net/http"
	"time"

	"brandflowAPI/services"
)

type SearchHandler struct {
	searchService *services.SearchService
}

func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// GET /api/v1/search?q=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, ok := requireSession(ctx, w)
	if !ok {
		return
	}

	results, err := h.searchService.Search(ctx, sess, r.URL.Query().Get("q"))
	if err != nil {
		respondWithServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}
