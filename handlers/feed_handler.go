package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"brandflowAPI/internal/feed"
	"brandflowAPI/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type FeedHandler struct {
	hub *feed.Hub
}

func NewFeedHandler(hub *feed.Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// GET /api/v1/feed/ws
func (h *FeedHandler) Connect(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(r.Context(), w)
	if !ok {
		return
	}
	log := logging.FromContext(r.Context())

	// Subscribe before the snapshot so no write between the two is missed.
	events, unsubscribe := h.hub.Subscribe(sess.UID)
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	initial, err := h.hub.Snapshot(ctx, sess.UID)
	cancel()
	if err != nil {
		respondWithServiceError(r.Context(), w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("feed: could not upgrade connection")
		return
	}

	log.WithField("subscribers", h.hub.Subscribers(sess.UID)).Info("feed connected")
	feed.NewClient(conn, events, log).Run(initial)
	log.Info("feed disconnected")
}
