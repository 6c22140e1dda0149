// Package feed fans store changes out to the live subscribers of each user.
package feed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"brandflowAPI/internal/realtime"
)

// Collections a subscriber is told about. Device tokens stay server-side.
var Collections = []string{
	realtime.CollectionProfile,
	realtime.CollectionUsage,
	realtime.CollectionHistory,
	realtime.CollectionBusinessLog,
	realtime.CollectionCourses,
	realtime.CollectionHealthReports,
	realtime.CollectionPending,
}

const subscriberBuffer = 64

// Event is one change under a user's namespace. Key is empty when the whole
// collection node changed. Record is JSON null after a delete.
type Event struct {
	Collection string          `json:"collection"`
	Key        string          `json:"key,omitempty"`
	Record     json.RawMessage `json:"record"`
}

type subscriber struct {
	ch chan Event
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool

	reader realtime.Store
	log    *logrus.Logger
}

// NewHub returns a hub that reads changed nodes back from reader.
func NewHub(reader realtime.Store, log *logrus.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		reader: reader,
		log:    log,
	}
}

func feedable(collection string) bool {
	for _, c := range Collections {
		if c == collection {
			return true
		}
	}
	return false
}

// Subscribe registers a subscriber for uid. The returned func must be called
// once the subscriber goes away; the channel is closed by it or by Close.
func (h *Hub) Subscribe(uid string) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	if h.subs[uid] == nil {
		h.subs[uid] = make(map[*subscriber]struct{})
	}
	h.subs[uid][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() { h.remove(uid, s) })
	}
}

func (h *Hub) remove(uid string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[uid]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.ch)
	if len(set) == 0 {
		delete(h.subs, uid)
	}
}

func (h *Hub) Subscribers(uid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[uid])
}

// Publish delivers ev to every live subscriber of uid. A subscriber whose
// buffer is full misses the event.
func (h *Hub) Publish(uid string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[uid] {
		select {
		case s.ch <- ev:
		default:
			h.log.WithFields(logrus.Fields{
				"uid":        uid,
				"collection": ev.Collection,
			}).Warn("feed subscriber is slow, dropping event")
		}
	}
}

// OnChange is a realtime.ChangeFunc: it reads the written node back and
// publishes it to the owner's subscribers.
func (h *Hub) OnChange(ctx context.Context, path string) {
	uid, collection, ok := realtime.Owner(path)
	if !ok || !feedable(collection) || h.Subscribers(uid) == 0 {
		return
	}

	ev := Event{Collection: collection}
	if rest := strings.TrimPrefix(strings.Trim(path, "/"), realtime.CollectionPath(uid, collection)+"/"); rest != strings.Trim(path, "/") {
		ev.Key = rest
	}

	if err := h.reader.Get(ctx, path, &ev.Record); err != nil {
		h.log.WithError(err).WithField("path", path).Error("feed: failed to read changed node")
		return
	}
	h.Publish(uid, ev)
}

// Snapshot returns the current value of every collection for uid, the
// first thing a new subscriber receives.
func (h *Hub) Snapshot(ctx context.Context, uid string) ([]Event, error) {
	out := make([]Event, 0, len(Collections))
	for _, c := range Collections {
		ev := Event{Collection: c}
		if err := h.reader.Get(ctx, realtime.CollectionPath(uid, c), &ev.Record); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for uid, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, uid)
	}
}
