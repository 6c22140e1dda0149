package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/session"
	"brandflowAPI/internal/usage"
)

type UsageService struct {
	store   realtime.Store
	metrics Metrics
	now     func() time.Time
}

func NewUsageService(store realtime.Store, metrics Metrics) *UsageService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &UsageService{store: store, metrics: metrics, now: time.Now}
}

func (s *UsageService) counter(ctx context.Context, uid, date string) (usage.Counter, error) {
	var c *usage.Counter
	if err := s.store.Get(ctx, realtime.UsagePath(uid, date), &c); err != nil {
		return usage.Counter{}, err
	}
	if c == nil {
		return usage.Counter{}, nil
	}
	return *c, nil
}

// Today returns the caller's counters for the current UTC day next to the
// limits of their plan.
func (s *UsageService) Today(ctx context.Context, sess *session.Session) (usage.View, error) {
	date := usage.Date(s.now())
	c, err := s.counter(ctx, sess.UID, date)
	if err != nil {
		return usage.View{}, fmt.Errorf("failed to read usage: %w", err)
	}

	limits := usage.LimitsFor(sess.Plan())
	return usage.View{
		Date:       date,
		Posts:      c.Posts,
		Voices:     c.Voices,
		PostLimit:  limits.Posts,
		VoiceLimit: limits.Voices,
	}, nil
}

type field int

const (
	fieldPosts field = iota
	fieldVoices
)

func (f field) of(c *usage.Counter) *int {
	if f == fieldVoices {
		return &c.Voices
	}
	return &c.Posts
}

// adjust applies delta to one counter field inside a store transaction.
// Increments stop at ceiling with ErrQuotaExceeded; decrements stop at zero.
func (s *UsageService) adjust(ctx context.Context, uid, date string, f field, delta, ceiling int) error {
	return s.store.Transaction(ctx, realtime.UsagePath(uid, date), func(node realtime.TxNode) (interface{}, error) {
		var c *usage.Counter
		if err := node.Unmarshal(&c); err != nil {
			return nil, err
		}
		if c == nil {
			c = &usage.Counter{}
		}

		n := f.of(c)
		if delta > 0 && *n+delta > ceiling {
			return nil, ErrQuotaExceeded
		}
		*n += delta
		if *n < 0 {
			*n = 0
		}
		return c, nil
	})
}

// ReservePost takes one post slot for today. It fails with ErrQuotaExceeded
// and changes nothing when the plan's daily post limit is used up.
func (s *UsageService) ReservePost(ctx context.Context, sess *session.Session) (*Reservation, error) {
	r := &Reservation{
		svc:    s,
		uid:    sess.UID,
		date:   usage.Date(s.now()),
		limits: usage.LimitsFor(sess.Plan()),
	}

	if err := s.adjust(ctx, r.uid, r.date, fieldPosts, 1, r.limits.Posts); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.metrics.QuotaRejected()
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("failed to reserve post: %w", err)
	}
	return r, nil
}

// Reservation holds the slots taken for one generation. Exactly one of
// Commit or Release should be called.
type Reservation struct {
	svc    *UsageService
	uid    string
	date   string
	limits usage.Limits

	mu    sync.Mutex
	voice bool
	done  bool
}

// ReserveVoice takes one voice slot. It reports false when the plan has no
// voice budget left, in which case narration is skipped.
func (r *Reservation) ReserveVoice(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done || r.voice {
		return r.voice
	}
	if r.limits.Voices <= 0 {
		return false
	}

	err := r.svc.adjust(ctx, r.uid, r.date, fieldVoices, 1, r.limits.Voices)
	if err != nil {
		if !errors.Is(err, ErrQuotaExceeded) {
			logging.FromContext(ctx).WithError(err).Warn("usage: voice reservation failed")
		}
		return false
	}
	r.voice = true
	return true
}

// Commit keeps the post slot. The voice slot is handed back when no audio
// was produced.
func (r *Reservation) Commit(ctx context.Context, voiceProduced bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return nil
	}
	r.done = true

	if r.voice && !voiceProduced {
		r.voice = false
		return r.release(ctx, fieldVoices)
	}
	return nil
}

// Release gives back every slot the reservation took.
func (r *Reservation) Release(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return nil
	}
	r.done = true

	var errs []error
	if r.voice {
		r.voice = false
		errs = append(errs, r.release(ctx, fieldVoices))
	}
	errs = append(errs, r.release(ctx, fieldPosts))
	return errors.Join(errs...)
}

func (r *Reservation) release(ctx context.Context, f field) error {
	// A cancelled request must still hand its slots back.
	ctx = context.WithoutCancel(ctx)

	if err := r.svc.adjust(ctx, r.uid, r.date, f, -1, 0); err != nil {
		logging.FromContext(ctx).WithFields(logrus.Fields{
			"uid":  r.uid,
			"date": r.date,
		}).WithError(err).Error("usage: failed to release slot")
		return fmt.Errorf("failed to release usage: %w", err)
	}
	return nil
}
