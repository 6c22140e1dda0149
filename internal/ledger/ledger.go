// Package ledger keeps an append-only audit trail of admin payment
// decisions. The Realtime Store only holds the outcome on the profile; the
// ledger remembers who decided what and when.
package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"brandflowAPI/internal/payment"
)

type Entry struct {
	ID         uuid.UUID        `json:"id"`
	UID        string           `json:"uid"`
	Email      string           `json:"email"`
	Plan       string           `json:"plan"`
	Price      int              `json:"price"`
	UTR        string           `json:"utr"`
	Decision   payment.Decision `json:"decision"`
	DecidedBy  string           `json:"decidedBy"`
	ExpiryDate *int64           `json:"expiryDate,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// NewEntry builds the ledger row for a decision on p.
func NewEntry(p payment.Pending, d payment.Decision, decidedBy string, expiry *int64) Entry {
	return Entry{
		UID:        p.UID,
		Email:      p.Email,
		Plan:       p.Plan,
		Price:      p.Price,
		UTR:        p.UTR,
		Decision:   d,
		DecidedBy:  decidedBy,
		ExpiryDate: expiry,
	}
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
	// List returns the newest entries first.
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Memory is a process-local Recorder used when no database is configured.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now().UTC()
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
