package payment

import (
	"time"

	"brandflowAPI/internal/profile"
)

const (
	StatusPending = "pending"
	UTRLength     = 12

	// ApprovalPeriod is how long an approved plan is marked valid for.
	ApprovalPeriod = 30 * 24 * time.Hour
)

type Plan struct {
	Name  profile.Status `json:"name"`
	Price int            `json:"price"`
}

var plans = []Plan{
	{Name: profile.StatusPro, Price: 99},
	{Name: profile.StatusEnterprise, Price: 199},
}

func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func FindPlan(name string) (Plan, bool) {
	for _, p := range plans {
		if string(p.Name) == name {
			return p, true
		}
	}
	return Plan{}, false
}

// ValidUTR reports whether utr is a bank reference of exactly twelve ASCII
// digits. The reference is never checked against a payment processor.
func ValidUTR(utr string) bool {
	if len(utr) != UTRLength {
		return false
	}
	for i := 0; i < len(utr); i++ {
		if utr[i] < '0' || utr[i] > '9' {
			return false
		}
	}
	return true
}

// Pending mirrors pendingPayments/{uid}.
type Pending struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Plan      string `json:"plan"`
	Price     int    `json:"price"`
	UTR       string `json:"utr"`
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
}

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)
