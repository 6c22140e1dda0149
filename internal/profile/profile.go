package profile

import "strings"

type Status string

const (
	StatusFree       Status = "Free"
	StatusPro        Status = "Pro"
	StatusEnterprise Status = "Enterprise"
)

// ParseStatus maps a stored status to a known plan. Anything unknown,
// including the legacy "Free User" value, is Free.
func ParseStatus(s string) Status {
	switch strings.TrimSpace(s) {
	case string(StatusPro):
		return StatusPro
	case string(StatusEnterprise):
		return StatusEnterprise
	default:
		return StatusFree
	}
}

// Profile mirrors users/{uid}/profile. Timestamps are epoch milliseconds.
type Profile struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"createdAt"`
	ExpiryDate *int64 `json:"expiryDate,omitempty"`
	IsAdmin    bool   `json:"isAdmin"`
}

func (p *Profile) Plan() Status {
	if p == nil {
		return StatusFree
	}
	return ParseStatus(p.Status)
}
