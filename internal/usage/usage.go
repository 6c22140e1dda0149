package usage

import (
	"time"

	"brandflowAPI/internal/profile"
)

const DateLayout = "2006-01-02"

// Counter mirrors users/{uid}/usage/{date}.
type Counter struct {
	Posts  int `json:"posts"`
	Voices int `json:"voices"`
}

type Limits struct {
	Posts  int `json:"posts"`
	Voices int `json:"voices"`
}

var planLimits = map[profile.Status]Limits{
	profile.StatusFree:       {Posts: 3, Voices: 0},
	profile.StatusPro:        {Posts: 20, Voices: 3},
	profile.StatusEnterprise: {Posts: 50, Voices: 50},
}

func LimitsFor(plan profile.Status) Limits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[profile.StatusFree]
}

// Date returns the UTC calendar day counters are keyed by.
func Date(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

type View struct {
	Date       string `json:"date"`
	Posts      int    `json:"posts"`
	Voices     int    `json:"voices"`
	PostLimit  int    `json:"postLimit"`
	VoiceLimit int    `json:"voiceLimit"`
}
