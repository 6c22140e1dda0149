package records

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"brandflowAPI/internal/ai"
)

type Category string

const (
	CategoryContent  Category = "content"
	CategoryBusiness Category = "business"
	CategoryCourse   Category = "course"
	CategoryHealth   Category = "health"
)

// Record is implemented by every append-only item kept under a user.
type Record interface {
	Category() Category
	Key() string
	SetKey(string)
	When() int64
	DisplayText() string
}

type base struct {
	ID            string `json:"id,omitempty"`
	Timestamp     int64  `json:"timestamp"`
	SchemaVersion int    `json:"schemaVersion,omitempty"`
}

func (b *base) Key() string     { return b.ID }
func (b *base) SetKey(k string) { b.ID = k }
func (b *base) When() int64     { return b.Timestamp }

// ContentHistoryItem mirrors users/{uid}/history/{key}. Media fields are
// absent when the matching generation step was skipped or failed.
type ContentHistoryItem struct {
	base
	Prompt            string         `json:"prompt"`
	Platform          string         `json:"platform"`
	Result            ai.ContentPack `json:"result"`
	ImageBase64       *string        `json:"imageBase64,omitempty"`
	ScriptAudioBase64 *string        `json:"scriptAudioBase64,omitempty"`
	MainAudioBase64   *string        `json:"mainAudioBase64,omitempty"`
	VoiceName         *string        `json:"voiceName,omitempty"`
}

func (c *ContentHistoryItem) Category() Category { return CategoryContent }

func (c *ContentHistoryItem) DisplayText() string {
	if t := c.Result.Title(); t != "" {
		return t
	}
	return c.Prompt
}

func (c *ContentHistoryItem) HasVoice() bool {
	return c.ScriptAudioBase64 != nil || c.MainAudioBase64 != nil
}

type InputKind string

const (
	InputText  InputKind = "text"
	InputAudio InputKind = "audio"
)

// BusinessLogItem mirrors users/{uid}/businessLog/{key}.
type BusinessLogItem struct {
	base
	Input     string      `json:"input,omitempty"`
	InputKind InputKind   `json:"inputKind"`
	Result    ai.TaskNote `json:"result"`
}

func (b *BusinessLogItem) UnmarshalJSON(data []byte) error {
	type plain BusinessLogItem
	if err := json.Unmarshal(data, (*plain)(b)); err != nil {
		return err
	}
	if absent(b.Result.Payload) {
		b.Result = ai.TaskNote{Payload: flat(data)}
	}
	return nil
}

func (b *BusinessLogItem) Category() Category  { return CategoryBusiness }
func (b *BusinessLogItem) DisplayText() string { return b.Result.Summary() }

// CourseItem mirrors users/{uid}/courses/{key}.
type CourseItem struct {
	base
	Goal   string    `json:"goal"`
	Result ai.Course `json:"result"`
}

func (c *CourseItem) UnmarshalJSON(data []byte) error {
	type plain CourseItem
	if err := json.Unmarshal(data, (*plain)(c)); err != nil {
		return err
	}
	if absent(c.Result.Payload) {
		c.Result = ai.Course{Payload: flat(data)}
	}
	return nil
}

func (c *CourseItem) Category() Category  { return CategoryCourse }
func (c *CourseItem) DisplayText() string { return c.Result.Title() }

// HealthReport mirrors users/{uid}/healthReports/{key}.
type HealthReport struct {
	base
	LifestyleUsed string            `json:"lifestyleUsed"`
	Result        ai.HealthAnalysis `json:"result"`
}

func (h *HealthReport) UnmarshalJSON(data []byte) error {
	type plain HealthReport
	if err := json.Unmarshal(data, (*plain)(h)); err != nil {
		return err
	}
	if absent(h.Result.Payload) {
		h.Result = ai.HealthAnalysis{Payload: flat(data)}
	}
	return nil
}

func (h *HealthReport) Category() Category  { return CategoryHealth }

// Records written by the first web client kept the result fields at the top
// level next to the timestamp, with no "result" key. The whole document is
// read as the result for those.
func absent(p ai.Payload) bool {
	return len(p) == 0 || bytes.Equal(p, []byte("null"))
}

func flat(data []byte) ai.Payload {
	return append(ai.Payload(nil), data...)
}
func (h *HealthReport) DisplayText() string { return h.Result.Analysis() }

func NewContentHistoryItem(ts int64) *ContentHistoryItem {
	return &ContentHistoryItem{base: base{Timestamp: ts, SchemaVersion: ai.SchemaVersion}}
}

func NewBusinessLogItem(ts int64) *BusinessLogItem {
	return &BusinessLogItem{base: base{Timestamp: ts, SchemaVersion: ai.SchemaVersion}}
}

func NewCourseItem(ts int64) *CourseItem {
	return &CourseItem{base: base{Timestamp: ts, SchemaVersion: ai.SchemaVersion}}
}

func NewHealthReport(ts int64) *HealthReport {
	return &HealthReport{base: base{Timestamp: ts, SchemaVersion: ai.SchemaVersion}}
}

// NewestFirst flattens a keyed collection, stamping each record with its
// key, ordered by timestamp descending. Equal timestamps fall back to the
// key, which the store generates in insertion order.
func NewestFirst[T Record](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for k, r := range m {
		r.SetKey(k)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].When() != out[j].When() {
			return out[i].When() > out[j].When()
		}
		return out[i].Key() > out[j].Key()
	})
	return out
}

// Matches reports a case-insensitive substring match on the display text.
func Matches(r Record, query string) bool {
	return strings.Contains(strings.ToLower(r.DisplayText()), strings.ToLower(query))
}
