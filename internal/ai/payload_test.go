package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsMalformed(t *testing.T) {
	_, err := ParseContentPack([]byte(`{"title":`))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = ParseCourse([]byte(`["not","an","object"]`))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = ParseTaskNote([]byte(`{"type":"SALE"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"summary"`)
}

func TestVariantAccessors(t *testing.T) {
	note, err := ParseTaskNote([]byte(`{"type":"SALE","summary":"Sold 2 shirts","data":{"item":"shirt","amount":500,"action":"restock"}}`))
	require.NoError(t, err)
	assert.Equal(t, "SALE", note.Type())
	assert.Equal(t, "shirt", note.Item())
	assert.Equal(t, 500.0, note.Amount())
	assert.Equal(t, "restock", note.Action())

	course, err := ParseCourse([]byte(`{"courseTitle":"Instagram basics","modules":[{"title":"Reels","estimatedTime":"5 min"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Instagram basics", course.Title())
	assert.Equal(t, []Module{{Title: "Reels", EstimatedTime: "5 min"}}, course.Modules())
}

func TestPayloadKeepsUnknownFields(t *testing.T) {
	raw := []byte(`{"focusScore":72,"analysis":"Sleep more","recommendations":["walk","read"],"extra":{"nested":true}}`)
	h, err := ParseHealthAnalysis(raw)
	require.NoError(t, err)

	wrapped, err := json.Marshal(struct {
		Result HealthAnalysis `json:"result"`
	}{h})
	require.NoError(t, err)

	var back struct {
		Result HealthAnalysis `json:"result"`
	}
	require.NoError(t, json.Unmarshal(wrapped, &back))
	assert.True(t, back.Result.Get("extra.nested").Bool())
	assert.Equal(t, []string{"walk", "read"}, back.Result.Recommendations())
}
