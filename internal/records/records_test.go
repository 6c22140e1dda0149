package records

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandflowAPI/internal/ai"
)

func TestNewestFirst(t *testing.T) {
	m := map[string]*CourseItem{
		"k1": NewCourseItem(100),
		"k2": NewCourseItem(300),
		"k3": NewCourseItem(300),
		"k4": NewCourseItem(200),
	}

	out := NewestFirst(m)
	require.Len(t, out, 4)

	var keys []string
	for _, c := range out {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"k3", "k2", "k4", "k1"}, keys)
}

func TestContentDisplayFallsBackToPrompt(t *testing.T) {
	item := NewContentHistoryItem(1)
	item.Prompt = "Diwali sale for my saree shop"
	assert.Equal(t, "Diwali sale for my saree shop", item.DisplayText())
	assert.True(t, Matches(item, "SAREE"))
	assert.False(t, Matches(item, "shoes"))

	pack, err := ai.ParseContentPack([]byte(`{"detectedLanguage":"English","mode":"Sales","title":"Festive Silk",` +
		`"mainContent":"x","videoScript":"y","visualPrompt":"z","videoPrompt":"w"}`))
	require.NoError(t, err)
	item.Result = pack
	assert.Equal(t, "Festive Silk", item.DisplayText())
	assert.True(t, Matches(item, "silk"))
}

func TestHasVoice(t *testing.T) {
	item := NewContentHistoryItem(1)
	assert.False(t, item.HasVoice())

	audio := "AAAA"
	item.MainAudioBase64 = &audio
	assert.True(t, item.HasVoice())
}

func TestFlatRecordsReadAsResult(t *testing.T) {
	var logs map[string]*BusinessLogItem
	require.NoError(t, json.Unmarshal([]byte(`{
		"-a": {"type":"SALE","summary":"Sold 3 shirts","data":{"item":"shirt","amount":1500},"timestamp":10},
		"-b": {"timestamp":20,"inputKind":"text","result":{"type":"EXPENSE","summary":"Paid rent"}}
	}`), &logs))

	assert.Equal(t, "Sold 3 shirts", logs["-a"].DisplayText())
	assert.InDelta(t, 1500, logs["-a"].Result.Amount(), 0.001)
	assert.EqualValues(t, 10, logs["-a"].When())
	assert.True(t, Matches(logs["-a"], "shirts"))
	assert.Equal(t, "Paid rent", logs["-b"].DisplayText())

	var report HealthReport
	require.NoError(t, json.Unmarshal([]byte(`{"focusScore":64,"analysis":"Sleep earlier","recommendations":["walk"],"timestamp":5}`), &report))
	assert.InDelta(t, 64, report.Result.FocusScore(), 0.001)
	assert.Equal(t, []string{"walk"}, report.Result.Recommendations())

	var course CourseItem
	require.NoError(t, json.Unmarshal([]byte(`{"courseTitle":"GST basics","modules":[{"title":"Intro","estimatedTime":"5 min"}],"result":null,"timestamp":7}`), &course))
	assert.Equal(t, "GST basics", course.DisplayText())
	assert.Len(t, course.Result.Modules(), 1)
}
