package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandflowAPI/internal/audio"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/records"
	"brandflowAPI/internal/usage"
)

type contentFixture struct {
	store   *realtime.MemoryStore
	gateway *fakeGateway
	metrics *countingMetrics
	svc     *ContentService
}

func newContentFixture(t *testing.T) *contentFixture {
	store := realtime.NewMemoryStore()
	gw := &fakeGateway{t: t}
	m := newCountingMetrics()
	u := NewUsageService(store, m)
	u.now = clock(fixedNow)
	svc := NewContentService(store, gw, u, m)
	svc.now = clock(fixedNow)
	return &contentFixture{store: store, gateway: gw, metrics: m, svc: svc}
}

func TestGenerateStoresPack(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusPro)

	item, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "  Diwali sale  ", Platform: "Instagram", VoiceName: "Kore"})
	require.NoError(t, err)

	assert.NotEmpty(t, item.Key())
	assert.Equal(t, "Diwali sale", item.Prompt)
	assert.Equal(t, "Instagram", item.Platform)
	assert.Equal(t, "Diwali sale", item.Result.Title())
	require.NotNil(t, item.ImageBase64)
	require.NotNil(t, item.ScriptAudioBase64)
	require.NotNil(t, item.MainAudioBase64)
	assert.Equal(t, "Kore", *item.VoiceName)
	assert.Equal(t, fixedNow.UnixMilli(), item.Timestamp)

	stored, err := f.svc.Get(testCtx(), sess, item.Key())
	require.NoError(t, err)
	assert.Equal(t, "Diwali sale", stored.Result.Title())
	assert.Equal(t, 1, stored.SchemaVersion)

	assert.Equal(t, usage.Counter{Posts: 1, Voices: 1}, readCounter(t, f.store, "u1"))
	assert.Equal(t, 1, f.metrics.generations["content/success"])
}

func TestGenerateDefaults(t *testing.T) {
	f := newContentFixture(t)

	item, err := f.svc.Generate(testCtx(), newSession("u1", profile.StatusEnterprise), records.GenerateContentRequest{Prompt: "tea"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPlatform, item.Platform)
	assert.Equal(t, DefaultVoice, *item.VoiceName)
}

func TestGenerateValidation(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusPro)

	_, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "   "})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "x", Platform: "MySpace"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "x", VoiceName: "Alexa"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, f.gateway.packCalls)
	assert.Equal(t, usage.Counter{}, readCounter(t, f.store, "u1"))
}

func TestFreeUserFourthPostRejectedWithoutGatewayCall(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusFree)

	for i := 0; i < 3; i++ {
		item, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "post"})
		require.NoError(t, err)
		assert.Nil(t, item.ScriptAudioBase64)
		assert.Nil(t, item.VoiceName)
	}

	_, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "post"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.EqualValues(t, 3, f.gateway.packCalls)
	assert.Zero(t, f.gateway.speechCalls)
	assert.Equal(t, usage.Counter{Posts: 3, Voices: 0}, readCounter(t, f.store, "u1"))
	assert.Equal(t, 1, f.metrics.quota)
}

func TestProFourthVoicePostHasNoAudio(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusPro)
	require.NoError(t, f.store.Set(testCtx(), realtime.UsagePath("u1", "2026-10-15"), usage.Counter{Posts: 3, Voices: 3}))

	item, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "post", VoiceName: "Puck"})
	require.NoError(t, err)

	assert.Nil(t, item.ScriptAudioBase64)
	assert.Nil(t, item.MainAudioBase64)
	assert.Nil(t, item.VoiceName)
	assert.NotNil(t, item.ImageBase64)
	assert.Zero(t, f.gateway.speechCalls)
	assert.Equal(t, usage.Counter{Posts: 4, Voices: 3}, readCounter(t, f.store, "u1"))
}

func TestGatewayFailureLeavesNoTrace(t *testing.T) {
	f := newContentFixture(t)
	f.gateway.packErr = errGateway
	sess := newSession("u1", profile.StatusPro)

	_, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "post"})
	assert.ErrorIs(t, err, ErrGeneration)

	history, err := f.svc.History(testCtx(), sess)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, usage.Counter{}, readCounter(t, f.store, "u1"))
	assert.Equal(t, 1, f.metrics.generations["content/failure"])
}

func TestMediaFailuresAreTolerated(t *testing.T) {
	f := newContentFixture(t)
	f.gateway.imageErr = errGateway
	f.gateway.speechErr = errGateway

	item, err := f.svc.Generate(testCtx(), newSession("u1", profile.StatusPro), records.GenerateContentRequest{Prompt: "post"})
	require.NoError(t, err)

	assert.Nil(t, item.ImageBase64)
	assert.Nil(t, item.ScriptAudioBase64)
	assert.Nil(t, item.VoiceName)
	assert.Equal(t, usage.Counter{Posts: 1, Voices: 0}, readCounter(t, f.store, "u1"))
}

func TestSpeechInputIsTruncated(t *testing.T) {
	f := newContentFixture(t)
	long := strings.Repeat("क", 1500)

	_, err := f.svc.Generate(testCtx(), newSession("u1", profile.StatusPro), records.GenerateContentRequest{Prompt: long})
	require.NoError(t, err)

	require.Len(t, f.gateway.speechText, 2)
	lengths := []int{len([]rune(f.gateway.speechText[0])), len([]rune(f.gateway.speechText[1]))}
	assert.Contains(t, lengths, maxSpeechChars)
	for _, n := range lengths {
		assert.LessOrEqual(t, n, maxSpeechChars)
	}
}

func TestConcurrentGenerationsCountExactly(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusFree)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "race"}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 3, readCounter(t, f.store, "u1").Posts)

	history, err := f.svc.History(testCtx(), sess)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusEnterprise)

	for i, prompt := range []string{"first", "second", "third"} {
		f.svc.now = clock(fixedNow.Add(timeMinutes(i)))
		_, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: prompt})
		require.NoError(t, err)
	}

	history, err := f.svc.History(testCtx(), sess)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].Prompt)
	assert.Equal(t, "first", history[2].Prompt)
	assert.NotEmpty(t, history[0].Key())
}

func TestGetUnknownIsNotFound(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusPro)

	_, err := f.svc.Get(testCtx(), sess, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Get(testCtx(), sess, "../other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAudioWAVAndImage(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusPro)

	item, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "post"})
	require.NoError(t, err)

	wav, err := f.svc.AudioWAV(testCtx(), sess, item.Key(), TrackScript)
	require.NoError(t, err)
	pcm, format, err := audio.DecodeWAV(wav)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1, 0}, pcm)
	assert.EqualValues(t, audio.SampleRate, format.SampleRate)

	_, err = f.svc.AudioWAV(testCtx(), sess, item.Key(), AudioTrack("bass"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	buf, err := f.svc.AudioBuffer(testCtx(), sess, item.Key(), TrackScript)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, buf.SampleRate)
	assert.Equal(t, []float32{0, 1.0 / 32768}, buf.Data)

	img, err := f.svc.Image(testCtx(), sess, item.Key())
	require.NoError(t, err)
	assert.Equal(t, []byte("image"), img)
}

func TestAudioWAVMissingTrack(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusFree)

	item, err := f.svc.Generate(testCtx(), sess, records.GenerateContentRequest{Prompt: "post"})
	require.NoError(t, err)

	_, err = f.svc.AudioWAV(testCtx(), sess, item.Key(), TrackMain)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVideoIsNotMetered(t *testing.T) {
	f := newContentFixture(t)
	sess := newSession("u1", profile.StatusFree)

	clip, err := f.svc.Video(testCtx(), sess, "slow pan over chai")
	require.NoError(t, err)
	assert.Equal(t, "mp4", string(clip))
	assert.Equal(t, usage.Counter{}, readCounter(t, f.store, "u1"))

	_, err = f.svc.Video(testCtx(), sess, " ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
