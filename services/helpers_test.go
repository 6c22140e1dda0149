package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"brandflowAPI/internal/ai"
	"brandflowAPI/internal/identity"
	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/session"
)

var errGateway = errors.New("gateway unavailable")

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func testCtx() context.Context {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logging.WithEntry(context.Background(), logrus.NewEntry(l))
}

func newSession(uid string, plan profile.Status) *session.Session {
	return &session.Session{
		UID:     uid,
		Email:   uid + "@example.com",
		Profile: &profile.Profile{Email: uid + "@example.com", Status: string(plan)},
	}
}

func mustPack(t *testing.T, title string) ai.ContentPack {
	t.Helper()
	raw, err := json.Marshal(map[string]string{
		"detectedLanguage": "English",
		"mode":             "Branding",
		"title":            title,
		"mainContent":      title,
		"videoScript":      "scene one",
		"visualPrompt":     "studio shot",
		"videoPrompt":      "slow pan",
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := ai.ParseContentPack(raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func timeMinutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

type fakeGateway struct {
	t *testing.T

	packErr   error
	imageErr  error
	speechErr error
	taskErr   error
	noImage   bool
	packTitle string
	gate      chan struct{}

	packCalls   int32
	imageCalls  int32
	speechCalls int32
	taskCalls   int32
	videoCalls  int32

	mu         sync.Mutex
	speechText []string
	taskAudio  []byte
}

func (g *fakeGateway) ContentPack(ctx context.Context, prompt, platform string) (ai.ContentPack, error) {
	atomic.AddInt32(&g.packCalls, 1)
	if g.gate != nil {
		<-g.gate
	}
	if g.packErr != nil {
		return ai.ContentPack{}, g.packErr
	}
	title := g.packTitle
	if title == "" {
		title = prompt
	}
	return mustPack(g.t, title), nil
}

func (g *fakeGateway) MarketingImage(ctx context.Context, visualPrompt string) (string, error) {
	atomic.AddInt32(&g.imageCalls, 1)
	if g.imageErr != nil {
		return "", g.imageErr
	}
	if g.noImage {
		return "", nil
	}
	return "aW1hZ2U=", nil
}

func (g *fakeGateway) Speech(ctx context.Context, text, voiceName string) (string, error) {
	atomic.AddInt32(&g.speechCalls, 1)
	g.mu.Lock()
	g.speechText = append(g.speechText, text)
	g.mu.Unlock()
	if g.speechErr != nil {
		return "", g.speechErr
	}
	return "AAABAA==", nil
}

func (g *fakeGateway) Task(ctx context.Context, transcription string, audio []byte, mimeType string) (ai.TaskNote, error) {
	atomic.AddInt32(&g.taskCalls, 1)
	g.mu.Lock()
	g.taskAudio = audio
	g.mu.Unlock()
	if g.taskErr != nil {
		return ai.TaskNote{}, g.taskErr
	}
	return ai.ParseTaskNote([]byte(`{"type":"SALE","summary":"Sold ` + transcription + `","data":{"item":"shirt","amount":500}}`))
}

func (g *fakeGateway) Course(ctx context.Context, goal string) (ai.Course, error) {
	return ai.ParseCourse([]byte(`{"courseTitle":"Course: ` + goal + `","hinglishDescription":"seekho","modules":[{"title":"Intro","estimatedTime":"5 min"}]}`))
}

func (g *fakeGateway) HealthAnalysis(ctx context.Context, lifestyle string) (ai.HealthAnalysis, error) {
	return ai.ParseHealthAnalysis([]byte(`{"focusScore":72,"analysis":"Sleep more","recommendations":["walk","water"]}`))
}

func (g *fakeGateway) Video(ctx context.Context, prompt string) ([]byte, error) {
	atomic.AddInt32(&g.videoCalls, 1)
	return []byte("mp4"), nil
}

type fakePush struct {
	mu       sync.Mutex
	sent     []notification.Message
	tokens   [][]profile.DeviceToken
	invalid  []string
	failWith error
}

func (p *fakePush) SendPush(ctx context.Context, tokens []profile.DeviceToken, msg notification.Message) (notification.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	p.tokens = append(p.tokens, tokens)
	return notification.Result{Sent: len(tokens) - len(p.invalid), InvalidTokens: p.invalid}, p.failWith
}

func (p *fakePush) messages() []notification.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notification.Message(nil), p.sent...)
}

type fakeIdentity struct {
	users    map[string]*identity.Identity
	links    []string
	emailed  []string
	emailErr error
}

func (f *fakeIdentity) VerifyIDToken(ctx context.Context, token string) (*identity.Identity, error) {
	for _, u := range f.users {
		if u.UID == token {
			return u, nil
		}
	}
	return nil, identity.ErrInvalidToken
}

func (f *fakeIdentity) CreateUser(ctx context.Context, email, password string) (*identity.Identity, error) {
	if _, ok := f.users[email]; ok {
		return nil, identity.ErrEmailTaken
	}
	id := &identity.Identity{UID: "uid-" + email, Email: email}
	f.users[email] = id
	return id, nil
}

func (f *fakeIdentity) LookupEmail(ctx context.Context, email string) (*identity.Identity, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, identity.ErrUnknownEmail
}

func (f *fakeIdentity) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link := "https://auth.example/reset?email=" + email
	f.links = append(f.links, link)
	return link, nil
}

func (f *fakeIdentity) SendPasswordReset(ctx context.Context, email string) error {
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emailed = append(f.emailed, email)
	return nil
}

type countingMetrics struct {
	mu          sync.Mutex
	generations map[string]int
	quota       int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{generations: map[string]int{}}
}

func (m *countingMetrics) Generation(capability, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[capability+"/"+outcome]++
}

func (m *countingMetrics) QuotaRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota++
}

func clock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func seedProfile(t *testing.T, store realtime.Store, uid string, p profile.Profile) {
	t.Helper()
	if err := store.Set(context.Background(), realtime.ProfilePath(uid), p); err != nil {
		t.Fatal(err)
	}
}
