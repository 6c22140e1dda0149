package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandflowAPI/internal/ledger"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/payment"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/session"
)

type paymentFixture struct {
	store  *realtime.MemoryStore
	ledger *ledger.Memory
	push   *fakePush
	svc    *PaymentService
	admin  *session.Session
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	store := realtime.NewMemoryStore()
	l := ledger.NewMemory()
	push := &fakePush{}
	svc := NewPaymentService(store, l, NewNotifier(store, push), "brandflow@okaxis")
	svc.now = clock(fixedNow)
	return &paymentFixture{
		store:  store,
		ledger: l,
		push:   push,
		svc:    svc,
		admin:  &session.Session{UID: "admin", Email: "owner@brandflow.in", IsAdmin: true},
	}
}

func TestUPILinkAndQR(t *testing.T) {
	f := newPaymentFixture(t)

	plan, ok := payment.FindPlan("Pro")
	require.True(t, ok)
	assert.Equal(t, "upi://pay?pa=brandflow@okaxis&am=99&cu=INR", f.svc.UPILink(plan))

	png, err := f.svc.PaymentQR("Enterprise")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = f.svc.PaymentQR("Gold")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestSubmitRejectsShortUTR(t *testing.T) {
	f := newPaymentFixture(t)
	sess := newSession("u1", profile.StatusFree)

	_, err := f.svc.Submit(testCtx(), sess, "Pro", "12345678901")
	assert.ErrorIs(t, err, ErrInvalidUTR)

	_, err = f.svc.Submit(testCtx(), sess, "Pro", "12345678901a")
	assert.ErrorIs(t, err, ErrInvalidUTR)

	p, err := f.svc.Pending(testCtx(), sess)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSubmitRejectsUnknownPlan(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.svc.Submit(testCtx(), newSession("u1", profile.StatusFree), "Free", "123456789012")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestSubmitCreatesPending(t *testing.T) {
	f := newPaymentFixture(t)
	sess := newSession("u1", profile.StatusFree)

	_, err := f.svc.Submit(testCtx(), sess, "Pro", "111111111111")
	require.NoError(t, err)
	_, err = f.svc.Submit(testCtx(), sess, "Enterprise", "123456789012")
	require.NoError(t, err)

	p, err := f.svc.Pending(testCtx(), sess)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, payment.Pending{
		UID:       "u1",
		Email:     "u1@example.com",
		Plan:      "Enterprise",
		Price:     199,
		UTR:       "123456789012",
		Timestamp: fixedNow.UnixMilli(),
		Status:    payment.StatusPending,
	}, *p)

	count, err := f.svc.CountPending(testCtx())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApprove(t *testing.T) {
	f := newPaymentFixture(t)
	seedProfile(t, f.store, "u1", profile.Profile{Email: "u1@example.com", Name: "Asha", Status: "Free User", CreatedAt: 1})
	require.NoError(t, f.store.Set(testCtx(), realtime.DeviceTokensPath("u1")+"/tok-1", profile.DeviceToken{Token: "tok-1", Platform: "android"}))

	_, err := f.svc.Submit(testCtx(), newSession("u1", profile.StatusFree), "Pro", "123456789012")
	require.NoError(t, err)

	res, err := f.svc.Approve(testCtx(), f.admin, "u1")
	require.NoError(t, err)
	assert.Equal(t, payment.DecisionApproved, res.Decision)

	var p profile.Profile
	require.NoError(t, f.store.Get(testCtx(), realtime.ProfilePath("u1"), &p))
	assert.Equal(t, "Pro", p.Status)
	assert.Equal(t, "Asha", p.Name)
	require.NotNil(t, p.ExpiryDate)
	assert.Equal(t, fixedNow.Add(30*24*time.Hour).UnixMilli(), *p.ExpiryDate)

	pending, err := f.svc.ListPending(testCtx())
	require.NoError(t, err)
	assert.Empty(t, pending)

	entries, err := f.svc.Ledger(testCtx(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "owner@brandflow.in", entries[0].DecidedBy)
	assert.Equal(t, "123456789012", entries[0].UTR)

	msgs := f.push.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notification.NotificationPaymentApproved, msgs[0].Type)
}

func TestReject(t *testing.T) {
	f := newPaymentFixture(t)
	seedProfile(t, f.store, "u1", profile.Profile{Email: "u1@example.com", Status: "Free", CreatedAt: 1})

	_, err := f.svc.Submit(testCtx(), newSession("u1", profile.StatusFree), "Enterprise", "123456789012")
	require.NoError(t, err)

	res, err := f.svc.Reject(testCtx(), f.admin, "u1")
	require.NoError(t, err)
	assert.Equal(t, payment.DecisionRejected, res.Decision)
	assert.Nil(t, res.ExpiryDate)

	var p profile.Profile
	require.NoError(t, f.store.Get(testCtx(), realtime.ProfilePath("u1"), &p))
	assert.Equal(t, "Free", p.Status)
	assert.Nil(t, p.ExpiryDate)

	pending, err := f.svc.Pending(testCtx(), newSession("u1", profile.StatusFree))
	require.NoError(t, err)
	assert.Nil(t, pending)

	entries, err := f.svc.Ledger(testCtx(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, payment.DecisionRejected, entries[0].Decision)

	// no registered devices, nothing pushed
	assert.Empty(t, f.push.messages())
}

func TestDecisionWithoutPending(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Approve(testCtx(), f.admin, "ghost")
	assert.ErrorIs(t, err, ErrNoPendingPayment)

	_, err = f.svc.Reject(testCtx(), f.admin, "ghost")
	assert.ErrorIs(t, err, ErrNoPendingPayment)
}

func TestListPendingOldestFirst(t *testing.T) {
	f := newPaymentFixture(t)

	f.svc.now = clock(fixedNow.Add(time.Hour))
	_, err := f.svc.Submit(testCtx(), newSession("late", profile.StatusFree), "Pro", "222222222222")
	require.NoError(t, err)
	f.svc.now = clock(fixedNow)
	_, err = f.svc.Submit(testCtx(), newSession("early", profile.StatusFree), "Pro", "111111111111")
	require.NoError(t, err)

	list, err := f.svc.ListPending(testCtx())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].UID)
	assert.Equal(t, "late", list[1].UID)
}

func TestInvalidTokensArePruned(t *testing.T) {
	f := newPaymentFixture(t)
	f.push.invalid = []string{"stale"}
	require.NoError(t, f.store.Set(testCtx(), realtime.DeviceTokensPath("u1")+"/stale", profile.DeviceToken{Token: "stale", Platform: "ios"}))
	require.NoError(t, f.store.Set(testCtx(), realtime.DeviceTokensPath("u1")+"/fresh", profile.DeviceToken{Token: "fresh", Platform: "android"}))

	_, err := f.svc.Submit(testCtx(), newSession("u1", profile.StatusFree), "Pro", "123456789012")
	require.NoError(t, err)
	_, err = f.svc.Reject(testCtx(), f.admin, "u1")
	require.NoError(t, err)

	var tokens map[string]profile.DeviceToken
	require.NoError(t, f.store.Get(testCtx(), realtime.DeviceTokensPath("u1"), &tokens))
	assert.Contains(t, tokens, "fresh")
	assert.NotContains(t, tokens, "stale")
}
