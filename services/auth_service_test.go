package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandflowAPI/internal/identity"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
)

func newAuthFixture() (*AuthService, *fakeIdentity, *fakePush, *realtime.MemoryStore) {
	store := realtime.NewMemoryStore()
	push := &fakePush{}
	notifier := NewNotifier(store, push)
	users := NewUserService(store, nil, notifier)
	users.now = clock(fixedNow)
	provider := &fakeIdentity{users: map[string]*identity.Identity{}}
	return NewAuthService(provider, users, notifier), provider, push, store
}

func TestSignUp(t *testing.T) {
	svc, _, _, store := newAuthFixture()

	res, err := svc.SignUp(testCtx(), " New@Shop.in ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "uid-new@shop.in", res.UID)
	assert.Equal(t, profile.StatusFree, res.Plan)

	var p profile.Profile
	require.NoError(t, store.Get(testCtx(), realtime.ProfilePath(res.UID), &p))
	assert.Equal(t, "new@shop.in", p.Email)

	_, err = svc.SignUp(testCtx(), "new@shop.in", "secret1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, err := svc.SignUp(testCtx(), "", "secret1")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = svc.SignUp(testCtx(), "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SignUp(testCtx(), "a@b.in", "123")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPasswordResetEmailsAndPushesLink(t *testing.T) {
	svc, provider, push, store := newAuthFixture()
	provider.users["a@b.in"] = &identity.Identity{UID: "u1", Email: "a@b.in"}
	require.NoError(t, store.Set(testCtx(), realtime.DeviceTokensPath("u1")+"/tok", profile.DeviceToken{Token: "tok", Platform: "android"}))

	require.NoError(t, svc.PasswordReset(testCtx(), "A@b.in"))
	assert.Equal(t, []string{"a@b.in"}, provider.emailed)

	msgs := push.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notification.NotificationPasswordReset, msgs[0].Type)
	assert.Equal(t, provider.links[0], msgs[0].Data["link"])
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, provider, push, _ := newAuthFixture()

	require.NoError(t, svc.PasswordReset(testCtx(), "nobody@b.in"))
	assert.Empty(t, provider.links)
	assert.Empty(t, provider.emailed)
	assert.Empty(t, push.messages())
}

func TestPasswordResetWithoutDevicesStillEmails(t *testing.T) {
	svc, provider, push, _ := newAuthFixture()
	provider.users["new@b.in"] = &identity.Identity{UID: "u2", Email: "new@b.in"}

	require.NoError(t, svc.PasswordReset(testCtx(), "new@b.in"))
	assert.Equal(t, []string{"new@b.in"}, provider.emailed)
	assert.Empty(t, push.messages())
}

func TestPasswordResetEmailFailureKeepsPush(t *testing.T) {
	svc, provider, push, store := newAuthFixture()
	provider.users["a@b.in"] = &identity.Identity{UID: "u1", Email: "a@b.in"}
	provider.emailErr = errors.New("quota exceeded")
	require.NoError(t, store.Set(testCtx(), realtime.DeviceTokensPath("u1")+"/tok", profile.DeviceToken{Token: "tok", Platform: "web"}))

	require.NoError(t, svc.PasswordReset(testCtx(), "a@b.in"))
	assert.Len(t, push.messages(), 1)
}
