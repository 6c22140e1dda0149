package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"brandflowAPI/internal/identity"
	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/profile"
)

const minPasswordLength = 6

var ErrEmailTaken = identity.ErrEmailTaken

// AuthService covers the identity operations that need admin credentials.
// Password sign-in itself happens against the identity provider directly.
type AuthService struct {
	provider identity.Provider
	users    *UserService
	notifier *Notifier
}

func NewAuthService(provider identity.Provider, users *UserService, notifier *Notifier) *AuthService {
	return &AuthService{provider: provider, users: users, notifier: notifier}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email: %w", ErrEmptyInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("email %q: %w", email, ErrInvalidInput)
	}
	return email, nil
}

// SignUp creates the identity and its Free profile.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*profile.ProfileResponse, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, fmt.Errorf("password shorter than %d characters: %w", minPasswordLength, ErrInvalidInput)
	}

	id, err := s.provider.CreateUser(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	p, err := s.users.Bootstrap(ctx, id)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("uid", id.UID).Info("account created")
	return &profile.ProfileResponse{UID: id.UID, Profile: *p, Plan: p.Plan()}, nil
}

// PasswordReset has the identity provider email a reset link, then also
// pushes a fresh link to the account's registered devices. Unknown
// addresses are not reported back to the caller.
func (s *AuthService) PasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	log := logging.FromContext(ctx)

	id, err := s.provider.LookupEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, identity.ErrUnknownEmail) {
			log.WithError(err).Warn("password reset lookup failed")
		}
		return nil
	}

	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		log.WithError(err).WithField("uid", id.UID).Warn("password reset email failed")
	}

	link, err := s.provider.PasswordResetLink(ctx, email)
	if err != nil {
		log.WithError(err).WithField("uid", id.UID).Warn("password reset link failed")
		return nil
	}
	s.notifier.Notify(ctx, id.UID, notification.PasswordReset(link))
	return nil
}
