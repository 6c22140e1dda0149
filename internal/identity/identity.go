package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
)

var (
	ErrInvalidToken = errors.New("invalid id token")
	ErrEmailTaken   = errors.New("email already registered")
	ErrUnknownEmail = errors.New("no account for email")
)

// Identity is what a verified id token tells us about the caller.
type Identity struct {
	UID        string
	Email      string
	AdminClaim bool
}

// Provider is the external identity service. Password sign-in happens in
// the client SDK; the server only verifies tokens and runs admin operations.
type Provider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
	CreateUser(ctx context.Context, email, password string) (*Identity, error)
	LookupEmail(ctx context.Context, email string) (*Identity, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	// SendPasswordReset has the provider email its own reset link.
	SendPasswordReset(ctx context.Context, email string) error
}

type FirebaseProvider struct {
	client  *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebaseProvider(client *auth.Client, toolkit *identitytoolkit.Service) *FirebaseProvider {
	return &FirebaseProvider{client: client, toolkit: toolkit}
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	tok, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := &Identity{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = strings.ToLower(email)
	}
	if admin, ok := tok.Claims["admin"].(bool); ok {
		id.AdminClaim = admin
	}
	return id, nil
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password string) (*Identity, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)

	u, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &Identity{UID: u.UID, Email: strings.ToLower(u.Email)}, nil
}

func (p *FirebaseProvider) LookupEmail(ctx context.Context, email string) (*Identity, error) {
	u, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	id := &Identity{UID: u.UID, Email: strings.ToLower(u.Email)}
	if admin, ok := u.CustomClaims["admin"].(bool); ok {
		id.AdminClaim = admin
	}
	return id, nil
}

func (p *FirebaseProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.PasswordResetLink(ctx, email)
	if err != nil {
		return "", fmt.Errorf("password reset link: %w", err)
	}
	return link, nil
}

func (p *FirebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}
