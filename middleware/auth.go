package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"brandflowAPI/internal/identity"
	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/session"
)

// ProfileLoader loads or creates the profile of a verified caller.
type ProfileLoader interface {
	Bootstrap(ctx context.Context, id *identity.Identity) (*profile.Profile, error)
	IsAdmin(id *identity.Identity) bool
}

type Authenticator struct {
	provider identity.Provider
	profiles ProfileLoader
}

func NewAuthenticator(provider identity.Provider, profiles ProfileLoader) *Authenticator {
	return &Authenticator{provider: provider, profiles: profiles}
}

// bearerToken reads the id token from the Authorization header. Browsers
// cannot set headers on a websocket handshake, so upgrades may pass it as
// the token query parameter instead.
func bearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		token := strings.TrimPrefix(h, "Bearer ")
		if token == h || token == "" {
			return "", false
		}
		return token, true
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

// FirebaseAuth verifies the caller's id token and attaches a Session for
// the lifetime of the request.
func (a *Authenticator) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logging.FromContext(ctx)

		token, ok := bearerToken(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization header required. Use 'Bearer <token>'")
			return
		}

		id, err := a.provider.VerifyIDToken(ctx, token)
		if err != nil {
			log.WithError(err).Debug("token verification failed")
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		p, err := a.profiles.Bootstrap(ctx, id)
		if err != nil {
			log.WithError(err).WithField("uid", id.UID).Error("failed to load profile")
			respondWithError(w, http.StatusInternalServerError, "Failed to load profile")
			return
		}

		sess := &session.Session{
			UID:     id.UID,
			Email:   id.Email,
			IsAdmin: a.profiles.IsAdmin(id),
			Profile: p,
		}
		ctx = session.WithSession(ctx, sess)
		ctx = logging.WithEntry(ctx, log.WithField("uid", id.UID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers whose session is not an admin one.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}
		if !sess.IsAdmin {
			logging.FromContext(r.Context()).WithFields(logrus.Fields{
				"path": r.URL.Path,
			}).Warn("non-admin request to admin route")
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSession extracts the authenticated session from context.
func GetSession(ctx context.Context) (*session.Session, bool) {
	return session.FromContext(ctx)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
