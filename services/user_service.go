package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"brandflowAPI/internal/identity"
	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/session"
)

const maxNameLength = 80

var devicePlatforms = map[string]bool{"android": true, "ios": true, "web": true}

type UserService struct {
	store       realtime.Store
	adminEmails map[string]bool
	notifier    *Notifier
	now         func() time.Time
}

func NewUserService(store realtime.Store, adminEmails []string, notifier *Notifier) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &UserService{
		store:       store,
		adminEmails: admins,
		notifier:    notifier,
		now:         time.Now,
	}
}

// IsAdmin is decided from the verified token and server configuration only.
func (s *UserService) IsAdmin(id *identity.Identity) bool {
	if id == nil {
		return false
	}
	return id.AdminClaim || s.adminEmails[strings.ToLower(id.Email)]
}

func (s *UserService) getProfile(ctx context.Context, uid string) (*profile.Profile, error) {
	var p *profile.Profile
	if err := s.store.Get(ctx, realtime.ProfilePath(uid), &p); err != nil {
		return nil, err
	}
	return p, nil
}

// Bootstrap returns the caller's profile, creating a Free one on first
// sight. Concurrent first requests still produce a single profile.
func (s *UserService) Bootstrap(ctx context.Context, id *identity.Identity) (*profile.Profile, error) {
	isAdmin := s.IsAdmin(id)

	p, err := s.getProfile(ctx, id.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if p != nil && p.IsAdmin == isAdmin {
		return p, nil
	}

	var result profile.Profile
	err = s.store.Transaction(ctx, realtime.ProfilePath(id.UID), func(node realtime.TxNode) (interface{}, error) {
		var cur *profile.Profile
		if err := node.Unmarshal(&cur); err != nil {
			return nil, err
		}
		if cur == nil {
			cur = &profile.Profile{
				Email:     id.Email,
				Status:    string(profile.StatusFree),
				CreatedAt: s.now().UnixMilli(),
			}
		} else if cur.IsAdmin == isAdmin {
			result = *cur
			return nil, realtime.ErrAborted
		}
		cur.IsAdmin = isAdmin
		result = *cur
		return cur, nil
	})
	if err != nil && !errors.Is(err, realtime.ErrAborted) {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if p == nil {
		logging.FromContext(ctx).WithField("uid", id.UID).Info("profile created")
	}
	return &result, nil
}

func (s *UserService) Profile(ctx context.Context, sess *session.Session) (*profile.ProfileResponse, error) {
	p, err := s.getProfile(ctx, sess.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	return &profile.ProfileResponse{UID: sess.UID, Profile: *p, Plan: p.Plan()}, nil
}

// UpdateName changes the display name, the only self-service profile field.
func (s *UserService) UpdateName(ctx context.Context, sess *session.Session, name string) (*profile.ProfileResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name: %w", ErrEmptyInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("name longer than %d characters: %w", maxNameLength, ErrInvalidInput)
	}

	if err := s.store.Update(ctx, realtime.ProfilePath(sess.UID), map[string]interface{}{"name": name}); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Profile(ctx, sess)
}

func (s *UserService) RegisterDevice(ctx context.Context, sess *session.Session, token, platform string) error {
	token = strings.TrimSpace(token)
	platform = strings.ToLower(strings.TrimSpace(platform))

	if token == "" {
		return fmt.Errorf("device token: %w", ErrEmptyInput)
	}
	if !realtime.ValidKey(token) {
		return fmt.Errorf("device token: %w", ErrInvalidInput)
	}
	if !devicePlatforms[platform] {
		return fmt.Errorf("platform %q: %w", platform, ErrInvalidInput)
	}

	dt := profile.DeviceToken{Token: token, Platform: platform, UpdatedAt: s.now().UnixMilli()}
	if err := s.store.Set(ctx, realtime.DeviceTokensPath(sess.UID)+"/"+token, dt); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

type userNode struct {
	Profile *profile.Profile `json:"profile"`
}

func (s *UserService) allProfiles(ctx context.Context) (map[string]*profile.Profile, error) {
	var users map[string]userNode
	if err := s.store.Get(ctx, realtime.UsersRoot, &users); err != nil {
		return nil, err
	}

	out := make(map[string]*profile.Profile, len(users))
	for uid, u := range users {
		if u.Profile != nil {
			out[uid] = u.Profile
		}
	}
	return out, nil
}

// ListUsers returns every profile, newest account first.
func (s *UserService) ListUsers(ctx context.Context) ([]profile.ProfileResponse, error) {
	profiles, err := s.allProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]profile.ProfileResponse, 0, len(profiles))
	for uid, p := range profiles {
		out = append(out, profile.ProfileResponse{UID: uid, Profile: *p, Plan: p.Plan()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].UID < out[j].UID
	})
	return out, nil
}

// SweepExpired moves every paid profile whose expiry date has passed back
// to Free and tells the user. Each downgrade re-checks the profile inside a
// transaction, so a renewal that lands after the scan is kept. It returns
// how many profiles changed.
func (s *UserService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	profiles, err := s.allProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	cutoff := now.UnixMilli()
	n := 0
	for uid, p := range profiles {
		if !expired(p, cutoff) {
			continue
		}

		var plan profile.Status
		err := s.store.Transaction(ctx, realtime.ProfilePath(uid), func(node realtime.TxNode) (interface{}, error) {
			var cur *profile.Profile
			if err := node.Unmarshal(&cur); err != nil {
				return nil, err
			}
			if !expired(cur, cutoff) {
				return nil, realtime.ErrAborted
			}
			plan = cur.Plan()
			cur.Status = string(profile.StatusFree)
			return cur, nil
		})
		if errors.Is(err, realtime.ErrAborted) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("failed to downgrade %s: %w", uid, err)
		}
		n++
		s.notifier.Notify(ctx, uid, notification.SubscriptionExpired(plan))
	}
	return n, nil
}

func expired(p *profile.Profile, cutoff int64) bool {
	return p != nil && p.Plan() != profile.StatusFree && p.ExpiryDate != nil && *p.ExpiryDate <= cutoff
}
