package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
)

// Notifier pushes a message to every device a user registered. Delivery is
// best effort: failures are logged and never fail the calling operation.
type Notifier struct {
	store realtime.Store
	push  PushProvider
}

func NewNotifier(store realtime.Store, push PushProvider) *Notifier {
	return &Notifier{store: store, push: push}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.push != nil
}

func (n *Notifier) Notify(ctx context.Context, uid string, msg notification.Message) {
	if !n.Enabled() {
		return
	}
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"uid": uid, "type": msg.Type})

	tokens, err := deviceTokens(ctx, n.store, uid)
	if err != nil {
		log.WithError(err).Warn("notify: failed to load device tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}

	res, err := n.push.SendPush(ctx, tokens, msg)
	if err != nil {
		log.WithError(err).Warn("notify: push failed")
	}

	for _, token := range res.InvalidTokens {
		if !realtime.ValidKey(token) {
			continue
		}
		if err := n.store.Delete(ctx, realtime.DeviceTokensPath(uid)+"/"+token); err != nil {
			log.WithError(err).Warn("notify: failed to prune device token")
		}
	}
}

func deviceTokens(ctx context.Context, store realtime.Store, uid string) ([]profile.DeviceToken, error) {
	var m map[string]profile.DeviceToken
	if err := store.Get(ctx, realtime.DeviceTokensPath(uid), &m); err != nil {
		return nil, err
	}

	out := make([]profile.DeviceToken, 0, len(m))
	for key, t := range m {
		if t.Token == "" {
			t.Token = key
		}
		out = append(out, t)
	}
	return out, nil
}
