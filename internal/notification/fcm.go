package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"

	"brandflowAPI/internal/profile"
)

// Result tells the caller which tokens the provider no longer accepts so
// they can be pruned.
type Result struct {
	Sent          int
	Failed        int
	InvalidTokens []string
}

type FCMService struct {
	client *messaging.Client
	log    *logrus.Logger
}

func NewFCMService(ctx context.Context, app *firebase.App, log *logrus.Logger) (*FCMService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return &FCMService{client: client, log: log}, nil
}

func (s *FCMService) build(token profile.DeviceToken, msg Message) *messaging.Message {
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["type"] = string(msg.Type)

	m := &messaging.Message{
		Token: token.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
	}

	switch token.Platform {
	case "ios":
		m.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		}
	case "web":
		m.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{Title: msg.Title, Body: msg.Body},
		}
	default:
		m.Android = &messaging.AndroidConfig{
			Priority:     "high",
			Notification: &messaging.AndroidNotification{Sound: "default"},
		}
	}
	return m
}

// SendPush sends msg to each token individually. It fails only when every
// send failed for a reason other than a stale token.
func (s *FCMService) SendPush(ctx context.Context, tokens []profile.DeviceToken, msg Message) (Result, error) {
	var res Result
	if len(tokens) == 0 {
		return res, nil
	}

	for _, token := range tokens {
		_, err := s.client.Send(ctx, s.build(token, msg))
		switch {
		case err == nil:
			res.Sent++
		case messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err):
			res.InvalidTokens = append(res.InvalidTokens, token.Token)
		default:
			s.log.WithError(err).WithField("platform", token.Platform).Warn("fcm: send failed")
			res.Failed++
		}
	}

	s.log.WithFields(logrus.Fields{
		"type":    msg.Type,
		"sent":    res.Sent,
		"failed":  res.Failed,
		"invalid": len(res.InvalidTokens),
	}).Info("fcm: push dispatched")

	if res.Sent == 0 && res.Failed > 0 {
		return res, fmt.Errorf("all push notifications failed")
	}
	return res, nil
}
