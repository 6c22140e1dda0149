package services

import (
	"context"
	"encoding/base64"
	"strings"

	"brandflowAPI/internal/ai"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/profile"
)

// Gateway is the remote generative model service.
type Gateway interface {
	ContentPack(ctx context.Context, prompt, platform string) (ai.ContentPack, error)
	MarketingImage(ctx context.Context, visualPrompt string) (string, error)
	Speech(ctx context.Context, text, voiceName string) (string, error)
	Task(ctx context.Context, transcription string, audio []byte, mimeType string) (ai.TaskNote, error)
	Course(ctx context.Context, goal string) (ai.Course, error)
	HealthAnalysis(ctx context.Context, lifestyle string) (ai.HealthAnalysis, error)
	Video(ctx context.Context, prompt string) ([]byte, error)
}

// PushProvider delivers notifications to a user's registered devices.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []profile.DeviceToken, msg notification.Message) (notification.Result, error)
}

// Metrics records domain outcomes. Capability is one of the Capability*
// constants and outcome is "success" or "failure".
type Metrics interface {
	Generation(capability, outcome string)
	QuotaRejected()
}

const (
	CapabilityContent = "content"
	CapabilityImage   = "image"
	CapabilitySpeech  = "speech"
	CapabilityTask    = "task"
	CapabilityCourse  = "course"
	CapabilityHealth  = "health"
	CapabilityVideo   = "video"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type noopMetrics struct{}

func (noopMetrics) Generation(string, string) {}
func (noopMetrics) QuotaRejected()            {}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ";base64,"); i >= 0 {
		s = s[i+len(";base64,"):]
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return b, nil
}
