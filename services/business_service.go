package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/records"
	"brandflowAPI/internal/session"
)

// maxAudioBytes bounds an inline voice note sent to the gateway.
const maxAudioBytes = 10 << 20

// BusinessService turns spoken or typed business notes into structured
// tasks. It is an Enterprise feature.
type BusinessService struct {
	store   realtime.Store
	gateway Gateway
	metrics Metrics
	now     func() time.Time
}

func NewBusinessService(store realtime.Store, gateway Gateway, metrics Metrics) *BusinessService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &BusinessService{store: store, gateway: gateway, metrics: metrics, now: time.Now}
}

func (s *BusinessService) CreateTask(ctx context.Context, sess *session.Session, req records.TaskRequest) (*records.BusinessLogItem, error) {
	if sess.Plan() != profile.StatusEnterprise {
		return nil, fmt.Errorf("voice-to-task needs %s: %w", profile.StatusEnterprise, ErrPlanRequired)
	}

	transcription := strings.TrimSpace(req.Transcription)
	var audioNote []byte
	if req.AudioBase64 != "" {
		b, err := decodeBase64(req.AudioBase64)
		if err != nil {
			return nil, fmt.Errorf("audio: %w", ErrInvalidInput)
		}
		if len(b) > maxAudioBytes {
			return nil, fmt.Errorf("audio larger than %d bytes: %w", maxAudioBytes, ErrInvalidInput)
		}
		if strings.TrimSpace(req.MimeType) == "" {
			return nil, fmt.Errorf("audio mime type: %w", ErrEmptyInput)
		}
		audioNote = b
	}
	if transcription == "" && len(audioNote) == 0 {
		return nil, fmt.Errorf("task note: %w", ErrEmptyInput)
	}

	note, err := s.gateway.Task(ctx, transcription, audioNote, req.MimeType)
	s.metrics.Generation(CapabilityTask, outcome(err))
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("business: task extraction failed")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	item := records.NewBusinessLogItem(s.now().UnixMilli())
	item.Result = note
	item.Input = transcription
	item.InputKind = records.InputText
	if len(audioNote) > 0 {
		item.InputKind = records.InputAudio
	}

	if err := appendRecord(ctx, s.store, realtime.BusinessLogPath(sess.UID), item); err != nil {
		return nil, err
	}
	return item, nil
}

// Log returns the caller's task notes, newest first.
func (s *BusinessService) Log(ctx context.Context, sess *session.Session) ([]*records.BusinessLogItem, error) {
	return loadNewest[*records.BusinessLogItem](ctx, s.store, realtime.BusinessLogPath(sess.UID))
}
