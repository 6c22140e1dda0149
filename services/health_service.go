package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/records"
	"brandflowAPI/internal/session"
)

type HealthService struct {
	store   realtime.Store
	gateway Gateway
	metrics Metrics
	now     func() time.Time
}

func NewHealthService(store realtime.Store, gateway Gateway, metrics Metrics) *HealthService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &HealthService{store: store, gateway: gateway, metrics: metrics, now: time.Now}
}

// Analyze scores the founder's lifestyle notes and keeps the report along
// with the notes it was based on.
func (s *HealthService) Analyze(ctx context.Context, sess *session.Session, lifestyle string) (*records.HealthReport, error) {
	lifestyle = strings.TrimSpace(lifestyle)
	if lifestyle == "" {
		return nil, fmt.Errorf("lifestyle: %w", ErrEmptyInput)
	}

	analysis, err := s.gateway.HealthAnalysis(ctx, lifestyle)
	s.metrics.Generation(CapabilityHealth, outcome(err))
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("health: analysis failed")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	report := records.NewHealthReport(s.now().UnixMilli())
	report.LifestyleUsed = lifestyle
	report.Result = analysis

	if err := appendRecord(ctx, s.store, realtime.HealthReportsPath(sess.UID), report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *HealthService) Reports(ctx context.Context, sess *session.Session) ([]*records.HealthReport, error) {
	return loadNewest[*records.HealthReport](ctx, s.store, realtime.HealthReportsPath(sess.UID))
}

// Latest returns the most recent report, or nil when there is none.
func (s *HealthService) Latest(ctx context.Context, sess *session.Session) (*records.HealthReport, error) {
	reports, err := s.Reports(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return reports[0], nil
}
