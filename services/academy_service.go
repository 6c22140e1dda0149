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

type AcademyService struct {
	store   realtime.Store
	gateway Gateway
	metrics Metrics
	now     func() time.Time
}

func NewAcademyService(store realtime.Store, gateway Gateway, metrics Metrics) *AcademyService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AcademyService{store: store, gateway: gateway, metrics: metrics, now: time.Now}
}

// Generate builds a micro-learning course for goal and keeps it.
func (s *AcademyService) Generate(ctx context.Context, sess *session.Session, goal string) (*records.CourseItem, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, fmt.Errorf("goal: %w", ErrEmptyInput)
	}

	course, err := s.gateway.Course(ctx, goal)
	s.metrics.Generation(CapabilityCourse, outcome(err))
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("academy: course generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	item := records.NewCourseItem(s.now().UnixMilli())
	item.Goal = goal
	item.Result = course

	if err := appendRecord(ctx, s.store, realtime.CoursesPath(sess.UID), item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *AcademyService) Courses(ctx context.Context, sess *session.Session) ([]*records.CourseItem, error) {
	return loadNewest[*records.CourseItem](ctx, s.store, realtime.CoursesPath(sess.UID))
}
