// Package workers runs the service's scheduled background jobs.
package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PendingCounter reports how many payments are waiting for review.
type PendingCounter interface {
	CountPending(ctx context.Context) (int, error)
}

// ExpirySweeper downgrades profiles whose plan ran out before now.
type ExpirySweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type Config struct {
	PendingSpec string
	SweepSpec   string
	SweepExpiry bool
	JobTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		PendingSpec: "@every 1m",
		SweepSpec:   "@hourly",
		JobTimeout:  5 * time.Minute,
	}
}

type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
	cfg  Config

	pending    PendingCounter
	setPending func(float64)
	sweeper    ExpirySweeper
	now        func() time.Time
}

func NewScheduler(cfg Config, pending PendingCounter, setPending func(float64), sweeper ExpirySweeper, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		log:        log,
		cfg:        cfg,
		pending:    pending,
		setPending: setPending,
		sweeper:    sweeper,
		now:        time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.PendingSpec, s.RefreshPending); err != nil {
		return err
	}
	if s.cfg.SweepExpiry {
		if _, err := s.cron.AddFunc(s.cfg.SweepSpec, s.SweepExpired); err != nil {
			return err
		}
		s.log.WithField("schedule", s.cfg.SweepSpec).Info("workers: subscription expiry sweep enabled")
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) RefreshPending() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	n, err := s.pending.CountPending(ctx)
	if err != nil {
		s.log.WithError(err).Warn("workers: counting pending payments failed")
		return
	}
	s.setPending(float64(n))
}

func (s *Scheduler) SweepExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	n, err := s.sweeper.SweepExpired(ctx, s.now())
	if err != nil {
		s.log.WithError(err).Error("workers: expiry sweep failed")
		return
	}
	if n > 0 {
		s.log.WithField("downgraded", n).Info("workers: expired subscriptions downgraded")
	}
}
