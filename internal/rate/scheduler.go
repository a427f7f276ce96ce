package rate

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultRefreshInterval = 10 * time.Minute

// RateRefresher reloads the rate table from the rate source.
type RateRefresher interface {
	RefreshRates(ctx context.Context) (int, error)
}

// Scheduler periodically refreshes the rate table.
type Scheduler struct {
	refresher RateRefresher
	interval  time.Duration
	logger    logrus.FieldLogger

	mu    sync.Mutex
	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		count, refreshErr := s.refresher.RefreshRates(jobCtx)
		if refreshErr != nil {
			s.logger.WithError(refreshErr).WithField("exec_id", execID).Error("Scheduled rate refresh failed")
			return
		}
		s.logger.WithFields(logrus.Fields{"exec_id": execID, "currencies": count}).Debug("Scheduled rate refresh done")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}

	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			s.logger.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

func NewScheduler(refresher RateRefresher, logger logrus.FieldLogger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{refresher: refresher, logger: logger, interval: interval}
}
