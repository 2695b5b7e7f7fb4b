package services

import (
	"context"
	"time"

	"susu-collect/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// sweepSpec runs the inactivity sweep just after the 6 AM business-day
// cutoff, once the previous window is closed.
const sweepSpec = "5 6 * * *"

// tokenPurgeSpec prunes expired refresh tokens nightly.
const tokenPurgeSpec = "30 3 * * *"

// sweepTimeout bounds one sweep run.
const sweepTimeout = 10 * time.Minute

// ActivityScheduler owns the background jobs: the daily customer inactivity
// sweep and refresh token cleanup.
type ActivityScheduler struct {
	customerService  *CustomerService
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewActivityScheduler creates the scheduler with its jobs registered
func NewActivityScheduler(
	customerService *CustomerService,
	refreshTokenRepo repositories.RefreshTokenRepository,
) (*ActivityScheduler, error) {
	s := &ActivityScheduler{
		customerService:  customerService,
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}

	if _, err := s.cron.AddFunc(sweepSpec, s.runSweep); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(tokenPurgeSpec, s.runTokenPurge); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running the registered jobs
func (s *ActivityScheduler) Start() {
	s.cron.Start()
	logrus.Info("background scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *ActivityScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("background scheduler stopped")
}

func (s *ActivityScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if err := s.customerService.Sweep(ctx); err != nil {
		logrus.WithError(err).Error("customer inactivity sweep failed")
	}
}

func (s *ActivityScheduler) runTokenPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		logrus.WithError(err).Error("expired refresh token purge failed")
	}
}
