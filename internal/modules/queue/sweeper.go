package queue

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const DefaultSweepInterval = 30 * time.Second

type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(service *Service, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps every scope on each tick of the interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if err := s.service.SweepAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}
