// Package reminder runs the overdue sweep in the background.
package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const lockKey = "invoicedesk:reminder:sweep"

var ErrInvalidConfig = errors.New("invalid_reminder_config")

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Config   config.Config
	Delivery invoicedomain.DeliveryService
	Locker   Locker
}

type Scheduler struct {
	log      *zap.Logger
	clock    clock.Clock
	cfg      config.ReminderConfig
	delivery invoicedomain.DeliveryService
	locker   Locker
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Delivery == nil || p.Locker == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.Reminder
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Cadence <= 0 {
		cfg.Cadence = 7 * 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &Scheduler{
		log:      p.Log.Named("reminder").With(zap.String("component", "scheduler")),
		clock:    p.Clock,
		cfg:      cfg,
		delivery: p.Delivery,
		locker:   p.Locker,
	}, nil
}

// RunOnce sweeps if no other replica holds the lock. ran is false when the
// lock was taken.
func (s *Scheduler) RunOnce(ctx context.Context) (result invoicedomain.SweepResult, ran bool, err error) {
	token, ok, err := s.locker.TryLock(ctx, lockKey, s.cfg.LockTTL)
	if err != nil {
		return result, false, err
	}
	if !ok {
		s.log.Debug("sweep skipped, lock held elsewhere")
		return result, false, nil
	}
	defer func() {
		// Release on a fresh context so a cancelled run still frees the lock.
		if err := s.locker.Release(context.Background(), lockKey, token); err != nil {
			s.log.Warn("failed to release sweep lock", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LockTTL)
	defer cancel()

	start := s.clock.Now()
	result, err = s.delivery.SweepOverdue(ctx, start, s.cfg.Cadence)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("sweep timed out", zap.Duration("timeout", s.cfg.LockTTL))
		}
		return result, true, err
	}
	return result, true, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, _, err := s.RunOnce(ctx); err != nil {
			s.log.Warn("reminder sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
