package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDelivery struct {
	invoicedomain.DeliveryService

	calls   []time.Time
	cadence time.Duration
	result  invoicedomain.SweepResult
	err     error
}

func (f *fakeDelivery) SweepOverdue(_ context.Context, now time.Time, cadence time.Duration) (invoicedomain.SweepResult, error) {
	f.calls = append(f.calls, now)
	f.cadence = cadence
	return f.result, f.err
}

func newScheduler(t *testing.T, delivery *fakeDelivery, locker Locker) *Scheduler {
	t.Helper()
	sched, err := New(Params{
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)),
		Config:   config.Config{Reminder: config.ReminderConfig{Cadence: 72 * time.Hour}},
		Delivery: delivery,
		Locker:   locker,
	})
	require.NoError(t, err)
	return sched
}

func TestRunOnce_SweepsWithCadence(t *testing.T) {
	delivery := &fakeDelivery{result: invoicedomain.SweepResult{MarkedOverdue: 1, Reminded: 2}}
	sched := newScheduler(t, delivery, NewLocker(nil))

	result, ran, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, result.Reminded)
	require.Len(t, delivery.calls, 1)
	assert.Equal(t, time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC), delivery.calls[0])
	assert.Equal(t, 72*time.Hour, delivery.cadence)

	// The lock is released after each run.
	_, ran, err = sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunOnce_SkipsWhenLocked(t *testing.T) {
	locker := NewLocker(nil)
	_, ok, err := locker.TryLock(context.Background(), lockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	delivery := &fakeDelivery{}
	_, ran, err := newScheduler(t, delivery, locker).RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, delivery.calls)
}

func TestRunOnce_ReleasesLockOnError(t *testing.T) {
	locker := NewLocker(nil)
	delivery := &fakeDelivery{err: errors.New("db down")}
	sched := newScheduler(t, delivery, locker)

	_, ran, err := sched.RunOnce(context.Background())
	assert.Error(t, err)
	assert.True(t, ran)

	_, ok, err := locker.TryLock(context.Background(), lockKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNew_Defaults(t *testing.T) {
	sched, err := New(Params{
		Log:      zap.NewNop(),
		Clock:    clock.System(),
		Delivery: &fakeDelivery{},
		Locker:   NewLocker(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, sched.cfg.Interval)
	assert.Equal(t, 7*24*time.Hour, sched.cfg.Cadence)

	_, err = New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLocalLocker(t *testing.T) {
	locker := NewLocker(nil)
	ctx := context.Background()

	_, _, err := locker.TryLock(ctx, "", time.Minute)
	assert.Error(t, err)
	_, _, err = locker.TryLock(ctx, "k", 0)
	assert.Error(t, err)

	token, ok, err := locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, "k", "someone-else"))
	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "k", token))
	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.True(t, ok)
}
