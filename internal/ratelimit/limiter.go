package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const keyPrefix = "invoicedesk:ratelimit:"

var (
	ErrInvalidLimit = errors.New("rate limit rate and burst must be positive")
	ErrEmptyKey     = errors.New("rate limit key is empty")
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter throttles requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Redis  *redis.Client `optional:"true"`
}

// New returns a redis token bucket when redis is configured, a process-local
// limiter otherwise, and nil when rate limiting is disabled.
func New(p Params) (Limiter, error) {
	cfg := p.Config.RateLimit
	if !cfg.Enabled {
		return nil, nil
	}
	if p.Redis != nil {
		return NewTokenBucket(p.Redis, cfg.PublicRate, cfg.PublicBurst)
	}
	p.Log.Named("ratelimit").Info("redis not configured, using in-process rate limiter")
	return NewLocal(cfg.PublicRate, cfg.PublicBurst, 10*time.Minute)
}

// Local keeps one x/time/rate limiter per key and forgets keys idle for longer
// than idleTTL.
type Local struct {
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	entries map[string]*localEntry
	swept   time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocal(perSecond float64, burst int, idleTTL time.Duration) (*Local, error) {
	if perSecond <= 0 || burst <= 0 {
		return nil, ErrInvalidLimit
	}
	return &Local{
		rate:    rate.Limit(perSecond),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: map[string]*localEntry{},
	}, nil
}

func (l *Local) Allow(_ context.Context, key string) (Decision, error) {
	if key == "" {
		return Decision{}, ErrEmptyKey
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	entry, ok := l.entries[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	return decide(allowed, entry.limiter.TokensAt(now), float64(l.rate)), nil
}

func (l *Local) sweep(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.swept) < l.idleTTL {
		return
	}
	l.swept = now
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.entries, key)
		}
	}
}

func decide(allowed bool, remaining float64, perSecond float64) Decision {
	d := Decision{Allowed: allowed}
	if remaining > 0 {
		d.Remaining = int(remaining)
	}
	if !allowed && perSecond > 0 {
		needed := 1.0 - remaining
		if needed > 0 {
			d.RetryAfter = time.Duration(needed / perSecond * float64(time.Second))
		}
	}
	return d
}
