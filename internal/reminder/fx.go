package reminder

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("reminder",
	fx.Provide(NewRedisClient),
	fx.Provide(NewLocker),
	fx.Provide(New),
	fx.Invoke(Start),
)

func Start(lc fx.Lifecycle, cfg config.Config, sched *Scheduler, client *redis.Client) {
	if client != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}
	if !cfg.Reminder.Enabled {
		return
	}

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go sched.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}
