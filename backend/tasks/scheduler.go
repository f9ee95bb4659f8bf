package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func runWithTicker(ctx context.Context, log *zap.Logger, interval time.Duration, name string, fn func(context.Context)) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			safeRun(ctx, log, name, fn)
		}
	}
}

func safeRun(ctx context.Context, log *zap.Logger, name string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", zap.String("task", name), zap.Any("panic", r))
		}
	}()
	fn(ctx)
}
