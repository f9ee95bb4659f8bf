package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"proxymanager/backend/domain"
)

// ProxyController is the part of the system proxy controller the guard drives.
type ProxyController interface {
	Target() (domain.ProxyAddress, bool)
	Reassert() (domain.ApplyReport, bool)
}

// Guard 系统代理守护：周期性检查最近一次 set 的地址，被外部改动后重新应用。
// clear 之后不再干预。目标地址由控制器持有，检查与 set/clear 在同一把锁下串行。
type Guard struct {
	proxy    ProxyController
	interval time.Duration
	log      *zap.Logger
}

func NewGuard(proxy ProxyController, interval time.Duration, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		proxy:    proxy,
		interval: interval,
		log:      logger.Named("Guard"),
	}
}

// Start checks for drift every interval until ctx is done. A non-positive interval
// leaves the guard off.
func (g *Guard) Start(ctx context.Context) bool {
	if g == nil || g.interval <= 0 {
		return false
	}
	g.log.Info("proxy guard started", zap.Duration("interval", g.interval))
	go runWithTicker(ctx, g.log, g.interval, "proxy guard", g.Check)
	return true
}

// Target returns the address being guarded, if any.
func (g *Guard) Target() (domain.ProxyAddress, bool) {
	return g.proxy.Target()
}

// Check re-applies the guarded address when the OS no longer reports it enabled.
func (g *Guard) Check(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if report, ok := g.proxy.Reassert(); ok {
		g.log.Info("proxy re-applied",
			zap.String("op", report.OperationID),
			zap.Int("failed", len(report.Failed())),
		)
	}
}
