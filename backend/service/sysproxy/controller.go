// Package sysproxy applies one proxy setting to the default connection and to every
// dial-up/VPN connection profile the OS knows about.
package sysproxy

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"proxymanager/backend/domain"
	"proxymanager/backend/repository/events"
	"proxymanager/backend/service/shared"
)

// Controller 系统代理控制器。
//
// Writes from this process are serialized, but the OS store is system wide: each
// operation is non-atomic across the set of connection profiles and races with any
// other process writing it.
type Controller struct {
	store shared.ProxyStore
	bus   *events.Bus
	log   *zap.Logger
	now   func() time.Time

	// mu orders SetProxy/ClearProxy/Reassert and guards the last requested address.
	mu     sync.Mutex
	target domain.ProxyAddress
	active bool
}

func NewController(store shared.ProxyStore, bus *events.Bus, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store: store,
		bus:   bus,
		log:   logger.Named("SystemProxy"),
		now:   time.Now,
	}
}

// SetProxy enables "direct + proxy" mode with addr on the default connection and every
// enumerated profile. Per-profile failures are recorded in the report and skipped.
func (c *Controller) SetProxy(addr domain.ProxyAddress) domain.ApplyReport {
	c.mu.Lock()
	report := c.broadcast(domain.ProxiedOptions(addr))
	c.target, c.active = addr, true
	c.mu.Unlock()

	c.publish(events.EventProxySet, addr, report)
	return report
}

// ClearProxy switches the default connection and every enumerated profile to direct
// mode. No server value is written.
func (c *Controller) ClearProxy() domain.ApplyReport {
	c.mu.Lock()
	report := c.broadcast(domain.DirectOptions())
	c.target, c.active = "", false
	c.mu.Unlock()

	c.publish(events.EventProxyCleared, "", report)
	return report
}

// Target returns the address of the last SetProxy, or false when nothing was set by
// this process or the last request was ClearProxy.
func (c *Controller) Target() (domain.ProxyAddress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.active
}

// Reassert re-applies the last SetProxy address when the default connection no longer
// uses it. The check and the write happen under the same lock as SetProxy/ClearProxy,
// so a concurrent clear is never undone. It reports whether a broadcast ran.
func (c *Controller) Reassert() (domain.ApplyReport, bool) {
	c.mu.Lock()
	if !c.active || c.ProxyEnabled(c.target) {
		c.mu.Unlock()
		return domain.ApplyReport{}, false
	}
	addr := c.target
	c.log.Warn("system proxy drifted, re-applying", zap.String("address", string(addr)))
	report := c.broadcast(domain.ProxiedOptions(addr))
	c.mu.Unlock()

	c.publish(events.EventProxyDrift, addr, report)
	return report, true
}

// ProxyEnabled reports whether the default connection uses exactly addr with the proxy
// bit set. Query failures read as false.
func (c *Controller) ProxyEnabled(addr domain.ProxyAddress) bool {
	opts, err := c.store.Query(domain.DefaultProfile)
	if err != nil {
		c.log.Debug("query proxy options failed", zap.Error(err))
		return false
	}
	return opts.Matches(addr)
}

// Status 返回默认连接的代理状态（含原始选项），供 API 展示
func (c *Controller) Status(addr domain.ProxyAddress) domain.ProxyStatus {
	status := domain.ProxyStatus{Address: addr}
	opts, err := c.CurrentOptions()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Options = &opts
	status.Enabled = opts.Matches(addr)
	return status
}

// CurrentOptions reads the default connection's flags and proxy server.
func (c *Controller) CurrentOptions() (domain.ProxyOptions, error) {
	return c.store.Query(domain.DefaultProfile)
}

// Profiles lists the named connection profiles.
func (c *Controller) Profiles() ([]domain.ConnectionProfile, error) {
	return shared.FetchWithResize(c.store.EnumProfiles)
}

func (c *Controller) broadcast(opts domain.ProxyOptions) (report domain.ApplyReport) {
	report = domain.ApplyReport{
		OperationID: domain.NewOperationID(),
		Options:     opts,
		Default:     domain.ProfileResult{Profile: domain.DefaultProfile},
		StartedAt:   c.now(),
	}
	log := c.log.With(zap.String("op", report.OperationID), zap.Uint32("flags", uint32(opts.Flags)))
	defer func() { report.FinishedAt = c.now() }()

	prepared, err := c.store.Prepare(opts)
	if err != nil {
		log.Warn("prepare connection options failed", zap.Error(err))
		report.Aborted = true
		report.AbortReason = "prepare connection options: " + err.Error()
		return report
	}
	defer prepared.Release()

	report.Default = c.apply(log, domain.DefaultProfile, prepared)

	profiles, err := shared.FetchWithResize(c.store.EnumProfiles)
	if err != nil {
		log.Warn("enumerate connection profiles failed", zap.Error(err))
		report.Aborted = true
		report.AbortReason = "enumerate connection profiles: " + err.Error()
		return report
	}

	report.Profiles = make([]domain.ProfileResult, 0, len(profiles))
	for _, profile := range profiles {
		report.Profiles = append(report.Profiles, c.apply(log, profile, prepared))
	}

	if err := c.store.Notify(); err != nil {
		log.Warn("notify settings change failed", zap.Error(err))
	} else {
		report.Notified = true
	}

	log.Info("proxy options applied",
		zap.String("server", string(opts.Server)),
		zap.Int("profiles", len(profiles)),
		zap.Int("failed", len(report.Failed())),
	)
	return report
}

func (c *Controller) apply(log *zap.Logger, profile domain.ConnectionProfile, prepared shared.PreparedOptions) domain.ProfileResult {
	result := domain.ProfileResult{Profile: profile}
	if err := c.store.Apply(profile, prepared); err != nil {
		log.Warn("apply options failed", zap.Stringer("profile", profile), zap.Error(err))
		result.Error = err.Error()
		return result
	}
	result.Applied = true
	return result
}

// publish runs subscribers on the caller's goroutine, after the lock is released.
func (c *Controller) publish(eventType events.EventType, addr domain.ProxyAddress, report domain.ApplyReport) {
	c.bus.PublishSync(events.ProxyEvent{
		EventType: eventType,
		Address:   addr,
		Report:    report,
	})
}
