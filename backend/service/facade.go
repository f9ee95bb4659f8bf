package service

import (
	"context"

	"go.uber.org/zap"

	"proxymanager/backend/channel"
	"proxymanager/backend/domain"
	"proxymanager/backend/service/applog"
	"proxymanager/backend/service/shared"
	"proxymanager/backend/service/sysproxy"
)

// ChannelName 宿主侧使用的 channel 名称
const ChannelName = "proxy_manager"

// Channel method names.
const (
	MethodGetPlatformVersion   = "getPlatformVersion"
	MethodSetSystemProxy       = "setSystemProxy"
	MethodGetSystemProxyEnable = "getSystemProxyEnable"
	MethodCleanSystemProxy     = "cleanSystemProxy"
)

// Facade 服务门面（API 聚合层）
type Facade struct {
	proxy   *sysproxy.Controller
	appLog  *applog.Log
	channel *channel.Channel
	log     *zap.Logger

	platformVersion func() string
}

// NewFacade 创建门面服务并注册 channel 方法
func NewFacade(proxy *sysproxy.Controller, appLog *applog.Log, logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Facade{
		proxy:           proxy,
		appLog:          appLog,
		log:             logger,
		platformVersion: shared.PlatformVersion,
	}
	f.channel = channel.New(ChannelName, logger)
	f.bindChannel(f.channel)
	return f
}

func (f *Facade) Channel() *channel.Channel { return f.channel }

func (f *Facade) PlatformVersion() string { return f.platformVersion() }

func (f *Facade) SetSystemProxy(addr domain.ProxyAddress) domain.ApplyReport {
	return f.proxy.SetProxy(addr)
}

func (f *Facade) SystemProxyEnabled(addr domain.ProxyAddress) bool {
	return f.proxy.ProxyEnabled(addr)
}

func (f *Facade) SystemProxyStatus(addr domain.ProxyAddress) domain.ProxyStatus {
	return f.proxy.Status(addr)
}

func (f *Facade) CleanSystemProxy() domain.ApplyReport {
	return f.proxy.ClearProxy()
}

func (f *Facade) ConnectionProfiles() ([]domain.ConnectionProfile, error) {
	return f.proxy.Profiles()
}

// GetAppLogs 返回应用日志增量
func (f *Facade) GetAppLogs(since int64) applog.Snapshot {
	if f.appLog == nil {
		return applog.Snapshot{Running: true}
	}
	return f.appLog.Since(since)
}

// bindChannel registers the four host methods.
//
// set/clean answer success even when the broadcast failed part way; only
// getSystemProxyEnable reports the OS state back.
func (f *Facade) bindChannel(ch *channel.Channel) {
	ch.Register(MethodGetPlatformVersion, func(context.Context, channel.Arguments) (any, error) {
		return f.PlatformVersion(), nil
	})
	ch.Register(MethodSetSystemProxy, func(_ context.Context, args channel.Arguments) (any, error) {
		addr, err := args.String("proxy")
		if err != nil {
			return nil, err
		}
		f.SetSystemProxy(domain.ProxyAddress(addr))
		return nil, nil
	})
	ch.Register(MethodGetSystemProxyEnable, func(_ context.Context, args channel.Arguments) (any, error) {
		addr, err := args.String("proxy")
		if err != nil {
			return nil, err
		}
		if f.SystemProxyEnabled(domain.ProxyAddress(addr)) {
			return "true", nil
		}
		return "false", nil
	})
	ch.Register(MethodCleanSystemProxy, func(context.Context, channel.Arguments) (any, error) {
		f.CleanSystemProxy()
		return nil, nil
	})
}
