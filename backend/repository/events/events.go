package events

import "proxymanager/backend/domain"

// EventType 事件类型
type EventType string

const (
	// 系统代理事件
	EventProxySet     EventType = "sysproxy.set"
	EventProxyCleared EventType = "sysproxy.cleared"
	// EventProxyDrift 系统代理被外部修改，已重新应用
	EventProxyDrift EventType = "sysproxy.drift"

	// 通配符事件（用于订阅所有事件）
	EventAll EventType = "*"
)

// Event 事件接口
type Event interface {
	Type() EventType
}

// ProxyEvent 系统代理变更事件
type ProxyEvent struct {
	EventType EventType
	Address   domain.ProxyAddress
	Report    domain.ApplyReport
}

func (e ProxyEvent) Type() EventType { return e.EventType }
