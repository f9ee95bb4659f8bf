package events

import "sync"

// Handler 事件处理器
type Handler func(event Event)

// Bus 事件总线
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus 创建新的事件总线
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe 订阅指定类型的事件
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll 订阅所有事件
func (b *Bus) SubscribeAll(handler Handler) {
	b.Subscribe(EventAll, handler)
}

// PublishSync runs every matching handler on the caller's goroutine, in subscription
// order, before returning. A nil bus drops the event.
func (b *Bus) PublishSync(event Event) {
	for _, h := range b.handlersFor(event.Type()) {
		h(event)
	}
}

// handlersFor copies the handler list so user code never runs under the lock.
func (b *Bus) handlersFor(eventType EventType) []Handler {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, 0, len(b.handlers[eventType])+len(b.handlers[EventAll]))
	out = append(out, b.handlers[eventType]...)
	if eventType != EventAll {
		out = append(out, b.handlers[EventAll]...)
	}
	return out
}
