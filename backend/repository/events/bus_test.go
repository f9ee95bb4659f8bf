package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBus_PublishSync_CallsTypeAndAllHandlers(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	calls := make(chan EventType, 2)
	bus.Subscribe(EventProxySet, func(event Event) {
		calls <- event.Type()
	})
	bus.SubscribeAll(func(event Event) {
		calls <- event.Type()
	})

	bus.PublishSync(ProxyEvent{EventType: EventProxySet})

	require.Equal(t, EventProxySet, <-calls)
	require.Equal(t, EventProxySet, <-calls)
}

func TestBus_PublishSync_SkipsOtherTypes(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	called := false
	bus.Subscribe(EventProxyCleared, func(Event) { called = true })

	bus.PublishSync(ProxyEvent{EventType: EventProxySet})
	require.False(t, called)
}

func TestBus_PublishSync_KeepsPublishOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var seen []EventType
	bus.SubscribeAll(func(event Event) { seen = append(seen, event.Type()) })

	bus.PublishSync(ProxyEvent{EventType: EventProxySet})
	bus.PublishSync(ProxyEvent{EventType: EventProxyCleared})
	require.Equal(t, []EventType{EventProxySet, EventProxyCleared}, seen)
}

func TestBus_NilBusDropsEvents(t *testing.T) {
	t.Parallel()

	var bus *Bus
	bus.PublishSync(ProxyEvent{EventType: EventProxySet})
}
