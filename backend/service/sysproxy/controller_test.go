package sysproxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"proxymanager/backend/domain"
	"proxymanager/backend/repository/events"
	"proxymanager/backend/service/shared"
)

const testAddr domain.ProxyAddress = "127.0.0.1:8080"

func newTestController(store shared.ProxyStore) *Controller {
	return NewController(store, nil, nil)
}

func TestSetProxy_ThenProxyEnabled(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	c := newTestController(store)

	report := c.SetProxy(testAddr)
	require.True(t, report.Default.Applied)
	require.False(t, report.Aborted)
	require.True(t, report.Notified)
	require.NotEmpty(t, report.OperationID)
	require.True(t, c.ProxyEnabled(testAddr))

	opts, ok := store.Get(domain.DefaultProfile)
	require.True(t, ok)
	require.Equal(t, domain.ProxyTypeDirect|domain.ProxyTypeProxy, opts.Flags)
	require.Equal(t, testAddr, opts.Server)
}

func TestClearProxy_DisablesForAnyAddress(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("VPN")
	c := newTestController(store)

	c.SetProxy(testAddr)
	report := c.ClearProxy()
	require.True(t, report.Notified)
	require.False(t, c.ProxyEnabled(testAddr))
	require.False(t, c.ProxyEnabled("other:1"))
	require.False(t, c.ProxyEnabled(""))

	opts, _ := store.Get("VPN")
	require.Equal(t, domain.ProxyTypeDirect, opts.Flags)
}

func TestProxyEnabled_FlagClearWithMatchingServer(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	store.Set(domain.DefaultProfile, domain.ProxyOptions{Flags: domain.ProxyTypeDirect, Server: testAddr})

	require.False(t, newTestController(store).ProxyEnabled(testAddr))
}

func TestProxyEnabled_ByteExactServerComparison(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	store.Set(domain.DefaultProfile, domain.ProxiedOptions("1.2.3.4:80/"))
	c := newTestController(store)

	require.False(t, c.ProxyEnabled("1.2.3.4:80"))
	require.False(t, c.ProxyEnabled(" 1.2.3.4:80/"))
	require.True(t, c.ProxyEnabled("1.2.3.4:80/"))
}

func TestProxyEnabled_QueryFailureIsFalse(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	store.Set(domain.DefaultProfile, domain.ProxiedOptions(testAddr))
	store.QueryErr = errors.New("query failed")

	require.False(t, newTestController(store).ProxyEnabled(testAddr))
}

func TestSetProxy_NoProfilesTouchesOnlyDefault(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	report := newTestController(store).SetProxy(testAddr)

	require.Equal(t, []domain.ConnectionProfile{domain.DefaultProfile}, store.Applied())
	require.Empty(t, report.Profiles)
	require.Equal(t, []int{1}, store.EnumBuffers())
	require.True(t, report.Notified)
}

func TestClearProxy_NoProfilesTouchesOnlyDefault(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	report := newTestController(store).ClearProxy()

	require.Equal(t, []domain.ConnectionProfile{domain.DefaultProfile}, store.Applied())
	require.Empty(t, report.Failed())
	require.True(t, report.Notified)
}

func TestSetProxy_ProbeThenFetch(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("DSL", "VPN", "Office")
	report := newTestController(store).SetProxy(testAddr)

	require.Equal(t, []int{1, 3}, store.EnumBuffers())
	require.Equal(t, []domain.ConnectionProfile{domain.DefaultProfile, "DSL", "VPN", "Office"}, store.Applied())
	require.Len(t, report.Profiles, 3)
	for _, p := range report.Profiles {
		opts, ok := store.Get(p.Profile)
		require.True(t, ok)
		require.Equal(t, domain.ProxiedOptions(testAddr), opts)
	}
}

func TestSetProxy_BestEffortPastFailedProfile(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("A", "B", "C")
	store.ApplyErr["B"] = errors.New("access denied")
	report := newTestController(store).SetProxy(testAddr)

	require.False(t, report.Aborted)
	require.True(t, report.Notified)
	require.Equal(t, []domain.ConnectionProfile{domain.DefaultProfile, "A", "C"}, store.Applied())

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, domain.ConnectionProfile("B"), failed[0].Profile)
	require.Contains(t, failed[0].Error, "access denied")
	require.False(t, failed[0].Applied)
}

func TestSetProxy_DefaultFailureStillBroadcasts(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("A")
	store.ApplyErr[domain.DefaultProfile] = errors.New("denied")
	report := newTestController(store).SetProxy(testAddr)

	require.False(t, report.Default.Applied)
	require.Equal(t, []domain.ConnectionProfile{"A"}, store.Applied())
	require.True(t, report.Notified)
}

func TestSetProxy_EnumerationFailureAbortsAfterDefault(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("A")
	store.EnumErr = errors.New("ras unavailable")
	report := newTestController(store).SetProxy(testAddr)

	require.True(t, report.Aborted)
	require.Contains(t, report.AbortReason, "ras unavailable")
	require.True(t, report.Default.Applied)
	require.Equal(t, []domain.ConnectionProfile{domain.DefaultProfile}, store.Applied())
	require.False(t, report.Notified)

	prepared, released, notified := store.Counters()
	require.Equal(t, 1, prepared)
	require.Equal(t, 1, released)
	require.Zero(t, notified)
}

func TestSetProxy_PrepareFailureChangesNothing(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("A")
	store.PrepareErr = errors.New("out of memory")
	report := newTestController(store).SetProxy(testAddr)

	require.True(t, report.Aborted)
	require.False(t, report.Default.Applied)
	require.Empty(t, report.Default.Error)
	require.Empty(t, store.Applied())
	require.Empty(t, store.EnumBuffers())
}

func TestBroadcast_ReleasesPreparedOptions(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("A", "B")
	c := newTestController(store)
	c.SetProxy(testAddr)
	c.ClearProxy()

	prepared, released, notified := store.Counters()
	require.Equal(t, 2, prepared)
	require.Equal(t, 2, released)
	require.Equal(t, 2, notified)
}

func TestBroadcast_NotifyFailureIsRecorded(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	store.NotifyErr = errors.New("refresh failed")
	report := newTestController(store).SetProxy(testAddr)

	require.False(t, report.Notified)
	require.False(t, report.Aborted)
	require.True(t, report.Default.Applied)
}

func TestSetProxy_PublishesEvent(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	got := make(chan events.ProxyEvent, 2)
	bus.SubscribeAll(func(e events.Event) { got <- e.(events.ProxyEvent) })

	c := NewController(shared.NewMemoryStore(), bus, nil)
	report := c.SetProxy(testAddr)

	e := <-got
	require.Equal(t, events.EventProxySet, e.EventType)
	require.Equal(t, testAddr, e.Address)
	require.Equal(t, report.OperationID, e.Report.OperationID)

	c.ClearProxy()
	e = <-got
	require.Equal(t, events.EventProxyCleared, e.EventType)
	require.Empty(t, e.Address)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore()
	c := newTestController(store)
	c.SetProxy(testAddr)

	status := c.Status(testAddr)
	require.True(t, status.Enabled)
	require.NotNil(t, status.Options)
	require.Equal(t, testAddr, status.Options.Server)

	store.QueryErr = errors.New("nope")
	status = c.Status(testAddr)
	require.False(t, status.Enabled)
	require.Nil(t, status.Options)
	require.Equal(t, "nope", status.Error)
}

func TestProfiles(t *testing.T) {
	t.Parallel()

	profiles, err := newTestController(shared.NewMemoryStore("A", "B")).Profiles()
	require.NoError(t, err)
	require.Equal(t, []domain.ConnectionProfile{"A", "B"}, profiles)
}

func TestTarget_FollowsLastRequest(t *testing.T) {
	t.Parallel()

	c := newTestController(shared.NewMemoryStore())
	_, active := c.Target()
	require.False(t, active)

	c.SetProxy(testAddr)
	addr, active := c.Target()
	require.True(t, active)
	require.Equal(t, testAddr, addr)

	c.ClearProxy()
	addr, active = c.Target()
	require.False(t, active)
	require.Empty(t, addr)
}

func TestReassert(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("VPN")
	bus := events.NewBus()
	var seen []events.EventType
	bus.SubscribeAll(func(e events.Event) { seen = append(seen, e.Type()) })
	c := NewController(store, bus, nil)

	_, ran := c.Reassert()
	require.False(t, ran, "nothing requested yet")

	c.SetProxy(testAddr)
	_, ran = c.Reassert()
	require.False(t, ran, "still in sync")

	store.Set(domain.DefaultProfile, domain.DirectOptions())
	report, ran := c.Reassert()
	require.True(t, ran)
	require.True(t, report.Default.Applied)
	require.True(t, c.ProxyEnabled(testAddr))

	c.ClearProxy()
	_, ran = c.Reassert()
	require.False(t, ran, "cleared")
	require.False(t, c.ProxyEnabled(testAddr))

	require.Equal(t, []events.EventType{events.EventProxySet, events.EventProxyDrift, events.EventProxyCleared}, seen)
}
