package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"proxymanager/backend/channel"
	"proxymanager/backend/domain"
	"proxymanager/backend/service/shared"
	"proxymanager/backend/service/sysproxy"
)

func newTestFacade(store *shared.MemoryStore) *Facade {
	return NewFacade(sysproxy.NewController(store, nil, nil), nil, nil)
}

func invoke(f *Facade, method string, args channel.Arguments) channel.Response {
	return f.Channel().Invoke(context.Background(), channel.MethodCall{Method: method, Arguments: args})
}

func TestChannel_RegistersHostMethods(t *testing.T) {
	t.Parallel()

	f := newTestFacade(shared.NewMemoryStore())
	for _, method := range []string{
		MethodCleanSystemProxy,
		MethodGetPlatformVersion,
		MethodGetSystemProxyEnable,
		MethodSetSystemProxy,
	} {
		resp := invoke(f, method, channel.Arguments{"proxy": "127.0.0.1:1"})
		require.NotEqual(t, channel.StatusNotImplemented, resp.Status, method)
	}
	require.Equal(t, ChannelName, f.Channel().Name())
}

func TestChannel_SetGetClean(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("VPN")
	f := newTestFacade(store)
	args := channel.Arguments{"proxy": "127.0.0.1:7890"}

	resp := invoke(f, MethodGetSystemProxyEnable, args)
	require.Equal(t, channel.StatusSuccess, resp.Status)
	require.Equal(t, "false", resp.Result)

	resp = invoke(f, MethodSetSystemProxy, args)
	require.Equal(t, channel.StatusSuccess, resp.Status)
	require.Nil(t, resp.Result)

	resp = invoke(f, MethodGetSystemProxyEnable, args)
	require.Equal(t, "true", resp.Result)

	resp = invoke(f, MethodCleanSystemProxy, nil)
	require.Equal(t, channel.StatusSuccess, resp.Status)

	resp = invoke(f, MethodGetSystemProxyEnable, args)
	require.Equal(t, "false", resp.Result)
}

func TestChannel_SetReportsSuccessOnPartialFailure(t *testing.T) {
	t.Parallel()

	store := shared.NewMemoryStore("A", "B")
	store.ApplyErr["A"] = errors.New("denied")
	f := newTestFacade(store)

	resp := invoke(f, MethodSetSystemProxy, channel.Arguments{"proxy": "127.0.0.1:1"})
	require.Equal(t, channel.StatusSuccess, resp.Status)
	require.Equal(t, []domain.ConnectionProfile{domain.DefaultProfile, "B"}, store.Applied())
}

func TestChannel_MissingProxyArgument(t *testing.T) {
	t.Parallel()

	f := newTestFacade(shared.NewMemoryStore())
	for _, method := range []string{MethodSetSystemProxy, MethodGetSystemProxyEnable} {
		resp := invoke(f, method, channel.Arguments{})
		require.Equal(t, channel.StatusError, resp.Status, method)
		require.Equal(t, channel.CodeInvalidArgument, resp.Code, method)
	}
}

func TestChannel_PlatformVersion(t *testing.T) {
	t.Parallel()

	f := newTestFacade(shared.NewMemoryStore())
	f.platformVersion = func() string { return domain.PlatformWindows7 }

	resp := invoke(f, MethodGetPlatformVersion, nil)
	require.Equal(t, channel.StatusSuccess, resp.Status)
	require.Equal(t, domain.PlatformWindows7, resp.Result)
}

func TestChannel_UnknownMethod(t *testing.T) {
	t.Parallel()

	resp := invoke(newTestFacade(shared.NewMemoryStore()), "getSystemProxyBypass", nil)
	require.Equal(t, channel.StatusNotImplemented, resp.Status)
}
