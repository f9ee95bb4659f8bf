//go:build !windows
// +build !windows

package shared

import "proxymanager/backend/domain"

// unsupportedStore 非 Windows 平台：所有调用都按系统调用失败处理
type unsupportedStore struct{}

func newSystemProxyStore() ProxyStore { return unsupportedStore{} }

func (unsupportedStore) Prepare(domain.ProxyOptions) (PreparedOptions, error) {
	return nil, ErrUnsupported
}

func (unsupportedStore) Apply(domain.ConnectionProfile, PreparedOptions) error {
	return ErrUnsupported
}

func (unsupportedStore) Query(domain.ConnectionProfile) (domain.ProxyOptions, error) {
	return domain.ProxyOptions{}, ErrUnsupported
}

func (unsupportedStore) EnumProfiles([]domain.ConnectionProfile) (int, error) {
	return 0, ErrUnsupported
}

func (unsupportedStore) Notify() error { return ErrUnsupported }
