package shared

import (
	"errors"

	"proxymanager/backend/domain"
)

var ErrUnsupported = errors.New("system proxy configuration not supported on this platform")

// PreparedOptions is an option buffer owned by a ProxyStore. It is built once per
// operation, reused for every connection profile and must be released on every exit path.
type PreparedOptions interface {
	Release()
}

// ProxyStore is the OS proxy-settings store.
//
// The store is system wide and offers no isolation: every method is a single OS call (or
// a fixed pair of calls for Notify) and concurrent writers race at that granularity.
type ProxyStore interface {
	// Prepare encodes opts into an OS option buffer.
	Prepare(opts domain.ProxyOptions) (PreparedOptions, error)
	// Apply writes prepared options to one connection profile.
	Apply(profile domain.ConnectionProfile, prepared PreparedOptions) error
	// Query reads the flags and proxy server of one connection profile.
	Query(profile domain.ConnectionProfile) (domain.ProxyOptions, error)
	// EnumProfiles fills buf with connection profile names. When buf is too small it
	// returns the required count together with ErrBufferTooSmall.
	EnumProfiles(buf []domain.ConnectionProfile) (int, error)
	// Notify tells the OS that settings changed and should be refreshed.
	Notify() error
}

// NewSystemProxyStore returns the ProxyStore of the current platform.
func NewSystemProxyStore() ProxyStore {
	return newSystemProxyStore()
}
