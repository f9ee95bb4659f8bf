//go:build !windows
// +build !windows

package shared

import "proxymanager/backend/domain"

func platformVersion() string {
	return domain.PlatformUnsupported
}
