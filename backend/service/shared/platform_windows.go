//go:build windows
// +build windows

package shared

import "golang.org/x/sys/windows"

// RtlGetVersion is not subject to manifest-based version lies.
func platformVersion() string {
	info := windows.RtlGetVersion()
	if info == nil {
		return classifyWindowsVersion(0, 0)
	}
	return classifyWindowsVersion(info.MajorVersion, info.MinorVersion)
}
