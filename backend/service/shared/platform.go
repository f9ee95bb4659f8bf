package shared

import "proxymanager/backend/domain"

// PlatformVersion 返回系统族与主版本档位，取值见 domain.Platform* 常量，不会失败。
func PlatformVersion() string {
	return platformVersion()
}

func classifyWindowsVersion(major, minor uint32) string {
	switch {
	case major >= 10:
		return domain.PlatformWindows10Plus
	case major == 6 && minor >= 2:
		return domain.PlatformWindows8
	case major == 6 && minor == 1:
		return domain.PlatformWindows7
	default:
		return domain.PlatformWindowsLegacy
	}
}
