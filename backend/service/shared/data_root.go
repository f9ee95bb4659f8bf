package shared

import (
	"os"
	"path/filepath"
	"strings"
)

// DataRootEnv overrides the writable data directory (logs).
const DataRootEnv = "PROXYMANAGER_DATA_ROOT"

// ResolveDataRoot picks the writable data directory.
//
// Order: configured value, $PROXYMANAGER_DATA_ROOT, the per-user config dir, ./data.
// Candidates that cannot be written are skipped.
func ResolveDataRoot(configured string) string {
	candidates := []string{
		configured,
		os.Getenv(DataRootEnv),
		defaultUserDataRoot(),
	}
	for _, c := range candidates {
		c = absPath(c)
		if c != "" && isWritableDir(c) {
			return c
		}
	}
	cwd, _ := os.Getwd()
	return absPath(filepath.Join(cwd, "data"))
}

// AppLogPath 返回应用日志路径：<root>/runtime/app.log
func AppLogPath(root string) string {
	return filepath.Join(root, "runtime", "app.log")
}

func absPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func defaultUserDataRoot() string {
	// - Windows: %APPDATA%\ProxyManager
	// - Linux: ~/.config/ProxyManager
	base, err := os.UserConfigDir()
	if err == nil && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "ProxyManager")
	}
	home, err := os.UserHomeDir()
	if err == nil && strings.TrimSpace(home) != "" {
		return filepath.Join(home, ".proxymanager")
	}
	return ""
}

func isWritableDir(dir string) bool {
	if strings.TrimSpace(dir) == "" {
		return false
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}

	// Probe actual write permission.
	probe := filepath.Join(dir, ".proxymanager_write_probe")
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return false
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return true
}
