package shared

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"proxymanager/backend/domain"
)

func TestClassifyWindowsVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		major, minor uint32
		want         string
	}{
		{10, 0, domain.PlatformWindows10Plus},
		{11, 0, domain.PlatformWindows10Plus},
		{6, 3, domain.PlatformWindows8},
		{6, 2, domain.PlatformWindows8},
		{6, 1, domain.PlatformWindows7},
		{6, 0, domain.PlatformWindowsLegacy},
		{5, 1, domain.PlatformWindowsLegacy},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, classifyWindowsVersion(tt.major, tt.minor), "%d.%d", tt.major, tt.minor)
	}
}

func TestPlatformVersion_ReturnsKnownLabel(t *testing.T) {
	t.Parallel()

	got := PlatformVersion()
	require.Contains(t, []string{
		domain.PlatformWindows10Plus,
		domain.PlatformWindows8,
		domain.PlatformWindows7,
		domain.PlatformWindowsLegacy,
		domain.PlatformUnsupported,
	}, got)
	if runtime.GOOS != "windows" {
		require.Equal(t, domain.PlatformUnsupported, got)
	}
}
