package domain

import "time"

// ProxyAddress 代理地址，形如 host:port。
//
// 该值原样写入系统设置，不做解析、校验或规范化。
type ProxyAddress string

// ConnectionProfile 网络连接配置名（拨号/VPN 条目）。
// 空名称表示默认（LAN）连接。
type ConnectionProfile string

// DefaultProfile is the LAN profile; the OS receives a null connection name for it.
const DefaultProfile ConnectionProfile = ""

func (p ConnectionProfile) IsDefault() bool { return p == DefaultProfile }

func (p ConnectionProfile) String() string {
	if p.IsDefault() {
		return "<LAN>"
	}
	return string(p)
}

// ProxyFlags mirrors the per-connection PROXY_TYPE_* bit set.
type ProxyFlags uint32

const (
	ProxyTypeDirect       ProxyFlags = 0x1
	ProxyTypeProxy        ProxyFlags = 0x2
	ProxyTypeAutoProxyURL ProxyFlags = 0x4
	ProxyTypeAutoDetect   ProxyFlags = 0x8
)

func (f ProxyFlags) Has(bit ProxyFlags) bool { return f&bit != 0 }

// ProxyOptions 单个连接的代理选项，对应系统的 per-connection option list。
// Server 仅在 Flags 含 ProxyTypeProxy 时写入。
type ProxyOptions struct {
	Flags  ProxyFlags   `json:"flags"`
	Server ProxyAddress `json:"server,omitempty"`
}

// ProxiedOptions returns the "direct + proxy" option set used to enable a proxy.
func ProxiedOptions(addr ProxyAddress) ProxyOptions {
	return ProxyOptions{Flags: ProxyTypeDirect | ProxyTypeProxy, Server: addr}
}

// DirectOptions returns the direct-only option set used to clear the proxy.
func DirectOptions() ProxyOptions {
	return ProxyOptions{Flags: ProxyTypeDirect}
}

// WritesServer reports whether the server option is part of the write.
func (o ProxyOptions) WritesServer() bool { return o.Flags.Has(ProxyTypeProxy) }

// Matches reports whether these (queried) options describe an enabled proxy at addr.
// The comparison is byte-exact.
func (o ProxyOptions) Matches(addr ProxyAddress) bool {
	return o.Server == addr && o.Flags.Has(ProxyTypeProxy)
}

// ProfileResult 单个连接的写入结果
// Applied=false 且 Error 为空表示未尝试写入。
type ProfileResult struct {
	Profile ConnectionProfile `json:"profile"`
	Applied bool              `json:"applied"`
	Error   string            `json:"error,omitempty"`
}

// ApplyReport 一次 set/clear 广播的结果。
type ApplyReport struct {
	OperationID string          `json:"operationId"`
	Options     ProxyOptions    `json:"options"`
	Default     ProfileResult   `json:"default"`
	Profiles    []ProfileResult `json:"profiles"`
	Aborted     bool            `json:"aborted"`
	AbortReason string          `json:"abortReason,omitempty"`
	Notified    bool            `json:"notified"`
	StartedAt   time.Time       `json:"startedAt"`
	FinishedAt  time.Time       `json:"finishedAt"`
}

// Failed returns the profiles (default included) whose write failed.
func (r ApplyReport) Failed() []ProfileResult {
	var failed []ProfileResult
	if r.Default.Error != "" {
		failed = append(failed, r.Default)
	}
	for _, p := range r.Profiles {
		if p.Error != "" {
			failed = append(failed, p)
		}
	}
	return failed
}

// Platform version labels.
const (
	PlatformWindows10Plus = "Windows 10+"
	PlatformWindows8      = "Windows 8"
	PlatformWindows7      = "Windows 7"
	PlatformWindowsLegacy = "Windows"
	PlatformUnsupported   = "Unsupported"
)

// ProxyStatus 默认连接的当前代理状态
type ProxyStatus struct {
	Address ProxyAddress  `json:"address"`
	Enabled bool          `json:"enabled"`
	Options *ProxyOptions `json:"options,omitempty"`
	Error   string        `json:"error,omitempty"`
}
