//go:build windows
// +build windows

package shared

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"proxymanager/backend/domain"
)

var (
	modwininet               = windows.NewLazySystemDLL("wininet.dll")
	procInternetSetOptionW   = modwininet.NewProc("InternetSetOptionW")
	procInternetQueryOptionW = modwininet.NewProc("InternetQueryOptionW")

	modrasapi32         = windows.NewLazySystemDLL("rasapi32.dll")
	procRasEnumEntriesW = modrasapi32.NewProc("RasEnumEntriesW")

	modkernel32    = windows.NewLazySystemDLL("kernel32.dll")
	procGlobalFree = modkernel32.NewProc("GlobalFree")
)

const (
	internetOptionRefresh             = 37
	internetOptionSettingsChanged     = 39
	internetOptionPerConnectionOption = 75

	internetPerConnFlags       = 1
	internetPerConnProxyServer = 2

	rasMaxEntryName        = 256
	rasErrorBufferTooSmall = 603
)

// INTERNET_PER_CONN_OPTION_LISTW
type internetPerConnOptionList struct {
	size        uint32
	connection  *uint16
	optionCount uint32
	optionError uint32
	options     *internetPerConnOption
}

// INTERNET_PER_CONN_OPTIONW. The value union is 8 bytes (FILETIME) and pointer aligned
// on 64-bit, which a uint64 reproduces on both word sizes.
type internetPerConnOption struct {
	option uint32
	value  uint64
}

// RASENTRYNAMEW (WINVER >= 0x500)
type rasEntryName struct {
	size          uint32
	entryName     [rasMaxEntryName + 1]uint16
	flags         uint32
	phonebookPath [windows.MAX_PATH + 1]uint16
}

type winINetStore struct{}

func newSystemProxyStore() ProxyStore { return winINetStore{} }

// winPreparedOptions keeps the UTF-16 server string alive while its address sits in an
// option value.
type winPreparedOptions struct {
	options []internetPerConnOption
	server  []uint16
}

func (p *winPreparedOptions) Release() {
	p.options = nil
	p.server = nil
}

func (winINetStore) Prepare(opts domain.ProxyOptions) (PreparedOptions, error) {
	p := &winPreparedOptions{
		options: make([]internetPerConnOption, 0, 2),
	}
	p.options = append(p.options, internetPerConnOption{
		option: internetPerConnFlags,
		value:  uint64(opts.Flags),
	})
	if opts.WritesServer() {
		server, err := windows.UTF16FromString(string(opts.Server))
		if err != nil {
			return nil, fmt.Errorf("encode proxy server %q: %w", opts.Server, err)
		}
		p.server = server
		p.options = append(p.options, internetPerConnOption{
			option: internetPerConnProxyServer,
			value:  uint64(uintptr(unsafe.Pointer(&server[0]))),
		})
	}
	return p, nil
}

func (winINetStore) Apply(profile domain.ConnectionProfile, prepared PreparedOptions) error {
	p, ok := prepared.(*winPreparedOptions)
	if !ok || p == nil || len(p.options) == 0 {
		return errors.New("options were not prepared by this store or already released")
	}
	list := internetPerConnOptionList{
		optionCount: uint32(len(p.options)),
		options:     &p.options[0],
	}
	list.size = uint32(unsafe.Sizeof(list))
	if !profile.IsDefault() {
		name, err := windows.UTF16PtrFromString(string(profile))
		if err != nil {
			return fmt.Errorf("encode connection name %q: %w", profile, err)
		}
		list.connection = name
	}
	err := internetSetOption(internetOptionPerConnectionOption, unsafe.Pointer(&list), list.size)
	runtime.KeepAlive(p)
	return err
}

func (winINetStore) Query(profile domain.ConnectionProfile) (domain.ProxyOptions, error) {
	if err := procInternetQueryOptionW.Find(); err != nil {
		return domain.ProxyOptions{}, err
	}
	options := [2]internetPerConnOption{
		{option: internetPerConnProxyServer},
		{option: internetPerConnFlags},
	}
	list := internetPerConnOptionList{
		optionCount: uint32(len(options)),
		options:     &options[0],
	}
	list.size = uint32(unsafe.Sizeof(list))
	if !profile.IsDefault() {
		name, err := windows.UTF16PtrFromString(string(profile))
		if err != nil {
			return domain.ProxyOptions{}, fmt.Errorf("encode connection name %q: %w", profile, err)
		}
		list.connection = name
	}
	size := list.size
	r0, _, errno := syscall.SyscallN(procInternetQueryOptionW.Addr(),
		0,
		internetOptionPerConnectionOption,
		uintptr(unsafe.Pointer(&list)),
		uintptr(unsafe.Pointer(&size)),
	)
	if r0 == 0 {
		return domain.ProxyOptions{}, callError("InternetQueryOptionW", errno)
	}

	result := domain.ProxyOptions{Flags: domain.ProxyFlags(uint32(options[1].value))}
	if ptr := uintptr(options[0].value); ptr != 0 {
		// WinINet 分配的字符串需由调用方 GlobalFree
		defer globalFree(ptr)
		result.Server = domain.ProxyAddress(windows.UTF16PtrToString((*uint16)(unsafe.Pointer(ptr))))
	}
	return result, nil
}

func (winINetStore) EnumProfiles(buf []domain.ConnectionProfile) (int, error) {
	if err := procRasEnumEntriesW.Find(); err != nil {
		return 0, err
	}
	n := len(buf)
	if n == 0 {
		n = 1
	}
	entries := make([]rasEntryName, n)
	entries[0].size = uint32(unsafe.Sizeof(entries[0]))
	cb := uint32(len(entries)) * entries[0].size
	var count uint32
	r0, _, _ := syscall.SyscallN(procRasEnumEntriesW.Addr(),
		0,
		0,
		uintptr(unsafe.Pointer(&entries[0])),
		uintptr(unsafe.Pointer(&cb)),
		uintptr(unsafe.Pointer(&count)),
	)
	switch r0 {
	case 0:
	case rasErrorBufferTooSmall:
		return int(count), ErrBufferTooSmall
	default:
		return 0, os.NewSyscallError("RasEnumEntriesW", syscall.Errno(r0))
	}
	if int(count) > len(buf) {
		return int(count), ErrBufferTooSmall
	}
	for i := 0; i < int(count); i++ {
		buf[i] = domain.ConnectionProfile(windows.UTF16ToString(entries[i].entryName[:]))
	}
	return int(count), nil
}

func (winINetStore) Notify() error {
	// 触发 WinINet 立刻刷新（让系统/应用尽快生效）。
	if err := internetSetOption(internetOptionSettingsChanged, nil, 0); err != nil {
		return err
	}
	return internetSetOption(internetOptionRefresh, nil, 0)
}

func internetSetOption(option uintptr, buf unsafe.Pointer, size uint32) error {
	if err := procInternetSetOptionW.Find(); err != nil {
		return err
	}
	r0, _, errno := syscall.SyscallN(procInternetSetOptionW.Addr(), 0, option, uintptr(buf), uintptr(size))
	if r0 == 0 {
		return callError(fmt.Sprintf("InternetSetOptionW(%d)", option), errno)
	}
	return nil
}

func globalFree(ptr uintptr) {
	if procGlobalFree.Find() != nil {
		return
	}
	_, _, _ = syscall.SyscallN(procGlobalFree.Addr(), ptr)
}

func callError(name string, errno syscall.Errno) error {
	if errno != 0 {
		return os.NewSyscallError(name, errno)
	}
	return fmt.Errorf("%s failed", name)
}
