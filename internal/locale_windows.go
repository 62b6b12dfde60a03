//go:build windows

package internal

import (
	"syscall"
	"unsafe"
)

var (
	kernel32                     = syscall.NewLazyDLL("kernel32.dll")
	procGetUserDefaultLocaleName = kernel32.NewProc("GetUserDefaultLocaleName")
)

// localeNameMaxLength is LOCALE_NAME_MAX_LENGTH
const localeNameMaxLength = 85

// detectSystemLocale checks the environment first (WSL, tests), then asks Windows
func detectSystemLocale() string {
	if locale := localeFromEnv(); locale != "" {
		return locale
	}

	buf := make([]uint16, localeNameMaxLength)
	ret, _, _ := procGetUserDefaultLocaleName.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(localeNameMaxLength),
	)
	if ret == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf)
}
