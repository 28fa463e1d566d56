//go:build windows

package battery

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                 = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemPowerStatus = kernel32.NewProc("GetSystemPowerStatus")
)

// Query returns the current SYSTEM_POWER_STATUS.
func Query() (Status, error) {
	var s Status
	r, _, err := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&s)))
	if r == 0 {
		return Status{}, fmt.Errorf("GetSystemPowerStatus: %w", err)
	}
	return s, nil
}
