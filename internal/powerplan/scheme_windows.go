//go:build windows

package powerplan

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/windows"

	"github.com/powerplanchanger/ppc/internal/powernotify"
)

var (
	powrprof                  = windows.NewLazySystemDLL("powrprof.dll")
	procPowerEnumerate        = powrprof.NewProc("PowerEnumerate")
	procPowerGetActiveScheme  = powrprof.NewProc("PowerGetActiveScheme")
	procPowerSetActiveScheme  = powrprof.NewProc("PowerSetActiveScheme")
	procPowerReadFriendlyName = powrprof.NewProc("PowerReadFriendlyName")
	procPowerReadDescription  = powrprof.NewProc("PowerReadDescription")
)

// POWER_DATA_ACCESSOR ACCESS_SCHEME
const accessScheme = 16

type systemSchemes struct{}

// SystemSchemes returns the powrprof.dll scheme API.
func SystemSchemes() SchemeAPI {
	return systemSchemes{}
}

func (systemSchemes) Enumerate() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for index := uint32(0); ; index++ {
		var g windows.GUID
		size := uint32(unsafe.Sizeof(g))
		r, _, _ := procPowerEnumerate.Call(
			0, 0, 0,
			accessScheme,
			uintptr(index),
			uintptr(unsafe.Pointer(&g)),
			uintptr(unsafe.Pointer(&size)),
		)
		if windows.Errno(r) == windows.ERROR_NO_MORE_ITEMS {
			return ids, nil
		}
		if r != 0 {
			return ids, fmt.Errorf("PowerEnumerate(%d): %w", index, windows.Errno(r))
		}
		ids = append(ids, powernotify.FromWindowsGUID(g))
	}
}

func (systemSchemes) Active() (uuid.UUID, error) {
	var p *windows.GUID
	r, _, _ := procPowerGetActiveScheme.Call(0, uintptr(unsafe.Pointer(&p)))
	if r != 0 {
		return uuid.Nil, fmt.Errorf("PowerGetActiveScheme: %w", windows.Errno(r))
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(p))))
	return powernotify.FromWindowsGUID(*p), nil
}

func (systemSchemes) SetActive(id uuid.UUID) error {
	g := powernotify.ToWindowsGUID(id)
	r, _, _ := procPowerSetActiveScheme.Call(0, uintptr(unsafe.Pointer(&g)))
	if r != 0 {
		return fmt.Errorf("PowerSetActiveScheme: %w", windows.Errno(r))
	}
	return nil
}

func (systemSchemes) FriendlyName(id uuid.UUID) (string, error) {
	return readSchemeString(procPowerReadFriendlyName, id)
}

func (systemSchemes) Description(id uuid.UUID) (string, error) {
	return readSchemeString(procPowerReadDescription, id)
}

// readSchemeString calls a PowerRead* function twice: once for the size,
// once for the UTF-16 text.
func readSchemeString(proc *windows.LazyProc, id uuid.UUID) (string, error) {
	g := powernotify.ToWindowsGUID(id)
	var size uint32
	r, _, _ := proc.Call(0, uintptr(unsafe.Pointer(&g)), 0, 0, 0, uintptr(unsafe.Pointer(&size)))
	if r != 0 {
		return "", fmt.Errorf("%s: %w", proc.Name, windows.Errno(r))
	}
	if size < 2 {
		return "", nil
	}
	buf := make([]uint16, (size+1)/2)
	r, _, _ = proc.Call(0, uintptr(unsafe.Pointer(&g)), 0, 0,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if r != 0 {
		return "", fmt.Errorf("%s: %w", proc.Name, windows.Errno(r))
	}
	return windows.UTF16ToString(buf), nil
}
