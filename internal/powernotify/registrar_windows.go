//go:build windows

package powernotify

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/windows"
)

var (
	user32                                 = windows.NewLazySystemDLL("user32.dll")
	procRegisterPowerSettingNotification   = user32.NewProc("RegisterPowerSettingNotification")
	procUnregisterPowerSettingNotification = user32.NewProc("UnregisterPowerSettingNotification")
)

// DEVICE_NOTIFY_WINDOW_HANDLE: the recipient is a window handle.
const deviceNotifyWindowHandle = 0

// maxPayload bounds the view built over an lParam. Known payloads are at
// most a GUID; anything larger is only ever inspected by its header.
const maxPayload = 4096

type windowsRegistrar struct{}

// NewWindowsRegistrar returns the user32 power-setting registration facility.
func NewWindowsRegistrar() Registrar {
	return windowsRegistrar{}
}

func (windowsRegistrar) Register(recipient uintptr, topic Topic) (Handle, error) {
	g := ToWindowsGUID(uuid.UUID(topic))
	r, _, err := procRegisterPowerSettingNotification.Call(
		recipient,
		uintptr(unsafe.Pointer(&g)),
		deviceNotifyWindowHandle,
	)
	if r == 0 {
		return 0, fmt.Errorf("RegisterPowerSettingNotification: %w", err)
	}
	return Handle(r), nil
}

func (windowsRegistrar) Unregister(h Handle) error {
	r, _, err := procUnregisterPowerSettingNotification.Call(uintptr(h))
	if r == 0 {
		return fmt.Errorf("UnregisterPowerSettingNotification: %w", err)
	}
	return nil
}

// ToWindowsGUID converts u to the x/sys/windows GUID struct.
func ToWindowsGUID(u uuid.UUID) windows.GUID {
	var g windows.GUID
	g.Data1 = binary.BigEndian.Uint32(u[0:4])
	g.Data2 = binary.BigEndian.Uint16(u[4:6])
	g.Data3 = binary.BigEndian.Uint16(u[6:8])
	copy(g.Data4[:], u[8:])
	return g
}

// FromWindowsGUID converts an x/sys/windows GUID to a uuid.UUID.
func FromWindowsGUID(g windows.GUID) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], g.Data1)
	binary.BigEndian.PutUint16(u[4:6], g.Data2)
	binary.BigEndian.PutUint16(u[6:8], g.Data3)
	copy(u[8:], g.Data4[:])
	return u
}

// BroadcastBytes returns a view of the POWERBROADCAST_SETTING that lparam
// points to, covering the envelope and its declared payload. The view is
// only valid while the window procedure is handling the message.
func BroadcastBytes(lparam uintptr) []byte {
	if lparam == 0 {
		return nil
	}
	base := (*byte)(unsafe.Pointer(lparam))
	hdr := unsafe.Slice(base, EnvelopeSize)
	n := binary.LittleEndian.Uint32(hdr[GUIDSize:EnvelopeSize])
	if n > maxPayload {
		return hdr
	}
	return unsafe.Slice(base, EnvelopeSize+int(n))
}
