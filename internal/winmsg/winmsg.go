// Package winmsg provides the hidden window that receives power broadcasts
// and the named mutex that keeps the tray to a single instance.
package winmsg

import "errors"

// ErrNotSupported is returned off Windows.
var ErrNotSupported = errors.New("window messages are only supported on Windows")

// Handler processes one window message. Returning handled=false passes the
// message to the default window procedure.
type Handler func(msg uint32, wparam, lparam uintptr) (result uintptr, handled bool)

// Window messages used by this package and its callers.
const (
	WMClose   = 0x0010
	WMDestroy = 0x0002
	WMApp     = 0x8000
)
