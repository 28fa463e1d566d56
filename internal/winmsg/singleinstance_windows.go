//go:build windows

package winmsg

import (
	"errors"

	"golang.org/x/sys/windows"
)

// Instance holds the single-instance mutex for the process lifetime.
type Instance struct {
	handle windows.Handle
}

// AcquireInstance creates the named mutex. first is false when another
// process already holds it.
func AcquireInstance(name string) (inst *Instance, first bool, err error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, false, err
	}
	h, err := windows.CreateMutex(nil, false, namePtr)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		windows.CloseHandle(h)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &Instance{handle: h}, true, nil
}

// Release closes the mutex handle.
func (i *Instance) Release() error {
	if i == nil || i.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(i.handle)
	i.handle = 0
	return err
}

// Alert shows a modal message box.
func Alert(caption, text string) {
	c, _ := windows.UTF16PtrFromString(caption)
	t, _ := windows.UTF16PtrFromString(text)
	windows.MessageBox(0, t, c, windows.MB_OK|windows.MB_ICONINFORMATION)
}
