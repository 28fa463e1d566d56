//go:build windows

package winmsg

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procUnregisterClassW = user32.NewProc("UnregisterClassW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procGetMessageW      = user32.NewProc("GetMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procPostMessageW     = user32.NewProc("PostMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type point struct{ X, Y int32 }

type message struct {
	HWnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

// Window is a hidden top-level window. It is created and pumped on its own
// locked OS thread, so its handler runs on that thread.
type Window struct {
	hwnd    uintptr
	handler atomic.Value // Handler
	done    chan struct{}
	err     error

	closeOnce sync.Once
}

// Open creates a hidden window of the given class and starts its message
// pump. Top-level windows receive broadcast power messages that
// message-only windows do not.
func Open(className string, h Handler) (*Window, error) {
	w := &Window{done: make(chan struct{})}
	if h != nil {
		w.handler.Store(h)
	}

	ready := make(chan error, 1)
	go w.run(className, ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return w, nil
}

// Handle returns the window handle (HWND).
func (w *Window) Handle() uintptr { return w.hwnd }

// SetHandler replaces the message handler. Safe to call from any goroutine.
func (w *Window) SetHandler(h Handler) { w.handler.Store(h) }

// Post queues a message for the window.
func (w *Window) Post(msg uint32, wparam, lparam uintptr) error {
	r, _, err := procPostMessageW.Call(w.hwnd, uintptr(msg), wparam, lparam)
	if r == 0 {
		return fmt.Errorf("PostMessage failed: %w", err)
	}
	return nil
}

// Done is closed once the message pump has exited.
func (w *Window) Done() <-chan struct{} { return w.done }

// Err returns the pump error after Done is closed.
func (w *Window) Err() error { return w.err }

// Close destroys the window and waits for the pump to exit.
func (w *Window) Close() error {
	w.closeOnce.Do(func() {
		select {
		case <-w.done:
			return
		default:
		}
		if err := w.Post(WMClose, 0, 0); err != nil {
			w.err = err
		}
	})
	<-w.done
	return w.err
}

func (w *Window) run(className string, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	classPtr, err := windows.UTF16PtrFromString(className)
	if err != nil {
		ready <- err
		return
	}
	var instance windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
		ready <- fmt.Errorf("GetModuleHandleEx failed: %w", err)
		return
	}

	wc := wndClassEx{
		WndProc:   windows.NewCallback(w.wndProc),
		Instance:  instance,
		ClassName: classPtr,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		ready <- fmt.Errorf("RegisterClassEx failed: %w", err)
		return
	}
	defer procUnregisterClassW.Call(uintptr(unsafe.Pointer(classPtr)), uintptr(instance))

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(classPtr)),
		uintptr(unsafe.Pointer(classPtr)),
		0,          // style: not visible
		0, 0, 0, 0, // position and size
		0, 0,
		uintptr(instance),
		0,
	)
	if hwnd == 0 {
		ready <- fmt.Errorf("CreateWindowEx failed: %w", err)
		return
	}
	w.hwnd = hwnd
	ready <- nil

	var m message
	for {
		r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case -1:
			w.err = fmt.Errorf("GetMessage failed: %w", err)
			return
		case 0:
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (w *Window) wndProc(hwnd, msg, wparam, lparam uintptr) uintptr {
	if h, ok := w.handler.Load().(Handler); ok && h != nil {
		if result, handled := h(uint32(msg), wparam, lparam); handled {
			return result
		}
	}
	switch msg {
	case WMClose:
		procDestroyWindow.Call(hwnd)
		return 0
	case WMDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, msg, wparam, lparam)
	return r
}
