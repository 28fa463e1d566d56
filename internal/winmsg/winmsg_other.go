//go:build !windows

package winmsg

import (
	"fmt"
	"os"
)

// Window is unavailable off Windows.
type Window struct{}

// Open returns ErrNotSupported.
func Open(string, Handler) (*Window, error) { return nil, ErrNotSupported }

func (w *Window) Handle() uintptr                     { return 0 }
func (w *Window) SetHandler(Handler)                  {}
func (w *Window) Post(uint32, uintptr, uintptr) error { return ErrNotSupported }
func (w *Window) Done() <-chan struct{}               { return nil }
func (w *Window) Err() error                          { return nil }
func (w *Window) Close() error                        { return nil }

// Instance is a no-op off Windows.
type Instance struct{}

// AcquireInstance always reports the first instance.
func AcquireInstance(string) (*Instance, bool, error) { return &Instance{}, true, nil }

// Release does nothing.
func (i *Instance) Release() error { return nil }

// Alert prints to stderr.
func Alert(caption, text string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", caption, text)
}
