//go:build !windows

// Package elevation re-runs ppc commands with administrator rights through
// the UAC prompt. On non-Windows platforms these functions return errors.
package elevation

import (
	"errors"
)

// ErrNotSupported is returned when elevation is attempted on non-Windows platforms.
var ErrNotSupported = errors.New("UAC elevation is only supported on Windows")

// ErrCancelled is returned when the user declines the UAC prompt.
var ErrCancelled = errors.New("elevation cancelled by user")

// RunElevated is not supported on non-Windows platforms.
func RunElevated(executable string, args string, workingDir string) error {
	return ErrNotSupported
}

// RunCLIElevated is not supported on non-Windows platforms.
func RunCLIElevated(args ...string) error {
	return ErrNotSupported
}

// IsElevated reports false on non-Windows platforms.
func IsElevated() bool {
	return false
}
