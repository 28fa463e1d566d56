//go:build !windows

package battery

// Query is not supported on non-Windows platforms.
func Query() (Status, error) {
	return Status{}, ErrNotSupported
}
