//go:build windows

// Package elevation re-runs ppc commands with administrator rights through
// the UAC prompt. Starting and stopping most services needs it.
package elevation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	shell32         = windows.NewLazySystemDLL("shell32.dll")
	shellExecuteExW = shell32.NewProc("ShellExecuteExW")
)

// ErrNotSupported is returned when elevation is attempted on non-Windows platforms.
var ErrNotSupported = errors.New("UAC elevation is only supported on Windows")

// ErrCancelled is returned when the user declines the UAC prompt.
var ErrCancelled = errors.New("elevation cancelled by user")

const (
	swHide                = 0
	seeMaskNoCloseProcess = 0x00000040
)

// shellExecuteInfo is SHELLEXECUTEINFOW.
type shellExecuteInfo struct {
	cbSize         uint32
	fMask          uint32
	hwnd           uintptr
	lpVerb         *uint16
	lpFile         *uint16
	lpParameters   *uint16
	lpDirectory    *uint16
	nShow          int32
	hInstApp       uintptr
	lpIDList       uintptr
	lpClass        *uint16
	hkeyClass      uintptr
	dwHotKey       uint32
	hIconOrMonitor uintptr
	hProcess       windows.Handle
}

// RunElevated executes a command with UAC elevation and waits for it.
// The child's exit code is returned as an error when non-zero.
func RunElevated(executable string, args string, workingDir string) error {
	verbPtr, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return fmt.Errorf("failed to convert verb: %w", err)
	}
	filePtr, err := windows.UTF16PtrFromString(executable)
	if err != nil {
		return fmt.Errorf("failed to convert executable path: %w", err)
	}
	paramsPtr, err := windows.UTF16PtrFromString(args)
	if err != nil {
		return fmt.Errorf("failed to convert parameters: %w", err)
	}
	var dirPtr *uint16
	if workingDir != "" {
		if dirPtr, err = windows.UTF16PtrFromString(workingDir); err != nil {
			return fmt.Errorf("failed to convert directory: %w", err)
		}
	}

	sei := shellExecuteInfo{
		fMask:        seeMaskNoCloseProcess,
		lpVerb:       verbPtr,
		lpFile:       filePtr,
		lpParameters: paramsPtr,
		lpDirectory:  dirPtr,
		nShow:        swHide,
	}
	sei.cbSize = uint32(unsafe.Sizeof(sei))

	ret, _, err := shellExecuteExW.Call(uintptr(unsafe.Pointer(&sei)))
	if ret == 0 {
		if errors.Is(err, windows.ERROR_CANCELLED) {
			return ErrCancelled
		}
		return fmt.Errorf("ShellExecuteExW failed: %w", err)
	}

	if sei.hProcess == 0 {
		return nil
	}
	defer windows.CloseHandle(sei.hProcess)

	if _, err := windows.WaitForSingleObject(sei.hProcess, windows.INFINITE); err != nil {
		return fmt.Errorf("failed to wait for elevated process: %w", err)
	}
	var code uint32
	if err := windows.GetExitCodeProcess(sei.hProcess, &code); err != nil {
		return fmt.Errorf("failed to read exit code: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("elevated command exited with code %d", code)
	}
	return nil
}

// getCliExecutablePath resolves ppc.exe next to the current executable,
// falling back to a PATH lookup.
func getCliExecutablePath() (string, string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", "", fmt.Errorf("failed to get executable path: %w", err)
	}

	dir := filepath.Dir(exePath)
	cliPath := filepath.Join(dir, "ppc.exe")
	if _, err := os.Stat(cliPath); err == nil {
		return cliPath, dir, nil
	}

	cwd, _ := os.Getwd()
	return "ppc.exe", cwd, nil
}

// RunCLIElevated runs "ppc <args>" elevated.
func RunCLIElevated(args ...string) error {
	cliPath, workDir, err := getCliExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate CLI: %w", err)
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = windows.EscapeArg(a)
	}
	return RunElevated(cliPath, strings.Join(quoted, " "), workDir)
}

// IsElevated reports whether the current process token is elevated.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
