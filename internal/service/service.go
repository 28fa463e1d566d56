// Package service controls Windows services through the Service Control
// Manager and keeps the user's selection of services to manage.
// On non-Windows platforms the system controller reports ErrNotSupported.
package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotSupported is returned by the system controller off Windows.
	ErrNotSupported = errors.New("service control is only supported on Windows")

	// ErrServiceNotFound is returned when the named service does not exist.
	ErrServiceNotFound = errors.New("service does not exist")

	// ErrAccessDenied is returned when the caller lacks the rights for an
	// operation. Starting and stopping most services needs elevation.
	ErrAccessDenied = errors.New("access denied")
)

// Status represents the current service status.
type Status int

const (
	StatusUnknown Status = iota
	StatusStopped
	StatusStartPending
	StatusStopPending
	StatusRunning
	StatusContinuePending
	StatusPausePending
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "Stopped"
	case StatusStartPending:
		return "Start Pending"
	case StatusStopPending:
		return "Stop Pending"
	case StatusRunning:
		return "Running"
	case StatusContinuePending:
		return "Continue Pending"
	case StatusPausePending:
		return "Pause Pending"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsRunning reports whether a service in state s counts as running for the
// start/stop buttons: running, or on its way there.
func IsRunning(s Status) bool {
	return s == StatusRunning || s == StatusStartPending
}

// Info describes an installed service.
type Info struct {
	Name        string // unique service name, e.g. wuauserv
	DisplayName string // e.g. Windows Update
	Description string
}

// Controller is the service control facility.
type Controller interface {
	// List returns the names of all installed services.
	List() ([]string, error)
	Query(name string) (Status, error)
	Start(name string) error
	Stop(name string) error
	Info(name string) (Info, error)
}

// OpError records a failed operation on one service.
type OpError struct {
	Op      string
	Service string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("failed to %s service %s: %v", e.Op, e.Service, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// GetExecutablePath returns the path to the current executable.
func GetExecutablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Abs(exe)
}
