//go:build windows

package service

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// scmController talks to the local Service Control Manager. Every call opens
// its own handles with only the rights it needs, so listing and querying work
// without elevation.
type scmController struct{}

// SystemController returns the controller for the local machine.
func SystemController() Controller {
	return scmController{}
}

func connect(access uint32) (*mgr.Mgr, error) {
	h, err := windows.OpenSCManager(nil, nil, access)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to service manager: %w", mapErr(err))
	}
	return &mgr.Mgr{Handle: h}, nil
}

func open(name string, access uint32) (*mgr.Service, func(), error) {
	m, err := connect(windows.SC_MANAGER_CONNECT)
	if err != nil {
		return nil, nil, err
	}
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		m.Disconnect()
		return nil, nil, err
	}
	h, err := windows.OpenService(m.Handle, namePtr, access)
	if err != nil {
		m.Disconnect()
		return nil, nil, mapErr(err)
	}
	s := &mgr.Service{Name: name, Handle: h}
	return s, func() {
		s.Close()
		m.Disconnect()
	}, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST):
		return fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return err
}

func (scmController) List() ([]string, error) {
	m, err := connect(windows.SC_MANAGER_CONNECT | windows.SC_MANAGER_ENUMERATE_SERVICE)
	if err != nil {
		return nil, err
	}
	defer m.Disconnect()

	names, err := m.ListServices()
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", mapErr(err))
	}
	return names, nil
}

func (scmController) Query(name string) (Status, error) {
	s, done, err := open(name, windows.SERVICE_QUERY_STATUS)
	if err != nil {
		return StatusUnknown, err
	}
	defer done()

	status, err := s.Query()
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to query service: %w", mapErr(err))
	}
	return svcStateToStatus(status.State), nil
}

func (scmController) Start(name string) error {
	s, done, err := open(name, windows.SERVICE_START)
	if err != nil {
		return err
	}
	defer done()

	if err := s.Start(); err != nil {
		return mapErr(err)
	}
	return nil
}

func (scmController) Stop(name string) error {
	s, done, err := open(name, windows.SERVICE_STOP|windows.SERVICE_QUERY_STATUS)
	if err != nil {
		return err
	}
	defer done()

	if _, err := s.Control(svc.Stop); err != nil {
		return mapErr(err)
	}
	return nil
}

func (scmController) Info(name string) (Info, error) {
	s, done, err := open(name, windows.SERVICE_QUERY_CONFIG)
	if err != nil {
		return Info{}, err
	}
	defer done()

	cfg, err := s.Config()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read service config: %w", mapErr(err))
	}
	return Info{Name: name, DisplayName: cfg.DisplayName, Description: cfg.Description}, nil
}

// svcStateToStatus converts Windows service state to our Status type.
func svcStateToStatus(state svc.State) Status {
	switch state {
	case svc.Stopped:
		return StatusStopped
	case svc.StartPending:
		return StatusStartPending
	case svc.StopPending:
		return StatusStopPending
	case svc.Running:
		return StatusRunning
	case svc.ContinuePending:
		return StatusContinuePending
	case svc.PausePending:
		return StatusPausePending
	case svc.Paused:
		return StatusPaused
	default:
		return StatusUnknown
	}
}
