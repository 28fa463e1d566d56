//go:build !windows

package service

type unsupportedController struct{}

// SystemController returns a controller that fails with ErrNotSupported.
func SystemController() Controller {
	return unsupportedController{}
}

func (unsupportedController) List() ([]string, error)      { return nil, ErrNotSupported }
func (unsupportedController) Query(string) (Status, error) { return StatusUnknown, ErrNotSupported }
func (unsupportedController) Start(string) error           { return ErrNotSupported }
func (unsupportedController) Stop(string) error            { return ErrNotSupported }
func (unsupportedController) Info(string) (Info, error)    { return Info{}, ErrNotSupported }
