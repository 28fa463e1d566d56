//go:build !windows

package powerplan

import "github.com/google/uuid"

type systemSchemes struct{}

// SystemSchemes returns a scheme API that fails with ErrNotSupported.
func SystemSchemes() SchemeAPI {
	return systemSchemes{}
}

func (systemSchemes) Enumerate() ([]uuid.UUID, error)        { return nil, ErrNotSupported }
func (systemSchemes) Active() (uuid.UUID, error)             { return uuid.Nil, ErrNotSupported }
func (systemSchemes) SetActive(uuid.UUID) error              { return ErrNotSupported }
func (systemSchemes) FriendlyName(uuid.UUID) (string, error) { return "", ErrNotSupported }
func (systemSchemes) Description(uuid.UUID) (string, error)  { return "", ErrNotSupported }
