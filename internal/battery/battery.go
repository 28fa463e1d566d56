// Package battery reads and interprets the system power status.
package battery

import (
	"errors"
	"time"
)

// ErrNotSupported is returned by Query on platforms without
// GetSystemPowerStatus.
var ErrNotSupported = errors.New("battery status is only supported on Windows")

const (
	unknownByte     = 255
	unknownLifetime = -1

	flagCharging  = 8
	flagNoBattery = 128

	acOnline = 1
	acOff    = 0
)

// State combines the AC line status with the battery charge status.
type State int

const (
	FullyCharged State = iota // plugged in and fully charged
	Charging                  // plugged in and charging
	NotCharging               // plugged in but not charging
	Discharging               // running on battery
	NoBattery                 // plugged in, no battery installed
	Unknown
)

func (s State) String() string {
	switch s {
	case FullyCharged:
		return "Fully charged"
	case Charging:
		return "Charging"
	case NotCharging:
		return "Plugged in, not charging"
	case Discharging:
		return "Discharging"
	case NoBattery:
		return "No battery"
	default:
		return "Unknown"
	}
}

// Status mirrors SYSTEM_POWER_STATUS. The zero value is not meaningful;
// obtain one from Query or a Source.
type Status struct {
	ACLineStatus        uint8
	BatteryFlag         uint8
	BatteryLifePercent  uint8
	SystemStatusFlag    uint8
	BatteryLifeTime     int32
	BatteryFullLifeTime int32
}

// Source returns the current power status.
type Source interface {
	Status() (Status, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (Status, error)

// Status calls f.
func (f SourceFunc) Status() (Status, error) { return f() }

// SystemSource reads the live system status.
var SystemSource Source = SourceFunc(Query)

// Equal reports whether s and o describe the same battery and charger
// state. SystemStatusFlag, the battery saver bit, is not compared.
func (s Status) Equal(o Status) bool {
	return s.ACLineStatus == o.ACLineStatus &&
		s.BatteryFlag == o.BatteryFlag &&
		s.BatteryLifePercent == o.BatteryLifePercent &&
		s.BatteryLifeTime == o.BatteryLifeTime &&
		s.BatteryFullLifeTime == o.BatteryFullLifeTime
}

// RemainingCharge returns the charge in [0, 100]; ok is false when unknown.
func (s Status) RemainingCharge() (percent int, ok bool) {
	if s.BatteryLifePercent == unknownByte {
		return 0, false
	}
	return int(s.BatteryLifePercent), true
}

// BatteryExists reports whether a battery is installed.
func (s Status) BatteryExists() (exists bool, ok bool) {
	if s.BatteryFlag == unknownByte {
		return false, false
	}
	return s.BatteryFlag&flagNoBattery == 0, true
}

// IsPluggedIn reports whether the machine is on AC power.
func (s Status) IsPluggedIn() (plugged bool, ok bool) {
	if s.ACLineStatus == unknownByte {
		return false, false
	}
	return s.ACLineStatus == acOnline, true
}

// IsCharging reports whether the battery is charging. This differs from
// IsPluggedIn: a plugged-in battery is not always charging.
func (s Status) IsCharging() (charging bool, ok bool) {
	if s.BatteryFlag == unknownByte {
		return false, false
	}
	return s.BatteryFlag&flagCharging != 0, true
}

// RemainingLifetime returns the estimated remaining battery time.
func (s Status) RemainingLifetime() (time.Duration, bool) {
	return lifetime(s.BatteryLifeTime)
}

// FullLifetime returns the estimated battery time when fully charged.
func (s Status) FullLifetime() (time.Duration, bool) {
	return lifetime(s.BatteryFullLifeTime)
}

func lifetime(secs int32) (time.Duration, bool) {
	if secs == unknownLifetime {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// State derives the combined battery/charger state.
func (s Status) State() State {
	if s.BatteryFlag == unknownByte || s.ACLineStatus == unknownByte {
		return Unknown
	}
	if s.ACLineStatus == acOff {
		if s.BatteryLifePercent == unknownByte {
			return Unknown
		}
		return Discharging
	}
	if s.BatteryFlag&flagNoBattery != 0 {
		return NoBattery
	}
	if s.BatteryLifePercent == 100 {
		return FullyCharged
	}
	if s.BatteryFlag&flagCharging != 0 {
		return Charging
	}
	return NotCharging
}
