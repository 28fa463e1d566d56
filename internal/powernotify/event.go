package powernotify

import (
	"fmt"

	"github.com/google/uuid"
)

// Event is one decoded power-setting broadcast. The set of implementations
// is closed: PowerSourceEvent, RemainingBatteryEvent, DisplayStateEvent and
// PowerPlanEvent.
type Event interface {
	Topic() Topic
	isEvent()
}

// PowerSource is the system power condition (SYSTEM_POWER_CONDITION).
type PowerSource int

const (
	PowerSourceAC PowerSource = iota
	PowerSourceBattery
	PowerSourceUPS
	PowerSourceOther
)

func (s PowerSource) String() string {
	switch s {
	case PowerSourceAC:
		return "AC"
	case PowerSourceBattery:
		return "Battery"
	case PowerSourceUPS:
		return "UPS"
	case PowerSourceOther:
		return "Other"
	default:
		return fmt.Sprintf("PowerSource(%d)", int(s))
	}
}

// DisplayState is the console display state.
type DisplayState int

const (
	DisplayOff DisplayState = iota
	DisplayOn
	DisplayDimmed
)

func (s DisplayState) String() string {
	switch s {
	case DisplayOff:
		return "Off"
	case DisplayOn:
		return "On"
	case DisplayDimmed:
		return "Dimmed"
	default:
		return fmt.Sprintf("DisplayState(%d)", int(s))
	}
}

// PowerSourceEvent reports a change between AC, battery and UPS power.
type PowerSourceEvent struct {
	Source PowerSource
}

// RemainingBatteryEvent reports the remaining battery charge in percent.
type RemainingBatteryEvent struct {
	Percent int
}

// DisplayStateEvent reports the console display turning off, on or dimming.
type DisplayStateEvent struct {
	State DisplayState
}

// PowerPlanEvent reports a change of the active power scheme.
type PowerPlanEvent struct {
	Plan uuid.UUID
}

func (PowerSourceEvent) Topic() Topic      { return TopicPowerSource }
func (RemainingBatteryEvent) Topic() Topic { return TopicRemainingBattery }
func (DisplayStateEvent) Topic() Topic     { return TopicDisplayState }
func (PowerPlanEvent) Topic() Topic        { return TopicPowerPlan }

func (PowerSourceEvent) isEvent()      {}
func (RemainingBatteryEvent) isEvent() {}
func (DisplayStateEvent) isEvent()     {}
func (PowerPlanEvent) isEvent()        {}

// Handlers holds one callback per topic. Nil callbacks are skipped.
type Handlers struct {
	PowerSourceChanged      func(PowerSourceEvent)
	RemainingBatteryChanged func(RemainingBatteryEvent)
	DisplayStateChanged     func(DisplayStateEvent)
	PowerPlanChanged        func(PowerPlanEvent)
}

func (h Handlers) dispatch(ev Event) {
	switch e := ev.(type) {
	case PowerSourceEvent:
		if h.PowerSourceChanged != nil {
			h.PowerSourceChanged(e)
		}
	case RemainingBatteryEvent:
		if h.RemainingBatteryChanged != nil {
			h.RemainingBatteryChanged(e)
		}
	case DisplayStateEvent:
		if h.DisplayStateChanged != nil {
			h.DisplayStateChanged(e)
		}
	case PowerPlanEvent:
		if h.PowerPlanChanged != nil {
			h.PowerPlanChanged(e)
		}
	}
}
