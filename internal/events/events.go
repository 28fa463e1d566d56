// Package events carries power and service notifications from the tray
// controller to the UI goroutines.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/powerplanchanger/ppc/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog EventType = "log"

	// Decoded power-setting broadcasts
	EventPowerSource  EventType = "power_source"
	EventBattery      EventType = "battery_remaining"
	EventDisplayState EventType = "display_state"
	EventPowerPlan    EventType = "power_plan"

	// Derived state
	EventStatusChanged   EventType = "status_changed"   // tray caption or icon changed
	EventServicesChanged EventType = "services_changed" // selection or service states changed
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// LogEvent represents log messages surfaced in the UI
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Error   error
}

// PowerSourceEvent reports the new power source ("AC", "Battery", ...)
type PowerSourceEvent struct {
	BaseEvent
	Source string
}

// BatteryEvent reports remaining battery percentage
type BatteryEvent struct {
	BaseEvent
	Percent int
}

// DisplayStateEvent reports the display turning off, on or dimming
type DisplayStateEvent struct {
	BaseEvent
	State string
}

// PowerPlanEvent reports the active power plan
type PowerPlanEvent struct {
	BaseEvent
	PlanGUID string
	PlanName string
}

// StatusEvent carries the recomputed tray caption and icon
type StatusEvent struct {
	BaseEvent
	Caption string
	Icon    string
}

// ServicesEvent carries the selected-services rows, e.g. "[Y] wuauserv"
type ServicesEvent struct {
	BaseEvent
	Rows []string
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// Publish sends an event to all subscribers without blocking. The message
// pump publishes from inside the window procedure, so a slow subscriber
// loses events rather than stalling the pump.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
}

func base(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message string, err error) {
	eb.Publish(&LogEvent{BaseEvent: base(EventLog), Level: level, Message: message, Error: err})
}

// PublishPowerSource publishes a power source change
func (eb *EventBus) PublishPowerSource(source string) {
	eb.Publish(&PowerSourceEvent{BaseEvent: base(EventPowerSource), Source: source})
}

// PublishBattery publishes a remaining-battery change
func (eb *EventBus) PublishBattery(percent int) {
	eb.Publish(&BatteryEvent{BaseEvent: base(EventBattery), Percent: percent})
}

// PublishDisplayState publishes a display state change
func (eb *EventBus) PublishDisplayState(state string) {
	eb.Publish(&DisplayStateEvent{BaseEvent: base(EventDisplayState), State: state})
}

// PublishPowerPlan publishes an active plan change
func (eb *EventBus) PublishPowerPlan(guid, name string) {
	eb.Publish(&PowerPlanEvent{BaseEvent: base(EventPowerPlan), PlanGUID: guid, PlanName: name})
}

// PublishStatus publishes a recomputed tray status
func (eb *EventBus) PublishStatus(caption, icon string) {
	eb.Publish(&StatusEvent{BaseEvent: base(EventStatusChanged), Caption: caption, Icon: icon})
}

// PublishServices publishes the selected-services rows
func (eb *EventBus) PublishServices(rows []string) {
	cp := make([]string, len(rows))
	copy(cp, rows)
	eb.Publish(&ServicesEvent{BaseEvent: base(EventServicesChanged), Rows: cp})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// DroppedEvents returns the number of events dropped because a subscriber's
// buffer was full.
func (eb *EventBus) DroppedEvents() int64 {
	return eb.droppedEvents.Load()
}
