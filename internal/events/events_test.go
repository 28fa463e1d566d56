package events

import (
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventBattery)

	bus.PublishBattery(42)

	select {
	case received := <-ch:
		ev, ok := received.(*BatteryEvent)
		if !ok {
			t.Fatal("Expected BatteryEvent")
		}
		if ev.Percent != 42 {
			t.Errorf("Expected 42%%, got %d", ev.Percent)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	planCh := bus.Subscribe(EventPowerPlan)
	logCh := bus.Subscribe(EventLog)

	bus.PublishPowerPlan("381b4222-f694-41f0-9685-ff5bb260df2e", "Balanced")

	select {
	case ev := <-planCh:
		plan := ev.(*PowerPlanEvent)
		if plan.PlanName != "Balanced" {
			t.Errorf("Expected Balanced, got %s", plan.PlanName)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Plan subscriber didn't receive event")
	}

	select {
	case <-logCh:
		t.Error("Log subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_NonBlockingCountsDrops(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	_ = bus.Subscribe(EventStatusChanged)

	for i := 0; i < 10; i++ {
		bus.PublishStatus("caption", "unknown")
	}

	if got := bus.DroppedEvents(); got != 8 {
		t.Errorf("Expected 8 dropped events, got %d", got)
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventServicesChanged)

	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close should not panic
	bus.PublishServices([]string{"[Y] Spooler"})
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventBattery)
	bus.Unsubscribe(EventBattery, ch)
	bus.PublishBattery(10)

	select {
	case <-ch:
		t.Error("Unsubscribed channel received an event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPublishServices_CopiesRows(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventServicesChanged)
	rows := []string{"[N] Spooler"}
	bus.PublishServices(rows)
	rows[0] = "mutated"

	ev := (<-ch).(*ServicesEvent)
	if ev.Rows[0] != "[N] Spooler" {
		t.Errorf("Expected rows to be copied, got %q", ev.Rows[0])
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level %d: expected %s, got %s", tt.level, tt.expected, got)
		}
	}
}
