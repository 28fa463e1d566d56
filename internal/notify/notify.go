// Package notify shows desktop notifications for power source and power
// plan changes and for failed service actions.
// It uses github.com/gen2brain/beeep for the toast itself.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/powerplanchanger/ppc/internal/constants"
	"github.com/powerplanchanger/ppc/internal/events"
	"github.com/powerplanchanger/ppc/internal/logging"
)

const (
	maxNameLen    = 40
	maxMessageLen = 100
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger *logging.Logger
	send   func(title, message string) error
	alert  func(title, message string) error

	mu     sync.RWMutex
	cfg    Config
	source string
	planID string
}

// Config selects which notifications are sent.
type Config struct {
	// Enabled turns every notification on or off.
	Enabled bool

	// PowerSource notifies when the machine switches between AC and battery.
	PowerSource bool

	// PowerPlan notifies when the active plan changes.
	PowerPlan bool

	// ServiceErrors notifies when starting or stopping a service fails.
	ServiceErrors bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		PowerSource:   true,
		PowerPlan:     true,
		ServiceErrors: true,
	}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg Config, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	beeep.AppName = constants.AppName
	return &Notifier{
		logger: logger,
		cfg:    cfg,
		send:   func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:  func(title, message string) error { return beeep.Alert(title, message, "") },
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg.Enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled
}

func (n *Notifier) wants(pick func(Config) bool) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled && pick(n.cfg)
}

// PowerSourceChanged notifies about a switch to source ("AC", "Battery",
// ...). The first value seen is the one reported at subscription time and
// is only recorded.
func (n *Notifier) PowerSourceChanged(source string) {
	n.mu.Lock()
	prev := n.source
	n.source = source
	n.mu.Unlock()
	if prev == "" || prev == source || !n.wants(func(c Config) bool { return c.PowerSource }) {
		return
	}

	var message string
	switch source {
	case "AC":
		message = "Plugged in."
	case "Battery":
		message = "Running on battery power."
	case "UPS":
		message = "Running on UPS power."
	default:
		message = fmt.Sprintf("Power source is now %s.", source)
	}
	if err := n.send("Power source changed", message); err != nil {
		n.logger.Warn().Err(err).Str("source", source).Msg("Failed to send power source notification")
	}
}

// PowerPlanChanged notifies about a new active plan. As with the power
// source, the first plan seen is only recorded.
func (n *Notifier) PowerPlanChanged(guid, name string) {
	n.mu.Lock()
	prev := n.planID
	n.planID = guid
	n.mu.Unlock()
	if prev == "" || prev == guid || !n.wants(func(c Config) bool { return c.PowerPlan }) {
		return
	}

	message := fmt.Sprintf("Active power plan: %s", truncate(name, maxNameLen))
	if err := n.send("Power plan changed", message); err != nil {
		n.logger.Warn().Err(err).Str("plan", guid).Msg("Failed to send power plan notification")
	}
}

// ServiceFailed notifies that op ("start" or "stop") failed.
func (n *Notifier) ServiceFailed(op string, names []string, err error) {
	if err == nil || !n.wants(func(c Config) bool { return c.ServiceErrors }) {
		return
	}

	title := fmt.Sprintf("Service %s failed", op)
	target := "services"
	if len(names) == 1 {
		target = truncate(names[0], maxNameLen)
	}
	message := fmt.Sprintf("Could not %s %s:\n%s", op, target, truncate(err.Error(), maxMessageLen))
	if serr := n.send(title, message); serr != nil {
		n.logger.Warn().Err(serr).Msg("Failed to send service notification")
	}
}

// Alert sends an alert notification (error level).
// This is for critical issues that require user attention.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	title := constants.AppName + " Alert"
	if err := n.alert(title, message); err != nil {
		if err := n.send(title, message); err != nil {
			n.logger.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

// Watch forwards power source and plan events from bus until ctx is done
// or the bus is closed. The subscription is in place when Watch returns;
// the returned channel is closed when forwarding stops.
func (n *Notifier) Watch(ctx context.Context, bus *events.EventBus) <-chan struct{} {
	sourceCh := bus.Subscribe(events.EventPowerSource)
	planCh := bus.Subscribe(events.EventPowerPlan)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer bus.Unsubscribe(events.EventPowerSource, sourceCh)
		defer bus.Unsubscribe(events.EventPowerPlan, planCh)

		for {
			select {
			case ev, ok := <-sourceCh:
				if !ok {
					return
				}
				if e, ok := ev.(*events.PowerSourceEvent); ok {
					n.PowerSourceChanged(e.Source)
				}
			case ev, ok := <-planCh:
				if !ok {
					return
				}
				if e, ok := ev.(*events.PowerPlanEvent); ok {
					n.PowerPlanChanged(e.PlanGUID, e.PlanName)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
