// Package status derives the tray tooltip and icon from the battery state and
// the active power plan.
package status

import (
	"fmt"
	"sync"

	"github.com/powerplanchanger/ppc/internal/battery"
	"github.com/powerplanchanger/ppc/internal/constants"
	"github.com/powerplanchanger/ppc/internal/powerplan"
)

// IconKind identifies which tray icon to show.
type IconKind struct {
	Variant Variant
	// Level is the charge bucket 0..9, meaningful for Charging and Discharging.
	Level int
}

// Variant is the icon family.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantNoBattery
	VariantCharging
	VariantDischarging
)

func (v Variant) String() string {
	switch v {
	case VariantNoBattery:
		return "no-battery"
	case VariantCharging:
		return "charging"
	case VariantDischarging:
		return "discharging"
	default:
		return "unknown"
	}
}

func (k IconKind) String() string {
	switch k.Variant {
	case VariantCharging, VariantDischarging:
		return fmt.Sprintf("%s-%d", k.Variant, (k.Level+1)*10)
	default:
		return k.Variant.String()
	}
}

// Snapshot is what the tray shows.
type Snapshot struct {
	Caption string
	Icon    IconKind
}

// Level maps a charge percentage to an icon bucket: 1-10% is 0, 91-100% is 9.
func Level(percent int) int {
	l := (percent - 1) / 10
	if l < 0 {
		return 0
	}
	if l > 9 {
		return 9
	}
	return l
}

// Icon picks the icon for a battery status.
func Icon(s battery.Status) IconKind {
	switch s.State() {
	case battery.Unknown:
		return IconKind{Variant: VariantUnknown}
	case battery.NoBattery:
		return IconKind{Variant: VariantNoBattery}
	}
	charge, ok := s.RemainingCharge()
	if !ok {
		return IconKind{Variant: VariantUnknown}
	}
	if plugged, _ := s.IsPluggedIn(); plugged {
		return IconKind{Variant: VariantCharging, Level: Level(charge)}
	}
	return IconKind{Variant: VariantDischarging, Level: Level(charge)}
}

// Caption builds the two-line tooltip, truncated to the tooltip limit.
func Caption(s battery.Status, planName string) string {
	state := s.State()
	charge := ""
	switch state {
	case battery.Charging, battery.Discharging, battery.NotCharging:
		if pct, ok := s.RemainingCharge(); ok {
			charge = fmt.Sprintf(" (%d%%)", pct)
		}
	}
	return Truncate(fmt.Sprintf("Battery status: %s%s\nActive power plan: %s", state, charge, planName),
		constants.MaxTooltipLength)
}

// Truncate shortens s to at most max runes, ending in "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// Monitor recomputes the snapshot only when the inputs change.
type Monitor struct {
	battery battery.Source
	plans   *powerplan.Catalog

	mu       sync.Mutex
	primed   bool
	lastBat  battery.Status
	lastPlan powerplan.Plan
	current  Snapshot
}

// NewMonitor creates a monitor reading from src and plans.
func NewMonitor(src battery.Source, plans *powerplan.Catalog) *Monitor {
	return &Monitor{battery: src, plans: plans}
}

// Refresh reads the battery and active plan. changed is false when neither
// differs from the previous call, in which case the previous snapshot is
// returned.
func (m *Monitor) Refresh() (snap Snapshot, changed bool, err error) {
	bat, err := m.battery.Status()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to read battery status: %w", err)
	}
	plan, err := m.plans.Active()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to read active power plan: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.primed && bat.Equal(m.lastBat) && plan.Equal(m.lastPlan) && plan.Name == m.lastPlan.Name {
		return m.current, false, nil
	}
	m.primed = true
	m.lastBat = bat
	m.lastPlan = plan
	m.current = Snapshot{Caption: Caption(bat, plan.Name), Icon: Icon(bat)}
	return m.current, true, nil
}

// Current returns the last computed snapshot.
func (m *Monitor) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Invalidate forces the next Refresh to report a change.
func (m *Monitor) Invalidate() {
	m.mu.Lock()
	m.primed = false
	m.mu.Unlock()
}
