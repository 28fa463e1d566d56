package status

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerplanchanger/ppc/internal/battery"
	"github.com/powerplanchanger/ppc/internal/powerplan"
)

var (
	charging50    = battery.Status{ACLineStatus: 1, BatteryFlag: 8, BatteryLifePercent: 50}
	discharging7  = battery.Status{ACLineStatus: 0, BatteryFlag: 0, BatteryLifePercent: 7}
	fullyCharged  = battery.Status{ACLineStatus: 1, BatteryFlag: 0, BatteryLifePercent: 100}
	notCharging80 = battery.Status{ACLineStatus: 1, BatteryFlag: 0, BatteryLifePercent: 80}
	noBattery     = battery.Status{ACLineStatus: 1, BatteryFlag: 128, BatteryLifePercent: 255}
	unknown       = battery.Status{ACLineStatus: 255, BatteryFlag: 255, BatteryLifePercent: 255}
)

func TestCaption(t *testing.T) {
	tests := []struct {
		name   string
		status battery.Status
		want   string
	}{
		{"charging", charging50, "Battery status: Charging (50%)\nActive power plan: Balanced"},
		{"discharging", discharging7, "Battery status: Discharging (7%)\nActive power plan: Balanced"},
		{"full", fullyCharged, "Battery status: Fully charged\nActive power plan: Balanced"},
		{"not charging", notCharging80, "Battery status: Plugged in, not charging (80%)\nActive power plan: Balanced"},
		{"no battery", noBattery, "Battery status: No battery\nActive power plan: Balanced"},
		{"unknown", unknown, "Battery status: Unknown\nActive power plan: Balanced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Caption(tt.status, "Balanced"))
		})
	}
}

func TestCaptionTruncated(t *testing.T) {
	got := Caption(charging50, strings.Repeat("x", 200))
	assert.Len(t, []rune(got), 127)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestLevel(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 10: 0, 11: 1, 50: 4, 91: 9, 100: 9, 150: 9}
	for pct, want := range cases {
		assert.Equal(t, want, Level(pct), "Level(%d)", pct)
	}
}

func TestIcon(t *testing.T) {
	assert.Equal(t, IconKind{Variant: VariantCharging, Level: 4}, Icon(charging50))
	assert.Equal(t, IconKind{Variant: VariantDischarging, Level: 0}, Icon(discharging7))
	assert.Equal(t, IconKind{Variant: VariantCharging, Level: 9}, Icon(fullyCharged))
	assert.Equal(t, IconKind{Variant: VariantNoBattery}, Icon(noBattery))
	assert.Equal(t, IconKind{Variant: VariantUnknown}, Icon(unknown))

	assert.Equal(t, "charging-50", Icon(charging50).String())
	assert.Equal(t, "no-battery", Icon(noBattery).String())
}

type schemes struct {
	active uuid.UUID
	names  map[uuid.UUID]string
}

func (s *schemes) Enumerate() ([]uuid.UUID, error)           { return nil, nil }
func (s *schemes) Active() (uuid.UUID, error)                { return s.active, nil }
func (s *schemes) SetActive(id uuid.UUID) error              { s.active = id; return nil }
func (s *schemes) FriendlyName(id uuid.UUID) (string, error) { return s.names[id], nil }
func (s *schemes) Description(id uuid.UUID) (string, error)  { return "", nil }

func TestMonitorRefresh(t *testing.T) {
	api := &schemes{
		active: powerplan.BalancedGUID,
		names: map[uuid.UUID]string{
			powerplan.BalancedGUID:   "Balanced",
			powerplan.PowerSaverGUID: "Power saver",
		},
	}
	bat := charging50
	m := NewMonitor(battery.SourceFunc(func() (battery.Status, error) { return bat, nil }), powerplan.NewCatalog(api))

	snap, changed, err := m.Refresh()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Battery status: Charging (50%)\nActive power plan: Balanced", snap.Caption)

	_, changed, err = m.Refresh()
	require.NoError(t, err)
	assert.False(t, changed)

	bat = discharging7
	snap, changed, _ = m.Refresh()
	assert.True(t, changed)
	assert.Equal(t, VariantDischarging, snap.Icon.Variant)

	api.active = powerplan.PowerSaverGUID
	snap, changed, _ = m.Refresh()
	assert.True(t, changed)
	assert.Contains(t, snap.Caption, "Power saver")
	assert.Equal(t, snap, m.Current())

	m.Invalidate()
	_, changed, _ = m.Refresh()
	assert.True(t, changed)
}

func TestMonitorRefreshError(t *testing.T) {
	boom := errors.New("boom")
	m := NewMonitor(battery.SourceFunc(func() (battery.Status, error) { return battery.Status{}, boom }),
		powerplan.NewCatalog(&schemes{}))

	_, _, err := m.Refresh()
	assert.ErrorIs(t, err, boom)
}

func TestMonitorRefreshIgnoresBatterySaver(t *testing.T) {
	api := &schemes{active: powerplan.BalancedGUID, names: map[uuid.UUID]string{powerplan.BalancedGUID: "Balanced"}}
	bat := charging50
	m := NewMonitor(battery.SourceFunc(func() (battery.Status, error) { return bat, nil }), powerplan.NewCatalog(api))

	_, changed, err := m.Refresh()
	require.NoError(t, err)
	require.True(t, changed)

	bat.SystemStatusFlag = 1
	_, changed, err = m.Refresh()
	require.NoError(t, err)
	assert.False(t, changed)
}
