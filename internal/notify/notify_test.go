package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerplanchanger/ppc/internal/events"
)

type sent struct {
	title, message string
}

type recorder struct {
	mu   sync.Mutex
	msgs []sent
	ch   chan struct{}
}

func newTestNotifier(cfg Config) (*Notifier, *recorder) {
	rec := &recorder{ch: make(chan struct{}, 16)}
	n := NewNotifier(cfg, nil)
	n.send = func(title, message string) error {
		rec.mu.Lock()
		rec.msgs = append(rec.msgs, sent{title, message})
		rec.mu.Unlock()
		rec.ch <- struct{}{}
		return nil
	}
	n.alert = func(string, string) error { return errors.New("no alert support") }
	return n, rec
}

func (r *recorder) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.msgs...)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.PowerSource)
	assert.True(t, cfg.PowerPlan)
	assert.True(t, cfg.ServiceErrors)
}

func TestPowerSourceChanged(t *testing.T) {
	n, rec := newTestNotifier(DefaultConfig())

	n.PowerSourceChanged("AC")
	assert.Empty(t, rec.all(), "initial value is only recorded")

	n.PowerSourceChanged("AC")
	assert.Empty(t, rec.all(), "repeated value")

	n.PowerSourceChanged("Battery")
	n.PowerSourceChanged("AC")
	assert.Equal(t, []sent{
		{"Power source changed", "Running on battery power."},
		{"Power source changed", "Plugged in."},
	}, rec.all())
}

func TestPowerPlanChanged(t *testing.T) {
	n, rec := newTestNotifier(DefaultConfig())

	n.PowerPlanChanged("381b4222-f694-41f0-9685-ff5bb260df2e", "Balanced")
	n.PowerPlanChanged("a1841308-3541-4fab-bc81-f71556f20b4a", "Power saver")
	assert.Equal(t, []sent{{"Power plan changed", "Active power plan: Power saver"}}, rec.all())
}

func TestDisabledNotifications(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PowerPlan = false
	n, rec := newTestNotifier(cfg)

	n.PowerPlanChanged("a", "A")
	n.PowerPlanChanged("b", "B")
	assert.Empty(t, rec.all())

	n.SetEnabled(false)
	assert.False(t, n.IsEnabled())
	n.PowerSourceChanged("AC")
	n.PowerSourceChanged("Battery")
	n.ServiceFailed("start", []string{"Spooler"}, errors.New("access denied"))
	assert.Empty(t, rec.all())

	// The source is still tracked while disabled.
	n.SetEnabled(true)
	n.PowerSourceChanged("Battery")
	assert.Empty(t, rec.all())
}

func TestServiceFailed(t *testing.T) {
	n, rec := newTestNotifier(DefaultConfig())

	n.ServiceFailed("start", []string{"Spooler"}, nil)
	n.ServiceFailed("start", []string{"Spooler"}, errors.New("access denied"))
	n.ServiceFailed("stop", []string{"Spooler", "BITS"}, errors.New("timeout"))

	assert.Equal(t, []sent{
		{"Service start failed", "Could not start Spooler:\naccess denied"},
		{"Service stop failed", "Could not stop services:\ntimeout"},
	}, rec.all())
}

func TestAlertFallsBackToNotify(t *testing.T) {
	n, rec := newTestNotifier(DefaultConfig())
	n.Alert("History log is not writable")
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "History log is not writable", rec.all()[0].message)
}

func TestWatch(t *testing.T) {
	n, rec := newTestNotifier(DefaultConfig())
	bus := events.NewEventBus(8)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := n.Watch(ctx, bus)

	bus.PublishPowerSource("AC")
	bus.PublishPowerSource("Battery")

	select {
	case <-rec.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification for power source change")
	}
	assert.Equal(t, []sent{{"Power source changed", "Running on battery power."}}, rec.all())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
		{"Économie d'énergie", 8, "Écono..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}
