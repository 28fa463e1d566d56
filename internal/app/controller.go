// Package app is the tray controller: it owns the power notification
// subscription, the history log, the tray status and the managed services.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/powerplanchanger/ppc/internal/battery"
	"github.com/powerplanchanger/ppc/internal/constants"
	"github.com/powerplanchanger/ppc/internal/events"
	"github.com/powerplanchanger/ppc/internal/logging"
	"github.com/powerplanchanger/ppc/internal/powernotify"
	"github.com/powerplanchanger/ppc/internal/powerplan"
	"github.com/powerplanchanger/ppc/internal/service"
	"github.com/powerplanchanger/ppc/internal/status"
)

// Options wires the controller to its collaborators.
type Options struct {
	// Registrar and Recipient are passed to the power notification decoder.
	// Recipient is the window that receives WM_POWERBROADCAST.
	Registrar powernotify.Registrar
	Recipient uintptr

	Plans    *powerplan.Catalog
	Battery  battery.Source
	Services service.Controller

	// ServiceList persists the selection between runs.
	ServiceList ServiceStore

	// Concurrency bounds bulk service start/stop.
	Concurrency int

	// LogDisplayEvents writes display on/off/dimmed lines to the history.
	LogDisplayEvents bool

	History *logging.History
	Bus     *events.EventBus
	Logger  *logging.Logger
	Now     func() time.Time
}

// ServiceStore loads and saves the selected service names.
type ServiceStore interface {
	Load() ([]string, error)
	Save(names []string) error
}

// Controller reacts to power broadcasts and user actions.
type Controller struct {
	opts    Options
	logger  *logging.Logger
	history *logging.History
	bus     *events.EventBus

	decoder atomic.Pointer[powernotify.Decoder]
	monitor *status.Monitor
	runner  *service.Runner

	mu        sync.Mutex
	selection *service.Selection
	rows      []service.Row
}

// New writes the startup lines to the history. The controller does not
// receive power settings until Subscribe is called.
func New(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.History == nil {
		opts.History = logging.NewHistory(logging.HistoryConfig{}, opts.Logger)
	}
	if opts.Bus == nil {
		opts.Bus = events.NewEventBus(constants.EventBusDefaultBuffer)
	}

	c := &Controller{
		opts:      opts,
		logger:    opts.Logger,
		history:   opts.History,
		bus:       opts.Bus,
		monitor:   status.NewMonitor(opts.Battery, opts.Plans),
		runner:    service.NewRunner(opts.Services, opts.Concurrency, opts.Logger),
		selection: service.NewSelection(nil),
	}

	now := opts.Now()
	c.history.Header("INITIALIZING")
	c.history.TimeLogf("Today's date: %04d-%02d-%02d", now.Year(), now.Month(), now.Day())
	return c
}

// Subscribe registers the default power topics and computes the initial
// tray status. Windows answers each registration with the current value, and
// those broadcasts can reach HandlePowerBroadcast before Subscribe returns.
func (c *Controller) Subscribe() error {
	if c.decoder.Load() != nil {
		return nil
	}
	dec, err := powernotify.New(c.opts.Registrar, c.opts.Recipient, c.handlers(), powernotify.DefaultTopics,
		powernotify.WithLogger(c.logger))
	if err != nil {
		c.flush()
		return fmt.Errorf("failed to subscribe to power notifications: %w", err)
	}
	c.decoder.Store(dec)
	c.history.TimeLog("Power event notifications subscribed")

	if _, _, err := c.RefreshStatus(); err != nil {
		c.logger.Warn().Err(err).Msg("Initial status refresh failed")
	}
	c.flush()
	return nil
}

func (c *Controller) handlers() powernotify.Handlers {
	return powernotify.Handlers{
		PowerSourceChanged: func(ev powernotify.PowerSourceEvent) {
			c.history.TimeLogf("Power source changed to %s", ev.Source)
			c.bus.PublishPowerSource(ev.Source.String())
		},
		RemainingBatteryChanged: func(ev powernotify.RemainingBatteryEvent) {
			c.history.TimeLogf("Battery remaining changed to %d%%", ev.Percent)
			c.bus.PublishBattery(ev.Percent)
		},
		DisplayStateChanged: func(ev powernotify.DisplayStateEvent) {
			if c.opts.LogDisplayEvents {
				switch ev.State {
				case powernotify.DisplayDimmed:
					c.history.TimeLog("Screen dimming")
				case powernotify.DisplayOff:
					c.history.TimeLog("Screen turned off")
				case powernotify.DisplayOn:
					c.history.TimeLog("Screen turned on")
				}
			}
			c.bus.PublishDisplayState(ev.State.String())
		},
		PowerPlanChanged: func(ev powernotify.PowerPlanEvent) {
			plan, err := c.opts.Plans.FromGUID(ev.Plan)
			if err != nil {
				c.logger.Warn().Err(err).Str("plan", ev.Plan.String()).Msg("Could not resolve power plan")
				plan = powerplan.Plan{GUID: ev.Plan}
			}
			c.history.TimeLogf("Power plan changed to %s", plan)
			c.bus.PublishPowerPlan(plan.GUID.String(), plan.Name)
		},
	}
}

// HandlePowerBroadcast processes one WM_POWERBROADCAST. payload is the
// POWERBROADCAST_SETTING for PBT_POWERSETTINGCHANGE and is ignored otherwise.
// It returns false for broadcasts the controller does not handle.
func (c *Controller) HandlePowerBroadcast(wparam uintptr, payload []byte) bool {
	if wparam != powernotify.PBTAPMPowerStatusChange && wparam != powernotify.PBTPowerSettingChange {
		return false
	}

	c.history.Header("POWER EVENT RECEIVED")
	if wparam == powernotify.PBTAPMPowerStatusChange {
		c.history.TimeLog("General event processed")
	} else if err := c.processSetting(payload); err != nil {
		c.logger.Error().Err(err).Msg("Failed to decode power setting broadcast")
		c.bus.PublishLog(events.ErrorLevel, "Failed to decode power setting broadcast", err)
	}

	if _, _, err := c.RefreshStatus(); err != nil {
		c.logger.Warn().Err(err).Msg("Status refresh failed")
	}
	c.flush()
	return true
}

// processSetting decodes through the decoder once Subscribe has stored it.
// Before that, the registration echoes are decoded directly.
func (c *Controller) processSetting(payload []byte) error {
	if dec := c.decoder.Load(); dec != nil {
		return dec.ProcessMessage(payload)
	}
	_, err := powernotify.Dispatch(payload, c.handlers())
	return err
}

// RefreshStatus recomputes the tray caption and icon. When they changed the
// history notes it and a status event is published.
func (c *Controller) RefreshStatus() (status.Snapshot, bool, error) {
	snap, changed, err := c.monitor.Refresh()
	if err != nil {
		return snap, false, err
	}
	c.logger.Debug().Str("caption", snap.Caption).Str("icon", snap.Icon.String()).Bool("changed", changed).Msg("Status computed")
	if changed {
		c.history.TimeLog("Notification icon refreshed")
		c.bus.PublishStatus(snap.Caption, snap.Icon.String())
	}
	return snap, changed, nil
}

// Reload drops cached plan names, then recomputes the tray status and the
// service rows even when the battery and plan GUID are unchanged.
func (c *Controller) Reload() []service.Row {
	c.opts.Plans.ClearCache()
	c.monitor.Invalidate()
	if _, _, err := c.RefreshStatus(); err != nil {
		c.logger.Warn().Err(err).Msg("Status refresh failed")
	}
	c.flush()
	return c.ServiceRows()
}

// Status returns the current tray snapshot.
func (c *Controller) Status() status.Snapshot {
	return c.monitor.Current()
}

// Plans lists the power plans for the plan menu.
func (c *Controller) Plans() ([]powerplan.Plan, error) {
	return c.opts.Plans.List()
}

// ActivePlan returns the active power plan.
func (c *Controller) ActivePlan() (powerplan.Plan, error) {
	return c.opts.Plans.Active()
}

// ActivatePlan makes id the active plan. Choosing the plan that is already
// active does nothing.
func (c *Controller) ActivatePlan(id uuid.UUID) error {
	active, err := c.opts.Plans.Active()
	if err != nil {
		return err
	}
	if active.GUID == id {
		return nil
	}
	plan, err := c.opts.Plans.FromGUID(id)
	if err != nil {
		return err
	}
	if err := c.opts.Plans.Activate(id); err != nil {
		return err
	}

	c.history.Header("POWER PLAN CHANGED")
	c.history.TimeLogf("Power plan changed to %s", plan)
	if _, _, err := c.RefreshStatus(); err != nil {
		c.logger.Warn().Err(err).Msg("Status refresh failed")
	}
	c.flush()
	return nil
}

// Close unsubscribes from power notifications and flushes the history.
func (c *Controller) Close() error {
	var err error
	if dec := c.decoder.Load(); dec != nil {
		err = dec.Close()
	}
	return multierr.Append(err, c.history.Flush())
}

func (c *Controller) flush() {
	if err := c.history.Flush(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to flush power history")
	}
}

// knownServices returns the installed service names, lower-cased.
func (c *Controller) knownServices() (map[string]bool, error) {
	names, err := c.opts.Services.List()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set, nil
}

// WatchServiceList reloads the selection whenever watch reports a change,
// until ctx is done.
func (c *Controller) WatchServiceList(ctx context.Context, watch func(ctx context.Context, onChange func()) error) error {
	return watch(ctx, func() {
		if err := c.LoadServices(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to reload service list")
			return
		}
		c.logger.Info().Msg("Service list reloaded")
	})
}
