//go:build windows

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/systray"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/powerplanchanger/ppc/internal/app"
	"github.com/powerplanchanger/ppc/internal/battery"
	"github.com/powerplanchanger/ppc/internal/config"
	"github.com/powerplanchanger/ppc/internal/constants"
	"github.com/powerplanchanger/ppc/internal/elevation"
	"github.com/powerplanchanger/ppc/internal/events"
	"github.com/powerplanchanger/ppc/internal/logging"
	"github.com/powerplanchanger/ppc/internal/notify"
	"github.com/powerplanchanger/ppc/internal/powernotify"
	"github.com/powerplanchanger/ppc/internal/powerplan"
	"github.com/powerplanchanger/ppc/internal/service"
	"github.com/powerplanchanger/ppc/internal/trayicon"
	"github.com/powerplanchanger/ppc/internal/version"
	"github.com/powerplanchanger/ppc/internal/winmsg"
)

const (
	windowClass = "PowerPlanChangerWindow"

	// Menu slots are allocated up front and shown as needed.
	maxPlanItems    = 16
	maxServiceItems = 32
)

// trayApp manages the system tray application state.
type trayApp struct {
	cfg      *config.AppConfig
	logger   *logging.Logger
	history  *logging.History
	bus      *events.EventBus
	window   *winmsg.Window
	notifier *notify.Notifier
	ctrl     atomic.Pointer[app.Controller]

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	plans    []powerplan.Plan
	services []service.Row

	mStatus      *systray.MenuItem
	mPlans       *systray.MenuItem
	planItems    []*systray.MenuItem
	mServices    *systray.MenuItem
	serviceItems []*systray.MenuItem
	mStartAll    *systray.MenuItem
	mStopAll     *systray.MenuItem
	mRefresh     *systray.MenuItem
	mNotify      *systray.MenuItem
	mViewHistory *systray.MenuItem
	mQuit        *systray.MenuItem
}

// runTray starts the system tray application.
func runTray() {
	inst, first, err := winmsg.AcquireInstance(constants.InstanceMutexName)
	if err != nil {
		winmsg.Alert(constants.AppName, fmt.Sprintf("Failed to start: %v", err))
		os.Exit(1)
	}
	if !first {
		winmsg.Alert(constants.AppName, constants.AlreadyRunningMessage)
		return
	}
	defer inst.Release()

	systray.Run(onReady, onExit)
}

var tray *trayApp

func onReady() {
	a, err := newTrayApp()
	if err != nil {
		winmsg.Alert(constants.AppName, err.Error())
		systray.Quit()
		return
	}
	tray = a

	systray.SetTitle(constants.AppName)
	systray.SetTooltip(constants.AppName)
	a.buildMenu()

	statusCh := a.bus.Subscribe(events.EventStatusChanged)
	servicesCh := a.bus.Subscribe(events.EventServicesChanged)
	a.notifier.Watch(a.ctx, a.bus)

	ctrl := app.New(app.Options{
		Registrar:        powernotify.NewWindowsRegistrar(),
		Recipient:        a.window.Handle(),
		Plans:            powerplan.NewCatalog(powerplan.SystemSchemes()),
		Battery:          battery.SystemSource,
		Services:         service.NewCachedController(service.SystemController()),
		ServiceList:      app.FileServiceStore(a.cfg.Services.ListFile),
		Concurrency:      a.cfg.Services.Concurrency,
		LogDisplayEvents: a.cfg.Tray.LogDisplayEvents,
		History:          a.history,
		Bus:              a.bus,
		Logger:           a.logger,
	})
	a.ctrl.Store(ctrl)
	if err := ctrl.Subscribe(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start controller")
		winmsg.Alert(constants.AppName, err.Error())
		systray.Quit()
		return
	}

	a.applyStatus()
	if err := ctrl.LoadServices(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to load service list")
	}

	go a.eventLoop(statusCh, servicesCh)
	go a.refreshLoop()
	go a.watchServiceList()
	a.handleMenuClicks()
}

func onExit() {
	if tray == nil {
		return
	}
	tray.cancel()
	ctrl := tray.ctrl.Load()
	if tray.window != nil {
		tray.window.Close()
	}
	if ctrl != nil {
		if err := ctrl.Close(); err != nil {
			tray.logger.Warn().Err(err).Msg("Failed to release power notifications")
		}
	}
	tray.bus.Close()
	tray.history.Close()
}

func newTrayApp() (*trayApp, error) {
	cfg, err := config.LoadAppConfig("")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", constants.ConfigFileName, err)
	}
	if err := config.EnsureLogDirectory(); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logger := logging.NewLogger("tray", &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDirectory(), constants.TrayLogFileName),
		MaxSize:    cfg.History.MaxSizeMB,
		MaxBackups: cfg.History.MaxBackups,
	})
	logger.Info().Str("version", version.Version).Msg("Starting tray")

	a := &trayApp{
		cfg:    cfg,
		logger: logger,
		history: logging.NewHistory(logging.HistoryConfig{
			File:       cfg.History.File,
			MaxSizeMB:  cfg.History.MaxSizeMB,
			MaxBackups: cfg.History.MaxBackups,
		}, logger),
		bus: events.NewEventBus(constants.EventBusDefaultBuffer),
		notifier: notify.NewNotifier(notify.Config{
			Enabled:       cfg.Notifications.Enabled,
			PowerSource:   cfg.Notifications.PowerSource,
			PowerPlan:     cfg.Notifications.PowerPlan,
			ServiceErrors: cfg.Notifications.ServiceErrors,
		}, logger),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	w, err := winmsg.Open(windowClass, a.handleMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to create message window: %w", err)
	}
	a.window = w
	return a, nil
}

// handleMessage runs on the window thread.
func (a *trayApp) handleMessage(msg uint32, wparam, lparam uintptr) (uintptr, bool) {
	if msg != powernotify.WMPowerBroadcast {
		return 0, false
	}
	ctrl := a.ctrl.Load()
	if ctrl == nil {
		return 0, false
	}
	var payload []byte
	if wparam == powernotify.PBTPowerSettingChange {
		payload = powernotify.BroadcastBytes(lparam)
	}
	if ctrl.HandlePowerBroadcast(wparam, payload) {
		return 1, true
	}
	return 0, false
}

func (a *trayApp) buildMenu() {
	a.mStatus = systray.AddMenuItem(constants.AppName, "Battery status")
	a.mStatus.Disable()

	systray.AddSeparator()

	a.mPlans = systray.AddMenuItem("Power plan", "Switch the active power plan")
	for i := 0; i < maxPlanItems; i++ {
		item := a.mPlans.AddSubMenuItemCheckbox("", "", false)
		item.Hide()
		a.planItems = append(a.planItems, item)
	}

	a.mServices = systray.AddMenuItem("Services", "Start or stop the selected services")
	for i := 0; i < maxServiceItems; i++ {
		item := a.mServices.AddSubMenuItem("", "Click to start or stop")
		item.Hide()
		a.serviceItems = append(a.serviceItems, item)
	}
	a.mStartAll = a.mServices.AddSubMenuItem("Start all", "Start every selected service")
	a.mStopAll = a.mServices.AddSubMenuItem("Stop all", "Stop every selected service")
	a.mRefresh = a.mServices.AddSubMenuItem("Refresh", "Re-read power plans and service states")

	systray.AddSeparator()

	a.mNotify = systray.AddMenuItemCheckbox("Notifications", "Show desktop notifications", a.notifier.IsEnabled())

	a.mViewHistory = systray.AddMenuItem("View power history", "Open the power history log")

	systray.AddSeparator()

	a.mQuit = systray.AddMenuItem("Quit", "Exit "+constants.AppName)
}

// eventLoop applies controller events to the tray.
func (a *trayApp) eventLoop(statusCh, servicesCh <-chan events.Event) {
	var dropped int64
	for {
		if n := a.bus.DroppedEvents(); n > dropped {
			a.logger.Debug().Int64("dropped", n-dropped).Msg("Event subscribers fell behind")
			dropped = n
		}
		select {
		case _, ok := <-statusCh:
			if !ok {
				return
			}
			a.applyStatus()
		case ev, ok := <-servicesCh:
			if !ok {
				return
			}
			if se, ok := ev.(*events.ServicesEvent); ok {
				a.logger.Debug().Int("services", len(se.Rows)).Msg("Service list updated")
			}
			a.applyServices()
		case <-a.ctx.Done():
			return
		}
	}
}

// refreshLoop periodically refreshes the status in case a broadcast was missed.
func (a *trayApp) refreshLoop() {
	ticker := time.NewTicker(a.cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if ctrl := a.ctrl.Load(); ctrl != nil {
				if _, _, err := ctrl.RefreshStatus(); err != nil {
					a.logger.Warn().Err(err).Msg("Status refresh failed")
				}
			}
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *trayApp) watchServiceList() {
	ctrl := a.ctrl.Load()
	err := ctrl.WatchServiceList(a.ctx, func(ctx context.Context, onChange func()) error {
		return config.Watch(ctx, a.cfg.Services.ListFile, onChange)
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Service list watch stopped")
		a.notifier.Alert("Changes to " + constants.ServiceListFileName + " are no longer picked up: " + err.Error())
	}
}

func (a *trayApp) applyStatus() {
	ctrl := a.ctrl.Load()
	if ctrl == nil {
		return
	}
	snap := ctrl.Status()
	systray.SetTooltip(snap.Caption)
	a.mStatus.SetTitle(snap.Caption)
	if ico, err := trayicon.Render(snap.Icon); err == nil {
		systray.SetIcon(ico)
	} else {
		a.logger.Warn().Err(err).Msg("Failed to render tray icon")
	}
	a.applyPlans()
}

func (a *trayApp) applyPlans() {
	ctrl := a.ctrl.Load()
	plans, err := ctrl.Plans()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to list power plans")
		return
	}
	active, err := ctrl.ActivePlan()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to read active power plan")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.plans = plans
	for i, item := range a.planItems {
		if i >= len(plans) {
			item.Hide()
			continue
		}
		item.SetTitle(plans[i].Name)
		item.SetTooltip(plans[i].Description)
		if plans[i].Equal(active) {
			item.Check()
		} else {
			item.Uncheck()
		}
		item.Show()
	}
}

func (a *trayApp) applyServices() {
	rows := a.ctrl.Load().Rows()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.services = rows
	for i, item := range a.serviceItems {
		if i >= len(rows) {
			item.Hide()
			continue
		}
		item.SetTitle(rows[i].String())
		item.Show()
	}
	if len(rows) == 0 {
		a.mStartAll.Disable()
		a.mStopAll.Disable()
	} else {
		a.mStartAll.Enable()
		a.mStopAll.Enable()
	}
}

// handleMenuClicks processes menu item clicks.
func (a *trayApp) handleMenuClicks() {
	for i, item := range a.planItems {
		i := i
		go a.onClick(item, func() { a.activatePlan(i) })
	}
	for i, item := range a.serviceItems {
		i := i
		go a.onClick(item, func() { a.toggleService(i) })
	}
	go a.onClick(a.mStartAll, func() { a.serviceAction(true) })
	go a.onClick(a.mStopAll, func() { a.serviceAction(false) })
	go a.onClick(a.mRefresh, a.reload)
	go a.onClick(a.mNotify, a.toggleNotifications)
	go a.onClick(a.mViewHistory, a.viewHistory)
	go a.onClick(a.mQuit, systray.Quit)
}

func (a *trayApp) onClick(item *systray.MenuItem, fn func()) {
	for {
		select {
		case <-item.ClickedCh:
			fn()
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *trayApp) activatePlan(i int) {
	a.mu.Lock()
	if i >= len(a.plans) {
		a.mu.Unlock()
		return
	}
	plan := a.plans[i]
	a.mu.Unlock()

	if err := a.ctrl.Load().ActivatePlan(plan.GUID); err != nil {
		a.logger.Error().Err(err).Str("plan", plan.String()).Msg("Failed to activate power plan")
		a.notifier.Alert(fmt.Sprintf("Could not switch to %s: %v", plan.Name, err))
	}
	a.applyPlans()
}

func (a *trayApp) toggleService(i int) {
	a.mu.Lock()
	if i >= len(a.services) {
		a.mu.Unlock()
		return
	}
	row := a.services[i]
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(a.ctx, constants.ServiceWaitTimeout)
	defer cancel()

	var err error
	op := "start"
	if row.Running {
		op = "stop"
		err = a.ctrl.Load().StopServices(ctx, row.Name)
	} else {
		err = a.ctrl.Load().StartServices(ctx, row.Name)
	}
	a.finishServiceAction(op, []string{row.Name}, err)
}

func (a *trayApp) serviceAction(start bool) {
	ctx, cancel := context.WithTimeout(a.ctx, constants.ServiceWaitTimeout)
	defer cancel()

	ctrl := a.ctrl.Load()
	names := ctrl.SelectedServices()
	var err error
	op := "stop"
	if start {
		op = "start"
		err = ctrl.StartServices(ctx, names...)
	} else {
		err = ctrl.StopServices(ctx, names...)
	}
	a.finishServiceAction(op, names, err)
}

// finishServiceAction retries a denied action through ppc with UAC, then
// refreshes the service rows.
func (a *trayApp) finishServiceAction(op string, names []string, err error) {
	if errors.Is(err, service.ErrAccessDenied) && !elevation.IsElevated() {
		a.logger.Info().Strs("services", names).Msgf("Access denied, retrying %s elevated", op)
		err = elevation.RunCLIElevated(append([]string{"services", op, "--wait"}, names...)...)
	}
	if err != nil && !errors.Is(err, elevation.ErrCancelled) {
		a.logger.Error().Err(err).Strs("services", names).Msgf("Service %s failed", op)
		a.notifier.ServiceFailed(op, names, err)
	}
	a.ctrl.Load().ServiceRows()
}

// reload re-reads plan names, for plans renamed outside the tray, and the
// service states.
func (a *trayApp) reload() {
	a.ctrl.Load().Reload()
	a.applyStatus()
}

// toggleNotifications flips desktop notifications and saves the choice.
func (a *trayApp) toggleNotifications() {
	enabled := !a.notifier.IsEnabled()
	a.notifier.SetEnabled(enabled)
	if enabled {
		a.mNotify.Check()
	} else {
		a.mNotify.Uncheck()
	}

	a.cfg.Notifications.Enabled = enabled
	if err := config.SaveAppConfig(a.cfg, ""); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to save notification setting")
	}
}

// viewHistory opens the power history log in the default text editor.
func (a *trayApp) viewHistory() {
	a.history.Flush()
	if err := exec.Command("notepad.exe", a.cfg.History.File).Start(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to open power history")
	}
}
