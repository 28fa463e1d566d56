//go:build windows

package cli

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/powerplanchanger/ppc/internal/app"
	"github.com/powerplanchanger/ppc/internal/logging"
	"github.com/powerplanchanger/ppc/internal/powernotify"
	"github.com/powerplanchanger/ppc/internal/powerplan"
	"github.com/powerplanchanger/ppc/internal/winmsg"
)

const watchWindowClass = "PowerPlanChangerWatch"

func runWatch(cmd *cobra.Command, displayEvents bool) error {
	history := logging.NewHistoryWriter(cmd.OutOrStdout(), nil)

	var current atomic.Pointer[app.Controller]
	w, err := winmsg.Open(watchWindowClass, func(msg uint32, wparam, lparam uintptr) (uintptr, bool) {
		ctrl := current.Load()
		if msg != powernotify.WMPowerBroadcast || ctrl == nil {
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
	})
	if err != nil {
		return fmt.Errorf("failed to create message window: %w", err)
	}
	defer w.Close()

	ctrl := app.New(app.Options{
		Registrar:        powernotify.NewWindowsRegistrar(),
		Recipient:        w.Handle(),
		Plans:            powerplan.NewCatalog(schemeAPI()),
		Battery:          batterySource(),
		Services:         serviceCtl(),
		LogDisplayEvents: displayEvents,
		History:          history,
		Logger:           GetLogger(),
	})
	current.Store(ctrl)
	defer func() {
		current.Store(nil)
		w.Close()
		if err := ctrl.Close(); err != nil {
			GetLogger().Warn().Err(err).Msg("Failed to release power notifications")
		}
	}()
	if err := ctrl.Subscribe(); err != nil {
		return err
	}

	GetLogger().Info().Msg("Watching power events, press Ctrl+C to stop")
	select {
	case <-GetContext().Done():
		return nil
	case <-w.Done():
		return w.Err()
	}
}
