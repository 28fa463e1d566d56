// PowerPlanChanger tray - notification area utility for Windows.
//
// Shows battery state and the active power plan in the tray tooltip and icon,
// records power events to the history log, switches power plans, and starts
// or stops a user-chosen list of services.
//
// Build for Windows:
//   GOOS=windows go build -ldflags "-H=windowsgui" ./cmd/ppc-tray
package main

import (
	"fmt"
	"os"
	"runtime"
)

func main() {
	if runtime.GOOS != "windows" {
		fmt.Fprintln(os.Stderr, "The tray is only supported on Windows")
		os.Exit(1)
	}

	runTray()
}
