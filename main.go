// PowerPlanChanger CLI - power plans, battery status and service control
// from the command line. The tray lives in cmd/ppc-tray.
//
// Build with: go build -o ppc.exe .
package main

import (
	"os"

	"github.com/powerplanchanger/ppc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
