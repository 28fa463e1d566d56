//go:build !windows

package cli

import (
	"github.com/spf13/cobra"

	"github.com/powerplanchanger/ppc/internal/winmsg"
)

func runWatch(cmd *cobra.Command, displayEvents bool) error {
	return winmsg.ErrNotSupported
}
