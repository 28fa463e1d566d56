package cli

import (
	"github.com/spf13/cobra"
)

// newWatchCmd creates the 'watch' command.
func newWatchCmd() *cobra.Command {
	var displayEvents bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print power events as they arrive",
		Long: `Subscribe to power notifications and print them in the power history
format until interrupted with Ctrl+C. The history file is not written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, displayEvents)
		},
	}

	cmd.Flags().BoolVar(&displayEvents, "display", true, "Print display on/off/dimmed events")

	return cmd
}
