package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newBatteryCmd creates the 'battery' command.
func newBatteryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "battery",
		Short: "Show battery and charger status",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := batterySource().Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Status:     %s\n", st.State())
			if pct, ok := st.RemainingCharge(); ok {
				fmt.Fprintf(out, "Charge:     %d%%\n", pct)
			} else {
				fmt.Fprintln(out, "Charge:     unknown")
			}
			fmt.Fprintf(out, "Plugged in: %s\n", yesNo(st.IsPluggedIn()))
			fmt.Fprintf(out, "Charging:   %s\n", yesNo(st.IsCharging()))
			fmt.Fprintf(out, "Battery:    %s\n", yesNo(st.BatteryExists()))
			if d, ok := st.RemainingLifetime(); ok {
				fmt.Fprintf(out, "Remaining:  %s\n", d.Round(time.Minute))
			}
			if d, ok := st.FullLifetime(); ok {
				fmt.Fprintf(out, "Full:       %s\n", d.Round(time.Minute))
			}
			return nil
		},
	}
}

func yesNo(v, ok bool) string {
	switch {
	case !ok:
		return "unknown"
	case v:
		return "yes"
	default:
		return "no"
	}
}
