package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/powerplanchanger/ppc/internal/powerplan"
)

// newPlansCmd creates the 'plans' command group.
func newPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plans",
		Aliases: []string{"plan"},
		Short:   "List and switch power plans",
	}

	cmd.AddCommand(newPlansListCmd())
	cmd.AddCommand(newPlansActiveCmd())
	cmd.AddCommand(newPlansSetCmd())

	return cmd
}

func newPlansListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List power plans; the active plan is marked with *",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := powerplan.NewCatalog(schemeAPI())
			plans, err := catalog.List()
			if err != nil {
				return err
			}
			active, err := catalog.Active()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tNAME\tGUID")
			for _, p := range plans {
				mark := ""
				if p.Equal(active) {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", mark, p.Name, p.GUID)
			}
			return w.Flush()
		},
	}
}

func newPlansActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the active power plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := powerplan.NewCatalog(schemeAPI()).Active()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), active)
			if active.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", active.Description)
			}
			return nil
		},
	}
}

func newPlansSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name|guid>",
		Short: "Activate a power plan",
		Long: `Activate a power plan by name (case-insensitive) or GUID.

Example:
  ppc plans set "Power saver"
  ppc plans set 381b4222-f694-41f0-9685-ff5bb260df2e`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := powerplan.NewCatalog(schemeAPI())
			plan, err := catalog.Find(args[0])
			if err != nil {
				return err
			}
			active, err := catalog.Active()
			if err != nil {
				return err
			}
			if active.Equal(plan) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already active\n", plan.Name)
				return nil
			}
			if err := catalog.Activate(plan.GUID); err != nil {
				return err
			}
			GetLogger().Debug().Str("plan", plan.GUID.String()).Msg("Power plan activated")
			fmt.Fprintf(cmd.OutOrStdout(), "Power plan changed to %s\n", plan)
			return nil
		},
	}
}
