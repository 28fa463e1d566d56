package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/powerplanchanger/ppc/internal/config"
	"github.com/powerplanchanger/ppc/internal/constants"
	"github.com/powerplanchanger/ppc/internal/elevation"
	"github.com/powerplanchanger/ppc/internal/progress"
	"github.com/powerplanchanger/ppc/internal/service"
)

// runElevated re-runs a ppc command through UAC; replaced in tests.
var runElevated = elevation.RunCLIElevated

// newServicesCmd creates the 'services' command group.
func newServicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "services",
		Aliases: []string{"svc"},
		Short:   "Manage the services the tray starts and stops",
		Long: `Manage the service list shown in the tray.

The list is kept in ServiceList.txt next to app.conf. A running tray
reloads it when it changes.

Commands:
  list       - Show listed services and whether they are running
  available  - Show every installed service
  add        - Add services to the list
  remove     - Remove services from the list
  start      - Start listed (or named) services
  stop       - Stop listed (or named) services
  info       - Show display name and description of a service`,
	}

	cmd.AddCommand(newServicesListCmd())
	cmd.AddCommand(newServicesAvailableCmd())
	cmd.AddCommand(newServicesAddCmd())
	cmd.AddCommand(newServicesRemoveCmd())
	cmd.AddCommand(newServicesControlCmd("start"))
	cmd.AddCommand(newServicesControlCmd("stop"))
	cmd.AddCommand(newServicesInfoCmd())

	return cmd
}

// loadSelection reads the service list named by the configuration.
func loadSelection() (*service.Selection, string, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, "", err
	}
	names, err := config.LoadServiceList(cfg.Services.ListFile)
	if err != nil {
		return nil, "", err
	}
	return service.NewSelection(names), cfg.Services.ListFile, nil
}

func newServicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show listed services; [Y] marks running ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, path, err := loadSelection()
			if err != nil {
				return err
			}
			rows, changed := sel.Refresh(serviceCtl())
			if changed {
				if err := config.SaveServiceList(path, sel.Names()); err != nil {
					return err
				}
				GetLogger().Info().Msg("Removed services that are no longer installed")
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No services listed. Add one with: ppc services add <name>")
				return nil
			}
			for _, r := range rows {
				if r.Err != nil {
					fmt.Fprintf(out, "%s (%v)\n", r, r.Err)
					continue
				}
				fmt.Fprintln(out, r)
			}
			return nil
		},
	}
}

func newServicesAvailableCmd() *cobra.Command {
	var (
		filter  string
		details bool
	)

	cmd := &cobra.Command{
		Use:   "available",
		Short: "List installed services; * marks listed ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, _, err := loadSelection()
			if err != nil {
				return err
			}
			ctl := serviceCtl()
			names, err := ctl.List()
			if err != nil {
				return fmt.Errorf("failed to list services: %w", err)
			}

			cached := service.NewCachedController(ctl)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, n := range names {
				display := ""
				if details || filter != "" {
					if info, err := cached.Info(n); err == nil {
						display = info.DisplayName
					}
				}
				if !matches(filter, n, display) {
					continue
				}
				mark := ""
				if sel.Contains(n) {
					mark = "*"
				}
				if details {
					fmt.Fprintf(w, "%s\t%s\t%s\n", mark, n, display)
				} else {
					fmt.Fprintf(w, "%s\t%s\n", mark, n)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show services whose name or display name contains this text")
	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show display names")

	return cmd
}

func matches(filter string, fields ...string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}

func newServicesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Add services to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, path, err := loadSelection()
			if err != nil {
				return err
			}
			ctl := serviceCtl()
			for _, n := range args {
				if _, err := ctl.Query(n); err != nil {
					return &service.OpError{Op: "add", Service: n, Err: err}
				}
			}
			added := sel.Add(args...)
			if added == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Already listed")
				return nil
			}
			if err := config.SaveServiceList(path, sel.Names()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d service(s)\n", added)
			return nil
		},
	}
}

func newServicesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>...",
		Aliases: []string{"rm"},
		Short:   "Remove services from the list",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, path, err := loadSelection()
			if err != nil {
				return err
			}
			removed := sel.Remove(args...)
			if removed == 0 {
				return fmt.Errorf("none of %s are listed", strings.Join(args, ", "))
			}
			if err := config.SaveServiceList(path, sel.Names()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d service(s)\n", removed)
			return nil
		},
	}
}

// newServicesControlCmd creates 'services start' or 'services stop'.
func newServicesControlCmd(op string) *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
		elevate bool
	)

	want := service.StatusRunning
	if op == "stop" {
		want = service.StatusStopped
	}

	cmd := &cobra.Command{
		Use:   op + " [name]...",
		Short: strings.ToUpper(op[:1]) + op[1:] + " services (all listed services when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				sel, _, err := loadSelection()
				if err != nil {
					return err
				}
				names = sel.Names()
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No services listed")
				return nil
			}

			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			ctl := serviceCtl()
			runner := service.NewRunner(ctl, cfg.Services.Concurrency, GetLogger())

			ctx := GetContext()
			if op == "start" {
				err = runner.Start(ctx, names)
			} else {
				err = runner.Stop(ctx, names)
			}
			if err != nil {
				if elevate && errors.Is(err, service.ErrAccessDenied) && !elevation.IsElevated() {
					GetLogger().Info().Msg("Access denied, requesting administrator rights")
					return runElevated(append([]string{"services", op}, names...)...)
				}
				return err
			}

			if wait {
				p := progress.New(cmd.ErrOrStderr())
				p.Start("Waiting for services")
				wctx, cancel := contextWithTimeout(ctx, timeout)
				defer cancel()
				for _, n := range names {
					p.SetDescription(fmt.Sprintf("Waiting for %s to be %s", n, want))
					if err := service.WaitForState(wctx, ctl, n, want, constants.ServicePollInterval); err != nil {
						p.Error(err)
						return err
					}
				}
				p.Finish()
			}

			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s requested\n", n, op)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait until every service reaches the new state")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.ServiceWaitTimeout, "Limit for --wait")
	cmd.Flags().BoolVar(&elevate, "elevate", false, "Retry with administrator rights when access is denied")

	return cmd
}

func newServicesInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show service details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := serviceCtl()
			info, err := ctl.Info(args[0])
			if err != nil {
				return &service.OpError{Op: "describe", Service: args[0], Err: err}
			}
			st, err := ctl.Query(args[0])
			if err != nil {
				return &service.OpError{Op: "query", Service: args[0], Err: err}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:         %s\n", info.Name)
			fmt.Fprintf(out, "Display name: %s\n", info.DisplayName)
			fmt.Fprintf(out, "Status:       %s\n", st)
			if info.Description != "" {
				fmt.Fprintf(out, "Description:  %s\n", info.Description)
			}
			return nil
		},
	}
}
