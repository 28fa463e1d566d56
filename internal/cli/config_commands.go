package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/powerplanchanger/ppc/internal/config"
)

// configPath returns --config or the default app.conf location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// loadAppConfig loads and validates app.conf. A missing file yields defaults.
func loadAppConfig() (*config.AppConfig, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadAppConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// contextWithTimeout applies d when positive.
func contextWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage app.conf",
		Long: `Configuration management commands for PowerPlanChanger.

Commands:
  init      - Write app.conf with default values
  show      - Display current configuration
  validate  - Check app.conf for errors
  path      - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigValidateCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write app.conf with default values",
		Long: `Write app.conf with default values.

Use --force to overwrite an existing file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveAppConfig(config.NewAppConfig(), path); err != nil {
				return err
			}
			GetLogger().Debug().Str("path", path).Msg("Configuration written")
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadAppConfig(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration file: %s\n\n", path)
			fmt.Fprintln(out, "[tray]")
			fmt.Fprintf(out, "  refresh_interval_seconds = %d\n", cfg.Tray.RefreshIntervalSeconds)
			fmt.Fprintf(out, "  log_display_events       = %t\n", cfg.Tray.LogDisplayEvents)
			fmt.Fprintln(out, "[history]")
			fmt.Fprintf(out, "  file        = %s\n", cfg.History.File)
			fmt.Fprintf(out, "  max_size_mb = %d\n", cfg.History.MaxSizeMB)
			fmt.Fprintf(out, "  max_backups = %d\n", cfg.History.MaxBackups)
			fmt.Fprintln(out, "[services]")
			fmt.Fprintf(out, "  list_file   = %s\n", cfg.Services.ListFile)
			fmt.Fprintf(out, "  concurrency = %d\n", cfg.Services.Concurrency)
			fmt.Fprintln(out, "[notifications]")
			fmt.Fprintf(out, "  enabled        = %t\n", cfg.Notifications.Enabled)
			fmt.Fprintf(out, "  power_source   = %t\n", cfg.Notifications.PowerSource)
			fmt.Fprintf(out, "  power_plan     = %t\n", cfg.Notifications.PowerPlan)
			fmt.Fprintf(out, "  service_errors = %t\n", cfg.Notifications.ServiceErrors)
			return nil
		},
	}
}

// newConfigValidateCmd creates the 'config validate' command.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check app.conf for errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadAppConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
