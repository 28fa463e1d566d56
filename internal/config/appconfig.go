package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/powerplanchanger/ppc/internal/constants"
)

// AppConfig is the contents of app.conf.
//
// Config file location:
//   - Windows: %APPDATA%\PowerPlanChanger\app.conf
//   - Unix: ~/.config/powerplanchanger/app.conf
//
// INI format:
//
//	[tray]
//	refresh_interval_seconds = 30
//	log_display_events = true
//
//	[history]
//	file = C:\Users\me\AppData\Local\PowerPlanChanger\logs\PowerHistory.log
//	max_size_mb = 5
//	max_backups = 3
//
//	[services]
//	list_file = C:\Users\me\AppData\Roaming\PowerPlanChanger\ServiceList.txt
//	concurrency = 4
//
//	[notifications]
//	enabled = true
//	power_source = true
//	power_plan = true
//	service_errors = true
type AppConfig struct {
	Tray          TrayConfig
	History       HistoryConfig
	Services      ServicesConfig
	Notifications NotificationsConfig
}

// TrayConfig contains tray behaviour settings.
type TrayConfig struct {
	// RefreshIntervalSeconds is how often the tooltip and icon are
	// recomputed when no power event arrives.
	// Minimum: 5, Maximum: 3600, Default: 30
	RefreshIntervalSeconds int `ini:"refresh_interval_seconds"`

	// LogDisplayEvents writes display on/off/dimmed transitions to the
	// history log. Default: true
	LogDisplayEvents bool `ini:"log_display_events"`
}

// HistoryConfig contains power history log settings.
type HistoryConfig struct {
	File       string `ini:"file"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxBackups int    `ini:"max_backups"`
}

// ServicesConfig contains service management settings.
type ServicesConfig struct {
	// ListFile holds one service name per line.
	ListFile string `ini:"list_file"`

	// Concurrency bounds bulk start/stop.
	// Minimum: 1, Maximum: 16, Default: 4
	Concurrency int `ini:"concurrency"`
}

// NotificationsConfig selects which desktop notifications the tray shows.
type NotificationsConfig struct {
	Enabled       bool `ini:"enabled"`
	PowerSource   bool `ini:"power_source"`
	PowerPlan     bool `ini:"power_plan"`
	ServiceErrors bool `ini:"service_errors"`
}

// AppConfig validation errors
var (
	ErrInvalidRefreshInterval = errors.New("refresh_interval_seconds must be between 5 and 3600")
	ErrMissingHistoryFile     = errors.New("history file is required")
	ErrInvalidHistorySize     = errors.New("max_size_mb must be at least 1")
	ErrInvalidHistoryBackups  = errors.New("max_backups must not be negative")
	ErrMissingServiceList     = errors.New("services list_file is required")
	ErrInvalidConcurrency     = errors.New("services concurrency must be between 1 and 16")
)

// NewAppConfig creates a new AppConfig with default values.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		Tray: TrayConfig{
			RefreshIntervalSeconds: int(constants.DefaultRefreshInterval / time.Second),
			LogDisplayEvents:       true,
		},
		History: HistoryConfig{
			File:       DefaultHistoryPath(),
			MaxSizeMB:  constants.DefaultHistoryMaxSizeMB,
			MaxBackups: constants.DefaultHistoryMaxBackups,
		},
		Services: ServicesConfig{
			ListFile:    DefaultServiceListPath(),
			Concurrency: constants.DefaultServiceConcurrency,
		},
		Notifications: NotificationsConfig{
			Enabled:       true,
			PowerSource:   true,
			PowerPlan:     true,
			ServiceErrors: true,
		},
	}
}

// LoadAppConfig loads configuration from app.conf.
// If path is empty, uses the default path.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := NewAppConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", constants.ConfigFileName, err)
	}

	traySection := iniFile.Section("tray")
	cfg.Tray.RefreshIntervalSeconds = traySection.Key("refresh_interval_seconds").MustInt(cfg.Tray.RefreshIntervalSeconds)
	cfg.Tray.LogDisplayEvents = traySection.Key("log_display_events").MustBool(true)

	historySection := iniFile.Section("history")
	cfg.History.File = historySection.Key("file").MustString(cfg.History.File)
	cfg.History.MaxSizeMB = historySection.Key("max_size_mb").MustInt(cfg.History.MaxSizeMB)
	cfg.History.MaxBackups = historySection.Key("max_backups").MustInt(cfg.History.MaxBackups)

	servicesSection := iniFile.Section("services")
	cfg.Services.ListFile = servicesSection.Key("list_file").MustString(cfg.Services.ListFile)
	cfg.Services.Concurrency = servicesSection.Key("concurrency").MustInt(cfg.Services.Concurrency)

	notifySection := iniFile.Section("notifications")
	cfg.Notifications.Enabled = notifySection.Key("enabled").MustBool(true)
	cfg.Notifications.PowerSource = notifySection.Key("power_source").MustBool(true)
	cfg.Notifications.PowerPlan = notifySection.Key("power_plan").MustBool(true)
	cfg.Notifications.ServiceErrors = notifySection.Key("service_errors").MustBool(true)

	return cfg, nil
}

// SaveAppConfig saves configuration to app.conf.
// If path is empty, uses the default path.
// Creates parent directories if they don't exist.
func SaveAppConfig(cfg *AppConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	traySection, err := iniFile.NewSection("tray")
	if err != nil {
		return fmt.Errorf("failed to create tray section: %w", err)
	}
	traySection.Key("refresh_interval_seconds").SetValue(fmt.Sprintf("%d", cfg.Tray.RefreshIntervalSeconds))
	traySection.Key("log_display_events").SetValue(fmt.Sprintf("%t", cfg.Tray.LogDisplayEvents))

	historySection, err := iniFile.NewSection("history")
	if err != nil {
		return fmt.Errorf("failed to create history section: %w", err)
	}
	historySection.Key("file").SetValue(cfg.History.File)
	historySection.Key("max_size_mb").SetValue(fmt.Sprintf("%d", cfg.History.MaxSizeMB))
	historySection.Key("max_backups").SetValue(fmt.Sprintf("%d", cfg.History.MaxBackups))

	servicesSection, err := iniFile.NewSection("services")
	if err != nil {
		return fmt.Errorf("failed to create services section: %w", err)
	}
	servicesSection.Key("list_file").SetValue(cfg.Services.ListFile)
	servicesSection.Key("concurrency").SetValue(fmt.Sprintf("%d", cfg.Services.Concurrency))

	notifySection, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notifySection.Key("enabled").SetValue(fmt.Sprintf("%t", cfg.Notifications.Enabled))
	notifySection.Key("power_source").SetValue(fmt.Sprintf("%t", cfg.Notifications.PowerSource))
	notifySection.Key("power_plan").SetValue(fmt.Sprintf("%t", cfg.Notifications.PowerPlan))
	notifySection.Key("service_errors").SetValue(fmt.Sprintf("%t", cfg.Notifications.ServiceErrors))

	return atomicWrite(path, func(tmp string) error { return iniFile.SaveTo(tmp) })
}

// atomicWrite writes through a temporary file and renames it over path.
func atomicWrite(path string, write func(tmp string) error) error {
	tmpPath := path + ".tmp"
	if err := write(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (cfg *AppConfig) Validate() error {
	if cfg.Tray.RefreshIntervalSeconds < int(constants.MinRefreshInterval/time.Second) ||
		cfg.Tray.RefreshIntervalSeconds > int(constants.MaxRefreshInterval/time.Second) {
		return ErrInvalidRefreshInterval
	}
	if strings.TrimSpace(cfg.History.File) == "" {
		return ErrMissingHistoryFile
	}
	if cfg.History.MaxSizeMB < 1 {
		return ErrInvalidHistorySize
	}
	if cfg.History.MaxBackups < 0 {
		return ErrInvalidHistoryBackups
	}
	if strings.TrimSpace(cfg.Services.ListFile) == "" {
		return ErrMissingServiceList
	}
	if cfg.Services.Concurrency < 1 || cfg.Services.Concurrency > constants.MaxServiceConcurrency {
		return ErrInvalidConcurrency
	}
	return nil
}

// RefreshInterval returns the tray refresh interval as a duration.
func (cfg *AppConfig) RefreshInterval() time.Duration {
	return time.Duration(cfg.Tray.RefreshIntervalSeconds) * time.Second
}
