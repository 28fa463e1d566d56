// Package config provides configuration management for PowerPlanChanger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/powerplanchanger/ppc/internal/constants"
)

// ConfigDirectory returns the per-user settings directory.
//
// Locations:
//   - Windows: %APPDATA%\PowerPlanChanger
//   - Unix: ~/.config/powerplanchanger
func ConfigDirectory() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", errors.New("neither APPDATA nor USERPROFILE environment variable set")
			}
			appData = filepath.Join(userProfile, "AppData", "Roaming")
		}
		return filepath.Join(appData, constants.AppName), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "powerplanchanger"), nil
}

// LogDirectory returns the directory for the history and tray logs.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\PowerPlanChanger\logs
//   - Unix: ~/.config/powerplanchanger/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "powerplanchanger-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, constants.AppName, "logs")
	}

	dir, err := ConfigDirectory()
	if err != nil {
		return filepath.Join(os.TempDir(), "powerplanchanger-logs")
	}
	return filepath.Join(dir, "logs")
}

// EnsureLogDirectory creates the log directory if it doesn't exist.
func EnsureLogDirectory() error {
	return os.MkdirAll(LogDirectory(), 0700)
}

// DefaultConfigPath returns the default location of app.conf.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// DefaultServiceListPath returns the default location of ServiceList.txt.
func DefaultServiceListPath() string {
	dir, err := ConfigDirectory()
	if err != nil {
		return constants.ServiceListFileName
	}
	return filepath.Join(dir, constants.ServiceListFileName)
}

// DefaultHistoryPath returns the default location of the power history log.
func DefaultHistoryPath() string {
	return filepath.Join(LogDirectory(), constants.HistoryFileName)
}
