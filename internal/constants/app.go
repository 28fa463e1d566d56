package constants

import (
	"time"
)

// Application identity
const (
	// AppName is used for the config/log directory and window titles.
	AppName = "PowerPlanChanger"

	// InstanceMutexName guards against a second tray instance.
	InstanceMutexName = "22C2B199-B3D9-4003-9D75-631EBFF72F07"

	// AlreadyRunningMessage is shown when the mutex is already held.
	AlreadyRunningMessage = "PowerPlanChanger is already running!"
)

// File names inside the config and log directories
const (
	ConfigFileName      = "app.conf"
	ServiceListFileName = "ServiceList.txt"
	HistoryFileName     = "PowerHistory.log"
	TrayLogFileName     = "tray.log"
)

// Tray behaviour
const (
	// DefaultRefreshInterval - how often the tray polls battery and plan state
	// in addition to reacting to power broadcasts (30 seconds)
	DefaultRefreshInterval = 30 * time.Second

	// MinRefreshInterval / MaxRefreshInterval bound the configurable interval.
	MinRefreshInterval = 5 * time.Second
	MaxRefreshInterval = 1 * time.Hour

	// MaxTooltipLength - notify icon tooltip buffer is 128 UTF-16 units
	// including the terminator
	MaxTooltipLength = 127
)

// History log rotation
const (
	DefaultHistoryMaxSizeMB  = 5
	DefaultHistoryMaxBackups = 3
)

// Service control
const (
	// DefaultServiceConcurrency - services started/stopped at once by bulk actions
	DefaultServiceConcurrency = 4

	// MaxServiceConcurrency caps the configurable value.
	MaxServiceConcurrency = 16

	// ServicePollInterval - poll period while waiting for a state transition
	ServicePollInterval = 250 * time.Millisecond

	// ServiceWaitTimeout - default limit for --wait
	ServiceWaitTimeout = 30 * time.Second
)

// Cache sizes
const (
	// PlanCacheSize - power plans are few; this only bounds pathological systems
	PlanCacheSize = 64

	// ServiceInfoCacheSize - a typical Windows install has 250-400 services
	ServiceInfoCacheSize = 512
)

// Event bus configuration
const (
	// EventBusDefaultBuffer - default buffer size for event channels (256)
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size (2048)
	EventBusMaxBuffer = 2048
)
