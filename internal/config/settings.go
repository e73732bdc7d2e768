package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Defaults applied when settings.json leaves a knob unset
const (
	DefaultIdleAfterSeconds     = 300
	DefaultMaxLogFiles          = 1000
	DefaultReceiveBatch         = 10
	DefaultReleaseAfterSeconds  = 1800
	DefaultSSHHost              = "localhost"
	DefaultSSHPort              = "2269"
	DefaultSweepIntervalSeconds = 60
)

// Settings represents the structure of $RELAY_HOME/settings.json.
// Pointer fields distinguish "unset" from an explicit zero.
type Settings struct {
	DBPath               string `json:"db_path,omitempty"`
	Debug                *bool  `json:"debug,omitempty"`
	IdleAfterSeconds     *int   `json:"idle_after_seconds,omitempty"`
	MaxLogFiles          *int   `json:"max_log_files,omitempty"`
	ReceiveBatch         *int   `json:"receive_batch,omitempty"`
	ReleaseAfterSeconds  *int   `json:"release_after_seconds,omitempty"`
	SSHHost              string `json:"ssh_host,omitempty"`
	SSHPort              string `json:"ssh_port,omitempty"`
	SweepIntervalSeconds *int   `json:"sweep_interval_seconds,omitempty"`
}

// LoadSettings loads settings from $RELAY_HOME/settings.json.
// Returns empty Settings if file doesn't exist (not an error).
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil // Not an error, use defaults
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	if settings.DBPath != "" {
		settings.DBPath = ExpandPath(settings.DBPath)
	}

	return &settings, nil
}

// SaveSettings saves settings to $RELAY_HOME/settings.json
func SaveSettings(settings *Settings) error {
	path := GetSettingsPath()
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// ResolvedDBPath returns the configured database path or the default
func (s *Settings) ResolvedDBPath() string {
	if s != nil && s.DBPath != "" {
		return s.DBPath
	}
	return GetDBPath()
}

// IdleAfter returns the quiet period before a processing claim goes idle
func (s *Settings) IdleAfter() time.Duration {
	return secondsOr(s.intField(func(s *Settings) *int { return s.IdleAfterSeconds }), DefaultIdleAfterSeconds)
}

// ReleaseAfter returns the quiet period before an idle claim is reclaimed
func (s *Settings) ReleaseAfter() time.Duration {
	return secondsOr(s.intField(func(s *Settings) *int { return s.ReleaseAfterSeconds }), DefaultReleaseAfterSeconds)
}

// SweepInterval returns how often the background sweeper runs
func (s *Settings) SweepInterval() time.Duration {
	return secondsOr(s.intField(func(s *Settings) *int { return s.SweepIntervalSeconds }), DefaultSweepIntervalSeconds)
}

// ResolvedSSHHost returns the monitor bind host
func (s *Settings) ResolvedSSHHost() string {
	if s != nil && s.SSHHost != "" {
		return s.SSHHost
	}
	return DefaultSSHHost
}

// ResolvedSSHPort returns the monitor bind port
func (s *Settings) ResolvedSSHPort() string {
	if s != nil && s.SSHPort != "" {
		return s.SSHPort
	}
	return DefaultSSHPort
}

func (s *Settings) intField(get func(*Settings) *int) *int {
	if s == nil {
		return nil
	}
	return get(s)
}

func secondsOr(v *int, def int) time.Duration {
	if v != nil && *v > 0 {
		return time.Duration(*v) * time.Second
	}
	return time.Duration(def) * time.Second
}
