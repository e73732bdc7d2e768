package config

import (
	"os"
	"path/filepath"
)

// GetRelayHome returns RELAY_HOME or ~/.relay default
func GetRelayHome() string {
	relayHome := os.Getenv("RELAY_HOME")
	if relayHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".relay"
		}
		return filepath.Join(homeDir, ".relay")
	}
	return ExpandPath(relayHome)
}

// GetDBPath returns $RELAY_HOME/relay.db
func GetDBPath() string {
	return filepath.Join(GetRelayHome(), "relay.db")
}

// GetSettingsPath returns $RELAY_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetRelayHome(), "settings.json")
}

// GetRunLockPath returns $RELAY_HOME/serve.lock
func GetRunLockPath() string {
	return filepath.Join(GetRelayHome(), "serve.lock")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
