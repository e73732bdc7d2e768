package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"relay/internal/config"
	"relay/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`

	Serve      ServeCmd      `cmd:"serve" help:"Run the SSH monitor and the idle/reclaim sweeper" default:"1"`
	Ingest     IngestCmd     `cmd:"ingest" help:"Route one inbound message through the pipeline"`
	Sweep      SweepCmd      `cmd:"sweep" help:"Run one idle/reclaim sweep pass"`
	Sessions   SessionsCmd   `cmd:"sessions" help:"Manage sessions (list, view)"`
	Claims     ClaimsCmd     `cmd:"claims" help:"Manage container claims (list, release)"`
	Containers ContainersCmd `cmd:"containers" help:"Manage the warm container pool (register, list)"`
	Queues     QueuesCmd     `cmd:"queues" help:"Manage affinity queues (list, delete)"`
	Responses  ResponsesCmd  `cmd:"responses" help:"Collect and inspect worker responses"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// Settings returns the loaded settings (never nil)
func (c *CLI) Settings() *config.Settings {
	if c.settings == nil {
		return &config.Settings{}
	}
	return c.settings
}

// AfterApply initializes logging after CLI parsing and applies settings
func (c *CLI) AfterApply() error {
	// Precedence: CLI flags > env vars > settings.json > defaults
	if c.settings != nil {
		if c.MaxLogFiles == 1000 {
			if _, hasEnv := os.LookupEnv("RELAY_MAX_LOG_FILES"); !hasEnv {
				if c.settings.MaxLogFiles != nil {
					c.MaxLogFiles = *c.settings.MaxLogFiles
				}
			}
		}

		if !c.Debug {
			if _, hasEnv := os.LookupEnv("RELAY_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}
	}

	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Child processes inherit debug settings and append to the same file
	if c.Debug || c.DebugFile != "" {
		os.Setenv("RELAY_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("RELAY_DEBUG_FILE", logFilePath)
		}
	}
	if c.MaxLogFiles != 1000 {
		os.Setenv("RELAY_MAX_LOG_FILES", fmt.Sprintf("%d", c.MaxLogFiles))
	}

	// Create container AFTER logging is initialized so GORM's logger never
	// sees a nil logging.Logger
	container, err := NewContainer(c.Settings())
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container

	return nil
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
