// Package config loads server configuration for the EcoChain backend.
//
// Settings come from an optional YAML file plus ECOCHAIN_* environment
// variables (environment wins). Example:
//
//	ECOCHAIN_LISTEN_ADDR=:5000 ECOCHAIN_LOG_LEVEL=debug ecochain serve
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
)

// Server holds all runtime settings for the HTTP server, the connector
// timeouts and the background sync scheduler.
type Server struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `mapstructure:"listen_addr"`
	// LogLevel sets logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
	// Development switches the logger to console encoding.
	Development bool `mapstructure:"development"`

	// TestTimeout bounds a connectivity test against a remote system.
	TestTimeout time.Duration `mapstructure:"test_timeout"`
	// SyncTimeout bounds the fetch phase of one sync.
	SyncTimeout time.Duration `mapstructure:"sync_timeout"`

	// SchedulerInterval is how often the scheduler looks for due syncs.
	// Zero disables the scheduler.
	SchedulerInterval time.Duration `mapstructure:"scheduler_interval"`
	// SyncLease is how long a source may sit in the syncing state before
	// it is considered abandoned (crash leftover) and a new sync is allowed.
	SyncLease time.Duration `mapstructure:"sync_lease"`

	// SeedDemoData populates the in-memory store with the demo users.
	SeedDemoData bool `mapstructure:"seed_demo_data"`
}

// Load reads configuration from the given file (optional, "" to skip) and
// the environment.
func Load(path string) (*Server, error) {
	v := viper.New()
	v.SetEnvPrefix("ecochain")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("log_level", "info")
	v.SetDefault("development", false)
	v.SetDefault("test_timeout", 5*time.Second)
	v.SetDefault("sync_timeout", 30*time.Second)
	v.SetDefault("scheduler_interval", time.Minute)
	v.SetDefault("sync_lease", 10*time.Minute)
	v.SetDefault("seed_demo_data", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "failed to read config file")
		}
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ecoerrors.Wrap(err, ecoerrors.ErrorTypeConfig, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Server) Validate() error {
	if c.ListenAddr == "" {
		return ecoerrors.New(ecoerrors.ErrorTypeConfig, "listen_addr is required")
	}
	if c.TestTimeout <= 0 {
		return ecoerrors.New(ecoerrors.ErrorTypeConfig, "test_timeout must be positive")
	}
	if c.SyncTimeout <= 0 {
		return ecoerrors.New(ecoerrors.ErrorTypeConfig, "sync_timeout must be positive")
	}
	if c.SyncLease <= 0 {
		return ecoerrors.New(ecoerrors.ErrorTypeConfig, "sync_lease must be positive")
	}
	if c.SchedulerInterval < 0 {
		return ecoerrors.New(ecoerrors.ErrorTypeConfig, "scheduler_interval cannot be negative")
	}
	return nil
}
