// Package config loads the node configuration from defaults, a TOML
// file, and CUSTODIAD_-prefixed environment variables, in that order.
package config

import (
	"fmt"
	"path/filepath"
)

// Config is the complete custodiad configuration.
type Config struct {
	Node     NodeConfig     `toml:"node" mapstructure:"node"`
	RPC      RPCConfig      `toml:"rpc" mapstructure:"rpc"`
	History  HistoryConfig  `toml:"history" mapstructure:"history"`
	Snapshot SnapshotConfig `toml:"snapshot" mapstructure:"snapshot"`

	configPath string `toml:"-" mapstructure:"-"`
}

// NodeConfig covers local storage and the key-value backend.
type NodeConfig struct {
	DataDir string `toml:"data_dir" mapstructure:"data_dir"`
	// Backend selects the key-value engine: "pebble" or "leveldb".
	Backend string `toml:"backend" mapstructure:"backend"`
}

// RPCConfig covers the JSON-RPC and websocket listener.
type RPCConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Addr    string `toml:"addr" mapstructure:"addr"`
}

// HistoryConfig covers the relational operation log.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver" mapstructure:"driver"`
	// DSN is the driver connection string. For sqlite an empty DSN
	// defaults to history.db under the data directory.
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// SnapshotConfig covers periodic state persistence.
type SnapshotConfig struct {
	// IntervalSeconds between automatic snapshots. Zero disables the
	// periodic saver; a snapshot is still taken on shutdown.
	IntervalSeconds int `toml:"interval_seconds" mapstructure:"interval_seconds"`
}

// GetConfigPath returns the path the configuration was loaded from,
// or "" when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// HistoryDSN resolves the history connection string, substituting the
// sqlite default when unset.
func (c *Config) HistoryDSN() string {
	if c.History.DSN != "" {
		return c.History.DSN
	}
	if c.History.Driver == "sqlite" {
		return filepath.Join(c.Node.DataDir, "history.db")
	}
	return ""
}

// Validate checks the configuration for values the node cannot run with.
func (c *Config) Validate() error {
	if c.Node.DataDir == "" {
		return fmt.Errorf("node.data_dir cannot be empty")
	}
	switch c.Node.Backend {
	case "pebble", "leveldb":
	default:
		return fmt.Errorf("unknown node.backend: %s (supported: pebble, leveldb)", c.Node.Backend)
	}
	if c.RPC.Enabled && c.RPC.Addr == "" {
		return fmt.Errorf("rpc.addr cannot be empty when rpc is enabled")
	}
	if c.History.Enabled {
		switch c.History.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("unknown history.driver: %s (supported: sqlite, postgres)", c.History.Driver)
		}
		if c.History.Driver == "postgres" && c.History.DSN == "" {
			return fmt.Errorf("history.dsn is required for the postgres driver")
		}
	}
	if c.Snapshot.IntervalSeconds < 0 {
		return fmt.Errorf("snapshot.interval_seconds cannot be negative")
	}
	return nil
}
