package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/caravel-cli/caravel/pkg/maven"
)

// Config holds the optional TOML configuration. All fields have working
// zero values; the file only exists to override defaults.
//
// Example ~/.config/caravel/config.toml:
//
//	concurrency = 16
//	cache_ttl_hours = 48
//
//	[[repositories]]
//	name = "corp"
//	base_url = "https://nexus.corp.example/repository/maven-public"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
type Config struct {
	Repositories  []maven.Repository `toml:"repositories"`
	Concurrency   int                `toml:"concurrency"`
	CacheTTLHours int                `toml:"cache_ttl_hours"`
	CacheDir      string             `toml:"cache_dir"`
	Listen        string             `toml:"listen"`

	Redis redisConfig `toml:"redis"`
	Mongo mongoConfig `toml:"mongo"`
}

type redisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type mongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CacheTTL converts the configured hours to a duration, 0 meaning unset.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// defaultConfigPath returns ~/.config/caravel/config.toml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "caravel", "config.toml"), nil
}

// loadConfig reads the TOML configuration at path. An empty path tries
// the default location; a missing file yields the zero Config.
func loadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		def, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = def
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// repositories returns the probe order: the built-in defaults followed
// by any configured extras. Returns nil when nothing is configured so
// the resolver installs its own defaults.
func (c *Config) repositories() []maven.Repository {
	if len(c.Repositories) == 0 {
		return nil // resolver installs the defaults
	}
	return append(maven.DefaultRepositories(), c.Repositories...)
}
