// Package config handles persistent configuration for tij.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds tij's persistent settings. Pointer fields use nil to mean
// "inherit the default / the less-specific tier's value" (grounded on
// madicen-jj-tui's *bool config fields), which is what makes two-tier
// global/per-repo merging lossless: a tier that never set a field leaves
// it nil rather than baking in a default too early.
type Config struct {
	LogLimit             *int     `toml:"log_limit,omitempty"`             // nil = 200
	DiffFormat           string   `toml:"diff_format,omitempty"`           // "", "git", "stat" — nil/"" = "git"
	ProtectedBookmarks   []string `toml:"protected_bookmarks,omitempty"`   // extra names, added to jj's own list
	AutoRefreshInterval  *int     `toml:"auto_refresh_interval_seconds,omitempty"` // nil = 0 (disabled)
	PreviewCacheCapacity *int     `toml:"preview_cache_capacity,omitempty"`        // nil = 32

	loadedFrom string `toml:"-"`
}

// LocalConfigFileName is the per-repo config file, checked into nothing —
// it's a local override, not shared state.
const LocalConfigFileName = ".tij.toml"

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tij"), nil
}

func globalConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func localConfigPath() string {
	return LocalConfigFileName
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.loadedFrom = path
	return &cfg, nil
}

// mergeConfig overlays source onto dest, a field at a time, only
// overwriting fields source actually set.
func mergeConfig(dest, source *Config) {
	if source == nil {
		return
	}
	if source.LogLimit != nil {
		dest.LogLimit = source.LogLimit
	}
	if source.DiffFormat != "" {
		dest.DiffFormat = source.DiffFormat
	}
	if len(source.ProtectedBookmarks) > 0 {
		dest.ProtectedBookmarks = source.ProtectedBookmarks
	}
	if source.AutoRefreshInterval != nil {
		dest.AutoRefreshInterval = source.AutoRefreshInterval
	}
	if source.PreviewCacheCapacity != nil {
		dest.PreviewCacheCapacity = source.PreviewCacheCapacity
	}
}

// Load reads config with the following precedence (highest to lowest):
//  1. TIJ_CONFIG env var (an explicit path, used as-is, no merging)
//  2. .tij.toml in the current directory (per-repo), merged over
//  3. ~/.config/tij/config.toml (global)
func Load() (*Config, error) {
	if envPath := os.Getenv("TIJ_CONFIG"); envPath != "" {
		cfg, err := loadFromFile(envPath)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			cfg = &Config{loadedFrom: envPath}
		}
		return cfg, nil
	}

	cfg := &Config{}
	globalPath, err := globalConfigPath()
	if err == nil {
		globalCfg, err := loadFromFile(globalPath)
		if err != nil {
			return nil, err
		}
		if globalCfg != nil {
			cfg = globalCfg
		}
	}

	localCfg, err := loadFromFile(localConfigPath())
	if err != nil {
		return nil, err
	}
	if localCfg != nil {
		mergeConfig(cfg, localCfg)
		cfg.loadedFrom = localConfigPath()
	} else if cfg.loadedFrom == "" && globalPath != "" {
		cfg.loadedFrom = globalPath
	}

	return cfg, nil
}

// Save writes to the global config file.
func (c *Config) Save() error {
	return c.SaveTo("")
}

// SaveLocal writes to the per-repo .tij.toml in the current directory.
func (c *Config) SaveLocal() error {
	return c.SaveTo(localConfigPath())
}

// SaveTo writes to path, or the global config location when path is empty.
func (c *Config) SaveTo(path string) error {
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		path, err = globalConfigPath()
		if err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	c.loadedFrom = path
	return nil
}

// HasLocalConfig reports whether a .tij.toml exists in the current directory.
func HasLocalConfig() bool {
	_, err := os.Stat(localConfigPath())
	return err == nil
}

// LoadedFrom returns the path this config was loaded from (or last saved to).
func (c *Config) LoadedFrom() string { return c.loadedFrom }

// IsLocal reports whether the config in effect came from the per-repo file.
func (c *Config) IsLocal() bool { return c.loadedFrom == localConfigPath() }

// Defaulted accessors — the pointer fields above hold raw overrides; these
// are what the rest of tij actually calls.

func (c *Config) GetLogLimit() int {
	if c.LogLimit == nil {
		return 200
	}
	return *c.LogLimit
}

func (c *Config) GetDiffFormat() string {
	if c.DiffFormat == "" {
		return "git"
	}
	return c.DiffFormat
}

func (c *Config) GetAutoRefreshInterval() int {
	if c.AutoRefreshInterval == nil {
		return 0
	}
	return *c.AutoRefreshInterval
}

func (c *Config) GetPreviewCacheCapacity() int {
	if c.PreviewCacheCapacity == nil {
		return 32
	}
	return *c.PreviewCacheCapacity
}

// ExtraProtectedBookmarks returns the config-supplied additions to the
// protected-bookmark list (see internal/protocol), on top of jj's own
// `tij.protected-bookmarks` setting and the built-in main/master/trunk.
func (c *Config) ExtraProtectedBookmarks() []string {
	return c.ProtectedBookmarks
}
