// Package config handles the planning root layout and the trellis.yaml
// project configuration. Every planning root carries a .trellis/ directory
// holding the config file and logs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"trellis/internal/resolver"
)

const (
	// TrellisDir marks a directory as a planning root.
	TrellisDir = ".trellis"

	configFileName = "trellis.yaml"

	// DefaultCacheEntries bounds the children-discovery cache when the
	// config does not say otherwise.
	DefaultCacheEntries = 256
)

const defaultConfigYAML = `# trellis planning root configuration
version: 1

# Default priority for new tasks when none is given: high, normal, or low.
default_priority: normal

# Maximum entries held by the children-discovery cache.
cache_entries: 256

# Optional base directory for claim worktrees. Leave empty to pass worktree
# paths explicitly on claim.
worktree_base: ""
`

// Settings models .trellis/trellis.yaml.
type Settings struct {
	Version         int    `yaml:"version"`
	DefaultPriority string `yaml:"default_priority"`
	CacheEntries    int    `yaml:"cache_entries"`
	WorktreeBase    string `yaml:"worktree_base,omitempty"`
}

// Config is the runtime configuration for one planning root.
type Config struct {
	// Root is the planning tree root holding projects/ and the standalone
	// task directories.
	Root     string
	Settings Settings
}

func defaultSettings() Settings {
	return Settings{
		Version:         1,
		DefaultPriority: "normal",
		CacheEntries:    DefaultCacheEntries,
	}
}

// InitPlanningRoot creates the planning directory skeleton and a default
// config file. Existing files are left untouched, so init is idempotent.
func InitPlanningRoot(root string) error {
	dirs := []string{
		filepath.Join(root, resolver.ProjectsDirName),
		filepath.Join(root, resolver.TasksOpenDirName),
		filepath.Join(root, resolver.TasksDoneDirName),
		filepath.Join(root, TrellisDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureConfigFile(filepath.Join(root, TrellisDir, configFileName))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write default config: %w", err)
	}
	return nil
}

// Load reads the config for an initialized planning root.
func Load(root string) (*Config, error) {
	cfg := &Config{Root: root, Settings: defaultSettings()}
	path := filepath.Join(root, TrellisDir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg.Settings); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Settings.CacheEntries <= 0 {
		cfg.Settings.CacheEntries = DefaultCacheEntries
	}
	if cfg.Settings.DefaultPriority == "" {
		cfg.Settings.DefaultPriority = "normal"
	}
	return cfg, nil
}

// FindRoot walks up from start looking for a directory containing .trellis.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", start, err)
	}
	for {
		marker := filepath.Join(dir, TrellisDir)
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: no planning root found above %s; run trellis init", start)
		}
		dir = parent
	}
}

// LogPath returns the run log location for the root.
func (c *Config) LogPath() string {
	return filepath.Join(c.Root, TrellisDir, "logs", "trellis.log")
}
