package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the config file looked up in the working and home directories.
const FileName = ".treediff.json"

// Config is the root configuration structure.
type Config struct {
	Diff        DiffConfig        `json:"diff"`
	Readability ReadabilityConfig `json:"readability"`
	Filters     FilterConfig      `json:"filters"`
	Cache       CacheConfig       `json:"cache"`
	Log         LogConfig         `json:"log"`
	Watch       WatchConfig       `json:"watch"`
}

// DiffConfig holds diff pipeline options.
type DiffConfig struct {
	ContextLines  int    `json:"contextLines"`  // Default: 3
	PreserveOrder bool   `json:"preserveOrder"` // Default: false (text records first)
	Backend       string `json:"backend"`       // "go-git" or "git"
	RenameDetect  string `json:"renameDetect"`  // "off", "simple" or "aggressive"
}

// ReadabilityConfig holds path overrides for text/binary detection.
type ReadabilityConfig struct {
	BinaryPatterns []string `json:"binaryPatterns"`
	TextPatterns   []string `json:"textPatterns"`
	CacheSize      int      `json:"cacheSize"` // Verdicts kept per blob hash
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// CacheConfig holds object store cache sizes.
type CacheConfig struct {
	BlobCacheSize int `json:"blobCacheSize"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `json:"level"`
}

// WatchConfig holds options for watch mode.
type WatchConfig struct {
	DebounceMillis int `json:"debounceMillis"`
}

// Backend names.
const (
	BackendGoGit = "go-git"
	BackendGit   = "git"
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Diff: DiffConfig{
			ContextLines: 3,
			Backend:      BackendGoGit,
			RenameDetect: "off",
		},
		Readability: ReadabilityConfig{
			BinaryPatterns: []string{},
			TextPatterns:   []string{},
			CacheSize:      1024,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Cache: CacheConfig{
			BlobCacheSize: 256,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Watch: WatchConfig{
			DebounceMillis: 200,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Diff.Backend {
	case BackendGoGit, BackendGit:
	default:
		return fmt.Errorf("diff.backend: unknown backend %q", c.Diff.Backend)
	}
	switch c.Diff.RenameDetect {
	case "off", "simple", "aggressive":
	default:
		return fmt.Errorf("diff.renameDetect: unknown mode %q", c.Diff.RenameDetect)
	}
	if c.Diff.ContextLines < 0 {
		return fmt.Errorf("diff.contextLines must be >= 0, got %d", c.Diff.ContextLines)
	}
	if c.Readability.CacheSize < 0 || c.Cache.BlobCacheSize < 0 {
		return fmt.Errorf("cache sizes must be >= 0")
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{FileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
