// Package config handles profup config file parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default values used when the config file omits a field or no file exists.
const (
	DefaultBaseURL       = "http://api.profup.dev/index.php/{service}"
	DefaultTimeout       = "30s"
	DefaultUserAgent     = "profup"
	DefaultMainBinary    = "bin/workbench"
	DefaultUpdaterBinary = "bin/updater"
	DefaultArchiveName   = "update.zip"
	DefaultVersionFile   = "profiles/version"

	// ServicePlaceholder is replaced by the service name in base_url.
	ServicePlaceholder = "{service}"

	// CurrentVersion is the only config schema version understood.
	CurrentVersion = 1
)

// ServiceConfig describes how to reach the update service.
type ServiceConfig struct {
	BaseURL   string `yaml:"base_url" toml:"base_url" json:"base_url"`
	Timeout   string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty" toml:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// TimeoutDuration returns the parsed response-header timeout. Zero means none.
func (s ServiceConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
	}
	return d, nil
}

// ToolConfig describes the local tool installation.
// Binary and file paths are relative to Home and use forward slashes.
type ToolConfig struct {
	Home          string `yaml:"home,omitempty" toml:"home,omitempty" json:"home,omitempty"`
	MainBinary    string `yaml:"main_binary" toml:"main_binary" json:"main_binary"`
	UpdaterBinary string `yaml:"updater_binary" toml:"updater_binary" json:"updater_binary"`
	ArchiveName   string `yaml:"archive_name" toml:"archive_name" json:"archive_name"`
	VersionFile   string `yaml:"version_file" toml:"version_file" json:"version_file"`
}

// IdentityConfig locates the identity property store.
type IdentityConfig struct {
	File string `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty"`
}

// Config represents the parsed configuration file.
type Config struct {
	Version  int            `yaml:"version" toml:"version" json:"version"`
	Service  ServiceConfig  `yaml:"service" toml:"service" json:"service"`
	Tool     ToolConfig     `yaml:"tool" toml:"tool" json:"tool"`
	Identity IdentityConfig `yaml:"identity" toml:"identity" json:"identity"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Service: ServiceConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		Tool: ToolConfig{
			MainBinary:    DefaultMainBinary,
			UpdaterBinary: DefaultUpdaterBinary,
			ArchiveName:   DefaultArchiveName,
			VersionFile:   DefaultVersionFile,
		},
	}
}

// applyDefaults fills empty fields from Default.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Version == 0 {
		c.Version = d.Version
	}
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = d.Service.BaseURL
	}
	if c.Service.UserAgent == "" {
		c.Service.UserAgent = d.Service.UserAgent
	}
	if c.Tool.MainBinary == "" {
		c.Tool.MainBinary = d.Tool.MainBinary
	}
	if c.Tool.UpdaterBinary == "" {
		c.Tool.UpdaterBinary = d.Tool.UpdaterBinary
	}
	if c.Tool.ArchiveName == "" {
		c.Tool.ArchiveName = d.Tool.ArchiveName
	}
	if c.Tool.VersionFile == "" {
		c.Tool.VersionFile = d.Tool.VersionFile
	}
}

// fileNames are the config file name variants, in order of precedence.
var fileNames = []string{
	"profup.yaml",
	"profup.yml",
	"profup.toml",
	"profup.json",
	".profup.yaml",
	".profup.yml",
	".profup.toml",
	".profup.json",
}

// FindConfig searches for a config file in the standard locations.
// Returns an empty path and no error when none exists; callers then use Default.
func FindConfig(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	// Check PROFUP_CONFIG environment variable
	if envPath := os.Getenv("PROFUP_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}

	for _, dir := range SearchDirs(home) {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", nil
}

// SearchDirs returns the directories searched for a config file, in order.
func SearchDirs(home string) []string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return []string{
		filepath.Join(xdgConfig, "profup"),
		filepath.Join(home, ".profup"),
		home,
	}
}

// DefaultPath returns where `profup init` writes a new config file.
func DefaultPath(format Format) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	ext := "yaml"
	if format == FormatTOML {
		ext = "toml"
	}
	return filepath.Join(SearchDirs(home)[0], "profup."+ext), nil
}

// Load reads and parses a config file from the given path.
// An empty path yields the validated defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, Validate(cfg)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	return Parse(content, format)
}

// Parse parses content in the given format, fills defaults and validates it.
func Parse(content []byte, format Format) (*Config, error) {
	cfg, err := parse(content, format)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
