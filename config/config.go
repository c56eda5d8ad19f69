// Package config loads the migrator's settings from a YAML file with
// environment variables layered on top, so credentials can stay out of
// files that end up in dotfile repos.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ServerConfig locates the MySQL or MariaDB server migrations target.
type ServerConfig struct {
	Host     string `yaml:"host" env:"MEDIAMIGRATE_SERVER_HOST"`
	Port     int    `yaml:"port" env:"MEDIAMIGRATE_SERVER_PORT"`
	User     string `yaml:"user" env:"MEDIAMIGRATE_SERVER_USER"`
	Password string `yaml:"password" env:"MEDIAMIGRATE_SERVER_PASSWORD"`
}

// KodiConfig describes the local Kodi installation being migrated away
// from.
type KodiConfig struct {
	// Home is the Kodi data directory. Empty selects the platform
	// default (~/.kodi on Linux).
	Home string `yaml:"home" env:"MEDIAMIGRATE_KODI_HOME"`
	// Version is the running Kodi version string, for example "20.1".
	// Compatibility checks judge server databases against it.
	Version string `yaml:"version" env:"MEDIAMIGRATE_KODI_VERSION"`
}

// LibraryConfig names the target database for one library. Database wins
// over VersionSuffix when both are set; with neither, commands that need
// a name will say so.
type LibraryConfig struct {
	Database      string `yaml:"database"`
	VersionSuffix string `yaml:"version"`
	// Source overrides the glob pattern locating the local database
	// file. Defaults to the library's files under special://database/.
	Source string `yaml:"source"`
}

// ImportConfig mirrors the library import preferences written to
// advancedsettings.xml.
type ImportConfig struct {
	WatchedState  bool `yaml:"watched_state"`
	ResumePoints  bool `yaml:"resume_points"`
	CleanOnUpdate bool `yaml:"clean_on_update"`
}

// Config is the root of the migrator's configuration.
type Config struct {
	Server ServerConfig  `yaml:"server"`
	Kodi   KodiConfig    `yaml:"kodi"`
	Video  LibraryConfig `yaml:"video"`
	Music  LibraryConfig `yaml:"music"`
	Import ImportConfig  `yaml:"import"`
}

// LoadFromFile loads a migrator configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overlays MEDIAMIGRATE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the file at path when one is given, then overlays the
// environment. An empty path starts from an empty configuration, so the
// migrator runs from environment variables and flags alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
