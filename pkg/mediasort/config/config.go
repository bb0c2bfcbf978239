// Package config loads tool configuration from the config file,
// environment and flags, in ascending precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config is the resolved configuration for a mediasort invocation.
type Config struct {
	// WatchDir is the drop folder monitored by the watch command.
	WatchDir string `mapstructure:"watch_dir"`

	// ArchiveRoot is the base of the date-sharded archive tree.
	ArchiveRoot string `mapstructure:"archive_root"`

	// ManifestPath is the manifest JSON file location.
	ManifestPath string `mapstructure:"manifest_path"`

	// FFProbePath overrides the ffprobe binary. Empty resolves from PATH.
	FFProbePath string `mapstructure:"ffprobe_path"`

	// StabilityWait is how long a file must stay unchanged before the
	// watcher ingests it, guarding against half-written copies.
	StabilityWait string `mapstructure:"stability_wait"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig mirrors logging.Options in file form.
type LoggingConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	File         string `mapstructure:"file"`
	ReportCaller bool   `mapstructure:"report_caller"`
}

// SetDefaults installs default values on a viper instance. Paths
// follow the XDG base-directory layout.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("watch_dir", filepath.Join(xdg.UserDirs.Download, "mediasort-drop"))
	v.SetDefault("archive_root", filepath.Join(xdg.DataHome, "mediasort", "archive"))
	v.SetDefault("manifest_path", filepath.Join(xdg.DataHome, "mediasort", "manifest.json"))
	v.SetDefault("ffprobe_path", "")
	v.SetDefault("stability_wait", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.report_caller", false)
}

// Load reads the config file (if present), applies environment
// overrides and unmarshals the result. A missing config file is fine;
// a malformed one is not.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "mediasort"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MEDIASORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the resolved configuration is usable.
func (c *Config) Validate() error {
	if c.ArchiveRoot == "" {
		return fmt.Errorf("archive_root must be set")
	}
	if c.ManifestPath == "" {
		return fmt.Errorf("manifest_path must be set")
	}
	return nil
}
