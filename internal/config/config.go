// Package config loads runtime configuration from an optional yaml
// file with environment overrides. The resulting struct is passed
// explicitly to the components that need it; there are no mutable
// package-level settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config captures every tunable of the application.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // gin mode: debug, release, test
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	QR struct {
		DisplaySize int `yaml:"display_size"` // on-screen raster, pixels
		PrintSize   int `yaml:"print_size"`   // raster embedded in PDFs, pixels
	} `yaml:"qr"`

	Log struct {
		Level string `yaml:"level"` // debug, info, warn, error
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present:
// everything a local single-user run needs.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8095"
	cfg.Server.Mode = "release"
	cfg.Database.Path = "./data/qr_codes.db"
	cfg.QR.DisplaySize = 150
	cfg.QR.PrintSize = 100
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the yaml file at path, falling back to the CONFIG_PATH
// env var and then to pure defaults when no file exists. A file that
// exists but cannot be parsed is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills any field the file left empty.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Port == "" {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = def.Server.Mode
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = def.Database.Path
	}
	if cfg.QR.DisplaySize <= 0 {
		cfg.QR.DisplaySize = def.QR.DisplaySize
	}
	if cfg.QR.PrintSize <= 0 {
		cfg.QR.PrintSize = def.QR.PrintSize
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}
