package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig is read from the --config file. Command flags win over it.
type AppConfig struct {
	Debug       bool    `yaml:"debug"`
	Info        bool    `yaml:"info"`
	Human       bool    `yaml:"human"`
	Strength    float64 `yaml:"strength"`
	DWTStrength float64 `yaml:"dwt_strength"`
	Quality     int     `yaml:"quality"`
}

func defaultConfig() AppConfig {
	return AppConfig{Strength: 5.0}
}

// loadConfig reads path into the defaults. An empty path, or the default
// path when the file does not exist, yields the defaults.
func loadConfig(path string, explicit bool) (AppConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
