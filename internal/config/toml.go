// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Location LocationConfig `toml:"location"`
	Prayer   PrayerConfig   `toml:"prayer"`
	Quran    QuranConfig    `toml:"quran"`
	Notify   NotifyConfig   `toml:"notify"`
	Log      LogConfig      `toml:"log"`
}

// LocationConfig maps the coordinates prayer times are computed for.
type LocationConfig struct {
	Latitude  *float64 `toml:"latitude"`
	Longitude *float64 `toml:"longitude"`
	City      *string  `toml:"city"`
	Country   *string  `toml:"country"`
}

// PrayerConfig maps prayer-time calculation settings.
type PrayerConfig struct {
	Method *int `toml:"method"`
}

// QuranConfig maps Quran download and recitation settings.
type QuranConfig struct {
	Reciter      *string   `toml:"reciter"`
	Translation  *string   `toml:"translation"`
	BatchSize    *int      `toml:"batch-size"`
	BatchDelay   *Duration `toml:"batch-delay"`
	EditionDelay *Duration `toml:"edition-delay"`
	Retries      *int      `toml:"retries"`
	RetryBase    *Duration `toml:"retry-base"`
}

// NotifyConfig maps prayer notification settings.
type NotifyConfig struct {
	Enabled *bool `toml:"enabled"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
