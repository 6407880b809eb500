package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "MARIAM_"

// EnvConfig captures MARIAM_* environment overrides. Unset variables stay nil.
type EnvConfig struct {
	Latitude     *float64       `env:"LATITUDE"`
	Longitude    *float64       `env:"LONGITUDE"`
	City         *string        `env:"CITY"`
	Country      *string        `env:"COUNTRY"`
	Method       *int           `env:"METHOD"`
	Reciter      *string        `env:"RECITER"`
	Translation  *string        `env:"TRANSLATION"`
	BatchSize    *int           `env:"BATCH_SIZE"`
	BatchDelay   *time.Duration `env:"BATCH_DELAY"`
	EditionDelay *time.Duration `env:"EDITION_DELAY"`
	Retries      *int           `env:"RETRIES"`
	RetryBase    *time.Duration `env:"RETRY_BASE"`
	Notify       *bool          `env:"NOTIFY"`
	LogLevel     *string        `env:"LOG_LEVEL"`

	AladhanURL string `env:"ALADHAN_URL"`
	QuranURL   string `env:"QURAN_URL"`
	GeocodeURL string `env:"GEOCODE_URL"`
}

// LoadEnv parses MARIAM_* variables from the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Apply overlays environment values on top of the file config.
func (e EnvConfig) Apply(cfg *FileConfig) {
	setIfPresent(&cfg.Location.Latitude, e.Latitude)
	setIfPresent(&cfg.Location.Longitude, e.Longitude)
	setIfPresent(&cfg.Location.City, e.City)
	setIfPresent(&cfg.Location.Country, e.Country)
	setIfPresent(&cfg.Prayer.Method, e.Method)
	setIfPresent(&cfg.Quran.Reciter, e.Reciter)
	setIfPresent(&cfg.Quran.Translation, e.Translation)
	setIfPresent(&cfg.Quran.BatchSize, e.BatchSize)
	setDurationIfPresent(&cfg.Quran.BatchDelay, e.BatchDelay)
	setDurationIfPresent(&cfg.Quran.EditionDelay, e.EditionDelay)
	setIfPresent(&cfg.Quran.Retries, e.Retries)
	setDurationIfPresent(&cfg.Quran.RetryBase, e.RetryBase)
	setIfPresent(&cfg.Notify.Enabled, e.Notify)
	setIfPresent(&cfg.Log.Level, e.LogLevel)
}

func setIfPresent[T any](target **T, value *T) {
	if value == nil {
		return
	}
	v := *value
	*target = &v
}

func setDurationIfPresent(target **Duration, value *time.Duration) {
	if value == nil {
		return
	}
	*target = &Duration{Duration: *value}
}
