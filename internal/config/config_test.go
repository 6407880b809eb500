package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Location.Latitude != nil || cfg.Prayer.Method != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[location]
latitude = 51.5
longitude = -0.12
city = "London"

[prayer]
method = 3

[quran]
batch-size = 4
batch-delay = "500ms"
retry-base = "1s"

[notify]
enabled = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Location.Latitude == nil || *cfg.Location.Latitude != 51.5 {
		t.Fatalf("latitude = %v, want 51.5", cfg.Location.Latitude)
	}
	if cfg.Location.City == nil || *cfg.Location.City != "London" {
		t.Fatalf("city = %v, want London", cfg.Location.City)
	}
	if cfg.Prayer.Method == nil || *cfg.Prayer.Method != 3 {
		t.Fatalf("method = %v, want 3", cfg.Prayer.Method)
	}
	if cfg.Quran.BatchDelay == nil || cfg.Quran.BatchDelay.Duration != 500*time.Millisecond {
		t.Fatalf("batch delay = %v, want 500ms", cfg.Quran.BatchDelay)
	}
	if cfg.Notify.Enabled == nil || !*cfg.Notify.Enabled {
		t.Fatalf("notify.enabled not decoded")
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[quran]\nbatch-delay = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error for invalid duration")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("MARIAM_LATITUDE", "21.4")
	t.Setenv("MARIAM_CITY", "Mecca")
	t.Setenv("MARIAM_BATCH_DELAY", "3s")
	t.Setenv("MARIAM_QURAN_URL", "http://localhost:9999")

	envCfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	lat := 10.0
	cfg := FileConfig{Location: LocationConfig{Latitude: &lat}}
	envCfg.Apply(&cfg)

	if *cfg.Location.Latitude != 21.4 {
		t.Fatalf("latitude = %v, want 21.4", *cfg.Location.Latitude)
	}
	if cfg.Location.City == nil || *cfg.Location.City != "Mecca" {
		t.Fatalf("city = %v, want Mecca", cfg.Location.City)
	}
	if cfg.Location.Longitude != nil {
		t.Fatalf("longitude should stay unset")
	}
	if cfg.Quran.BatchDelay == nil || cfg.Quran.BatchDelay.Duration != 3*time.Second {
		t.Fatalf("batch delay = %v, want 3s", cfg.Quran.BatchDelay)
	}
	if envCfg.QuranURL != "http://localhost:9999" {
		t.Fatalf("quran url = %q", envCfg.QuranURL)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "mariam", "config.toml") {
		t.Fatalf("DefaultConfigPath = %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "mariam", "mariam.db") {
		t.Fatalf("DefaultDBPath = %q", got)
	}
}
