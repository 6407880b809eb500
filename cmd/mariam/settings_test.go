package main

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/config"
	"github.com/verte-zerg/mariam/internal/quran"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if content == "" {
		return
	}
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func findCmd(t *testing.T, root *cobra.Command, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find(args)
	if err != nil {
		t.Fatalf("find %v: %v", args, err)
	}
	return cmd
}

func TestLoadSettingsDefaults(t *testing.T) {
	writeConfig(t, "")
	root := newRootCmd()
	if err := root.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	s, err := loadSettings(root)
	if err != nil {
		t.Fatalf("loadSettings returned error: %v", err)
	}
	if s.Latitude != nil || s.Longitude != nil {
		t.Fatalf("expected no coordinates, got %v, %v", s.Latitude, s.Longitude)
	}
	if s.Method != defaultMethod || s.LogLevel != defaultLogLevel || !s.Notify {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.BatchSize != defaultBatchSize || s.Retries != defaultRetries || s.Reciter != quran.DefaultReciter().ID {
		t.Fatalf("unexpected quran defaults: %+v", s)
	}
	if s.DBPath != config.DefaultDBPath() {
		t.Fatalf("db path = %q", s.DBPath)
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	writeConfig(t, `
[location]
latitude = 51.5
longitude = -0.12
city = "File City"

[prayer]
method = 4

[log]
level = "info"
`)
	t.Setenv("MARIAM_METHOD", "5")
	t.Setenv("MARIAM_CITY", "Env City")

	root := newRootCmd()
	if err := root.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	s, err := loadSettings(root)
	if err != nil {
		t.Fatalf("loadSettings returned error: %v", err)
	}
	if s.Method != 5 || s.City != "Env City" || s.LogLevel != "info" {
		t.Fatalf("env should override file: %+v", s)
	}
	if s.Latitude == nil || *s.Latitude != 51.5 {
		t.Fatalf("latitude = %v", s.Latitude)
	}

	root = newRootCmd()
	if err := root.ParseFlags([]string{"--method", "7", "--city", "Flag City", "--latitude", "10"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	s, err = loadSettings(root)
	if err != nil {
		t.Fatalf("loadSettings returned error: %v", err)
	}
	if s.Method != 7 || s.City != "Flag City" || *s.Latitude != 10 || *s.Longitude != -0.12 {
		t.Fatalf("flags should override env: %+v", s)
	}
}

func TestLoadSettingsQuranFlags(t *testing.T) {
	writeConfig(t, `
[quran]
batch-size = 5
batch-delay = "4s"
retries = 2
`)
	root := newRootCmd()
	fetch := findCmd(t, root, "quran", "fetch")
	if err := fetch.ParseFlags([]string{"--batch-size", "6"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	s, err := loadSettings(fetch)
	if err != nil {
		t.Fatalf("loadSettings returned error: %v", err)
	}
	if s.BatchSize != 6 || s.BatchDelay != 4*time.Second || s.Retries != 2 {
		t.Fatalf("unexpected quran settings: %+v", s)
	}
}

func TestValidateSettingsRejectsHalfCoordinates(t *testing.T) {
	writeConfig(t, "[location]\nlatitude = 10.0\n")
	root := newRootCmd()
	if err := root.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := loadSettings(root); err == nil {
		t.Fatalf("expected error for latitude without longitude")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	uncomment := regexp.MustCompile(`(?m)^# ([a-z-]+ = )`)
	content := uncomment.ReplaceAllString(defaultConfigTemplate(), "$1")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v\n%s", err, content)
	}
	if cfg.Prayer.Method == nil || *cfg.Prayer.Method != defaultMethod {
		t.Fatalf("method = %v", cfg.Prayer.Method)
	}
	if cfg.Quran.BatchDelay == nil || cfg.Quran.BatchDelay.Duration != defaultBatchDelay {
		t.Fatalf("batch delay = %v", cfg.Quran.BatchDelay)
	}
	if cfg.Notify.Enabled == nil || !*cfg.Notify.Enabled {
		t.Fatalf("notify = %v", cfg.Notify.Enabled)
	}
	if cfg.Location.Latitude == nil || cfg.Location.City == nil {
		t.Fatalf("location section not decoded: %+v", cfg.Location)
	}
}

func TestParseVerseRef(t *testing.T) {
	surah, ayah, err := parseVerseRef("2:255")
	if err != nil || surah != 2 || ayah != 255 {
		t.Fatalf("parseVerseRef = %d, %d, %v", surah, ayah, err)
	}
	for _, bad := range []string{"2", "0:1", "115:1", "2:0", "x:1"} {
		if _, _, err := parseVerseRef(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
