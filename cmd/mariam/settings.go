package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/mariam/internal/aladhan"
	"github.com/verte-zerg/mariam/internal/config"
	"github.com/verte-zerg/mariam/internal/logging"
	"github.com/verte-zerg/mariam/internal/quran"
)

const (
	defaultMethod       = aladhan.DefaultMethod
	defaultLogLevel     = logging.DefaultLevel
	defaultNotify       = true
	defaultBatchSize    = 3
	defaultBatchDelay   = 2 * time.Second
	defaultEditionDelay = time.Second
	defaultRetries      = 5
	defaultRetryBase    = 2 * time.Second
)

var (
	quranReciter      = quran.DefaultReciter().ID
	quranTranslation  = quran.DefaultTranslation
	quranBatchSize    = defaultBatchSize
	quranBatchDelay   = defaultBatchDelay
	quranEditionDelay = defaultEditionDelay
	quranRetries      = defaultRetries
	quranRetryBase    = defaultRetryBase
)

// settings is the merged configuration: flag > env > file > default.
type settings struct {
	Latitude  *float64
	Longitude *float64
	City      string
	Country   string
	Method    int
	Notify    bool
	LogLevel  string
	DBPath    string

	Reciter      string
	Translation  string
	BatchSize    int
	BatchDelay   time.Duration
	EditionDelay time.Duration
	Retries      int
	RetryBase    time.Duration

	AladhanURL string
	QuranURL   string
	GeocodeURL string
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return settings{}, err
	}
	envCfg.Apply(&fileCfg)

	applyStringConfig(cmd, "city", &flagCity, fileCfg.Location.City)
	applyStringConfig(cmd, "country", &flagCountry, fileCfg.Location.Country)
	applyIntConfig(cmd, "method", &flagMethod, fileCfg.Prayer.Method)
	applyBoolConfig(cmd, "notify", &flagNotify, fileCfg.Notify.Enabled)
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "reciter", &quranReciter, fileCfg.Quran.Reciter)
	applyStringConfig(cmd, "translation", &quranTranslation, fileCfg.Quran.Translation)
	applyIntConfig(cmd, "batch-size", &quranBatchSize, fileCfg.Quran.BatchSize)
	applyDurationConfig(cmd, "batch-delay", &quranBatchDelay, fileCfg.Quran.BatchDelay)
	applyDurationConfig(cmd, "edition-delay", &quranEditionDelay, fileCfg.Quran.EditionDelay)
	applyIntConfig(cmd, "retries", &quranRetries, fileCfg.Quran.Retries)
	applyDurationConfig(cmd, "retry-base", &quranRetryBase, fileCfg.Quran.RetryBase)

	s := settings{
		Latitude:     optionalFloat(cmd, "latitude", flagLatitude, fileCfg.Location.Latitude),
		Longitude:    optionalFloat(cmd, "longitude", flagLongitude, fileCfg.Location.Longitude),
		City:         flagCity,
		Country:      flagCountry,
		Method:       flagMethod,
		Notify:       flagNotify,
		LogLevel:     flagLogLevel,
		DBPath:       flagDBPath,
		Reciter:      quranReciter,
		Translation:  quranTranslation,
		BatchSize:    quranBatchSize,
		BatchDelay:   quranBatchDelay,
		EditionDelay: quranEditionDelay,
		Retries:      quranRetries,
		RetryBase:    quranRetryBase,
		AladhanURL:   envCfg.AladhanURL,
		QuranURL:     envCfg.QuranURL,
		GeocodeURL:   envCfg.GeocodeURL,
	}
	if s.DBPath == "" {
		s.DBPath = config.DefaultDBPath()
	}
	if err := validateSettings(s); err != nil {
		return settings{}, err
	}
	return s, nil
}

func validateSettings(s settings) error {
	if (s.Latitude == nil) != (s.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be set together")
	}
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return fmt.Errorf("--latitude must be between -90 and 90")
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return fmt.Errorf("--longitude must be between -180 and 180")
	}
	if s.Method < 0 {
		return fmt.Errorf("--method must be >= 0")
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if _, ok := quran.FindReciter(s.Reciter); !ok {
		return fmt.Errorf("unknown reciter %q (see: mariam quran reciters)", s.Reciter)
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("--batch-size must be > 0")
	}
	if s.Retries <= 0 {
		return fmt.Errorf("--retries must be > 0")
	}
	if s.BatchDelay < 0 || s.EditionDelay < 0 || s.RetryBase < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

func optionalFloat(cmd *cobra.Command, name string, flagValue float64, value *float64) *float64 {
	if cmd.Flags().Changed(name) {
		v := flagValue
		return &v
	}
	return value
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mariam configuration
# Uncomment a value to enable it. MARIAM_* environment variables and CLI flags
# override config values.

[location]
# latitude = 21.4225        # Without coordinates prayer times use Mecca
# longitude = 39.8262
# city = "Mecca"            # Overrides the reverse geocoded name
# country = "Saudi Arabia"

[prayer]
# method = %d               # Aladhan calculation method (2 = ISNA)

[quran]
# reciter = %q
# translation = %q
# batch-size = %d           # Surahs downloaded together
# batch-delay = %q
# edition-delay = %q
# retries = %d
# retry-base = %q

[notify]
# enabled = %t              # Ring the terminal bell at prayer times

[log]
# level = %q
`,
		defaultMethod,
		quran.DefaultReciter().ID,
		quran.DefaultTranslation,
		defaultBatchSize,
		defaultBatchDelay.String(),
		defaultEditionDelay.String(),
		defaultRetries,
		defaultRetryBase.String(),
		defaultNotify,
		defaultLogLevel,
	)
}
