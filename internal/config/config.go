package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// ErrNotConfigured means the credentials are missing or were rejected.
var ErrNotConfigured = errors.New("timething is not configured")

const (
	keyHarvestAccessToken = "HARVEST_ACCESS_TOKEN"
	keyHarvestAccountID   = "HARVEST_ACCOUNT_ID"
	keyForecastAccountID  = "FORECAST_ACCOUNT_ID"
)

type Config struct {
	Credentials Credentials   `toml:"-"`
	Forecast    ServiceConfig `toml:"forecast"`
	Harvest     ServiceConfig `toml:"harvest"`
	Fetch       FetchConfig   `toml:"fetch"`
	Cache       CacheConfig   `toml:"cache"`
	Log         LogConfig     `toml:"log"`
}

// Credentials are the three secrets kept in the key=value config file.
// The Harvest token authenticates against both services.
type Credentials struct {
	HarvestAccessToken string
	HarvestAccountID   string
	ForecastAccountID  string
}

func (c Credentials) Complete() bool {
	return c.HarvestAccessToken != "" && c.HarvestAccountID != "" && c.ForecastAccountID != ""
}

type ServiceConfig struct {
	BaseURL string `toml:"base_url"`
}

type FetchConfig struct {
	MaxPages       int `toml:"max_pages"`
	PerPage        int `toml:"per_page"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

type CacheConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelWarn
	}
	return level
}

func DefaultConfig() Config {
	return Config{
		Fetch: FetchConfig{
			MaxPages:       100,
			PerPage:        100,
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".timething"), nil
}

func CredentialsPath(dir string) string { return filepath.Join(dir, "config") }
func SettingsPath(dir string) string    { return filepath.Join(dir, "settings.toml") }
func CachePath(dir string) string       { return filepath.Join(dir, "projects.json") }

// Load reads the config from the default directory.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads settings.toml and the credentials file from dir, then
// applies environment overrides. Missing files are not an error.
func LoadFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(SettingsPath(dir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing settings file: %w", err)
		}
	}

	creds, err := ReadCredentials(dir)
	if err != nil {
		return nil, err
	}
	cfg.Credentials = creds

	applyEnvOverrides(&cfg)

	if cfg.Cache.Path == "" {
		cfg.Cache.Path = CachePath(dir)
	}

	return &cfg, nil
}

// ReadCredentials returns only what the credentials file in dir holds,
// without environment overrides. A missing file yields empty credentials.
func ReadCredentials(dir string) (Credentials, error) {
	values, err := godotenv.Read(CredentialsPath(dir))
	if err != nil && !os.IsNotExist(err) {
		return Credentials{}, fmt.Errorf("reading config file: %w", err)
	}
	return Credentials{
		HarvestAccessToken: values[keyHarvestAccessToken],
		HarvestAccountID:   values[keyHarvestAccountID],
		ForecastAccountID:  values[keyForecastAccountID],
	}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(keyHarvestAccessToken); v != "" {
		cfg.Credentials.HarvestAccessToken = v
	}
	if v := os.Getenv(keyHarvestAccountID); v != "" {
		cfg.Credentials.HarvestAccountID = v
	}
	if v := os.Getenv(keyForecastAccountID); v != "" {
		cfg.Credentials.ForecastAccountID = v
	}
	if v := os.Getenv("FORECAST_BASE_URL"); v != "" {
		cfg.Forecast.BaseURL = v
	}
	if v := os.Getenv("HARVEST_BASE_URL"); v != "" {
		cfg.Harvest.BaseURL = v
	}
	if v := os.Getenv("TIMETHING_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// SaveCredentials overwrites the credentials file in dir with mode 0600.
func SaveCredentials(dir string, creds Credentials) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := CredentialsPath(dir)
	values := map[string]string{
		keyHarvestAccessToken: strings.TrimSpace(creds.HarvestAccessToken),
		keyHarvestAccountID:   strings.TrimSpace(creds.HarvestAccountID),
		keyForecastAccountID:  strings.TrimSpace(creds.ForecastAccountID),
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("restricting config file: %w", err)
	}
	return nil
}
