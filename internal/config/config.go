package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/common"
	"github.com/Veraticus/budgetr/internal/sheets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BUDGETR_SERVER_URL.
const EnvPrefix = "BUDGETR"

// Configuration keys.
const (
	KeyServerURL     = "server.url"
	KeyServerTimeout = "server.timeout"
	KeyExportDir     = "export.dir"
	KeyDatabasePath  = "database.path"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
)

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	defaults := api.DefaultConfig()

	v.SetDefault(KeyServerURL, defaults.BaseURL)
	v.SetDefault(KeyServerTimeout, defaults.Timeout)
	v.SetDefault(KeyExportDir, defaults.ExportDir)
	v.SetDefault(KeyDatabasePath, "$HOME/.local/share/budgetr/imports.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(ExpandPath(path)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return nil
}

// ClientConfig builds the API client settings.
func ClientConfig(v *viper.Viper) (api.Config, error) {
	cfg := api.Config{
		BaseURL:   v.GetString(KeyServerURL),
		Timeout:   v.GetDuration(KeyServerTimeout),
		ExportDir: ExpandPath(v.GetString(KeyExportDir)),
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return api.Config{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// DatabasePath returns the expanded import ledger path.
func DatabasePath(v *viper.Viper) (string, error) {
	path := ExpandPath(v.GetString(KeyDatabasePath))
	if path == "" {
		return "", fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	return path, nil
}

// SheetsConfig loads the Google Sheets settings. Keys under sheets.* win
// over the GOOGLE_SHEETS_* environment variables.
func SheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	lookup := func(key, env string) string {
		if value := v.GetString(key); value != "" {
			return value
		}
		return os.Getenv(env)
	}

	cfg.ServiceAccountPath = ExpandPath(lookup("sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	cfg.ClientID = lookup("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	cfg.ClientSecret = lookup("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	cfg.RefreshToken = lookup("sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN")
	cfg.SpreadsheetID = lookup("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID")

	if name := lookup("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		cfg.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		cfg.TimeZone = tz
	}
	if v.IsSet("sheets.formatting") {
		cfg.EnableFormatting = v.GetBool("sheets.formatting")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMissingConfig, err)
	}

	return &cfg, nil
}

// EnvKeyReplacer maps nested keys to environment names, so server.url is
// read from BUDGETR_SERVER_URL.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
