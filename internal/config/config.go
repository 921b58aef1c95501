// Package config loads pgstay settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("GOOGLE_SHEETS_API_KEY is not set: create an API key in the Google Cloud console " +
		"(APIs & Services > Credentials), enable the Sheets API and export it")
	ErrMissingSpreadsheetID = errors.New("GOOGLE_SHEETS_SPREADSHEET_ID is not set: copy the ID from the spreadsheet URL " +
		"(https://docs.google.com/spreadsheets/d/<ID>/edit) and share the sheet with link access")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development unless auth is disabled")
)

// DefaultProxyURL is the public relay used when USE_CORS_PROXY is on and no
// CORS_PROXY_URL is given.
const DefaultProxyURL = "https://cors-anywhere.herokuapp.com/"

type Config struct {
	// Google Sheets
	APIKey        string
	SpreadsheetID string
	SheetsBaseURL string
	UseProxy      bool
	ProxyURL      string
	SheetsTimeout time.Duration
	MaxRetries    int

	// Last-known-good snapshots; empty disables them.
	SnapshotDBPath string

	// API
	Port      int
	JWTSecret string
	TokenTTL  time.Duration

	// Observability
	AppEnv    string
	SentryDSN string
}

// Load reads the configuration. Sheets settings also accept the VITE_-prefixed
// names used by the dashboard's build.
func Load() *Config {
	return &Config{
		APIKey:        getEnv("GOOGLE_SHEETS_API_KEY", "VITE_GOOGLE_SHEETS_API_KEY", ""),
		SpreadsheetID: getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", "VITE_GOOGLE_SHEETS_SPREADSHEET_ID", ""),
		SheetsBaseURL: getEnv("SHEETS_BASE_URL", "", "https://sheets.googleapis.com/v4/spreadsheets"),
		UseProxy:      parseBool(getEnv("USE_CORS_PROXY", "VITE_USE_CORS_PROXY", "false")),
		ProxyURL:      getEnv("CORS_PROXY_URL", "VITE_CORS_PROXY_URL", DefaultProxyURL),
		SheetsTimeout: parseDuration(getEnv("SHEETS_TIMEOUT", "", "15s"), 15*time.Second),
		MaxRetries:    parseInt(getEnv("SHEETS_MAX_RETRIES", "", "2"), 2),

		SnapshotDBPath: getEnv("SNAPSHOT_DB_PATH", "", "./data/snapshots.db"),

		Port:      parseInt(getEnv("PORT", "", "8080"), 8080),
		JWTSecret: getEnv("JWT_SECRET", "", ""),
		TokenTTL:  parseDuration(getEnv("TOKEN_TTL", "", "24h"), 24*time.Hour),

		AppEnv:    getEnv("APP_ENV", "", "development"),
		SentryDSN: getEnv("SENTRY_DSN", "", ""),
	}
}

// Validate checks the settings every Sheets command needs.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.SpreadsheetID == "" {
		errs = append(errs, ErrMissingSpreadsheetID)
	}
	if c.UseProxy && !strings.HasPrefix(c.ProxyURL, "http") {
		errs = append(errs, fmt.Errorf("CORS_PROXY_URL %q is not an http(s) URL", c.ProxyURL))
	}
	return errors.Join(errs...)
}

// ValidateServer additionally checks the API settings.
func (c *Config) ValidateServer(insecure bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" && !insecure && !c.IsDevelopment() {
		return ErrMissingJWTSecret
	}
	return nil
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development") || strings.EqualFold(c.AppEnv, "dev")
}

// ProxyPrefix returns the proxy URL when proxying is on, else "".
func (c *Config) ProxyPrefix() string {
	if !c.UseProxy {
		return ""
	}
	return c.ProxyURL
}

func getEnv(key, legacyKey, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if legacyKey != "" {
		if val := os.Getenv(legacyKey); val != "" {
			return val
		}
	}
	return fallback
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
