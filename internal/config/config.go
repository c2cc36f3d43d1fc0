package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"finanzas/internal/gauth"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Logging
	LogLevel string

	// Backend selection
	DataBackend  string
	LenientReads bool

	// Local store
	SQLiteDBPath  string
	DataDirectory string

	// Firestore
	FirestoreProjectID string
	FirestoreDatabase  string

	// Google credentials, shared by Firestore and the Sheets export
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenJSON     string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string
	ExportInterval      time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", "auto"),
		LenientReads: getEnvBool("LENIENT_READS", false),

		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/finanzas.db"),
		DataDirectory: getEnv("MEMORY_SEED_DIR", ""),

		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreDatabase:  getEnv("FIRESTORE_DATABASE", "(default)"),

		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleOAuthClientFile:    getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:     getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON:    getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:     getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finanzas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Movimientos"),
		ExportInterval:      getEnvDuration("EXPORT_INTERVAL", 5*time.Minute),
	}

	return cfg
}

// GoogleCredentials groups the credential sources for the Google clients.
func (c *Config) GoogleCredentials() gauth.Credentials {
	return gauth.Credentials{
		ServiceAccountJSON: c.GoogleServiceAccountJSON,
		ServiceAccountFile: c.GoogleServiceAccountFile,
		OAuthClientJSON:    c.GoogleOAuthClientJSON,
		OAuthClientFile:    c.GoogleOAuthClientFile,
		OAuthTokenJSON:     c.GoogleOAuthTokenJSON,
		OAuthTokenFile:     c.GoogleOAuthTokenFile,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Validate data backend
	validBackends := []string{"auto", "sqlite", "memory", "firestore"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// auto may fall back to sqlite, so it needs the path too
	if c.DataBackend == "sqlite" || c.DataBackend == "auto" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, fmt.Sprintf("SQLite database path cannot be empty when using %s backend", c.DataBackend))
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "firestore" {
		if c.FirestoreProjectID == "" {
			errors = append(errors, "Firestore project ID is required when using firestore backend")
		}
		errors = append(errors, c.validateCredentials("firestore backend")...)
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateExport checks the settings the export worker needs on top of
// Validate.
func (c *Config) ValidateExport() error {
	var errors []string

	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the sheets export")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the sheets export")
	}
	errors = append(errors, c.validateCredentials("sheets export")...)

	if c.ExportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("export configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateCredentials(usage string) []string {
	var errors []string
	if !c.GoogleCredentials().Configured() {
		errors = append(errors, fmt.Sprintf("either a service account (GOOGLE_SERVICE_ACCOUNT_JSON / GOOGLE_SERVICE_ACCOUNT_FILE) or an OAuth client and token must be provided for %s", usage))
	}
	for _, f := range []struct{ label, path string }{
		{"service account", c.GoogleServiceAccountFile},
		{"OAuth client", c.GoogleOAuthClientFile},
		{"OAuth token", c.GoogleOAuthTokenFile},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google %s file does not exist: %s", f.label, f.path))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
