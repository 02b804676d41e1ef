// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/dictionary"
)

// Config represents the application configuration
type Config struct {
	// Canonical schema: empty path means the built-in retail schema
	SchemaPath string

	// Learning dictionary persistence
	Dictionary DictionaryConfig

	// Optional change-log persistence
	Audit AuditConfig

	// Mapping thresholds
	FuzzyThreshold     float64
	SynonymConfidence  float64
	PromotedConfidence float64

	// Cleaning defaults
	DefaultCountry  string
	DefaultCurrency string

	// Phone conventions
	PhoneCountryCode string
	PhoneLocalLength int

	// Logging
	LogLevel  string
	LogFormat string
}

// DictionaryConfig selects where learned state lives
type DictionaryConfig struct {
	Backend dictionary.Backend
	DSN     string // file path for file backend, connection string otherwise
}

// AuditConfig controls persistence of the cleaning change log
type AuditConfig struct {
	Enabled bool
	Driver  string // "sqlite" or "postgres"
	DSN     string
}

// LoadConfig loads configuration from the environment. A .env file in
// the working directory is read first when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real environments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		SchemaPath: getEnv("SCHEMA_PATH", ""),
		Dictionary: DictionaryConfig{
			Backend: dictionary.Backend(getEnv("DICTIONARY_BACKEND", string(dictionary.BackendFile))),
			DSN:     getEnv("DICTIONARY_DSN", "learned_rules.json"),
		},
		Audit: AuditConfig{
			Enabled: getEnvAsBool("AUDIT_ENABLED", false),
			Driver:  getEnv("AUDIT_DRIVER", "sqlite"),
			DSN:     getEnv("AUDIT_DSN", "cleaning_audit.db"),
		},
		FuzzyThreshold:     getEnvAsFloat("MAP_FUZZY_THRESHOLD", 0.6),
		SynonymConfidence:  getEnvAsFloat("MAP_SYNONYM_CONFIDENCE", 0.95),
		PromotedConfidence: getEnvAsFloat("MAP_PROMOTED_CONFIDENCE", 0.98),
		DefaultCountry:     getEnv("DEFAULT_COUNTRY", "India"),
		DefaultCurrency:    getEnv("DEFAULT_CURRENCY", "INR"),
		PhoneCountryCode:   getEnv("PHONE_COUNTRY_CODE", "+91"),
		PhoneLocalLength:   getEnvAsInt("PHONE_LOCAL_LENGTH", 10),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Dictionary.Backend {
	case dictionary.BackendFile, dictionary.BackendSQLite, dictionary.BackendPostgres:
	default:
		return errors.New("dictionary backend must be file, sqlite, or postgres")
	}

	if c.Dictionary.DSN == "" {
		return errors.New("dictionary DSN is required")
	}

	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return errors.New("fuzzy threshold must be in (0, 1]")
	}

	if c.Audit.Enabled {
		if c.Audit.Driver != "sqlite" && c.Audit.Driver != "postgres" {
			return errors.New("audit driver must be sqlite or postgres")
		}
		if c.Audit.DSN == "" {
			return errors.New("audit DSN is required when auditing is enabled")
		}
	}

	if !strings.HasPrefix(c.PhoneCountryCode, "+") {
		return errors.New("phone country code must start with +")
	}

	if c.PhoneLocalLength <= 0 {
		return errors.New("phone local length must be positive")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
