// Package config loads engine configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/SvenSonnborn/e-invoice-processor/internal/logger"
	"github.com/SvenSonnborn/e-invoice-processor/internal/validate"
)

// Config holds everything the engine and its validators need. All values
// come from environment variables prefixed EINVOICE_ (a .env file is read
// when present); every field has a usable default except the official
// validator commands, which are deliberately optional.
type Config struct {
	// SchemaPath points to the CII XSD used by the builtin validator.
	SchemaPath string
	// SchemaTool is the schema-validation executable (xmllint by default).
	SchemaTool string
	// SchemaTimeout bounds a single schema-validation run.
	SchemaTimeout time.Duration

	// XRechnungValidatorCmd is the official XRechnung validator command
	// template; "{input}" is replaced with the XML temp-file path. Empty
	// means not configured.
	XRechnungValidatorCmd string
	// ZugferdValidatorCmd is the official ZUGFeRD validator command
	// template, same placeholder convention. Empty means not configured.
	ZugferdValidatorCmd string
	// OfficialTimeout bounds a single official validator run.
	OfficialTimeout time.Duration

	// ListenAddr is the HTTP server bind address.
	ListenAddr string

	// LogLevel and LogFormat configure logging (console or json).
	LogLevel  string
	LogFormat string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		SchemaPath:            getEnv("EINVOICE_SCHEMA_PATH", validate.DefaultSchemaPath),
		SchemaTool:            getEnv("EINVOICE_XMLLINT", validate.DefaultSchemaTool),
		SchemaTimeout:         getDuration("EINVOICE_SCHEMA_TIMEOUT", validate.DefaultSchemaTimeout),
		XRechnungValidatorCmd: getEnv("EINVOICE_XRECHNUNG_VALIDATOR", ""),
		ZugferdValidatorCmd:   getEnv("EINVOICE_ZUGFERD_VALIDATOR", ""),
		OfficialTimeout:       getDuration("EINVOICE_OFFICIAL_TIMEOUT", validate.DefaultOfficialTimeout),
		ListenAddr:            getEnv("EINVOICE_LISTEN_ADDR", ":8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
	}
}

// LoggerConfig maps the logging fields onto the logger package's config.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.LogLevel, Format: c.LogFormat}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
