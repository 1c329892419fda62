// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"runtime"
	"strconv"
)

// Tool output limit defaults
const (
	DefaultFieldLimitValue = 50
	MaxFieldLimitValue     = 1000
)

// Config holds all configuration for malort.
type Config struct {
	Delimiter       string // MALORT_DELIMITER, default "\n"
	ParseTimestamps bool   // MALORT_PARSE_TIMESTAMPS, default true
	Workers         int    // MALORT_WORKERS, default GOMAXPROCS
	SkipMalformed   bool   // MALORT_SKIP_MALFORMED, default false
	Selector        string // MALORT_SELECTOR, default "" (whole document)
	Mapper          string // MALORT_MAPPER, default "redshift"
	Seed            uint64 // MALORT_SEED, default 0 (random sampling)

	// DataRoot confines the paths MCP tools may analyze.
	DataRoot string // MALORT_DATA_ROOT, default "." (working directory)

	ResultCacheMaxItems int // RESULT_CACHE_MAX_ITEMS, default 16

	// Tool output limits
	DefaultFieldLimit int // DEFAULT_FIELD_LIMIT
	MaxFieldLimit     int // MAX_FIELD_LIMIT

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Delimiter:       getEnvString("MALORT_DELIMITER", "\n"),
		ParseTimestamps: getEnvBool("MALORT_PARSE_TIMESTAMPS", true),
		Workers:         getEnvInt("MALORT_WORKERS", runtime.GOMAXPROCS(0)),
		SkipMalformed:   getEnvBool("MALORT_SKIP_MALFORMED", false),
		Selector:        getEnvString("MALORT_SELECTOR", ""),
		Mapper:          getEnvString("MALORT_MAPPER", "redshift"),
		Seed:            getEnvUint64("MALORT_SEED", 0),
		DataRoot:        getEnvString("MALORT_DATA_ROOT", "."),

		ResultCacheMaxItems: getEnvInt("RESULT_CACHE_MAX_ITEMS", 16),

		DefaultFieldLimit: getEnvInt("DEFAULT_FIELD_LIMIT", DefaultFieldLimitValue),
		MaxFieldLimit:     getEnvInt("MAX_FIELD_LIMIT", MaxFieldLimitValue),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvUint64(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return u
		}
	}
	return defaultVal
}
