package config

import (
	"os"
	"strconv"
	"strings"

	"designspace/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig     `validate:"required"`
	Analysis AnalysisConfig `validate:"required"`
	Database DatabaseConfig
	Server   ServerConfig `validate:"required"`
	Log      LogConfig
}

// DataConfig holds input and output locations
type DataConfig struct {
	InputFile  string
	Sheet      string
	SchemaFile string
	OutputDir  string `validate:"required"`
}

// AnalysisConfig holds pipeline settings
type AnalysisConfig struct {
	Components     int       `validate:"gte=0"`
	Alphas         []float64 `validate:"required,min=1,dive,gte=0,lte=1"`
	Pairs          []string  `validate:"dive,contains=>"`
	DualTaskGate   string    `validate:"oneof=exact positive"`
	LegacyChain    bool
	Strategy       string `validate:"oneof=dense sparse"`
	BinaryCollapse bool
	Workers        int `validate:"gte=1"`
	Repair         bool
	FactorInverse  bool
}

// DatabaseConfig holds database connection settings. An empty URL disables
// persistence.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int `validate:"gte=1"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	alphas, err := getEnvFloatsOrDefault("ANALYSIS_ALPHAS", []float64{0.25, 0.5, 0.75})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}

	config := &Config{
		Data: DataConfig{
			InputFile:  getEnvOrDefault("DATA_FILE", ""),
			Sheet:      getEnvOrDefault("DATA_SHEET", ""),
			SchemaFile: getEnvOrDefault("SCHEMA_FILE", ""),
			OutputDir:  getEnvOrDefault("OUTPUT_DIR", "./out"),
		},
		Analysis: AnalysisConfig{
			Components:     getEnvIntOrDefault("ANALYSIS_COMPONENTS", 0),
			Alphas:         alphas,
			Pairs:          getEnvListOrDefault("ANALYSIS_PAIRS", nil),
			DualTaskGate:   getEnvOrDefault("DUAL_TASK_GATE", "exact"),
			LegacyChain:    getEnvBoolOrDefault("LEGACY_CLASSIFIER", false),
			Strategy:       getEnvOrDefault("ENCODING_STRATEGY", "dense"),
			BinaryCollapse: getEnvBoolOrDefault("BINARY_COLLAPSE", false),
			Workers:        getEnvIntOrDefault("ENCODE_WORKERS", 4),
			Repair:         getEnvBoolOrDefault("REPAIR", true),
			FactorInverse:  getEnvBoolOrDefault("FACTOR_INVERSE", false),
		},
		Database: DatabaseConfig{
			URL:          getEnvOrDefault("DATABASE_URL", ""),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 5),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
			JSON:  getEnvBoolOrDefault("LOG_JSON", false),
		},
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

var validate = validator.New()

// Validate checks struct constraints
func Validate(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "configuration validation failed"))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvFloatsOrDefault parses a comma-separated list. Unlike the scalar
// helpers, a malformed list is an error rather than silently defaulted.
func getEnvFloatsOrDefault(key string, defaultValue []float64) ([]float64, error) {
	parts := getEnvListOrDefault(key, nil)
	if parts == nil {
		return defaultValue, nil
	}
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(key + ": " + err.Error())
		}
		out = append(out, f)
	}
	return out, nil
}
