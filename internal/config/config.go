package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// globalConfig stores the configuration loaded with command-line overrides
// so handlers see the same values the server was started with
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Decode   DecodeConfig   `json:"decode"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
}

// LoadOptions holds command-line override options
type LoadOptions struct {
	Host               string
	Port               string
	LogLevel           string
	MaxPixels          int
	ConcurrentChannels bool
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string        `json:"host" env:"SERVER_HOST" default:"0.0.0.0"`
	Port         string        `json:"port" env:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `json:"readTimeout" env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `json:"writeTimeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `json:"idleTimeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

// DecodeConfig bounds the work a single decode request may ask for
type DecodeConfig struct {
	MaxPixels          int  `json:"maxPixels" env:"DECODE_MAX_PIXELS" default:"67108864"`
	MaxMessageBytes    int  `json:"maxMessageBytes" env:"DECODE_MAX_MESSAGE_BYTES" default:"268435456"`
	ConcurrentChannels bool `json:"concurrentChannels" env:"DECODE_CONCURRENT_CHANNELS" default:"false"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string `json:"allowedOrigins" env:"ALLOWED_ORIGINS" default:""`
	EnableTLS      bool     `json:"enableTLS" env:"ENABLE_TLS" default:"false"`
	TLSCertFile    string   `json:"tlsCertFile" env:"TLS_CERT_FILE" default:""`
	TLSKeyFile     string   `json:"tlsKeyFile" env:"TLS_KEY_FILE" default:""`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" default:"text"`
}

const (
	defaultMaxPixels       = 8192 * 8192
	defaultMaxMessageBytes = 256 << 20
)

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration with command-line overrides
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{}

	// Server config
	config.Server.Host = getOverrideOrEnv(opts.Host, "SERVER_HOST", "0.0.0.0")
	config.Server.Port = getOverrideOrEnv(opts.Port, "SERVER_PORT", "8080")
	config.Server.ReadTimeout = getDurationWithDefault("SERVER_READ_TIMEOUT", 30*time.Second)
	config.Server.WriteTimeout = getDurationWithDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)
	config.Server.IdleTimeout = getDurationWithDefault("SERVER_IDLE_TIMEOUT", 120*time.Second)

	// Decode config
	config.Decode.MaxPixels = getIntWithDefault("DECODE_MAX_PIXELS", defaultMaxPixels)
	if opts.MaxPixels != 0 {
		config.Decode.MaxPixels = opts.MaxPixels
	}
	config.Decode.MaxMessageBytes = getIntWithDefault("DECODE_MAX_MESSAGE_BYTES", defaultMaxMessageBytes)
	config.Decode.ConcurrentChannels = getBoolWithDefault("DECODE_CONCURRENT_CHANNELS", false) || opts.ConcurrentChannels

	// Security config
	config.Security.AllowedOrigins = getStringSliceWithDefault("ALLOWED_ORIGINS", []string{})
	config.Security.EnableTLS = getBoolWithDefault("ENABLE_TLS", false)
	config.Security.TLSCertFile = getEnvWithDefault("TLS_CERT_FILE", "")
	config.Security.TLSKeyFile = getEnvWithDefault("TLS_KEY_FILE", "")

	// Logging config
	config.Logging.Level = getOverrideOrEnv(opts.LogLevel, "LOG_LEVEL", "info")
	config.Logging.Format = getEnvWithDefault("LOG_FORMAT", "text")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = config
	configMutex.Unlock()

	return config, nil
}

// GetGlobalConfig returns the configuration stored by the last successful
// LoadWithOverrides call, or nil
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.Decode.MaxPixels <= 0 {
		return fmt.Errorf("max pixels must be positive")
	}

	if c.Decode.MaxMessageBytes <= 0 {
		return fmt.Errorf("max message bytes must be positive")
	}

	if c.Security.EnableTLS {
		if c.Security.TLSCertFile == "" || c.Security.TLSKeyFile == "" {
			return fmt.Errorf("TLS certificate and key files must be specified when TLS is enabled")
		}

		if _, err := os.Stat(c.Security.TLSCertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file does not exist: %s", c.Security.TLSCertFile)
		}

		if _, err := os.Stat(c.Security.TLSKeyFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file does not exist: %s", c.Security.TLSKeyFile)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceWithDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitString(value, ",")
	}
	return defaultValue
}

// getOverrideOrEnv returns command-line override value, env value, or default
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}

func splitString(s, sep string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
