// Package config provides SDK configuration loaded from environment variables
// (optionally overlaid by a YAML file) with defaults and validation. The
// resulting Config value is passed explicitly to the API client, the geofence
// cache and the local receiver; nothing reads ambient state after Load.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultGeofenceDBPath is the on-device file name of the geofence cache.
const DefaultGeofenceDBPath = "me.shoutto.sdk.geofence.db"

// APIConfig describes how to reach the hosted Shout service.
type APIConfig struct {
	ServerURL string        `yaml:"server_url"` // STM_SERVER_URL
	AuthToken string        `yaml:"auth_token"` // STM_AUTH_TOKEN (bearer)
	UserID    string        `yaml:"user_id"`    // STM_USER_ID; falls back to the token subject
	Timeout   time.Duration `yaml:"timeout"`    // STM_HTTP_TIMEOUT
	RateRPS   float64       `yaml:"rate_rps"`   // STM_API_RATE_RPS, 0 disables limiting
	RateBurst int           `yaml:"rate_burst"` // STM_API_RATE_BURST
	UserAgent string        `yaml:"user_agent"` // STM_USER_AGENT
}

// CacheConfig describes the local geofence cache.
type CacheConfig struct {
	Path          string        `yaml:"path"`           // GEOFENCE_DB_PATH
	PurgeInterval time.Duration `yaml:"purge_interval"` // GEOFENCE_PURGE_INTERVAL, 0 disables the sweeper
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool          `yaml:"enable_hsts"`
	HSTSMaxAge time.Duration `yaml:"hsts_max_age"`
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    `yaml:"enabled"`      // OTEL_ENABLED
	Endpoint    string  `yaml:"endpoint"`     // OTEL_EXPORTER_OTLP_ENDPOINT
	Insecure    bool    `yaml:"insecure"`     // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  `yaml:"service_name"` // OTEL_SERVICE_NAME
	SampleRatio float64 `yaml:"sample_ratio"` // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the SDK and the agent process.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Cache CacheConfig `yaml:"cache"`

	// Receiver
	Port              string        `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes    int           `yaml:"max_header_bytes"`
	GinMode           string        `yaml:"gin_mode"` // debug|release|test
	APIBasePath       string        `yaml:"api_base_path"`
	SwaggerEnabled    bool          `yaml:"swagger_enabled"`

	// Logging
	LogLevel  string `yaml:"log_level"` // debug|info|warn|error|fatal|panic
	LogPretty bool   `yaml:"log_pretty"`

	// Receiver rate limiting
	RateRPS   float64 `yaml:"rate_rps"`
	RateBurst int     `yaml:"rate_burst"`

	CORS     CORSConfig     `yaml:"cors"`
	Security SecurityConfig `yaml:"security"`
	OTEL     OTELConfig     `yaml:"otel"`
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := fromEnv()
	cfg.normalize()
	return cfg, cfg.Validate()
}

// LoadFile reads the environment like Load and then overlays the YAML document
// at path. Keys absent from the file keep their environment/default value.
func LoadFile(path string) (Config, error) {
	cfg := fromEnv()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func fromEnv() Config {
	return Config{
		API: APIConfig{
			ServerURL: getenv("STM_SERVER_URL", "https://app.shoutto.me/api/v1"),
			AuthToken: getenv("STM_AUTH_TOKEN", ""),
			UserID:    getenv("STM_USER_ID", ""),
			Timeout:   getdur("STM_HTTP_TIMEOUT", 30*time.Second),
			RateRPS:   getfloat("STM_API_RATE_RPS", 10),
			RateBurst: getint("STM_API_RATE_BURST", 5),
			UserAgent: getenv("STM_USER_AGENT", "stm-sdk-go"),
		},
		Cache: CacheConfig{
			Path:          getenv("GEOFENCE_DB_PATH", DefaultGeofenceDBPath),
			PurgeInterval: getdur("GEOFENCE_PURGE_INTERVAL", 15*time.Minute),
		},

		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           getenv("GIN_MODE", "release"),
		APIBasePath:       getenv("API_BASE_PATH", "/api/v1"),
		SwaggerEnabled:    getbool("SWAGGER_ENABLED", false),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogPretty: getbool("LOG_PRETTY", false),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "stm-agent"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
}

func (cfg *Config) normalize() {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	cfg.GinMode = strings.ToLower(strings.TrimSpace(cfg.GinMode))
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.APIBasePath = normalizeBasePath(cfg.APIBasePath)
	cfg.API.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.API.ServerURL), "/")
	cfg.API.AuthToken = strings.TrimSpace(cfg.API.AuthToken)
}

// Validate reports the first invalid setting.
func (cfg Config) Validate() error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	u, err := url.Parse(cfg.API.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("STM_SERVER_URL must be an absolute http(s) URL")
	}
	if cfg.API.Timeout <= 0 {
		return errors.New("STM_HTTP_TIMEOUT must be a positive duration")
	}
	if cfg.API.RateRPS < 0 {
		return errors.New("STM_API_RATE_RPS must be >= 0")
	}
	if cfg.API.RateBurst < 1 {
		return errors.New("STM_API_RATE_BURST must be >= 1")
	}
	if strings.TrimSpace(cfg.Cache.Path) == "" {
		return errors.New("GEOFENCE_DB_PATH must not be empty")
	}
	if cfg.Cache.PurgeInterval < 0 {
		return errors.New("GEOFENCE_PURGE_INTERVAL must be >= 0")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
