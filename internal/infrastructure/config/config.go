package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Ingest   IngestConfig
	Learning LearningConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// IngestConfig holds the ingestion pipeline thresholds.
type IngestConfig struct {
	SimilarityThreshold        float64 // fuzzy mapping acceptance floor
	PlatformDetectionThreshold float64 // minimum score to name a platform
	LineItemRatioThreshold     float64 // rows per customer-date above which data is line-item
	DateParseFloor             float64 // below: datetime field is fatal
	DateParseCeiling           float64 // below: datetime field warns
	MaxGapMinutes              int     // >0 enables sequential order splitting
	MaxUploadRows              int     // hard cap on rows per upload
	CatalogPath                string  // optional JSON platform catalog; built-ins when empty
}

// LearningConfig holds learning-store settings.
type LearningConfig struct {
	Enabled bool
	DBPath  string // sqlite database file
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LENS_ prefix (e.g., LENS_LEARNING_DBPATH)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Ingest: IngestConfig{
			SimilarityThreshold:        v.GetFloat64("ingest.similarity_threshold"),
			PlatformDetectionThreshold: v.GetFloat64("ingest.platform_detection_threshold"),
			LineItemRatioThreshold:     v.GetFloat64("ingest.line_item_customer_date_ratio_threshold"),
			DateParseFloor:             v.GetFloat64("ingest.date_parse_floor"),
			DateParseCeiling:           v.GetFloat64("ingest.date_parse_ceiling"),
			MaxGapMinutes:              v.GetInt("ingest.max_gap_minutes"),
			MaxUploadRows:              v.GetInt("ingest.max_upload_rows"),
			CatalogPath:                v.GetString("ingest.catalog_path"),
		},
		Learning: LearningConfig{
			Enabled: v.GetBool("learning.enabled"),
			DBPath:  v.GetString("learning.dbpath"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "commercelens-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 50 << 20 // 50MB, uploads carry whole files
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Ingest.SimilarityThreshold == 0 {
		cfg.Ingest.SimilarityThreshold = 0.75
	}
	if cfg.Ingest.PlatformDetectionThreshold == 0 {
		cfg.Ingest.PlatformDetectionThreshold = 0.3
	}
	if cfg.Ingest.LineItemRatioThreshold == 0 {
		cfg.Ingest.LineItemRatioThreshold = 1.2
	}
	if cfg.Ingest.DateParseFloor == 0 {
		cfg.Ingest.DateParseFloor = 0.5
	}
	if cfg.Ingest.DateParseCeiling == 0 {
		cfg.Ingest.DateParseCeiling = 0.8
	}
	if cfg.Ingest.MaxUploadRows == 0 {
		cfg.Ingest.MaxUploadRows = 500_000
	}
	if cfg.Learning.DBPath == "" {
		cfg.Learning.DBPath = "commercelens.db"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	for name, v := range map[string]float64{
		"ingest.similarity_threshold":         c.Ingest.SimilarityThreshold,
		"ingest.platform_detection_threshold": c.Ingest.PlatformDetectionThreshold,
		"ingest.date_parse_floor":             c.Ingest.DateParseFloor,
		"ingest.date_parse_ceiling":           c.Ingest.DateParseCeiling,
	} {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0, got %f", name, v)
		}
	}
	if c.Ingest.DateParseFloor > c.Ingest.DateParseCeiling {
		return fmt.Errorf("ingest.date_parse_floor (%f) cannot exceed ingest.date_parse_ceiling (%f)",
			c.Ingest.DateParseFloor, c.Ingest.DateParseCeiling)
	}
	if c.Ingest.LineItemRatioThreshold < 1.0 {
		return fmt.Errorf("ingest.line_item_customer_date_ratio_threshold must be at least 1.0, got %f",
			c.Ingest.LineItemRatioThreshold)
	}
	if c.Ingest.MaxGapMinutes < 0 {
		return fmt.Errorf("ingest.max_gap_minutes cannot be negative")
	}
	if c.Ingest.MaxUploadRows <= 0 {
		return fmt.Errorf("ingest.max_upload_rows must be positive")
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// MaxGap returns the sequential-aggregation gap as a duration; zero
// disables the sequential strategy.
func (c *IngestConfig) MaxGap() time.Duration {
	return time.Duration(c.MaxGapMinutes) * time.Minute
}
