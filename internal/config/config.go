// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Images  ImagesConfig  `mapstructure:"images"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the operational HTTP endpoint.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// HTTPConfig configures upstream HTTP client behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	MaxAttempts    int `mapstructure:"max_attempts"`
	RetryDelayMs   int `mapstructure:"retry_delay_ms"`
}

// Timeout returns the request timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the pause between retry attempts as a duration.
func (c HTTPConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// ImagesConfig selects and configures the product image sink.
type ImagesConfig struct {
	Provider  string `mapstructure:"provider"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. The returned Viper instance
// also carries the crawler.* and upstream.* keys consumed elsewhere.
func Load(path string) (Config, *viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}

	return cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.retry_delay_ms", 1000)

	v.SetDefault("db.provider", "memory")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)

	v.SetDefault("images.provider", "noop")
	v.SetDefault("images.base_dir", "images")

	v.SetDefault("pubsub.provider", "noop")

	v.SetDefault("logging.development", true)

	v.SetDefault("upstream.base_url", "https://kaspi.kz/shop")
	v.SetDefault("upstream.root_catalog_path", "c/categories/")
	v.SetDefault("upstream.search_url", "https://kaspi.kz/yml/product-view/pl/results")
	v.SetDefault("upstream.offers_url", "https://kaspi.kz/yml/offer-view/offers")
	v.SetDefault("upstream.city", "750000000")
	v.SetDefault("upstream.zone", "Magnum_ZONE1")

	v.SetDefault("crawler.user_agent", "catalog-crawler/0.1")
	v.SetDefault("crawler.page_size", 12)
	v.SetDefault("crawler.max_pages", 10)
	v.SetDefault("crawler.offers_limit", 5)
	v.SetDefault("crawler.card_delay", "3s")
	v.SetDefault("crawler.page_delay", "5s")
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535]")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}

	switch c.DB.Provider {
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for the postgres provider")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown db.provider %q", c.DB.Provider)
	}

	switch c.Images.Provider {
	case "gcs":
		if c.Images.GCSBucket == "" {
			return fmt.Errorf("images.gcs_bucket is required for the gcs provider")
		}
	case "local":
		if c.Images.BaseDir == "" {
			return fmt.Errorf("images.base_dir is required for the local provider")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown images.provider %q", c.Images.Provider)
	}

	switch c.PubSub.Provider {
	case "pubsub":
		if c.PubSub.ProjectID == "" || c.PubSub.TopicName == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic_name are required for the pubsub provider")
		}
	case "memory", "noop":
	default:
		return fmt.Errorf("unknown pubsub.provider %q", c.PubSub.Provider)
	}

	return nil
}
