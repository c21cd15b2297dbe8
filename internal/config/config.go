package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	CORS       CORSConfig       `yaml:"cors"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Media      MediaConfig      `yaml:"media"`
	Moderation ModerationConfig `yaml:"moderation"`
	NATS       NATSConfig       `yaml:"nats"`
	Query      QueryConfig      `yaml:"query"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port         int     `yaml:"port"`
	APIKey       string  `yaml:"api_key"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type MediaConfig struct {
	Endpoint      string   `yaml:"endpoint"`
	AccessKey     string   `yaml:"access_key"`
	SecretKey     string   `yaml:"secret_key"`
	Bucket        string   `yaml:"bucket"`
	UseSSL        bool     `yaml:"use_ssl"`
	PublicBaseURL string   `yaml:"public_base_url"`
	Folder        string   `yaml:"folder"`
	Tags          []string `yaml:"tags"`
}

type ModerationConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type QueryConfig struct {
	WindowDays int `yaml:"window_days"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Window returns the read-path time window as a duration.
func (q QueryConfig) Window() time.Duration {
	return time.Duration(q.WindowDays) * 24 * time.Hour
}

// Load reads config from YAML file and applies environment variable overrides.
// A missing config file is not an error; defaults and environment still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 1
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "treemap-db"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "user-tree-photos"
	}
	if cfg.Media.Bucket == "" {
		cfg.Media.Bucket = "treemap-photos"
	}
	if cfg.Media.Folder == "" {
		cfg.Media.Folder = "yvr-user-photos"
	}
	if len(cfg.Media.Tags) == 0 {
		cfg.Media.Tags = []string{"user-photo"}
	}
	if cfg.Moderation.Timeout == 0 {
		cfg.Moderation.Timeout = 15 * time.Second
	}
	if cfg.Query.WindowDays == 0 {
		cfg.Query.WindowDays = 14
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TREEMAP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TREEMAP_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("TREEMAP_RATE_LIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.RateLimitRPS = rps
		}
	}
	if v := os.Getenv("CROSS_ORIGIN_DOMAIN"); v != "" {
		cfg.CORS.AllowedOrigins = appendOrigin(cfg.CORS.AllowedOrigins, v)
	}
	if v := os.Getenv("DEV_REQUEST_DOMAIN"); v != "" {
		cfg.CORS.AllowedOrigins = appendOrigin(cfg.CORS.AllowedOrigins, v)
	}
	if v := os.Getenv("TREEMAP_CORS_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TREEMAP_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("TREEMAP_MONGO_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("TREEMAP_MONGO_COLLECTION"); v != "" {
		cfg.Mongo.Collection = v
	}
	if v := os.Getenv("TREEMAP_MEDIA_ENDPOINT"); v != "" {
		cfg.Media.Endpoint = v
	}
	if v := os.Getenv("TREEMAP_MEDIA_ACCESS_KEY"); v != "" {
		cfg.Media.AccessKey = v
	}
	if v := os.Getenv("TREEMAP_MEDIA_SECRET_KEY"); v != "" {
		cfg.Media.SecretKey = v
	}
	if v := os.Getenv("TREEMAP_MEDIA_BUCKET"); v != "" {
		cfg.Media.Bucket = v
	}
	if v := os.Getenv("TREEMAP_MEDIA_PUBLIC_URL"); v != "" {
		cfg.Media.PublicBaseURL = v
	}
	if v := os.Getenv("TREEMAP_MODERATION_ENDPOINT"); v != "" {
		cfg.Moderation.Endpoint = v
	}
	if v := os.Getenv("TREEMAP_MODERATION_KEY"); v != "" {
		cfg.Moderation.APIKey = v
	}
	if v := os.Getenv("TREEMAP_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("TREEMAP_QUERY_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Query.WindowDays = days
		}
	}
	if v := os.Getenv("TREEMAP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TREEMAP_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func appendOrigin(origins []string, origin string) []string {
	for _, o := range origins {
		if o == origin {
			return origins
		}
	}
	return append(origins, origin)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
