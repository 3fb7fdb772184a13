package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is shared by the gateway and catalog binaries; each reads only the
// sections it needs.
type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=60m"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	BasicAuthEnabled bool `env:"BASIC_AUTH_ENABLED, default=true"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Catalog    CatalogConfig
	RequestLog RequestLogConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED, default=true"`
	Addr     string `env:"REDIS_ADDR,    default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,      default=0"`
}

// CatalogConfig locates the product service the gateway prices orders with.
type CatalogConfig struct {
	URL           string        `env:"PRODUCT_SERVICE_URL,    default=http://localhost:8081"`
	LookupTimeout time.Duration `env:"PRODUCT_LOOKUP_TIMEOUT, default=3s"`
}

type RequestLogConfig struct {
	Workers int `env:"REQUEST_LOG_WORKERS, default=2"`
	Buffer  int `env:"REQUEST_LOG_BUFFER,  default=1024"`
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for process start-up: it panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return cfg
}
