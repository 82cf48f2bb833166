package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StorageDriver selects the persistence backend: "mongo" or "memory".
	StorageDriver string `env:"STORAGE_DRIVER, default=mongo"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	RateLimit RateLimitConfig
	AI        AIConfig

	PromptCacheTTL time.Duration `env:"PROMPT_CACHE_TTL, default=5m"`
	EventWorkers   int           `env:"EVENT_WORKERS,    default=4"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET, required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	// RevokeFamilyOnReuse revokes a whole rotation chain when a revoked
	// refresh token is presented again.
	RevokeFamilyOnReuse bool `env:"REFRESH_REVOKE_FAMILY_ON_REUSE, default=false"`
	CookieSecure        bool `env:"COOKIE_SECURE,                  default=false"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=quoting_system"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=50"`
}

// RedisConfig backs rate limiting and the prompt cache. The server starts
// without them when Redis is unreachable.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`
}

// RabbitMQConfig points at the broker receiving auth audit events. An empty
// URL logs events instead of publishing them.
type RabbitMQConfig struct {
	URL   string `env:"RABBITMQ_URL"`
	Queue string `env:"RABBITMQ_AUTH_QUEUE, default=auth.events"`
}

type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED,         default=true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY,        default=10"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS,   default=1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL, default=6s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL,             default=10m"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX,          default=rl"`
}

// AIConfig configures the OpenAI-compatible completion endpoint. An empty
// APIKey disables generation.
type AIConfig struct {
	BaseURL string        `env:"AI_BASE_URL, default=https://api.openai.com/v1"`
	APIKey  string        `env:"AI_API_KEY"`
	Model   string        `env:"AI_MODEL,    default=gpt-4o-mini"`
	Timeout time.Duration `env:"AI_TIMEOUT,  default=60s"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads a .env file when present and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Process(ctx, envconfig.OsLookuper())
}

// Process fills a Config from lookuper.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}
