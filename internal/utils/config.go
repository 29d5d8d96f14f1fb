package utils

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

type Config struct {
	Host         string
	Port         string
	OpenRouter   OpenRouterConfig
	Conversation ConversationConfig
	Redis        RedisConfig
	Postgres     PostgresConfig
	Mongo        MongoConfig
	Logging      LoggingConfig
}

type OpenRouterConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Referer  string
	Title    string
	Timeout  time.Duration
}

type ConversationConfig struct {
	Backend  string
	Capacity int
	TTL      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN               string
	Host              string
	Port              int
	User              string
	Password          string
	Database          string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type LoggingConfig struct {
	Level        string
	Encoding     string
	Development  bool
	EnableCaller bool
	ServiceName  string
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func LoadConfig() (*Config, error) {
	pgPort, _ := strconv.Atoi(envOrDefault("POSTGRES_PORT", "5432"))

	cfg := &Config{
		Host: envOrDefault("HOST", "0.0.0.0"),
		Port: envOrDefault("PORT", "5000"),
		OpenRouter: OpenRouterConfig{
			Endpoint: envOrDefault("OPENROUTER_ENDPOINT", "https://openrouter.ai/api/v1/chat/completions"),
			APIKey:   strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
			Model:    envOrDefault("OPENROUTER_MODEL", "openai/gpt-3.5-turbo"),
			Referer:  envOrDefault("OPENROUTER_REFERER", "https://replit.com"),
			Title:    envOrDefault("OPENROUTER_TITLE", "Goal Planner Assistant"),
			Timeout:  parseDuration(envOrDefault("LLM_TIMEOUT", "30s"), 30*time.Second),
		},
		Conversation: ConversationConfig{
			Backend:  strings.ToLower(envOrDefault("CONVERSATION_BACKEND", BackendMemory)),
			Capacity: parseInt(envOrDefault("CONVERSATION_CAPACITY", "1024"), 1024),
			TTL:      parseDuration(envOrDefault("CONVERSATION_TTL", "24h"), 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseInt(envOrDefault("REDIS_DB", "0"), 0),
		},
		Postgres: PostgresConfig{
			DSN:               os.Getenv("POSTGRES_DSN"),
			Host:              envOrDefault("POSTGRES_HOST", "localhost"),
			Port:              pgPort,
			User:              envOrDefault("POSTGRES_USER", "postgres"),
			Password:          envOrDefault("POSTGRES_PASSWORD", "postgres"),
			Database:          envOrDefault("POSTGRES_DB", "goalplanner"),
			MaxConns:          parseInt32(envOrDefault("POSTGRES_MAX_CONNS", "8"), 8),
			MinConns:          parseInt32(envOrDefault("POSTGRES_MIN_CONNS", "1"), 1),
			MaxConnLifetime:   parseDuration(envOrDefault("POSTGRES_MAX_CONN_LIFETIME", "1h"), time.Hour),
			MaxConnIdleTime:   parseDuration(envOrDefault("POSTGRES_MAX_CONN_IDLE", "30m"), 30*time.Minute),
			HealthCheckPeriod: parseDuration(envOrDefault("POSTGRES_HEALTH_CHECK_PERIOD", "1m"), time.Minute),
			ConnectTimeout:    parseDuration(envOrDefault("POSTGRES_CONNECT_TIMEOUT", "5s"), 5*time.Second),
		},
		Mongo: MongoConfig{
			URI:            envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database:       envOrDefault("MONGO_DATABASE", "goalplanner"),
			ConnectTimeout: parseDuration(envOrDefault("MONGO_CONNECT_TIMEOUT", "5s"), 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			Encoding:     strings.ToLower(envOrDefault("LOG_ENCODING", "console")),
			Development:  parseBool(envOrDefault("LOG_DEVELOPMENT", "false"), false),
			EnableCaller: parseBool(envOrDefault("LOG_CALLER", "false"), false),
			ServiceName:  envOrDefault("SERVICE_NAME", "goal-planner"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Conversation.Backend {
	case BackendMemory, BackendRedis, BackendMongo, BackendPostgres:
	default:
		return fmt.Errorf("config: unknown CONVERSATION_BACKEND %q", c.Conversation.Backend)
	}

	if c.Conversation.Capacity <= 0 {
		return fmt.Errorf("config: CONVERSATION_CAPACITY must be > 0")
	}

	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: PORT cannot be empty")
	}

	return nil
}

func (c PostgresConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(value string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return i
}

func parseInt32(value string, fallback int32) int32 {
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return int32(i)
}

func parseBool(value string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}
