package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database    DatabaseConfig
	Meilisearch MeilisearchConfig
	Qdrant      QdrantConfig
	Redis       RedisConfig
	Providers   ProviderConfig
	HTTP        HTTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timeout  time.Duration
}

type MeilisearchConfig struct {
	Host    string
	APIKey  string
	Index   string
	Timeout time.Duration
}

type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

type RedisConfig struct {
	URL     string
	Enabled bool
}

// ProviderConfig points at the embedding and sentiment model servers.
type ProviderConfig struct {
	EmbeddingURL string
	SentimentURL string
	Timeout      time.Duration
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnvRequired("DB_HOST"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			Name:     getEnvRequired("DB_NAME"),
			User:     getEnvRequired("NEWS_CRAWLER_DB_USER"),
			Password: getEnvRequired("NEWS_CRAWLER_DB_PASSWORD"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "prefer"),
			Timeout:  10 * time.Second,
		},
		Meilisearch: MeilisearchConfig{
			Host:    getEnvRequired("MEILISEARCH_HOST"),
			APIKey:  getEnvOrDefault("MEILISEARCH_API_KEY", ""),
			Index:   getEnvOrDefault("MEILISEARCH_INDEX", "articles"),
			Timeout: 15 * time.Second,
		},
		Qdrant: QdrantConfig{
			Host:       getEnvRequired("QDRANT_HOST"),
			Port:       intEnv("QDRANT_PORT", 6334),
			APIKey:     getEnvOrDefault("QDRANT_API_KEY", ""),
			UseTLS:     getEnvOrDefault("QDRANT_USE_TLS", "false") == "true",
			Collection: getEnvOrDefault("QDRANT_COLLECTION", "news_chunks"),
		},
		Redis: RedisConfig{
			URL:     getEnvOrDefault("REDIS_URL", ""),
			Enabled: getEnvOrDefault("REDIS_URL", "") != "",
		},
		Providers: ProviderConfig{
			EmbeddingURL: getEnvRequired("EMBEDDING_API_URL"),
			SentimentURL: getEnvOrDefault("SENTIMENT_API_URL", ""),
			Timeout:      30 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:              HTTPAddr,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"db_host", cfg.Database.Host,
		"meilisearch_host", cfg.Meilisearch.Host,
		"qdrant_host", cfg.Qdrant.Host,
		"redis_enabled", cfg.Redis.Enabled,
	)

	return cfg, nil
}

func (c *DatabaseConfig) validate() error {
	switch c.SSLMode {
	case "allow", "prefer", "require", "verify-ca", "verify-full", "disable":
		return nil
	default:
		return fmt.Errorf("invalid DB_SSL_MODE: %s", c.SSLMode)
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnvRequired(key string) string {
	// Docker Secrets support via the _FILE suffix.
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
