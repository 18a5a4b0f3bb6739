// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Vocabulary, Settings, Postgres, Redis, Kafka, Translator,
// etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Settings   SettingsConfig   `yaml:"settings"`
	Categorize CategorizeConfig `yaml:"categorize"`
	Search     SearchConfig     `yaml:"search"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Translator TranslatorConfig `yaml:"translator"`
	RPC        RPCConfig        `yaml:"rpc"`
	RateLimit  RateLimitConfig  `yaml:"rateLimit"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowOrigins    []string      `yaml:"allowOrigins"`
}

// Vocabulary backends.
const (
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

// VocabularyConfig selects where the vocabulary snapshot is loaded from and
// written back to.
type VocabularyConfig struct {
	Backend  string `yaml:"backend"`
	FilePath string `yaml:"filePath"`
	BoltPath string `yaml:"boltPath"`
}

// SettingsConfig points at the persisted mapping rules and bucket order.
type SettingsConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// CategorizeConfig holds categorization defaults.
type CategorizeConfig struct {
	DefaultCategory string `yaml:"defaultCategory"`
}

// SearchConfig controls lookup limits.
type SearchConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
	MaxResults   int `yaml:"maxResults"`
	BrowseLimit  int `yaml:"browseLimit"`
	LocalCache   int `yaml:"localCacheSize"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`

	// CacheNamespace prefixes this instance's cache keys. Store generations
	// are process-local, so instances never share entries; a stable name
	// lets a restart find and flush its previous keys. Defaults to the
	// hostname.
	CacheNamespace string `yaml:"cacheNamespace"`
}

// KafkaConfig holds Kafka broker and topic settings for the change feed.
type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	ConsumerGroup string   `yaml:"consumerGroup"`
	ChangesTopic  string   `yaml:"changesTopic"`
	BufferSize    int      `yaml:"bufferSize"`
}

// TranslatorConfig configures the optional translation provider.
type TranslatorConfig struct {
	Enabled          bool          `yaml:"enabled"`
	BaseURL          string        `yaml:"baseUrl"`
	SourceLang       string        `yaml:"sourceLang"`
	TargetLang       string        `yaml:"targetLang"`
	Timeout          time.Duration `yaml:"timeout"`
	RetryCount       int           `yaml:"retryCount"`
	FailureThreshold int           `yaml:"failureThreshold"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// RPCConfig controls the internal JSON-over-TCP endpoint.
type RPCConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// RateLimitConfig bounds write requests per client.
type RateLimitConfig struct {
	WritesPerWindow int           `yaml:"writesPerWindow"`
	Window          time.Duration `yaml:"window"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig toggles per-request span logging.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. A .env file in the working directory is loaded first so its
// values take part in the overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Vocabulary.Backend {
	case BackendFile:
		if c.Vocabulary.FilePath == "" {
			return fmt.Errorf("vocabulary.filePath is required for the file backend")
		}
	case BackendBolt:
		if c.Vocabulary.BoltPath == "" {
			return fmt.Errorf("vocabulary.boltPath is required for the bolt backend")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("unknown vocabulary backend %q", c.Vocabulary.Backend)
	}
	if strings.TrimSpace(c.Categorize.DefaultCategory) == "" {
		return fmt.Errorf("categorize.defaultCategory must not be empty")
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxResults < c.Search.DefaultLimit {
		return fmt.Errorf("search limits invalid: defaultLimit=%d maxResults=%d",
			c.Search.DefaultLimit, c.Search.MaxResults)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowOrigins:    []string{"*"},
		},
		Vocabulary: VocabularyConfig{
			Backend:  BackendFile,
			FilePath: "data/vocabulary.json",
			BoltPath: "data/vocabulary.db",
		},
		Settings: SettingsConfig{
			Path:  "data/defaults_config.json",
			Watch: true,
		},
		Categorize: CategorizeConfig{
			DefaultCategory: "misc",
		},
		Search: SearchConfig{
			DefaultLimit: 50,
			MaxResults:   500,
			BrowseLimit:  3000,
			LocalCache:   1024,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "tagcategorizer",
			User:            "tagcategorizer",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "tagcategorizer",
			ChangesTopic:  "vocabulary-changes",
			BufferSize:    1000,
		},
		Translator: TranslatorConfig{
			Enabled:          false,
			BaseURL:          "https://translate.googleapis.com",
			SourceLang:       "auto",
			TargetLang:       "zh-CN",
			Timeout:          5 * time.Second,
			RetryCount:       2,
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		RPC: RPCConfig{
			Enabled: false,
			Port:    5001,
		},
		RateLimit: RateLimitConfig{
			WritesPerWindow: 120,
			Window:          time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads TC_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TC_VOCABULARY_BACKEND"); v != "" {
		cfg.Vocabulary.Backend = v
	}
	if v := os.Getenv("TC_VOCABULARY_FILE"); v != "" {
		cfg.Vocabulary.FilePath = v
	}
	if v := os.Getenv("TC_VOCABULARY_BOLT"); v != "" {
		cfg.Vocabulary.BoltPath = v
	}
	if v := os.Getenv("TC_SETTINGS_PATH"); v != "" {
		cfg.Settings.Path = v
	}
	if v := os.Getenv("TC_DEFAULT_CATEGORY"); v != "" {
		cfg.Categorize.DefaultCategory = v
	}
	if v := os.Getenv("TC_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TC_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TC_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TC_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TC_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("TC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TC_REDIS_CACHE_NAMESPACE"); v != "" {
		cfg.Redis.CacheNamespace = v
	}
	if v := os.Getenv("TC_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("TC_TRANSLATOR_URL"); v != "" {
		cfg.Translator.BaseURL = v
		cfg.Translator.Enabled = true
	}
	if v := os.Getenv("TC_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TC_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
