// Package config loads the YAML configuration of the skyqa command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/MegaGrindStone/skyqa/llm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Catalog backends.
const (
	BackendMemory = "memory"
	BackendNeo4J  = "neo4j"
	BackendKuzu   = "kuzu"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

// Reader types.
const (
	ReaderLexical      = "lexical"
	ReaderOpenAI       = "openai"
	ReaderOpenAICompat = "openai_compat"
	ReaderOllama       = "ollama"
)

// Neo4JConfig contains connection details for a Neo4j catalog.
type Neo4JConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// KuzuConfig locates an embedded Kuzu database.
type KuzuConfig struct {
	Path string `yaml:"path"`
}

// BoltConfig locates a BoltDB file.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig contains connection details for a Redis catalog.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CatalogConfig selects and configures the catalog backend.
type CatalogConfig struct {
	Backend         string      `yaml:"backend"`
	SeedConcurrency int         `yaml:"seed_concurrency"`
	Neo4J           Neo4JConfig `yaml:"neo4j"`
	Kuzu            KuzuConfig  `yaml:"kuzu"`
	Bolt            BoltConfig  `yaml:"bolt"`
	Redis           RedisConfig `yaml:"redis"`
}

// ReaderConfig selects and configures the reader. Model, host and API key are only used by the
// LLM-backed readers.
type ReaderConfig struct {
	Type       string         `yaml:"type"`
	Model      string         `yaml:"model"`
	Host       string         `yaml:"host"`
	APIKey     string         `yaml:"api_key"`
	MaxRetries int            `yaml:"max_retries"`
	Backoff    time.Duration  `yaml:"backoff"`
	Parameters llm.Parameters `yaml:"parameters"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root configuration.
type Config struct {
	Catalog         CatalogConfig `yaml:"catalog"`
	Reader          ReaderConfig  `yaml:"reader"`
	Log             LogConfig     `yaml:"log"`
	Metrics         MetricsConfig `yaml:"metrics"`
	QuestionTimeout time.Duration `yaml:"question_timeout"`
}

// Default returns the configuration used when no file exists: the built-in catalog answered by
// the lexical reader.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// LoadEnv loads environment variables from a dotenv file. A missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the config at path. ${VAR} references are expanded from the environment before the
// file is parsed. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.UnmarshalStrict([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the backend and reader selections and their required settings.
func (c Config) Validate() error {
	switch c.Catalog.Backend {
	case BackendMemory, BackendKuzu, BackendBolt, BackendRedis:
	case BackendNeo4J:
		if c.Catalog.Neo4J.URI == "" {
			return errors.New("catalog.neo4j.uri is required")
		}
	default:
		return fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend)
	}

	switch c.Reader.Type {
	case ReaderLexical:
	case ReaderOpenAI:
		if c.Reader.APIKey == "" {
			return errors.New("reader.api_key is required for the openai reader")
		}
	case ReaderOpenAICompat, ReaderOllama:
		if c.Reader.Host == "" {
			return fmt.Errorf("reader.host is required for the %s reader", c.Reader.Type)
		}
	default:
		return fmt.Errorf("unknown reader type %q", c.Reader.Type)
	}

	if c.QuestionTimeout < 0 {
		return fmt.Errorf("question_timeout must not be negative, got %s", c.QuestionTimeout)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Catalog.Backend == "" {
		cfg.Catalog.Backend = BackendMemory
	}
	if cfg.Catalog.SeedConcurrency == 0 {
		cfg.Catalog.SeedConcurrency = 4
	}
	if cfg.Catalog.Neo4J.User == "" {
		cfg.Catalog.Neo4J.User = "neo4j"
	}
	if cfg.Catalog.Kuzu.Path == "" {
		cfg.Catalog.Kuzu.Path = "skyqa.kuzu"
	}
	if cfg.Catalog.Bolt.Path == "" {
		cfg.Catalog.Bolt.Path = "skyqa.db"
	}
	if cfg.Catalog.Redis.Addr == "" {
		cfg.Catalog.Redis.Addr = "localhost:6379"
	}

	if cfg.Reader.Type == "" {
		cfg.Reader.Type = ReaderLexical
	}
	if cfg.Reader.MaxRetries == 0 {
		cfg.Reader.MaxRetries = 3
	}
	if cfg.Reader.Model == "" {
		switch cfg.Reader.Type {
		case ReaderOpenAI:
			cfg.Reader.Model = "gpt-4o-mini"
		case ReaderOllama:
			cfg.Reader.Model = "llama3.2"
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "skyqa.log"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 10
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}

	if cfg.QuestionTimeout == 0 {
		cfg.QuestionTimeout = 60 * time.Second
	}
}
