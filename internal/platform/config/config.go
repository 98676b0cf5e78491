package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"ledgerpass/pkg/domain"
	pstrings "ledgerpass/pkg/platform/strings"
)

// EnvPrefix prefixes every environment override, e.g. LEDGERPASS_SERVER_ADDR.
const EnvPrefix = "LEDGERPASS"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Owner     string `yaml:"owner"`
	LogLevel  string `yaml:"logLevel"  split_words:"true"`
	LogFormat string `yaml:"logFormat" split_words:"true"`

	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"     split_words:"true"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"    split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
	AdminToken      string        `yaml:"adminToken"      split_words:"true"`
}

type AuthConfig struct {
	JWTSigningKey string        `yaml:"jwtSigningKey" envconfig:"JWT_SIGNING_KEY"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	TokenTTL      time.Duration `yaml:"tokenTTL"      envconfig:"TOKEN_TTL"`
}

type LedgerConfig struct {
	GenesisHeight uint64        `yaml:"genesisHeight" split_words:"true"`
	BlockInterval time.Duration `yaml:"blockInterval" split_words:"true"`
	AutoMine      bool          `yaml:"autoMine"      split_words:"true"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	PostgresDSN string `yaml:"postgresDSN" envconfig:"POSTGRES_DSN"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"poolSize"     split_words:"true"`
	MinIdleConns int           `yaml:"minIdleConns" split_words:"true"`
	DialTimeout  time.Duration `yaml:"dialTimeout"  split_words:"true"`
	ReadTimeout  time.Duration `yaml:"readTimeout"  split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
	CacheTTL     time.Duration `yaml:"cacheTTL"     envconfig:"CACHE_TTL"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	Topic             string   `yaml:"topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replicationFactor" split_words:"true"`
	QueueSize         int      `yaml:"queueSize"         split_words:"true"`
}

// Default returns a configuration that runs a single in-memory node.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:   "ledgerpass",
			Audience: "ledgerpass-api",
			TokenTTL: time.Hour,
		},
		Ledger: LedgerConfig{
			BlockInterval: time.Second,
		},
		Storage: StorageConfig{Driver: StorageMemory},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:             "ledgerpass.audit",
			Partitions:        1,
			ReplicationFactor: 1,
			QueueSize:         1024,
		},
	}
}

// Load layers defaults, the optional YAML file at path, then environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := domain.ParsePrincipal(c.Owner); err != nil {
		errs = append(errs, fmt.Errorf("owner: %w", err))
	}
	if strings.TrimSpace(c.Auth.JWTSigningKey) == "" {
		errs = append(errs, errors.New("auth.jwtSigningKey is required"))
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgresDSN is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	if c.Ledger.GenesisHeight > uint64(domain.MaxHeight) {
		errs = append(errs, errors.New("ledger.genesisHeight exceeds the maximum height"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

// OwnerPrincipal returns the validated registry owner.
func (c *Config) OwnerPrincipal() domain.Principal {
	p, _ := domain.ParsePrincipal(c.Owner)
	return p
}
