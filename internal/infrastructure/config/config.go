package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rate configuration sources.
const (
	RateSourceFile     = "file"
	RateSourcePostgres = "postgres"
)

// Scenario store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Port     int
}

type KafkaConfig struct {
	Topic         string
	ConsumerGroup string
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	Brokers       []string
	TLS           bool
	Enabled       bool
}

type RedisConfig struct {
	Addr     string
	Password string
	Key      string
	DB       int
}

type RateConfigConfig struct {
	Source       string
	File         string
	PollInterval time.Duration
	Watch        bool
}

type JWTConfig struct {
	Issuer        string
	Secret        string
	PublicKey     string
	PublicKeyFile string
}

// TLSConfig enables TLS on both listeners when both files are set.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

func (t TLSConfig) Enabled() bool { return t.CertFile != "" && t.KeyFile != "" }

type HTTPConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type Config struct {
	ServiceName   string
	LogLevel      string
	LogFormat     string
	OTLPEndpoint  string
	ScenarioStore string
	TLS           TLSConfig
	DB            DatabaseConfig
	Kafka         KafkaConfig
	Redis         RedisConfig
	RateConfig    RateConfigConfig
	JWT           JWTConfig
	HTTP          HTTPConfig
	StoreTimeout  time.Duration
	GRPCPort      int
	HTTPPort      int
	OTLPInsecure  bool
	Reflection    bool
}

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.RateConfig.Source {
	case RateSourceFile:
		if c.RateConfig.File == "" {
			errs = append(errs, errors.New("RATE_CONFIG_FILE is required when RATE_CONFIG_SOURCE=file"))
		}
	case RateSourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("RATE_CONFIG_SOURCE must be %q or %q, got %q", RateSourceFile, RateSourcePostgres, c.RateConfig.Source))
	}
	switch c.ScenarioStore {
	case StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SCENARIO_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.ScenarioStore))
	}
	if c.NeedsDatabase() && c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("SCENARIO_STORE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// NeedsDatabase reports whether any enabled component uses PostgreSQL.
func (c Config) NeedsDatabase() bool {
	return c.ScenarioStore == StorePostgres || c.RateConfig.Source == RateSourcePostgres
}

func Load() Config {
	return Config{
		GRPCPort:      getEnvInt("GRPC_PORT", 9090),
		HTTPPort:      getEnvInt("HTTP_PORT", 8090),
		ServiceName:   "pricing-service",
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:  getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		Reflection:    getEnvBool("GRPC_REFLECTION", false),
		TLS: TLSConfig{
			CertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			KeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
		},
		ScenarioStore: strings.ToLower(getEnv("SCENARIO_STORE", StorePostgres)),
		StoreTimeout:  getEnvDuration("SCENARIO_STORE_TIMEOUT", 3*time.Second),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "pricing"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "pricing"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:         getEnv("KAFKA_TOPIC", "pricing.events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", ""),
			Enabled:       getEnvBool("KAFKA_ENABLED", true),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Key:      getEnv("REDIS_RATE_CONFIG_KEY", "pricing:rate-config:last-known-good"),
		},
		RateConfig: RateConfigConfig{
			Source:       strings.ToLower(getEnv("RATE_CONFIG_SOURCE", RateSourceFile)),
			File:         getEnv("RATE_CONFIG_FILE", "configs/rate_config.yaml"),
			Watch:        getEnvBool("RATE_CONFIG_WATCH", true),
			PollInterval: getEnvDuration("RATE_CONFIG_POLL_INTERVAL", 5*time.Minute),
		},
		JWT: JWTConfig{
			Issuer:        getEnv("JWT_ISSUER", "bib-gateway"),
			Secret:        getEnv("JWT_SECRET", ""),
			PublicKey:     getEnv("JWT_PUBLIC_KEY", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
		},
		HTTP: HTTPConfig{
			RateLimitRPS:   getEnvFloat("HTTP_RATE_LIMIT_RPS", 50),
			RateLimitBurst: getEnvInt("HTTP_RATE_LIMIT_BURST", 100),
		},
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(key, fallback), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
