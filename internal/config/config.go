package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// HTTP is the REST listen address.
type HTTP struct {
	Host string
	Port int
}

// GRPC is the gRPC listen address.
type GRPC struct {
	Host string
	Port int
}

// Cache selects the read-through cache backend.
type Cache struct {
	Enabled    bool
	Driver     string
	DefaultTTL time.Duration
	Redis      Redis
}

// Redis is used when the cache driver is redis.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Messaging configures where change events go.
type Messaging struct {
	Driver        string
	Enabled       bool
	Kafka         Kafka
	ConsumerGroup string
	Workers       Worker
}

// Kafka locates the change topic.
type Kafka struct {
	Brokers        []string
	ClientID       string
	Topic          string
	CommitInterval time.Duration
	MinBytes       int
	MaxBytes       int
	ConnectTimeout time.Duration
}

// Worker sizes the change consumers.
type Worker struct {
	Enabled      bool
	PollInterval time.Duration
	Concurrency  int
}

// Schema generation modes applied when the database module starts.
const (
	SchemaCreate     = "create"
	SchemaCreateDrop = "create-drop"
	SchemaMigrate    = "migrate"
	SchemaNone       = "none"
)

// Database holds primary and read replica connection settings plus the
// schema generation and SQL logging switches.
type Database struct {
	Driver          string
	WriterDSN       string
	ReaderDSN       string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SchemaMode      string
	LogQueries      bool
}

// Audit configures provenance stamping.
type Audit struct {
	// Actor pins the user name written to audit columns; empty means the OS user.
	Actor string
}

// Observability configures logs, traces and metrics.
type Observability struct {
	ServiceName      string
	Environment      string
	LogLevel         string
	LogEncoding      string
	EnableTracing    bool
	TraceExporter    string
	TraceEndpoint    string
	TraceInsecure    bool
	// TraceSampleRatio samples root spans by trace id; 0 or 1 keeps all.
	TraceSampleRatio float64
	EnableMetrics    bool
	MetricsExporter  string
	PrometheusPath   string
}

// Config is the full timeclock configuration.
type Config struct {
	HTTP          HTTP
	GRPC          GRPC
	Cache         Cache
	Messaging     Messaging
	Database      Database
	Audit         Audit
	Observability Observability
}

// Module provides Config.
var Module = fx.Provide(New)

var loadEnvOnce sync.Once

// New reads Config from the environment, after loading .env if present.
func New() (Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})

	env := &envReader{}
	cfg := Config{
		HTTP: HTTP{
			Host: env.str("HTTP_HOST", "0.0.0.0"),
			Port: env.int("HTTP_PORT", 8080),
		},
		GRPC: GRPC{
			Host: env.str("GRPC_HOST", "0.0.0.0"),
			Port: env.int("GRPC_PORT", 9090),
		},
		Cache: Cache{
			Enabled:    env.bool("CACHE_ENABLED", false),
			Driver:     env.str("CACHE_DRIVER", "redis"),
			DefaultTTL: env.duration("CACHE_DEFAULT_TTL", time.Minute*5),
			Redis: Redis{
				Addr:     env.str("REDIS_ADDR", "127.0.0.1:6379"),
				Password: env.str("REDIS_PASSWORD", ""),
				DB:       env.int("REDIS_DB", 0),
			},
		},
		Messaging: Messaging{
			Driver:  env.str("MESSAGING_DRIVER", "kafka"),
			Enabled: env.bool("MESSAGING_ENABLED", false),
			Kafka: Kafka{
				Brokers:        env.list("KAFKA_BROKERS", []string{"127.0.0.1:9092"}),
				ClientID:       env.str("KAFKA_CLIENT_ID", "timeclock-service"),
				Topic:          env.str("KAFKA_TOPIC", "timeclock.changes"),
				CommitInterval: env.duration("KAFKA_COMMIT_INTERVAL", time.Second),
				MinBytes:       env.int("KAFKA_MIN_BYTES", 10e3),
				MaxBytes:       env.int("KAFKA_MAX_BYTES", 10e6),
				ConnectTimeout: env.duration("KAFKA_CONNECT_TIMEOUT", 5*time.Second),
			},
			ConsumerGroup: env.str("KAFKA_CONSUMER_GROUP", "timeclock-audit"),
			Workers: Worker{
				Enabled:      env.bool("WORKER_ENABLED", true),
				PollInterval: env.duration("WORKER_POLL_INTERVAL", time.Second),
				Concurrency:  env.int("WORKER_CONCURRENCY", 4),
			},
		},
		Database: Database{
			Driver:          env.str("DB_DRIVER", "sqlite"),
			WriterDSN:       env.str("DB_WRITER_DSN", "file:timeclock.db?_foreign_keys=on"),
			ReaderDSN:       env.str("DB_READER_DSN", ""),
			MaxOpenConns:    env.int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    env.int("DB_MAX_IDLE_CONNS", 25),
			MaxConnLifetime: env.duration("DB_MAX_CONN_LIFETIME", time.Minute*5),
			SchemaMode:      env.str("DB_SCHEMA_MODE", SchemaCreate),
			LogQueries:      env.bool("DB_LOG_QUERIES", false),
		},
		Audit: Audit{
			Actor: strings.TrimSpace(env.str("AUDIT_ACTOR", "")),
		},
		Observability: Observability{
			ServiceName:      env.str("OBS_SERVICE_NAME", "timeclock"),
			Environment:      env.str("OBS_ENVIRONMENT", "local"),
			LogLevel:         env.str("OBS_LOG_LEVEL", "info"),
			LogEncoding:      env.str("OBS_LOG_ENCODING", "json"),
			EnableTracing:    env.bool("OBS_ENABLE_TRACING", false),
			TraceExporter:    env.str("OBS_TRACE_EXPORTER", "stdout"),
			TraceEndpoint:    env.str("OBS_OTLP_ENDPOINT", "localhost:4317"),
			TraceInsecure:    env.bool("OBS_OTLP_INSECURE", true),
			TraceSampleRatio: env.float("OBS_TRACE_SAMPLE_RATIO", 1),
			EnableMetrics:    env.bool("OBS_ENABLE_METRICS", true),
			MetricsExporter:  env.str("OBS_METRICS_EXPORTER", "prometheus"),
			PrometheusPath:   env.str("OBS_PROMETHEUS_PATH", "/metrics"),
		},
	}

	if err := env.err(); err != nil {
		return Config{}, err
	}

	if cfg.HTTP.Port <= 0 {
		return Config{}, fmt.Errorf("invalid HTTP port: %d", cfg.HTTP.Port)
	}

	if cfg.GRPC.Port <= 0 {
		return Config{}, fmt.Errorf("invalid gRPC port: %d", cfg.GRPC.Port)
	}

	if !cfg.Cache.Enabled {
		cfg.Cache.Driver = "noop"
	}

	switch cfg.Cache.Driver {
	case "redis", "memory", "noop":
		// supported
	default:
		return Config{}, fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}

	if cfg.Cache.Driver == "redis" && cfg.Cache.Redis.Addr == "" {
		return Config{}, fmt.Errorf("missing REDIS_ADDR for redis cache")
	}

	if cfg.Cache.DefaultTTL < 0 {
		cfg.Cache.DefaultTTL = time.Minute * 5
	}

	cfg.Observability.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Observability.LogLevel))
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	cfg.Observability.LogEncoding = strings.ToLower(strings.TrimSpace(cfg.Observability.LogEncoding))
	if cfg.Observability.LogEncoding == "" {
		cfg.Observability.LogEncoding = "json"
	}
	cfg.Observability.TraceExporter = strings.ToLower(strings.TrimSpace(cfg.Observability.TraceExporter))
	if cfg.Observability.TraceExporter == "" {
		cfg.Observability.TraceExporter = "stdout"
	}
	cfg.Observability.MetricsExporter = strings.ToLower(strings.TrimSpace(cfg.Observability.MetricsExporter))
	if cfg.Observability.MetricsExporter == "" {
		cfg.Observability.MetricsExporter = "prometheus"
	}

	if cfg.Observability.PrometheusPath == "" {
		cfg.Observability.PrometheusPath = "/metrics"
	} else if !strings.HasPrefix(cfg.Observability.PrometheusPath, "/") {
		cfg.Observability.PrometheusPath = "/" + cfg.Observability.PrometheusPath
	}

	if !cfg.Messaging.Enabled {
		cfg.Messaging.Driver = "noop"
	}

	switch cfg.Messaging.Driver {
	case "kafka", "memory", "noop":
		// supported
	default:
		return Config{}, fmt.Errorf("unsupported messaging driver: %s", cfg.Messaging.Driver)
	}

	if cfg.Messaging.Driver == "kafka" {
		if len(cfg.Messaging.Kafka.Brokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS must be provided")
		}
		if cfg.Messaging.Kafka.Topic == "" {
			return Config{}, fmt.Errorf("KAFKA_TOPIC must be provided")
		}
		if cfg.Messaging.ConsumerGroup == "" {
			return Config{}, fmt.Errorf("KAFKA_CONSUMER_GROUP must be provided")
		}
	}

	if cfg.Messaging.Workers.Concurrency <= 0 {
		cfg.Messaging.Workers.Concurrency = 1
	}
	if cfg.Messaging.Workers.PollInterval <= 0 {
		cfg.Messaging.Workers.PollInterval = time.Second
	}

	if cfg.Database.WriterDSN == "" {
		return Config{}, fmt.Errorf("missing DB_WRITER_DSN")
	}

	if cfg.Database.ReaderDSN == "" {
		cfg.Database.ReaderDSN = cfg.Database.WriterDSN
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case "postgres", "mysql", "sqlite":
		// supported
	default:
		return Config{}, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	cfg.Database.SchemaMode = strings.ToLower(strings.TrimSpace(cfg.Database.SchemaMode))
	switch cfg.Database.SchemaMode {
	case "":
		cfg.Database.SchemaMode = SchemaCreate
	case SchemaCreate, SchemaCreateDrop, SchemaMigrate, SchemaNone:
		// supported
	default:
		return Config{}, fmt.Errorf("unsupported DB_SCHEMA_MODE: %s", cfg.Database.SchemaMode)
	}

	return cfg, nil
}
