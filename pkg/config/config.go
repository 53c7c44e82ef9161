package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"AnomalyLens/pkg/util"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Log         LogConfig        `yaml:"log"`
	Server      ServerConfig     `yaml:"server"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	MarketData  MarketDataConfig `yaml:"market_data"`
	Model       ModelConfig      `yaml:"model"`
	Pipeline    PipelineConfig   `yaml:"pipeline"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	Redis       RedisConfig      `yaml:"redis"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
	Output string `yaml:"output" default:"stdout"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" default:"2"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" default:"5"`
	CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" default:"10s"`
}

type MetricsConfig struct {
	Path string `yaml:"path" default:"/metrics"`
}

type MarketDataConfig struct {
	// Source is "yahoo" or "clickhouse".
	Source       string        `yaml:"source" default:"yahoo"`
	YahooBaseURL string        `yaml:"yahoo_base_url" default:"https://query1.finance.yahoo.com"`
	UserAgent    string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; AnomalyLens/1.0)"`
	Timeout      time.Duration `yaml:"timeout" default:"15s"`
	RateLimitRPS float64       `yaml:"rate_limit_rps" default:"5"`
	RateBurst    int           `yaml:"rate_burst" default:"5"`
	NewsCount    int           `yaml:"news_count" default:"10"`
	// Cache is "memory", "redis" or "none".
	Cache           string        `yaml:"cache" default:"memory"`
	CacheTTL        time.Duration `yaml:"cache_ttl" default:"5m"`
	CacheMaxEntries int           `yaml:"cache_max_entries" default:"1024"`
	Exchange        string        `yaml:"exchange" default:"xnys"`
	// MaxResponseBytes caps how much of one upstream response body is read.
	MaxResponseBytes int64 `yaml:"max_response_bytes" default:"8388608"`
}

type ModelConfig struct {
	ServiceURL  string        `yaml:"service_url" default:"http://localhost:8000"`
	ArtifactDir string        `yaml:"artifact_dir" default:"."`
	Timeout     time.Duration `yaml:"timeout" default:"30s"`
	Breaker     struct {
		MaxRequests uint32        `yaml:"max_requests" default:"1"`
		Interval    time.Duration `yaml:"interval" default:"60s"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
		MaxFailures uint32        `yaml:"max_failures" default:"5"`
	} `yaml:"breaker"`
}

type PipelineConfig struct {
	DegenerateColumnPolicy string `yaml:"degenerate_column_policy" default:"fail"`
	DefaultModel           string `yaml:"default_model" default:"voting_ensemble"`
}

type ClickHouseConfig struct {
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"market"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	UseHTTP      bool          `yaml:"use_http"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	DailyTable   string        `yaml:"daily_table" default:"candles_1d"`
	WeeklyTable  string        `yaml:"weekly_table" default:"candles_1w"`
	MaxOpenConns int           `yaml:"max_open_conns" default:"10"`
}

type KafkaConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Brokers         []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
	Topic           string   `yaml:"topic" default:"anomaly.results"`
	RequiredAcks    int      `yaml:"required_acks" default:"1"`
	Compression     string   `yaml:"compression" default:"snappy"`
	AutoCreateTopic bool     `yaml:"auto_create_topic"`
	Producer        struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"10ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"anomalylens:"`
}

// Load reads and parses a YAML configuration file. An empty path yields defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}
	if v := os.Getenv("MODEL_ARTIFACT_DIR"); v != "" {
		c.Model.ArtifactDir = v
	}
	if v := os.Getenv("MARKET_DATA_SOURCE"); v != "" {
		c.MarketData.Source = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)
	c.Redis.DB = util.ParseIntDefault(os.Getenv("REDIS_DB"), c.Redis.DB)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.MarketData.Source {
	case "yahoo", "clickhouse":
	default:
		return fmt.Errorf("market_data.source must be 'yahoo' or 'clickhouse', got '%s'", c.MarketData.Source)
	}
	switch c.MarketData.Cache {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("market_data.cache must be 'memory', 'redis' or 'none', got '%s'", c.MarketData.Cache)
	}
	switch c.Pipeline.DegenerateColumnPolicy {
	case "fail", "leave_unscaled":
	default:
		return fmt.Errorf("pipeline.degenerate_column_policy must be 'fail' or 'leave_unscaled', got '%s'", c.Pipeline.DegenerateColumnPolicy)
	}
	if c.Model.ServiceURL == "" {
		return fmt.Errorf("model.service_url is required")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if c.MarketData.NewsCount < 0 {
		return fmt.Errorf("market_data.news_count must be >= 0")
	}
	if c.MarketData.CacheMaxEntries < 0 {
		return fmt.Errorf("market_data.cache_max_entries must be >= 0")
	}
	return nil
}
