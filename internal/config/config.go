package config

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr              string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// CacheConfig controls the catalog read-through cache. With Enabled=false the
// catalog is served straight from the database.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"true"`
	Backend    string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"redis"`
	ListingTTL time.Duration `yaml:"listing_ttl" env:"CACHE_LISTING_TTL" env-default:"5m"`
	ItemTTL    time.Duration `yaml:"item_ttl" env:"CACHE_ITEM_TTL" env-default:"10m"`
	OpTimeout  time.Duration `yaml:"op_timeout" env:"CACHE_OP_TIMEOUT" env-default:"150ms"`
	// InvalidationTimeout bounds the whole delete-and-scan pass after a write.
	InvalidationTimeout time.Duration `yaml:"invalidation_timeout" env:"CACHE_INVALIDATION_TIMEOUT" env-default:"1s"`
	MemoryCapacity      int           `yaml:"memory_capacity" env:"CACHE_MEMORY_CAPACITY" env-default:"10000"`
	MemoryShards        int           `yaml:"memory_shards" env:"CACHE_MEMORY_SHARDS" env-default:"64"`
}

type Security struct {
	JWTKey string `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"marketplace-catalog"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Cache        CacheConfig  `yaml:"cache"`
	Security     Security     `yaml:"security"`
	Otel         Otel         `yaml:"otel"`
}

const defaultConfigPath = "config/local.yaml"

func MustLoad() *Config {

	cfg, err := LoadConfigFromPath(resolveConfigPath(os.Args[1:]))
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg

}

// resolveConfigPath picks the config file from CONFIG_PATH, then the -config
// flag, then the local default.
func resolveConfigPath(args []string) string {

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	flags := flag.NewFlagSet("marketplace", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("config", "", "path to the YAML config file")

	if err := flags.Parse(args); err == nil && *configPath != "" {
		return *configPath
	}

	return defaultConfigPath
}

func LoadConfigFromPath(configPath string) (*Config, error) {

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	if err := cfg.Cache.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *CacheConfig) validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Backend != CacheBackendRedis && c.Backend != CacheBackendMemory {
		return fmt.Errorf("invalid cache backend %q: must be %q or %q", c.Backend, CacheBackendRedis, CacheBackendMemory)
	}

	if c.ListingTTL <= 0 || c.ItemTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if c.OpTimeout <= 0 || c.InvalidationTimeout <= 0 {
		return fmt.Errorf("cache timeouts must be positive")
	}

	return nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) Addr() string {
	return r.Host + ":" + r.Port
}

// GetDSN omits the database index; callers select it from DB.
func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s", r.Username, r.Password, r.Addr())
}
