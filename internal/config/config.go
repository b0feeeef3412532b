package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	AppPort string

	DBDriver    string
	MySQLHost   string
	MySQLPort   string
	MySQLDB     string
	MySQLUser   string
	MySQLPass   string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int
	JWTSecret    string

	NotifyStreamPrefix string
	DispatchWorkers    int
	DispatchQueueSize  int
	DirectoryTTLSecs   int
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "storeops")
	v.SetDefault("MYSQL_USER", "storeops")
	v.SetDefault("MYSQL_PASS", "storeops")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("NOTIFY_STREAM_PREFIX", "notify:store")
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DISPATCH_QUEUE_SIZE", 256)
	v.SetDefault("DIRECTORY_CACHE_TTL_SECONDS", 600)
}

// Load reads .env (if any), then config.yaml from CONFIG_PATH (if any); env vars win over both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if dir := os.Getenv("CONFIG_PATH"); dir != "" {
		v.SetConfigFile(filepath.Join(dir, "config.yaml"))
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		AppPort:            v.GetString("APP_PORT"),
		DBDriver:           v.GetString("DB_DRIVER"),
		MySQLHost:          v.GetString("MYSQL_HOST"),
		MySQLPort:          v.GetString("MYSQL_PORT"),
		MySQLDB:            v.GetString("MYSQL_DB"),
		MySQLUser:          v.GetString("MYSQL_USER"),
		MySQLPass:          v.GetString("MYSQL_PASS"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		IdempTTLSecs:       v.GetInt("IDEMPOTENCY_TTL_SECONDS"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		NotifyStreamPrefix: v.GetString("NOTIFY_STREAM_PREFIX"),
		DispatchWorkers:    v.GetInt("DISPATCH_WORKERS"),
		DispatchQueueSize:  v.GetInt("DISPATCH_QUEUE_SIZE"),
		DirectoryTTLSecs:   v.GetInt("DIRECTORY_CACHE_TTL_SECONDS"),
	}, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("missing DATABASE_URL for postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.MySQLDSN()
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) DirectoryTTL() time.Duration { return time.Duration(c.DirectoryTTLSecs) * time.Second }
