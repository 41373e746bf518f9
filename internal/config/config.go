// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BlobDriverS3    = "s3"
	BlobDriverMinio = "minio"
)

type Config struct {
	Server   Server
	Database Database
	Cache    Cache
	Blob     Blob
	Auth     Auth
	Workers  Workers
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Server struct {
	Address        string        `env:"SERVER_ADDRESS" envDefault:":9090"`
	ContextTimeout time.Duration `env:"CONTEXT_TIMEOUT" envDefault:"30s"`
}

type Database struct {
	Host string `env:"DATABASE_HOST" envDefault:"127.0.0.1"`
	Port string `env:"DATABASE_PORT" envDefault:"3306"`
	User string `env:"DATABASE_USER" envDefault:"root"`
	Pass string `env:"DATABASE_PASS"`
	Name string `env:"DATABASE_NAME" envDefault:"travel_feed"`
	// 连接失败时的重试
	MaxRetry      int           `env:"DATABASE_MAX_RETRY" envDefault:"10"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s"`
}

type Cache struct {
	Host      string `env:"CACHE_HOST" envDefault:"127.0.0.1"`
	Port      string `env:"CACHE_PORT" envDefault:"6379"`
	Pass      string `env:"CACHE_PASS"`
	DB        int    `env:"CACHE_DB" envDefault:"0"`
	BloomSize uint64 `env:"BLOOM_FILTER_SIZE" envDefault:"10000000"`
}

type Blob struct {
	Driver    string `env:"BLOB_DRIVER" envDefault:"s3"`
	Endpoint  string `env:"BLOB_ENDPOINT"`
	Region    string `env:"BLOB_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"BLOB_BUCKET" envDefault:"feed-images"`
	AccessKey string `env:"BLOB_ACCESS_KEY"`
	SecretKey string `env:"BLOB_SECRET_KEY"`
	UseSSL    bool   `env:"BLOB_USE_SSL" envDefault:"false"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
}

type Workers struct {
	ViewSyncInterval    time.Duration `env:"VIEW_SYNC_INTERVAL" envDefault:"10m"`
	ViewSyncFeedTimeout time.Duration `env:"VIEW_SYNC_FEED_TIMEOUT" envDefault:"5s"`
	ViewSyncParallelism int           `env:"VIEW_SYNC_PARALLELISM" envDefault:"8"`
}

// Load reads the dotenv files (".env" when none are given) into the
// environment and parses it. Missing dotenv files are ignored, variables
// already set take precedence.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Blob.Driver {
	case BlobDriverS3, BlobDriverMinio:
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Workers.ViewSyncInterval <= 0 {
		return errors.New("view sync interval must be positive")
	}
	if c.Workers.ViewSyncParallelism <= 0 {
		return errors.New("view sync parallelism must be positive")
	}
	return nil
}
