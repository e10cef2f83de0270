// Package config loads server settings from the environment, an optional
// ./.env file and an optional YAML file named by CONFIG_PATH.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"darlingdetails/pkg/media"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverLocal = "local"
	DriverMinIO = "minio"
)

type Config struct {
	AppEnv        string        `yaml:"app_env" env:"APP_ENV" env-default:"development"`
	HTTPAddr      string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":5000"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	DSN           string        `yaml:"db_dsn" env:"DB_DSN"`
	AutoMigrate   bool          `yaml:"db_auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiration time.Duration `yaml:"jwt_expiration" env:"JWT_EXPIRATION" env-default:"24h"`
	AdminEmail    string        `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:"admin@darlingdetails.com"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD" env-default:"adminpassword"`

	Upload  Upload  `yaml:"upload"`
	Storage Storage `yaml:"storage"`
	Kafka   Kafka   `yaml:"kafka"`
}

type Upload struct {
	BaseDir          string        `yaml:"base_dir" env:"UPLOAD_BASE" env-default:"uploads"`
	MaxBytes         int64         `yaml:"max_bytes" env:"UPLOAD_MAX_BYTES" env-default:"10485760"`
	TargetFormat     string        `yaml:"target_format" env:"IMAGE_TARGET_FORMAT" env-default:"webp"`
	DisplayQuality   int           `yaml:"display_quality" env:"IMAGE_DISPLAY_QUALITY" env-default:"80"`
	ThumbnailQuality int           `yaml:"thumbnail_quality" env:"IMAGE_THUMB_QUALITY" env-default:"60"`
	JanitorGrace     time.Duration `yaml:"janitor_grace" env:"JANITOR_GRACE" env-default:"10m"`
}

type Storage struct {
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"local"`
	MinIOEndpoint  string `yaml:"minio_endpoint" env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `yaml:"minio_access_key" env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `yaml:"minio_secret_key" env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `yaml:"minio_bucket" env:"MINIO_BUCKET" env-default:"darling-details"`
	MinIOUseSSL    bool   `yaml:"minio_use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"product-events"`
}

// Load reads ./.env (existing variables win), then CONFIG_PATH if set, then the
// environment, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MinIO returns the object storage settings.
func (c Config) MinIO() media.MinIOOptions {
	return media.MinIOOptions{
		Endpoint:  c.Storage.MinIOEndpoint,
		AccessKey: c.Storage.MinIOAccessKey,
		SecretKey: c.Storage.MinIOSecretKey,
		Bucket:    c.Storage.MinIOBucket,
		UseSSL:    c.Storage.MinIOUseSSL,
	}
}

// IsDevelopment reports whether the server runs with development defaults.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "" || c.AppEnv == "development"
}

// Validate checks values that would only fail later at first use.
func (c *Config) Validate() error {
	var errs []error
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case DriverLocal:
	case DriverMinIO:
		if c.Storage.MinIOEndpoint == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT is required for the minio storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	switch strings.ToLower(c.Upload.TargetFormat) {
	case "webp", "jpeg", "jpg":
	default:
		errs = append(errs, fmt.Errorf("unknown IMAGE_TARGET_FORMAT %q", c.Upload.TargetFormat))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	for name, q := range map[string]int{"IMAGE_DISPLAY_QUALITY": c.Upload.DisplayQuality, "IMAGE_THUMB_QUALITY": c.Upload.ThumbnailQuality} {
		if q < 1 || q > 100 {
			errs = append(errs, fmt.Errorf("%s must be within 1..100, got %d", name, q))
		}
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
		c.JWTSecret = "dev-insecure-secret-change"
	}
	return errors.Join(errs...)
}
