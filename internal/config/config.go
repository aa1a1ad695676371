// Package config loads runtime settings from defaults, an optional .env file,
// an optional config file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// S3Config holds the object storage settings used when StorageDriver is "s3".
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the API server.
type Config struct {
	AppPort string

	DBDriver    string // sqlite, postgres or memory
	DatabaseDSN string

	JWTSecret    string
	JWTAlgorithm string
	JWTExpire    time.Duration

	// Empty disables event publishing.
	RabbitMQURL string

	StorageDriver  string // local or s3
	StorageDir     string
	S3             S3Config
	MaxUploadBytes int64

	LogLevel  string
	LogFormat string
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":7701")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "Database.db")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_EXPIRE_TIME", 1800)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_DIR", "S3")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// NewFlagSet returns the command-line flags understood by Load.
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("todoapi", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, json, toml or env)")
	fs.String("port", "", "listen address, e.g. :7701")
	fs.String("db-driver", "", "database driver: sqlite, postgres or memory")
	fs.String("dsn", "", "database DSN")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	return fs
}

var flagKeys = map[string]string{
	"port":      "APP_PORT",
	"db-driver": "DB_DRIVER",
	"dsn":       "DATABASE_DSN",
	"log-level": "LOG_LEVEL",
}

// Load parses args with NewFlagSet and resolves the configuration. A .env
// file in the working directory is loaded first when present; it never
// overrides variables already set in the environment.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := NewFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper
// instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:      v.GetString("APP_PORT"),
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:  v.GetString("DATABASE_DSN"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		JWTAlgorithm: strings.ToUpper(v.GetString("JWT_ALGORITHM")),
		JWTExpire:    time.Duration(v.GetInt64("JWT_EXPIRE_TIME")) * time.Second,
		RabbitMQURL:  v.GetString("RABBITMQ_URL"),

		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		StorageDir:    v.GetString("STORAGE_DIR"),
		S3: S3Config{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
		},
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if !supportedAlgorithms[c.JWTAlgorithm] {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm))
	}
	if c.JWTExpire <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE_TIME must be positive"))
	}

	switch c.DBDriver {
	case "memory":
	case "sqlite", "postgres":
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}

	switch c.StorageDriver {
	case "local":
		if c.StorageDir == "" {
			errs = append(errs, errors.New("STORAGE_DIR must be set"))
		}
	case "s3":
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not supported", c.StorageDriver))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	return errors.Join(errs...)
}
