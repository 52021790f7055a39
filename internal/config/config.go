package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	RevocationMemory  = "memory"
	RevocationMongoDB = "mongodb"
	RevocationRedis   = "redis"
)

type Config struct {
	Env         string           `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string           `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	AutoMigrate bool             `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
	Auth        AuthConfig       `yaml:"auth"`
	HTTPServer  HTTPServerConfig `yaml:"http_server"`
	Revocation  RevocationConfig `yaml:"revocation"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"30m"`
}

type HTTPServerConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8000"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"5s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-default:"http://localhost:5173"`
}

type RevocationConfig struct {
	Backend       string        `yaml:"backend" env:"REVOCATION_BACKEND" env-default:"memory"`
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"1m"`
	Mongo         MongoConfig   `yaml:"mongo"`
	Redis         RedisConfig   `yaml:"redis"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"lifecursor"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// MustLoad loads the config from the path given by the --config flag or the
// CONFIG_PATH env variable and panics on any error.
func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file not found: %s", op, path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Revocation.Backend {
	case RevocationMemory, RevocationMongoDB, RevocationRedis:
	default:
		return fmt.Errorf("unknown revocation backend %q", c.Revocation.Backend)
	}

	if c.Revocation.Backend == RevocationMemory && c.Revocation.SweepInterval <= 0 {
		return errors.New("revocation.sweep_interval must be positive")
	}

	if c.Auth.Secret == "" {
		return errors.New("auth.secret is empty")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}

	return nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
