// config реализует конфигурацию comments-api: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища комментариев.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config - корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Limits    LimitsConfig    `yaml:"limits"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Counts    CountsConfig    `yaml:"counts"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// HTTPConfig - публичный REST-сервер (API + health + metrics).
type HTTPConfig struct {
	Host     string `yaml:"host"      env:"HTTP_HOST"      env-default:"0.0.0.0"`
	Port     string `yaml:"port"      env:"HTTP_PORT"      env-default:"8080"`
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// StorageConfig - выбор и подключение хранилища.
// URL не нужен только для memory.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	URL    string `yaml:"url"    env:"DATABASE_URL"`
}

// LimitsConfig - ограничения на поля комментария (в рунах).
type LimitsConfig struct {
	MaxBodyLen    int `yaml:"max_body_len"    env:"MAX_BODY_LEN"    env-default:"5000"`
	MaxAuthorLen  int `yaml:"max_author_len"  env:"MAX_AUTHOR_LEN"  env-default:"100"`
	MaxContactLen int `yaml:"max_contact_len" env:"MAX_CONTACT_LEN" env-default:"200"`
}

// RateLimitConfig - лимит записей комментариев на IP.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RPS     float64 `yaml:"rps"     env:"RATE_LIMIT_RPS"     env-default:"1"`
	Burst   int     `yaml:"burst"   env:"RATE_LIMIT_BURST"   env-default:"5"`
}

// CountsConfig - пакетная загрузка счётчиков комментариев.
type CountsConfig struct {
	// Окно, в течение которого одиночные запросы счётчиков склеиваются в один запрос к хранилищу.
	BatchWait time.Duration `yaml:"batch_wait" env:"COUNTS_BATCH_WAIT" env-default:"2ms"`
	// Максимальный размер пачки; 0 - без ограничения.
	BatchSize int `yaml:"batch_size" env:"COUNTS_BATCH_SIZE" env-default:"100"`
}

// TimeoutConfig - сервисные таймауты.
type TimeoutConfig struct {
	// Общий дедлайн обработки HTTP-запроса.
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
	// Дедлайн на подключение к хранилищу при старте.
	Connect time.Duration `yaml:"connect" env:"CONNECT" env-default:"10s"`
	// Дедлайн graceful shutdown.
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN" env-default:"10s"`
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return readFile(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate - базовая валидация значений.
func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
		if c.Storage.URL == "" {
			return fmt.Errorf("storage.url is required for driver %q", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Limits.MaxBodyLen <= 0 {
		return fmt.Errorf("limits.max_body_len must be > 0")
	}

	if c.Limits.MaxAuthorLen <= 0 {
		return fmt.Errorf("limits.max_author_len must be > 0")
	}

	if c.Limits.MaxContactLen <= 0 {
		return fmt.Errorf("limits.max_contact_len must be > 0")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("rate_limit.rps must be > 0")
		}

		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit.burst must be > 0")
		}
	}

	if c.Counts.BatchWait < 0 {
		return fmt.Errorf("counts.batch_wait must be >= 0")
	}

	if c.Counts.BatchSize < 0 {
		return fmt.Errorf("counts.batch_size must be >= 0")
	}

	return nil
}
