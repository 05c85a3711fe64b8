// config - источник загрузки конфигурации клиента учёта расходов.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Файл .env (если есть) подгружается в окружение до чтения конфигурации.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Refresh RefreshConfig `yaml:"refresh"`
	Metrics MetricsConfig `yaml:"metrics"`
	Sentry  SentryConfig  `yaml:"sentry"`
}

// APIConfig — адреса и параметры HTTP-клиентов.
type APIConfig struct {
	AuthBaseURL     string        `yaml:"auth_base_url"     env:"API_AUTH_BASE_URL"     env-default:"https://node-accounting-app-with-db-and-auth.onrender.com"`
	ResourceBaseURL string        `yaml:"resource_base_url" env:"API_RESOURCE_BASE_URL" env-default:"https://node-accounting-app-with-db-and-auth.onrender.com"`
	Timeout         time.Duration `yaml:"timeout"           env:"API_TIMEOUT"           env-default:"10s"`
	NoCredentials   bool          `yaml:"no_credentials"    env:"API_NO_CREDENTIALS"`
	UserAgent       string        `yaml:"user_agent"        env:"API_USER_AGENT"        env-default:"expense-tracker-client"`
}

// Credentialed — cookie сервера (refresh-cookie) передаются автоматически.
// Флаг хранится инвертированным: cleanenv подставляет env-default поверх нулевого значения.
func (a APIConfig) Credentialed() bool { return !a.NoCredentials }

// RefreshConfig — поведение refresh по 401.
// Coalesce объединяет одновременные refresh в один запрос.
type RefreshConfig struct {
	Coalesce bool `yaml:"coalesce" env:"REFRESH_COALESCE" env-default:"false"`
}

// MetricsConfig — отдельный HTTP для Prometheus.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false"`
	Host    string `yaml:"host"    env:"METRICS_HOST"    env-default:"127.0.0.1"`
	Port    string `yaml:"port"    env:"METRICS_PORT"    env-default:"50085"`
}

func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// SentryConfig — отчёты о неожиданных ошибках. Пустой DSN отключает Sentry.
type SentryConfig struct {
	DSN string `yaml:"dsn" env:"SENTRY_DSN"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv подгружает переменные из файлов .env (по умолчанию ./.env).
// Уже заданные переменные окружения не перезаписываются; отсутствие файла — не ошибка.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return nil
}
