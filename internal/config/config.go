package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Варианты хранилища
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config содержит настройки сервера
type Config struct {
	Environment    string `env:"ENV" envDefault:"development"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`
	Store          string `env:"STORE" envDefault:"postgres"`
	DBDSN          string `env:"DB_DSN"`
	JWTSecret      string `env:"JWT_SECRET"`
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	MigrationsAuto bool   `env:"MIGRATIONS_AUTO" envDefault:"true"`
}

// ClientConfig содержит настройки терминального клиента
type ClientConfig struct {
	APIURL         string        `env:"FACULTY_API_URL" envDefault:"http://localhost:8080"`
	Token          string        `env:"FACULTY_TOKEN"`
	PollInterval   time.Duration `env:"FACULTY_POLL_INTERVAL" envDefault:"3s"`
	RequestTimeout time.Duration `env:"FACULTY_REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadClient читает настройки клиента; токен проверяется уже в команде
func LoadClient() (*ClientConfig, error) {
	loadDotEnv()

	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want %s or %s)", c.Store, StorePostgres, StoreMemory)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}

	return nil
}

// IsProduction сообщает, запущены ли мы в проде
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func loadDotEnv() {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}
