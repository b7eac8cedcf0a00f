package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config agrupa la configuración necesaria para correr la aplicación.
type Config struct {
	Port               string        `env:"PORT" env-default:"8080"`
	DatabaseURL        string        `env:"DATABASE_URL" env-required:"true"`
	Environment        string        `env:"ENVIRONMENT" env-default:"development"`
	LogLevel           string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat          string        `env:"LOG_FORMAT" env-default:"json"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" env-default:"10485760"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
	AutoMigrate        bool          `env:"AUTO_MIGRATE" env-default:"true"`
}

// Load lee variables de entorno (y un .env opcional) y valida lo mínimo indispensable.
func Load() (Config, error) {
	// El .env es opcional: en producción todo viene del entorno.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	// Normalizamos por si alguien manda ":8080"
	cfg.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Port), ":")
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("missing required env var: DATABASE_URL")
	}

	if cfg.MaxBodyBytes < 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must not be negative: %d", cfg.MaxBodyBytes)
	}

	return cfg, nil
}

// IsDevelopment indica si corremos en un entorno local.
func (cfg Config) IsDevelopment() bool {
	switch strings.ToLower(cfg.Environment) {
	case "development", "dev", "local":
		return true
	default:
		return false
	}
}

// Addr devuelve la dirección de escucha del servidor HTTP.
func (cfg Config) Addr() string {
	return ":" + cfg.Port
}
