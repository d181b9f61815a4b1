package config

import (
	"log/slog"
	"os"
	"strings"

	godotenv "github.com/joho/godotenv"
)

const (
	defaultPort             = "8080"
	defaultRabbitMqExchange = "image_search"
	defaultLogLevel         = "info"
)

type Config struct {
	ImagePredictorEndpoint  string
	StorageConnectionString string
	Port                    string
	RabbitMqURL             string
	RabbitMqExchange        string
	LogLevel                string
}

func NewConfig(endpoint string, connectionString string) *Config {
	return &Config{
		ImagePredictorEndpoint:  endpoint,
		StorageConnectionString: connectionString,
		Port:                    defaultPort,
		RabbitMqExchange:        defaultRabbitMqExchange,
		LogLevel:                defaultLogLevel,
	}
}

// InitializeEnvs loads the dotenv file matching APP_ENV and reads the settings once.
// Nothing is validated here; components reject bad settings when they are constructed.
func InitializeEnvs() *Config {
	loadDotEnv()

	config := NewConfig(
		firstEnv("IMAGE_PREDICTOR_ENDPOINT", "ImagePredictorEndpoint"),
		firstEnv("STORAGE_CONNECTION_STRING", "StorageConnectionString"),
	)
	if port := os.Getenv("PORT"); port != "" {
		config.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = strings.ToLower(level)
	}
	config.RabbitMqURL = os.Getenv("RABBITMQ_URL")
	if exchange := os.Getenv("RABBITMQ_EXCHANGE"); exchange != "" {
		config.RabbitMqExchange = exchange
	}
	return config
}

func loadDotEnv() {
	switch env := os.Getenv("APP_ENV"); env {
	case "dev", "":
		if err := godotenv.Overload(".env.dev"); err == nil {
			slog.Debug("Loaded .env.dev")
		} else if err := godotenv.Overload(".env"); err == nil {
			slog.Debug("Loaded .env")
		} else {
			slog.Debug("No .env.dev or .env found, using system environment variables")
		}
	default:
		fname := ".env." + env
		if err := godotenv.Overload(fname); err == nil {
			slog.Debug("Loaded dotenv file", "file", fname)
		} else if err := godotenv.Overload(".env"); err == nil {
			slog.Debug("Loaded .env")
		} else {
			slog.Debug("No dotenv file found, using system environment variables", "file", fname)
		}
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
