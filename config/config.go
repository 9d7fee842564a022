package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	CatalogAPIURL string `envconfig:"CATALOG_API_URL" default:"https://fakestoreapi.com"`
	HTTPPort      string `envconfig:"HTTP_PORT"       default:":8080"`
	GrpcPort      string `envconfig:"GRPC_PORT"       default:":50051"` // gRPC health endpoint
	LogLevel      string `envconfig:"LOG_LEVEL"       default:"info"`

	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memory"` // memory, redis or postgres
	SessionTTL     time.Duration `envconfig:"SESSION_TTL"     default:"12h"`
	RedisURL       string        `envconfig:"REDIS_URL"       default:"redis://localhost:6379/0"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"catalog.mutations"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	TabCookieSecure    bool     `envconfig:"TAB_COOKIE_SECURE" default:"false"`
}

var (
	config Config
	once   sync.Once
)

// LoadConfig reads an optional .env file and then the process environment.
// It runs once; later calls return the same Config.
func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Catalog API=%s, HTTP Port=%s, GRPC Port=%s, LogLevel=%s",
			config.CatalogAPIURL, config.HTTPPort, config.GrpcPort, config.LogLevel)
		logger.Infof("Configuration loaded: Session backend=%s, TTL=%s", config.SessionBackend, config.SessionTTL)
		if config.SessionBackend == "postgres" && config.DatabaseURL == "" {
			logger.Fatal("Configuration error: DATABASE_URL is required for the postgres session backend")
		}
		if len(config.KafkaBrokers) == 0 {
			logger.Info("Configuration loaded: KAFKA_BROKERS not set, mutation events will only be logged")
		}
	})
	return &config
}

// Process fills a Config from the environment without the .env file or the once guard.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
