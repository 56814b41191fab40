// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects the repository implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendDynamo Backend = "dynamo"
	BackendMongo  Backend = "mongo"
)

// AuthMode selects the credential verifier.
type AuthMode string

const (
	AuthJWT     AuthMode = "jwt"
	AuthSession AuthMode = "session"
)

// Config carries everything main needs to wire the process together.
type Config struct {
	HTTPPort       string
	RequestTimeout time.Duration
	LogLevel       string

	Backend  Backend
	CartFile string

	AWSRegion   string
	AWSEndpoint string
	TableName   string

	MongoURI    string
	MongoDBName string

	AuthMode  AuthMode
	JWTSecret string
	RedisAddr string
}

// Load reads a local .env if present, then the environment. It fails on
// unknown backend or auth kinds and on missing required settings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		RequestTimeout: 30 * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		Backend:  Backend(getEnv("BACKEND", string(BackendJSON))),
		CartFile: getEnv("CART_FILE", "cart.json"),

		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint: getEnv("AWS_ENDPOINT", ""),
		TableName:   getEnv("TABLE_NAME", "cart_table"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "cartdb"),

		AuthMode:  AuthMode(getEnv("AUTH_MODE", string(AuthJWT))),
		JWTSecret: getEnv("JWT_SECRET", ""),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
	}

	switch cfg.Backend {
	case BackendJSON, BackendDynamo, BackendMongo:
	default:
		return nil, fmt.Errorf("unknown BACKEND %q", cfg.Backend)
	}

	switch cfg.AuthMode {
	case AuthJWT:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthSession:
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
