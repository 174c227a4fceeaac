package config

import (
	"errors"
	"os"
)

// Config holds everything the server needs to start. It is loaded once in
// main and handed to the component constructors, so no package reads the
// environment (or hides a fallback secret) on its own.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string
}

// Load reads the configuration from environment variables.
// JWT_SECRET has no fallback; without it the server refuses to start.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "4000"),
		MongoURI:  getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGODB_DATABASE", "e-commerce"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
