// Package config reads server settings from the environment, with a .env
// file as the development convenience.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	StoreBackend string // memory | postgres | redis
	DatabaseURL  string
	RedisAddr    string
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Addr:         getenv("ADDR", ":8080"),
		StoreBackend: getenv("STORE_BACKEND", "memory"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
