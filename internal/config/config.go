package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Protocol timing. The typing staleness window is twice the sender's
// debounce so a single lost refresh frame does not leave a stale indicator.
const (
	TypingDebounce  = 3 * time.Second
	TypingStaleness = 2 * TypingDebounce
)

// WebSocket keepalive tuning, shared by the client connection and the relay
// pumps.
const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 8192
)

// Config holds the environment-derived settings for both binaries.
type Config struct {
	// Client side.
	APIBaseURL string
	RelayWSURL string
	AuthToken  string

	// Relay side.
	ListenAddr string
	RedisAddr  string
	JWTSecret  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}

	return &Config{
		APIBaseURL: getenv("API_BASE_URL", "http://localhost:8080"),
		RelayWSURL: getenv("RELAY_WS_URL", "ws://localhost:8080/ws"),
		AuthToken:  os.Getenv("AUTH_TOKEN"),

		ListenAddr: getenv("LISTEN_ADDR", ":8080"),
		RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:  getenv("JWT_SECRET", "dev-only-secret"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     getenv("DB_USER", "user"),
		DBPassword: getenv("DB_PASSWORD", "password"),
		DBName:     getenv("DB_NAME", "stayhubdb"),
		DBPort:     getenv("DB_PORT", "5432"),
	}
}

// DatabaseDSN assembles the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
