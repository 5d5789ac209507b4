package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Host      string
	Port      string
	LogLevel  string
	JWTSecret string
	JWTTTL    time.Duration
	RedisURL  string
}

// Load reads configuration from the environment, after loading a local
// .env file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		logrus.Fatal("JWT_SECRET environment variable is required")
	}

	ttlHours := 24 * 30
	if v := getEnv("JWT_TTL_HOURS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttlHours = n
		}
	}

	return &Config{
		Host:      getEnv("HOST", "0.0.0.0"),
		Port:      getEnv("PORT", "8000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		JWTSecret: secret,
		JWTTTL:    time.Duration(ttlHours) * time.Hour,
		RedisURL:  getEnv("REDIS_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
