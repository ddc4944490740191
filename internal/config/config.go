package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	RedisAddr   string
	HTTPPort    string
	ModelPath   string
	JWTSecret   string
	SessionTTL  time.Duration
}

func Load() *Config {
	ttlHours := 24
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			ttlHours = parsed
		}
	}

	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB", "heartwaves"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		ModelPath:   getEnv("MODEL_PATH", "data/models/clustering_baseline/model.json"),
		JWTSecret:   getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		SessionTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
