// Package config loads the service configuration from the environment. A
// local .env file is honored when present so development does not need
// exported variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Render strategies. Sync talks to a synchronous render service over HTTP;
// managed queues jobs through a hosted job table.
const (
	RenderStrategySync    = "sync"
	RenderStrategyManaged = "managed"
)

// Config is the full service configuration.
type Config struct {
	HTTPAddr string
	DataDir  string

	SupabaseURL string
	SupabaseKey string
	MediaBucket string

	RenderStrategy   string
	RenderServiceURL string

	AutosaveInterval time.Duration
	WorkerCount      int
	JobQueueSize     int
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load(log *logrus.Logger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	cfg := Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_SERVICE_KEY"),
		MediaBucket:      getEnv("MEDIA_BUCKET", "user-media"),
		RenderStrategy:   getEnv("RENDER_STRATEGY", RenderStrategySync),
		RenderServiceURL: getEnv("RENDER_SERVICE_URL", "http://localhost:3001"),
		AutosaveInterval: getDuration(log, "AUTOSAVE_INTERVAL", 5*time.Second),
		WorkerCount:      getInt(log, "WORKER_COUNT", 4),
		JobQueueSize:     getInt(log, "JOB_QUEUE_SIZE", 64),
	}

	if cfg.RenderStrategy != RenderStrategySync && cfg.RenderStrategy != RenderStrategyManaged {
		log.WithField("strategy", cfg.RenderStrategy).Warn("Unknown render strategy, falling back to sync")
		cfg.RenderStrategy = RenderStrategySync
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(log *logrus.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getDuration(log *logrus.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.WithField("key", key).Warn("Invalid duration in environment, using default")
		return fallback
	}
	return d
}
