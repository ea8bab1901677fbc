package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	StorageURL    string
	StorageKey    string
	StorageBucket string
	StorageRPS    int

	AuthFile       string
	MaxUploadBytes int64

	ImportWorkers int
}

// Load reads the environment, after merging a .env file from the working directory when one exists.
func Load() Config {
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("var", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		LogLevel:      env("LOG_LEVEL", "info"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/nobounce?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		StorageURL:    os.Getenv("STORAGE_URL"),
		StorageKey:    os.Getenv("STORAGE_SERVICE_KEY"),
		StorageBucket: env("STORAGE_BUCKET", "court-images"),
		StorageRPS:    atoi("STORAGE_RPS", 5),
		AuthFile:      env("AUTH_FILE", "auth.yaml"),
		ImportWorkers: atoi("IMPORT_WORKERS", 4),
	}
	c.MaxUploadBytes = int64(atoi("MAX_UPLOAD_MB", 32)) << 20

	if c.StorageURL == "" || c.StorageKey == "" {
		log.Warn().Msg("STORAGE_URL or STORAGE_SERVICE_KEY is empty")
	}
	if c.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR is empty, read cache disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
