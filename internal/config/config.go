package config

import (
	"os"
	"time"

	"graphv/internal/utils"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string
	GinMode       string
	SessionSecret string
	LogLevel      string

	// DatabaseURL selects Postgres; empty means an in-memory SQLite engine.
	DatabaseURL string

	MaxUploadMB    int
	MaxDatasets    int
	DatasetTTL     time.Duration
	QueryCacheSize int

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	TemplatesDir string
	StaticDir    string
	IntroFile    string
}

// Load reads .env (if present) and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool) {
	found := godotenv.Load() == nil

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		GinMode:        os.Getenv("GIN_MODE"),
		SessionSecret:  getenv("SESSION_SECRET", "secret_key_change_me"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MaxUploadMB:    positive(utils.StringToInt(os.Getenv("MAX_UPLOAD_MB")), 20),
		MaxDatasets:    positive(utils.StringToInt(os.Getenv("MAX_DATASETS")), 32),
		DatasetTTL:     duration(os.Getenv("DATASET_TTL"), 2*time.Hour),
		QueryCacheSize: positive(utils.StringToInt(os.Getenv("QUERY_CACHE_SIZE")), 256),
		Neo4jURI:       os.Getenv("NEO4J_URI"),
		Neo4jUser:      getenv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  os.Getenv("NEO4J_PASSWORD"),
		TemplatesDir:   getenv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:      getenv("STATIC_DIR", "./web/static"),
		IntroFile:      os.Getenv("INTRO_FILE"),
	}
	return cfg, found
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
