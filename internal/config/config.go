package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string
	JWTSecret      string
	JWTExpiry      time.Duration
	Log            LogConfig
	Store          StoreConfig
	Redis          RedisConfig
	MongoURI       string
	Verifier       VerifierConfig
	NatsURL        string
	RateLimit      bool
}

type LogConfig struct {
	Level  string
	Format string
}

// StoreConfig selects the key-value backend that mirrors users, passes and the session.
type StoreConfig struct {
	Backend string // "redis" or "mongo"
	Prefix  string
}

type RedisConfig struct {
	URL          string
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	RetryDelay   time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

type VerifierConfig struct {
	GeminiAPIKey    string
	Model           string
	Timeout         time.Duration
	StaticReasoning string
}

func Load() *Config {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	backend := getEnv("STORE_BACKEND", "redis")
	mongoURI := os.Getenv("MONGO_URI")
	if backend == "mongo" && mongoURI == "" {
		log.Fatal("MONGO_URI environment variable is not set")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getList("ALLOWED_ORIGINS", "http://localhost:5173"),
		TrustedProxies: getList("TRUSTED_PROXIES", ""),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiry:      getDuration("JWT_EXPIRY", 24*time.Hour),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Store: StoreConfig{
			Backend: backend,
			Prefix:  getEnv("STORE_PREFIX", "gatepass:"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           getInt("REDIS_DB", 0),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			MaxRetries:   getInt("REDIS_MAX_RETRIES", 3),
			RetryDelay:   getDuration("REDIS_RETRY_DELAY", 500*time.Millisecond),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
		},
		MongoURI: mongoURI,
		Verifier: VerifierConfig{
			GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:         getDuration("VERIFIER_TIMEOUT", 30*time.Second),
			StaticReasoning: getEnv("VERIFIER_STATIC_REASONING", "Automatic verification is not configured; manual review required."),
		},
		NatsURL:   os.Getenv("NATS_URL"),
		RateLimit: getBool("RATE_LIMIT_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getList splits a comma-separated value, dropping empty entries.
func getList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s: %q", key, v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s: %q", key, v)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
