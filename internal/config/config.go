package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const devSecret = "mathevolve-dev-secret"

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	AllowedOrigins []string

	RateLimitMax    int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration

	ExportPrefix string
}

// Load reads .env (if present) into the process environment and returns
// FromEnv. Variables already set take precedence over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:            mode,
		HTTPAddr:        envOr("HTTP_ADDR", ":3000"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		JWTSecret:       envOr("JWT_SECRET", devSecret),
		JWTTTL:          envDuration("JWT_TTL", 7*24*time.Hour),
		AllowedOrigins:  csvOr("ALLOWED_ORIGINS", "http://localhost:5173"),
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 30*time.Second),
		ExportPrefix:    envOr("EXPORT_PREFIX", "mathevolve-results"),
	}
}

// Validate rejects settings that are only acceptable for local development.
func (c Config) Validate() error {
	if c.Mode == ModeOnline && c.JWTSecret == devSecret {
		return errors.New("config: JWT_SECRET must be set in online mode")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("config: RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
