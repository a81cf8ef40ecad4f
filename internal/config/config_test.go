package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "JWT_SECRET", "JWT_TTL", "ALLOWED_ORIGINS",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "REQUEST_TIMEOUT", "EXPORT_PREFIX"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline || c.HTTPAddr != ":3000" || c.DBDriver != "sqlite" {
		t.Fatalf("defaults = %+v", c)
	}
	if c.JWTTTL != 7*24*time.Hour || c.RateLimitMax != 100 || c.RateLimitWindow != 15*time.Minute {
		t.Fatalf("limits = %+v", c)
	}
	if len(c.AllowedOrigins) != 1 || c.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("offline defaults should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("JWT_TTL", "not-a-duration")

	c := FromEnv()
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %q", c.AllowedOrigins)
	}
	if c.RateLimitMax != 5 || c.JWTTTL != 7*24*time.Hour {
		t.Fatalf("c = %+v", c)
	}
	if err := c.Validate(); err == nil {
		t.Fatal("online mode with the dev secret must not validate")
	}
	t.Setenv("JWT_SECRET", "prod-secret")
	if err := FromEnv().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
