package config

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultAccessTokenExpire = 30 * time.Minute

type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Server   ServerConfig
	Postgres PostgresConfig
}

type AppConfig struct {
	ProjectName string
	Debug       bool
}

type AuthConfig struct {
	// SecretKey signs access tokens. When SECRET_KEY is unset a random
	// value is generated at startup, so tokens do not survive restarts.
	SecretKey      string
	AccessTokenTTL time.Duration
	AdminUsername  string
	AdminPassword  string
	AdminEmail     string
}

type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		App: AppConfig{
			ProjectName: getenv("PROJECT_NAME", "account-service"),
			Debug:       getenvBool("DEBUG", false),
		},
		Auth: AuthConfig{
			SecretKey:      loadSecretKey(),
			AccessTokenTTL: getenvMinutes("ACCESS_TOKEN_EXPIRE_MINUTES", defaultAccessTokenExpire),
			AdminUsername:  getenv("ADMIN_USERNAME", "admin"),
			AdminPassword:  getenv("ADMIN_PASSWORD", "admin123"),
			AdminEmail:     getenv("ADMIN_EMAIL", "admin@example.com"),
		},
		Server: ServerConfig{
			Host:           getenv("HOST", "127.0.0.1"),
			Port:           getenv("PORT", "8080"),
			AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "*")),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func loadSecretKey() string {
	if key := os.Getenv("SECRET_KEY"); key != "" {
		return key
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand failing means the platform is unusable anyway.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvMinutes(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	minutes, err := strconv.Atoi(val)
	if err != nil || minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
