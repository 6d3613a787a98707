package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the server and the desktop client
type Config struct {
	Env          string
	Port         string
	DatabasePath string

	Log    LogConfig
	CORS   CORSConfig
	Auth   AuthConfig
	Client ClientConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig gates the mutating routes behind an owner token.
type AuthConfig struct {
	Enabled           bool
	OwnerPasswordHash string
	JWTSecret         string
	JWTExpiration     time.Duration
}

// ClientConfig tunes the controllers used by the desktop client.
type ClientConfig struct {
	APIBaseURL     string
	APITimeout     time.Duration
	SearchDebounce time.Duration
	ConfirmTimeout time.Duration
}

// Load returns the application configuration read from the environment and an
// optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:          v.GetString("ENV"),
		Port:         v.GetString("PORT"),
		DatabasePath: v.GetString("DATABASE_PATH"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Auth = AuthConfig{
		Enabled:           v.GetBool("AUTH_ENABLED"),
		OwnerPasswordHash: v.GetString("OWNER_PASSWORD_HASH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiration:     parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.Client = ClientConfig{
		APIBaseURL:     strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		APITimeout:     parseDuration(v.GetString("API_TIMEOUT"), 15*time.Second),
		SearchDebounce: parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
		ConfirmTimeout: parseDuration(v.GetString("CONFIRM_TIMEOUT"), 5*time.Second),
	}

	if cfg.Auth.Enabled && cfg.Auth.OwnerPasswordHash == "" {
		return nil, errors.New("AUTH_ENABLED requires OWNER_PASSWORD_HASH")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "gametracker.db")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("OWNER_PASSWORD_HASH", "")
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("CONFIRM_TIMEOUT", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
