package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const DefaultJWTSecret = "change-me-in-production"

var loadEnvOnce sync.Once

// Config returns the value of key, reading .env the first time it is called.
// Values already present in the process environment win over the file.
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
			fmt.Println("Error loading .env file:", err)
		}
	})
	return os.Getenv(key)
}

type Settings struct {
	AppEnv     string
	Port       int
	CORSOrigin string
	SeedData   bool

	DB         DatabaseSettings
	JWT        JWTSettings
	Cloudinary CloudinarySettings
}

type DatabaseSettings struct {
	Driver   string // postgres | memory
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseSettings) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type JWTSettings struct {
	Secret string
	TTL    time.Duration
}

type CloudinarySettings struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled reports whether every Cloudinary credential is present.
func (c CloudinarySettings) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Load reads settings from .env and the environment and validates them.
func Load() (*Settings, error) {
	s := &Settings{
		AppEnv:     withDefault("APP_ENV", "development"),
		CORSOrigin: withDefault("CORS_ORIGIN", "http://localhost:3000"),
		DB: DatabaseSettings{
			Driver:   strings.ToLower(withDefault("DB_DRIVER", "postgres")),
			Host:     withDefault("DB_HOST", "localhost"),
			User:     withDefault("DB_USER", "postgres"),
			Password: withDefault("DB_PASSWORD", "postgres"),
			Name:     withDefault("DB_NAME", "event_hub"),
			SSLMode:  withDefault("DB_SSLMODE", "disable"),
		},
		JWT: JWTSettings{
			Secret: withDefault("JWT_SECRET", DefaultJWTSecret),
		},
		Cloudinary: CloudinarySettings{
			CloudName: Config("CLOUDINARY_CLOUD_NAME"),
			APIKey:    Config("CLOUDINARY_API_KEY"),
			APISecret: Config("CLOUDINARY_API_SECRET"),
		},
	}

	var err error
	if s.Port, err = intSetting("PORT", 5000); err != nil {
		return nil, err
	}
	if s.DB.Port, err = intSetting("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if s.JWT.TTL, err = durationSetting("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if s.SeedData, err = boolSetting("SEED_DATA", false); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}

// Validate checks settings that would otherwise fail late at runtime.
func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	if s.DB.Driver != "postgres" && s.DB.Driver != "memory" {
		return fmt.Errorf("unknown DB_DRIVER %q", s.DB.Driver)
	}
	if s.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if s.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if s.IsProduction() && s.JWT.Secret == DefaultJWTSecret {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	return nil
}

func (s *Settings) IsProduction() bool {
	return s.AppEnv == "production"
}

func withDefault(key, fallback string) string {
	if v := strings.TrimSpace(Config(key)); v != "" {
		return v
	}
	return fallback
}

func intSetting(key string, fallback int) (int, error) {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func durationSetting(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}

func boolSetting(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(Config(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return b, nil
}
