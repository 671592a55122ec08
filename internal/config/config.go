package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// Uploaded documents live in Bucket; download links are presigned for URLExpirySec.
type MinIOConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	URLExpirySec int
}

// URLExpiry returns the presigned URL lifetime.
func (c MinIOConfig) URLExpiry() time.Duration {
	return time.Duration(c.URLExpirySec) * time.Second
}

// AuthConfig holds the bearer token signing settings.
type AuthConfig struct {
	JWTSecret     string
	AccessTTLSec  int
	RefreshTTLSec int
}

// GeminiConfig holds the generative-language API settings.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	Timezone       string
	LogLevel       string
	UploadMaxBytes int
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Auth           AuthConfig
	Gemini         GeminiConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UploadMaxBytes: getEnvInt("UPLOAD_MAX_BYTES", 20<<20),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:     getEnv("MINIO_ENDPOINT", ""),
			AccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:    getEnv("MINIO_SECRET_KEY", ""),
			Bucket:       getEnv("MINIO_BUCKET", ""),
			UseSSL:       getEnvBool("MINIO_USE_SSL", false),
			URLExpirySec: getEnvInt("MEDIA_URL_EXPIRY_SEC", 900),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			AccessTTLSec:  getEnvInt("JWT_ACCESS_TTL_SEC", 300),
			RefreshTTLSec: getEnvInt("JWT_REFRESH_TTL_SEC", 86400),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
	}
}

// Validate reports missing secrets that have no sensible default.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.Auth.AccessTTLSec <= 0 || c.Auth.RefreshTTLSec <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
