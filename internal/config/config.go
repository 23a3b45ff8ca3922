package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Resend   ResendConfig
	Chat     ChatConfig
	Geocoder GeocoderConfig
	Storage  StorageConfig
	Data     DataConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// BackendConfig points at the TicketLive backend REST service that owns
// all durable business state.
type BackendConfig struct {
	BaseURL       string
	Timeout       time.Duration
	SessionCookie string // name of the backend's auth cookie
	JWTSecret     string // shared secret for decoding the backend session token
}

type SessionConfig struct {
	Secret string
}

type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// ChatConfig configures the hosted completion API behind the chat widget.
type ChatConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeocoderConfig struct {
	BaseURL string
	Email   string // contact address sent to the geocoder per its usage policy
}

// StorageConfig holds S3-compatible credentials for newsletter and
// testimonial assets. When empty, a local-disk fallback is used.
type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	Endpoint        string
}

// DataConfig locates the JSON file stores (comments, subscribers).
type DataConfig struct {
	Dir string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Backend: BackendConfig{
			BaseURL:       getEnv("BACKEND_URL", "http://localhost:3001"),
			Timeout:       time.Duration(getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
			SessionCookie: getEnv("BACKEND_SESSION_COOKIE", "token"),
			JWTSecret:     getEnv("BACKEND_JWT_SECRET", ""),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Resend: ResendConfig{
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("RESEND_FROM_EMAIL", "noreply@ticketlive.app"),
			FromName:  getEnv("RESEND_FROM_NAME", "TicketLive"),
		},
		Chat: ChatConfig{
			APIKey:  getEnv("CHAT_API_KEY", ""),
			Model:   getEnv("CHAT_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("CHAT_BASE_URL", "https://api.openai.com/v1"),
		},
		Geocoder: GeocoderConfig{
			BaseURL: getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
			Email:   getEnv("GEOCODER_EMAIL", "contact@ticketlive.app"),
		},
		Storage: StorageConfig{
			AccountID:       getEnv("STORAGE_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("STORAGE_BUCKET_NAME", "ticketlive-assets"),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
			Region:          getEnv("STORAGE_REGION", "auto"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
		},
		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend URL is required")
	}
	if c.Session.Secret == "" {
		return errors.New("session secret is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
