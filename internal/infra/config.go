package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	// PublicBaseURL is the browser-facing origin used to build download
	// links and PayPal redirect URLs.
	PublicBaseURL string

	PayPalClientID string
	PayPalSecret   string
	PayPalBaseURL  string
	PayPalIPNURL   string

	ResendAPIKey string
	MailFrom     string

	AdminEmail        string
	AdminPasswordHash string

	StoragePath string
	GeoIPDBPath string

	DonationCurrency string
	DonationLinkTTL  int // hours

	CORSAllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:       os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalBaseURL:      getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalIPNURL:       getEnv("PAYPAL_IPN_URL", "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"),
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		MailFrom:           getEnv("MAIL_FROM", "no-reply@localhost"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		StoragePath:        getEnv("STORAGE_PATH", "data/documents"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DonationCurrency:   getEnv("DONATION_CURRENCY", "EUR"),
		DonationLinkTTL:    getEnvInt("DONATION_LINK_TTL_HOURS", 24),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.DonationLinkTTL <= 0 {
		return nil, fmt.Errorf("DONATION_LINK_TTL_HOURS must be positive")
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	return cfg, nil
}

// DownloadLink builds the browser-facing URL for a link token.
func (c *Config) DownloadLink(token string) string {
	return c.PublicBaseURL + "/download/" + token
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
