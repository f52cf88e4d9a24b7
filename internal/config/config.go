package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
	LogLevel       string
	JWTSecret      string
	AdminUsername  string

	Database DatabaseConfig
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryUploadFolder string

	KafkaBrokers []string
	KafkaTopic   string

	HashIDSalt      string
	HashIDMinLength int

	AdFlushSchedule   string
	AdExpirySchedule  string
	EventFeedURLs     []string
	EventFeedSchedule string
	EventScrapePages  bool

	GeminiAPIKey string
	GeminiModel  string

	RateLimitMessage       time.Duration
	RateLimitFriendRequest time.Duration
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_USERNAME", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASS", "")
	v.SetDefault("DB_NAME", "wanderhub")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("MEILISEARCH_HOST", "http://localhost:7700")
	v.SetDefault("MEILI_MASTER_KEY", "")

	v.SetDefault("CLOUDINARY_URL", "")
	v.SetDefault("CLOUDINARY_UPLOAD_FOLDER", "wanderhub")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "wanderhub.events")

	v.SetDefault("HASHID_SALT", "wanderhub-ads")
	v.SetDefault("HASHID_MIN_LENGTH", 8)

	v.SetDefault("AD_FLUSH_SCHEDULE", "@every 1m")
	v.SetDefault("AD_EXPIRY_SCHEDULE", "@daily")
	v.SetDefault("EVENT_FEED_URLS", "")
	v.SetDefault("EVENT_FEED_SCHEDULE", "0 6 * * *")
	v.SetDefault("EVENT_SCRAPE_PAGES", false)

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")

	v.SetDefault("RATE_LIMIT_MESSAGE", "1s")
	v.SetDefault("RATE_LIMIT_FRIEND_REQUEST", "10s")
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		LogLevel:       v.GetString("LOG_LEVEL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		AdminUsername:  v.GetString("ADMIN_USERNAME"),

		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			Name:     v.GetString("DB_NAME"),
			Port:     v.GetString("DB_PORT"),
		},
		RedisURL: v.GetString("REDIS_URL"),

		MeiliSearchHost: normalizeMeiliHost(v.GetString("MEILISEARCH_HOST")),
		MeiliMasterKey:  v.GetString("MEILI_MASTER_KEY"),

		CloudinaryURL:          v.GetString("CLOUDINARY_URL"),
		CloudinaryUploadFolder: v.GetString("CLOUDINARY_UPLOAD_FOLDER"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		HashIDSalt: v.GetString("HASHID_SALT"),

		AdFlushSchedule:   v.GetString("AD_FLUSH_SCHEDULE"),
		AdExpirySchedule:  v.GetString("AD_EXPIRY_SCHEDULE"),
		EventFeedURLs:     splitList(v.GetString("EVENT_FEED_URLS")),
		EventFeedSchedule: v.GetString("EVENT_FEED_SCHEDULE"),
		EventScrapePages:  v.GetBool("EVENT_SCRAPE_PAGES"),

		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		GeminiModel:  v.GetString("GEMINI_MODEL"),
	}

	var err error
	cfg.HashIDMinLength, err = parseInt(v.GetString("HASHID_MIN_LENGTH"))
	if err != nil {
		return nil, fmt.Errorf("invalid HASHID_MIN_LENGTH: %w", err)
	}
	cfg.RateLimitMessage, err = time.ParseDuration(v.GetString("RATE_LIMIT_MESSAGE"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MESSAGE: %w", err)
	}
	cfg.RateLimitFriendRequest, err = time.ParseDuration(v.GetString("RATE_LIMIT_FRIEND_REQUEST"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_FRIEND_REQUEST: %w", err)
	}

	if cfg.JWTSecret == "" && cfg.AppEnv != "development" {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}

func normalizeMeiliHost(host string) string {
	if host == "" {
		return "http://localhost:7700"
	}
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}
