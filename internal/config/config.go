package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	JWTSecret            string
	MinAnswerCount       int
	MinAnswerPercentage  float64
	LoginKeyValidityDays int
	InternalEmailDomains []string
	ReplyToEmail         string
	ManagerEmails        []string
	OverviewCacheTTL     time.Duration
	EventChannelBase     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EvaP API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("quorum.min_answer_count", 2)
	v.SetDefault("quorum.min_answer_percentage", 0.2)
	v.SetDefault("login_key_validity_days", 210)
	v.SetDefault("internal_email_domains", "institution.example.com")
	v.SetDefault("reply_to_email", "evaluation@institution.example.com")
	v.SetDefault("overview.cache_ttl", "5m")
	v.SetDefault("event.channel_base", "evap")

	ttlString := v.GetString("overview.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid overview cache ttl: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		MinAnswerCount:       v.GetInt("quorum.min_answer_count"),
		MinAnswerPercentage:  v.GetFloat64("quorum.min_answer_percentage"),
		LoginKeyValidityDays: v.GetInt("login_key_validity_days"),
		InternalEmailDomains: splitList(v.GetString("internal_email_domains")),
		ReplyToEmail:         v.GetString("reply_to_email"),
		ManagerEmails:        splitList(v.GetString("manager_emails")),
		OverviewCacheTTL:     ttl,
		EventChannelBase:     v.GetString("event.channel_base"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MinAnswerCount < 0 {
		return Config{}, fmt.Errorf("min answer count must not be negative")
	}

	if cfg.MinAnswerPercentage < 0 || cfg.MinAnswerPercentage > 1 {
		return Config{}, fmt.Errorf("min answer percentage must be within [0, 1]")
	}

	if cfg.LoginKeyValidityDays <= 0 {
		cfg.LoginKeyValidityDays = 210
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
