// Package config loads service settings from defaults, an optional config
// file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioBaseURL     string

	KafkaBrokers           []string
	KafkaNotificationTopic string

	NotifyInterval time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	LogLevel       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("JWT_SECRET", "super-secret-key")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")
	v.SetDefault("TWILIO_BASE_URL", "https://api.twilio.com")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_NOTIFICATION_TOPIC", "notifications.created")
	v.SetDefault("NOTIFY_INTERVAL", "1m")
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 3)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the configuration. envFiles are passed to godotenv; a missing
// .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/stock-notifier")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	interval, err := time.ParseDuration(v.GetString("NOTIFY_INTERVAL"))
	if err != nil || interval <= 0 {
		return Config{}, fmt.Errorf("invalid NOTIFY_INTERVAL %q", v.GetString("NOTIFY_INTERVAL"))
	}

	return Config{
		HTTPAddr:               v.GetString("HTTP_ADDR"),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		RedisAddr:              v.GetString("REDIS_ADDR"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		TwilioAccountSID:       v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:        v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:      v.GetString("TWILIO_PHONE_NUMBER"),
		TwilioBaseURL:          v.GetString("TWILIO_BASE_URL"),
		KafkaBrokers:           splitCSV(v.GetString("KAFKA_BROKERS")),
		KafkaNotificationTopic: v.GetString("KAFKA_NOTIFICATION_TOPIC"),
		NotifyInterval:         interval,
		RateLimitRPS:           v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:         v.GetInt("RATE_LIMIT_BURST"),
		LogLevel:               v.GetString("LOG_LEVEL"),
	}, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
