package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	DefaultTimeout  time.Duration
	DefaultInterval time.Duration
	FestiveRoundTTL time.Duration
	RankCount       int
	Currency        string
	AdminToken      string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "redpacket"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	currency := os.Getenv("CURRENCY_CONTEXT")
	if currency == "" {
		currency = "gold"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		DefaultTimeout:  time.Duration(envInt("DEFAULT_TIMEOUT_SECONDS", 600)) * time.Second,
		DefaultInterval: time.Duration(envInt("DEFAULT_INTERVAL_SECONDS", 60)) * time.Second,
		FestiveRoundTTL: time.Duration(envInt("FESTIVE_ROUND_TTL_HOURS", 24)) * time.Hour,
		RankCount:       envInt("RANK_DISPLAY_COUNT", 10),
		Currency:        currency,
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
