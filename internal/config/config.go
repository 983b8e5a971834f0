package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string
	OwnerID     int64 // id преподавателя-владельца записей
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	SeedDemo    bool // засеять демо-данные при старте (dev)

	// Период фонового «страховочного» пересчёта.
	RefreshEvery time.Duration
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Karachi")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	ownerID, err := strconv.ParseInt(mustEnv("OWNER_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("OWNER_ID: %w", err)
	}

	refresh := 5 * time.Minute
	if v := os.Getenv("REFRESH_EVERY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REFRESH_EVERY: %w", err)
		}
		refresh = d
	}

	cfg := &Config{
		DatabaseURL:  mustEnv("DATABASE_URL"),
		OwnerID:      ownerID,
		Location:     loc,
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Env:          getenv("ENV", "dev"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		SeedDemo:     os.Getenv("SEED_DEMO") == "1",
		RefreshEvery: refresh,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
