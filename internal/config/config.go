package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	RedisURL    string

	SessionAddr string
	HTTPAddr    string

	ChartAPIBaseURL string
	HistoryStart    string
	ValidateDays    int

	ChartPath string

	TrainQueueSize int
	RidgeL2        float64
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.SessionAddr = strings.TrimSpace(os.Getenv("SESSION_ADDR"))
	if cfg.SessionAddr == "" {
		cfg.SessionAddr = ":9998"
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.ChartAPIBaseURL = strings.TrimSpace(os.Getenv("CHART_API_BASE_URL"))

	cfg.HistoryStart = strings.TrimSpace(os.Getenv("HISTORY_START"))
	if cfg.HistoryStart == "" {
		cfg.HistoryStart = "2017-01-03"
	}

	cfg.ValidateDays = 7
	if v := strings.TrimSpace(os.Getenv("VALIDATE_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ValidateDays = n
		}
	}

	cfg.ChartPath = strings.TrimSpace(os.Getenv("CHART_PATH"))
	if cfg.ChartPath == "" {
		cfg.ChartPath = "chart.png"
	}

	cfg.TrainQueueSize = 8
	if v := strings.TrimSpace(os.Getenv("TRAIN_QUEUE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TrainQueueSize = n
		}
	}

	cfg.RidgeL2 = 0.001
	if v := strings.TrimSpace(os.Getenv("RIDGE_L2")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			cfg.RidgeL2 = n
		}
	}

	return cfg
}
