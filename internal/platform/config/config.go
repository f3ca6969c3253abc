package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. Fixed business constants
// (risk thresholds, the document field allow-list) live with their engines,
// not here, so they cannot drift per deployment.
type Server struct {
	Addr string

	// DatabaseURL enables the Postgres audit store when set.
	DatabaseURL string

	// RedisURL enables the Redis velocity store when set.
	RedisURL string

	// DeviceRisk is the behavioral device-risk input. There is no device
	// fingerprinting surface, so it stays a configured constant.
	DeviceRisk float64

	// VelocityWindow and VelocityLimit bound the verification-attempt
	// counter that feeds the behavioral velocity signal.
	VelocityWindow time.Duration
	VelocityLimit  int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:           envOr("VERIGATE_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DeviceRisk:     0.1,
		VelocityWindow: time.Hour,
		VelocityLimit:  5,
	}

	if v, err := strconv.ParseFloat(os.Getenv("VERIGATE_DEVICE_RISK"), 64); err == nil && v >= 0 && v <= 1 {
		cfg.DeviceRisk = v
	}
	if d, err := time.ParseDuration(os.Getenv("VERIGATE_VELOCITY_WINDOW")); err == nil && d > 0 {
		cfg.VelocityWindow = d
	}
	if n, err := strconv.Atoi(os.Getenv("VERIGATE_VELOCITY_LIMIT")); err == nil && n > 0 {
		cfg.VelocityLimit = n
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
