// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, startup stops.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the jobmap server.
type Config struct {
	Port        string
	JobsCSVPath string // snapshot produced by the aggregation pipeline
	SnapshotDir string
	RedisURL    string // optional; memory geocache when empty
	RefreshCron string // optional cron spec for periodic reloads

	BaseRadiusKm  float64
	NoClusterZoom int
}

// Load reads .env (when present) and environment variables, returning a
// validated Config.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	csvPath := os.Getenv("JOBS_CSV_PATH")
	if csvPath == "" {
		return nil, fmt.Errorf("JOBS_CSV_PATH is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	snapshotDir := os.Getenv("SNAPSHOT_DIR")
	if snapshotDir == "" {
		snapshotDir = "data/snapshots"
	}

	baseRadius := 50.0
	if s := os.Getenv("BASE_RADIUS_KM"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("BASE_RADIUS_KM must be a positive number, got %q", s)
		}
		baseRadius = v
	}

	noClusterZoom := 10
	if s := os.Getenv("NO_CLUSTER_ZOOM"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("NO_CLUSTER_ZOOM must be a positive integer, got %q", s)
		}
		noClusterZoom = v
	}

	return &Config{
		Port:          port,
		JobsCSVPath:   csvPath,
		SnapshotDir:   snapshotDir,
		RedisURL:      os.Getenv("REDIS_URL"),
		RefreshCron:   os.Getenv("REFRESH_CRON"),
		BaseRadiusKm:  baseRadius,
		NoClusterZoom: noClusterZoom,
	}, nil
}
