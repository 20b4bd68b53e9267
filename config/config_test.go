package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresCSVPath(t *testing.T) {
	t.Setenv("JOBS_CSV_PATH", "")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JOBS_CSV_PATH")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JOBS_CSV_PATH", "/data/jobs.csv")
	t.Setenv("PORT", "")
	t.Setenv("SNAPSHOT_DIR", "")
	t.Setenv("BASE_RADIUS_KM", "")
	t.Setenv("NO_CLUSTER_ZOOM", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, "data/snapshots", cfg.SnapshotDir)
	require.Equal(t, 50.0, cfg.BaseRadiusKm)
	require.Equal(t, 10, cfg.NoClusterZoom)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JOBS_CSV_PATH", "/data/jobs.csv")
	t.Setenv("PORT", "9999")
	t.Setenv("BASE_RADIUS_KM", "25")
	t.Setenv("NO_CLUSTER_ZOOM", "12")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9999", cfg.Port)
	require.Equal(t, 25.0, cfg.BaseRadiusKm)
	require.Equal(t, 12, cfg.NoClusterZoom)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JOBS_CSV_PATH", "/data/jobs.csv")

	t.Setenv("BASE_RADIUS_KM", "zero")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("BASE_RADIUS_KM", "50")
	t.Setenv("NO_CLUSTER_ZOOM", "-3")
	_, err = Load()
	require.Error(t, err)
}
