package clustering

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"CEPH_KEY":               "key",
		"CEPH_SECRET":            "secret",
		"CEPH_HOST":              "https://ceph.example.com",
		"CEPH_BUCKET":            "insights",
		"MLFLOW_EXPERIMENT_NAME": "stability",
		"MLFLOW_TRACKING_UI":     "http://mlflow:5000",
		"K_CLUSTERS":             "8",
		"PCA_DIMENSIONS":         "3",
		"DAY_1":                  "2020-01-01",
		"DAY_2":                  "2020-01-02",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(lookupMap(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, StorageMinio, cfg.Storage.Backend)
	assert.Equal(t, "insights", cfg.Storage.Bucket)
	assert.Equal(t, int64(4), cfg.Storage.MaxConcurrency)
	assert.Zero(t, cfg.Storage.ReadBytesPerSec)
	assert.Equal(t, 3, cfg.Storage.MaxRetries)

	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, DefaultParser, cfg.Parser)

	assert.Equal(t, TrackingMLflow, cfg.Tracking.Backend)
	assert.Equal(t, "http://mlflow:5000", cfg.Tracking.MLflowURI)
	assert.Equal(t, "stability", cfg.Tracking.Experiment)

	assert.Equal(t, 8, cfg.K)
	assert.Equal(t, 3, cfg.Dimensions)
	assert.Equal(t, "2020-01-01", cfg.Day1)
	assert.Equal(t, "2020-01-02", cfg.Day2)
	assert.Equal(t, KMeans{MaxIter: 300, NInit: 1}, cfg.KMeans)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatAuto, cfg.LogFormat)
	assert.Zero(t, cfg.Timeout)
}

func TestLoadConfig_Overrides(t *testing.T) {
	env := baseEnv()
	env["STORAGE_BACKEND"] = "LOCAL"
	env["STORAGE_ROOT"] = "/data"
	env["STORAGE_READ_BYTES_PER_SEC"] = "1048576"
	env["TRACKING_BACKEND"] = "postgres"
	env["DATABASE_URL"] = "postgres://localhost/runs"
	env["KMEANS_SEED"] = "42"
	env["KMEANS_N_INIT"] = "10"
	env["LOG_LEVEL"] = "debug"
	env["LOG_FORMAT"] = "json"
	env["RUN_TIMEOUT"] = "15m"
	env["DATA_PREFIX"] = "PROD"

	cfg, err := LoadConfig(lookupMap(env))
	require.NoError(t, err)

	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "/data", cfg.Storage.Root)
	assert.Equal(t, int64(1<<20), cfg.Storage.ReadBytesPerSec)
	assert.Equal(t, TrackingPostgres, cfg.Tracking.Backend)
	assert.Equal(t, "postgres://localhost/runs", cfg.Tracking.DatabaseURL)
	assert.Equal(t, uint64(42), cfg.KMeans.Seed)
	assert.Equal(t, 10, cfg.KMeans.NInit)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, 15*time.Minute, cfg.Timeout)
	assert.Equal(t, "PROD", cfg.Prefix)
}

func TestLoadConfig_LocalNeedsNoCredentials(t *testing.T) {
	env := baseEnv()
	for _, k := range []string{"CEPH_KEY", "CEPH_SECRET", "CEPH_HOST", "CEPH_BUCKET"} {
		delete(env, k)
	}
	env["STORAGE_BACKEND"] = "local"

	cfg, err := LoadConfig(lookupMap(env))
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Storage.Root)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit func(map[string]string)
		key  string
	}{
		{"missing k", func(e map[string]string) { delete(e, "K_CLUSTERS") }, "K_CLUSTERS"},
		{"zero k", func(e map[string]string) { e["K_CLUSTERS"] = "0" }, "K_CLUSTERS"},
		{"bad dims", func(e map[string]string) { e["PCA_DIMENSIONS"] = "three" }, "PCA_DIMENSIONS"},
		{"blank day", func(e map[string]string) { e["DAY_2"] = "  " }, "DAY_2"},
		{"missing bucket", func(e map[string]string) { delete(e, "CEPH_BUCKET") }, "CEPH_BUCKET"},
		{"unknown backend", func(e map[string]string) { e["TRACKING_BACKEND"] = "kafka" }, "TRACKING_BACKEND"},
		{"pushgateway url", func(e map[string]string) { e["TRACKING_BACKEND"] = "pushgateway" }, "PUSHGATEWAY_URL"},
		{"bad level", func(e map[string]string) { e["LOG_LEVEL"] = "loud" }, "LOG_LEVEL"},
		{"bad timeout", func(e map[string]string) { e["RUN_TIMEOUT"] = "soon" }, "RUN_TIMEOUT"},
		{"negative rate", func(e map[string]string) { e["STORAGE_READ_BYTES_PER_SEC"] = "-1" }, "STORAGE_READ_BYTES_PER_SEC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			tt.edit(env)

			cfg, err := LoadConfig(lookupMap(env))
			require.Error(t, err)
			assert.Nil(t, cfg)

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.key, ce.Key)
		})
	}
}

func TestLoadConfig_ReportsEveryKey(t *testing.T) {
	_, err := LoadConfig(lookupMap(map[string]string{"STORAGE_BACKEND": "local"}))
	require.Error(t, err)

	var keys []string
	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	for _, e := range joined.Unwrap() {
		var ce *ConfigError
		require.ErrorAs(t, e, &ce)
		keys = append(keys, ce.Key)
	}
	assert.ElementsMatch(t, []string{
		"MLFLOW_EXPERIMENT_NAME", "MLFLOW_TRACKING_UI",
		"K_CLUSTERS", "PCA_DIMENSIONS", "DAY_1", "DAY_2",
	}, keys)
	assert.ErrorIs(t, err, errRequired)
}
