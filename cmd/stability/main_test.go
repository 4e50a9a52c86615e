package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hemajv/insights-clustering/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localEnv(root string) map[string]string {
	return map[string]string{
		"STORAGE_BACKEND":        "local",
		"STORAGE_ROOT":           root,
		"TRACKING_BACKEND":       "log",
		"MLFLOW_EXPERIMENT_NAME": "stability",
		"K_CLUSTERS":             "3",
		"PCA_DIMENSIONS":         "2",
		"DAY_1":                  "2020-01-01",
		"DAY_2":                  "2020-01-02",
		"KMEANS_SEED":            "7",
		"LOG_FORMAT":             "json",
	}
}

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeDay(t *testing.T, root, day string) {
	t.Helper()
	points, _ := testutil.NewRNG(3).Blobs(60, testutil.RuleWidth, 3, 0.5)
	data, err := testutil.WriteParquet(testutil.RuleRows(testutil.IDs(0, 60), points))
	require.NoError(t, err)

	dir := filepath.Join(root, "DH-DEV-INSIGHTS", day, "rule_data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part-00000.parquet"), data, 0o644))
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		days   []string
		edit   func(map[string]string)
		code   int
		stdout string
		stderr string
	}{
		{
			name:   "success",
			days:   []string{"2020-01-01", "2020-01-02"},
			code:   exitOK,
			stdout: "cluster stability 2020-01-01 -> 2020-01-02: 100.00 (shared 60",
			stderr: "run recorded",
		},
		{
			name:   "missing k",
			days:   []string{"2020-01-01", "2020-01-02"},
			edit:   func(e map[string]string) { delete(e, "K_CLUSTERS") },
			code:   exitConfig,
			stderr: "K_CLUSTERS",
		},
		{
			name:   "empty dataset",
			days:   []string{"2020-01-01"},
			code:   exitFailed,
			stderr: "read observation 2020-01-02",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, d := range tt.days {
				writeDay(t, root, d)
			}
			env := localEnv(root)
			if tt.edit != nil {
				tt.edit(env)
			}

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), lookupMap(env), &stdout, &stderr)

			assert.Equal(t, tt.code, code, stderr.String())
			assert.Contains(t, stdout.String(), tt.stdout)
			assert.Contains(t, stderr.String(), tt.stderr)
			if tt.code != exitOK {
				assert.Empty(t, stdout.String())
				assert.NotContains(t, stderr.String(), "run recorded")
			}
		})
	}
}
