package pushgateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hemajv/insights-clustering/tracking"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(t *testing.T) *tracking.Run {
	t.Helper()
	run := tracking.NewRun("stability")
	require.NoError(t, run.LogParam("K-Clusters", 3))
	require.NoError(t, run.LogParam("Date 1", "2020-01-01"))
	require.NoError(t, run.LogMetric("cluster_stability", 75))
	require.NoError(t, run.LogMetric("rand_score", 0.5))
	return run
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "k_clusters", SanitizeName("K-Clusters"))
	assert.Equal(t, "date_1", SanitizeName("Date 1"))
	assert.Equal(t, "shared_ids_between_days", SanitizeName("Shared_ids_between_days"))
	assert.Equal(t, "_1st", SanitizeName("1st"))
	assert.Equal(t, "unnamed", SanitizeName("--"))
}

func TestRegistry(t *testing.T) {
	s := New("http://unused", "", "")
	reg, err := s.Registry(sampleRun(t))
	require.NoError(t, err)

	n, err := promtest.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	expected := `
# HELP stability_cluster_stability Stability run metric cluster_stability.
# TYPE stability_cluster_stability gauge
stability_cluster_stability 75
# HELP stability_run_info Parameters of a stability run.
# TYPE stability_run_info gauge
stability_run_info{date_1="2020-01-01",experiment="stability",k_clusters="3"} 1
`
	require.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected),
		"stability_cluster_stability", "stability_run_info"))
}

func TestRecord_PushesGroupedByRun(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	run := sampleRun(t)
	require.NoError(t, New(srv.URL, "jobname", "").Record(context.Background(), run))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/jobname/run_id/"+run.ID, path)
}

func TestRecord_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL, "", "").Record(context.Background(), sampleRun(t))
	assert.Error(t, err)
}
