package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RecordRun(t *testing.T) {
	r := New()

	r.RecordRun(nil)
	r.RecordRun(nil)
	r.RecordRun(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("error")))
}

func TestRegistry_RecordCache(t *testing.T) {
	r := New()

	r.RecordCache("spot", true)
	r.RecordCache("spot", false)
	r.RecordCache("spot", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheHits.WithLabelValues("spot")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.CacheMisses.WithLabelValues("spot")))
}

func TestRegistry_ObserveStage(t *testing.T) {
	r := New()

	r.ObserveStage("rank", 2*time.Millisecond, nil)

	assert.Equal(t, 1, testutil.CollectAndCount(r.StageDuration))
}

func TestRegistry_Handler(t *testing.T) {
	r := New()
	r.RecordHTTP("/api/simulate", "200")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `investsim_http_requests_total{route="/api/simulate",status="200"} 1`)
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry

	r.RecordRun(nil)
	r.RecordCache("spot", true)
	r.ObserveStage("rank", time.Second, nil)
	r.RecordHTTP("/health", "200")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
