package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danhigham/telefleet/internal/metrics"
)

func TestRecordBroadcastAccount(t *testing.T) {
	before := testutil.ToFloat64(metrics.BroadcastAccountsTotal.WithLabelValues("test_action", metrics.ResultFailure))

	metrics.RecordBroadcastAccount("test_action", nil)
	metrics.RecordBroadcastAccount("test_action", errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BroadcastAccountsTotal.WithLabelValues("test_action", metrics.ResultFailure)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.BroadcastAccountsTotal.WithLabelValues("test_action", metrics.ResultSuccess)), float64(1))
}

func TestRecordLogin(t *testing.T) {
	metrics.RecordLogin("authenticated")
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("authenticated")), float64(1))
}

func TestRecordBroadcastRun(t *testing.T) {
	metrics.RecordBroadcastRun("test_run", 2*time.Second)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.BroadcastDuration, "telefleet_broadcast_run_duration_seconds"))
}

func TestServerHandler(t *testing.T) {
	srv := metrics.NewServer(":0", zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
