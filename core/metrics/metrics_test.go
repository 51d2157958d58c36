package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCounters(t *testing.T) {
	m := New()
	m.ObserveStore("append", nil)
	m.ObserveStore("append", nil)
	m.ObserveStore("delete", errors.New("boom"))
	m.ObserveDialog("add", "done")
	m.ObserveHandler("day", "ok", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeOps.WithLabelValues("append", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("delete", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dialogs.WithLabelValues("add", "done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.updates.WithLabelValues("day", "ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveStore("append", nil)
	m.ObserveDialog("add", "done")
	m.ObserveHandler("day", "ok", time.Second)
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveStore("load", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "schedulebot_store_operations_total"))
}
